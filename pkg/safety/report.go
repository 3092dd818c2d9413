package safety

import (
	"encoding/json"
	"fmt"
	"math"
)

// SubReport is the payload the risk authority returned for one dimension.
// Fields holds the decoded body untouched. Score is set only when the body
// carries a finite JSON number under "score".
type SubReport struct {
	Dimension Dimension
	Fields    map[string]any
	Score     *float64
}

// NewSubReport tags fields with its dimension and lifts the optional score.
func NewSubReport(dim Dimension, fields map[string]any) SubReport {
	if fields == nil {
		fields = map[string]any{}
	}
	return SubReport{
		Dimension: dim,
		Fields:    fields,
		Score:     extractScore(fields),
	}
}

// DecodeSubReport decodes a JSON object body into a SubReport.
func DecodeSubReport(dim Dimension, data []byte) (SubReport, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return SubReport{}, fmt.Errorf("decode %s report: %w", dim, err)
	}
	return NewSubReport(dim, fields), nil
}

// Scored reports whether the sub-report carries a usable numeric score.
func (r SubReport) Scored() bool { return r.Score != nil }

// Field returns the raw value stored under key.
func (r SubReport) Field(key string) (any, bool) {
	v, ok := r.Fields[key]
	return v, ok
}

// MarshalJSON emits the raw fields, so the report round-trips as the
// authority sent it.
func (r SubReport) MarshalJSON() ([]byte, error) {
	if r.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(r.Fields)
}

func extractScore(fields map[string]any) *float64 {
	raw, ok := fields["score"]
	if !ok {
		return nil
	}
	var f float64
	switch v := raw.(type) {
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	default:
		// strings, booleans and nested objects are not scores
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

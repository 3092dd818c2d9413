package safety

import (
	"encoding/json"
	"time"
)

// Record is the comprehensive safety report for one token analysis.
// It is built once per analysis and owned by the caller.
type Record struct {
	AnalysisID       string
	TokenAddress     string
	Network          string
	Timestamp        time.Time
	Reports          map[Dimension]SubReport
	FailedDimensions []Dimension
	AggregateResult
}

// NewRecord merges reports and computes the aggregate.
func NewRecord(tokenAddress string, reports map[Dimension]SubReport, at time.Time) *Record {
	if reports == nil {
		reports = map[Dimension]SubReport{}
	}
	return &Record{
		TokenAddress:    tokenAddress,
		Timestamp:       at.UTC(),
		Reports:         reports,
		AggregateResult: Aggregate(reports),
	}
}

// Report returns the sub-report for dim.
func (r *Record) Report(dim Dimension) (SubReport, bool) {
	sr, ok := r.Reports[dim]
	return sr, ok
}

// Dimensions returns the dimensions present in the record, sorted by name.
func (r *Record) Dimensions() []Dimension {
	out := make([]Dimension, 0, len(r.Reports))
	for d := range r.Reports {
		out = append(out, d)
	}
	SortDimensions(out)
	return out
}

// Partial reports whether some dimensions failed and were left out.
func (r *Record) Partial() bool { return len(r.FailedDimensions) > 0 }

// MarshalJSON flattens the record into one object: identifying fields, the
// aggregate fields, then one key per dimension holding its raw payload.
func (r *Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Reports)+8)
	for dim, sr := range r.Reports {
		out[string(dim)] = sr
	}
	if r.AnalysisID != "" {
		out["analysisId"] = r.AnalysisID
	}
	if r.Network != "" {
		out["network"] = r.Network
	}
	out["tokenAddress"] = r.TokenAddress
	out["timestamp"] = r.Timestamp.Format(time.RFC3339)
	out["overallScore"] = r.OverallScore
	out["safetyLevel"] = r.Level
	out["safetyColor"] = r.Color
	out["contributingDimensions"] = r.Contributors
	if len(r.FailedDimensions) > 0 {
		out["failedDimensions"] = r.FailedDimensions
	}
	return json.Marshal(out)
}

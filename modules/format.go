package modules

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tokenshield/pkg/gateway"
	"tokenshield/pkg/safety"
)

// maxCellWidth bounds nested values rendered inline.
const maxCellWidth = 60

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	return t
}

// FormatRecord renders a full analysis as a summary plus one row per
// dimension.
func FormatRecord(r *safety.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Token safety report for %s\n", r.TokenAddress)
	if r.Network != "" {
		fmt.Fprintf(&b, "Network: %s\n", r.Network)
	}
	fmt.Fprintf(&b, "Overall score: %.2f/100\n", r.OverallScore)
	fmt.Fprintf(&b, "Safety level: %s (%s)\n", r.Level, r.Color)

	t := newTable()
	t.AppendHeader(table.Row{"Dimension", "Weight", "Score", "Level"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	for _, dim := range r.Dimensions() {
		sr := r.Reports[dim]
		weight := "-"
		if w := safety.Weight(dim); w > 0 {
			weight = fmt.Sprintf("%.0f%%", w*100)
		}
		score, level := "n/a", "-"
		if sr.Scored() {
			score = fmt.Sprintf("%.2f", *sr.Score)
			level = safety.Classify(*sr.Score).String()
		}
		t.AppendRow(table.Row{dim, weight, score, level})
	}
	b.WriteString(t.Render())
	b.WriteString("\n")

	if r.Degenerate() {
		b.WriteString("No weighted dimension returned a usable score; treat this token as DANGEROUS.\n")
	}
	if r.Partial() {
		fmt.Fprintf(&b, "Unavailable: %s (partial result)\n", joinDimensions(r.FailedDimensions))
	}
	if r.AnalysisID != "" {
		fmt.Fprintf(&b, "Analysis ID: %s\n", r.AnalysisID)
	}
	return b.String()
}

// FormatReport renders one sub-report under title: its tier when it is
// scored, then its top-level fields.
func FormatReport(title string, r safety.SubReport) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if r.Scored() {
		level := safety.Classify(*r.Score)
		fmt.Fprintf(&b, "Score: %.2f/100 (%s, %s)\n", *r.Score, level, level.Color())
	}
	b.WriteString(formatFields(r.Fields))
	return b.String()
}

// FormatPayload renders an unscored payload. A wrapped top-level list is
// shown one row per element.
func FormatPayload(title string, p gateway.Payload) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	if items, ok := p["items"].([]any); ok && len(p) == 1 {
		if len(items) == 0 {
			b.WriteString("(none)\n")
			return b.String()
		}
		t := newTable()
		t.AppendHeader(table.Row{"#", "Value"})
		for i, item := range items {
			t.AppendRow(table.Row{i + 1, formatValue(item)})
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(formatFields(p))
	return b.String()
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return "(no details)\n"
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable()
	t.AppendHeader(table.Row{"Field", "Value"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, formatValue(fields[k])})
	}
	return t.Render() + "\n"
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		s := string(raw)
		if len(s) > maxCellWidth {
			s = s[:maxCellWidth-3] + "..."
		}
		return s
	}
}

func joinDimensions(dims []safety.Dimension) string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.String()
	}
	return strings.Join(names, ", ")
}

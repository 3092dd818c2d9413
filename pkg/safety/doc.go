// Package safety turns per-dimension risk reports into one overall score,
// a safety tier and a rendering color.
//
// Usage:
//
//	reports := map[safety.Dimension]safety.SubReport{
//		safety.DimensionHoneypot:  safety.NewSubReport(safety.DimensionHoneypot, map[string]any{"score": 100.0}),
//		safety.DimensionLiquidity: safety.NewSubReport(safety.DimensionLiquidity, map[string]any{"score": 50.0}),
//	}
//	res := safety.Aggregate(reports) // 77.78, MODERATE, orange
//
// Every function in this package is pure.
package safety

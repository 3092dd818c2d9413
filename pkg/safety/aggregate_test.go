package safety

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scored(dim Dimension, score any) SubReport {
	return NewSubReport(dim, map[string]any{"score": score})
}

func TestOverallScore(t *testing.T) {
	tests := []struct {
		name     string
		reports  map[Dimension]SubReport
		expected float64
		delta    float64
	}{
		{
			name: "renormalizes against present dimensions",
			reports: map[Dimension]SubReport{
				DimensionHoneypot:  scored(DimensionHoneypot, 100.0),
				DimensionLiquidity: scored(DimensionLiquidity, 50.0),
			},
			expected: 77.78,
			delta:    0.005,
		},
		{
			name:     "empty record",
			reports:  map[Dimension]SubReport{},
			expected: 0,
		},
		{
			name:     "nil record",
			reports:  nil,
			expected: 0,
		},
		{
			name: "single dimension keeps its own scale",
			reports: map[Dimension]SubReport{
				DimensionCommunity: scored(DimensionCommunity, 42.0),
			},
			expected: 42,
		},
		{
			name: "unweighted dimensions are ignored",
			reports: map[Dimension]SubReport{
				DimensionRisk:     scored(DimensionRisk, 10.0),
				DimensionMetadata: scored(DimensionMetadata, 5.0),
				DimensionVolume:   scored(DimensionVolume, 70.0),
			},
			expected: 70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := OverallScore(tt.reports)
			if tt.delta > 0 {
				assert.InDelta(t, tt.expected, got, tt.delta)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestOverallScore_AllWeightedDimensionsExact(t *testing.T) {
	reports := map[Dimension]SubReport{}
	for _, d := range WeightedDimensions() {
		reports[d] = scored(d, 90.0)
	}

	res := Aggregate(reports)
	assert.Equal(t, 90.0, res.OverallScore)
	assert.Equal(t, LevelSafe, res.Level)
	assert.Equal(t, ColorGreen, res.Color)
	assert.Len(t, res.Contributors, 7)
	assert.False(t, res.Degenerate())
}

func TestOverallScore_SkipsUnscoredDimensions(t *testing.T) {
	tests := []struct {
		name   string
		report SubReport
	}{
		{"missing score field", NewSubReport(DimensionHoneypot, map[string]any{"isHoneypot": false})},
		{"string score", scored(DimensionHoneypot, "90")},
		{"boolean score", scored(DimensionHoneypot, true)},
		{"object score", scored(DimensionHoneypot, map[string]any{"value": 90.0})},
		{"null score", scored(DimensionHoneypot, nil)},
		{"nan score", scored(DimensionHoneypot, math.NaN())},
		{"infinite score", scored(DimensionHoneypot, math.Inf(1))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reports := map[Dimension]SubReport{
				DimensionHoneypot:  tt.report,
				DimensionLiquidity: scored(DimensionLiquidity, 50.0),
			}
			res := Aggregate(reports)
			assert.Equal(t, 50.0, res.OverallScore)
			if diff := cmp.Diff([]Dimension{DimensionLiquidity}, res.Contributors); diff != "" {
				t.Errorf("contributors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAggregate_Degenerate(t *testing.T) {
	res := Aggregate(map[Dimension]SubReport{
		DimensionSocial: NewSubReport(DimensionSocial, map[string]any{"followers": 1200.0}),
	})
	assert.Equal(t, 0.0, res.OverallScore)
	assert.Equal(t, LevelDangerous, res.Level)
	assert.Equal(t, ColorRed, res.Color)
	assert.True(t, res.Degenerate())
	assert.NotNil(t, res.Contributors)
}

func TestAggregate_Deterministic(t *testing.T) {
	reports := map[Dimension]SubReport{
		DimensionHoneypot:  scored(DimensionHoneypot, 91.5),
		DimensionLiquidity: scored(DimensionLiquidity, 33.3),
		DimensionContract:  scored(DimensionContract, 77.7),
		DimensionSocial:    scored(DimensionSocial, 12.0),
		DimensionDeveloper: scored(DimensionDeveloper, 64.2),
	}
	first := Aggregate(reports)
	for i := 0; i < 50; i++ {
		require.Equal(t, first, Aggregate(reports))
	}
}

func TestWeights_SumToOne(t *testing.T) {
	total := 0
	for _, e := range weightTable {
		total += e.points
	}
	assert.Equal(t, weightBasisPoints, total)

	w := Weights()
	assert.Equal(t, 0.25, w[DimensionHoneypot])
	assert.Equal(t, 0.20, w[DimensionLiquidity])
	assert.Equal(t, 0.15, w[DimensionContract])
	assert.Equal(t, 0.10, w[DimensionCommunity])
	assert.Equal(t, 0.0, Weight(DimensionRisk))

	w[DimensionHoneypot] = 1
	assert.Equal(t, 0.25, Weight(DimensionHoneypot), "Weights must hand out a copy")
}

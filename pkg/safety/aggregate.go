package safety

// AggregateResult is the overall verdict for one record.
type AggregateResult struct {
	OverallScore float64     `json:"overallScore"`
	Level        Level       `json:"safetyLevel"`
	Color        Color       `json:"safetyColor"`
	Contributors []Dimension `json:"contributingDimensions"`
}

// Degenerate reports whether no dimension contributed a score, in which case
// the result is the fixed 0 / DANGEROUS / red value rather than a measured one.
func (r AggregateResult) Degenerate() bool { return len(r.Contributors) == 0 }

// OverallScore is the weighted mean of the scored dimensions that are present,
// renormalized against the weight actually used. Returns 0 when nothing scores.
func OverallScore(reports map[Dimension]SubReport) float64 {
	score, _ := weightedScore(reports)
	return score
}

// Aggregate scores, classifies and colors reports.
func Aggregate(reports map[Dimension]SubReport) AggregateResult {
	score, contributors := weightedScore(reports)
	level := Classify(score)
	return AggregateResult{
		OverallScore: score,
		Level:        level,
		Color:        ColorFor(level),
		Contributors: contributors,
	}
}

func weightedScore(reports map[Dimension]SubReport) (float64, []Dimension) {
	var (
		sum          float64
		used         int
		contributors = []Dimension{}
	)
	for _, e := range weightTable {
		r, ok := reports[e.dimension]
		if !ok || r.Score == nil {
			continue
		}
		sum += *r.Score * float64(e.points)
		used += e.points
		contributors = append(contributors, e.dimension)
	}
	if used == 0 {
		return 0, contributors
	}
	return sum / float64(used), contributors
}

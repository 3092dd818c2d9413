package safety

// weightBasisPoints is the weight table in 1/10000 units. Accumulating in
// integer units keeps a complete record with equal scores exact.
const weightBasisPoints = 10000

// weightEntry binds a dimension to its share of the overall score.
type weightEntry struct {
	dimension Dimension
	points    int
}

// weightTable is ordered; aggregation walks it front to back.
var weightTable = [...]weightEntry{
	{DimensionHoneypot, 2500},
	{DimensionLiquidity, 2000},
	{DimensionContract, 1500},
	{DimensionSocial, 1000},
	{DimensionVolume, 1000},
	{DimensionDeveloper, 1000},
	{DimensionCommunity, 1000},
}

// Weight returns the weight of dim in [0,1]. Dimensions outside the table
// weigh nothing.
func Weight(dim Dimension) float64 {
	for _, e := range weightTable {
		if e.dimension == dim {
			return float64(e.points) / weightBasisPoints
		}
	}
	return 0
}

// WeightedDimensions lists the scoring dimensions in aggregation order.
func WeightedDimensions() []Dimension {
	out := make([]Dimension, len(weightTable))
	for i, e := range weightTable {
		out[i] = e.dimension
	}
	return out
}

// Weights returns a copy of the weight table keyed by dimension.
func Weights() map[Dimension]float64 {
	out := make(map[Dimension]float64, len(weightTable))
	for _, e := range weightTable {
		out[e.dimension] = float64(e.points) / weightBasisPoints
	}
	return out
}

package safety

import "slices"

// Dimension names one facet of token safety reported by the risk authority.
type Dimension string

const (
	DimensionHoneypot          Dimension = "honeypot"
	DimensionLiquidity         Dimension = "liquidity"
	DimensionContract          Dimension = "contract"
	DimensionRisk              Dimension = "risk"
	DimensionMetadata          Dimension = "metadata"
	DimensionSocial            Dimension = "social"
	DimensionDeveloper         Dimension = "developer"
	DimensionVolume            Dimension = "volume"
	DimensionPriceManipulation Dimension = "priceManipulation"
	DimensionCommunity         Dimension = "community"
	DimensionAudit             Dimension = "audit"
	DimensionTeam              Dimension = "team"
	DimensionFunding           Dimension = "funding"
	DimensionCompliance        Dimension = "compliance"
	DimensionSentiment         Dimension = "sentiment"
	DimensionHistory           Dimension = "history"
	DimensionSearch            Dimension = "search"
	DimensionWalletRisk        Dimension = "walletRisk"
	DimensionPoolSafety        Dimension = "poolSafety"
	DimensionWebsite           Dimension = "website"
	DimensionAlerts            Dimension = "alerts"
	DimensionSubscribe         Dimension = "subscribe"
	DimensionUsage             Dimension = "usage"
	DimensionNetworks          Dimension = "networks"
	DimensionHealth            Dimension = "health"
	DimensionAuth              Dimension = "auth"
)

// String returns the dimension name.
func (d Dimension) String() string { return string(d) }

// SortDimensions orders dims by name in place.
func SortDimensions(dims []Dimension) { slices.Sort(dims) }

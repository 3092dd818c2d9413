package safety

// Level is the discrete safety tier derived from an overall score.
type Level string

const (
	LevelSafe      Level = "SAFE"
	LevelModerate  Level = "MODERATE"
	LevelRisky     Level = "RISKY"
	LevelDangerous Level = "DANGEROUS"
)

// Tier lower bounds, inclusive.
const (
	SafeThreshold     = 80.0
	ModerateThreshold = 60.0
	RiskyThreshold    = 40.0
)

// Color is a rendering token for a safety level.
type Color string

const (
	ColorGreen      Color = "green"
	ColorOrange     Color = "orange"
	ColorDarkOrange Color = "dark-orange"
	ColorRed        Color = "red"
	ColorGray       Color = "gray"
)

var levelColors = map[Level]Color{
	LevelSafe:      ColorGreen,
	LevelModerate:  ColorOrange,
	LevelRisky:     ColorDarkOrange,
	LevelDangerous: ColorRed,
}

// Classify maps a score to its tier. NaN and negative scores fail every
// comparison and land in DANGEROUS.
func Classify(score float64) Level {
	switch {
	case score >= SafeThreshold:
		return LevelSafe
	case score >= ModerateThreshold:
		return LevelModerate
	case score >= RiskyThreshold:
		return LevelRisky
	default:
		return LevelDangerous
	}
}

// ColorFor returns the rendering color for level, gray for anything unknown.
func ColorFor(level Level) Color {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return ColorGray
}

// String returns the level name.
func (l Level) String() string { return string(l) }

// Color is shorthand for ColorFor(l).
func (l Level) Color() Color { return ColorFor(l) }

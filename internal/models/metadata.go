package models

// Metadata tags an exercise with filterable attributes.
type Metadata struct {
	Difficulty string   `json:"difficulty"`
	Type       string   `json:"type"`
	Duration   string   `json:"duration"`
	Category   Category `json:"category"`
}

// Difficulty values.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Exercise type values. These are also the buckets used for the
// category-completion breakdown in user stats.
const (
	TypeCardio    = "Cardio"
	TypeCore      = "Core"
	TypeLowerBody = "Lower Body"
	TypeUpperBody = "Upper Body"
)

// Duration bucket values.
const (
	DurationShort  = "Short"
	DurationMedium = "Medium"
	DurationLong   = "Long"
)

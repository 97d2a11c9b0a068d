package metadata

import "github.com/claude/shukuma/internal/models"

// All disables a filter facet.
const All = "All"

// Options lists the selectable values per filter facet.
type Options struct {
	Difficulty []string `json:"difficulty"`
	Type       []string `json:"type"`
	Duration   []string `json:"duration"`
}

// FilterOptions returns the values offered for each facet, "All" first.
func FilterOptions() Options {
	return Options{
		Difficulty: []string{All, models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard},
		Type:       []string{All, models.TypeCardio, models.TypeCore, models.TypeLowerBody, models.TypeUpperBody},
		Duration:   []string{All, models.DurationShort, models.DurationMedium, models.DurationLong},
	}
}

// Filter selects exercise cards by metadata. Empty or "All" facets match
// everything.
type Filter struct {
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=All Easy Medium Hard"`
	Type       string `json:"type" validate:"omitempty,oneof=All Cardio Core 'Lower Body' 'Upper Body'"`
	Duration   string `json:"duration" validate:"omitempty,oneof=All Short Medium Long"`
}

// Active reports whether any facet constrains the selection.
func (f Filter) Active() bool {
	return facet(f.Difficulty) || facet(f.Type) || facet(f.Duration)
}

func facet(v string) bool {
	return v != "" && v != All
}

// Match reports whether the card's metadata satisfies every active facet.
func (f Filter) Match(card models.Card) bool {
	m := Lookup(card.ExerciseName)
	if facet(f.Difficulty) && m.Difficulty != f.Difficulty {
		return false
	}
	if facet(f.Type) && m.Type != f.Type {
		return false
	}
	if facet(f.Duration) && m.Duration != f.Duration {
		return false
	}
	return true
}

// Apply returns the exercise cards of cards that match f, order preserved.
func Apply(cards []models.Card, f Filter) []models.Card {
	var out []models.Card
	for _, c := range cards {
		if c.IsExercise() && f.Match(c) {
			out = append(out, c)
		}
	}
	return out
}

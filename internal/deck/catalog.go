package deck

import "github.com/claude/shukuma/internal/models"

// Catalog is the full set of cards built from a deck.
type Catalog []models.Card

// OfType returns the cards of the given type, in catalog order.
func (c Catalog) OfType(t models.CardType) []models.Card {
	var out []models.Card
	for _, card := range c {
		if card.Type == t {
			out = append(out, card)
		}
	}
	return out
}

// Exercises returns the exercise cards only.
func (c Catalog) Exercises() []models.Card {
	return c.OfType(models.CardExercise)
}

// WaterBreaks returns the water-break cards.
func (c Catalog) WaterBreaks() []models.Card {
	return c.OfType(models.CardWaterBreak)
}

// Disclaimer returns the disclaimer card if the deck has one.
func (c Catalog) Disclaimer() (models.Card, bool) {
	for _, card := range c {
		if card.Type == models.CardDisclaimer {
			return card, true
		}
	}
	return models.Card{}, false
}

// Find looks a card up by ID.
func (c Catalog) Find(id string) (models.Card, bool) {
	for _, card := range c {
		if card.ID == id {
			return card, true
		}
	}
	return models.Card{}, false
}

// Grouped buckets cards by exercise name. Names are returned in first-seen
// order alongside the map so callers can iterate deterministically.
func (c Catalog) Grouped() ([]string, map[string][]models.Card) {
	var names []string
	groups := map[string][]models.Card{}
	for _, card := range c {
		if _, ok := groups[card.ExerciseName]; !ok {
			names = append(names, card.ExerciseName)
		}
		groups[card.ExerciseName] = append(groups[card.ExerciseName], card)
	}
	return names, groups
}

// Unique returns one card per exercise name with its variation count.
func (c Catalog) Unique() []models.UniqueExercise {
	names, groups := c.Grouped()
	out := make([]models.UniqueExercise, 0, len(names))
	for _, name := range names {
		cards := groups[name]
		out = append(out, models.UniqueExercise{Card: cards[0], Variations: len(cards)})
	}
	return out
}

// Package compose builds randomized workouts from the card catalog.
package compose

import (
	"math/rand/v2"
	"time"

	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/models"
)

// DefaultBreakEvery is how many exercise cards go between water breaks.
const DefaultBreakEvery = 5

// Composer shuffles and interleaves cards. It is not safe for concurrent
// use; give each goroutine its own Composer.
type Composer struct {
	rng        *rand.Rand
	breakEvery int
}

// Option configures a Composer.
type Option func(*Composer)

// WithBreakEvery sets the water-break interval. Zero or less disables
// water breaks.
func WithBreakEvery(n int) Option {
	return func(c *Composer) { c.breakEvery = n }
}

// New returns a Composer drawing from src. A nil src seeds from the clock.
func New(src rand.Source, opts ...Option) *Composer {
	if src == nil {
		now := uint64(time.Now().UnixNano())
		src = rand.NewPCG(now, now>>32|1)
	}
	c := &Composer{rng: rand.New(src), breakEvery: DefaultBreakEvery}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Random picks up to count exercise cards from catalog in uniformly random
// order and interleaves water breaks. Asking for more cards than the
// catalog holds returns all of them.
func (c *Composer) Random(catalog []models.Card, count int) []models.Card {
	if count <= 0 {
		return nil
	}
	exercises, breaks := partition(catalog)
	shuffled := c.Shuffle(exercises)
	if count < len(shuffled) {
		shuffled = shuffled[:count]
	}
	return c.Interleave(shuffled, breaks)
}

// Filtered shuffles every exercise card whose metadata matches f and
// interleaves water breaks the same way Random does.
func (c *Composer) Filtered(catalog []models.Card, f metadata.Filter) []models.Card {
	_, breaks := partition(catalog)
	selected := metadata.Apply(catalog, f)
	return c.Interleave(c.Shuffle(selected), breaks)
}

// Shuffle returns a uniformly shuffled copy of cards (Fisher–Yates).
func (c *Composer) Shuffle(cards []models.Card) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	for i := len(out) - 1; i > 0; i-- {
		j := c.rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Interleave appends a randomly chosen water break after every
// breakEvery-th card, except after the final card. Card order is
// preserved; breaks are drawn with replacement.
func (c *Composer) Interleave(cards, breaks []models.Card) []models.Card {
	out := make([]models.Card, 0, len(cards)+len(cards)/max(c.breakEvery, 1))
	for i, card := range cards {
		out = append(out, card)
		if c.breakEvery <= 0 || len(breaks) == 0 {
			continue
		}
		if (i+1)%c.breakEvery == 0 && i < len(cards)-1 {
			out = append(out, breaks[c.rng.IntN(len(breaks))])
		}
	}
	return out
}

// partition splits the catalog into exercise and water-break cards;
// disclaimer and back cards take no part in composition.
func partition(catalog []models.Card) (exercises, breaks []models.Card) {
	for _, card := range catalog {
		switch card.Type {
		case models.CardExercise:
			exercises = append(exercises, card)
		case models.CardWaterBreak:
			breaks = append(breaks, card)
		}
	}
	return exercises, breaks
}

// ExerciseCount counts the exercise cards in a composed workout.
func ExerciseCount(cards []models.Card) int {
	n := 0
	for _, card := range cards {
		if card.IsExercise() {
			n++
		}
	}
	return n
}

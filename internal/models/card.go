package models

// Category is the deck section an exercise card belongs to.
type Category string

const (
	CategoryCardio  Category = "cardio"
	CategoryCore    Category = "core"
	CategoryLower   Category = "lower"
	CategoryUpper   Category = "upper"
	CategorySpecial Category = "special"
)

// CardType distinguishes exercise cards from the non-exercise cards in the deck.
type CardType string

const (
	CardExercise   CardType = "exercise"
	CardWaterBreak CardType = "waterbreak"
	CardDisclaimer CardType = "disclaimer"
	CardBack       CardType = "back"
)

// Card is a single displayable card. Cards are built fresh from the deck
// definition on every load and never mutated afterwards.
type Card struct {
	ID           string   `json:"id"`
	ExerciseName string   `json:"exerciseName"`
	Category     Category `json:"category"`
	Type         CardType `json:"type"`
	Filename     string   `json:"filename"`
	ImagePath    string   `json:"imagePath"`
	WebPSrcSet   string   `json:"webpSrcSet"`
	WebPSmall    string   `json:"webpSm,omitempty"`
	WebPLarge    string   `json:"webpLg"`
}

// IsExercise reports whether the card is an exercise card (the only kind
// that is tracked and counted).
func (c Card) IsExercise() bool {
	return c.Type == CardExercise
}

// UniqueExercise is the first card of an exercise plus how many image
// variations the deck has for it.
type UniqueExercise struct {
	Card
	Variations int `json:"variations"`
}

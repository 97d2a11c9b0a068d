package deck

import (
	"strings"
	"testing"

	"github.com/claude/shukuma/internal/models"
)

// TestExerciseName verifies the filename -> exercise name derivation.
func TestExerciseName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"Push Up 3.jpg", "Push Up"},
		{"Plank To Push-Up 1.jpg", "Plank To Push-Up"},
		{"Curtsy Lunge 2.JPG", "Curtsy Lunge"},
		{"Squat.png", "Squat"},
		{"Burpees.jpg.jpg", "Burpees"},
		{"V-Ups 12.jpeg", "V-Ups"},
		{"Tuck Jumps", "Tuck Jumps"},
	}

	for _, tt := range tests {
		if got := ExerciseName(tt.filename); got != tt.want {
			t.Errorf("ExerciseName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

// TestBuildDefaultDeck verifies the embedded deck produces the expected card
// counts and leaves the card back out of the catalog.
func TestBuildDefaultDeck(t *testing.T) {
	cat := Build(Default())

	if got := len(cat.Exercises()); got != 52 {
		t.Errorf("exercise cards = %d, want 52", got)
	}
	if got := len(cat.WaterBreaks()); got != 2 {
		t.Errorf("water break cards = %d, want 2", got)
	}
	if got := len(cat.OfType(models.CardDisclaimer)); got != 1 {
		t.Errorf("disclaimer cards = %d, want 1", got)
	}
	if got := len(cat.OfType(models.CardBack)); got != 0 {
		t.Errorf("back cards in catalog = %d, want 0", got)
	}
	if len(cat) != 55 {
		t.Errorf("catalog size = %d, want 55", len(cat))
	}
}

// TestBuildCardFields verifies ids, names and image references of one
// exercise card and one special card.
func TestBuildCardFields(t *testing.T) {
	cat := Build(Default())

	c, ok := cat.Find("upper-Push Up 3.jpg")
	if !ok {
		t.Fatal("card upper-Push Up 3.jpg not found")
	}
	if c.ExerciseName != "Push Up" {
		t.Errorf("exerciseName = %q, want %q", c.ExerciseName, "Push Up")
	}
	if c.Category != models.CategoryUpper {
		t.Errorf("category = %q, want upper", c.Category)
	}
	wantPath := "/Shukuma Cards_Full Deck/Upper Body Exercise Cards/Push Up 3.jpg"
	if c.ImagePath != wantPath {
		t.Errorf("imagePath = %q, want %q", c.ImagePath, wantPath)
	}
	base := "/Shukuma Cards_Full Deck/Upper Body Exercise Cards/Push Up 3"
	wantSrcSet := base + "-sm.webp 320w, " + base + "-md.webp 640w, " + base + "-lg.webp 1080w"
	if c.WebPSrcSet != wantSrcSet {
		t.Errorf("webpSrcSet = %q, want %q", c.WebPSrcSet, wantSrcSet)
	}
	if c.WebPSmall != base+"-sm.webp" {
		t.Errorf("webpSm = %q", c.WebPSmall)
	}
	if c.WebPLarge != base+"-lg.webp" {
		t.Errorf("webpLg = %q", c.WebPLarge)
	}

	wb, ok := cat.Find("special-waterBreak2")
	if !ok {
		t.Fatal("card special-waterBreak2 not found")
	}
	if wb.Type != models.CardWaterBreak || wb.Category != models.CategorySpecial {
		t.Errorf("water break = %+v", wb)
	}
	if wb.ExerciseName != "Water Break" {
		t.Errorf("water break name = %q", wb.ExerciseName)
	}

	d, ok := cat.Disclaimer()
	if !ok || d.ID != "special-disclaimer" || d.ExerciseName != "Disclaimer" {
		t.Errorf("disclaimer = %+v, %v", d, ok)
	}
}

// TestBuildDeterministic verifies that two builds produce identical catalogs.
func TestBuildDeterministic(t *testing.T) {
	a, b := Build(Default()), Build(Default())
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("card %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

// TestCardType verifies special filenames are classified by the deck.
func TestCardType(t *testing.T) {
	d := Default()
	tests := []struct {
		filename string
		want     models.CardType
	}{
		{"Disclaimer Card.jpg", models.CardDisclaimer},
		{"Water Break Card.jpg", models.CardWaterBreak},
		{"Water Break Card 2.jpg", models.CardWaterBreak},
		{"back of card image.jpg", models.CardBack},
		{"Squat 1.jpg", models.CardExercise},
	}
	for _, tt := range tests {
		if got := d.CardType(tt.filename); got != tt.want {
			t.Errorf("CardType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
	if d.IsSpecial("Squat 1.jpg") {
		t.Error("IsSpecial(Squat 1.jpg) = true")
	}

	back, ok := d.Back()
	if !ok || back.Type != models.CardBack {
		t.Errorf("Back() = %+v, %v", back, ok)
	}
}

// TestUnique verifies one entry per exercise with variation counts.
func TestUnique(t *testing.T) {
	unique := Build(Default()).Unique()
	if len(unique) != 18 {
		t.Fatalf("unique exercises = %d, want 18", len(unique))
	}
	byName := map[string]int{}
	for _, u := range unique {
		byName[u.ExerciseName] = u.Variations
	}
	if byName["Burpees"] != 5 {
		t.Errorf("Burpees variations = %d, want 5", byName["Burpees"])
	}
	if byName["Water Break"] != 2 {
		t.Errorf("Water Break variations = %d, want 2", byName["Water Break"])
	}
	if unique[0].ID != "cardio-Burpees 1.jpg" {
		t.Errorf("first unique card = %q, want cardio-Burpees 1.jpg", unique[0].ID)
	}
}

// TestLoadRejectsUnknownCategory verifies deck validation.
func TestLoadRejectsUnknownCategory(t *testing.T) {
	const bad = `
base_path: "/deck"
categories:
  - key: legs
    dir: "Legs"
    files: ["Squat 1.jpg"]
`
	if _, err := Load(strings.NewReader(bad)); err == nil {
		t.Fatal("expected error for unknown category")
	}
}

// TestLoadRejectsDuplicates verifies decks that would produce duplicate
// card ids are refused.
func TestLoadRejectsDuplicates(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"duplicate file", `
categories:
  - key: core
    dir: "Core"
    files: ["Plank 1.jpg", "Plank 1.jpg"]
`},
		{"duplicate special key", `
categories:
  - key: core
    dir: "Core"
    files: ["Plank 1.jpg"]
special:
  - key: waterBreak1
    file: "Water Break.jpg"
    type: waterbreak
  - key: waterBreak1
    file: "Water Break 2.jpg"
    type: waterbreak
`},
		{"missing special key", `
categories:
  - key: core
    dir: "Core"
    files: ["Plank 1.jpg"]
special:
  - file: "Disclaimer.jpg"
    type: disclaimer
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(strings.NewReader(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

// TestLoadCustomDeck verifies a minimal deck without special cards.
func TestLoadCustomDeck(t *testing.T) {
	const small = `
base_path: "/deck"
variants:
  - suffix: "-sm"
    width: 320
categories:
  - key: core
    dir: "Core"
    files: ["Plank 1.jpg", "Plank 2.jpg"]
`
	d, err := Load(strings.NewReader(small))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cat := Build(d)
	if len(cat) != 2 {
		t.Fatalf("catalog size = %d, want 2", len(cat))
	}
	if cat[0].WebPSrcSet != "/deck/Core/Plank 1-sm.webp 320w" {
		t.Errorf("webpSrcSet = %q", cat[0].WebPSrcSet)
	}
	if _, ok := cat.Disclaimer(); ok {
		t.Error("unexpected disclaimer card")
	}
}

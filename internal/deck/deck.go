package deck

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/claude/shukuma/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed deck.yaml
var defaultDeck []byte

// Deck is the declarative definition the catalog is built from.
type Deck struct {
	BasePath   string        `yaml:"base_path"`
	Variants   []Variant     `yaml:"variants"`
	Categories []CategoryDef `yaml:"categories"`
	Special    []SpecialDef  `yaml:"special"`
}

// Variant is a resized webp rendition of every card image.
type Variant struct {
	Suffix string `yaml:"suffix"`
	Width  int    `yaml:"width"`
}

// CategoryDef lists the image files of one exercise category.
type CategoryDef struct {
	Key   models.Category `yaml:"key"`
	Dir   string          `yaml:"dir"`
	Files []string        `yaml:"files"`
}

// SpecialDef is a non-exercise card (disclaimer, water break, card back).
type SpecialDef struct {
	Key  string          `yaml:"key"`
	File string          `yaml:"file"`
	Type models.CardType `yaml:"type"`
	Name string          `yaml:"name"`
}

// Default returns the embedded Shukuma deck.
func Default() Deck {
	d, err := Load(bytes.NewReader(defaultDeck))
	if err != nil {
		panic(fmt.Sprintf("embedded deck: %v", err))
	}
	return d
}

// LoadFile reads a deck definition from disk. An empty path returns the
// embedded deck.
func LoadFile(path string) (Deck, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return Deck{}, fmt.Errorf("opening deck file: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load parses and validates a YAML deck definition.
func Load(r io.Reader) (Deck, error) {
	var d Deck
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return Deck{}, fmt.Errorf("parsing deck: %w", err)
	}
	if err := d.validate(); err != nil {
		return Deck{}, fmt.Errorf("deck validation: %w", err)
	}
	return d, nil
}

func (d Deck) validate() error {
	if len(d.Categories) == 0 {
		return fmt.Errorf("at least one category is required")
	}
	seen := map[models.Category]bool{}
	for _, c := range d.Categories {
		switch c.Key {
		case models.CategoryCardio, models.CategoryCore, models.CategoryLower, models.CategoryUpper:
		default:
			return fmt.Errorf("unknown category %q", c.Key)
		}
		if seen[c.Key] {
			return fmt.Errorf("duplicate category %q", c.Key)
		}
		seen[c.Key] = true

		files := map[string]bool{}
		for _, f := range c.Files {
			if files[f] {
				return fmt.Errorf("category %q: duplicate file %q", c.Key, f)
			}
			files[f] = true
		}
	}
	keys := map[string]bool{}
	for _, s := range d.Special {
		if s.Key == "" {
			return fmt.Errorf("special card %q: key is required", s.File)
		}
		if keys[s.Key] {
			return fmt.Errorf("duplicate special card %q", s.Key)
		}
		keys[s.Key] = true
		switch s.Type {
		case models.CardDisclaimer, models.CardWaterBreak, models.CardBack:
		default:
			return fmt.Errorf("special card %q: unknown type %q", s.Key, s.Type)
		}
		if s.File == "" {
			return fmt.Errorf("special card %q: file is required", s.Key)
		}
	}
	return nil
}

var (
	imageExt     = regexp.MustCompile(`(?i)\.(jpg|jpeg|png)$`)
	numberSuffix = regexp.MustCompile(`\s+\d+$`)
	strayJPG     = regexp.MustCompile(`\.jpg$`)
)

// ExerciseName derives the exercise name from an image filename:
// "Push Up 3.jpg" -> "Push Up".
func ExerciseName(filename string) string {
	name := imageExt.ReplaceAllString(filename, "")
	name = numberSuffix.ReplaceAllString(name, "")
	name = strayJPG.ReplaceAllString(name, "")
	return strings.TrimSpace(name)
}

// CardType classifies a filename against the deck's special cards.
func (d Deck) CardType(filename string) models.CardType {
	for _, s := range d.Special {
		if s.File == filename {
			return s.Type
		}
	}
	return models.CardExercise
}

// IsSpecial reports whether filename is one of the deck's special cards.
func (d Deck) IsSpecial(filename string) bool {
	return d.CardType(filename) != models.CardExercise
}

// Back returns the card-back image. It never appears in the catalog.
func (d Deck) Back() (models.Card, bool) {
	for _, s := range d.Special {
		if s.Type == models.CardBack {
			return d.specialCard(s), true
		}
	}
	return models.Card{}, false
}

// Build turns the deck definition into the flat card catalog: exercise
// cards in declaration order, then the disclaimer and water-break cards.
func Build(d Deck) Catalog {
	var cards Catalog
	for _, c := range d.Categories {
		for _, filename := range c.Files {
			imagePath := d.BasePath + "/" + c.Dir + "/" + filename
			webpBase := imageExt.ReplaceAllString(imagePath, "")
			cards = append(cards, models.Card{
				ID:           string(c.Key) + "-" + filename,
				ExerciseName: ExerciseName(filename),
				Category:     c.Key,
				Type:         models.CardExercise,
				Filename:     filename,
				ImagePath:    imagePath,
				WebPSrcSet:   d.srcSet(webpBase),
				WebPSmall:    d.variant(webpBase, 0),
				WebPLarge:    d.variant(webpBase, len(d.Variants)-1),
			})
		}
	}

	for _, s := range d.Special {
		if s.Type == models.CardBack {
			continue
		}
		cards = append(cards, d.specialCard(s))
	}
	return cards
}

func (d Deck) specialCard(s SpecialDef) models.Card {
	imagePath := d.BasePath + "/" + s.File
	webpBase := imageExt.ReplaceAllString(imagePath, "")
	return models.Card{
		ID:           "special-" + s.Key,
		ExerciseName: s.Name,
		Category:     models.CategorySpecial,
		Type:         s.Type,
		Filename:     s.File,
		ImagePath:    imagePath,
		WebPSrcSet:   d.srcSet(webpBase),
		WebPLarge:    d.variant(webpBase, len(d.Variants)-1),
	}
}

func (d Deck) srcSet(webpBase string) string {
	parts := make([]string, 0, len(d.Variants))
	for _, v := range d.Variants {
		parts = append(parts, fmt.Sprintf("%s%s.webp %dw", webpBase, v.Suffix, v.Width))
	}
	return strings.Join(parts, ", ")
}

func (d Deck) variant(webpBase string, i int) string {
	if i < 0 || i >= len(d.Variants) {
		return ""
	}
	return webpBase + d.Variants[i].Suffix + ".webp"
}

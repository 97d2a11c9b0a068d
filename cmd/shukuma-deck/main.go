package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"

	"github.com/claude/shukuma/internal/compose"
	"github.com/claude/shukuma/internal/config"
	"github.com/claude/shukuma/internal/deck"
	"github.com/claude/shukuma/internal/instructions"
	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/pkg/validator"
)

const usage = `Usage: shukuma-deck [flags] <command> [args]

Commands:
  cards                 list every card in the deck
  unique                list one card per exercise with its variation count
  random                compose a random workout (-count)
  filtered              compose a filtered workout (-difficulty, -type, -duration)
  instructions <card>   print instructions for a card id or exercise name

Flags:
`

// options are the parsed command-line flags.
type options struct {
	deckPath   string
	count      int
	breakEvery int
	seed       uint64
	filter     metadata.Filter
	args       []string
}

// parseFlags reads args into options. Defaults follow the server's
// workout config.
func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{}
	fs.StringVar(&o.deckPath, "deck", "", "path to deck YAML (default: built-in deck)")
	fs.IntVar(&o.count, "count", config.Default().Workout.DefaultCount, "exercise cards in a random workout")
	fs.IntVar(&o.breakEvery, "break-every", config.Default().Workout.WaterBreakEvery, "exercise cards between water breaks (0 disables)")
	fs.Uint64Var(&o.seed, "seed", 0, "shuffle seed (0: random)")
	fs.StringVar(&o.filter.Difficulty, "difficulty", "", "difficulty filter (All, Easy, Medium, Hard)")
	fs.StringVar(&o.filter.Type, "type", "", "exercise type filter (All, Cardio, Core, Lower Body, Upper Body)")
	fs.StringVar(&o.filter.Duration, "duration", "", "duration filter (All, Short, Medium, Long)")
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	o.args = fs.Args()
	return o, nil
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if len(opts.args) == 0 {
		flag.CommandLine.Usage()
		os.Exit(1)
	}

	d, err := deck.LoadFile(opts.deckPath)
	if err != nil {
		log.Error("failed to load deck", "error", err)
		os.Exit(1)
	}
	catalog := deck.Build(d)

	var src rand.Source
	if opts.seed != 0 {
		src = rand.NewPCG(opts.seed, opts.seed)
	}
	c := compose.New(src, compose.WithBreakEvery(opts.breakEvery))

	switch cmd := opts.args[0]; cmd {
	case "cards":
		for _, card := range catalog {
			fmt.Printf("%-32s %-10s %s\n", card.ID, card.Type, card.ImagePath)
		}

	case "unique":
		for _, u := range catalog.Unique() {
			if !u.IsExercise() {
				continue
			}
			m := metadata.Lookup(u.ExerciseName)
			fmt.Printf("%-22s %-7s x%d  %s/%s/%s\n", u.ExerciseName, u.Category, u.Variations, m.Difficulty, m.Type, m.Duration)
		}

	case "random":
		if opts.count < 1 {
			log.Error("count must be at least 1", "count", opts.count)
			os.Exit(1)
		}
		printWorkout(c.Random(catalog, opts.count))

	case "filtered":
		f := opts.filter
		if err := validator.ValidateStruct(f); err != nil {
			log.Error("invalid filter", "error", err)
			os.Exit(1)
		}
		cards := c.Filtered(catalog, f)
		if len(cards) == 0 {
			log.Warn("no exercises match these filters")
			return
		}
		printWorkout(cards)

	case "instructions":
		query := strings.TrimSpace(strings.Join(opts.args[1:], " "))
		if query == "" {
			log.Error("instructions needs a card id or exercise name")
			os.Exit(1)
		}
		name, kind := query, models.CardExercise
		if card, ok := catalog.Find(query); ok {
			name, kind = card.ExerciseName, card.Type
		}
		fmt.Println(name)
		for i, step := range instructions.For(name, kind) {
			fmt.Printf("  %d. %s\n", i+1, step)
		}

	default:
		log.Error("unknown command", "command", cmd)
		flag.CommandLine.Usage()
		os.Exit(1)
	}
}

func printWorkout(cards []models.Card) {
	for i, card := range cards {
		if card.Type == models.CardWaterBreak {
			fmt.Printf("%3d. -- %s --\n", i+1, card.ExerciseName)
			continue
		}
		m := metadata.Lookup(card.ExerciseName)
		fmt.Printf("%3d. %-22s %-6s %-6s %s\n", i+1, card.ExerciseName, m.Difficulty, m.Duration, card.ID)
	}
	fmt.Printf("%d exercises, %d cards\n", compose.ExerciseCount(cards), len(cards))
}

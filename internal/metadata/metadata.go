// Package metadata tags exercises with difficulty, type and duration, and
// filters cards by those tags.
package metadata

import "github.com/claude/shukuma/internal/models"

var table = map[string]models.Metadata{
	// Cardio
	"Burpees":        {Difficulty: models.DifficultyHard, Type: models.TypeCardio, Duration: models.DurationMedium, Category: models.CategoryCardio},
	"Jumping Jacks":  {Difficulty: models.DifficultyEasy, Type: models.TypeCardio, Duration: models.DurationShort, Category: models.CategoryCardio},
	"Reverse Burpee": {Difficulty: models.DifficultyMedium, Type: models.TypeCardio, Duration: models.DurationMedium, Category: models.CategoryCardio},
	"Tuck Jumps":     {Difficulty: models.DifficultyHard, Type: models.TypeCardio, Duration: models.DurationShort, Category: models.CategoryCardio},

	// Core
	"Crab Toe Touchers": {Difficulty: models.DifficultyMedium, Type: models.TypeCore, Duration: models.DurationMedium, Category: models.CategoryCore},
	"Plank To Push-Up":  {Difficulty: models.DifficultyMedium, Type: models.TypeCore, Duration: models.DurationMedium, Category: models.CategoryCore},
	"Sit-Ups":           {Difficulty: models.DifficultyEasy, Type: models.TypeCore, Duration: models.DurationShort, Category: models.CategoryCore},
	"V-Ups":             {Difficulty: models.DifficultyHard, Type: models.TypeCore, Duration: models.DurationMedium, Category: models.CategoryCore},

	// Lower body
	"Curtsy Lunge":        {Difficulty: models.DifficultyMedium, Type: models.TypeLowerBody, Duration: models.DurationMedium, Category: models.CategoryLower},
	"Curtsy Lunge 2":      {Difficulty: models.DifficultyMedium, Type: models.TypeLowerBody, Duration: models.DurationMedium, Category: models.CategoryLower},
	"Jumping Split Lunge": {Difficulty: models.DifficultyHard, Type: models.TypeLowerBody, Duration: models.DurationMedium, Category: models.CategoryLower},
	"Prison Squat":        {Difficulty: models.DifficultyMedium, Type: models.TypeLowerBody, Duration: models.DurationMedium, Category: models.CategoryLower},
	"Squat":               {Difficulty: models.DifficultyEasy, Type: models.TypeLowerBody, Duration: models.DurationShort, Category: models.CategoryLower},

	// Upper body
	"Decline Push-Up":      {Difficulty: models.DifficultyHard, Type: models.TypeUpperBody, Duration: models.DurationMedium, Category: models.CategoryUpper},
	"Pike Push-Up":         {Difficulty: models.DifficultyMedium, Type: models.TypeUpperBody, Duration: models.DurationMedium, Category: models.CategoryUpper},
	"Push Up":              {Difficulty: models.DifficultyEasy, Type: models.TypeUpperBody, Duration: models.DurationShort, Category: models.CategoryUpper},
	"Push-Up To Toe Touch": {Difficulty: models.DifficultyHard, Type: models.TypeUpperBody, Duration: models.DurationMedium, Category: models.CategoryUpper},
}

// Default is returned for any exercise name not in the table.
var Default = models.Metadata{
	Difficulty: models.DifficultyMedium,
	Type:       models.TypeCore,
	Duration:   models.DurationMedium,
	Category:   models.CategoryCore,
}

// Lookup returns the metadata for an exercise name, or Default.
func Lookup(exerciseName string) models.Metadata {
	if m, ok := table[exerciseName]; ok {
		return m
	}
	return Default
}

// Known reports whether the exercise has its own metadata entry.
func Known(exerciseName string) bool {
	_, ok := table[exerciseName]
	return ok
}

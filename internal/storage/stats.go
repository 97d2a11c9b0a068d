package storage

import (
	"context"

	"github.com/claude/shukuma/internal/models"
)

// statsWindow is how many recent workouts the category breakdown scans.
const statsWindow = 100

// recentCount is how many workouts GetUserStats returns inline.
const recentCount = 5

// categoryLabels maps the card categories recorded on exercise entries to
// the breakdown buckets.
var categoryLabels = map[string]string{
	string(models.CategoryCardio): models.TypeCardio,
	string(models.CategoryCore):   models.TypeCore,
	string(models.CategoryLower):  models.TypeLowerBody,
	string(models.CategoryUpper):  models.TypeUpperBody,
}

// GetUserStats merges the progress aggregate with a category breakdown
// recomputed from the user's most recent workouts.
func (s *Store) GetUserStats(ctx context.Context, uid string) (*models.Stats, error) {
	if uid == "" {
		return nil, ErrNoUser
	}

	workouts, err := s.GetUserWorkouts(ctx, uid, statsWindow)
	if err != nil {
		return nil, err
	}
	progress, err := s.GetUserProgress(ctx, uid)
	if err != nil {
		return nil, err
	}

	categories := map[string]int{
		models.TypeCardio:    0,
		models.TypeCore:      0,
		models.TypeLowerBody: 0,
		models.TypeUpperBody: 0,
	}
	for _, w := range workouts {
		for _, e := range w.Exercises {
			label := e.Category
			if l, ok := categoryLabels[label]; ok {
				label = l
			}
			if _, ok := categories[label]; ok {
				categories[label]++
			}
		}
	}

	recent := workouts
	if len(recent) > recentCount {
		recent = recent[:recentCount]
	}
	if recent == nil {
		recent = []models.WorkoutRecord{}
	}

	monthlyGoal := progress.MonthlyGoal
	if monthlyGoal == 0 {
		monthlyGoal = s.monthlyGoal
	}

	return &models.Stats{
		TotalWorkouts:       progress.TotalWorkouts,
		TotalExercises:      progress.TotalExercises,
		TotalDuration:       progress.TotalDuration,
		CategoriesCompleted: categories,
		WeeklyStreak:        progress.WeeklyStreak,
		MonthlyGoal:         monthlyGoal,
		MonthlyProgress:     progress.MonthlyProgress,
		RecentWorkouts:      recent,
	}, nil
}

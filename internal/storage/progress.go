package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/shukuma/internal/models"
)

func (s *Store) defaultProgress() models.UserProgress {
	return models.UserProgress{MonthlyGoal: s.monthlyGoal}
}

// UpdateUserProgress adds delta onto the user's progress aggregate,
// creating it if needed. Workout deltas also advance the monthly progress
// and the weekly streak.
func (s *Store) UpdateUserProgress(ctx context.Context, uid string, delta models.ProgressDelta) error {
	if uid == "" {
		return ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]models.UserProgress{}
	if _, err := s.read(ctx, keyProgress, &all); err != nil {
		return fmt.Errorf("reading progress: %w", err)
	}

	p, ok := all[uid]
	if !ok {
		p = s.defaultProgress()
	}
	now := s.now()

	p.TotalWorkouts += delta.WorkoutsCompleted
	p.TotalExercises += delta.ExercisesCompleted
	p.TotalDuration += delta.Duration
	if delta.WorkoutsCompleted > 0 {
		advanceCalendar(&p, now, delta.WorkoutsCompleted)
		p.LastWorkoutDate = models.TimestampPtr(now)
	}
	p.UpdatedAt = models.TimestampPtr(now)
	all[uid] = p

	if err := s.write(ctx, keyProgress, all); err != nil {
		return fmt.Errorf("writing progress: %w", err)
	}
	return nil
}

// GetUserProgress returns the user's aggregate, or a zeroed one.
func (s *Store) GetUserProgress(ctx context.Context, uid string) (models.UserProgress, error) {
	if uid == "" {
		return models.UserProgress{}, ErrNoUser
	}
	all := map[string]models.UserProgress{}
	if _, err := s.read(ctx, keyProgress, &all); err != nil {
		return models.UserProgress{}, fmt.Errorf("reading progress: %w", err)
	}
	p, ok := all[uid]
	if !ok {
		return s.defaultProgress(), nil
	}
	if p.MonthlyGoal == 0 {
		p.MonthlyGoal = s.monthlyGoal
	}
	return p, nil
}

// advanceCalendar rolls the monthly counter over at month boundaries and
// extends the streak when the previous workout was in the prior week.
func advanceCalendar(p *models.UserProgress, now time.Time, workouts int) {
	if p.LastWorkoutDate == nil || p.LastWorkoutDate.IsZero() {
		p.MonthlyProgress = workouts
		p.WeeklyStreak = 1
		return
	}
	last := p.LastWorkoutDate.UTC()
	now = now.UTC()

	if last.Year() == now.Year() && last.Month() == now.Month() {
		p.MonthlyProgress += workouts
	} else {
		p.MonthlyProgress = workouts
	}

	switch weekStart(now).Sub(weekStart(last)) {
	case 0:
		if p.WeeklyStreak == 0 {
			p.WeeklyStreak = 1
		}
	case 7 * 24 * time.Hour:
		p.WeeklyStreak++
	default:
		p.WeeklyStreak = 1
	}
}

// weekStart returns midnight UTC of the Monday starting t's week.
func weekStart(t time.Time) time.Time {
	t = t.UTC()
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
}

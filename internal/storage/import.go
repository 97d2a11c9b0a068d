package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/claude/shukuma/internal/models"
)

// ImportWorkout stores a workout under its existing id. It reports false,
// and changes nothing, when a workout with that id is already stored.
func (s *Store) ImportWorkout(ctx context.Context, rec models.WorkoutRecord) (bool, error) {
	if rec.UserID == "" {
		return false, ErrNoUser
	}
	if rec.ID == "" {
		return false, fmt.Errorf("workout without id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	workouts := map[string]models.WorkoutRecord{}
	if _, err := s.read(ctx, keyWorkouts, &workouts); err != nil {
		return false, fmt.Errorf("reading workouts: %w", err)
	}
	if _, ok := workouts[rec.ID]; ok {
		return false, nil
	}
	var byUser []models.WorkoutRecord
	if _, err := s.read(ctx, keyWorkoutsBy(rec.UserID), &byUser); err != nil {
		return false, fmt.Errorf("reading workouts for %s: %w", rec.UserID, err)
	}

	workouts[rec.ID] = rec
	byUser = append(byUser, rec)
	sort.SliceStable(byUser, func(i, j int) bool {
		return byUser[i].CompletedAt.After(byUser[j].CompletedAt.Time)
	})

	if err := s.write(ctx, keyWorkouts, workouts); err != nil {
		return false, fmt.Errorf("writing workouts: %w", err)
	}
	if err := s.write(ctx, keyWorkoutsBy(rec.UserID), byUser); err != nil {
		return false, fmt.Errorf("writing workouts for %s: %w", rec.UserID, err)
	}
	return true, nil
}

// ImportUser merges rec into the stored users. The earliest creation time
// and the latest login win; stored profile fields are only filled in, not
// replaced. It reports whether the user was new.
func (s *Store) ImportUser(ctx context.Context, rec models.UserRecord) (bool, error) {
	if rec.UID == "" {
		return false, ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]models.UserRecord{}
	if _, err := s.read(ctx, keyUsers, &users); err != nil {
		return false, fmt.Errorf("reading users: %w", err)
	}

	existing, found := users[rec.UID]
	existing.UID = rec.UID
	if existing.DisplayName == "" {
		existing.DisplayName = s.cleanName(rec.DisplayName)
	}
	if existing.Email == "" {
		existing.Email = rec.Email
	}
	if existing.PhotoURL == "" {
		existing.PhotoURL = rec.PhotoURL
	}
	if earlier(rec.CreatedAt, existing.CreatedAt) {
		existing.CreatedAt = rec.CreatedAt
	}
	if earlier(existing.LastLogin, rec.LastLogin) {
		existing.LastLogin = rec.LastLogin
	}
	users[rec.UID] = existing

	if err := s.write(ctx, keyUsers, users); err != nil {
		return false, fmt.Errorf("writing users: %w", err)
	}
	return !found, nil
}

// earlier reports whether a is set and before b, treating an unset b as
// later than anything.
func earlier(a, b *models.Timestamp) bool {
	if a == nil || a.IsZero() {
		return false
	}
	if b == nil || b.IsZero() {
		return true
	}
	return a.Before(b.Time)
}

// ImportProgress stores p for uid unless the user already has progress.
func (s *Store) ImportProgress(ctx context.Context, uid string, p models.UserProgress) (bool, error) {
	if uid == "" {
		return false, ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all := map[string]models.UserProgress{}
	if _, err := s.read(ctx, keyProgress, &all); err != nil {
		return false, fmt.Errorf("reading progress: %w", err)
	}
	if _, ok := all[uid]; ok {
		return false, nil
	}
	if p.MonthlyGoal == 0 {
		p.MonthlyGoal = s.monthlyGoal
	}
	all[uid] = p

	if err := s.write(ctx, keyProgress, all); err != nil {
		return false, fmt.Errorf("writing progress: %w", err)
	}
	return true, nil
}

// ImportSettings replaces the user's settings.
func (s *Store) ImportSettings(ctx context.Context, uid string, settings models.Settings) error {
	if uid == "" {
		return ErrNoUser
	}
	if err := s.write(ctx, keySettings(uid), settings); err != nil {
		return fmt.Errorf("writing settings for %s: %w", uid, err)
	}
	return nil
}

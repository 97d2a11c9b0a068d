package storage

import (
	"context"
	"fmt"

	"github.com/claude/shukuma/internal/models"
)

// DefaultWorkoutLimit is used when GetUserWorkouts is asked for no limit.
const DefaultWorkoutLimit = 10

// SaveWorkout stores a workout for uid and returns its generated id. The
// workout goes into the global table and to the front of the user's list.
func (s *Store) SaveWorkout(ctx context.Context, uid string, rec models.WorkoutRecord) (string, error) {
	if uid == "" {
		return "", ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	workouts := map[string]models.WorkoutRecord{}
	if _, err := s.read(ctx, keyWorkouts, &workouts); err != nil {
		return "", fmt.Errorf("reading workouts: %w", err)
	}
	var byUser []models.WorkoutRecord
	if _, err := s.read(ctx, keyWorkoutsBy(uid), &byUser); err != nil {
		return "", fmt.Errorf("reading workouts for %s: %w", uid, err)
	}

	rec.ID = fmt.Sprintf("local_%d_%s", s.now().UnixMilli(), s.newSuffix())
	rec.UserID = uid
	workouts[rec.ID] = rec
	byUser = append([]models.WorkoutRecord{rec}, byUser...)

	if err := s.write(ctx, keyWorkouts, workouts); err != nil {
		return "", fmt.Errorf("writing workouts: %w", err)
	}
	if err := s.write(ctx, keyWorkoutsBy(uid), byUser); err != nil {
		return "", fmt.Errorf("writing workouts for %s: %w", uid, err)
	}
	return rec.ID, nil
}

// GetUserWorkouts returns up to limit of the user's workouts, most recent
// first.
func (s *Store) GetUserWorkouts(ctx context.Context, uid string, limit int) ([]models.WorkoutRecord, error) {
	if uid == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = DefaultWorkoutLimit
	}

	var byUser []models.WorkoutRecord
	if _, err := s.read(ctx, keyWorkoutsBy(uid), &byUser); err != nil {
		return nil, fmt.Errorf("reading workouts for %s: %w", uid, err)
	}
	if len(byUser) > limit {
		byUser = byUser[:limit]
	}
	return byUser, nil
}

// GetWorkout returns one workout by id or ErrNotFound.
func (s *Store) GetWorkout(ctx context.Context, id string) (*models.WorkoutRecord, error) {
	workouts := map[string]models.WorkoutRecord{}
	if _, err := s.read(ctx, keyWorkouts, &workouts); err != nil {
		return nil, fmt.Errorf("reading workouts: %w", err)
	}
	w, ok := workouts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &w, nil
}

package storage

import (
	"context"
	"fmt"

	"github.com/claude/shukuma/internal/models"
)

// GetUserSettings returns the user's settings, or the defaults.
func (s *Store) GetUserSettings(ctx context.Context, uid string) (models.Settings, error) {
	if uid == "" {
		return models.Settings{}, ErrNoUser
	}
	settings := models.DefaultSettings()
	if _, err := s.read(ctx, keySettings(uid), &settings); err != nil {
		return models.Settings{}, fmt.Errorf("reading settings for %s: %w", uid, err)
	}
	return settings, nil
}

// UpdateUserSettings merges update into the stored settings and returns
// the result.
func (s *Store) UpdateUserSettings(ctx context.Context, uid string, update models.SettingsUpdate) (models.Settings, error) {
	if uid == "" {
		return models.Settings{}, ErrNoUser
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	settings, err := s.GetUserSettings(ctx, uid)
	if err != nil {
		return models.Settings{}, err
	}
	settings = settings.Apply(update)
	if err := s.write(ctx, keySettings(uid), settings); err != nil {
		return models.Settings{}, fmt.Errorf("writing settings for %s: %w", uid, err)
	}
	return settings, nil
}

// DisclaimerAccepted reports whether the user has accepted the exercise
// disclaimer.
func (s *Store) DisclaimerAccepted(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, ErrNoUser
	}
	var accepted bool
	if _, err := s.read(ctx, keyDisclaimer(uid), &accepted); err != nil {
		return false, fmt.Errorf("reading disclaimer for %s: %w", uid, err)
	}
	return accepted, nil
}

// AcceptDisclaimer records that the user accepted the disclaimer.
func (s *Store) AcceptDisclaimer(ctx context.Context, uid string) error {
	if uid == "" {
		return ErrNoUser
	}
	if err := s.write(ctx, keyDisclaimer(uid), true); err != nil {
		return fmt.Errorf("writing disclaimer for %s: %w", uid, err)
	}
	return nil
}

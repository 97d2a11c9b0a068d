package storage

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/claude/shukuma/internal/models"
)

// CreateOrUpdateUser upserts a user on an authentication event. The
// original creation time is kept and the last login refreshed; empty
// fields do not overwrite stored ones. A record without a UID is ignored.
func (s *Store) CreateOrUpdateUser(ctx context.Context, rec models.UserRecord) error {
	if rec.UID == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]models.UserRecord{}
	if _, err := s.read(ctx, keyUsers, &users); err != nil {
		return fmt.Errorf("reading users: %w", err)
	}

	now := s.now()
	existing := users[rec.UID]
	existing.UID = rec.UID
	if name := s.cleanName(rec.DisplayName); name != "" {
		existing.DisplayName = name
	}
	if rec.Email != "" {
		existing.Email = rec.Email
	}
	if rec.PhotoURL != "" {
		existing.PhotoURL = rec.PhotoURL
	}
	if existing.CreatedAt == nil || existing.CreatedAt.IsZero() {
		existing.CreatedAt = models.TimestampPtr(now)
	}
	existing.LastLogin = models.TimestampPtr(now)
	users[rec.UID] = existing

	if err := s.write(ctx, keyUsers, users); err != nil {
		return fmt.Errorf("writing users: %w", err)
	}
	return nil
}

// UpdateUserLastLogin refreshes the last login of an existing user.
// Unknown users are left alone.
func (s *Store) UpdateUserLastLogin(ctx context.Context, uid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := map[string]models.UserRecord{}
	if _, err := s.read(ctx, keyUsers, &users); err != nil {
		return fmt.Errorf("reading users: %w", err)
	}
	u, ok := users[uid]
	if !ok {
		return nil
	}
	u.LastLogin = models.TimestampPtr(s.now())
	users[uid] = u

	if err := s.write(ctx, keyUsers, users); err != nil {
		return fmt.Errorf("writing users: %w", err)
	}
	return nil
}

// GetUser returns a stored user or ErrNotFound.
func (s *Store) GetUser(ctx context.Context, uid string) (*models.UserRecord, error) {
	if uid == "" {
		return nil, ErrNoUser
	}
	users := map[string]models.UserRecord{}
	if _, err := s.read(ctx, keyUsers, &users); err != nil {
		return nil, fmt.Errorf("reading users: %w", err)
	}
	u, ok := users[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// cleanName strips markup from a display name supplied by the identity
// provider. The policy escapes plain punctuation too, so the result is
// unescaped back to text.
func (s *Store) cleanName(name string) string {
	return strings.TrimSpace(html.UnescapeString(s.names.Sanitize(name)))
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

// Prefix namespaces every key the Store writes.
const Prefix = "shukuma:"

// DefaultMonthlyGoal is the monthly workout goal of a new progress record.
const DefaultMonthlyGoal = 20

var (
	// ErrNoUser is returned when an operation needs a user id and got none.
	ErrNoUser = errors.New("no user id")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// Store keeps users, workouts, progress and settings as JSON documents on
// a Backend, mirroring a document database's API. Read-modify-write
// sequences are serialised, so one Store must own its Backend.
type Store struct {
	backend     Backend
	mu          sync.Mutex
	now         func() time.Time
	newSuffix   func() string
	names       *bluemonday.Policy
	monthlyGoal int
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMonthlyGoal sets the goal given to new progress records.
func WithMonthlyGoal(goal int) Option {
	return func(s *Store) {
		if goal > 0 {
			s.monthlyGoal = goal
		}
	}
}

// New creates a Store on b.
func New(b Backend, opts ...Option) *Store {
	s := &Store{
		backend: b,
		now:     time.Now,
		newSuffix: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		},
		names:       bluemonday.StrictPolicy(),
		monthlyGoal: DefaultMonthlyGoal,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close closes the underlying backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// read decodes the value under key into dst. It reports false when the key
// is missing or holds something undecodable; callers then use their
// fallback value.
func (s *Store) read(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok, err := s.backend.Get(ctx, Prefix+key)
	if err != nil {
		return false, err
	}
	if !ok || raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.backend.Put(ctx, Prefix+key, string(data))
}

const (
	keyUsers    = "users"
	keyWorkouts = "workouts"
	keyProgress = "progress"
)

func keyWorkoutsBy(uid string) string { return "workouts_by_" + uid }
func keySettings(uid string) string   { return "settings_" + uid }
func keyDisclaimer(uid string) string { return "disclaimer_" + uid }

// Package tracking follows which exercise cards a user has flipped during a
// workout and turns them into a saved workout record.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/models"
)

// SecondsPerCard is the assumed time per card when the start time is unknown.
const SecondsPerCard = 45

var (
	// ErrNothingToSave is returned by Save when no exercise card was flipped.
	ErrNothingToSave = errors.New("no exercises completed")
	// ErrNoUser is returned by Save without a user id.
	ErrNoUser = errors.New("no user id")
)

// Saver persists a finished workout and the progress it adds.
// *storage.Store satisfies it.
type Saver interface {
	SaveWorkout(ctx context.Context, uid string, rec models.WorkoutRecord) (string, error)
	UpdateUserProgress(ctx context.Context, uid string, delta models.ProgressDelta) error
}

// Flip is one recorded exercise card.
type Flip struct {
	Card      models.Card `json:"card"`
	FlippedAt time.Time   `json:"flippedAt"`
}

// Snapshot is a read-only view of a session.
type Snapshot struct {
	Active        bool       `json:"active"`
	StartedAt     *time.Time `json:"startedAt,omitempty"`
	Flipped       []Flip     `json:"flipped"`
	FlippedCount  int        `json:"flippedCount"`
	ExpectedTotal int        `json:"expectedTotal"`
}

// Session is the Idle/Tracking state machine for one user. It is not safe
// for concurrent use; the Registry serialises access for the server.
type Session struct {
	now func() time.Time

	active    bool
	startedAt time.Time
	total     int
	order     []Flip
	seen      map[string]bool

	// saved is the stored workout while its progress update is pending.
	saved *models.WorkoutRecord
}

// NewSession returns an idle session. A nil clock uses time.Now.
func NewSession(now func() time.Time) *Session {
	if now == nil {
		now = time.Now
	}
	return &Session{now: now, seen: map[string]bool{}}
}

// Active reports whether the session is tracking.
func (s *Session) Active() bool { return s.active }

// Count is the number of distinct exercise cards flipped.
func (s *Session) Count() int { return len(s.order) }

// Start begins tracking with an expected total. On an active session it
// only fills in a total that was not known yet.
func (s *Session) Start(total int) {
	if s.active {
		if s.total == 0 && total > 0 {
			s.total = total
		}
		return
	}
	s.active = true
	s.startedAt = s.now()
	s.total = max(total, 0)
	s.order = nil
	s.seen = map[string]bool{}
}

// Flip records card as done, starting the session if needed. Non-exercise
// cards are ignored and never start a session; cards already flipped are
// not recorded twice. It reports whether the card was newly recorded.
func (s *Session) Flip(card models.Card, total int) bool {
	if !card.IsExercise() {
		return false
	}
	s.Start(total)
	if s.seen[card.ID] {
		return false
	}
	s.seen[card.ID] = true
	s.order = append(s.order, Flip{Card: card, FlippedAt: s.now()})
	return true
}

// Reset drops everything and returns to Idle.
func (s *Session) Reset() {
	s.active = false
	s.startedAt = time.Time{}
	s.total = 0
	s.order = nil
	s.seen = map[string]bool{}
	s.saved = nil
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Active:        s.active,
		Flipped:       append([]Flip{}, s.order...),
		FlippedCount:  len(s.order),
		ExpectedTotal: s.total,
	}
	if !s.startedAt.IsZero() {
		t := s.startedAt
		snap.StartedAt = &t
	}
	return snap
}

// Record builds the workout record for the flipped cards without saving it.
func (s *Session) Record(kind models.WorkoutKind) models.WorkoutRecord {
	now := s.now()

	duration := len(s.order) * SecondsPerCard
	if !s.startedAt.IsZero() {
		duration = int(now.Sub(s.startedAt) / time.Second)
	}
	total := s.total
	if total == 0 {
		total = len(s.order)
	}

	entries := make([]models.ExerciseEntry, 0, len(s.order))
	for _, f := range s.order {
		entries = append(entries, models.ExerciseEntry{
			CardID:     f.Card.ID,
			Name:       f.Card.ExerciseName,
			Category:   string(f.Card.Category),
			Difficulty: metadata.Lookup(f.Card.ExerciseName).Difficulty,
			Duration:   SecondsPerCard,
			FlippedAt:  models.NewTimestamp(f.FlippedAt),
		})
	}

	return models.WorkoutRecord{
		Exercises:          entries,
		TotalDuration:      duration,
		CompletedExercises: len(entries),
		TotalExercises:     total,
		CompletedAt:        models.NewTimestamp(now),
		Type:               kind,
	}
}

// Save persists the flipped cards as a workout for uid, adds the matching
// progress delta and resets the session. On any error the session is kept
// so the user can retry. Once the workout itself is stored, a retry only
// repeats the progress update.
func (s *Session) Save(ctx context.Context, uid string, kind models.WorkoutKind, saver Saver) (models.WorkoutRecord, error) {
	if len(s.order) == 0 {
		return models.WorkoutRecord{}, ErrNothingToSave
	}
	if uid == "" {
		return models.WorkoutRecord{}, ErrNoUser
	}

	var rec models.WorkoutRecord
	if s.saved != nil && s.saved.UserID == uid {
		rec = *s.saved
	} else {
		rec = s.Record(kind)
		id, err := saver.SaveWorkout(ctx, uid, rec)
		if err != nil {
			return models.WorkoutRecord{}, fmt.Errorf("saving workout: %w", err)
		}
		rec.ID = id
		rec.UserID = uid
		s.saved = &rec
	}

	delta := models.ProgressDelta{
		WorkoutsCompleted:  1,
		ExercisesCompleted: rec.CompletedExercises,
		Duration:           rec.TotalDuration,
	}
	if err := saver.UpdateUserProgress(ctx, uid, delta); err != nil {
		return models.WorkoutRecord{}, fmt.Errorf("updating progress: %w", err)
	}

	s.Reset()
	return rec, nil
}

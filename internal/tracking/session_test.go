package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/claude/shukuma/internal/deck"
	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/internal/storage"
)

// stepClock advances by step on every call.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func newClock() *stepClock {
	return &stepClock{t: time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC), step: 10 * time.Second}
}

// fakeSaver records calls and can fail on demand.
type fakeSaver struct {
	records     []models.WorkoutRecord
	deltas      []models.ProgressDelta
	saveErr     error
	progressErr error
}

func (f *fakeSaver) SaveWorkout(_ context.Context, uid string, rec models.WorkoutRecord) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	rec.UserID = uid
	f.records = append(f.records, rec)
	return "local_1_abcdef", nil
}

func (f *fakeSaver) UpdateUserProgress(_ context.Context, _ string, d models.ProgressDelta) error {
	if f.progressErr != nil {
		return f.progressErr
	}
	f.deltas = append(f.deltas, d)
	return nil
}

func exerciseCards(t *testing.T, n int) []models.Card {
	t.Helper()
	cards := deck.Build(deck.Default()).Exercises()
	if len(cards) < n {
		t.Fatalf("deck has %d exercise cards, want at least %d", len(cards), n)
	}
	return cards[:n]
}

// TestFlipIdempotent verifies flipping the same card twice counts once.
func TestFlipIdempotent(t *testing.T) {
	s := NewSession(newClock().now)
	card := exerciseCards(t, 1)[0]

	if !s.Flip(card, 10) {
		t.Error("first flip not recorded")
	}
	if s.Flip(card, 10) {
		t.Error("second flip recorded")
	}
	if s.Count() != 1 {
		t.Errorf("count = %d, want 1", s.Count())
	}
	if !s.Active() {
		t.Error("flip did not start the session")
	}
}

// TestFlipIgnoresNonExercise verifies water breaks and the disclaimer never
// enter the flipped set and do not start an idle session.
func TestFlipIgnoresNonExercise(t *testing.T) {
	s := NewSession(newClock().now)
	catalog := deck.Build(deck.Default())

	for _, c := range catalog.WaterBreaks() {
		s.Flip(c, 0)
	}
	if d, ok := catalog.Disclaimer(); ok {
		s.Flip(d, 0)
	}
	if s.Count() != 0 {
		t.Errorf("count = %d, want 0", s.Count())
	}
	if s.Active() || s.Snapshot().StartedAt != nil {
		t.Errorf("non-exercise flip started the session: %+v", s.Snapshot())
	}
}

// TestWaterBreakFlipKeepsStartTime verifies the start time comes from the
// first exercise flip, not an earlier water break.
func TestWaterBreakFlipKeepsStartTime(t *testing.T) {
	clock := newClock()
	s := NewSession(clock.now)
	catalog := deck.Build(deck.Default())

	s.Flip(catalog.WaterBreaks()[0], 5)
	s.Flip(exerciseCards(t, 1)[0], 5)

	snap := s.Snapshot()
	if snap.StartedAt == nil || !snap.StartedAt.Equal(clock.t.Add(-clock.step)) {
		t.Errorf("startedAt = %v, want the exercise flip's start", snap.StartedAt)
	}
	if snap.ExpectedTotal != 5 {
		t.Errorf("expectedTotal = %d, want 5", snap.ExpectedTotal)
	}
}

// TestStartKeepsExistingSession verifies Start on an active session only
// fills a missing total.
func TestStartKeepsExistingSession(t *testing.T) {
	s := NewSession(newClock().now)
	cards := exerciseCards(t, 2)

	s.Flip(cards[0], 0)
	before := s.Snapshot()
	s.Start(8)
	after := s.Snapshot()

	if after.ExpectedTotal != 8 {
		t.Errorf("expectedTotal = %d, want 8", after.ExpectedTotal)
	}
	if after.FlippedCount != 1 {
		t.Errorf("flippedCount = %d, want 1", after.FlippedCount)
	}
	if !after.StartedAt.Equal(*before.StartedAt) {
		t.Errorf("startedAt changed")
	}

	s.Start(3)
	if s.Snapshot().ExpectedTotal != 8 {
		t.Errorf("known total was overwritten")
	}
}

// TestSaveNothing verifies an empty session refuses to save and is
// unchanged.
func TestSaveNothing(t *testing.T) {
	s := NewSession(newClock().now)
	s.Start(10)
	saver := &fakeSaver{}

	_, err := s.Save(context.Background(), "alice", models.WorkoutManual, saver)
	if !errors.Is(err, ErrNothingToSave) {
		t.Fatalf("err = %v, want ErrNothingToSave", err)
	}
	if !s.Active() || s.Snapshot().ExpectedTotal != 10 {
		t.Errorf("session changed: %+v", s.Snapshot())
	}
	if len(saver.records) != 0 {
		t.Errorf("saver called %d times", len(saver.records))
	}
}

// TestSaveNoUser verifies a session without a user is not persisted.
func TestSaveNoUser(t *testing.T) {
	s := NewSession(newClock().now)
	s.Flip(exerciseCards(t, 1)[0], 5)
	saver := &fakeSaver{}

	if _, err := s.Save(context.Background(), "", models.WorkoutManual, saver); !errors.Is(err, ErrNoUser) {
		t.Fatalf("err = %v, want ErrNoUser", err)
	}
	if len(saver.records) != 0 || s.Count() != 1 {
		t.Errorf("saved %d records, count %d", len(saver.records), s.Count())
	}
}

// TestSaveBuildsRecord verifies the saved record, the progress delta and
// the reset afterwards.
func TestSaveBuildsRecord(t *testing.T) {
	clock := newClock()
	s := NewSession(clock.now)
	cards := exerciseCards(t, 3)

	s.Start(10)
	for _, c := range cards {
		s.Flip(c, 10)
	}
	saver := &fakeSaver{}
	rec, err := s.Save(context.Background(), "alice", models.WorkoutRandom, saver)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if rec.ID != "local_1_abcdef" || rec.UserID != "alice" {
		t.Errorf("id/user = %q/%q", rec.ID, rec.UserID)
	}
	if rec.CompletedExercises != 3 || rec.TotalExercises != 10 {
		t.Errorf("completed/total = %d/%d, want 3/10", rec.CompletedExercises, rec.TotalExercises)
	}
	// Start, three flips and Record each read the clock once.
	if rec.TotalDuration != 40 {
		t.Errorf("totalDuration = %d, want 40", rec.TotalDuration)
	}
	if rec.Type != models.WorkoutRandom {
		t.Errorf("type = %q, want random", rec.Type)
	}
	for i, e := range rec.Exercises {
		if e.CardID != cards[i].ID {
			t.Errorf("exercise %d = %q, want %q", i, e.CardID, cards[i].ID)
		}
		if e.Duration != SecondsPerCard {
			t.Errorf("exercise %d duration = %d", i, e.Duration)
		}
		if e.Difficulty == "" {
			t.Errorf("exercise %d has no difficulty", i)
		}
		if e.FlippedAt.IsZero() {
			t.Errorf("exercise %d has no flip time", i)
		}
	}

	if len(saver.deltas) != 1 {
		t.Fatalf("progress updated %d times, want 1", len(saver.deltas))
	}
	want := models.ProgressDelta{WorkoutsCompleted: 1, ExercisesCompleted: 3, Duration: 40}
	if saver.deltas[0] != want {
		t.Errorf("delta = %+v, want %+v", saver.deltas[0], want)
	}
	if s.Active() || s.Count() != 0 {
		t.Errorf("session not reset: %+v", s.Snapshot())
	}
}

// TestSaveTotalFallsBackToFlips verifies the total when none was given.
func TestSaveTotalFallsBackToFlips(t *testing.T) {
	s := NewSession(newClock().now)
	for _, c := range exerciseCards(t, 4) {
		s.Flip(c, 0)
	}
	rec, err := s.Save(context.Background(), "alice", models.WorkoutManual, &fakeSaver{})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rec.TotalExercises != 4 {
		t.Errorf("totalExercises = %d, want 4", rec.TotalExercises)
	}
}

// TestRecordWithoutStartTime verifies the per-card duration estimate.
func TestRecordWithoutStartTime(t *testing.T) {
	s := NewSession(newClock().now)
	for _, c := range exerciseCards(t, 3) {
		s.Flip(c, 0)
	}
	s.startedAt = time.Time{}
	if got := s.Record(models.WorkoutManual).TotalDuration; got != 3*SecondsPerCard {
		t.Errorf("totalDuration = %d, want %d", got, 3*SecondsPerCard)
	}
}

// TestSaveErrorKeepsState verifies storage failures leave the session
// intact.
func TestSaveErrorKeepsState(t *testing.T) {
	tests := []struct {
		name  string
		saver *fakeSaver
	}{
		{"save fails", &fakeSaver{saveErr: errors.New("disk full")}},
		{"progress fails", &fakeSaver{progressErr: errors.New("disk full")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession(newClock().now)
			s.Flip(exerciseCards(t, 1)[0], 5)

			if _, err := s.Save(context.Background(), "alice", models.WorkoutManual, tt.saver); err == nil {
				t.Fatal("expected error")
			}
			if !s.Active() || s.Count() != 1 {
				t.Errorf("session changed: %+v", s.Snapshot())
			}
		})
	}
}

// TestSaveRetryAfterProgressError verifies a retry after a failed progress
// update does not store the workout again.
func TestSaveRetryAfterProgressError(t *testing.T) {
	s := NewSession(newClock().now)
	for _, c := range exerciseCards(t, 2) {
		s.Flip(c, 4)
	}
	saver := &fakeSaver{progressErr: errors.New("disk full")}

	if _, err := s.Save(context.Background(), "alice", models.WorkoutManual, saver); err == nil {
		t.Fatal("expected error")
	}
	saver.progressErr = nil
	rec, err := s.Save(context.Background(), "alice", models.WorkoutManual, saver)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}

	if len(saver.records) != 1 {
		t.Errorf("workouts persisted = %d, want 1", len(saver.records))
	}
	if len(saver.deltas) != 1 {
		t.Errorf("progress updated %d times, want 1", len(saver.deltas))
	}
	if rec.ID != "local_1_abcdef" || rec.TotalDuration != saver.records[0].TotalDuration {
		t.Errorf("retry returned %+v, want the stored record", rec)
	}
	if s.Active() {
		t.Error("session not reset after retry")
	}
}

// TestReset verifies Reset discards flips.
func TestReset(t *testing.T) {
	s := NewSession(newClock().now)
	card := exerciseCards(t, 1)[0]
	s.Flip(card, 5)
	s.Reset()

	if s.Active() || s.Count() != 0 || s.Snapshot().StartedAt != nil {
		t.Errorf("not idle after reset: %+v", s.Snapshot())
	}
	if !s.Flip(card, 0) {
		t.Error("card not flippable again after reset")
	}
}

// TestSaveToStore runs a session against the real store and checks the
// most recent workout matches.
func TestSaveToStore(t *testing.T) {
	ctx := context.Background()
	store := storage.New(storage.NewMemory())
	s := NewSession(newClock().now)

	for _, c := range exerciseCards(t, 2) {
		s.Flip(c, 6)
	}
	rec, err := s.Save(ctx, "alice", models.WorkoutManual, store)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.GetUserWorkouts(ctx, "alice", 1)
	if err != nil {
		t.Fatalf("GetUserWorkouts: %v", err)
	}
	if len(got) != 1 || got[0].ID != rec.ID {
		t.Fatalf("stored = %+v, want id %s", got, rec.ID)
	}
	if got[0].CompletedExercises != 2 || got[0].TotalExercises != 6 {
		t.Errorf("counters = %d/%d, want 2/6", got[0].CompletedExercises, got[0].TotalExercises)
	}

	p, err := store.GetUserProgress(ctx, "alice")
	if err != nil {
		t.Fatalf("GetUserProgress: %v", err)
	}
	if p.TotalWorkouts != 1 || p.TotalExercises != 2 {
		t.Errorf("progress = %d/%d, want 1/2", p.TotalWorkouts, p.TotalExercises)
	}
}

// TestRegistry verifies sessions are per user, reused and droppable.
func TestRegistry(t *testing.T) {
	r := NewRegistry(newClock().now)
	card := exerciseCards(t, 1)[0]

	_ = r.With("alice", func(s *Session) error {
		s.Flip(card, 0)
		return nil
	})
	_ = r.With("alice", func(s *Session) error {
		if s.Count() != 1 {
			t.Errorf("alice count = %d, want 1", s.Count())
		}
		return nil
	})
	_ = r.With("bob", func(s *Session) error {
		if s.Count() != 0 {
			t.Errorf("bob count = %d, want 0", s.Count())
		}
		return nil
	})
	if r.Len() != 2 {
		t.Errorf("len = %d, want 2", r.Len())
	}

	r.Drop("alice")
	_ = r.With("alice", func(s *Session) error {
		if s.Active() {
			t.Error("dropped session still active")
		}
		return nil
	})

	wantErr := errors.New("boom")
	if err := r.With("bob", func(*Session) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}

// TestRegistryConcurrentFlips verifies concurrent flips for one user are
// serialised.
func TestRegistryConcurrentFlips(t *testing.T) {
	r := NewRegistry(nil)
	cards := exerciseCards(t, 20)

	var wg sync.WaitGroup
	for _, c := range cards {
		wg.Add(1)
		go func(c models.Card) {
			defer wg.Done()
			_ = r.With("alice", func(s *Session) error {
				s.Flip(c, 0)
				return nil
			})
		}(c)
	}
	wg.Wait()

	_ = r.With("alice", func(s *Session) error {
		if s.Count() != len(cards) {
			t.Errorf("count = %d, want %d", s.Count(), len(cards))
		}
		return nil
	})
}

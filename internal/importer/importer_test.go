package importer

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/claude/shukuma/internal/storage"
	"github.com/klauspost/compress/gzip"
)

// dump is a browser storage export: every value is a JSON string, the way
// JSON.stringify(localStorage) writes it.
const dump = `{
  "shukuma:users": "{\"alice\":{\"uid\":\"alice\",\"displayName\":\"Alice\",\"createdAt\":\"2026-01-05T10:00:00.000Z\",\"lastLogin\":\"2026-03-01T08:00:00.000Z\"}}",
  "shukuma:workouts": "{\"local_1767607200000_abc123\":{\"id\":\"local_1767607200000_abc123\",\"userId\":\"alice\",\"exercises\":[{\"cardId\":\"core-Sit-Ups 1.jpg\",\"name\":\"Sit-Ups\",\"category\":\"core\",\"difficulty\":\"Easy\",\"duration\":45,\"flippedAt\":\"2026-01-05T10:01:00.000Z\"}],\"totalDuration\":45,\"completedExercises\":1,\"totalExercises\":1,\"completedAt\":\"2026-01-05T10:02:00.000Z\",\"type\":\"manual\"}}",
  "shukuma:workouts_by_alice": "[{\"id\":\"local_1767607200000_abc123\",\"userId\":\"alice\",\"completedExercises\":1,\"completedAt\":\"2026-01-05T10:02:00.000Z\",\"type\":\"manual\"},{\"id\":\"local_1767000000000_zzz999\",\"completedExercises\":2,\"completedAt\":\"2025-12-29T09:20:00.000Z\",\"type\":\"random\"}]",
  "shukuma:progress": "{\"alice\":{\"totalWorkouts\":2,\"totalExercises\":3,\"totalDuration\":135,\"weeklyStreak\":0,\"monthlyGoal\":20,\"monthlyProgress\":0}}",
  "shukuma:settings_alice": "{\"defaultDifficulty\":\"Easy\",\"autoWaterBreaks\":false}",
  "shukumaDisclaimerAccepted": "true",
  "theme": "dark"
}`

func newTestImporter(t *testing.T, dryRun bool, opts ...Option) (*Importer, *storage.Store) {
	t.Helper()
	store := storage.New(storage.NewMemory())
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), dryRun, opts...), store
}

// TestImport verifies every record kind reaches the store and duplicate
// workouts between the global table and the per-user list are stored once.
func TestImport(t *testing.T) {
	imp, store := newTestImporter(t, false, WithDisclaimerUser("alice"))
	ctx := context.Background()

	stats, err := imp.Import(ctx, strings.NewReader(dump))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.UsersInserted != 1 {
		t.Errorf("UsersInserted = %d, want 1", stats.UsersInserted)
	}
	if stats.WorkoutsInserted != 2 || stats.WorkoutsDuplicated != 1 {
		t.Errorf("workouts inserted/duplicated = %d/%d, want 2/1", stats.WorkoutsInserted, stats.WorkoutsDuplicated)
	}
	if stats.ProgressInserted != 1 || stats.SettingsImported != 1 || !stats.DisclaimerAccepted {
		t.Errorf("stats = %+v", stats)
	}
	if len(stats.SkippedKeys) != 1 || stats.SkippedKeys[0] != "theme" {
		t.Errorf("SkippedKeys = %v, want [theme]", stats.SkippedKeys)
	}

	workouts, err := store.GetUserWorkouts(ctx, "alice", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 2 {
		t.Fatalf("got %d workouts, want 2", len(workouts))
	}
	if workouts[0].ID != "local_1767607200000_abc123" {
		t.Errorf("newest workout = %q, want the January one", workouts[0].ID)
	}
	if workouts[1].UserID != "alice" {
		t.Errorf("list-only workout userId = %q, want alice", workouts[1].UserID)
	}

	w, err := store.GetWorkout(ctx, "local_1767607200000_abc123")
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Exercises) != 1 || w.Exercises[0].Name != "Sit-Ups" {
		t.Errorf("exercises = %+v, want the full record from the global table", w.Exercises)
	}

	p, err := store.GetUserProgress(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalWorkouts != 2 || p.TotalDuration != 135 {
		t.Errorf("progress = %+v", p)
	}

	s, err := store.GetUserSettings(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if s.DefaultDifficulty != "Easy" || s.AutoWaterBreaks || s.DefaultDuration != "All" {
		t.Errorf("settings = %+v, want Easy, no breaks, default duration", s)
	}

	accepted, err := store.DisclaimerAccepted(ctx, "alice")
	if err != nil || !accepted {
		t.Errorf("DisclaimerAccepted = %v, %v; want true", accepted, err)
	}

	u, err := store.GetUser(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}
	if u.CreatedAt == nil || u.CreatedAt.Year() != 2026 || u.CreatedAt.Month() != 1 {
		t.Errorf("createdAt = %v, want 2026-01-05", u.CreatedAt)
	}
}

// TestImportTwice verifies a second run inserts nothing new and keeps
// existing progress.
func TestImportTwice(t *testing.T) {
	imp, store := newTestImporter(t, false)
	ctx := context.Background()
	if _, err := imp.Import(ctx, strings.NewReader(dump)); err != nil {
		t.Fatal(err)
	}

	again := New(store, slog.New(slog.NewTextHandler(io.Discard, nil)), false)
	stats, err := again.Import(ctx, strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsInserted != 0 || stats.WorkoutsDuplicated != 3 {
		t.Errorf("workouts inserted/duplicated = %d/%d, want 0/3", stats.WorkoutsInserted, stats.WorkoutsDuplicated)
	}
	if stats.UsersMerged != 1 || stats.ProgressSkipped != 1 {
		t.Errorf("stats = %+v, want user merged and progress skipped", stats)
	}
}

// TestImportDryRun verifies nothing is written in dry-run mode.
func TestImportDryRun(t *testing.T) {
	imp, store := newTestImporter(t, true, WithDisclaimerUser("alice"))
	ctx := context.Background()

	stats, err := imp.Import(ctx, strings.NewReader(dump))
	if err != nil {
		t.Fatal(err)
	}
	if stats.WorkoutsInserted != 3 {
		t.Errorf("WorkoutsInserted = %d, want 3 counted", stats.WorkoutsInserted)
	}
	workouts, _ := store.GetUserWorkouts(ctx, "alice", 10)
	if len(workouts) != 0 {
		t.Errorf("dry run stored %d workouts", len(workouts))
	}
	if accepted, _ := store.DisclaimerAccepted(ctx, "alice"); accepted {
		t.Error("dry run accepted the disclaimer")
	}
}

// TestImportDisclaimerWithoutUser verifies the legacy flag is skipped when
// no user is named.
func TestImportDisclaimerWithoutUser(t *testing.T) {
	imp, _ := newTestImporter(t, false)
	stats, err := imp.Import(context.Background(), strings.NewReader(`{"shukumaDisclaimerAccepted":"true"}`))
	if err != nil {
		t.Fatal(err)
	}
	if stats.DisclaimerAccepted {
		t.Error("DisclaimerAccepted = true without a user")
	}
}

// TestImportInlineAndBadValues verifies inline JSON values are accepted and
// undecodable values are counted without stopping the import.
func TestImportInlineAndBadValues(t *testing.T) {
	imp, store := newTestImporter(t, false)
	ctx := context.Background()

	in := `{
  "shukuma:progress": {"bob": {"totalWorkouts": 4}},
  "shukuma:users": "not json"
}`
	stats, err := imp.Import(ctx, strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if stats.KeysRead != 2 || stats.KeysErrored != 1 {
		t.Errorf("read/errored = %d/%d, want 2/1", stats.KeysRead, stats.KeysErrored)
	}
	p, err := store.GetUserProgress(ctx, "bob")
	if err != nil {
		t.Fatal(err)
	}
	if p.TotalWorkouts != 4 || p.MonthlyGoal != storage.DefaultMonthlyGoal {
		t.Errorf("progress = %+v", p)
	}
}

// TestImportNotJSON verifies a malformed dump is an error.
func TestImportNotJSON(t *testing.T) {
	imp, _ := newTestImporter(t, false)
	if _, err := imp.Import(context.Background(), strings.NewReader("[1,2,3]")); err == nil {
		t.Fatal("expected error for non-object dump")
	}
}

// TestImportFileGzip verifies compressed and plain dumps both load.
func TestImportFileGzip(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "dump.json")
	if err := os.WriteFile(plain, []byte(dump), 0o644); err != nil {
		t.Fatal(err)
	}

	compressed := filepath.Join(dir, "dump.json.gz")
	f, err := os.Create(compressed)
	if err != nil {
		t.Fatal(err)
	}
	zw := gzip.NewWriter(f)
	if _, err := zw.Write([]byte(dump)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{plain, compressed} {
		t.Run(filepath.Base(path), func(t *testing.T) {
			imp, _ := newTestImporter(t, true)
			stats, err := imp.ImportFile(context.Background(), path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stats.UsersInserted != 1 {
				t.Errorf("UsersInserted = %d, want 1", stats.UsersInserted)
			}
		})
	}
}

// TestImportFileMissing verifies a missing file is reported.
func TestImportFileMissing(t *testing.T) {
	imp, _ := newTestImporter(t, true)
	if _, err := imp.ImportFile(context.Background(), filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

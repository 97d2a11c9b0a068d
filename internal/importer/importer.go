// Package importer loads a browser storage dump of the Shukuma web app
// into a Store, so history kept in one browser can move to the server.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/internal/storage"
)

// LegacyDisclaimerKey is the un-namespaced key the web app kept the
// disclaimer flag under. It belongs to no particular user.
const LegacyDisclaimerKey = "shukumaDisclaimerAccepted"

// Stats tracks import progress.
type Stats struct {
	KeysRead    int `json:"keys_read"`
	KeysErrored int `json:"keys_errored"`

	UsersInserted      int  `json:"users_inserted"`
	UsersMerged        int  `json:"users_merged"`
	WorkoutsInserted   int  `json:"workouts_inserted"`
	WorkoutsDuplicated int  `json:"workouts_duplicated"`
	ProgressInserted   int  `json:"progress_inserted"`
	ProgressSkipped    int  `json:"progress_skipped"`
	SettingsImported   int  `json:"settings_imported"`
	DisclaimerAccepted bool `json:"disclaimer_accepted"`

	SkippedKeys []string `json:"skipped_keys,omitempty"`
}

// Importer writes the records of a dump into a Store.
type Importer struct {
	store          *storage.Store
	log            *slog.Logger
	dryRun         bool
	disclaimerUser string
	stats          Stats
}

// Option configures an Importer.
type Option func(*Importer)

// WithDisclaimerUser attributes the dump's legacy disclaimer flag to uid.
// Without it the flag is skipped.
func WithDisclaimerUser(uid string) Option {
	return func(imp *Importer) { imp.disclaimerUser = uid }
}

// New creates a new Importer. In dry-run mode records are decoded and
// counted but nothing is written.
func New(store *storage.Store, log *slog.Logger, dryRun bool, opts ...Option) *Importer {
	imp := &Importer{store: store, log: log, dryRun: dryRun}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// ImportFile imports the dump at path. Gzip-compressed dumps are accepted.
func (imp *Importer) ImportFile(ctx context.Context, path string) (*Stats, error) {
	rc, err := OpenDump(path)
	if err != nil {
		return &imp.stats, err
	}
	defer rc.Close()
	return imp.Import(ctx, rc)
}

// Import reads a dump from r. A dump is a JSON object of storage keys to
// values, as produced by JSON.stringify(localStorage); values may be
// JSON-encoded strings or inline JSON.
func (imp *Importer) Import(ctx context.Context, r io.Reader) (*Stats, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return &imp.stats, fmt.Errorf("parsing dump: %w", err)
	}

	values := make(map[string][]byte, len(raw))
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		values[k] = unwrap(v)
		keys = append(keys, k)
	}
	sort.Strings(keys)

	// Users first so workouts land on known profiles, then workouts from the
	// global table before the per-user lists.
	phases := []struct {
		match func(string) bool
		apply func(context.Context, string, []byte) error
	}{
		{func(k string) bool { return k == storage.Prefix+"users" }, imp.importUsers},
		{func(k string) bool { return k == storage.Prefix+"workouts" }, imp.importWorkoutTable},
		{func(k string) bool { return strings.HasPrefix(k, storage.Prefix+"workouts_by_") }, imp.importWorkoutList},
		{func(k string) bool { return k == storage.Prefix+"progress" }, imp.importProgress},
		{func(k string) bool { return strings.HasPrefix(k, storage.Prefix+"settings_") }, imp.importSettings},
		{func(k string) bool { return k == LegacyDisclaimerKey }, imp.importDisclaimer},
	}

	handled := map[string]bool{}
	for _, p := range phases {
		for _, k := range keys {
			if !p.match(k) {
				continue
			}
			handled[k] = true
			imp.stats.KeysRead++
			if err := p.apply(ctx, k, values[k]); err != nil {
				if ctx.Err() != nil {
					return &imp.stats, ctx.Err()
				}
				imp.log.Warn("key import failed", "key", k, "error", err)
				imp.stats.KeysErrored++
			}
		}
	}

	for _, k := range keys {
		if !handled[k] {
			imp.stats.SkippedKeys = append(imp.stats.SkippedKeys, k)
		}
	}
	return &imp.stats, nil
}

// unwrap returns the JSON inside a JSON string, or v itself when it is
// not a string.
func unwrap(v json.RawMessage) []byte {
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return []byte(s)
	}
	return v
}

func (imp *Importer) importUsers(ctx context.Context, _ string, data []byte) error {
	users := map[string]models.UserRecord{}
	if err := json.Unmarshal(data, &users); err != nil {
		return fmt.Errorf("decoding users: %w", err)
	}
	for uid, u := range users {
		if u.UID == "" {
			u.UID = uid
		}
		if imp.dryRun {
			imp.stats.UsersInserted++
			continue
		}
		inserted, err := imp.store.ImportUser(ctx, u)
		if err != nil {
			return fmt.Errorf("user %s: %w", uid, err)
		}
		if inserted {
			imp.stats.UsersInserted++
		} else {
			imp.stats.UsersMerged++
		}
	}
	return nil
}

func (imp *Importer) importWorkoutTable(ctx context.Context, _ string, data []byte) error {
	workouts := map[string]models.WorkoutRecord{}
	if err := json.Unmarshal(data, &workouts); err != nil {
		return fmt.Errorf("decoding workouts: %w", err)
	}
	ids := make([]string, 0, len(workouts))
	for id := range workouts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		w := workouts[id]
		if w.ID == "" {
			w.ID = id
		}
		if err := imp.importWorkout(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (imp *Importer) importWorkoutList(ctx context.Context, key string, data []byte) error {
	uid := strings.TrimPrefix(key, storage.Prefix+"workouts_by_")
	var workouts []models.WorkoutRecord
	if err := json.Unmarshal(data, &workouts); err != nil {
		return fmt.Errorf("decoding workouts for %s: %w", uid, err)
	}
	for _, w := range workouts {
		if w.UserID == "" {
			w.UserID = uid
		}
		if err := imp.importWorkout(ctx, w); err != nil {
			return err
		}
	}
	return nil
}

func (imp *Importer) importWorkout(ctx context.Context, w models.WorkoutRecord) error {
	if w.ID == "" || w.UserID == "" {
		imp.log.Warn("skipping workout without id or user", "id", w.ID, "user", w.UserID)
		return nil
	}
	if imp.dryRun {
		imp.stats.WorkoutsInserted++
		return nil
	}
	inserted, err := imp.store.ImportWorkout(ctx, w)
	if err != nil {
		return fmt.Errorf("workout %s: %w", w.ID, err)
	}
	if inserted {
		imp.stats.WorkoutsInserted++
	} else {
		imp.stats.WorkoutsDuplicated++
	}
	return nil
}

func (imp *Importer) importProgress(ctx context.Context, _ string, data []byte) error {
	all := map[string]models.UserProgress{}
	if err := json.Unmarshal(data, &all); err != nil {
		return fmt.Errorf("decoding progress: %w", err)
	}
	for uid, p := range all {
		if imp.dryRun {
			imp.stats.ProgressInserted++
			continue
		}
		inserted, err := imp.store.ImportProgress(ctx, uid, p)
		if err != nil {
			return fmt.Errorf("progress for %s: %w", uid, err)
		}
		if inserted {
			imp.stats.ProgressInserted++
		} else {
			imp.stats.ProgressSkipped++
		}
	}
	return nil
}

func (imp *Importer) importSettings(ctx context.Context, key string, data []byte) error {
	uid := strings.TrimPrefix(key, storage.Prefix+"settings_")
	settings := models.DefaultSettings()
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("decoding settings for %s: %w", uid, err)
	}
	imp.stats.SettingsImported++
	if imp.dryRun {
		return nil
	}
	return imp.store.ImportSettings(ctx, uid, settings)
}

func (imp *Importer) importDisclaimer(ctx context.Context, key string, data []byte) error {
	if strings.TrimSpace(string(data)) != "true" {
		return nil
	}
	if imp.disclaimerUser == "" {
		imp.log.Info("disclaimer flag has no user; skipping", "key", key)
		return nil
	}
	imp.stats.DisclaimerAccepted = true
	if imp.dryRun {
		return nil
	}
	return imp.store.AcceptDisclaimer(ctx, imp.disclaimerUser)
}

// Package upload sends browser storage dumps to a remote Shukuma server,
// remembering which dumps each server has already taken.
package upload

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/shukuma/internal/importer"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	// Server-side totals summed over uploaded files.
	Imported importer.Stats
}

// Uploader reads dump files and POSTs them to the server.
type Uploader struct {
	client *Client
	state  *StateDB
	server string
	dryRun bool
	force  bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. server keys the state database; force
// re-sends dumps already marked as uploaded.
func New(client *Client, state *StateDB, server string, dryRun, force bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		server: server,
		dryRun: dryRun,
		force:  force,
		log:    log,
	}
}

// Run uploads each dump in paths. A failing file is logged and counted;
// Run only returns an error when the context is cancelled or the state
// database fails.
func (u *Uploader) Run(ctx context.Context, paths []string) (*Stats, error) {
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++

		data, err := ReadDump(path)
		if err != nil {
			u.log.Warn("read failed", "file", path, "error", err)
			u.stats.FilesErrored++
			continue
		}
		hash := HashBytes(data)

		if !u.force {
			done, err := u.state.IsUploaded(u.server, hash)
			if err != nil {
				return &u.stats, fmt.Errorf("checking state for %s: %w", path, err)
			}
			if done {
				u.log.Info("already uploaded", "file", path)
				u.stats.FilesSkipped++
				continue
			}
		}

		stats, err := u.client.SendDump(ctx, data, u.dryRun)
		if err != nil {
			u.log.Warn("upload failed", "file", path, "error", err)
			u.stats.FilesErrored++
			continue
		}
		u.add(stats)
		u.stats.FilesUploaded++
		u.log.Info("uploaded", "file", path,
			"workouts_inserted", stats.WorkoutsInserted,
			"workouts_duplicated", stats.WorkoutsDuplicated)

		if u.dryRun {
			continue
		}
		if err := u.state.MarkUploaded(u.server, hash, path); err != nil {
			return &u.stats, fmt.Errorf("marking %s uploaded: %w", path, err)
		}
	}
	return &u.stats, nil
}

func (u *Uploader) add(s *importer.Stats) {
	t := &u.stats.Imported
	t.KeysRead += s.KeysRead
	t.KeysErrored += s.KeysErrored
	t.UsersInserted += s.UsersInserted
	t.UsersMerged += s.UsersMerged
	t.WorkoutsInserted += s.WorkoutsInserted
	t.WorkoutsDuplicated += s.WorkoutsDuplicated
	t.ProgressInserted += s.ProgressInserted
	t.ProgressSkipped += s.ProgressSkipped
	t.SettingsImported += s.SettingsImported
	t.DisclaimerAccepted = t.DisclaimerAccepted || s.DisclaimerAccepted
	t.SkippedKeys = append(t.SkippedKeys, s.SkippedKeys...)
}

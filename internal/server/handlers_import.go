package server

import (
	"net/http"

	"github.com/claude/shukuma/internal/importer"
)

// maxDumpBytes caps the size of an uploaded storage dump.
const maxDumpBytes = 32 << 20

// handleImport loads a browser storage dump into the store. The legacy
// disclaimer flag is attributed to ?disclaimer_user when given.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	dryRun := q.Get("dry_run") == "true"

	var opts []importer.Option
	if uid := q.Get("disclaimer_user"); uid != "" {
		opts = append(opts, importer.WithDisclaimerUser(uid))
	}

	imp := importer.New(s.store, s.log, dryRun, opts...)
	body := http.MaxBytesReader(w, r.Body, maxDumpBytes)
	stats, err := imp.Import(background(r.Context()), body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	s.log.Info("dump imported",
		"dry_run", dryRun,
		"users", stats.UsersInserted,
		"workouts_inserted", stats.WorkoutsInserted,
		"workouts_duplicated", stats.WorkoutsDuplicated,
		"keys_errored", stats.KeysErrored,
	)
	writeJSON(w, http.StatusOK, stats)
}

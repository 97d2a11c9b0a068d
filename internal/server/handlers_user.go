package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/internal/storage"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// handleSignIn records an authentication event for the caller and returns
// the stored user record.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	ctx := background(r.Context())
	rec := models.UserRecord{
		UID:         info.Login,
		DisplayName: info.DisplayName,
		Email:       info.Email,
		PhotoURL:    info.PhotoURL,
	}
	if err := s.store.CreateOrUpdateUser(ctx, rec); err != nil {
		s.log.Error("recording sign-in", "user", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	user, err := s.store.GetUser(ctx, info.Login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// handleLogout discards the caller's unsaved tracking session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	s.sessions.Drop(info.Login)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyWorkouts(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	limit := storage.DefaultWorkoutLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	workouts, err := s.store.GetUserWorkouts(r.Context(), info.Login, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if workouts == nil {
		workouts = []models.WorkoutRecord{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleMyWorkout(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	workout, err := s.store.GetWorkout(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrNotFound) || (err == nil && workout.UserID != info.Login) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "workout not found"})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	progress, err := s.store.GetUserProgress(r.Context(), info.Login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, progress)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	stats, err := s.store.GetUserStats(r.Context(), info.Login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	settings, err := s.store.GetUserSettings(r.Context(), info.Login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var update models.SettingsUpdate
	if err := decodeJSON(r, &update); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	settings, err := s.store.UpdateUserSettings(background(r.Context()), info.Login, update)
	if err != nil {
		s.log.Error("updating settings", "user", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (s *Server) handleGetDisclaimer(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	accepted, err := s.store.DisclaimerAccepted(r.Context(), info.Login)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	resp := map[string]any{"accepted": accepted}
	if card, ok := s.catalog.Disclaimer(); ok {
		resp["card"] = card
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAcceptDisclaimer(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	if err := s.store.AcceptDisclaimer(background(r.Context()), info.Login); err != nil {
		s.log.Error("accepting disclaimer", "user", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accepted": true})
}

package server

import (
	"errors"
	"net/http"

	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/internal/tracking"
)

type startRequest struct {
	Total int `json:"total" validate:"gte=0,lte=500"`
}

type flipRequest struct {
	CardID string `json:"cardId" validate:"required"`
	Total  int    `json:"total" validate:"gte=0,lte=500"`
}

type saveRequest struct {
	Type models.WorkoutKind `json:"type" validate:"omitempty,oneof=manual random"`
}

type flipResponse struct {
	Recorded bool              `json:"recorded"`
	Session  tracking.Snapshot `json:"session"`
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var snap tracking.Snapshot
	_ = s.sessions.With(info.Login, func(sess *tracking.Session) error {
		snap = sess.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req startRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	var snap tracking.Snapshot
	_ = s.sessions.With(info.Login, func(sess *tracking.Session) error {
		sess.Start(req.Total)
		snap = sess.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleSessionFlip(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req flipRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	card, found := s.catalog.Find(req.CardID)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "card not found"})
		return
	}

	var resp flipResponse
	_ = s.sessions.With(info.Login, func(sess *tracking.Session) error {
		resp.Recorded = sess.Flip(card, req.Total)
		resp.Session = sess.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessionSave(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	kind := req.Type
	if kind == "" {
		kind = models.WorkoutManual
	}

	var rec models.WorkoutRecord
	err := s.sessions.With(info.Login, func(sess *tracking.Session) error {
		var err error
		rec, err = sess.Save(background(r.Context()), info.Login, kind, s.store)
		return err
	})
	switch {
	case errors.Is(err, tracking.ErrNothingToSave):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case err != nil:
		s.log.Error("saving workout", "user", info.Login, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	default:
		s.log.Info("workout saved", "user", info.Login, "id", rec.ID,
			"exercises", rec.CompletedExercises, "duration", rec.TotalDuration)
		writeJSON(w, http.StatusCreated, rec)
	}
}

func (s *Server) handleSessionReset(w http.ResponseWriter, r *http.Request) {
	info, ok := mustUser(w, r)
	if !ok {
		return
	}
	var snap tracking.Snapshot
	_ = s.sessions.With(info.Login, func(sess *tracking.Session) error {
		sess.Reset()
		snap = sess.Snapshot()
		return nil
	})
	writeJSON(w, http.StatusOK, snap)
}

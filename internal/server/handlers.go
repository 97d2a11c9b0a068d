package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/claude/shukuma/internal/compose"
	"github.com/claude/shukuma/internal/instructions"
	"github.com/claude/shukuma/internal/metadata"
	"github.com/claude/shukuma/internal/models"
	"github.com/claude/shukuma/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// cardDetail is a card with its lookups resolved.
type cardDetail struct {
	models.Card
	Metadata     *models.Metadata `json:"metadata,omitempty"`
	Instructions []string         `json:"instructions"`
}

// workoutResponse is a composed workout ready to flip through.
type workoutResponse struct {
	Cards         []models.Card `json:"cards"`
	ExerciseCount int           `json:"exerciseCount"`
	WaterBreaks   bool          `json:"waterBreaks"`

	// Filter is the effective filter of a filtered workout, after saved
	// defaults were applied. Omitted when nothing constrains the selection.
	Filter *metadata.Filter `json:"filter,omitempty"`
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	cards := []models.Card(s.catalog)
	if t := r.URL.Query().Get("type"); t != "" {
		cards = s.catalog.OfType(models.CardType(t))
	}
	if cards == nil {
		cards = []models.Card{}
	}
	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleUniqueCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Unique())
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	card, ok := s.catalog.Find(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "card not found"})
		return
	}
	detail := cardDetail{Card: card, Instructions: instructions.ForCard(card)}
	if card.IsExercise() {
		m := metadata.Lookup(card.ExerciseName)
		detail.Metadata = &m
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleInstructions(w http.ResponseWriter, r *http.Request) {
	card, ok := s.catalog.Find(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "card not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"cardId":       card.ID,
		"exerciseName": card.ExerciseName,
		"instructions": instructions.ForCard(card),
	})
}

func (s *Server) handleFilterOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metadata.FilterOptions())
}

func (s *Server) handleRandomWorkout(w http.ResponseWriter, r *http.Request) {
	count := s.workout.DefaultCount
	if c := r.URL.Query().Get("count"); c != "" {
		parsed, err := strconv.Atoi(c)
		if err != nil || parsed < 1 || parsed > s.workout.MaxCount {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "count must be a number between 1 and " + strconv.Itoa(s.workout.MaxCount),
			})
			return
		}
		count = parsed
	}

	settings, known := s.userSettings(r)
	breaks := !known || settings.AutoWaterBreaks
	s.composeMu.Lock()
	cards := s.composer(breaks).Random(s.catalog, count)
	s.composeMu.Unlock()

	writeJSON(w, http.StatusOK, newWorkoutResponse(cards, breaks))
}

func (s *Server) handleFilteredWorkout(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := metadata.Filter{
		Difficulty: q.Get("difficulty"),
		Type:       q.Get("type"),
		Duration:   q.Get("duration"),
	}
	if err := validator.ValidateStruct(f); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	// Facets the request leaves out come from the user's saved defaults.
	settings, known := s.userSettings(r)
	if known {
		if !q.Has("difficulty") {
			f.Difficulty = settings.DefaultDifficulty
		}
		if !q.Has("duration") {
			f.Duration = settings.DefaultDuration
		}
	}

	breaks := !known || settings.AutoWaterBreaks
	s.composeMu.Lock()
	cards := s.composer(breaks).Filtered(s.catalog, f)
	s.composeMu.Unlock()

	resp := newWorkoutResponse(cards, breaks)
	if f.Active() {
		resp.Filter = &f
	}
	writeJSON(w, http.StatusOK, resp)
}

func newWorkoutResponse(cards []models.Card, breaks bool) workoutResponse {
	if cards == nil {
		cards = []models.Card{}
	}
	return workoutResponse{
		Cards:         cards,
		ExerciseCount: compose.ExerciseCount(cards),
		WaterBreaks:   breaks,
	}
}

// composer must be called with composeMu held.
func (s *Server) composer(breaks bool) *compose.Composer {
	if breaks {
		return s.withBreaks
	}
	return s.noBreaks
}

// userSettings loads the caller's settings. It reports false for anonymous
// requests and on storage errors, which are logged.
func (s *Server) userSettings(r *http.Request) (models.Settings, bool) {
	info, ok := userInfoFromContext(r)
	if !ok || s.store == nil {
		return models.Settings{}, false
	}
	settings, err := s.store.GetUserSettings(r.Context(), info.Login)
	if err != nil {
		s.log.Warn("loading settings", "user", info.Login, "error", err)
		return models.Settings{}, false
	}
	return settings, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON reads the request body into dst and validates it. An empty
// body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body != nil && r.ContentLength != 0 {
		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	return validator.ValidateStruct(dst)
}

// background detaches storage writes that must finish even if the client
// goes away mid-request.
func background(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

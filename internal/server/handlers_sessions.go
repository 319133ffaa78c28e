package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/models"
	"github.com/meltforce/fittrack/internal/session"
)

type startSessionRequest struct {
	PlanName       string   `json:"planName"`
	CompletedHints []string `json:"completedHints,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.PlanName == "" {
		writeBadRequest(w, "planName is required")
		return
	}
	c, err := s.sessions.Start(r.Context(), session.Params{
		UserID:         userIDFromContext(r),
		PlanName:       req.PlanName,
		CompletedHints: req.CompletedHints,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c.Snapshot())
}

// lookupSession resolves the {id} session. Sessions of other users are reported
// as missing.
func (s *Server) lookupSession(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	c, ok := s.sessions.Get(chi.URLParam(r, "id"))
	if !ok || c.UserID() != userIDFromContext(r) {
		s.writeError(w, r, models.ErrNotFound)
		return nil, false
	}
	return c, true
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

// handleCloseSession abandons a session without a final save.
func (s *Server) handleCloseSession(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	s.sessions.Close(c.ID())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggleExercise(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if _, err := c.ToggleExercise(chi.URLParam(r, "exerciseID")); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleToggleTimer(w http.ResponseWriter, r *http.Request) {
	s.timerAction(w, r, (*session.Controller).ToggleTimer)
}

func (s *Server) handleResetTimer(w http.ResponseWriter, r *http.Request) {
	s.timerAction(w, r, (*session.Controller).ResetTimer)
}

func (s *Server) timerAction(w http.ResponseWriter, r *http.Request, fn func(*session.Controller, string) (session.TimerState, error)) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	t, err := fn(c, chi.URLParam(r, "exerciseID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCompleteAll(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, (*session.Controller).CompleteAll)
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, (*session.Controller).Pause)
}

func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, (*session.Controller).Resume)
}

func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, fn func(*session.Controller) error) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	if err := fn(c); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c.Snapshot())
}

func (s *Server) handleFinishPrompt(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Prompt())
}

type finishRequest struct {
	Confirm bool `json:"confirm"`
}

type finishResponse struct {
	Record  *models.CompletedWorkout `json:"record"`
	Session session.Snapshot         `json:"session"`
}

// handleFinish saves the final record when the caller confirmed the prompt.
// A failed save leaves the session open for a retry; a successful one
// releases it.
func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	c, ok := s.lookupSession(w, r)
	if !ok {
		return
	}
	var req finishRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	rec, err := c.Finish(r.Context(), func(session.FinishPrompt) bool { return req.Confirm })
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp := finishResponse{Record: rec, Session: c.Snapshot()}
	s.sessions.Close(c.ID())
	writeJSON(w, http.StatusOK, resp)
}

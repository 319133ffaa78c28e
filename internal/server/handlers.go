package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
	"github.com/meltforce/fittrack/internal/session"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeBadRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

// writeError maps an error to a status code by the sentinel it wraps.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var fe *session.FinishError
	if errors.As(err, &fe) {
		status := http.StatusInternalServerError
		switch fe.Kind {
		case session.FailurePermissionDenied:
			status = http.StatusForbidden
		case session.FailureUnavailable:
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, map[string]string{"error": fe.UserMessage(), "kind": string(fe.Kind)})
		return
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrNotFound), errors.Is(err, session.ErrUnknownExercise):
		status = http.StatusNotFound
	case errors.Is(err, models.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, models.ErrUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, session.ErrSessionPaused),
		errors.Is(err, session.ErrSessionNotPaused),
		errors.Is(err, session.ErrSessionFinished),
		errors.Is(err, session.ErrSessionClosed),
		errors.Is(err, session.ErrExerciseNotCompleted),
		errors.Is(err, session.ErrSaveInProgress),
		errors.Is(err, session.ErrFinishDeclined):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON reads a JSON body into v. An empty body leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON: "+err.Error())
		return false
	}
	return true
}

func parseDay(w http.ResponseWriter, raw string) (models.DayOfWeek, bool) {
	n, err := strconv.Atoi(raw)
	day := models.DayOfWeek(n)
	if err != nil || !day.IsValid() {
		writeBadRequest(w, fmt.Sprintf("invalid day %q: want 0 (Sunday) to 6 (Saturday)", raw))
		return 0, false
	}
	return day, true
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	muscles := r.URL.Query()["muscle"]
	if len(muscles) == 0 {
		writeJSON(w, http.StatusOK, s.catalog.All())
		return
	}
	groups := make([]models.MuscleGroup, 0, len(muscles))
	for _, m := range muscles {
		g := models.MuscleGroup(m)
		if !g.IsValid() {
			writeBadRequest(w, fmt.Sprintf("unknown muscle group %q", m))
			return
		}
		groups = append(groups, g)
	}
	writeJSON(w, http.StatusOK, s.catalog.ByMuscle(groups...))
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	ex, ok := s.catalog.Get(chi.URLParam(r, "id"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not found"})
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	opts, ok := energy.PresetForGoal(models.Goal(chi.URLParam(r, "goal")))
	if !ok {
		writeBadRequest(w, "goal must be lose, maintain or gain")
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type targetsRequest struct {
	Goal  models.Goal      `json:"goal"`
	Stats models.UserStats `json:"stats"`
}

type targetsResponse struct {
	DailyCalorieTarget float64            `json:"dailyCalorieTarget"`
	MacroRatios        models.MacroRatios `json:"macroRatios"`
	MacroGrams         energy.MacroGrams  `json:"macroGrams"`
}

func (s *Server) handleTargets(w http.ResponseWriter, r *http.Request) {
	var req targetsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Goal.IsValid() {
		writeBadRequest(w, "goal must be lose, maintain or gain")
		return
	}
	target, err := energy.DailyCalorieTarget(req.Stats, req.Goal, s.now())
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	ratios := energy.MacroRatiosForGoal(req.Goal)
	writeJSON(w, http.StatusOK, targetsResponse{
		DailyCalorieTarget: target,
		MacroRatios:        ratios,
		MacroGrams:         energy.GramsForTarget(target, ratios),
	})
}

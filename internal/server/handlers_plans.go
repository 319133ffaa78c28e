package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
)

type estimateRequest struct {
	WeightLbs     *float64            `json:"weightLbs,omitempty"`
	UseGoalPreset bool                `json:"useGoalPreset,omitempty"`
	Options       *energy.Options     `json:"options,omitempty"`
	Plan          *models.WorkoutPlan `json:"plan,omitempty"`
}

type estimateResponse struct {
	PlanID    string                    `json:"planId,omitempty"`
	WeightLbs float64                   `json:"weightLbs"`
	Options   energy.Options            `json:"options"`
	ByDay     map[string]float64        `json:"byDay"`
	Total     float64                   `json:"total"`
	Exercises []energy.ExerciseEstimate `json:"exercises"`
	Cached    bool                      `json:"cached"`
}

func (s *Server) handleListPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListPlans(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if plans == nil {
		plans = []models.WorkoutPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleCreatePlan(w http.ResponseWriter, r *http.Request) {
	var p models.WorkoutPlan
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = ""
	p.UserID = userIDFromContext(r)
	if !s.preparePlan(w, &p) {
		return
	}
	if _, err := s.store.SavePlan(r.Context(), &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleUpdatePlan(w http.ResponseWriter, r *http.Request) {
	existing, err := s.store.GetPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var p models.WorkoutPlan
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID, p.UserID, p.CreatedAt = existing.ID, existing.UserID, existing.CreatedAt
	if !s.preparePlan(w, &p) {
		return
	}
	if err := s.store.UpdatePlan(r.Context(), &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeletePlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeletePlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRemoveExercise(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(w, chi.URLParam(r, "day"))
	if !ok {
		return
	}
	p, err := s.store.GetPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if !p.RemoveExercise(day, chi.URLParam(r, "exerciseID")) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "exercise not scheduled on that day"})
		return
	}
	if !s.preparePlan(w, p) {
		return
	}
	if err := s.store.UpdatePlan(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// preparePlan prunes, validates and annotates a plan before it is stored.
func (s *Server) preparePlan(w http.ResponseWriter, p *models.WorkoutPlan) bool {
	p.Prune()
	if err := p.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return false
	}
	if !s.estimator.AnnotatePlan(p) {
		p.EstimatedCaloriesBurned = nil
	}
	return true
}

func (s *Server) handlePlanEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	p, err := s.store.GetPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	weight, opts, ok := s.estimateInputs(w, req, p)
	if !ok {
		return
	}

	key := estimateKey(p, weight, opts)
	if resp, hit := s.cache.get(key); hit {
		resp.Cached = true
		writeJSON(w, http.StatusOK, resp)
		return
	}
	resp := s.estimate(p, weight, opts)
	if err := s.cache.set(key, resp); err != nil {
		s.log.Warn("caching estimate", "plan", p.ID, "error", err)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleEstimate estimates a plan sent in the request body without storing it.
func (s *Server) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Plan == nil {
		writeBadRequest(w, "plan is required")
		return
	}
	req.Plan.Prune()
	if err := req.Plan.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	weight, opts, ok := s.estimateInputs(w, req, req.Plan)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.estimate(req.Plan, weight, opts))
}

// estimateInputs resolves the body weight (request, then plan, then the
// configured default) and the pace options (explicit, goal preset, or the
// server's defaults).
func (s *Server) estimateInputs(w http.ResponseWriter, req estimateRequest, p *models.WorkoutPlan) (float64, energy.Options, bool) {
	var weight float64
	switch {
	case req.WeightLbs != nil:
		weight = *req.WeightLbs
	case p.UserWeightLbs != nil:
		weight = *p.UserWeightLbs
	default:
		weight = s.weightLbs
	}
	if energy.PoundsToKilograms(weight) == 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "a positive body weight is required"})
		return 0, energy.Options{}, false
	}

	opts := s.estimator.Options
	switch {
	case req.Options != nil:
		opts = *req.Options
	case req.UseGoalPreset:
		if preset, ok := energy.PresetForGoal(p.Goal); ok {
			opts = preset
		}
	}
	return weight, opts.Normalized(), true
}

func (s *Server) estimate(p *models.WorkoutPlan, weightLbs float64, opts energy.Options) *estimateResponse {
	est := energy.NewEstimator(s.estimator.Lookup, opts, s.log)
	kg := energy.PoundsToKilograms(weightLbs)

	weekly := est.EstimateWeekly(p, kg)
	resp := &estimateResponse{
		PlanID:    p.ID,
		WeightLbs: weightLbs,
		Options:   opts,
		ByDay:     make(map[string]float64, len(weekly.ByDay)),
		Total:     energy.Round(weekly.Total, 2),
		Exercises: []energy.ExerciseEstimate{},
	}
	for day, kcal := range weekly.ByDay {
		resp.ByDay[day.String()] = energy.Round(kcal, 2)
	}
	for _, sched := range p.Schedules {
		for _, ex := range sched.Exercises {
			e := est.Explain(ex, kg)
			e.Minutes = energy.Round(e.Minutes, 2)
			e.Calories = energy.Round(e.Calories, 2)
			resp.Exercises = append(resp.Exercises, e)
		}
	}
	return resp
}

package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
)

type nutritionPlanResponse struct {
	*models.NutritionPlan
	TotalCalories  float64            `json:"totalCalories"`
	CaloriesByDay  map[string]float64 `json:"caloriesByDay"`
	Recommendation string             `json:"recommendation"`
}

func describeNutritionPlan(p *models.NutritionPlan) nutritionPlanResponse {
	total := energy.PlanCalories(p.Foods)
	byDay := make(map[string]float64, 7)
	for day, kcal := range energy.CaloriesByDay(p.Foods) {
		byDay[day.String()] = kcal
	}
	return nutritionPlanResponse{
		NutritionPlan:  p,
		TotalCalories:  total,
		CaloriesByDay:  byDay,
		Recommendation: energy.Recommendation(p.Goal, total, p.DailyCalorieTarget),
	}
}

func (s *Server) handleListNutritionPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.store.ListNutritionPlans(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if plans == nil {
		plans = []models.NutritionPlan{}
	}
	writeJSON(w, http.StatusOK, plans)
}

func (s *Server) handleGetNutritionPlan(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetNutritionPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, describeNutritionPlan(p))
}

// handleCreateNutritionPlan stores a nutrition plan. A missing calorie
// target is derived from the user's stats and missing macro ratios from the
// goal.
func (s *Server) handleCreateNutritionPlan(w http.ResponseWriter, r *http.Request) {
	var p models.NutritionPlan
	if !decodeJSON(w, r, &p) {
		return
	}
	p.ID = ""
	p.UserID = userIDFromContext(r)
	if err := p.Validate(); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if p.DailyCalorieTarget == 0 && p.UserStats != nil {
		target, err := energy.DailyCalorieTarget(*p.UserStats, p.Goal, s.now())
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		p.DailyCalorieTarget = target
	}
	if p.MacroRatios == (models.MacroRatios{}) {
		p.MacroRatios = energy.MacroRatiosForGoal(p.Goal)
	}
	if _, err := s.store.SaveNutritionPlan(r.Context(), &p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, describeNutritionPlan(&p))
}

func (s *Server) handleDeleteNutritionPlan(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteNutritionPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleActivateNutritionPlan(w http.ResponseWriter, r *http.Request) {
	uid, id := userIDFromContext(r), chi.URLParam(r, "id")
	if err := s.store.SetActiveNutritionPlan(r.Context(), uid, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.store.GetNutritionPlan(r.Context(), uid, id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleNutritionDay(w http.ResponseWriter, r *http.Request) {
	day, ok := parseDay(w, chi.URLParam(r, "day"))
	if !ok {
		return
	}
	p, err := s.store.GetNutritionPlan(r.Context(), userIDFromContext(r), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	foods := p.FoodsForDay(day)
	if foods == nil {
		foods = []models.ScheduledFoodItem{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"day":    day.String(),
		"foods":  foods,
		"totals": energy.DayNutrition(p.Foods, day),
	})
}

type dashboardResponse struct {
	Day           string         `json:"day"`
	WorkoutPlan   string         `json:"workoutPlan,omitempty"`
	NutritionPlan string         `json:"nutritionPlan,omitempty"`
	Balance       energy.Balance `json:"balance"`
	Macros        energy.Totals  `json:"macros"`
	Target        float64        `json:"dailyCalorieTarget,omitempty"`
}

// handleDashboard reports calories in, out and net for one day. The
// nutrition plan defaults to the active one; a missing active plan counts
// as zero intake.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	uid := userIDFromContext(r)

	day := models.DayOfWeek(s.now().Weekday())
	if raw := q.Get("day"); raw != "" {
		var ok bool
		if day, ok = parseDay(w, raw); !ok {
			return
		}
	}
	resp := dashboardResponse{Day: day.String()}

	var out float64
	if id := q.Get("workout_plan"); id != "" {
		p, err := s.store.GetPlan(r.Context(), uid, id)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		resp.WorkoutPlan = p.Name
		weight := s.weightLbs
		if p.UserWeightLbs != nil {
			weight = *p.UserWeightLbs
		}
		if sched := p.Schedule(day); sched != nil {
			out = energy.Round(s.estimator.EstimateDaily(*sched, energy.PoundsToKilograms(weight)), 2)
		}
	}

	var (
		np  *models.NutritionPlan
		err error
	)
	if id := q.Get("nutrition_plan"); id != "" {
		np, err = s.store.GetNutritionPlan(r.Context(), uid, id)
	} else {
		np, err = s.store.ActiveNutritionPlan(r.Context(), uid)
		if errors.Is(err, models.ErrNotFound) {
			np, err = nil, nil
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if np != nil {
		resp.NutritionPlan = np.Name
		resp.Macros = energy.DayNutrition(np.Foods, day)
		resp.Target = np.DailyCalorieTarget
	}
	resp.Balance = energy.DayBalance(resp.Macros.Calories, out)
	writeJSON(w, http.StatusOK, resp)
}

// handleHistory lists session records for one day (date=YYYY-MM-DD) or the
// most recent ones.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	uid := userIDFromContext(r)
	var (
		records []models.CompletedWorkout
		err     error
	)
	if raw := r.URL.Query().Get("date"); raw != "" {
		day, perr := time.ParseInLocation(time.DateOnly, raw, s.now().Location())
		if perr != nil {
			writeBadRequest(w, "date must be YYYY-MM-DD")
			return
		}
		records, err = s.store.GetCompletedWorkoutsForDate(r.Context(), uid, day)
	} else {
		limit := 50
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, perr := strconv.Atoi(l); perr == nil && parsed > 0 {
				limit = parsed
			}
		}
		records, err = s.store.ListCompletedWorkouts(r.Context(), uid, limit)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []models.CompletedWorkout{}
	}
	writeJSON(w, http.StatusOK, records)
}

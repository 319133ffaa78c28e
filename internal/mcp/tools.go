package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/models"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// parseDay parses a calendar day (YYYY-MM-DD or RFC 3339) in loc.
func parseDay(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t.In(loc), nil
	}
	return time.ParseInLocation(time.DateOnly, s, loc)
}

// --- Tool definitions ---

var toolListWorkoutPlans = mcp.NewTool("list_workout_plans",
	mcp.WithDescription("List the user's workout plans with their goal, training days, exercise count, and stored weekly calorie estimate."),
)

var toolEstimatePlanCalories = mcp.NewTool("estimate_plan_calories",
	mcp.WithDescription("Estimate the calories a workout plan burns per training day and per week. Identify the plan by id or by name."),
	mcp.WithString("plan_id", mcp.Description("Plan id")),
	mcp.WithString("plan_name", mcp.Description("Plan name, used when plan_id is not given")),
	mcp.WithNumber("weight_lbs", mcp.Description("Body weight in pounds. Defaults to the weight stored on the plan.")),
	mcp.WithBoolean("use_goal_preset", mcp.Description("Use the pace preset for the plan's goal instead of the default pace")),
)

var toolGetCalorieTarget = mcp.NewTool("get_calorie_target",
	mcp.WithDescription("Compute a daily calorie target (Mifflin-St Jeor BMR times activity, adjusted for the goal) and the macro split for the goal."),
	mcp.WithNumber("weight_lbs", mcp.Required(), mcp.Description("Body weight in pounds")),
	mcp.WithNumber("height_feet", mcp.Required(), mcp.Description("Height, whole feet")),
	mcp.WithNumber("height_inches", mcp.Description("Height, remaining inches. Defaults to 0.")),
	mcp.WithString("dob", mcp.Required(), mcp.Description("Date of birth (YYYY-MM-DD)")),
	mcp.WithString("gender", mcp.Required(), mcp.Enum("male", "female")),
	mcp.WithString("activity_level", mcp.Required(), mcp.Enum("sedentary", "light", "moderate", "active", "veryActive")),
	mcp.WithString("goal", mcp.Required(), mcp.Enum("lose", "maintain", "gain")),
)

var toolGetWorkoutHistory = mcp.NewTool("get_workout_history",
	mcp.WithDescription("Read recorded workout sessions, including partial ones. With a date, returns that day's records; otherwise the most recent ones."),
	mcp.WithString("date", mcp.Description("Day to read (YYYY-MM-DD). Defaults to the most recent records.")),
	mcp.WithNumber("limit", mcp.Description("Maximum records when no date is given. Defaults to 20, at most 200.")),
)

// --- Tool handlers ---

type planSummary struct {
	ID                      string   `json:"id"`
	Name                    string   `json:"name"`
	Goal                    string   `json:"goal"`
	Days                    []string `json:"days"`
	Exercises               int      `json:"exercises"`
	WeightLbs               *float64 `json:"weight_lbs,omitempty"`
	EstimatedCaloriesBurned *float64 `json:"estimated_calories_burned,omitempty"`
}

func summarizePlan(p models.WorkoutPlan) planSummary {
	s := planSummary{
		ID:                      p.ID,
		Name:                    p.Name,
		Goal:                    string(p.Goal),
		Days:                    []string{},
		WeightLbs:               p.UserWeightLbs,
		EstimatedCaloriesBurned: p.EstimatedCaloriesBurned,
	}
	for _, d := range p.Schedules {
		s.Days = append(s.Days, d.Day.String())
		s.Exercises += len(d.Exercises)
	}
	return s
}

func (h *handlers) listWorkoutPlans(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	plans, err := h.ds.ListPlans(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp list_workout_plans", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	out := make([]planSummary, 0, len(plans))
	for _, p := range plans {
		out = append(out, summarizePlan(p))
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type planEstimate struct {
	PlanID    string             `json:"plan_id"`
	PlanName  string             `json:"plan_name"`
	WeightLbs float64            `json:"weight_lbs"`
	Pace      energy.Options     `json:"pace"`
	ByDay     map[string]float64 `json:"by_day"`
	Total     float64            `json:"total"`
}

func (h *handlers) estimatePlanCalories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	id, name := req.GetString("plan_id", ""), req.GetString("plan_name", "")

	var (
		plan *models.WorkoutPlan
		err  error
	)
	switch {
	case id != "":
		plan, err = h.ds.GetPlan(ctx, uid, id)
	case name != "":
		plan, err = h.ds.FindPlanByName(ctx, uid, name)
	default:
		return mcp.NewToolResultError("plan_id or plan_name is required"), nil
	}
	if errors.Is(err, models.ErrNotFound) {
		return mcp.NewToolResultError("plan not found"), nil
	}
	if err != nil {
		h.log.Error("mcp estimate_plan_calories", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	weight := req.GetFloat("weight_lbs", 0)
	if weight <= 0 && plan.UserWeightLbs != nil {
		weight = *plan.UserWeightLbs
	}
	if weight <= 0 {
		weight = h.weightLbs
	}
	kg := energy.PoundsToKilograms(weight)
	if kg == 0 {
		return mcp.NewToolResultError("weight_lbs is required: the plan stores no body weight"), nil
	}

	opts := h.estimator.Options
	if req.GetBool("use_goal_preset", false) {
		if preset, ok := energy.PresetForGoal(plan.Goal); ok {
			opts = preset
		}
	}
	weekly := energy.NewEstimator(h.estimator.Lookup, opts, h.log).EstimateWeekly(plan, kg)

	out := planEstimate{
		PlanID:    plan.ID,
		PlanName:  plan.Name,
		WeightLbs: weight,
		Pace:      opts.Normalized(),
		ByDay:     make(map[string]float64, len(weekly.ByDay)),
		Total:     energy.Round(weekly.Total, 2),
	}
	for day, kcal := range weekly.ByDay {
		out.ByDay[day.String()] = energy.Round(kcal, 2)
	}

	result, err := mcp.NewToolResultJSON(out)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

type calorieTarget struct {
	DailyCalorieTarget float64            `json:"daily_calorie_target"`
	MacroRatios        models.MacroRatios `json:"macro_ratios"`
	MacroGrams         energy.MacroGrams  `json:"macro_grams"`
}

func (h *handlers) getCalorieTarget(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, err := req.RequireFloat("weight_lbs")
	if err != nil {
		return mcp.NewToolResultError("weight_lbs parameter is required"), nil
	}
	feet, err := req.RequireFloat("height_feet")
	if err != nil {
		return mcp.NewToolResultError("height_feet parameter is required"), nil
	}
	dob, err := req.RequireString("dob")
	if err != nil {
		return mcp.NewToolResultError("dob parameter is required"), nil
	}
	goal := models.Goal(req.GetString("goal", ""))
	if !goal.IsValid() {
		return mcp.NewToolResultError("goal must be lose, maintain or gain"), nil
	}

	stats := models.UserStats{
		WeightLbs:     weight,
		HeightInches:  energy.HeightInches(feet, req.GetFloat("height_inches", 0)),
		DOB:           dob,
		Gender:        models.Gender(req.GetString("gender", "")),
		ActivityLevel: models.ActivityLevel(req.GetString("activity_level", "")),
	}
	target, err := energy.DailyCalorieTarget(stats, goal, h.now())
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ratios := energy.MacroRatiosForGoal(goal)

	result, err := mcp.NewToolResultJSON(calorieTarget{
		DailyCalorieTarget: target,
		MacroRatios:        ratios,
		MacroGrams:         energy.GramsForTarget(target, ratios),
	})
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)

	var (
		records []models.CompletedWorkout
		err     error
	)
	if raw := req.GetString("date", ""); raw != "" {
		day, perr := parseDay(raw, h.now().Location())
		if perr != nil {
			return mcp.NewToolResultError("invalid date format: " + perr.Error()), nil
		}
		records, err = h.ds.GetCompletedWorkoutsForDate(ctx, uid, day)
	} else {
		limit := req.GetInt("limit", defaultHistoryLimit)
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		records, err = h.ds.ListCompletedWorkouts(ctx, uid, min(limit, maxHistoryLimit))
	}
	if err != nil {
		h.log.Error("mcp get_workout_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if records == nil {
		records = []models.CompletedWorkout{}
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

package energy

import (
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/meltforce/fittrack/internal/models"
)

const (
	DefaultSecondsPerRep = 4.0
	DefaultRestSeconds   = 60.0
)

// Options controls the pace assumed when converting sets and reps to time.
type Options struct {
	SecondsPerRep          float64 `json:"secondsPerRep" yaml:"seconds_per_rep"`
	RestBetweenSetsSeconds float64 `json:"restBetweenSets" yaml:"rest_between_sets_seconds"`
}

// DefaultOptions returns 4 s per rep and 60 s rest.
func DefaultOptions() Options {
	return Options{SecondsPerRep: DefaultSecondsPerRep, RestBetweenSetsSeconds: DefaultRestSeconds}
}

// Normalized replaces a non-positive pace and a negative rest with the
// defaults. Zero rest is a valid choice and is kept.
func (o Options) Normalized() Options {
	if !positive(o.SecondsPerRep) {
		o.SecondsPerRep = DefaultSecondsPerRep
	}
	if math.IsNaN(o.RestBetweenSetsSeconds) || o.RestBetweenSetsSeconds < 0 {
		o.RestBetweenSetsSeconds = DefaultRestSeconds
	}
	return o
}

var goalPresets = map[models.Goal]Options{
	models.GoalLose:     {SecondsPerRep: 2, RestBetweenSetsSeconds: 30},
	models.GoalMaintain: {SecondsPerRep: 4, RestBetweenSetsSeconds: 60},
	models.GoalGain:     {SecondsPerRep: 5, RestBetweenSetsSeconds: 90},
}

// PresetForGoal returns the suggested pace for a goal. Unknown goals get
// the defaults and false.
func PresetForGoal(g models.Goal) (Options, bool) {
	o, ok := goalPresets[g]
	if !ok {
		return DefaultOptions(), false
	}
	return o, true
}

// ExerciseEstimate is the breakdown behind one exercise's calories.
type ExerciseEstimate struct {
	ExerciseID string    `json:"exerciseId"`
	MET        float64   `json:"met"`
	Source     METSource `json:"-"`
	SourceName string    `json:"metSource"`
	Minutes    float64   `json:"minutes"`
	Calories   float64   `json:"calories"`
	Skipped    bool      `json:"skipped,omitempty"`
}

// WeeklyEstimate holds per-day calories and their sum.
type WeeklyEstimate struct {
	ByDay map[models.DayOfWeek]float64 `json:"byDay"`
	Total float64                      `json:"total"`
}

// Equal reports whether two estimates are identical, so callers can skip
// redundant state updates.
func (w WeeklyEstimate) Equal(o WeeklyEstimate) bool {
	if w.Total != o.Total || len(w.ByDay) != len(o.ByDay) {
		return false
	}
	for d, v := range w.ByDay {
		ov, ok := o.ByDay[d]
		if !ok || ov != v {
			return false
		}
	}
	return true
}

// Estimator computes calories for exercises, days and whole plans.
type Estimator struct {
	Lookup  METLookup
	Options Options
	Log     *slog.Logger
}

// NewEstimator creates an Estimator with normalized options.
func NewEstimator(lookup METLookup, opts Options, log *slog.Logger) *Estimator {
	if log == nil {
		log = slog.Default()
	}
	return &Estimator{Lookup: lookup, Options: opts.Normalized(), Log: log}
}

func (e *Estimator) logger() *slog.Logger {
	if e.Log == nil {
		return slog.Default()
	}
	return e.Log
}

// Explain resolves MET and duration for an exercise and reports whether it
// was skipped. Skipped exercises contribute 0.
func (e *Estimator) Explain(ex models.Exercise, weightKg float64) ExerciseEstimate {
	opts := e.Options.Normalized()
	met, src := ResolveMET(ex, e.Lookup)
	est := ExerciseEstimate{ExerciseID: ex.ID, MET: met, Source: src, SourceName: src.String()}

	if !positive(met) {
		e.logger().Debug("skipping exercise with invalid MET", "exercise", ex.ID, "met", met)
		est.Skipped = true
		return est
	}
	est.Minutes = EstimateExerciseDuration(ex.Sets, ex.Reps, opts.SecondsPerRep, opts.RestBetweenSetsSeconds)
	if !positive(est.Minutes) {
		e.logger().Debug("skipping exercise with invalid duration", "exercise", ex.ID, "sets", ex.Sets, "reps", ex.Reps)
		est.Skipped = true
		return est
	}
	est.Calories = CalculateCaloriesBurned(met, weightKg, est.Minutes)
	if !positive(est.Calories) {
		e.logger().Debug("skipping exercise with invalid calories", "exercise", ex.ID, "weight_kg", weightKg)
		est.Calories = 0
		est.Skipped = true
	}
	return est
}

// ExerciseCalories returns the calories for one exercise, or 0 if skipped.
func (e *Estimator) ExerciseCalories(ex models.Exercise, weightKg float64) float64 {
	return e.Explain(ex, weightKg).Calories
}

// EstimateDaily sums the calories of every exercise in a day.
func (e *Estimator) EstimateDaily(s models.DailySchedule, weightKg float64) float64 {
	var total float64
	for _, ex := range s.Exercises {
		total += e.ExerciseCalories(ex, weightKg)
	}
	return total
}

// EstimateWeekly estimates every day in the plan. Identical input always
// produces an identical result.
func (e *Estimator) EstimateWeekly(p *models.WorkoutPlan, weightKg float64) WeeklyEstimate {
	out := WeeklyEstimate{ByDay: make(map[models.DayOfWeek]float64)}
	if p == nil {
		return out
	}
	for _, s := range p.Schedules {
		out.ByDay[s.Day] += e.EstimateDaily(s, weightKg)
	}
	out.Total = sumByDay(out.ByDay)
	return out
}

// sumByDay adds the days in ascending order so the total does not depend on
// map iteration.
func sumByDay(byDay map[models.DayOfWeek]float64) float64 {
	var total float64
	for _, d := range slices.Sorted(maps.Keys(byDay)) {
		total += byDay[d]
	}
	return total
}

// AnnotatePlan writes per-exercise and weekly calories onto a plan that
// carries a body weight, rounded to two decimals. Annotations that already
// match are left in place. Returns false and leaves the plan untouched when
// there is no usable weight.
func (e *Estimator) AnnotatePlan(p *models.WorkoutPlan) bool {
	if p == nil || p.UserWeightLbs == nil {
		return false
	}
	kg := PoundsToKilograms(*p.UserWeightLbs)
	if kg == 0 {
		return false
	}

	kcal := make([][]float64, len(p.Schedules))
	fresh := WeeklyEstimate{ByDay: make(map[models.DayOfWeek]float64)}
	for i, s := range p.Schedules {
		kcal[i] = make([]float64, len(s.Exercises))
		for j, ex := range s.Exercises {
			kcal[i][j] = Round(e.ExerciseCalories(ex, kg), 2)
			fresh.ByDay[s.Day] += kcal[i][j]
		}
	}
	fresh.Total = Round(e.EstimateWeekly(p, kg).Total, 2)

	if prev, ok := annotations(p); ok && prev.Equal(fresh) {
		return true
	}
	for i := range p.Schedules {
		for j := range p.Schedules[i].Exercises {
			v := kcal[i][j]
			p.Schedules[i].Exercises[j].CaloriesBurned = &v
		}
	}
	p.EstimatedCaloriesBurned = &fresh.Total
	return true
}

// annotations rebuilds the weekly estimate already written on a plan. It
// reports false if any exercise or the total is unannotated.
func annotations(p *models.WorkoutPlan) (WeeklyEstimate, bool) {
	if p.EstimatedCaloriesBurned == nil {
		return WeeklyEstimate{}, false
	}
	w := WeeklyEstimate{ByDay: make(map[models.DayOfWeek]float64), Total: *p.EstimatedCaloriesBurned}
	for _, s := range p.Schedules {
		for _, ex := range s.Exercises {
			if ex.CaloriesBurned == nil {
				return WeeklyEstimate{}, false
			}
			w.ByDay[s.Day] += *ex.CaloriesBurned
		}
	}
	return w, true
}

package models

import (
	"fmt"
	"time"
)

// MuscleGroup identifies a muscle region used to classify catalog exercises.
type MuscleGroup string

const (
	Abs        MuscleGroup = "Abs"
	Chest      MuscleGroup = "Chest"
	Biceps     MuscleGroup = "Biceps"
	Forearms   MuscleGroup = "Forearms"
	Deltoids   MuscleGroup = "Deltoids"
	Quadriceps MuscleGroup = "Quadriceps"
	Calves     MuscleGroup = "Calves"
	Lats       MuscleGroup = "Lats"
	Glutes     MuscleGroup = "Glutes"
	Triceps    MuscleGroup = "Triceps"
	Hamstrings MuscleGroup = "Hamstrings"
	UpperTraps MuscleGroup = "UpperTraps"
	LowerTraps MuscleGroup = "LowerTraps"
	Traps      MuscleGroup = "Traps"
	LowerBack  MuscleGroup = "LowerBack"
)

// MuscleGroups lists every known muscle group.
var MuscleGroups = []MuscleGroup{
	Abs, Chest, Biceps, Forearms, Deltoids, Quadriceps, Calves, Lats,
	Glutes, Triceps, Hamstrings, UpperTraps, LowerTraps, Traps, LowerBack,
}

func (m MuscleGroup) IsValid() bool {
	for _, g := range MuscleGroups {
		if g == m {
			return true
		}
	}
	return false
}

// Goal is the training or nutrition goal of a plan.
type Goal string

const (
	GoalLose     Goal = "lose"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

func (g Goal) IsValid() bool {
	switch g {
	case GoalLose, GoalMaintain, GoalGain:
		return true
	default:
		return false
	}
}

// DayOfWeek is a Sunday-based day index (0 = Sunday, 6 = Saturday).
type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func (d DayOfWeek) IsValid() bool {
	return d >= 0 && d <= 6
}

var dayNames = [...]string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

func (d DayOfWeek) String() string {
	if !d.IsValid() {
		return fmt.Sprintf("day(%d)", int(d))
	}
	return dayNames[d]
}

// Exercise is a catalog entry or an instance of one inside a plan.
// MET and CaloriesBurned are optional; CaloriesBurned is only populated
// on plan instances.
type Exercise struct {
	ID               string        `json:"id" yaml:"id"`
	Name             string        `json:"name" yaml:"name"`
	Description      string        `json:"description,omitempty" yaml:"description,omitempty"`
	Sets             int           `json:"sets" yaml:"sets"`
	Reps             string        `json:"reps" yaml:"reps"`
	PrimaryMuscles   []MuscleGroup `json:"primaryMuscles" yaml:"primary"`
	SecondaryMuscles []MuscleGroup `json:"secondaryMuscles,omitempty" yaml:"secondary,omitempty"`
	MET              *float64      `json:"metValue,omitempty" yaml:"met,omitempty"`
	CaloriesBurned   *float64      `json:"caloriesBurned,omitempty" yaml:"calories_burned,omitempty"`
}

// HasPrimary reports whether any of the given groups is a primary muscle.
func (e Exercise) HasPrimary(groups ...MuscleGroup) bool {
	for _, p := range e.PrimaryMuscles {
		for _, g := range groups {
			if p == g {
				return true
			}
		}
	}
	return false
}

// DailySchedule is the ordered list of exercises assigned to one day.
type DailySchedule struct {
	Day       DayOfWeek  `json:"day" yaml:"day"`
	Exercises []Exercise `json:"exercises" yaml:"exercises"`
}

// WorkoutPlan is a user's weekly workout plan.
type WorkoutPlan struct {
	ID                      string          `json:"id" yaml:"id,omitempty"`
	UserID                  int             `json:"userId,omitempty" yaml:"-"`
	Name                    string          `json:"name" yaml:"name"`
	Goal                    Goal            `json:"goal" yaml:"goal"`
	Schedules               []DailySchedule `json:"dailySchedules" yaml:"schedules"`
	UserWeightLbs           *float64        `json:"userWeight,omitempty" yaml:"user_weight_lbs,omitempty"`
	EstimatedCaloriesBurned *float64        `json:"estimatedCaloriesBurned,omitempty" yaml:"-"`
	CreatedAt               time.Time       `json:"createdAt" yaml:"-"`
	UpdatedAt               time.Time       `json:"updatedAt" yaml:"-"`
}

// Schedule returns the schedule for a day, or nil if the day has none.
func (p *WorkoutPlan) Schedule(day DayOfWeek) *DailySchedule {
	for i := range p.Schedules {
		if p.Schedules[i].Day == day {
			return &p.Schedules[i]
		}
	}
	return nil
}

// AddExercise appends an exercise to a day, creating the day if needed.
func (p *WorkoutPlan) AddExercise(day DayOfWeek, ex Exercise) error {
	if !day.IsValid() {
		return fmt.Errorf("invalid day %d", day)
	}
	if s := p.Schedule(day); s != nil {
		s.Exercises = append(s.Exercises, ex)
		return nil
	}
	p.Schedules = append(p.Schedules, DailySchedule{Day: day, Exercises: []Exercise{ex}})
	return nil
}

// RemoveExercise drops every instance of exerciseID from a day and prunes
// the day if it is left empty. Returns false if nothing was removed.
func (p *WorkoutPlan) RemoveExercise(day DayOfWeek, exerciseID string) bool {
	removed := false
	for i := range p.Schedules {
		if p.Schedules[i].Day != day {
			continue
		}
		kept := p.Schedules[i].Exercises[:0]
		for _, ex := range p.Schedules[i].Exercises {
			if ex.ID == exerciseID {
				removed = true
				continue
			}
			kept = append(kept, ex)
		}
		p.Schedules[i].Exercises = kept
	}
	p.Prune()
	return removed
}

// Prune removes days that have no exercises.
func (p *WorkoutPlan) Prune() {
	kept := p.Schedules[:0]
	for _, s := range p.Schedules {
		if len(s.Exercises) > 0 {
			kept = append(kept, s)
		}
	}
	p.Schedules = kept
}

// Flatten returns every exercise across all days in schedule order.
func (p *WorkoutPlan) Flatten() []Exercise {
	var all []Exercise
	for _, s := range p.Schedules {
		all = append(all, s.Exercises...)
	}
	return all
}

// Validate checks the plan can be saved.
func (p *WorkoutPlan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if !p.Goal.IsValid() {
		return fmt.Errorf("invalid goal %q", p.Goal)
	}
	total := 0
	for _, s := range p.Schedules {
		if !s.Day.IsValid() {
			return fmt.Errorf("invalid day %d", s.Day)
		}
		total += len(s.Exercises)
	}
	if total == 0 {
		return fmt.Errorf("plan needs at least one exercise")
	}
	if p.UserWeightLbs != nil && *p.UserWeightLbs <= 0 {
		return fmt.Errorf("user weight must be positive")
	}
	return nil
}

package energy

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/meltforce/fittrack/internal/models"
)

const (
	// MinCalorieTarget is the floor applied to every daily target.
	MinCalorieTarget = 1200.0

	goalAdjustment = 500.0
	cmPerInch      = 2.54
	dobLayout      = "01/02/2006"

	MinAge = 13
	MaxAge = 120
)

// ErrInvalidStats is returned when biometrics cannot produce a target.
var ErrInvalidStats = errors.New("invalid user stats")

var activityMultipliers = map[models.ActivityLevel]float64{
	models.Sedentary:  1.2,
	models.Light:      1.375,
	models.Moderate:   1.55,
	models.Active:     1.725,
	models.VeryActive: 1.9,
}

// ActivityMultiplier returns the TDEE multiplier for an activity level.
func ActivityMultiplier(l models.ActivityLevel) (float64, bool) {
	m, ok := activityMultipliers[l]
	return m, ok
}

// ParseDOB parses a MM/DD/YYYY date of birth.
func ParseDOB(s string) (time.Time, error) {
	t, err := time.Parse(dobLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date of birth %q must be MM/DD/YYYY", ErrInvalidStats, s)
	}
	return t, nil
}

// Age returns completed years between dob and now.
func Age(dob, now time.Time) int {
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	return age
}

// ValidateAge accepts ages from MinAge to MaxAge inclusive.
func ValidateAge(age int) error {
	if age < MinAge || age > MaxAge {
		return fmt.Errorf("%w: age %d outside %d-%d", ErrInvalidStats, age, MinAge, MaxAge)
	}
	return nil
}

// BMR is the Mifflin-St Jeor basal metabolic rate in kcal/day.
func BMR(weightKg, heightCm float64, age int, g models.Gender) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if g == models.Female {
		return base - 161
	}
	return base + 5
}

// DailyCalorieTarget scales BMR by activity, applies the goal adjustment and
// clamps to MinCalorieTarget. The result is rounded to whole calories.
func DailyCalorieTarget(stats models.UserStats, goal models.Goal, now time.Time) (float64, error) {
	kg := PoundsToKilograms(stats.WeightLbs)
	if kg == 0 {
		return 0, fmt.Errorf("%w: weight must be positive", ErrInvalidStats)
	}
	if !positive(stats.HeightInches) {
		return 0, fmt.Errorf("%w: height must be positive", ErrInvalidStats)
	}
	if stats.Gender != models.Male && stats.Gender != models.Female {
		return 0, fmt.Errorf("%w: unknown gender %q", ErrInvalidStats, stats.Gender)
	}
	mult, ok := ActivityMultiplier(stats.ActivityLevel)
	if !ok {
		return 0, fmt.Errorf("%w: unknown activity level %q", ErrInvalidStats, stats.ActivityLevel)
	}
	dob, err := ParseDOB(stats.DOB)
	if err != nil {
		return 0, err
	}
	age := Age(dob, now)
	if err := ValidateAge(age); err != nil {
		return 0, err
	}

	tdee := BMR(kg, stats.HeightInches*cmPerInch, age, stats.Gender) * mult
	switch goal {
	case models.GoalLose:
		tdee -= goalAdjustment
	case models.GoalGain:
		tdee += goalAdjustment
	}
	return math.Round(math.Max(tdee, MinCalorieTarget)), nil
}

var macroTable = map[models.Goal]models.MacroRatios{
	models.GoalLose:     {Protein: 40, Carbs: 30, Fat: 30},
	models.GoalMaintain: {Protein: 30, Carbs: 40, Fat: 30},
	models.GoalGain:     {Protein: 30, Carbs: 45, Fat: 25},
}

// MacroRatiosForGoal returns the fixed protein/carb/fat split for a goal.
// Unknown goals get the maintain split.
func MacroRatiosForGoal(g models.Goal) models.MacroRatios {
	if r, ok := macroTable[g]; ok {
		return r
	}
	return macroTable[models.GoalMaintain]
}

// MacroGrams are daily macro targets in grams.
type MacroGrams struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// GramsForTarget converts a calorie target and ratio split to grams using
// 4 kcal/g for protein and carbs and 9 kcal/g for fat.
func GramsForTarget(target float64, r models.MacroRatios) MacroGrams {
	if !positive(target) {
		return MacroGrams{}
	}
	return MacroGrams{
		Protein: math.Round(target * r.Protein / 100 / 4),
		Carbs:   math.Round(target * r.Carbs / 100 / 4),
		Fat:     math.Round(target * r.Fat / 100 / 9),
	}
}

package energy

import (
	"fmt"
	"math"

	"github.com/meltforce/fittrack/internal/models"
)

// maintainBand is how far a maintenance plan may drift before it is flagged.
const maintainBand = 200.0

// Totals are summed nutrition values for a set of foods.
type Totals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func servings(f models.ScheduledFoodItem) float64 {
	if !positive(f.Servings) {
		return 1
	}
	return f.Servings
}

// DayNutrition totals the foods scheduled on a day, scaled by servings.
// A missing or non-positive serving count counts as one serving.
func DayNutrition(foods []models.ScheduledFoodItem, day models.DayOfWeek) Totals {
	var t Totals
	for _, f := range foods {
		if f.Day != day {
			continue
		}
		n := servings(f)
		t.Calories += f.Calories * n
		t.Protein += f.Protein * n
		t.Carbs += f.Carbs * n
		t.Fat += f.Fat * n
	}
	return t
}

// PlanCalories sums calories × servings over all foods, rounded to 0.1.
func PlanCalories(foods []models.ScheduledFoodItem) float64 {
	var sum float64
	for _, f := range foods {
		sum += f.Calories * servings(f)
	}
	return Round(sum, 1)
}

// CaloriesByDay returns rounded calories for each day of the week, including
// days without food.
func CaloriesByDay(foods []models.ScheduledFoodItem) map[models.DayOfWeek]float64 {
	out := make(map[models.DayOfWeek]float64, 7)
	for d := models.DayOfWeek(0); d <= 6; d++ {
		out[d] = Round(DayNutrition(foods, d).Calories, 1)
	}
	return out
}

// Balance is the energy balance for one day.
type Balance struct {
	CaloriesIn  float64 `json:"caloriesIn"`
	CaloriesOut float64 `json:"caloriesOut"`
	Net         float64 `json:"net"`
}

func DayBalance(in, out float64) Balance {
	return Balance{CaloriesIn: in, CaloriesOut: out, Net: in - out}
}

// Recommendation compares a plan's calories to the target for its goal.
func Recommendation(goal models.Goal, total, target float64) string {
	if target == 0 {
		return "Please enter your stats to get personalized recommendations"
	}
	diff := math.Abs(total - target)
	switch goal {
	case models.GoalLose:
		if total > target {
			return fmt.Sprintf("Your plan exceeds your calorie target by %g calories. Consider removing some high-calorie foods.", Round(diff, 1))
		}
		return "Great! Your plan is within your calorie target for weight loss."
	case models.GoalGain:
		if total < target {
			return fmt.Sprintf("Your plan is %g calories below your target. Consider adding more nutrient-dense foods.", Round(diff, 1))
		}
		return "Great! Your plan meets your calorie target for muscle gain."
	default:
		if diff > maintainBand {
			dir := "below"
			if total > target {
				dir = "above"
			}
			return fmt.Sprintf("Your plan is %g calories %s your maintenance target.", Round(diff, 1), dir)
		}
		return "Great! Your plan is close to your maintenance calorie target."
	}
}

// HeightInches combines a feet and inches reading.
func HeightInches(feet, inches float64) float64 {
	return feet*12 + inches
}

// FormatDuration renders seconds as MM:SS. Minutes are not capped at 59.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

package energy

import (
	"testing"

	"github.com/meltforce/fittrack/internal/models"
	"github.com/stretchr/testify/assert"
)

func food(name string, day models.DayOfWeek, kcal, servings float64) models.ScheduledFoodItem {
	return models.ScheduledFoodItem{
		FoodItem: models.FoodItem{Name: name, Calories: kcal, Protein: 10, Carbs: 20, Fat: 5},
		Day:      day,
		MealTime: models.Lunch,
		Servings: servings,
	}
}

func TestDayNutrition(t *testing.T) {
	foods := []models.ScheduledFoodItem{
		food("rice", 2, 200, 1.5),
		food("chicken", 2, 150, 2),
		food("legacy", 2, 100, 0),
		food("oats", 3, 300, 1),
	}
	got := DayNutrition(foods, 2)
	assert.InDelta(t, 300+300+100, got.Calories, 1e-9)
	assert.InDelta(t, 15+20+10, got.Protein, 1e-9)
	assert.InDelta(t, 30+40+20, got.Carbs, 1e-9)
	assert.InDelta(t, 7.5+10+5, got.Fat, 1e-9)

	assert.Equal(t, Totals{}, DayNutrition(foods, 0))
}

func TestPlanCalories(t *testing.T) {
	foods := []models.ScheduledFoodItem{food("a", 1, 100.04, 1), food("b", 2, 50.02, 2)}
	assert.Equal(t, 200.1, PlanCalories(foods))

	byDay := CaloriesByDay(foods)
	assert.Len(t, byDay, 7)
	assert.Equal(t, 100.0, byDay[1])
	assert.Zero(t, byDay[6])
}

func TestDayBalance(t *testing.T) {
	b := DayBalance(2100, 450)
	assert.Equal(t, Balance{CaloriesIn: 2100, CaloriesOut: 450, Net: 1650}, b)
}

func TestRecommendation(t *testing.T) {
	assert.Contains(t, Recommendation(models.GoalLose, 2000, 0), "enter your stats")
	assert.Contains(t, Recommendation(models.GoalLose, 2300, 2000), "exceeds your calorie target by 300")
	assert.Contains(t, Recommendation(models.GoalLose, 1800, 2000), "within your calorie target")
	assert.Contains(t, Recommendation(models.GoalGain, 2500, 2800), "300 calories below")
	assert.Contains(t, Recommendation(models.GoalGain, 2900, 2800), "meets your calorie target")
	assert.Contains(t, Recommendation(models.GoalMaintain, 2500, 2200), "300 calories above")
	assert.Contains(t, Recommendation(models.GoalMaintain, 2300, 2200), "close to your maintenance")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00", FormatDuration(0))
	assert.Equal(t, "02:05", FormatDuration(125))
	assert.Equal(t, "75:00", FormatDuration(4500))
	assert.Equal(t, "00:00", FormatDuration(-3))
}

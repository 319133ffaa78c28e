package models

import (
	"fmt"
	"time"
)

// MealTime is the meal slot a scheduled food belongs to.
type MealTime string

const (
	Breakfast MealTime = "breakfast"
	Lunch     MealTime = "lunch"
	Dinner    MealTime = "dinner"
	Snack     MealTime = "snack"
)

func (m MealTime) IsValid() bool {
	switch m {
	case Breakfast, Lunch, Dinner, Snack:
		return true
	default:
		return false
	}
}

type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

type ActivityLevel string

const (
	Sedentary  ActivityLevel = "sedentary"
	Light      ActivityLevel = "light"
	Moderate   ActivityLevel = "moderate"
	Active     ActivityLevel = "active"
	VeryActive ActivityLevel = "veryActive"
)

// FoodItem holds per-serving nutrition values. Micro-nutrients are optional.
type FoodItem struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Calories     float64  `json:"calories"`
	Protein      float64  `json:"protein"`
	Carbs        float64  `json:"carbs"`
	Fat          float64  `json:"fat"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	ServingSize  float64  `json:"servingSize,omitempty"`
	ServingUnit  string   `json:"servingUnit,omitempty"`
	ServingLabel string   `json:"servingSizeText,omitempty"`
}

// ScheduledFoodItem is a food placed on a day and meal of a nutrition plan.
// Its contribution is the base values multiplied by Servings.
type ScheduledFoodItem struct {
	FoodItem
	Day      DayOfWeek `json:"day"`
	MealTime MealTime  `json:"mealTime"`
	Servings float64   `json:"servings"`
	PlanID   string    `json:"planId,omitempty"`
}

func (f ScheduledFoodItem) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("food name is required")
	}
	if !f.Day.IsValid() {
		return fmt.Errorf("food %q: invalid day %d", f.Name, f.Day)
	}
	if !f.MealTime.IsValid() {
		return fmt.Errorf("food %q: invalid meal time %q", f.Name, f.MealTime)
	}
	if !(f.Servings > 0) {
		return fmt.Errorf("food %q: servings must be positive", f.Name)
	}
	return nil
}

// MacroRatios are whole percentages of daily calories.
type MacroRatios struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// UserStats are the biometrics used for calorie targets.
type UserStats struct {
	WeightLbs     float64       `json:"weight"`
	HeightInches  float64       `json:"height"`
	DOB           string        `json:"dob"`
	Gender        Gender        `json:"gender"`
	ActivityLevel ActivityLevel `json:"activityLevel"`
}

type NutritionPlan struct {
	ID                 string              `json:"id"`
	UserID             int                 `json:"userId,omitempty"`
	Name               string              `json:"name"`
	Goal               Goal                `json:"goal"`
	Foods              []ScheduledFoodItem `json:"foods"`
	DailyCalorieTarget float64             `json:"dailyCalorieTarget"`
	MacroRatios        MacroRatios         `json:"macroRatios"`
	UserStats          *UserStats          `json:"userStats,omitempty"`
	Allergies          []string            `json:"allergies,omitempty"`
	CustomAllergens    []string            `json:"customAllergens,omitempty"`
	IsActive           bool                `json:"isActive"`
	CreatedAt          time.Time           `json:"createdAt"`
}

func (p *NutritionPlan) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("plan name is required")
	}
	if !p.Goal.IsValid() {
		return fmt.Errorf("invalid goal %q", p.Goal)
	}
	for _, f := range p.Foods {
		if err := f.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// FoodsForDay returns the foods scheduled on a day, in plan order.
func (p *NutritionPlan) FoodsForDay(day DayOfWeek) []ScheduledFoodItem {
	var out []ScheduledFoodItem
	for _, f := range p.Foods {
		if f.Day == day {
			out = append(out, f)
		}
	}
	return out
}

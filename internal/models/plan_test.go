package models

import "testing"

func samplePlan() *WorkoutPlan {
	return &WorkoutPlan{
		Name: "Push Pull",
		Goal: GoalMaintain,
		Schedules: []DailySchedule{
			{Day: 1, Exercises: []Exercise{{ID: "push-ups", Sets: 3, Reps: "10"}, {ID: "plank", Sets: 3, Reps: "1"}}},
			{Day: 3, Exercises: []Exercise{{ID: "pull-ups", Sets: 3, Reps: "8-12"}}},
		},
	}
}

// TestRemoveExercisePrunesEmptyDay verifies that removing the last exercise
// of a day drops the day from the schedule list.
func TestRemoveExercisePrunesEmptyDay(t *testing.T) {
	p := samplePlan()
	if !p.RemoveExercise(3, "pull-ups") {
		t.Fatal("expected pull-ups to be removed")
	}
	if len(p.Schedules) != 1 {
		t.Fatalf("schedules = %d, want 1", len(p.Schedules))
	}
	if p.Schedule(3) != nil {
		t.Error("Wednesday should have been pruned")
	}
}

// TestRemoveExerciseKeepsNonEmptyDay verifies a day with remaining exercises stays.
func TestRemoveExerciseKeepsNonEmptyDay(t *testing.T) {
	p := samplePlan()
	p.RemoveExercise(1, "plank")
	s := p.Schedule(1)
	if s == nil || len(s.Exercises) != 1 || s.Exercises[0].ID != "push-ups" {
		t.Errorf("Monday = %+v, want only push-ups", s)
	}
	if p.RemoveExercise(5, "plank") {
		t.Error("removing from a day without exercises should report false")
	}
}

// TestAddExercise verifies exercises land on an existing day or create a new one.
func TestAddExercise(t *testing.T) {
	p := samplePlan()
	if err := p.AddExercise(1, Exercise{ID: "dips"}); err != nil {
		t.Fatal(err)
	}
	if err := p.AddExercise(6, Exercise{ID: "squats"}); err != nil {
		t.Fatal(err)
	}
	if got := len(p.Schedule(1).Exercises); got != 3 {
		t.Errorf("Monday exercises = %d, want 3", got)
	}
	if p.Schedule(6) == nil {
		t.Error("Saturday should exist")
	}
	if err := p.AddExercise(7, Exercise{ID: "x"}); err == nil {
		t.Error("expected error for day 7")
	}
}

// TestFlattenOrder verifies the flattened working set follows schedule order.
func TestFlattenOrder(t *testing.T) {
	got := samplePlan().Flatten()
	want := []string{"push-ups", "plank", "pull-ups"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, ex := range got {
		if ex.ID != want[i] {
			t.Errorf("[%d] = %q, want %q", i, ex.ID, want[i])
		}
	}
}

func TestPlanValidate(t *testing.T) {
	if err := samplePlan().Validate(); err != nil {
		t.Errorf("valid plan: %v", err)
	}

	p := samplePlan()
	p.Goal = "bulk"
	if err := p.Validate(); err == nil {
		t.Error("expected error for unknown goal")
	}

	p = samplePlan()
	p.Schedules = nil
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty plan")
	}

	p = samplePlan()
	w := -5.0
	p.UserWeightLbs = &w
	if err := p.Validate(); err == nil {
		t.Error("expected error for negative weight")
	}
}

// TestScheduledFoodValidate verifies servings must be strictly positive.
func TestScheduledFoodValidate(t *testing.T) {
	f := ScheduledFoodItem{FoodItem: FoodItem{Name: "Oats"}, Day: 2, MealTime: Breakfast, Servings: 1.5}
	if err := f.Validate(); err != nil {
		t.Errorf("valid food: %v", err)
	}
	for _, s := range []float64{0, -1} {
		f.Servings = s
		if err := f.Validate(); err == nil {
			t.Errorf("servings %v: expected error", s)
		}
	}
	f.Servings = 1
	f.MealTime = "brunch"
	if err := f.Validate(); err == nil {
		t.Error("expected error for unknown meal time")
	}
}

func TestDayOfWeekString(t *testing.T) {
	if got := DayOfWeek(0).String(); got != "Sunday" {
		t.Errorf("day 0 = %q", got)
	}
	if got := DayOfWeek(9).String(); got != "day(9)" {
		t.Errorf("day 9 = %q", got)
	}
}

package models

import "time"

// CompletedWorkout is a finished or checkpointed guided session.
// Completed is false for partial checkpoints.
type CompletedWorkout struct {
	ID                 string    `json:"id"`
	UserID             int       `json:"userId"`
	PlanName           string    `json:"planName"`
	Date               time.Time `json:"date"`
	DurationSec        int       `json:"duration"`
	CaloriesBurned     float64   `json:"caloriesBurned"`
	CompletedExercises []string  `json:"completedExercises"`
	Completed          bool      `json:"completed"`
	CreatedAt          time.Time `json:"createdAt"`
}

// DateKey returns the YYYY-MM-DD day a record belongs to.
func (w CompletedWorkout) DateKey() string {
	return w.Date.Format(time.DateOnly)
}

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/fittrack/internal/models"
)

const historyColumns = `id, user_id, plan_name, date, duration_sec, calories_burned, completed_exercises, completed, created_at`

// SaveCompletedWorkout inserts a session record, or replaces the record
// with the same ID. Returns the record ID.
func (db *DB) SaveCompletedWorkout(ctx context.Context, w *models.CompletedWorkout) (string, error) {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}
	exercises, err := json.Marshal(nonNil(w.CompletedExercises))
	if err != nil {
		return "", fmt.Errorf("encoding completed exercises: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO completed_workouts (id, user_id, plan_name, date, duration_sec, calories_burned,
		 completed_exercises, completed)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		 date = EXCLUDED.date, duration_sec = EXCLUDED.duration_sec,
		 calories_burned = EXCLUDED.calories_burned,
		 completed_exercises = EXCLUDED.completed_exercises, completed = EXCLUDED.completed
		 WHERE completed_workouts.user_id = EXCLUDED.user_id`,
		id, w.UserID, w.PlanName, w.Date, w.DurationSec, w.CaloriesBurned, exercises, w.Completed)
	if err != nil {
		return "", mapError("saving completed workout", err)
	}
	if tag.RowsAffected() == 0 {
		return "", fmt.Errorf("saving completed workout %s: %w", id, models.ErrPermissionDenied)
	}
	return id, nil
}

// GetCompletedWorkoutsForDate returns the records dated on the calendar day
// of day, in day's location.
func (db *DB) GetCompletedWorkoutsForDate(ctx context.Context, userID int, day time.Time) ([]models.CompletedWorkout, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := db.Pool.Query(ctx,
		`SELECT `+historyColumns+` FROM completed_workouts
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date DESC`,
		userID, start, start.AddDate(0, 0, 1))
	if err != nil {
		return nil, mapError("querying completed workouts", err)
	}
	return collectHistory(rows)
}

// ListCompletedWorkouts returns a user's most recent records.
func (db *DB) ListCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT `+historyColumns+` FROM completed_workouts
		 WHERE user_id = $1 ORDER BY date DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, mapError("querying completed workouts", err)
	}
	return collectHistory(rows)
}

func collectHistory(rows pgx.Rows) ([]models.CompletedWorkout, error) {
	defer rows.Close()

	var result []models.CompletedWorkout
	for rows.Next() {
		var (
			w         models.CompletedWorkout
			exercises []byte
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.PlanName, &w.Date, &w.DurationSec, &w.CaloriesBurned,
			&exercises, &w.Completed, &w.CreatedAt); err != nil {
			return nil, mapError("scanning completed workout", err)
		}
		if err := json.Unmarshal(exercises, &w.CompletedExercises); err != nil {
			return nil, fmt.Errorf("decoding completed exercises of %s: %w", w.ID, err)
		}
		result = append(result, w)
	}
	return result, mapError("iterating completed workouts", rows.Err())
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/fittrack/internal/models"
)

const historyColumns = `id, user_id, plan_name, date, duration_sec, calories_burned, completed_exercises, completed, created_at`

// SaveCompletedWorkout inserts a session record, or replaces the record
// with the same ID. Returns the record ID.
func (s *Store) SaveCompletedWorkout(ctx context.Context, w *models.CompletedWorkout) (string, error) {
	id := w.ID
	if id == "" {
		id = uuid.NewString()
	}
	exercises, err := json.Marshal(nonNil(w.CompletedExercises))
	if err != nil {
		return "", fmt.Errorf("encoding completed exercises: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO completed_workouts (`+historyColumns+`)
		 VALUES (?,?,?,?,?,?,?,?,?)
		 ON CONFLICT (id) DO UPDATE SET
		 date = excluded.date, duration_sec = excluded.duration_sec,
		 calories_burned = excluded.calories_burned,
		 completed_exercises = excluded.completed_exercises, completed = excluded.completed
		 WHERE completed_workouts.user_id = excluded.user_id`,
		id, w.UserID, w.PlanName, millis(w.Date), w.DurationSec, w.CaloriesBurned, string(exercises),
		w.Completed, time.Now().UnixMilli())
	if err != nil {
		return "", mapError("saving completed workout", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return "", fmt.Errorf("saving completed workout %s: %w", id, models.ErrPermissionDenied)
	}
	return id, nil
}

// GetCompletedWorkoutsForDate returns the records dated on the calendar day
// of day, in day's location.
func (s *Store) GetCompletedWorkoutsForDate(ctx context.Context, userID int, day time.Time) ([]models.CompletedWorkout, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM completed_workouts
		 WHERE user_id = ? AND date >= ? AND date < ?
		 ORDER BY date DESC`,
		userID, millis(start), millis(start.AddDate(0, 0, 1)))
	if err != nil {
		return nil, mapError("querying completed workouts", err)
	}
	return collectHistory(rows)
}

// ListCompletedWorkouts returns a user's most recent records.
func (s *Store) ListCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+historyColumns+` FROM completed_workouts
		 WHERE user_id = ? ORDER BY date DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, mapError("querying completed workouts", err)
	}
	return collectHistory(rows)
}

func collectHistory(rows *sql.Rows) ([]models.CompletedWorkout, error) {
	defer rows.Close()

	var result []models.CompletedWorkout
	for rows.Next() {
		var (
			w               models.CompletedWorkout
			exercises       string
			date, createdAt int64
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.PlanName, &date, &w.DurationSec, &w.CaloriesBurned,
			&exercises, &w.Completed, &createdAt); err != nil {
			return nil, mapError("scanning completed workout", err)
		}
		w.Date, w.CreatedAt = fromMillis(date), fromMillis(createdAt)
		if err := json.Unmarshal([]byte(exercises), &w.CompletedExercises); err != nil {
			return nil, fmt.Errorf("decoding completed exercises of %s: %w", w.ID, err)
		}
		result = append(result, w)
	}
	return result, mapError("iterating completed workouts", rows.Err())
}

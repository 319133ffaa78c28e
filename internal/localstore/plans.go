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

const planColumns = `id, user_id, name, goal, schedules, user_weight_lbs, estimated_calories_burned, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

// ListPlans returns a user's workout plans, newest first.
func (s *Store) ListPlans(ctx context.Context, userID int) ([]models.WorkoutPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE user_id = ? ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, mapError("querying plans", err)
	}
	defer rows.Close()

	var plans []models.WorkoutPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, mapError("iterating plans", rows.Err())
}

// GetPlan returns one plan owned by userID.
func (s *Store) GetPlan(ctx context.Context, userID int, id string) (*models.WorkoutPlan, error) {
	return scanPlan(s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE id = ? AND user_id = ?`, id, userID))
}

// FindPlanByName returns the most recently updated plan with the given name.
func (s *Store) FindPlanByName(ctx context.Context, userID int, name string) (*models.WorkoutPlan, error) {
	return scanPlan(s.db.QueryRowContext(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE user_id = ? AND name = ?
		 ORDER BY updated_at DESC LIMIT 1`, userID, name))
}

// SavePlan inserts a new plan and assigns its ID and timestamps.
func (s *Store) SavePlan(ctx context.Context, p *models.WorkoutPlan) (string, error) {
	p.Prune()
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Millisecond)
	p.CreatedAt, p.UpdatedAt = now, now

	schedules, err := json.Marshal(p.Schedules)
	if err != nil {
		return "", fmt.Errorf("encoding schedules: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workout_plans (`+planColumns+`) VALUES (?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Name, string(p.Goal), string(schedules), p.UserWeightLbs, p.EstimatedCaloriesBurned,
		millis(p.CreatedAt), millis(p.UpdatedAt))
	if err != nil {
		return "", mapError("inserting plan", err)
	}
	return p.ID, nil
}

// UpdatePlan replaces a plan's contents. CreatedAt is kept.
func (s *Store) UpdatePlan(ctx context.Context, p *models.WorkoutPlan) error {
	p.Prune()
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	schedules, err := json.Marshal(p.Schedules)
	if err != nil {
		return fmt.Errorf("encoding schedules: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE workout_plans SET name = ?, goal = ?, schedules = ?, user_weight_lbs = ?,
		 estimated_calories_burned = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		p.Name, string(p.Goal), string(schedules), p.UserWeightLbs, p.EstimatedCaloriesBurned,
		millis(p.UpdatedAt), p.ID, p.UserID)
	if err != nil {
		return mapError("updating plan", err)
	}
	return expectRow(res, "updating plan "+p.ID)
}

// DeletePlan removes a plan owned by userID.
func (s *Store) DeletePlan(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workout_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapError("deleting plan", err)
	}
	return expectRow(res, "deleting plan "+id)
}

func scanPlan(row scanner) (*models.WorkoutPlan, error) {
	var (
		p                  models.WorkoutPlan
		goal, schedules    string
		weight, estimate   sql.NullFloat64
		createdAt, updated int64
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &goal, &schedules, &weight, &estimate, &createdAt, &updated); err != nil {
		return nil, mapError("scanning plan", err)
	}
	p.Goal = models.Goal(goal)
	if weight.Valid {
		p.UserWeightLbs = &weight.Float64
	}
	if estimate.Valid {
		p.EstimatedCaloriesBurned = &estimate.Float64
	}
	p.CreatedAt, p.UpdatedAt = fromMillis(createdAt), fromMillis(updated)
	if err := json.Unmarshal([]byte(schedules), &p.Schedules); err != nil {
		return nil, fmt.Errorf("decoding schedules of plan %s: %w", p.ID, err)
	}
	return &p, nil
}

func expectRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	return nil
}

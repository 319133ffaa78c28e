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

const planColumns = `id, user_id, name, goal, schedules, user_weight_lbs, estimated_calories_burned, created_at, updated_at`

// ListPlans returns a user's workout plans, newest first.
func (db *DB) ListPlans(ctx context.Context, userID int) ([]models.WorkoutPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
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
func (db *DB) GetPlan(ctx context.Context, userID int, id string) (*models.WorkoutPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanPlan(row)
}

// FindPlanByName returns the most recently updated plan with the given name.
func (db *DB) FindPlanByName(ctx context.Context, userID int, name string) (*models.WorkoutPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+planColumns+` FROM workout_plans WHERE user_id = $1 AND name = $2
		 ORDER BY updated_at DESC LIMIT 1`,
		userID, name)
	return scanPlan(row)
}

// SavePlan inserts a new plan and assigns its ID and timestamps.
func (db *DB) SavePlan(ctx context.Context, p *models.WorkoutPlan) (string, error) {
	p.Prune()
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now

	schedules, err := json.Marshal(p.Schedules)
	if err != nil {
		return "", fmt.Errorf("encoding schedules: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO workout_plans (`+planColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		p.ID, p.UserID, p.Name, p.Goal, schedules, p.UserWeightLbs, p.EstimatedCaloriesBurned,
		p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return "", mapError("inserting plan", err)
	}
	return p.ID, nil
}

// UpdatePlan replaces a plan's contents. CreatedAt is kept.
func (db *DB) UpdatePlan(ctx context.Context, p *models.WorkoutPlan) error {
	p.Prune()
	if err := p.Validate(); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()

	schedules, err := json.Marshal(p.Schedules)
	if err != nil {
		return fmt.Errorf("encoding schedules: %w", err)
	}
	tag, err := db.Pool.Exec(ctx,
		`UPDATE workout_plans SET name = $3, goal = $4, schedules = $5, user_weight_lbs = $6,
		 estimated_calories_burned = $7, updated_at = $8
		 WHERE id = $1 AND user_id = $2`,
		p.ID, p.UserID, p.Name, p.Goal, schedules, p.UserWeightLbs, p.EstimatedCaloriesBurned, p.UpdatedAt)
	if err != nil {
		return mapError("updating plan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("updating plan %s: %w", p.ID, models.ErrNotFound)
	}
	return nil
}

// DeletePlan removes a plan owned by userID.
func (db *DB) DeletePlan(ctx context.Context, userID int, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM workout_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("deleting plan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting plan %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func scanPlan(row pgx.Row) (*models.WorkoutPlan, error) {
	var (
		p         models.WorkoutPlan
		schedules []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Goal, &schedules, &p.UserWeightLbs,
		&p.EstimatedCaloriesBurned, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapError("scanning plan", err)
	}
	if err := json.Unmarshal(schedules, &p.Schedules); err != nil {
		return nil, fmt.Errorf("decoding schedules of plan %s: %w", p.ID, err)
	}
	return &p, nil
}

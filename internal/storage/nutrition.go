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

const nutritionColumns = `id, user_id, name, goal, foods, daily_calorie_target, macro_ratios, user_stats,
	allergies, custom_allergens, is_active, created_at`

// ListNutritionPlans returns a user's nutrition plans, newest first.
func (db *DB) ListNutritionPlans(ctx context.Context, userID int) ([]models.NutritionPlan, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, mapError("querying nutrition plans", err)
	}
	defer rows.Close()

	var plans []models.NutritionPlan
	for rows.Next() {
		p, err := scanNutritionPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, *p)
	}
	return plans, mapError("iterating nutrition plans", rows.Err())
}

// GetNutritionPlan returns one nutrition plan owned by userID.
func (db *DB) GetNutritionPlan(ctx context.Context, userID int, id string) (*models.NutritionPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE id = $1 AND user_id = $2`,
		id, userID)
	return scanNutritionPlan(row)
}

// ActiveNutritionPlan returns the user's active nutrition plan.
func (db *DB) ActiveNutritionPlan(ctx context.Context, userID int) (*models.NutritionPlan, error) {
	row := db.Pool.QueryRow(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE user_id = $1 AND is_active`,
		userID)
	return scanNutritionPlan(row)
}

// SaveNutritionPlan inserts a nutrition plan. Every food is stamped with the
// plan ID. A plan saved as active deactivates the user's other plans.
func (db *DB) SaveNutritionPlan(ctx context.Context, p *models.NutritionPlan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC()
	for i := range p.Foods {
		p.Foods[i].PlanID = p.ID
	}

	enc, err := encodeNutritionPlan(p)
	if err != nil {
		return "", err
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return "", mapError("beginning transaction", err)
	}
	defer tx.Rollback(ctx)

	if p.IsActive {
		if _, err := tx.Exec(ctx, `UPDATE nutrition_plans SET is_active = FALSE WHERE user_id = $1`, p.UserID); err != nil {
			return "", mapError("deactivating nutrition plans", err)
		}
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO nutrition_plans (`+nutritionColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.UserID, p.Name, p.Goal, enc.foods, p.DailyCalorieTarget, enc.macros, enc.stats,
		enc.allergies, enc.custom, p.IsActive, p.CreatedAt)
	if err != nil {
		return "", mapError("inserting nutrition plan", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", mapError("committing nutrition plan", err)
	}
	return p.ID, nil
}

// SetActiveNutritionPlan makes id the user's only active plan.
func (db *DB) SetActiveNutritionPlan(ctx context.Context, userID int, id string) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return mapError("beginning transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `UPDATE nutrition_plans SET is_active = FALSE WHERE user_id = $1`, userID); err != nil {
		return mapError("deactivating nutrition plans", err)
	}
	tag, err := tx.Exec(ctx, `UPDATE nutrition_plans SET is_active = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("activating nutrition plan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("activating nutrition plan %s: %w", id, models.ErrNotFound)
	}
	return mapError("committing activation", tx.Commit(ctx))
}

// DeleteNutritionPlan removes a nutrition plan owned by userID.
func (db *DB) DeleteNutritionPlan(ctx context.Context, userID int, id string) error {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM nutrition_plans WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return mapError("deleting nutrition plan", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("deleting nutrition plan %s: %w", id, models.ErrNotFound)
	}
	return nil
}

type encodedNutrition struct {
	foods, macros, stats, allergies, custom []byte
}

func encodeNutritionPlan(p *models.NutritionPlan) (encodedNutrition, error) {
	var (
		e   encodedNutrition
		err error
	)
	if e.foods, err = json.Marshal(nonNil(p.Foods)); err != nil {
		return e, fmt.Errorf("encoding foods: %w", err)
	}
	if e.macros, err = json.Marshal(p.MacroRatios); err != nil {
		return e, fmt.Errorf("encoding macro ratios: %w", err)
	}
	if p.UserStats != nil {
		if e.stats, err = json.Marshal(p.UserStats); err != nil {
			return e, fmt.Errorf("encoding user stats: %w", err)
		}
	}
	if e.allergies, err = json.Marshal(nonNil(p.Allergies)); err != nil {
		return e, fmt.Errorf("encoding allergies: %w", err)
	}
	if e.custom, err = json.Marshal(nonNil(p.CustomAllergens)); err != nil {
		return e, fmt.Errorf("encoding custom allergens: %w", err)
	}
	return e, nil
}

func scanNutritionPlan(row pgx.Row) (*models.NutritionPlan, error) {
	var (
		p                                 models.NutritionPlan
		foods, macros, stats, all, custom []byte
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Goal, &foods, &p.DailyCalorieTarget, &macros, &stats,
		&all, &custom, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, mapError("scanning nutrition plan", err)
	}
	if err := decodeNutritionJSON(&p, foods, macros, stats, all, custom); err != nil {
		return nil, fmt.Errorf("decoding nutrition plan %s: %w", p.ID, err)
	}
	return &p, nil
}

// decodeNutritionJSON fills the JSON-encoded fields of a nutrition plan.
func decodeNutritionJSON(p *models.NutritionPlan, foods, macros, stats, allergies, custom []byte) error {
	if err := json.Unmarshal(foods, &p.Foods); err != nil {
		return fmt.Errorf("foods: %w", err)
	}
	if err := json.Unmarshal(macros, &p.MacroRatios); err != nil {
		return fmt.Errorf("macro ratios: %w", err)
	}
	if len(stats) > 0 {
		p.UserStats = &models.UserStats{}
		if err := json.Unmarshal(stats, p.UserStats); err != nil {
			return fmt.Errorf("user stats: %w", err)
		}
	}
	if err := json.Unmarshal(allergies, &p.Allergies); err != nil {
		return fmt.Errorf("allergies: %w", err)
	}
	if err := json.Unmarshal(custom, &p.CustomAllergens); err != nil {
		return fmt.Errorf("custom allergens: %w", err)
	}
	return nil
}

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

const nutritionColumns = `id, user_id, name, goal, foods, daily_calorie_target, macro_ratios, user_stats,
	allergies, custom_allergens, is_active, created_at`

// ListNutritionPlans returns a user's nutrition plans, newest first.
func (s *Store) ListNutritionPlans(ctx context.Context, userID int) ([]models.NutritionPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE user_id = ? ORDER BY created_at DESC`, userID)
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
func (s *Store) GetNutritionPlan(ctx context.Context, userID int, id string) (*models.NutritionPlan, error) {
	return scanNutritionPlan(s.db.QueryRowContext(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE id = ? AND user_id = ?`, id, userID))
}

// ActiveNutritionPlan returns the user's active nutrition plan.
func (s *Store) ActiveNutritionPlan(ctx context.Context, userID int) (*models.NutritionPlan, error) {
	return scanNutritionPlan(s.db.QueryRowContext(ctx,
		`SELECT `+nutritionColumns+` FROM nutrition_plans WHERE user_id = ? AND is_active = 1 LIMIT 1`, userID))
}

// SaveNutritionPlan inserts a nutrition plan. Every food is stamped with the
// plan ID. A plan saved as active deactivates the user's other plans.
func (s *Store) SaveNutritionPlan(ctx context.Context, p *models.NutritionPlan) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	p.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	for i := range p.Foods {
		p.Foods[i].PlanID = p.ID
	}

	foods, err := json.Marshal(nonNil(p.Foods))
	if err != nil {
		return "", fmt.Errorf("encoding foods: %w", err)
	}
	macros, err := json.Marshal(p.MacroRatios)
	if err != nil {
		return "", fmt.Errorf("encoding macro ratios: %w", err)
	}
	var stats sql.NullString
	if p.UserStats != nil {
		b, err := json.Marshal(p.UserStats)
		if err != nil {
			return "", fmt.Errorf("encoding user stats: %w", err)
		}
		stats = sql.NullString{String: string(b), Valid: true}
	}
	allergies, err := json.Marshal(nonNil(p.Allergies))
	if err != nil {
		return "", fmt.Errorf("encoding allergies: %w", err)
	}
	custom, err := json.Marshal(nonNil(p.CustomAllergens))
	if err != nil {
		return "", fmt.Errorf("encoding custom allergens: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", mapError("beginning transaction", err)
	}
	defer tx.Rollback()

	if p.IsActive {
		if _, err := tx.ExecContext(ctx, `UPDATE nutrition_plans SET is_active = 0 WHERE user_id = ?`, p.UserID); err != nil {
			return "", mapError("deactivating nutrition plans", err)
		}
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO nutrition_plans (`+nutritionColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.UserID, p.Name, string(p.Goal), string(foods), p.DailyCalorieTarget, string(macros), stats,
		string(allergies), string(custom), p.IsActive, millis(p.CreatedAt))
	if err != nil {
		return "", mapError("inserting nutrition plan", err)
	}
	if err := tx.Commit(); err != nil {
		return "", mapError("committing nutrition plan", err)
	}
	return p.ID, nil
}

// SetActiveNutritionPlan makes id the user's only active plan.
func (s *Store) SetActiveNutritionPlan(ctx context.Context, userID int, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return mapError("beginning transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE nutrition_plans SET is_active = 0 WHERE user_id = ?`, userID); err != nil {
		return mapError("deactivating nutrition plans", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE nutrition_plans SET is_active = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapError("activating nutrition plan", err)
	}
	if err := expectRow(res, "activating nutrition plan "+id); err != nil {
		return err
	}
	return mapError("committing activation", tx.Commit())
}

// DeleteNutritionPlan removes a nutrition plan owned by userID.
func (s *Store) DeleteNutritionPlan(ctx context.Context, userID int, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM nutrition_plans WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return mapError("deleting nutrition plan", err)
	}
	return expectRow(res, "deleting nutrition plan "+id)
}

func scanNutritionPlan(row scanner) (*models.NutritionPlan, error) {
	var (
		p                                   models.NutritionPlan
		goal, foods, macros, allergies, cst string
		stats                               sql.NullString
		createdAt                           int64
	)
	err := row.Scan(&p.ID, &p.UserID, &p.Name, &goal, &foods, &p.DailyCalorieTarget, &macros, &stats,
		&allergies, &cst, &p.IsActive, &createdAt)
	if err != nil {
		return nil, mapError("scanning nutrition plan", err)
	}
	p.Goal = models.Goal(goal)
	p.CreatedAt = fromMillis(createdAt)

	if err := json.Unmarshal([]byte(foods), &p.Foods); err != nil {
		return nil, fmt.Errorf("decoding foods of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(macros), &p.MacroRatios); err != nil {
		return nil, fmt.Errorf("decoding macro ratios of %s: %w", p.ID, err)
	}
	if stats.Valid {
		p.UserStats = &models.UserStats{}
		if err := json.Unmarshal([]byte(stats.String), p.UserStats); err != nil {
			return nil, fmt.Errorf("decoding user stats of %s: %w", p.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(allergies), &p.Allergies); err != nil {
		return nil, fmt.Errorf("decoding allergies of %s: %w", p.ID, err)
	}
	if err := json.Unmarshal([]byte(cst), &p.CustomAllergens); err != nil {
		return nil, fmt.Errorf("decoding custom allergens of %s: %w", p.ID, err)
	}
	return &p, nil
}

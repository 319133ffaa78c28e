package mcp

import (
	"context"
	"time"

	"github.com/meltforce/fittrack/internal/localstore"
	"github.com/meltforce/fittrack/internal/models"
	"github.com/meltforce/fittrack/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. *storage.DB and
// *localstore.Store (local) and HTTPClient (remote via REST API) satisfy it.
type DataSource interface {
	ListPlans(ctx context.Context, userID int) ([]models.WorkoutPlan, error)
	GetPlan(ctx context.Context, userID int, id string) (*models.WorkoutPlan, error)
	FindPlanByName(ctx context.Context, userID int, name string) (*models.WorkoutPlan, error)
	ListCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error)
	GetCompletedWorkoutsForDate(ctx context.Context, userID int, day time.Time) ([]models.CompletedWorkout, error)
}

var (
	_ DataSource = (*storage.DB)(nil)
	_ DataSource = (*localstore.Store)(nil)
)

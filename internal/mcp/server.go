package mcp

import (
	"context"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fittrack/internal/catalog"
	"github.com/meltforce/fittrack/internal/energy"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// Options are the collaborators of the MCP server. Only DataSource is
// required.
type Options struct {
	DataSource       DataSource
	Catalog          *catalog.Catalog
	Estimator        *energy.Estimator
	DefaultWeightLbs float64
	Log              *slog.Logger
	Now              func() time.Time
}

// New creates an MCP server with all tools and resources registered.
func New(o Options, version string) *server.MCPServer {
	s := server.NewMCPServer("FitTrack", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitTrack workout and nutrition planner. List workout plans, estimate the calories a plan burns, compute daily calorie targets, and read past workout sessions. All data is scoped to the authenticated user."),
	)

	h := newHandlers(o)

	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutPlans, Handler: h.listWorkoutPlans},
		server.ServerTool{Tool: toolEstimatePlanCalories, Handler: h.estimatePlanCalories},
		server.ServerTool{Tool: toolGetCalorieTarget, Handler: h.getCalorieTarget},
		server.ServerTool{Tool: toolGetWorkoutHistory, Handler: h.getWorkoutHistory},
	)

	s.AddResources(
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds        DataSource
	catalog   *catalog.Catalog
	estimator *energy.Estimator
	weightLbs float64
	log       *slog.Logger
	now       func() time.Time
}

func newHandlers(o Options) *handlers {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Estimator == nil {
		o.Estimator = energy.NewEstimator(o.Catalog, energy.DefaultOptions(), o.Log)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &handlers{
		ds:        o.DataSource,
		catalog:   o.Catalog,
		estimator: o.Estimator,
		weightLbs: o.DefaultWeightLbs,
		log:       o.Log,
		now:       o.Now,
	}
}

// --- Resource definitions ---

var resExerciseCatalog = mcp.NewResource(
	"fittrack://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every catalog exercise with its muscle groups, default sets and reps, and MET value"),
	mcp.WithMIMEType("application/json"),
)

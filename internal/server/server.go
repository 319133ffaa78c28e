package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coocood/freecache"
	"github.com/go-chi/chi/v5"
	"github.com/meltforce/fittrack/internal/catalog"
	"github.com/meltforce/fittrack/internal/energy"
	fittrackmcp "github.com/meltforce/fittrack/internal/mcp"
	"github.com/meltforce/fittrack/internal/metrics"
	"github.com/meltforce/fittrack/internal/models"
	"github.com/meltforce/fittrack/internal/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the persistence the API needs. Both the PostgreSQL and the
// SQLite backends satisfy it.
type Store interface {
	session.PlanFinder
	session.HistoryStore
	UserResolver

	ListPlans(ctx context.Context, userID int) ([]models.WorkoutPlan, error)
	GetPlan(ctx context.Context, userID int, id string) (*models.WorkoutPlan, error)
	SavePlan(ctx context.Context, p *models.WorkoutPlan) (string, error)
	UpdatePlan(ctx context.Context, p *models.WorkoutPlan) error
	DeletePlan(ctx context.Context, userID int, id string) error
	ListCompletedWorkouts(ctx context.Context, userID, limit int) ([]models.CompletedWorkout, error)

	ListNutritionPlans(ctx context.Context, userID int) ([]models.NutritionPlan, error)
	GetNutritionPlan(ctx context.Context, userID int, id string) (*models.NutritionPlan, error)
	ActiveNutritionPlan(ctx context.Context, userID int) (*models.NutritionPlan, error)
	SaveNutritionPlan(ctx context.Context, p *models.NutritionPlan) (string, error)
	SetActiveNutritionPlan(ctx context.Context, userID int, id string) error
	DeleteNutritionPlan(ctx context.Context, userID int, id string) error
}

// Options carries the server's collaborators. Store, Sessions and Estimator
// are required.
type Options struct {
	Store     Store
	Catalog   *catalog.Catalog
	Estimator *energy.Estimator
	Sessions  *session.Manager
	Metrics   *metrics.Manager
	// Gatherer backs /metrics; nil disables the endpoint.
	Gatherer prometheus.Gatherer
	// MCP is served at /api/v1/mcp when set.
	MCP    http.Handler
	APIKey string
	Log    *slog.Logger

	CacheSizeMB      int
	CacheTTL         time.Duration
	DefaultWeightLbs float64
	Now              func() time.Time
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     Store
	catalog   *catalog.Catalog
	estimator *energy.Estimator
	sessions  *session.Manager
	metrics   *metrics.Manager
	gatherer  prometheus.Gatherer
	mcp       http.Handler
	log       *slog.Logger
	apiKey    string
	ts        WhoIser
	cache     *estimateCache
	weightLbs float64
	now       func() time.Time
	router    chi.Router
}

// New creates a new Server with all routes configured.
func New(o Options) *Server {
	if o.Log == nil {
		o.Log = slog.Default()
	}
	if o.Catalog == nil {
		o.Catalog = catalog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.CacheSizeMB <= 0 {
		o.CacheSizeMB = 8
	}
	s := &Server{
		store:     o.Store,
		catalog:   o.Catalog,
		estimator: o.Estimator,
		sessions:  o.Sessions,
		metrics:   o.Metrics,
		gatherer:  o.Gatherer,
		mcp:       o.MCP,
		log:       o.Log,
		apiKey:    o.APIKey,
		cache:     newEstimateCache(freecache.NewCache(o.CacheSizeMB*1024*1024), o.CacheTTL, o.Metrics),
		weightLbs: o.DefaultWeightLbs,
		now:       o.Now,
		router:    chi.NewRouter(),
	}
	s.routes()
	return s
}

// SetTailscale switches request identity to Tailscale WhoIs lookups.
func (s *Server) SetTailscale(lc WhoIser) {
	s.ts = lc
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	if s.metrics != nil {
		s.router.Use(RequestMetrics(s.metrics))
	}
	s.router.Use(CORS)

	if s.gatherer != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identity)

		r.Get("/me", s.handleMe)
		if s.mcp != nil {
			r.Handle("/mcp", s.mcpHandler())
		}

		r.Get("/catalog/exercises", s.handleListExercises)
		r.Get("/catalog/exercises/{id}", s.handleGetExercise)
		r.Get("/presets/{goal}", s.handlePreset)
		r.Post("/estimate", s.handleEstimate)
		r.Post("/targets", s.handleTargets)

		r.Route("/plans", func(r chi.Router) {
			r.Get("/", s.handleListPlans)
			r.Post("/", s.handleCreatePlan)
			r.Get("/{id}", s.handleGetPlan)
			r.Put("/{id}", s.handleUpdatePlan)
			r.Delete("/{id}", s.handleDeletePlan)
			r.Delete("/{id}/days/{day}/exercises/{exerciseID}", s.handleRemoveExercise)
			r.Post("/{id}/estimate", s.handlePlanEstimate)
		})

		r.Route("/nutrition-plans", func(r chi.Router) {
			r.Get("/", s.handleListNutritionPlans)
			r.Post("/", s.handleCreateNutritionPlan)
			r.Get("/{id}", s.handleGetNutritionPlan)
			r.Delete("/{id}", s.handleDeleteNutritionPlan)
			r.Post("/{id}/activate", s.handleActivateNutritionPlan)
			r.Get("/{id}/days/{day}", s.handleNutritionDay)
		})

		r.Get("/dashboard", s.handleDashboard)
		r.Get("/history", s.handleHistory)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.handleStartSession)
			r.Get("/{id}", s.handleGetSession)
			r.Delete("/{id}", s.handleCloseSession)
			r.Post("/{id}/exercises/{exerciseID}/toggle", s.handleToggleExercise)
			r.Post("/{id}/exercises/{exerciseID}/timer/toggle", s.handleToggleTimer)
			r.Post("/{id}/exercises/{exerciseID}/timer/reset", s.handleResetTimer)
			r.Post("/{id}/complete-all", s.handleCompleteAll)
			r.Post("/{id}/pause", s.handlePause)
			r.Post("/{id}/resume", s.handleResume)
			r.Get("/{id}/finish", s.handleFinishPrompt)
			r.Post("/{id}/finish", s.handleFinish)
		})
	})
}

// mcpHandler passes the resolved user to MCP tool handlers.
func (s *Server) mcpHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := fittrackmcp.WithUserID(r.Context(), userIDFromContext(r))
		s.mcp.ServeHTTP(w, r.WithContext(ctx))
	})
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/meltforce/fittrack/internal/catalog"
	"github.com/meltforce/fittrack/internal/config"
	"github.com/meltforce/fittrack/internal/energy"
	"github.com/meltforce/fittrack/internal/localstore"
	"github.com/meltforce/fittrack/internal/logging"
	fittrackmcp "github.com/meltforce/fittrack/internal/mcp"
	"github.com/meltforce/fittrack/internal/metrics"
	"github.com/meltforce/fittrack/internal/server"
	"github.com/meltforce/fittrack/internal/session"
	"github.com/meltforce/fittrack/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// store is what either database backend offers the server and MCP tools.
type store interface {
	server.Store
	fittrackmcp.DataSource
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(logging.Params{
		FileName: cfg.Logging.File,
		ToStdout: cfg.Logging.Stdout,
		Level:    cfg.Logging.Level,
		JSON:     cfg.Logging.JSON(),
	})
	defer logCloser.Close()
	log.Info("FitTrack starting", "version", Version, "driver", cfg.Database.Driver)

	ctx := context.Background()
	st, closeStore, err := openStore(ctx, cfg, *migrateOnly, log)
	if err != nil {
		log.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	if st == nil {
		log.Info("migrate-only: exiting")
		return
	}
	defer closeStore()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewManager("fittrack", "server", reg)

	cat := catalog.Default()
	estimator := energy.NewEstimator(cat, energy.Options{
		SecondsPerRep:          cfg.Estimation.SecondsPerRep,
		RestBetweenSetsSeconds: cfg.Estimation.RestBetweenSetsSeconds,
	}, log)

	sessions := session.NewManager(session.Deps{
		Plans:            st,
		History:          st,
		Estimator:        estimator,
		Diagnostics:      session.NewLogDiagnostics(log, m),
		Log:              log,
		RestSeconds:      cfg.Session.RestSeconds,
		SaveTimeout:      cfg.Session.CheckpointTimeout(),
		DefaultWeightLbs: cfg.Estimation.DefaultWeightLbs,
	}, m)

	mcpSrv := fittrackmcp.New(fittrackmcp.Options{
		DataSource:       st,
		Catalog:          cat,
		Estimator:        estimator,
		DefaultWeightLbs: cfg.Estimation.DefaultWeightLbs,
		Log:              log,
	}, Version)
	mcpHTTP := mcpserver.NewStreamableHTTPServer(mcpSrv,
		mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
			return fittrackmcp.WithUserID(ctx, fittrackmcp.UserIDFromContext(r.Context()))
		}),
	)

	srv := server.New(server.Options{
		Store:            st,
		Catalog:          cat,
		Estimator:        estimator,
		Sessions:         sessions,
		Metrics:          m,
		Gatherer:         reg,
		MCP:              mcpHTTP,
		APIKey:           cfg.Auth.APIKey,
		Log:              log,
		CacheSizeMB:      cfg.Cache.SizeMB,
		CacheTTL:         cfg.Cache.TTL(),
		DefaultWeightLbs: cfg.Estimation.DefaultWeightLbs,
	})

	// Serve on the tailnet when enabled, else on a plain listener.
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
			Logf:     func(format string, args ...any) { log.Debug(fmt.Sprintf(format, args...), "component", "tsnet") },
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		lc, err := tsServer.LocalClient()
		if err != nil {
			log.Error("tsnet local client failed", "error", err)
			os.Exit(1)
		}
		srv.SetTailscale(lc)

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	sessions.CloseAll()
	log.Info("server stopped")
}

// openStore connects the configured backend. PostgreSQL runs migrations
// first; with migrateOnly it stops there and returns a nil store.
func openStore(ctx context.Context, cfg *config.Config, migrateOnly bool, log *slog.Logger) (store, func(), error) {
	if cfg.Database.Driver == config.DriverSQLite {
		if migrateOnly {
			return nil, nil, nil
		}
		ls, err := localstore.Open(ctx, cfg.Database.Path)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sqlite database opened", "path", cfg.Database.Path)
		return ls, closeLogged(ls, log), nil
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, cfg.Database.Migrations); err != nil {
		return nil, nil, fmt.Errorf("migrating: %w", err)
	}
	log.Info("migrations applied")
	if migrateOnly {
		return nil, nil, nil
	}

	db, err := storage.New(ctx, dsn, cfg.Database.MaxConns)
	if err != nil {
		return nil, nil, err
	}
	log.Info("database connected")
	return db, db.Close, nil
}

func closeLogged(c io.Closer, log *slog.Logger) func() {
	return func() {
		if err := c.Close(); err != nil {
			log.Warn("closing database", "error", err)
		}
	}
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fundingpulse/internal/config"
	"fundingpulse/internal/dataset"
	apierrors "fundingpulse/internal/errors"
	"fundingpulse/internal/infrastructure"
	custommiddleware "fundingpulse/internal/middleware"
	"fundingpulse/internal/services"
	"fundingpulse/internal/store"
	handlers "fundingpulse/internal/transport/http"
)

// Version of the funding analytics service.
const Version = "1.2.0"

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Cache         *store.Cache
	DataService   *services.DataService
	HealthService *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("version", Version),
		slog.String("dataset", cfg.Dataset.Path))

	plan := dataset.DefaultPlan()
	if cfg.Dataset.PlanFile != "" {
		plan, err = dataset.LoadPlan(cfg.Dataset.PlanFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load column plan: %w", err)
		}
	}

	normalizer := dataset.NewNormalizer(plan, logger)
	cache := store.NewCache(cfg.Dataset.Path, dataset.ReadOptions{
		Encoding:  cfg.Dataset.Encoding,
		SkipLines: cfg.Dataset.SkipLines,
	}, normalizer, logger)

	dataService := services.NewDataService(cache, logger)
	healthService := services.NewHealthService(Version, cfg.Dataset.Path, cache, logger)

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Cache:         cache,
		DataService:   dataService,
		HealthService: healthService,
	}
	app.Router = app.buildRouter()
	app.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}
	return app, nil
}

func (app *Application) buildRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(custommiddleware.Metrics)
	r.Use(custommiddleware.StructuredLogger(app.Logger))
	r.Use(custommiddleware.Recoverer(app.Logger))
	if app.Config.Server.RateLimit.Enabled {
		limiter := custommiddleware.NewRateLimiter(
			app.Config.Server.RateLimit.RPS,
			app.Config.Server.RateLimit.Burst,
			app.Logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(app.Logger, false)
	dataHandler := handlers.NewDataHandler(app.DataService, app.Logger, errorHandler)
	healthHandler := handlers.NewHealthHandler(app.HealthService, app.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Mount("/", dataHandler.Routes())
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// Run starts the HTTP server and blocks until shutdown.
func (app *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Warm the dataset cache; a configuration error here is fatal at
	// startup rather than on first request.
	if snap, err := app.Cache.Load(ctx); err != nil {
		return fmt.Errorf("initial dataset load failed: %w", err)
	} else if len(snap.Records) == 0 {
		app.Logger.Warn("dataset is empty after normalization",
			slog.String("source", app.Config.Dataset.Path))
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", slog.String("addr", app.Server.Addr))
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()
	if err := app.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

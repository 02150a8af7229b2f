// Package app assembles configuration, logging, services, routing and
// the HTTP server lifecycle.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-co-op/gocron"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"finsight/internal/ai"
	"finsight/internal/config"
	"finsight/internal/infrastructure"
	"finsight/internal/kpi"
	custommw "finsight/internal/middleware"
	"finsight/internal/services"
	"finsight/internal/store"
	transporthttp "finsight/internal/transport/http"
	"finsight/internal/workbook"
)

// Version is the build version, overridable via ldflags.
var Version = "0.1.0"

// Application holds all initialized components.
type Application struct {
	config    *config.Config
	logger    *slog.Logger
	store     *store.Memory
	service   *services.AnalysisService
	scheduler *gocron.Scheduler
	router    chi.Router
	server    *http.Server
}

// New creates a fully wired application.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initialize logger: %w", err)
	}

	app := &Application{config: cfg, logger: logger}
	app.initializeServices()
	app.setupRouter()
	app.setupScheduler()

	app.server = &http.Server{
		Addr:           cfg.Address(),
		Handler:        app.router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	logger.Info("application initialized",
		slog.String("version", Version),
		slog.String("addr", cfg.Address()),
		slog.Bool("ai_enabled", cfg.AI.APIKey != ""))
	return app, nil
}

// initializeServices wires the pipeline bottom-up: store, LLM client,
// strategies, engine, orchestrating service.
func (a *Application) initializeServices() {
	a.store = store.NewMemory(a.config.Store.TTL, a.config.Store.MaxEntries,
		infrastructure.WithComponent(a.logger, "store"))

	llm := ai.NewClient(ai.Config{
		BaseURL: a.config.AI.BaseURL,
		APIKey:  a.config.AI.APIKey,
		Model:   a.config.AI.Model,
		Timeout: a.config.AI.Timeout,
	}, infrastructure.WithComponent(a.logger, "llm"))

	rules := kpi.NewRuleBasedRelevance()
	advisory := ai.NewAdvisoryRelevance(llm, infrastructure.WithComponent(a.logger, "relevance"))
	relevance := kpi.NewAdvisoryWithFallback(advisory, rules,
		infrastructure.WithComponent(a.logger, "relevance"))

	a.service = services.NewAnalysisService(
		workbook.NewLoader(infrastructure.WithComponent(a.logger, "workbook")),
		relevance,
		kpi.NewEngine(infrastructure.WithComponent(a.logger, "kpi")),
		ai.NewInsightGenerator(llm, infrastructure.WithComponent(a.logger, "insights")),
		a.store,
		infrastructure.WithComponent(a.logger, "analysis"),
	)
}

// setupRouter configures the middleware chain and mounts all routes.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Order matters: request ID first so everything downstream logs
	// with a trace_id.
	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(a.logger))
	r.Use(custommw.Recoverer(a.logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))

	if a.config.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: a.config.Security.AllowedOrigins,
			Logger:         a.logger,
		}))
	}
	if a.config.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(
			a.config.Security.RateLimit.RPS,
			a.config.Security.RateLimit.Burst,
			a.logger)
		r.Use(limiter.Handler)
	}

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.config.Server.AnalysisTimeout, a.logger))

		analysisHandler := transporthttp.NewAnalysisHandler(
			a.service,
			a.config.Paths.UploadsDir,
			a.config.Upload.MaxBytes,
			infrastructure.WithComponent(a.logger, "handler"))
		analysisHandler.RegisterRoutes(r)

		healthHandler := transporthttp.NewHealthHandler(Version, a.store.Len,
			infrastructure.WithComponent(a.logger, "health"))
		healthHandler.RegisterRoutes(r)
	})

	a.router = r
}

// setupScheduler runs periodic store sweeps.
func (a *Application) setupScheduler() {
	a.scheduler = gocron.NewScheduler(time.UTC)
	_, err := a.scheduler.Every(a.config.Store.SweepInterval).Do(func() {
		a.store.Sweep()
	})
	if err != nil {
		a.logger.Warn("failed to schedule store sweep", slog.String("error", err.Error()))
	}
}

// Start begins serving. It blocks until the server stops.
func (a *Application) Start() error {
	a.scheduler.StartAsync()
	a.logger.Info("server listening", slog.String("addr", a.server.Addr))
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Stop shuts the application down gracefully.
func (a *Application) Stop(ctx context.Context) error {
	a.logger.Info("shutting down")
	a.scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, a.config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return infrastructure.CloseLogFile()
}

// Run starts the application and blocks until SIGINT/SIGTERM.
func (a *Application) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		a.logger.Info("signal received", slog.String("signal", sig.String()))
		return a.Stop(context.Background())
	}
}

// Router exposes the configured router for tests.
func (a *Application) Router() chi.Router {
	return a.router
}

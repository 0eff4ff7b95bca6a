// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/coursebook/internal/api"
	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/index"
	"github.com/starford/coursebook/internal/metrics"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/site"
	"github.com/starford/coursebook/internal/sse"
	"github.com/starford/coursebook/internal/storage"
)

// Version is reported by the CLI and the MCP server.
var Version = "dev"

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		// stdout carries command output and the MCP protocol.
		app.logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	if app.out == nil {
		app.out = os.Stdout
	}
	return app, nil
}

// openService loads the corpus and, when configured, opens and syncs the
// search index. The returned close function releases the index.
func (a *application) openService(ctx context.Context, m *metrics.Metrics) (*courseservice.Service, func(), error) {
	cfg := a.config
	store, err := storage.NewFS(cfg.Corpus.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("init storage: %w", err)
	}

	var db index.ModuleIndex
	closeFn := func() {}
	if indexPath := cfg.IndexPath(); indexPath != "" {
		if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create index dir: %w", err)
		}
		sqlDB, err := index.Open(indexPath)
		if err != nil {
			return nil, nil, fmt.Errorf("init index: %w", err)
		}
		db = sqlDB
		closeFn = func() { _ = sqlDB.Close() }
	}

	svc := courseservice.NewService(store, db, cfg.LoaderOptions(), a.logger, m)
	if _, err := svc.Reload(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("load corpus: %w", err)
	}
	if err := svc.Sync(ctx); err != nil {
		a.logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	return svc, closeFn, nil
}

// Run starts the live preview server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("corpus_root", cfg.Corpus.Root),
		slog.String("index_path", cfg.IndexPath()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	m := metrics.NewMetrics()

	svc, closeService, err := app.openService(ctx, m)
	if err != nil {
		return err
	}
	defer closeService()

	c := svc.Corpus()
	logger.Info("Corpus loaded",
		slog.Int("modules", len(c.Modules)),
		slog.Int("warnings", len(c.Warnings)))

	// SSE broker.
	broker := sse.NewBroker(2*time.Second, m.SSEClients)
	defer broker.Close()

	renderer, err := site.NewRenderer(cfg.Site.Title, site.ModeServer)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(api.MetricsMiddleware(m))

	// Health check endpoints (unauthenticated).
	health := api.NewHealthHandler(svc, broker)
	r.Get("/health/live", health.Live)
	r.Get("/health/ready", health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	// JSON API and SSE under /api, HTML pages everywhere else.
	r.Mount("/api", api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker))
	r.Mount("/", api.NewPageRouter(svc, renderer))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher; every reload is announced over SSE.
	g.Go(func() error {
		reload := func() (*models.Corpus, error) { return svc.Reload(gCtx) }
		err := index.Watch(gCtx, svc.Index(), cfg.Corpus.Root, reload, logger, func(c *models.Corpus, changed []string) {
			broker.PublishReload(sse.Reload{
				Changed:  changed,
				Modules:  len(c.Modules),
				Warnings: len(c.Warnings),
			})
		})
		if err != nil {
			return fmt.Errorf("watcher error: %w", err)
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stops the watcher.
		return context.Canceled
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

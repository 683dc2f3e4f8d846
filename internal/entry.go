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
	prom "github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lexicon/internal/api"
	"github.com/starford/lexicon/internal/feed"
	"github.com/starford/lexicon/internal/mcpserver"
	"github.com/starford/lexicon/internal/metrics"
	"github.com/starford/lexicon/internal/render"
	"github.com/starford/lexicon/internal/repository"
	"github.com/starford/lexicon/internal/sse"
	"github.com/starford/lexicon/internal/storage"
	"github.com/starford/lexicon/internal/termservice"
	"github.com/starford/lexicon/internal/watch"
)

// ErrProblemsFound is returned by Check when the corpus has skipped documents.
var ErrProblemsFound = errors.New("corpus has problems")

// site holds the wired components shared by every command.
type site struct {
	cfg      *Config
	logger   *slog.Logger
	registry *prom.Registry
	repo     *repository.Repository
	svc      *termservice.Service
	feeds    *feed.Builder
}

func newApplication(opts []Option) (*application, error) {
	app := &application{
		logOutput: os.Stdout,
		version:   "dev",
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

// setup builds the logger, storage, repository, renderers and feed builder.
func (app *application) setup() (*site, error) {
	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(app.logOutput, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("corpus_path", cfg.Corpus.Path),
		slog.Int("languages", len(cfg.Corpus.Languages)),
		slog.String("output_dir", cfg.Site.OutputDir),
		slog.String("log_level", cfg.App.LogLevel.String()))

	var (
		recorder metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if cfg.Metrics.Enabled {
		registry = prom.NewRegistry()
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	corpus, err := storage.NewFS(cfg.Corpus.Path)
	if err != nil {
		return nil, fmt.Errorf("init corpus: %w", err)
	}

	// Ensure output directory exists.
	if err := os.MkdirAll(cfg.Site.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Site.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("init output: %w", err)
	}

	repo := repository.New(corpus,
		repository.WithLanguages(cfg.Corpus.Models()...),
		repository.WithExtension(cfg.Corpus.Extension),
		repository.WithLogger(logger),
		repository.WithRecorder(recorder),
	)

	pages := render.New(render.WithLogger(logger), render.WithRecorder(recorder))
	// Feed readers apply their own styling, so links carry no class.
	feedHTML := render.New(render.WithLinkClass(""), render.WithLogger(logger), render.WithRecorder(recorder))

	builder := feed.New(repo, feedHTML, cfg.Site.Feed(),
		feed.WithWriter(out),
		feed.WithLogger(logger),
		feed.WithRecorder(recorder),
	)

	return &site{
		cfg:      cfg,
		logger:   logger,
		registry: registry,
		repo:     repo,
		svc:      termservice.NewService(repo, pages),
		feeds:    builder,
	}, nil
}

// Run starts the HTTP server, the corpus watcher and the feed writer.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := app.setup()
	if err != nil {
		return err
	}
	cfg, logger := s.cfg, s.logger

	if err := s.feeds.Write(ctx); err != nil {
		logger.Warn("initial feed build failed", slog.String("error", err.Error()))
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)

	apiRouter := api.NewRouter(s.svc, s.feeds, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := os.Stat(cfg.Corpus.Path); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"corpus unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if s.registry != nil {
		r.Handle("/metrics", metrics.HTTPHandler(s.registry))
	}

	r.Get("/"+cfg.Site.FeedPath, api.FeedHandler(s.feeds))

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	// Start corpus watcher with SSE and feed callbacks.
	if cfg.Watch.Enabled {
		g.Go(func() error {
			err := watch.Watch(gCtx, cfg.Corpus.Path, watch.Options{
				Ext:      cfg.Corpus.Extension,
				Debounce: cfg.Watch.Debounce,
				OnChange: func(c watch.Change) {
					broker.PublishTermChange(sse.TermChange{Kind: c.Kind, Path: c.Path, Lang: c.Lang})
				},
				OnSettle: func() {
					if err := s.feeds.Write(gCtx); err != nil {
						logger.Error("feed rebuild failed", slog.String("error", err.Error()))
						return
					}
					broker.PublishFeedUpdated(s.feeds.Path())
				},
			}, logger)
			if err != nil {
				// Serving continues without live updates.
				logger.Error("watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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

		// Closing the broker ends open event streams so Shutdown can drain.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher exits with the server.
var errShutdown = errors.New("shutdown")

// BuildFeed writes the feed once and exits.
func BuildFeed(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := app.setup()
	if err != nil {
		return err
	}
	if err := s.feeds.Write(ctx); err != nil {
		return fmt.Errorf("build feed: %w", err)
	}
	s.logger.Info("Feed written",
		slog.String("path", filepath.Join(s.cfg.Site.OutputDir, s.feeds.Path())))
	return nil
}

// ServeMCP serves the glossary tools over stdio. Logs go to stderr since
// stdout carries the protocol.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	if app.logOutput == os.Stdout {
		app.logOutput = os.Stderr
	}
	s, err := app.setup()
	if err != nil {
		return err
	}
	s.logger.Info("Starting MCP server on stdio")
	return mcpserver.New(s.svc, s.repo, app.version).ServeStdio()
}

// Check loads every partition and logs each skipped document. It returns
// ErrProblemsFound when any document was skipped.
func Check(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	s, err := app.setup()
	if err != nil {
		return err
	}
	problems, err := s.repo.Check(ctx)
	if err != nil {
		return fmt.Errorf("check corpus: %w", err)
	}
	for _, p := range problems {
		s.logger.Error("document skipped",
			slog.String("partition", metrics.PartitionLabel(p.Language)),
			slog.String("path", p.Path),
			slog.String("error", p.Err.Error()))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %d document(s) skipped", ErrProblemsFound, len(problems))
	}
	s.logger.Info("Corpus is clean")
	return nil
}

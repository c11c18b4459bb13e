// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/lotpad/internal/api"
	"github.com/starford/lotpad/internal/editorservice"
	"github.com/starford/lotpad/internal/mcpserver"
	"github.com/starford/lotpad/internal/parking"
	"github.com/starford/lotpad/internal/sse"
	"github.com/starford/lotpad/internal/storage"
	"github.com/starford/lotpad/internal/watch"
)

func newApplication(opts []Option) (*application, error) {
	app := &application{version: "dev", output: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// openStore builds the storage backend selected by cfg. The returned closer
// is never nil.
func openStore(cfg StorageConfig) (storage.Provider, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverSQLite:
		db, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("init sqlite storage: %w", err)
		}
		return db, db.Close, nil
	case DriverMemory:
		return storage.NewMemory(), noop, nil
	default:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, noop, fmt.Errorf("create storage dir: %w", err)
		}
		fs, err := storage.NewFS(cfg.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("init storage: %w", err)
		}
		return fs, noop, nil
	}
}

func newLot(cfg LotConfig) (*parking.Lot, error) {
	lot, err := parking.NewLot(cfg.Name, cfg.Capacity, cfg.Policy)
	if err != nil {
		return nil, fmt.Errorf("init lot: %w", err)
	}
	return lot, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("storage_driver", cfg.Storage.Driver),
		slog.String("storage_path", cfg.Storage.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close storage", slog.String("error", err.Error()))
		}
	}()

	watching := cfg.Storage.Driver == DriverFS && cfg.Storage.Watch

	broker := sse.NewBroker(cfg.Events.FilesThrottle)
	defer broker.Close()

	svc := editorservice.NewService(store,
		editorservice.WithPublisher(broker),
		editorservice.WithLogger(logger),
		editorservice.WithFileEvents(!watching),
		editorservice.WithExtension(cfg.Storage.Extension),
	)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", healthHandler)
	r.Get("/health/ready", healthHandler)

	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var lot *parking.Lot
	if cfg.Lot.Simulate {
		if lot, err = newLot(cfg.Lot); err != nil {
			return err
		}
		lot.Subscribe(lotFeed{pub: broker})
		lot.Subscribe(lotLog{logger: logger})
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if watching {
		g.Go(func() error {
			err := watch.Run(gCtx, cfg.Storage.Path, logger, broker.PublishFileEvent)
			if err != nil {
				logger.Warn("file watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	if lot != nil {
		g.Go(func() error {
			err := parking.Simulate(gCtx, lot, cfg.Lot.SimConfig(), logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("lot simulation: %w", err)
			}
			logger.Info("Lot simulation finished",
				slog.String("lot", lot.Name()),
				slog.Int("occupied", lot.Occupied()))
			return nil
		})
	}

	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

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

		// Ends open SSE streams so Shutdown does not wait on them.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunSimulation fills and empties the configured lot once, printing every
// change to the application output.
func RunSimulation(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	lot, err := newLot(cfg.Lot)
	if err != nil {
		return err
	}
	lot.Subscribe(parking.NewDisplay(app.output))

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Simulation starting",
		slog.String("lot", lot.Name()),
		slog.Int("capacity", lot.Capacity()),
		slog.String("policy", string(lot.Policy())))

	if err := parking.Simulate(ctx, lot, cfg.Lot.SimConfig(), logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Simulation interrupted", slog.Int("occupied", lot.Occupied()))
			return nil
		}
		return fmt.Errorf("lot simulation: %w", err)
	}

	logger.Info("Simulation finished", slog.Int("occupied", lot.Occupied()))
	return nil
}

// RunMCP serves the editor over MCP on stdin/stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}

	cfg := app.config

	// stdout carries the protocol.
	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	store, closeStore, err := openStore(cfg.Storage)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("close storage", slog.String("error", err.Error()))
		}
	}()

	svc := editorservice.NewService(store,
		editorservice.WithLogger(logger),
		editorservice.WithExtension(cfg.Storage.Extension),
	)

	logger.Info("MCP server starting", slog.String("version", app.version))

	errCh := make(chan error, 1)
	go func() {
		errCh <- mcpserver.New(svc, app.version).ServeStdio()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return nil
	}
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	specpkg "github.com/daap14/formats/api"
	"github.com/daap14/formats/internal/api"
	"github.com/daap14/formats/internal/api/handler"
	"github.com/daap14/formats/internal/config"
	"github.com/daap14/formats/internal/database"
	"github.com/daap14/formats/internal/format"
	"github.com/daap14/formats/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx := context.Background()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err, "driver", cfg.StorageDriver)
		os.Exit(1)
	}
	defer store.close()

	opts := []format.Option{format.WithMaxValueLength(cfg.ValueMaxLength)}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		opts = append(opts, format.WithObserver(m))
	}
	svc := format.NewService(store.repo, opts...)

	router := api.NewRouter(api.RouterDeps{
		Service:       svc,
		DBPinger:      store.pinger,
		StorageDriver: cfg.StorageDriver,
		Version:       cfg.Version,
		OpenAPISpec:   specpkg.OpenAPISpec,
		Metrics:       m,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting formats server", "port", cfg.Port, "version", cfg.Version, "driver", cfg.StorageDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutting down server", "signal", sig.String())
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		store.close()
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		store.close()
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// storage bundles the repository chosen by STORAGE_DRIVER with its health probe.
type storage struct {
	repo   format.Repository
	pinger handler.DBPinger
	close  func()
}

func openStorage(ctx context.Context, cfg *config.Config) (*storage, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		db, err := database.New(ctx, cfg.DatabaseURL, database.WithMaxConns(cfg.DatabaseMaxConn))
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				db.Close()
				return nil, err
			}
		}
		return &storage{
			repo:   format.NewPostgresRepository(db.Pool()),
			pinger: db,
			close:  db.Close,
		}, nil

	case config.DriverSQLite:
		db, err := database.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := db.EnsureSchema(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &storage{
			repo:   format.NewSQLiteRepository(db.Conn()),
			pinger: db,
			close: func() {
				if err := db.Close(); err != nil {
					slog.Warn("closing sqlite", "error", err)
				}
			},
		}, nil

	case config.DriverMemory:
		slog.Warn("using in-memory storage; records are lost on restart")
		return &storage{
			repo:  format.NewMemoryRepository(),
			close: func() {},
		}, nil
	}

	return nil, fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
}

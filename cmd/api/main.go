// Package main is the entry point for the calendar API server.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zapponejosh/jaarkalender/internal/api"
	"github.com/zapponejosh/jaarkalender/internal/config"
	"github.com/zapponejosh/jaarkalender/internal/database"
	"github.com/zapponejosh/jaarkalender/internal/export"
	"github.com/zapponejosh/jaarkalender/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Setup structured logging
	log := logger.Setup(cfg)

	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting calendar API",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
		slog.String("log_level", cfg.LogLevel),
		slog.Bool("cache_exports", cfg.CacheExports),
	)

	// Document cache
	var db *database.DB
	var store export.Store
	if cfg.CacheExports {
		var err error
		db, err = database.Open(database.DefaultConfig(cfg.DatabasePath), log)
		if err != nil {
			return err
		}
		defer db.Close()

		applied, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		log.Info("document cache ready", slog.String("path", cfg.DatabasePath), slog.Int("migrations_applied", applied))
		store = db
	}

	exports := export.NewService(store, export.Options{
		DefaultTheme: cfg.DefaultTheme,
		PageSize:     cfg.PDFPageSize,
	}, log)
	handlers := api.NewHandlers(db, exports, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           api.SetupRoutes(handlers, cfg, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("calendar API ready", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

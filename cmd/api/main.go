package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sanjeevceligo/rollout-insights/internal/api/handlers"
	"github.com/sanjeevceligo/rollout-insights/internal/api/router"
	"github.com/sanjeevceligo/rollout-insights/internal/config"
	"github.com/sanjeevceligo/rollout-insights/internal/domain/rollout"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/logger"
	"github.com/sanjeevceligo/rollout-insights/internal/pkg/validator"
	"github.com/sanjeevceligo/rollout-insights/internal/repository/postgres"
	"github.com/sanjeevceligo/rollout-insights/internal/repository/warehouse"
	"github.com/sanjeevceligo/rollout-insights/internal/resolver"
	"github.com/sanjeevceligo/rollout-insights/internal/services"
	"github.com/sanjeevceligo/rollout-insights/internal/worker"
)

// @title Rollout Insights API
// @version 1.0
// @description Release phase resolution and audit correlation service
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.WithFields(map[string]interface{}{
		"environment": cfg.Server.Environment,
		"source":      cfg.Rollout.SnapshotSource,
	}).Info("starting rollout-insights API")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, cleanup, err := openSource(ctx, cfg, log)
	if err != nil {
		log.Fatalf("failed to open snapshot source: %v", err)
	}
	defer cleanup()

	engine := resolver.NewEngine(
		cfg.Rollout.InternalDomain,
		cfg.Rollout.LicenseTypes,
		resolver.WithWorkers(cfg.Rollout.Workers),
	)

	service := services.NewRolloutService(source, engine, log)

	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(source, log),
		Rollout: handlers.NewRolloutHandler(service, cfg.Rollout, log, validator.New()),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	refresher := worker.NewRefresher(service, cfg.Rollout, log)
	go func() {
		if err := refresher.Start(ctx); err != nil {
			log.ErrorWithErr(err, "background refresher stopped")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
		log.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "graceful shutdown failed")
		os.Exit(1)
	}

	log.Info("server stopped")
}

// openSource builds the configured snapshot source and a cleanup func.
func openSource(ctx context.Context, cfg *config.Config, log *logger.Logger) (rollout.Source, func(), error) {
	switch cfg.Rollout.SnapshotSource {
	case "warehouse":
		src, err := warehouse.New(ctx, cfg.Warehouse)
		if err != nil {
			return nil, nil, err
		}
		log.With("project", cfg.Warehouse.ProjectID).Info("using warehouse snapshot source")
		return src, func() {
			if err := src.Close(); err != nil {
				log.ErrorWithErr(err, "failed to close warehouse client")
			}
		}, nil
	default:
		db, err := postgres.Open(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		log.With("database", cfg.Database.Name).Info("using postgres snapshot source")
		return postgres.NewSnapshotSource(db), func() {
			if err := db.Close(); err != nil {
				log.ErrorWithErr(err, "failed to close database")
			}
		}, nil
	}
}

// backend-go/cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pos-suite/backend-go/internal/api"
	"github.com/pos-suite/backend-go/internal/archive"
	"github.com/pos-suite/backend-go/internal/cache"
	"github.com/pos-suite/backend-go/internal/config"
	"github.com/pos-suite/backend-go/internal/factstore"
	"github.com/pos-suite/backend-go/internal/ops"
	"github.com/pos-suite/backend-go/internal/poller"
	"github.com/pos-suite/backend-go/internal/service"
	"github.com/pos-suite/backend-go/internal/threshold"
	"github.com/pos-suite/backend-go/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	client := factstore.NewHTTPClient(cfg.Backend.BaseURL, time.Duration(cfg.Backend.TimeoutMS)*time.Millisecond)
	policy := threshold.NewPolicy(threshold.Config{
		CriticalFloor: cfg.Threshold.CriticalFloor,
		WarningLow:    cfg.Threshold.WarningLow,
		WarningHigh:   cfg.Threshold.WarningHigh,
	})

	movementCache, err := cache.NewMovementCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Movement cache unavailable, continuing without it")
		movementCache = cache.NewNoopMovementCache()
	}

	opts := service.Options{Cache: movementCache}

	if cfg.Archive.Enabled {
		db, err := archive.NewDB(cfg.Archive)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to connect to archive database")
		}
		defer db.Close()
		opts.Recorder = archive.NewTickRecorder(db)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Snapshot.Enabled {
		archiver, err := archive.NewSnapshotArchiver(ctx, cfg.Snapshot)
		if err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to initialize snapshot archiver")
		}
		opts.Archiver = archiver
	}

	svc := service.NewReconcileService(client, policy, poller.Config{
		Name:         "reconcile",
		Interval:     time.Duration(cfg.Poll.IntervalMS) * time.Millisecond,
		MaxRetries:   cfg.Poll.MaxRetries,
		RetryBackoff: time.Duration(cfg.Poll.RetryBackoffMS) * time.Millisecond,
	}, opts)

	// Start the polling loop
	go svc.Run(ctx)

	// Initialize HTTP server
	router := api.NewRouter(svc, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	opsSrv := ops.NewServer(":"+cfg.Server.OpsPort, svc)

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	go func() {
		logger.Log.Info().Str("port", cfg.Server.OpsPort).Msg("Starting ops server")
		if err := opsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start ops server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// Stop the poller first so no tick fires during shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}
	if err := opsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Warn().Err(err).Msg("Ops server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

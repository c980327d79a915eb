// Package main provides the entry point for the Skycast prediction server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/api"
	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/database"
	"github.com/yourusername/skycast/internal/logger"
	"github.com/yourusername/skycast/internal/repository"
	"github.com/yourusername/skycast/internal/scheduler"
	"github.com/yourusername/skycast/internal/service"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	configPath := os.Getenv("SKYCAST_CONFIG")
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Skycast prediction server starting")

	// Optional persistence
	var db *database.DB
	var repos *repository.Repositories
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = database.Initialize(ctx, cfg)
		cancel()
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create repositories")
		}
		appLog.Info("Database connection established")
	}

	svc := service.NewCalibrationService(cfg, appLog, repos)

	// Train and calibrate before accepting traffic, matching the dataset on
	// disk at startup
	trainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	set, err := svc.Train(trainCtx)
	cancel()
	if err != nil {
		appLog.WithError(err).Fatal("Initial calibration failed")
	}
	appLog.WithFields(logrus.Fields{
		"run_id": set.RunID,
		"models": len(set.Models),
	}).Info("Initial calibration completed")

	server := api.NewServer(cfg, appLog, svc, db)

	// Periodic recalibration
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(svc, appLog)
		sched.OnRecalibrated(func(*service.ModelSet) {
			server.Cache().Flush()
		})
		if err := sched.ScheduleRecalibration(cfg.Scheduler.RecalibrateCron); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule recalibration")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer sched.Stop()
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSec) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLog.WithField("signal", sig.String()).Info("Shutting down")
	case err := <-errCh:
		appLog.WithError(err).Error("HTTP server failed")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Graceful shutdown failed")
	}
	appLog.Info("Server stopped")
}

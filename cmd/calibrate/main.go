// Package main provides the offline calibration CLI.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/database"
	applogger "github.com/yourusername/skycast/internal/logger"
	"github.com/yourusername/skycast/internal/repository"
	"github.com/yourusername/skycast/internal/service"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	jsonOutput bool
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the calibration summary as JSON")
}

var rootCmd = &cobra.Command{
	Use:   "calibrate",
	Short: "Train classifiers and calibrate decision thresholds",
	Long: `Runs one full calibration pass over the cleaned dataset: trains a
classifier per weather condition, sweeps the threshold grid, and
prints the selected operating points. With persistence enabled in
the configuration, the run is also recorded in the database.`,
	Version: fmt.Sprintf("%s (%s)", Version, GitCommit),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.LoadWithDefaults(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		appLog = applogger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCalibration(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runCalibration(ctx context.Context) error {
	var repos *repository.Repositories
	if cfg.Database.Enabled {
		dbCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		db, err := database.Initialize(dbCtx, cfg)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		repos, err = repository.NewRepositories(db)
		if err != nil {
			return err
		}
	}

	svc := service.NewCalibrationService(cfg, appLog, repos)

	runCtx, cancel := context.WithTimeout(ctx, 30*time.Minute)
	defer cancel()
	if _, err := svc.Train(runCtx); err != nil {
		return fmt.Errorf("calibration failed: %w", err)
	}

	info, err := svc.Info()
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	fmt.Printf("Calibration run %s (%d dataset rows)\n", info.RunID, info.DatasetRows)
	fmt.Printf("%-14s %10s %10s %10s %10s %10s\n",
		"CONDITION", "THRESHOLD", "ACCURACY", "PRECISION", "RECALL", "F1")
	for _, c := range info.Conditions {
		fmt.Printf("%-14s %10.2f %10.3f %10.3f %10.3f %10.3f\n",
			c.Condition, c.Threshold, c.Accuracy, c.Precision, c.Recall, c.F1)
	}

	return nil
}

// Package main provides the dataset ingestion CLI.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/ingest"
	applogger "github.com/yourusername/skycast/internal/logger"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	configFile string
	startDate  string
	endDate    string
	appLog     *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVar(&startDate, "start", "", "Start date (YYYY-MM-DD), open when omitted")
	rootCmd.Flags().StringVar(&endDate, "end", "", "End date (YYYY-MM-DD), open when omitted")
}

var rootCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Merge climate datasets into the cleaned observation table",
	Long: `Fetches daily climate observations from every configured source,
merges them by date, and writes the cleaned CSV the prediction
service trains on.`,
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
		return runIngest(cmd.Context())
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

func runIngest(ctx context.Context) error {
	start, err := parseDateFlag(startDate)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseDateFlag(endDate)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	merger := ingest.NewMerger(cfg, appLog)
	report, err := merger.Run(ctx, start, end)
	if err != nil {
		return err
	}

	fmt.Printf("Ingest completed: %d rows (%s to %s)\n",
		report.Rows,
		report.FirstDate.Format("2006-01-02"),
		report.LastDate.Format("2006-01-02"))
	fmt.Printf("Total precipitation: %s in\n", report.TotalPrecipitation.String())
	for name, count := range report.PerSource {
		fmt.Printf("  %-20s %d records\n", name, count)
	}
	for name, reason := range report.Failed {
		fmt.Printf("  %-20s FAILED: %s\n", name, reason)
	}
	fmt.Printf("Output written to %s\n", cfg.Ingest.OutputPath)

	return nil
}

func parseDateFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

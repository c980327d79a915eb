package ingest

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/metrics"
)

// Report summarises one merge run.
type Report struct {
	Rows               int               `json:"rows"`
	PerSource          map[string]int    `json:"per_source"`
	TotalPrecipitation decimal.Decimal   `json:"total_precipitation"`
	FirstDate          time.Time         `json:"first_date"`
	LastDate           time.Time         `json:"last_date"`
	Failed             map[string]string `json:"failed,omitempty"`
}

// Merger combines observations from every enabled source into one table.
type Merger struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewMerger creates a merger for the configured sources.
func NewMerger(cfg *config.Config, log *logrus.Logger) *Merger {
	return &Merger{cfg: cfg, logger: log}
}

// BuildSources constructs the configured sources. File-backed sources take
// no HTTP client; remote sources share one rate-limited client.
func (m *Merger) BuildSources() []Source {
	clientCfg := DefaultHTTPClientConfig()
	if m.cfg.Ingest.RateLimit > 0 {
		clientCfg.RateLimit = m.cfg.Ingest.RateLimit
	}
	if m.cfg.Ingest.TimeoutSec > 0 {
		clientCfg.Timeout = time.Duration(m.cfg.Ingest.TimeoutSec) * time.Second
	}
	if m.cfg.Ingest.MaxRetries > 0 {
		clientCfg.MaxRetries = m.cfg.Ingest.MaxRetries
	}

	var client *RateLimitedHTTPClient
	var sources []Source
	for _, sc := range m.cfg.Ingest.Sources {
		switch {
		case sc.URL != "":
			if client == nil {
				client = NewRateLimitedHTTPClient(clientCfg, m.logger)
			}
			sources = append(sources, NewHTTPSource(sc, client))
		case sc.Path != "":
			sources = append(sources, NewFileSource(sc))
		default:
			m.logger.WithField("source", sc.Name).Warn("Source has neither path nor url, skipping")
		}
	}
	return sources
}

// Merge fetches from every enabled source and combines the observations by
// date. The first source reporting a field for a date wins; later sources
// only fill gaps. One source failing is logged and skipped; the merge fails
// only when nothing could be fetched at all.
func (m *Merger) Merge(ctx context.Context, sources []Source, startDate, endDate time.Time) ([]Observation, *Report, error) {
	report := &Report{
		PerSource:          make(map[string]int),
		TotalPrecipitation: decimal.Zero,
	}

	byDate := make(map[string]*Observation)
	for _, source := range sources {
		if !source.IsEnabled() {
			continue
		}

		observations, err := source.FetchObservations(ctx, startDate, endDate)
		if err != nil {
			m.logger.WithError(err).WithField("source", source.Name()).Warn("Source fetch failed, skipping")
			if report.Failed == nil {
				report.Failed = make(map[string]string)
			}
			report.Failed[source.Name()] = err.Error()
			continue
		}

		for _, obs := range observations {
			key := obs.Date.Format("2006-01-02")
			existing, ok := byDate[key]
			if !ok {
				copied := obs
				byDate[key] = &copied
				continue
			}
			fillGaps(existing, obs)
		}

		report.PerSource[source.Name()] = len(observations)
		metrics.RecordIngestedRecords(source.Name(), len(observations))
	}

	if len(byDate) == 0 {
		return nil, nil, fmt.Errorf("no observations could be fetched from any source")
	}

	merged := make([]Observation, 0, len(byDate))
	for _, obs := range byDate {
		merged = append(merged, *obs)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })

	report.Rows = len(merged)
	report.FirstDate = merged[0].Date
	report.LastDate = merged[len(merged)-1].Date
	for _, obs := range merged {
		if obs.Prcp != nil {
			report.TotalPrecipitation = report.TotalPrecipitation.Add(*obs.Prcp)
		}
	}

	return merged, report, nil
}

// fillGaps copies fields the existing observation is missing.
func fillGaps(existing *Observation, obs Observation) {
	if existing.Prcp == nil {
		existing.Prcp = obs.Prcp
	}
	if existing.Tavg == nil {
		existing.Tavg = obs.Tavg
	}
	if existing.Tmax == nil {
		existing.Tmax = obs.Tmax
	}
	if existing.Tmin == nil {
		existing.Tmin = obs.Tmin
	}
	if existing.Awnd == nil {
		existing.Awnd = obs.Awnd
	}
	if existing.Rhum == nil {
		existing.Rhum = obs.Rhum
	}
}

// WriteCSV writes the merged observations in the layout the training
// pipeline reads.
func (m *Merger) WriteCSV(observations []Observation, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"DATE", "PRCP", "TAVG", "TMAX", "TMIN", "AWND", "RHUM"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, obs := range observations {
		row := []string{
			obs.Date.Format("2006-01-02"),
			decimalCell(obs.Prcp),
			floatCell(obs.Tavg),
			floatCell(obs.Tmax),
			floatCell(obs.Tmin),
			floatCell(obs.Awnd),
			floatCell(obs.Rhum),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

// Run fetches, merges, and writes the configured output file.
func (m *Merger) Run(ctx context.Context, startDate, endDate time.Time) (*Report, error) {
	sources := m.BuildSources()
	if len(sources) == 0 {
		return nil, fmt.Errorf("no ingest sources configured")
	}

	merged, report, err := m.Merge(ctx, sources, startDate, endDate)
	if err != nil {
		return nil, err
	}

	if err := m.WriteCSV(merged, m.cfg.Ingest.OutputPath); err != nil {
		return nil, err
	}

	m.logger.WithFields(logrus.Fields{
		"rows":                report.Rows,
		"output":              m.cfg.Ingest.OutputPath,
		"total_precipitation": report.TotalPrecipitation.String(),
	}).Info("Ingest run completed")

	return report, nil
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func decimalCell(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

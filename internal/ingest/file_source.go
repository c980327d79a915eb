package ingest

import (
	"context"
	"os"
	"time"

	"github.com/yourusername/skycast/internal/config"
)

// FileSource reads observations from a local CSV export.
type FileSource struct {
	name    string
	path    string
	enabled bool
}

// NewFileSource creates a source backed by a CSV file on disk.
func NewFileSource(cfg config.SourceConfig) *FileSource {
	return &FileSource{
		name:    cfg.Name,
		path:    cfg.Path,
		enabled: cfg.Enabled,
	}
}

// Name returns the source name
func (s *FileSource) Name() string { return s.name }

// IsEnabled returns whether the source is enabled
func (s *FileSource) IsEnabled() bool { return s.enabled }

// FetchObservations reads and filters the file's observations.
func (s *FileSource) FetchObservations(ctx context.Context, startDate, endDate time.Time) ([]Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, NewSourceError(s.name, ErrCodeNotFound, "failed to open file", err)
	}
	defer f.Close()

	observations, err := parseObservationsCSV(f, s.name)
	if err != nil {
		return nil, err
	}

	return filterRange(observations, startDate, endDate), nil
}

// filterRange keeps observations inside [startDate, endDate]. Zero bounds
// leave that side open.
func filterRange(observations []Observation, startDate, endDate time.Time) []Observation {
	var out []Observation
	for _, obs := range observations {
		if !startDate.IsZero() && obs.Date.Before(startDate) {
			continue
		}
		if !endDate.IsZero() && obs.Date.After(endDate) {
			continue
		}
		out = append(out, obs)
	}
	return out
}

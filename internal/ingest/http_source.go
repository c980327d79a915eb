package ingest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/yourusername/skycast/internal/config"
)

// HTTPSource fetches observations from a provider exposing a CSV endpoint.
type HTTPSource struct {
	name    string
	url     string
	apiKey  string
	enabled bool
	client  *RateLimitedHTTPClient
}

// NewHTTPSource creates a source backed by a remote CSV endpoint.
func NewHTTPSource(cfg config.SourceConfig, client *RateLimitedHTTPClient) *HTTPSource {
	return &HTTPSource{
		name:    cfg.Name,
		url:     cfg.URL,
		apiKey:  cfg.APIKey,
		enabled: cfg.Enabled,
		client:  client,
	}
}

// Name returns the source name
func (s *HTTPSource) Name() string { return s.name }

// IsEnabled returns whether the source is enabled
func (s *HTTPSource) IsEnabled() bool { return s.enabled }

// FetchObservations downloads and parses the provider's CSV.
func (s *HTTPSource) FetchObservations(ctx context.Context, startDate, endDate time.Time) ([]Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, NewSourceError(s.name, ErrCodeInvalidData, "failed to build request", err)
	}
	if s.apiKey != "" {
		req.Header.Set("X-Api-Key", s.apiKey)
	}
	if !startDate.IsZero() {
		q := req.URL.Query()
		q.Set("start", startDate.Format("2006-01-02"))
		if !endDate.IsZero() {
			q.Set("end", endDate.Format("2006-01-02"))
		}
		req.URL.RawQuery = q.Encode()
	}

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return nil, NewSourceError(s.name, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		code := ErrCodeServerError
		if resp.StatusCode == http.StatusNotFound {
			code = ErrCodeNotFound
		} else if resp.StatusCode == http.StatusTooManyRequests {
			code = ErrCodeRateLimitExceeded
		}
		return nil, NewSourceError(s.name, code, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	observations, err := parseObservationsCSV(resp.Body, s.name)
	if err != nil {
		return nil, err
	}

	return filterRange(observations, startDate, endDate), nil
}

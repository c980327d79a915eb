package api

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/yourusername/skycast/internal/metrics"
	"github.com/yourusername/skycast/internal/service"
)

// CacheKey identifies a prediction request. Predictions for the same date and
// rounded location are identical until the next calibration run.
type CacheKey struct {
	Latitude  float64
	Longitude float64
	Year      int
	Month     int
	Day       int
	Condition string
}

// String returns the string representation of the cache key
func (k CacheKey) String() string {
	return fmt.Sprintf("%.2f:%.2f:%04d-%02d-%02d:%s", k.Latitude, k.Longitude, k.Year, k.Month, k.Day, k.Condition)
}

// PredictionCache provides in-memory caching for served predictions
type PredictionCache struct {
	cache     *cache.Cache
	ttl       time.Duration
	maxSize   int
	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(ttl time.Duration, maxSize int) *PredictionCache {
	return &PredictionCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached prediction response
func (pc *PredictionCache) Get(key CacheKey) *service.PredictionResponse {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if result, found := pc.cache.Get(key.String()); found {
		pc.hitCount++
		metrics.RecordPredictionCacheHit()
		if resp, ok := result.(*service.PredictionResponse); ok {
			return resp
		}
	}

	pc.missCount++
	return nil
}

// Set stores a prediction response in the cache
func (pc *PredictionCache) Set(key CacheKey, resp *service.PredictionResponse) {
	pc.mu.Lock()
	defer pc.mu.Unlock()

	if pc.cache.ItemCount() >= pc.maxSize {
		pc.cache.DeleteExpired()
	}

	pc.cache.Set(key.String(), resp, pc.ttl)
}

// Flush drops every cached prediction. Called after recalibration so stale
// thresholds are never served.
func (pc *PredictionCache) Flush() {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.cache.Flush()
}

// Stats returns hit and miss counts
func (pc *PredictionCache) Stats() (hits, misses uint64) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	return pc.hitCount, pc.missCount
}

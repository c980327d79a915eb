// Package api exposes the HTTP surface of the weather prediction service.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/skycast/internal/config"
	"github.com/yourusername/skycast/internal/database"
	"github.com/yourusername/skycast/internal/metrics"
	"github.com/yourusername/skycast/internal/service"
)

// Server wires the calibration service into HTTP handlers.
type Server struct {
	cfg     *config.Config
	logger  *logrus.Logger
	service *service.CalibrationService
	cache   *PredictionCache
	db      *database.DB
	started time.Time
}

// NewServer creates a new API server. db may be nil when persistence is
// disabled.
func NewServer(cfg *config.Config, log *logrus.Logger, svc *service.CalibrationService, db *database.DB) *Server {
	return &Server{
		cfg:     cfg,
		logger:  log,
		service: svc,
		cache:   NewPredictionCache(cfg.Server.CacheTTL(), cfg.Server.CacheMaxSize),
		db:      db,
		started: time.Now(),
	}
}

// Cache returns the prediction cache, so recalibration can flush it.
func (s *Server) Cache() *PredictionCache {
	return s.cache
}

// Routes builds the router with all endpoints and middleware mounted.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.corsHeaders)

	r.Get("/", s.handleRoot)
	r.Get("/predict", s.handlePredict)
	r.Get("/model-info", s.handleModelInfo)
	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/livez", s.handleLive)
	r.Get("/ws", s.handleWebSocket)

	if s.cfg.Metrics.Enabled {
		path := s.cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, metrics.Handler())
	}

	return r
}

// requestLogger logs each request with method, path, status, and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"request_id": chimiddleware.GetReqID(r.Context()),
		}).Info("Request completed")
	})
}

// corsHeaders applies the configured CORS policy.
func (s *Server) corsHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.cfg.Server.AllowedOrigins) > 0 {
			origin = s.cfg.Server.AllowedOrigins[0]
			for _, allowed := range s.cfg.Server.AllowedOrigins {
				if allowed == r.Header.Get("Origin") {
					origin = allowed
					break
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

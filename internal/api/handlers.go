package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/yourusername/skycast/internal/dataset"
	"github.com/yourusername/skycast/internal/models"
	"github.com/yourusername/skycast/internal/service"
)

// rootResponse describes the service for GET /.
type rootResponse struct {
	Service    string                  `json:"service"`
	Status     string                  `json:"status"`
	Conditions []string                `json:"conditions"`
	Endpoints  []string                `json:"endpoints"`
	Models     []service.ConditionInfo `json:"models,omitempty"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	conditions := make([]string, 0, len(models.AllConditions()))
	for _, c := range models.AllConditions() {
		conditions = append(conditions, string(c))
	}

	status := "training"
	resp := rootResponse{
		Service:    s.cfg.App.Name,
		Conditions: conditions,
		Endpoints:  []string{"/predict", "/model-info", "/healthz", "/readyz", "/livez", "/ws"},
	}
	if info, err := s.service.Info(); err == nil {
		status = "ready"
		resp.Models = info.Conditions
	}
	resp.Status = status

	s.writeJSON(w, http.StatusOK, resp)
}

// parsePredictionQuery reads the query parameters shared by the HTTP and
// websocket prediction paths.
func parsePredictionQuery(r *http.Request) (service.PredictionRequest, models.Condition, string) {
	q := r.URL.Query()
	var req service.PredictionRequest

	parse := func(name string) (float64, bool) {
		v, err := strconv.ParseFloat(q.Get(name), 64)
		return v, err == nil
	}

	var ok bool
	if req.Latitude, ok = parse("lat"); !ok {
		return req, "", "lat must be a valid number"
	}
	if req.Longitude, ok = parse("lon"); !ok {
		return req, "", "lon must be a valid number"
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return req, "", "lat must be between -90 and 90"
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return req, "", "lon must be between -180 and 180"
	}

	year, err := strconv.Atoi(q.Get("year"))
	if err != nil {
		return req, "", "year must be a valid integer"
	}
	month, err := strconv.Atoi(q.Get("month"))
	if err != nil || month < 1 || month > 12 {
		return req, "", "month must be between 1 and 12"
	}
	day, err := strconv.Atoi(q.Get("day"))
	if err != nil || day < 1 || day > 31 {
		return req, "", "day must be between 1 and 31"
	}
	req.Year, req.Month, req.Day = year, month, day

	// Reject dates like February 30th
	parsed := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if parsed.Day() != day || int(parsed.Month()) != month {
		return req, "", "not a valid calendar date"
	}

	var condition models.Condition
	if raw := q.Get("condition"); raw != "" {
		condition, err = models.ParseCondition(raw)
		if err != nil {
			return req, "", err.Error()
		}
	}

	return req, condition, ""
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	req, condition, badMsg := parsePredictionQuery(r)
	if badMsg != "" {
		s.badRequest(w, badMsg)
		return
	}

	key := CacheKey{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Year:      req.Year,
		Month:     req.Month,
		Day:       req.Day,
		Condition: string(condition),
	}
	if cached := s.cache.Get(key); cached != nil {
		s.writeJSON(w, http.StatusOK, cached)
		return
	}

	resp, err := s.predict(r, req, condition)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.cache.Set(key, resp)
	s.writeJSON(w, http.StatusOK, resp)
}

// predict serves either all conditions or a single requested one, with a
// uniform response shape.
func (s *Server) predict(r *http.Request, req service.PredictionRequest, condition models.Condition) (*service.PredictionResponse, error) {
	if condition == "" {
		return s.service.PredictAll(r.Context(), req)
	}

	single, err := s.service.Predict(r.Context(), req, condition)
	if err != nil {
		return nil, err
	}
	return &service.PredictionResponse{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Date:        time.Date(req.Year, time.Month(req.Month), req.Day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"),
		Season:      dataset.SeasonName(dataset.Season(time.Month(req.Month))),
		Predictions: []service.ConditionPrediction{*single},
	}, nil
}

func (s *Server) handleModelInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.Info()
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, info)
}

// healthResponse is the GET /healthz body.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ModelsReady   int    `json:"models_ready"`
	Database      string `json:"database,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
	}
	if set := s.service.Current(); set != nil {
		resp.ModelsReady = len(set.Models)
	}

	status := http.StatusOK
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			resp.Database = "ok"
		}
	}

	s.writeJSON(w, status, resp)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if !s.service.Ready() {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "training"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/yourusername/skycast/internal/models"
	"github.com/yourusername/skycast/internal/service"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// wsRequest is one prediction request over the websocket.
type wsRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	Day       int     `json:"day"`
	Condition string  `json:"condition,omitempty"`
}

// handleWebSocket serves predictions over a persistent connection. Each JSON
// request message produces one response message; errors are reported in-band
// and keep the connection open.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return s.originAllowed(r.Header.Get("Origin")) },
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// The pinger and the response loop share the connection; gorilla allows
	// only one concurrent writer.
	var writeMu sync.Mutex
	done := make(chan struct{})
	defer close(done)
	go s.wsPinger(conn, &writeMu, done)

	for {
		var req wsRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WithError(err).Debug("Websocket closed unexpectedly")
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(wsPongWait))

		resp, err := s.wsPredict(r, req)

		writeMu.Lock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
		var wErr error
		if err != nil {
			wErr = conn.WriteJSON(errorResponse{Error: err.Error()})
		} else {
			wErr = conn.WriteJSON(resp)
		}
		writeMu.Unlock()
		if wErr != nil {
			return
		}
	}
}

func (s *Server) wsPredict(r *http.Request, req wsRequest) (*service.PredictionResponse, error) {
	predReq := service.PredictionRequest{
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Year:      req.Year,
		Month:     req.Month,
		Day:       req.Day,
	}

	if req.Condition == "" {
		return s.service.PredictAll(r.Context(), predReq)
	}

	condition, err := models.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	single, err := s.service.Predict(r.Context(), predReq, condition)
	if err != nil {
		return nil, err
	}
	return &service.PredictionResponse{
		Latitude:    predReq.Latitude,
		Longitude:   predReq.Longitude,
		Predictions: []service.ConditionPrediction{*single},
	}, nil
}

// wsPinger keeps the connection alive until the handler returns.
func (s *Server) wsPinger(conn *websocket.Conn, writeMu *sync.Mutex, done <-chan struct{}) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			writeMu.Lock()
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			writeMu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// originAllowed checks the configured CORS origins, treating an empty list
// as allow-all.
func (s *Server) originAllowed(origin string) bool {
	if len(s.cfg.Server.AllowedOrigins) == 0 || origin == "" {
		return true
	}
	for _, allowed := range s.cfg.Server.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

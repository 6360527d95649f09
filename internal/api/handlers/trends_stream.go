package handlers

import (
	"time"

	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/launchmap/backend/internal/trends"
	"github.com/launchmap/backend/pkg/logger"
)

// TrendsStreamHandler serves the live trend feed. Clients subscribe to a
// category and receive the full forecast immediately, then a fresh scan of
// the watchlist on every tick until they disconnect.
type TrendsStreamHandler struct {
	service      *trends.Service
	tickInterval time.Duration
}

func NewTrendsStreamHandler(service *trends.Service, tickInterval time.Duration) *TrendsStreamHandler {
	if tickInterval <= 0 {
		tickInterval = 30 * time.Second
	}
	return &TrendsStreamHandler{
		service:      service,
		tickInterval: tickInterval,
	}
}

type streamRequest struct {
	Type     string `json:"type"`
	Category string `json:"category"`
	Seed     string `json:"seed"`
	LeadTime int    `json:"lead_time"`
}

type streamMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// streamConn is the slice of *websocket.Conn the stream loop needs.
type streamConn interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

func (h *TrendsStreamHandler) HandleConnection(c *websocket.Conn) {
	logger.Info("Trend stream connected")
	h.serve(c)
	logger.Info("Trend stream closed")
}

func (h *TrendsStreamHandler) serve(c streamConn) {
	defer c.Close()

	// done releases a reader parked on a channel send when this side exits
	// first; Close releases one parked in ReadJSON.
	done := make(chan struct{})
	defer close(done)

	// Incoming messages feed the subscription loop; a read error means the
	// client went away.
	requests := make(chan streamRequest)
	go func() {
		defer close(requests)
		for {
			var req streamRequest
			if err := c.ReadJSON(&req); err != nil {
				return
			}
			select {
			case requests <- req:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(h.tickInterval)
	defer ticker.Stop()

	var current *streamRequest

	for {
		select {
		case req, ok := <-requests:
			if !ok {
				return
			}
			if req.Type != "subscribe" {
				continue
			}
			current = &req
			if err := h.sendUpdate(c, req); err != nil {
				logger.Error("Failed to send trend update", zap.Error(err))
				return
			}

		case <-ticker.C:
			if current == nil {
				continue
			}
			if err := h.sendUpdate(c, *current); err != nil {
				logger.Error("Failed to send trend update", zap.Error(err))
				return
			}
		}
	}
}

func (h *TrendsStreamHandler) sendUpdate(c streamConn, req streamRequest) error {
	seed := req.Seed
	if seed == "" {
		seed = "launchmap"
	}

	if req.Category != "" {
		leadTime := req.LeadTime
		if !allowedLeadTimes[leadTime] {
			leadTime = 30
		}
		forecast := h.service.Forecast(seed, 0, req.Category, leadTime)
		return c.WriteJSON(streamMessage{Type: "forecast", Payload: forecast})
	}

	return c.WriteJSON(streamMessage{Type: "scan", Payload: h.service.Scan(seed)})
}

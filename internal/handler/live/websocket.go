package live

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/neuroguard/backend/internal/service/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/service/session"
)

const (
	readTimeout    = 60 * time.Second
	pingInterval   = 54 * time.Second
	writeTimeout   = 10 * time.Second
	analyzeTimeout = 45 * time.Second
	queueSize      = 8
)

// WebSocketHandler runs check-ins over a websocket for clients that keep a
// session open.
type WebSocketHandler struct {
	sessions *session.Service
	checkins *checkin.Service
	upgrader websocket.Upgrader
	logger   *slog.Logger

	readTimeout    time.Duration
	pingInterval   time.Duration
	analyzeTimeout time.Duration
}

// NewWebSocketHandler creates the live check-in handler.
func NewWebSocketHandler(sessions *session.Service, checkins *checkin.Service) *WebSocketHandler {
	return &WebSocketHandler{
		sessions: sessions,
		checkins: checkins,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger:         slog.Default().With("component", "websocket"),
		readTimeout:    readTimeout,
		pingInterval:   pingInterval,
		analyzeTimeout: analyzeTimeout,
	}
}

// RegisterRoutes registers the websocket route.
func (h *WebSocketHandler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

// TextMessage carries one check-in.
type TextMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// conn serialises writes; gorilla allows one concurrent writer.
type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
}

func (h *WebSocketHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if sessionID == "" {
		http.Error(w, "sessionID is required", http.StatusBadRequest)
		return
	}

	if _, err := h.sessions.GetSession(r.Context(), sessionID); err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err)
		return
	}
	defer ws.Close()
	c := &conn{ws: ws}

	h.logger.Info("connection opened", "session", sessionID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	_ = ws.SetReadDeadline(time.Now().Add(h.readTimeout))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	go h.pingLoop(ctx, c)

	// Messages are handled in order on a worker so the read loop keeps
	// processing pongs while a classification is in flight.
	queue := make(chan *inboundMessage, queueSize)
	var worker sync.WaitGroup
	worker.Add(1)
	go func() {
		defer worker.Done()
		for msg := range queue {
			h.handleMessage(ctx, c, sessionID, msg)
		}
	}()
	defer worker.Wait()
	defer cancel()
	defer close(queue)

	h.send(c, sessionID, "connected", nil)

	for {
		msg := new(inboundMessage)
		if err := ws.ReadJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read error", "session", sessionID, "error", err)
			}
			return
		}
		_ = ws.SetReadDeadline(time.Now().Add(h.readTimeout))

		select {
		case queue <- msg:
		default:
			h.sendError(c, sessionID, "too many pending messages", "")
		}
	}
}

func (h *WebSocketHandler) handleMessage(ctx context.Context, c *conn, sessionID string, msg *inboundMessage) {
	if msg.SessionID != "" && msg.SessionID != sessionID {
		h.sendError(c, sessionID, "session mismatch", "")
		return
	}

	switch msg.Type {
	case "checkin":
		var text TextMessage
		if err := json.Unmarshal(msg.Data, &text); err != nil {
			h.sendError(c, sessionID, "invalid checkin payload", "")
			return
		}
		analyzeCtx, cancel := context.WithTimeout(ctx, h.analyzeTimeout)
		report, err := h.checkins.Analyze(analyzeCtx, sessionID, text.Text)
		cancel()
		if err != nil {
			var classErr *checkin.ClassificationError
			switch {
			case errors.As(err, &classErr):
				h.sendError(c, sessionID, "emotion analysis unavailable, please try again", string(classErr.Reason))
			default:
				h.sendError(c, sessionID, err.Error(), "")
			}
			return
		}
		h.send(c, sessionID, "report", report)
	case "reset":
		if err := h.checkins.Reset(ctx, sessionID); err != nil {
			h.sendError(c, sessionID, err.Error(), "")
			return
		}
		h.send(c, sessionID, "reset", nil)
	case "history":
		entries, err := h.checkins.History(ctx, sessionID)
		if err != nil {
			h.sendError(c, sessionID, err.Error(), "")
			return
		}
		h.send(c, sessionID, "history", entries)
	default:
		h.sendError(c, sessionID, "unsupported message type: "+msg.Type, "")
	}
}

func (h *WebSocketHandler) send(c *conn, sessionID, kind string, data any) {
	msg := outgoingMessage{
		Type:      kind,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	if err := c.writeJSON(msg); err != nil {
		h.logger.Warn("write failed", "session", sessionID, "type", kind, "error", err)
	}
}

func (h *WebSocketHandler) sendError(c *conn, sessionID, message, reason string) {
	data := map[string]string{"message": message}
	if reason != "" {
		data["reason"] = reason
	}
	h.send(c, sessionID, "error", data)
}

func (h *WebSocketHandler) pingLoop(ctx context.Context, c *conn) {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

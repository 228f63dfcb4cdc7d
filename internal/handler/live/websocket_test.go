package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/crisis"
	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
	"github.com/zhouzirui/neuroguard/backend/internal/service/checkin"
	"github.com/zhouzirui/neuroguard/backend/internal/service/classifier"
	"github.com/zhouzirui/neuroguard/backend/internal/service/session"
)

type received struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
}

func setupServer(t *testing.T) (*httptest.Server, *session.Service) {
	t.Helper()
	return setupServerWith(t, classifier.NewHeuristic(), nil)
}

func setupServerWith(t *testing.T, c classifier.Classifier, tune func(*WebSocketHandler)) (*httptest.Server, *session.Service) {
	t.Helper()
	sessions := session.NewService(0)
	checkins := checkin.NewService(sessions, c, risk.New(), crisis.New())

	h := NewWebSocketHandler(sessions, checkins)
	if tune != nil {
		tune(h)
	}
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, sessions
}

func dial(t *testing.T, srv *httptest.Server, sessionID string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/" + sessionID
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ws.Close() })
	_ = ws.SetReadDeadline(time.Now().Add(5 * time.Second))
	return ws
}

func read(t *testing.T, ws *websocket.Conn) received {
	t.Helper()
	var msg received
	if err := ws.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestLiveCheckinRoundTrip(t *testing.T) {
	srv, sessions := setupServer(t)
	s, _ := sessions.CreateSession(context.Background())
	ws := dial(t, srv, s.ID)

	if msg := read(t, ws); msg.Type != "connected" {
		t.Fatalf("expected connected, got %s", msg.Type)
	}

	if err := ws.WriteJSON(map[string]any{"type": "checkin", "data": map[string]string{"text": "so stressed and anxious"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := read(t, ws)
	if msg.Type != "report" {
		t.Fatalf("expected report, got %s: %s", msg.Type, msg.Data)
	}
	var report checkin.Report
	if err := json.Unmarshal(msg.Data, &report); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.Entry.Label != "fear" {
		t.Fatalf("expected fear, got %s", report.Entry.Label)
	}

	if err := ws.WriteJSON(map[string]any{"type": "reset"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, ws); msg.Type != "reset" {
		t.Fatalf("expected reset ack, got %s", msg.Type)
	}
	labels, _ := sessions.Labels(context.Background(), s.ID)
	if len(labels) != 0 {
		t.Fatalf("expected history cleared, got %v", labels)
	}
}

func TestLiveRejectsUnknownMessage(t *testing.T) {
	srv, sessions := setupServer(t)
	s, _ := sessions.CreateSession(context.Background())
	ws := dial(t, srv, s.ID)
	read(t, ws)

	if err := ws.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, ws); msg.Type != "error" {
		t.Fatalf("expected error, got %s", msg.Type)
	}

	if err := ws.WriteJSON(map[string]any{"type": "history", "sessionId": "someone-else"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := read(t, ws); msg.Type != "error" {
		t.Fatalf("expected session mismatch error, got %s", msg.Type)
	}
}

func TestLiveUnknownSession(t *testing.T) {
	srv, _ := setupServer(t)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/missing"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("expected dial to fail")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 response, got %+v", resp)
	}
}

// slowClassifier answers after delay unless the context ends first.
type slowClassifier struct {
	delay time.Duration
}

func (s slowClassifier) Name() string { return "slow" }

func (s slowClassifier) Classify(ctx context.Context, _ string) classification.Outcome {
	select {
	case <-time.After(s.delay):
		return classification.Success("sadness", 0.8)
	case <-ctx.Done():
		return classification.Failure(classification.ReasonTimeout, ctx.Err())
	}
}

func sendCheckin(t *testing.T, ws *websocket.Conn, text string) {
	t.Helper()
	if err := ws.WriteJSON(map[string]any{"type": "checkin", "data": map[string]string{"text": text}}); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLiveSurvivesClassificationLongerThanReadTimeout(t *testing.T) {
	srv, sessions := setupServerWith(t, slowClassifier{delay: 700 * time.Millisecond}, func(h *WebSocketHandler) {
		h.readTimeout = 300 * time.Millisecond
		h.pingInterval = 100 * time.Millisecond
		h.analyzeTimeout = 5 * time.Second
	})
	s, _ := sessions.CreateSession(context.Background())
	ws := dial(t, srv, s.ID)
	read(t, ws)

	for i := 0; i < 2; i++ {
		sendCheckin(t, ws, "long day")
		if msg := read(t, ws); msg.Type != "report" {
			t.Fatalf("check-in %d: expected report, got %s: %s", i+1, msg.Type, msg.Data)
		}
	}

	labels, _ := sessions.Labels(context.Background(), s.ID)
	if len(labels) != 2 {
		t.Fatalf("expected 2 entries, got %v", labels)
	}
}

func TestLiveBoundsAnalysisTime(t *testing.T) {
	srv, sessions := setupServerWith(t, slowClassifier{delay: time.Minute}, func(h *WebSocketHandler) {
		h.analyzeTimeout = 100 * time.Millisecond
	})
	s, _ := sessions.CreateSession(context.Background())
	ws := dial(t, srv, s.ID)
	read(t, ws)

	sendCheckin(t, ws, "waiting")
	msg := read(t, ws)
	if msg.Type != "error" {
		t.Fatalf("expected error, got %s", msg.Type)
	}
	var data map[string]string
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		t.Fatalf("decode error payload: %v", err)
	}
	if data["reason"] != string(classification.ReasonTimeout) {
		t.Fatalf("expected timeout reason, got %v", data)
	}
}

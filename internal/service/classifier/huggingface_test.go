package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

func newTestHF(t *testing.T, handler http.HandlerFunc, retries int) (*HuggingFace, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	hf, err := NewHuggingFace(HuggingFaceConfig{
		BaseURL:    srv.URL,
		Model:      "org/emotion-model",
		Token:      "secret",
		Timeout:    time.Second,
		MaxRetries: retries,
		Backoff:    time.Millisecond,
	})
	require.NoError(t, err)
	return hf, srv
}

func TestHuggingFaceNestedResponse(t *testing.T) {
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/org/emotion-model", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req hfRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "I am so tired", req.Inputs)

		_, _ = w.Write([]byte(`[[{"label":"joy","score":0.1},{"label":"Sadness","score":0.85},{"label":"fear","score":0.05}]]`))
	}, 0)

	outcome := hf.Classify(context.Background(), "I am so tired")
	result, ok := outcome.Result()
	require.True(t, ok, "unexpected failure: %v", outcome.Err())
	assert.Equal(t, "sadness", result.Label)
	assert.InDelta(t, 0.85, result.Confidence, 1e-9)
}

func TestHuggingFaceFlatResponse(t *testing.T) {
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"POSITIVE","score":0.98},{"label":"NEGATIVE","score":0.02}]`))
	}, 0)

	result, ok := hf.Classify(context.Background(), "lovely day").Result()
	require.True(t, ok)
	assert.Equal(t, "positive", result.Label)
}

func TestHuggingFaceRetriesWhileModelLoads(t *testing.T) {
	var calls int32
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"Model is currently loading","estimated_time":0.001}`))
			return
		}
		_, _ = w.Write([]byte(`[[{"label":"anger","score":0.7}]]`))
	}, 3)

	outcome := hf.Classify(context.Background(), "so annoyed")
	require.True(t, outcome.OK(), "unexpected failure: %v", outcome.Err())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHuggingFaceGivesUpAfterRetries(t *testing.T) {
	var calls int32
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}, 2)

	outcome := hf.Classify(context.Background(), "hello")
	require.False(t, outcome.OK())
	assert.Equal(t, classification.ReasonUnavailable, outcome.Reason())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHuggingFaceDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"Invalid credentials"}`))
	}, 3)

	outcome := hf.Classify(context.Background(), "hello")
	assert.Equal(t, classification.ReasonUnavailable, outcome.Reason())
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestHuggingFaceMalformedBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      `<html>oops</html>`,
		"error object":  `{"error":"something odd"}`,
		"empty list":    `[]`,
		"missing score": `[{"label":"joy"}]`,
		"score range":   `[{"label":"joy","score":1.7}]`,
	} {
		body := body
		t.Run(name, func(t *testing.T) {
			hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}, 2)

			outcome := hf.Classify(context.Background(), "hello")
			assert.Equal(t, classification.ReasonMalformed, outcome.Reason())
		})
	}
}

func TestHuggingFaceTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	t.Cleanup(srv.Close)

	hf, err := NewHuggingFace(HuggingFaceConfig{
		BaseURL: srv.URL,
		Model:   "m",
		Timeout: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	outcome := hf.Classify(context.Background(), "hello")
	assert.Equal(t, classification.ReasonTimeout, outcome.Reason())
}

func TestHuggingFaceEmptyInput(t *testing.T) {
	hf, _ := newTestHF(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for blank input")
	}, 0)

	assert.Equal(t, classification.ReasonEmptyInput, hf.Classify(context.Background(), "  ").Reason())
}

func TestNewHuggingFaceRequiresModel(t *testing.T) {
	_, err := NewHuggingFace(HuggingFaceConfig{})
	require.Error(t, err)
}

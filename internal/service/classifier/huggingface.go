package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

const (
	defaultHFBaseURL = "https://router.huggingface.co/hf-inference"
	maxHFBody        = 1 << 20
	maxModelWait     = 20 * time.Second
)

// HuggingFaceConfig configures the hosted inference API adapter.
type HuggingFaceConfig struct {
	BaseURL    string
	Model      string
	Token      string
	Timeout    time.Duration
	MaxRetries int
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64
	// Backoff is the base delay between retries, doubled per attempt.
	Backoff    time.Duration
	HTTPClient *http.Client
}

// HuggingFace calls a text-classification model on the inference API.
type HuggingFace struct {
	endpoint   string
	token      string
	timeout    time.Duration
	maxRetries int
	backoff    time.Duration
	limiter    *rate.Limiter
	client     *http.Client
}

// NewHuggingFace validates cfg and builds the adapter.
func NewHuggingFace(cfg HuggingFaceConfig) (*HuggingFace, error) {
	model := strings.Trim(strings.TrimSpace(cfg.Model), "/")
	if model == "" {
		return nil, errors.New("huggingface model is required")
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = defaultHFBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	return &HuggingFace{
		endpoint:   base + "/models/" + model,
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		maxRetries: retries,
		backoff:    backoff,
		limiter:    limiter,
		client:     client,
	}, nil
}

func (h *HuggingFace) Name() string { return "huggingface" }

func (h *HuggingFace) Classify(ctx context.Context, text string) classification.Outcome {
	if blank(text) {
		return classification.Failure(classification.ReasonEmptyInput, nil)
	}

	body, err := json.Marshal(hfRequest{Inputs: text})
	if err != nil {
		return classification.Failure(classification.ReasonMalformed, err)
	}

	var lastErr error
	lastReason := classification.ReasonUnavailable
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if h.limiter != nil {
			if err := h.limiter.Wait(ctx); err != nil {
				return classification.Failure(reasonFor(ctx, err), err)
			}
		}

		result, wait, err := h.call(ctx, body)
		if err == nil {
			return classification.Success(result.Label, result.Confidence)
		}

		var malformed *malformedError
		if errors.As(err, &malformed) {
			return classification.Failure(classification.ReasonMalformed, err)
		}
		if ctx.Err() != nil {
			return classification.Failure(reasonFor(ctx, err), err)
		}

		lastErr = err
		lastReason = reasonFor(ctx, err)

		var status *statusError
		if errors.As(err, &status) && !status.retryable() {
			break
		}
		if attempt == h.maxRetries {
			break
		}

		if wait <= 0 {
			wait = h.backoff << attempt
		}
		select {
		case <-ctx.Done():
			return classification.Failure(reasonFor(ctx, ctx.Err()), ctx.Err())
		case <-time.After(wait):
		}
	}

	return classification.Failure(lastReason, lastErr)
}

// call performs one request. wait is the server-suggested delay before a
// retry, zero when none was given.
func (h *HuggingFace) call(ctx context.Context, body []byte) (classification.Result, time.Duration, error) {
	callCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return classification.Result{}, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if h.token != "" {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return classification.Result{}, 0, err
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxHFBody))
	if err != nil {
		return classification.Result{}, 0, err
	}

	if resp.StatusCode != http.StatusOK {
		apiErr := decodeHFError(payload)
		return classification.Result{}, apiErr.wait(), &statusError{code: resp.StatusCode, message: apiErr.Error}
	}

	result, err := parseHFResponse(payload)
	if err != nil {
		return classification.Result{}, 0, &malformedError{err: err}
	}
	return result, 0, nil
}

type hfRequest struct {
	Inputs string `json:"inputs"`
}

type hfScore struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

type hfError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (e hfError) wait() time.Duration {
	if e.EstimatedTime <= 0 {
		return 0
	}
	wait := time.Duration(e.EstimatedTime * float64(time.Second))
	if wait > maxModelWait {
		wait = maxModelWait
	}
	return wait
}

func decodeHFError(payload []byte) hfError {
	var apiErr hfError
	if err := json.Unmarshal(payload, &apiErr); err != nil || apiErr.Error == "" {
		apiErr.Error = strings.TrimSpace(string(payload))
	}
	return apiErr
}

// parseHFResponse accepts both [[{label,score}...]] and [{label,score}...]
// and returns the highest-scoring label.
func parseHFResponse(payload []byte) (classification.Result, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return classification.Result{}, errors.New("empty response body")
	}
	if trimmed[0] == '{' {
		apiErr := decodeHFError(trimmed)
		return classification.Result{}, fmt.Errorf("error object in success response: %s", apiErr.Error)
	}

	var scores []hfScore
	var nested [][]hfScore
	if err := json.Unmarshal(trimmed, &nested); err == nil {
		if len(nested) == 0 {
			return classification.Result{}, errors.New("empty prediction list")
		}
		scores = nested[0]
	} else if err := json.Unmarshal(trimmed, &scores); err != nil {
		return classification.Result{}, fmt.Errorf("unexpected response shape: %w", err)
	}

	best := -1
	for i, s := range scores {
		if strings.TrimSpace(s.Label) == "" || s.Score == nil {
			return classification.Result{}, errors.New("prediction missing label or score")
		}
		if *s.Score < 0 || *s.Score > 1 {
			return classification.Result{}, fmt.Errorf("score %v outside [0,1]", *s.Score)
		}
		if best == -1 || *s.Score > *scores[best].Score {
			best = i
		}
	}
	if best == -1 {
		return classification.Result{}, errors.New("empty prediction list")
	}

	return classification.Result{
		Label:      normalizeLabel(scores[best].Label),
		Confidence: *scores[best].Score,
	}, nil
}

type statusError struct {
	code    int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("inference api status %d: %s", e.code, e.message)
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return "malformed inference response: " + e.err.Error() }

func (e *malformedError) Unwrap() error { return e.err }

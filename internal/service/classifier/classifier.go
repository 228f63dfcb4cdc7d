package classifier

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"strings"
	"time"

	"github.com/zhouzirui/neuroguard/backend/internal/metrics"
	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

// Classifier labels free text. Implementations decide success or failure
// themselves; callers never inspect provider payloads.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, text string) classification.Outcome
}

// Instrument wraps c so every call is timed, counted and logged.
func Instrument(c Classifier) Classifier {
	if c == nil {
		return nil
	}
	if _, ok := c.(*instrumented); ok {
		return c
	}
	return &instrumented{next: c}
}

type instrumented struct {
	next Classifier
}

func (i *instrumented) Name() string { return i.next.Name() }

func (i *instrumented) Classify(ctx context.Context, text string) classification.Outcome {
	started := time.Now()
	outcome := i.next.Classify(ctx, text)
	elapsed := time.Since(started)

	result := "ok"
	if !outcome.OK() {
		result = string(outcome.Reason())
		slog.Warn("classifier call failed",
			"component", "classifier",
			"provider", i.next.Name(),
			"reason", result,
			"error", outcome.Err(),
			"elapsed", elapsed)
	} else {
		r, _ := outcome.Result()
		slog.Debug("classifier call succeeded",
			"component", "classifier",
			"provider", i.next.Name(),
			"label", r.Label,
			"confidence", r.Confidence,
			"elapsed", elapsed)
	}
	metrics.ObserveClassifier(i.next.Name(), result, elapsed)
	return outcome
}

// reasonFor maps a transport error onto a failure reason.
func reasonFor(ctx context.Context, err error) classification.Reason {
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return classification.ReasonTimeout
	case errors.Is(err, context.Canceled):
		return classification.ReasonCanceled
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return classification.ReasonTimeout
	}
	return classification.ReasonUnavailable
}

func normalizeLabel(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func blank(text string) bool {
	return strings.TrimSpace(text) == ""
}

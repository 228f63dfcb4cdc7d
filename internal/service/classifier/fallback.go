package classifier

import (
	"context"
	"log/slog"

	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

// Fallback asks primary first and secondary when primary fails. Blank input
// and caller cancellation are returned as-is.
type Fallback struct {
	primary   Classifier
	secondary Classifier
}

// NewFallback chains two classifiers.
func NewFallback(primary, secondary Classifier) *Fallback {
	return &Fallback{primary: primary, secondary: secondary}
}

func (f *Fallback) Name() string {
	return f.primary.Name() + "+" + f.secondary.Name()
}

func (f *Fallback) Classify(ctx context.Context, text string) classification.Outcome {
	outcome := f.primary.Classify(ctx, text)
	if outcome.OK() {
		return outcome
	}
	switch outcome.Reason() {
	case classification.ReasonEmptyInput, classification.ReasonCanceled:
		return outcome
	}

	slog.Info("primary classifier failed, using fallback",
		"component", "classifier",
		"primary", f.primary.Name(),
		"fallback", f.secondary.Name(),
		"reason", outcome.Reason())
	return f.secondary.Classify(ctx, text)
}

package classifier

import (
	"context"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/emotion"
	"github.com/zhouzirui/neuroguard/backend/internal/model/classification"
)

// Heuristic classifies with the local keyword lexicon. It needs no network
// and only fails on blank input.
type Heuristic struct{}

// NewHeuristic returns the keyword classifier.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

func (h *Heuristic) Name() string { return "heuristic" }

func (h *Heuristic) Classify(ctx context.Context, text string) classification.Outcome {
	if blank(text) {
		return classification.Failure(classification.ReasonEmptyInput, nil)
	}
	if err := ctx.Err(); err != nil {
		return classification.Failure(reasonFor(ctx, err), err)
	}
	decision := emotion.Analyze(text)
	return classification.Success(string(decision.Emotion), decision.Confidence)
}

package risk

import (
	"errors"
	"math"
	"strings"
)

// Level is the three-tier burnout risk category.
type Level string

const (
	Low      Level = "low"
	Moderate Level = "moderate"
	High     Level = "high"
)

const (
	confidenceWeight = 50.0
	historyWeight    = 10.0

	highThreshold     = 70.0
	moderateThreshold = 40.0
)

// ErrInvalidConfidence reports a confidence outside [0,1].
var ErrInvalidConfidence = errors.New("confidence must be within [0,1]")

// DefaultNegativeEmotions lists the labels counted as negative when no
// lexicon is configured. "negative" covers binary sentiment models.
var DefaultNegativeEmotions = []string{"sadness", "anger", "fear", "negative"}

// Aggregator turns a classification plus the session's earlier labels into a
// risk level. It holds only the negative label set and is safe for
// concurrent use.
type Aggregator struct {
	negative map[string]struct{}
}

// New builds an Aggregator. With no labels it falls back to
// DefaultNegativeEmotions.
func New(negatives ...string) *Aggregator {
	if len(negatives) == 0 {
		negatives = DefaultNegativeEmotions
	}
	set := make(map[string]struct{}, len(negatives))
	for _, label := range negatives {
		normalized := normalize(label)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return &Aggregator{negative: set}
}

// IsNegative reports whether label belongs to the negative set.
func (a *Aggregator) IsNegative(label string) bool {
	_, ok := a.negative[normalize(label)]
	return ok
}

// NegativeLabels returns the configured set in no particular order.
func (a *Aggregator) NegativeLabels() []string {
	labels := make([]string, 0, len(a.negative))
	for label := range a.negative {
		labels = append(labels, label)
	}
	return labels
}

// Score computes the raw additive score. history must not contain the label
// being scored; callers append it afterwards. confidence is clamped to [0,1].
func (a *Aggregator) Score(label string, confidence float64, history []string) float64 {
	score := 0.0
	if a.IsNegative(label) {
		score += ClampConfidence(confidence) * confidenceWeight
	}

	negatives := 0
	for _, past := range history {
		if a.IsNegative(past) {
			negatives++
		}
	}
	score += float64(negatives) * historyWeight

	return score
}

// Assess returns the risk level for label/confidence against the
// pre-update history.
func (a *Aggregator) Assess(label string, confidence float64, history []string) Level {
	return LevelFor(a.Score(label, confidence, history))
}

// LevelFor maps a raw score onto a level. Lower bounds are inclusive.
func LevelFor(score float64) Level {
	switch {
	case score >= highThreshold:
		return High
	case score >= moderateThreshold:
		return Moderate
	default:
		return Low
	}
}

// ClampConfidence forces confidence into [0,1]. NaN becomes 0.
func ClampConfidence(confidence float64) float64 {
	if math.IsNaN(confidence) || confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// ValidateConfidence is for callers that prefer rejecting bad input over
// clamping it.
func ValidateConfidence(confidence float64) error {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return ErrInvalidConfidence
	}
	return nil
}

// ParseLevel accepts the lower-case names produced by Level.
func ParseLevel(raw string) (Level, bool) {
	switch Level(normalize(raw)) {
	case Low:
		return Low, true
	case Moderate:
		return Moderate, true
	case High:
		return High, true
	default:
		return "", false
	}
}

func normalize(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

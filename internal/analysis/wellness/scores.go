package wellness

import "math"

// Trend directions.
const (
	Improving = "improving"
	Worsening = "worsening"
	Steady    = "steady"
)

const trendWindow = 3

// Scores are the dashboard numbers derived from a session's labels. All
// values are on a 0..100 scale.
type Scores struct {
	Wellness      float64 `json:"wellness"`
	Stability     float64 `json:"stability"`
	NegativeRatio float64 `json:"negativeRatio"`

	// DepressionRisk rises with sustained negative history and with a
	// confident negative reading on the current entry.
	DepressionRisk float64 `json:"depressionRisk"`
	Trend          string  `json:"trend"`
}

// Compute derives scores from labels, which must already include the
// current entry as its last element, and the current entry's confidence.
// isNegative decides label polarity.
func Compute(labels []string, confidence float64, isNegative func(string) bool) Scores {
	if len(labels) == 0 {
		return Scores{Wellness: 100, Stability: 100, Trend: Steady}
	}

	negatives := 0
	switches := 0
	for i, label := range labels {
		if isNegative(label) {
			negatives++
		}
		if i > 0 && labels[i-1] != label {
			switches++
		}
	}

	ratio := float64(negatives) / float64(len(labels)) * 100

	wellness := 100 - ratio
	if isNegative(labels[len(labels)-1]) && confidence >= 0.9 {
		wellness -= 20
	}
	if wellness < 0 {
		wellness = 0
	}

	depression := ratio * 0.6
	if isNegative(labels[len(labels)-1]) {
		depression += confidence * 40
	}
	if depression > 100 {
		depression = 100
	}

	stability := 100.0
	if len(labels) > 1 {
		stability = 100 - float64(switches)/float64(len(labels)-1)*100
	}

	return Scores{
		Wellness:       round1(wellness),
		Stability:      round1(stability),
		NegativeRatio:  round1(ratio),
		DepressionRisk: round1(depression),
		Trend:          trend(labels, isNegative),
	}
}

// trend compares the negative share of the most recent window with the
// entries before it.
func trend(labels []string, isNegative func(string) bool) string {
	if len(labels) <= trendWindow {
		return Steady
	}
	split := len(labels) - trendWindow
	recent := negativeShare(labels[split:], isNegative)
	earlier := negativeShare(labels[:split], isNegative)

	switch {
	case recent < earlier:
		return Improving
	case recent > earlier:
		return Worsening
	default:
		return Steady
	}
}

func negativeShare(labels []string, isNegative func(string) bool) float64 {
	n := 0
	for _, label := range labels {
		if isNegative(label) {
			n++
		}
	}
	return float64(n) / float64(len(labels))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

package emotion

import (
	"sort"
	"strings"
)

// Label is an emotion name in the vocabulary used by common emotion models.
type Label string

const (
	Neutral  Label = "neutral"
	Joy      Label = "joy"
	Sadness  Label = "sadness"
	Anger    Label = "anger"
	Fear     Label = "fear"
	Surprise Label = "surprise"
)

// Decision is the keyword classifier's verdict.
type Decision struct {
	Emotion    Label
	Confidence float64
	Score      int
}

var keywordBuckets = map[Label][]string{
	Joy: {
		"happy", "glad", "great", "good day", "awesome", "amazing", "excited", "grateful", "thankful",
		"relaxed", "proud", "love", "wonderful", "cheerful", "content", "optimistic", "hopeful", "calm",
	},
	Sadness: {
		"sad", "down", "unhappy", "depressed", "lonely", "alone", "cry", "crying", "tired", "exhausted",
		"empty", "miserable", "heartbroken", "hopeless", "worthless", "drained", "burned out", "burnt out",
	},
	Anger: {
		"angry", "furious", "mad", "annoyed", "irritated", "frustrated", "pissed", "rage", "hate",
		"fed up", "resent", "outraged", "sick of",
	},
	Fear: {
		"afraid", "scared", "anxious", "anxiety", "worried", "nervous", "panic", "terrified", "stressed",
		"overwhelmed", "dread", "uneasy", "insecure", "pressure",
	},
	Surprise: {
		"surprised", "shocked", "unexpected", "can't believe", "cannot believe", "wow", "suddenly",
	},
}

var negations = []string{"not ", "don't ", "do not ", "never ", "isn't ", "wasn't "}

// labelOrder breaks score ties deterministically, negative emotions first.
var labelOrder = map[Label]int{
	Sadness:  0,
	Fear:     1,
	Anger:    2,
	Joy:      3,
	Surprise: 4,
	Neutral:  5,
}

// Analyze classifies text with the keyword lexicon. Text without any hit is
// Neutral.
func Analyze(text string) Decision {
	normalized := strings.TrimSpace(strings.ToLower(text))
	if normalized == "" {
		return Decision{Emotion: Neutral, Confidence: 0, Score: 0}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if !strings.Contains(normalized, word) {
				continue
			}
			if negated(normalized, word) {
				// "not happy" reads as sadness, other negations just cancel.
				if label == Joy {
					scores[Sadness] += 2
				}
				continue
			}
			scores[label] += 3
		}
	}

	if exclamations := strings.Count(text, "!"); exclamations > 0 && scores[Surprise] > 0 {
		scores[Surprise] += exclamations
	}

	if len(scores) == 0 {
		return Decision{Emotion: Neutral, Confidence: 0.5, Score: 0}
	}

	labels := make([]Label, 0, len(scores))
	total := 0
	for label, s := range scores {
		labels = append(labels, label)
		total += s
	}
	sort.Slice(labels, func(i, j int) bool {
		if scores[labels[i]] != scores[labels[j]] {
			return scores[labels[i]] > scores[labels[j]]
		}
		return labelOrder[labels[i]] < labelOrder[labels[j]]
	})

	best := labels[0]
	bestScore := scores[best]
	return Decision{
		Emotion:    best,
		Confidence: confidenceFor(bestScore, total),
		Score:      bestScore,
	}
}

// confidenceFor blends the winner's share of all hits with how much evidence
// there is, so a single keyword never reads as certainty.
func confidenceFor(best, total int) float64 {
	share := float64(best) / float64(total)
	evidence := float64(best) / float64(best+3)
	return 0.4 + 0.55*share*evidence
}

func negated(text, word string) bool {
	for _, neg := range negations {
		if strings.Contains(text, neg+word) {
			return true
		}
	}
	return false
}

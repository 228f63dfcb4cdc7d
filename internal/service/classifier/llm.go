package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// LLM-backed classifiers share one prompt and one answer format. The prompt
// avoids literal braces because eino's FString templates treat them as
// placeholders.
const llmSystemPrompt = "You are an emotion classifier for a wellness check-in app. " +
	"Read the user's message and pick exactly one label from: joy, sadness, anger, fear, surprise, neutral. " +
	"Answer with a single JSON object with two fields: label (one of the labels above, lower case) " +
	"and confidence (a number between 0 and 1). Do not output anything else."

const llmUserPrompt = "Message:\n{text}"

var llmLabels = map[string]struct{}{
	"joy":      {},
	"sadness":  {},
	"anger":    {},
	"fear":     {},
	"surprise": {},
	"neutral":  {},
}

type llmPayload struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// parseLLMOutput extracts the JSON object from a model answer, tolerating
// code fences or chatter around it.
func parseLLMOutput(content string) (string, float64, error) {
	trimmed := strings.TrimSpace(content)
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return "", 0, errors.New("missing json object")
	}

	var payload llmPayload
	if err := json.Unmarshal([]byte(trimmed[start:end+1]), &payload); err != nil {
		return "", 0, err
	}

	label := normalizeLabel(payload.Label)
	if _, ok := llmLabels[label]; !ok {
		return "", 0, fmt.Errorf("unknown label %q", payload.Label)
	}
	if payload.Confidence == nil {
		return "", 0, errors.New("missing confidence")
	}
	confidence := *payload.Confidence
	if confidence < 0 || confidence > 1 {
		return "", 0, fmt.Errorf("confidence %v outside [0,1]", confidence)
	}
	return label, confidence, nil
}

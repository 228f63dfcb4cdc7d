package support

import (
	"strings"

	"github.com/zhouzirui/neuroguard/backend/internal/analysis/risk"
)

// Disclaimer is shown alongside every report.
const Disclaimer = "This tool is not a medical diagnosis system. " +
	"If you are experiencing severe distress, please consult a licensed professional."

// CrisisMessage is returned whenever the crisis detector fires, whatever the
// risk level.
const CrisisMessage = "It sounds like you may be going through something really painful. " +
	"You don't have to face this alone: please reach out to someone you trust, contact a local crisis line, " +
	"or call your local emergency number if you are in immediate danger."

const defaultMessage = "Thank you for sharing how you feel."

var labelMessages = map[string]string{
	"positive": "It's good to see some positivity. Keep building on the things that are helping you feel this way.",
	"negative": "It seems like you're going through something difficult. Try taking a short break, talking to someone you trust, or doing a small activity that helps you relax.",
	"joy":      "It's good to see you feeling this way. Notice what helped today so you can come back to it.",
	"sadness":  "It sounds like things feel heavy right now. Be gentle with yourself, and consider sharing how you feel with someone close to you.",
	"anger":    "Frustration is a signal worth listening to. A short walk or a few slow breaths can help before deciding what to do next.",
	"fear":     "Feeling anxious or overwhelmed is exhausting. Try breaking things into one small next step and give yourself time to rest.",
	"surprise": "Unexpected things can be a lot to take in. Take a moment to settle before reacting.",
	"neutral":  "Thanks for checking in. Small routines like sleep, movement and breaks keep things steady.",
}

var riskSuffix = map[risk.Level]string{
	risk.Moderate: "You've shown some signs of strain recently. Planning regular breaks and protecting your rest could help.",
	risk.High:     "Your recent check-ins suggest a high level of strain. Consider talking with a counselor, doctor or another professional you trust.",
}

// Message builds the supportive text for a label and risk level.
func Message(label string, level risk.Level) string {
	text, ok := labelMessages[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		text = defaultMessage
	}
	if suffix, ok := riskSuffix[level]; ok {
		text += " " + suffix
	}
	return text
}

package crisis

import "strings"

// DefaultPhrases is the built-in crisis lexicon.
var DefaultPhrases = []string{
	"suicide",
	"suicidal",
	"kill myself",
	"end my life",
	"want to die",
	"better off dead",
	"no reason to live",
	"hopeless",
	"self harm",
	"self-harm",
	"hurt myself",
	"can't go on",
	"cannot go on",
}

// Detector flags acute-distress language by substring match. It does not
// look at classifier output or history.
type Detector struct {
	phrases []string
}

// New builds a Detector from phrases, or DefaultPhrases when none are given.
// Blank and duplicate phrases are dropped.
func New(phrases ...string) *Detector {
	if len(phrases) == 0 {
		phrases = DefaultPhrases
	}
	seen := make(map[string]struct{}, len(phrases))
	normalized := make([]string, 0, len(phrases))
	for _, phrase := range phrases {
		p := strings.ToLower(strings.TrimSpace(phrase))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return &Detector{phrases: normalized}
}

// Detect reports whether any phrase occurs in text, ignoring case.
func (d *Detector) Detect(text string) bool {
	normalized := strings.ToLower(text)
	if normalized == "" {
		return false
	}
	for _, phrase := range d.phrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	return false
}

// Matches returns every phrase found in text, in lexicon order.
func (d *Detector) Matches(text string) []string {
	normalized := strings.ToLower(text)
	if normalized == "" {
		return nil
	}
	var found []string
	for _, phrase := range d.phrases {
		if strings.Contains(normalized, phrase) {
			found = append(found, phrase)
		}
	}
	return found
}

// Phrases returns a copy of the lexicon.
func (d *Detector) Phrases() []string {
	return append([]string(nil), d.phrases...)
}

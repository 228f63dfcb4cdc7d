package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon is the on-disk form of the risk label and crisis phrase sets.
//
//	negative_emotions: [sadness, anger, fear]
//	crisis_phrases:
//	  - hopeless
//	  - want to die
type Lexicon struct {
	NegativeEmotions []string `yaml:"negative_emotions"`
	CrisisPhrases    []string `yaml:"crisis_phrases"`
}

// LoadLexicon reads a YAML lexicon file. Empty lists stay nil so the
// built-in defaults apply.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Lexicon{}, fmt.Errorf("read lexicon %s: %w", path, err)
	}

	var lexicon Lexicon
	if err := yaml.Unmarshal(data, &lexicon); err != nil {
		return Lexicon{}, fmt.Errorf("parse lexicon %s: %w", path, err)
	}
	if len(lexicon.NegativeEmotions) == 0 {
		lexicon.NegativeEmotions = nil
	}
	if len(lexicon.CrisisPhrases) == 0 {
		lexicon.CrisisPhrases = nil
	}
	return lexicon, nil
}

package classifier

import (
	"context"
	"fmt"

	"github.com/zhouzirui/neuroguard/backend/internal/config"
)

// FromConfig builds the configured classifier, wrapped with the heuristic
// fallback when enabled, and instrumented.
func FromConfig(ctx context.Context, cfg config.ClassifierConfig) (Classifier, error) {
	var primary Classifier

	switch cfg.Provider {
	case "", config.ProviderHeuristic:
		return Instrument(NewHeuristic()), nil
	case config.ProviderHuggingFace:
		hf, err := NewHuggingFace(HuggingFaceConfig{
			BaseURL:    cfg.HuggingFace.BaseURL,
			Model:      cfg.HuggingFace.Model,
			Token:      cfg.HuggingFace.Token,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.HuggingFace.MaxRetries,
			RateLimit:  cfg.HuggingFace.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		primary = hf
	case config.ProviderArk:
		chatModel, err := cfg.Ark.NewChatModel(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create ark chat model: %w", err)
		}
		chain, err := NewChain(ctx, "ark", chatModel, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		primary = chain
	case config.ProviderOpenAI:
		oa, err := NewOpenAI(OpenAIConfig{
			APIKey:  cfg.OpenAI.APIKey,
			Model:   cfg.OpenAI.Model,
			BaseURL: cfg.OpenAI.BaseURL,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		primary = oa
	default:
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.Provider)
	}

	// Each layer is instrumented on its own so metrics show which one answered.
	primary = Instrument(primary)
	if cfg.Fallback {
		return NewFallback(primary, Instrument(NewHeuristic())), nil
	}
	return primary, nil
}

package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

// Config aggregates all service settings.
type Config struct {
	Server     ServerConfig
	Classifier ClassifierConfig
	Risk       RiskConfig
	Session    SessionConfig
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	classifier, err := loadClassifierConfig()
	if err != nil {
		return nil, err
	}

	risk, err := loadRiskConfig()
	if err != nil {
		return nil, err
	}

	session, err := loadSessionConfig()
	if err != nil {
		return nil, err
	}

	return &Config{Server: server, Classifier: classifier, Risk: risk, Session: session}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr string
}

func loadServerConfig() (ServerConfig, error) {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// ":8080" and "127.0.0.1:8080" are used verbatim.
		return ServerConfig{Addr: port}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port}, nil
}

// Classifier providers.
const (
	ProviderHeuristic   = "heuristic"
	ProviderHuggingFace = "huggingface"
	ProviderArk         = "ark"
	ProviderOpenAI      = "openai"
)

// ClassifierConfig selects and configures the emotion classifier.
type ClassifierConfig struct {
	Provider string
	Fallback bool
	Timeout  time.Duration

	HuggingFace HuggingFaceConfig
	Ark         ArkConfig
	OpenAI      OpenAIConfig
}

// HuggingFaceConfig describes the hosted inference API.
type HuggingFaceConfig struct {
	Token      string
	Model      string
	BaseURL    string
	MaxRetries int
	RateLimit  float64
}

// ArkConfig describes the Ark chat model used as an LLM classifier.
type ArkConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
}

// OpenAIConfig describes an OpenAI-compatible chat completion endpoint.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Enabled reports whether the required Ark credentials are present.
func (c ArkConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates an Ark chat model from the configuration.
func (c ArkConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadClassifierConfig() (ClassifierConfig, error) {
	provider := strings.ToLower(getEnvOrDefault("CLASSIFIER_PROVIDER", ProviderHeuristic))
	switch provider {
	case ProviderHeuristic, ProviderHuggingFace, ProviderArk, ProviderOpenAI:
	default:
		return ClassifierConfig{}, fmt.Errorf("invalid CLASSIFIER_PROVIDER value %q", provider)
	}

	fallback, err := parseBoolEnv("CLASSIFIER_FALLBACK", true)
	if err != nil {
		return ClassifierConfig{}, err
	}

	timeoutSeconds := 15
	if timeout, err := parseOptionalIntEnv("CLASSIFIER_TIMEOUT"); err != nil {
		return ClassifierConfig{}, err
	} else if timeout != nil && *timeout > 0 {
		timeoutSeconds = *timeout
	}

	retries := 3
	if override, err := parseOptionalIntEnv("HF_MAX_RETRIES"); err != nil {
		return ClassifierConfig{}, err
	} else if override != nil {
		retries = *override
		if retries < 0 {
			retries = 0
		}
	}

	rateLimit := 5.0
	if override, err := parseOptionalFloatEnv("HF_RATE_LIMIT"); err != nil {
		return ClassifierConfig{}, err
	} else if override != nil {
		rateLimit = *override
	}

	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return ClassifierConfig{}, err
	}

	return ClassifierConfig{
		Provider: provider,
		Fallback: fallback,
		Timeout:  time.Duration(timeoutSeconds) * time.Second,
		HuggingFace: HuggingFaceConfig{
			Token:      strings.TrimSpace(os.Getenv("HF_API_TOKEN")),
			Model:      getEnvOrDefault("HF_MODEL", "j-hartmann/emotion-english-distilroberta-base"),
			BaseURL:    getEnvOrDefault("HF_BASE_URL", ""),
			MaxRetries: retries,
			RateLimit:  rateLimit,
		},
		Ark: ArkConfig{
			APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
			AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
			SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
			Model:       strings.TrimSpace(os.Getenv("Model")),
			BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
			Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
			Temperature: temperature,
		},
		OpenAI: OpenAIConfig{
			APIKey:  strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
			Model:   getEnvOrDefault("OPENAI_MODEL", "gpt-4o-mini"),
			BaseURL: getEnvOrDefault("OPENAI_BASE_URL", ""),
		},
	}, nil
}

// RiskConfig holds the static label and phrase sets. Nil slices mean the
// built-in defaults.
type RiskConfig struct {
	NegativeEmotions []string
	CrisisPhrases    []string
}

func loadRiskConfig() (RiskConfig, error) {
	var cfg RiskConfig

	if path := strings.TrimSpace(os.Getenv("RISK_LEXICON_FILE")); path != "" {
		lexicon, err := LoadLexicon(path)
		if err != nil {
			return RiskConfig{}, err
		}
		cfg.NegativeEmotions = lexicon.NegativeEmotions
		cfg.CrisisPhrases = lexicon.CrisisPhrases
	}

	if raw := strings.TrimSpace(os.Getenv("RISK_NEGATIVE_EMOTIONS")); raw != "" {
		cfg.NegativeEmotions = splitList(raw)
	}

	return cfg, nil
}

// SessionConfig bounds in-memory history.
type SessionConfig struct {
	HistoryLimit int
}

func loadSessionConfig() (SessionConfig, error) {
	limit, err := parseOptionalIntEnv("SESSION_HISTORY_LIMIT")
	if err != nil {
		return SessionConfig{}, err
	}
	if limit == nil || *limit < 0 {
		return SessionConfig{}, nil
	}
	return SessionConfig{HistoryLimit: *limit}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

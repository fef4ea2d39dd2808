package llm

import (
	"context"
	"time"
)

// Client generates free text for a prompt.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for an LLM provider.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	// BaseURL overrides the provider endpoint root.
	BaseURL     string
	MaxRetries  int
	RetryDelay  time.Duration
	CacheTTL    time.Duration
	Timeout     time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// Provider names.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
	defaultTimeout     = 40 * time.Second
)

func (cfg Config) temperature() float64 {
	if cfg.Temperature == 0 {
		return defaultTemperature
	}
	return cfg.Temperature
}

func (cfg Config) maxTokens() int {
	if cfg.MaxTokens == 0 {
		return defaultMaxTokens
	}
	return cfg.MaxTokens
}

func (cfg Config) timeout() time.Duration {
	if cfg.Timeout == 0 {
		return defaultTimeout
	}
	return cfg.Timeout
}

func (cfg Config) baseURL(def string) string {
	if cfg.BaseURL == "" {
		return def
	}
	return cfg.BaseURL
}

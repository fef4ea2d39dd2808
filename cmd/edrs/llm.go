package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/edrs/internal/llm"
)

// providerKeyEnv names the environment variable holding each provider's key.
var providerKeyEnv = map[string]string{
	llm.ProviderGemini:    "GEMINI_API_KEY",
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// createLLMClient creates the narrative LLM client from configuration.
// Without an API key it returns a nil client, and the generator writes
// the deterministic fallback conclusion instead.
func createLLMClient() (llm.Client, func(), error) {
	provider := strings.ToLower(viper.GetString("llm.provider"))
	if provider == "" {
		provider = llm.ProviderGemini
	}

	envName, ok := providerKeyEnv[provider]
	if !ok {
		return nil, nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}

	cfg := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		BaseURL:     viper.GetString("llm.base_url"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		MaxRetries:  viper.GetInt("llm.max_retries"),
		RetryDelay:  viper.GetDuration("llm.retry_delay"),
		CacheTTL:    viper.GetDuration("llm.cache_ttl"),
		Timeout:     viper.GetDuration("llm.timeout"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
	}

	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 60 // requests per minute
	}

	cfg.APIKey = viper.GetString("llm." + provider + "_api_key")
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv(envName)
	}
	if cfg.APIKey == "" {
		slog.Warn("No LLM API key configured, conclusions will use the fallback text",
			"provider", provider,
			"env", envName)
		return nil, func() {}, nil
	}

	client, err := llm.NewManagedClient(cfg, slog.Default())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	return client, client.Close, nil
}

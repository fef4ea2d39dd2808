package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/edrs/internal/common"
)

// ManagedClient wraps a provider client with rate limiting, retries, and
// an in-process response cache.
type ManagedClient struct {
	client      Client
	cache       *responseCache
	logger      *slog.Logger
	rateLimiter *rateLimiter
	retryOpts   common.RetryOptions
}

// NewManagedClient creates the provider client named by cfg and wraps it.
func NewManagedClient(cfg Config, logger *slog.Logger) (*ManagedClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return Wrap(client, cfg, logger), nil
}

// Wrap adds rate limiting, retries and caching to an existing client.
func Wrap(client Client, cfg Config, logger *slog.Logger) *ManagedClient {
	if logger == nil {
		logger = slog.Default()
	}

	retryOpts := common.RetryOptions{
		Logger:       logger,
		Operation:    "llm generate",
		MaxAttempts:  cfg.MaxRetries,
		InitialDelay: cfg.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
	if retryOpts.MaxAttempts == 0 {
		retryOpts.MaxAttempts = 3
	}
	if retryOpts.InitialDelay == 0 {
		retryOpts.InitialDelay = time.Second
	}

	return &ManagedClient{
		client:      client,
		cache:       newResponseCache(cfg.CacheTTL),
		logger:      logger,
		retryOpts:   retryOpts,
		rateLimiter: newRateLimiter(cfg.RateLimit),
	}
}

// Generate returns the completion for prompt, waiting on the rate limiter
// and retrying transient failures.
func (c *ManagedClient) Generate(ctx context.Context, prompt string) (string, error) {
	if text, found := c.cache.get(prompt); found {
		c.logger.Debug("cache hit for prompt", "prompt_chars", len(prompt))
		return text, nil
	}

	var text string
	err := common.WithRetry(ctx, func() error {
		if err := c.rateLimiter.wait(ctx); err != nil {
			return err
		}

		var genErr error
		text, genErr = c.client.Generate(ctx, prompt)
		if genErr != nil {
			c.logger.Warn("LLM request failed", "error", genErr)
		}
		return genErr
	}, c.retryOpts)
	if err != nil {
		return "", err
	}

	c.cache.set(prompt, text)
	return text, nil
}

// Close stops the cache janitor.
func (c *ManagedClient) Close() {
	c.cache.Close()
}

package llm

import "errors"

var (
	// ErrNoClient is returned when no provider is configured.
	ErrNoClient = errors.New("no LLM client configured")
	// ErrMissingAPIKey is returned by constructors without credentials.
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when a provider answers without text.
	ErrEmptyResponse = errors.New("empty response")
)

// Package llm provides text-generation clients for the narrative layer.
// It supports Gemini, OpenAI and Anthropic, with retry logic, rate limiting,
// and response caching layered on top by ManagedClient.
package llm

package llm

import (
	"context"
	"sync"
)

// MockClient is a scripted Client for tests.
type MockClient struct {
	// Respond, when set, computes the reply for each prompt.
	Respond func(prompt string) (string, error)
	Prompts []string
	// Replies are returned in order; the last one repeats.
	Replies []string
	Err     error
	mu      sync.Mutex
}

// Generate records the prompt and returns the scripted reply.
func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	call := len(m.Prompts)
	m.Prompts = append(m.Prompts, prompt)

	if m.Respond != nil {
		return m.Respond(prompt)
	}
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Replies) == 0 {
		return "", nil
	}
	if call >= len(m.Replies) {
		call = len(m.Replies) - 1
	}
	return m.Replies[call], nil
}

// Calls returns how many prompts were sent.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

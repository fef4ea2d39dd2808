package sheets

import (
	"context"
	"sync"

	"github.com/Veraticus/edrs/internal/service"
)

// MockWriter records every report it is asked to write. It satisfies
// service.ReportWriter.
type MockWriter struct {
	Err   error
	calls []WriteCall
	mu    sync.Mutex
}

// WriteCall is one recorded Write.
type WriteCall struct {
	Error  error
	Report *service.Report
}

// NewMockWriter returns a writer that accepts everything.
func NewMockWriter() *MockWriter {
	return &MockWriter{}
}

// Write records r and returns Err.
func (m *MockWriter) Write(_ context.Context, r *service.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, WriteCall{Report: r, Error: m.Err})
	return m.Err
}

// SetWriteError makes later writes fail with err.
func (m *MockWriter) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}

// GetWriteCalls returns a copy of the recorded calls.
func (m *MockWriter) GetWriteCalls() []WriteCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]WriteCall(nil), m.calls...)
}

// LastReport is the most recently written report, or nil.
func (m *MockWriter) LastReport() *service.Report {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return nil
	}
	return m.calls[len(m.calls)-1].Report
}

// Reset forgets the recorded calls and the configured error.
func (m *MockWriter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.Err = nil
}

// AssertWriteCalled fails t unless Write ran exactly n times.
func (m *MockWriter) AssertWriteCalled(t interface{ Fatalf(string, ...any) }, n int) {
	if got := len(m.GetWriteCalls()); got != n {
		t.Fatalf("expected Write to be called %d times, but was called %d times", n, got)
	}
}

package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	buf bytes.Buffer
	mu  sync.Mutex
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func waitDone(t *testing.T, ctx context.Context) {
	t.Helper()
	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context was not canceled")
	}
}

func TestInterruptHandler_Interrupt(t *testing.T) {
	tests := []struct {
		name string
		hint string
		want []string
		not  []string
	}{
		{
			name: "with hint",
			hint: "Finished narratives are cached. Re-run edrs narrate to continue.",
			want: []string{"Narration interrupted!", "Re-run edrs narrate"},
		},
		{
			name: "without hint",
			want: []string{"Narration interrupted!"},
			not:  []string{"Re-run"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &syncBuffer{}
			h := NewInterruptHandler(out, "Narration", tt.hint)
			ctx := h.Watch(context.Background())
			require.NoError(t, ctx.Err())

			h.interrupt()
			h.interrupt()

			waitDone(t, ctx)
			assert.True(t, h.Interrupted())
			assert.Equal(t, 1, strings.Count(out.String(), "interrupted!"))
			for _, s := range tt.want {
				assert.Contains(t, out.String(), s)
			}
			for _, s := range tt.not {
				assert.NotContains(t, out.String(), s)
			}
		})
	}
}

func TestInterruptHandler_ParentCanceled(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Narration", "")

	parent, cancel := context.WithCancel(context.Background())
	ctx := h.Watch(parent)
	cancel()

	waitDone(t, ctx)
	time.Sleep(20 * time.Millisecond)
	assert.False(t, h.Interrupted())
	assert.Empty(t, out.String())
}

func TestInterruptHandler_Stop(t *testing.T) {
	out := &syncBuffer{}
	h := NewInterruptHandler(out, "Export", "")
	ctx := h.Watch(context.Background())

	h.Stop()

	waitDone(t, ctx)
	assert.False(t, h.Interrupted())
	assert.Empty(t, out.String())

	// Stop before Watch does nothing.
	NewInterruptHandler(nil, "Export", "").Stop()
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// InterruptHandler turns SIGINT or SIGTERM into context cancellation for a
// long-running task and tells the user what was kept.
type InterruptHandler struct {
	out    io.Writer
	cancel context.CancelFunc
	task   string
	hint   string
	fired  atomic.Bool
	notice sync.Once
}

// NewInterruptHandler reports on out. task names the work ("Narration")
// and hint, if set, says how to resume.
func NewInterruptHandler(out io.Writer, task, hint string) *InterruptHandler {
	if out == nil {
		out = os.Stderr
	}
	return &InterruptHandler{out: out, task: task, hint: hint}
}

// Watch returns a context canceled on the first signal. Call Stop when the
// task ends.
func (h *InterruptHandler) Watch(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	h.cancel = cancel

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			h.interrupt()
		case <-ctx.Done():
		}
	}()

	return ctx
}

func (h *InterruptHandler) interrupt() {
	h.fired.Store(true)
	h.notice.Do(func() {
		msg := "\n\n" + FormatWarning(h.task+" interrupted!") + "\n"
		if h.hint != "" {
			msg += FormatInfo(h.hint) + "\n"
		}
		_, _ = fmt.Fprint(h.out, msg)
	})
	if h.cancel != nil {
		h.cancel()
	}
}

// Stop releases the signal watcher. It is not an interruption.
func (h *InterruptHandler) Stop() {
	if h.cancel != nil {
		h.cancel()
	}
}

// Interrupted reports whether a signal arrived.
func (h *InterruptHandler) Interrupted() bool {
	return h.fired.Load()
}

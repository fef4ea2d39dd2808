package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand.
type fakeClock struct {
	t  time.Time
	mu sync.Mutex
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestLimiter(perMinute int) (*rateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	rl := newRateLimiter(perMinute)
	rl.now = clock.now
	rl.last = clock.now()
	return rl, clock
}

func TestRateLimiter_Reserve(t *testing.T) {
	rl, clock := newTestLimiter(6)

	for i := 0; i < 6; i++ {
		assert.Zero(t, rl.reserve(), "burst request %d", i+1)
	}
	assert.Equal(t, 10*time.Second, rl.reserve())

	clock.advance(4 * time.Second)
	assert.Equal(t, 6*time.Second, rl.reserve())

	clock.advance(6 * time.Second)
	assert.Zero(t, rl.reserve())
	assert.Equal(t, 0, rl.available())
}

func TestRateLimiter_RefillCapped(t *testing.T) {
	rl, clock := newTestLimiter(6)
	for i := 0; i < 6; i++ {
		rl.reserve()
	}

	clock.advance(time.Hour)
	assert.Equal(t, 6, rl.available())
}

func TestRateLimiter_DefaultRate(t *testing.T) {
	rl := newRateLimiter(0)
	assert.Equal(t, 60, rl.available())
	assert.Equal(t, time.Second, rl.interval)
}

func TestRateLimiter_Wait(t *testing.T) {
	t.Run("waits for the next token", func(t *testing.T) {
		rl := newRateLimiter(1200) // one token every 50ms
		ctx := context.Background()
		for i := 0; i < 1200; i++ {
			require.NoError(t, rl.wait(ctx))
		}

		start := time.Now()
		require.NoError(t, rl.wait(ctx))
		assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
	})

	t.Run("context cancellation", func(t *testing.T) {
		rl := newRateLimiter(1)
		require.NoError(t, rl.wait(context.Background()))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error)
		go func() {
			done <- rl.wait(ctx)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		err := <-done
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("concurrent callers share the bucket", func(t *testing.T) {
		rl := newRateLimiter(100)
		ctx := context.Background()

		var acquired int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 10; j++ {
					if rl.wait(ctx) == nil {
						atomic.AddInt32(&acquired, 1)
					}
				}
			}()
		}
		wg.Wait()

		assert.Equal(t, int32(100), atomic.LoadInt32(&acquired))
		assert.Equal(t, 0, rl.available())
	})
}

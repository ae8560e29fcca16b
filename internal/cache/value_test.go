package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestValue_HitWithinTTL(t *testing.T) {
	clock := newFakeClock()
	var calls atomic.Int32
	v := NewValue(time.Minute, func(context.Context) ([]int, error) {
		calls.Add(1)
		return []int{1, 2}, nil
	}, WithClock[[]int](clock.Now))

	got, state, err := v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Refreshed, state)
	assert.Equal(t, []int{1, 2}, got)

	clock.Advance(59 * time.Second)
	_, state, err = v.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Hit, state)
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(time.Second)
	_, state, _ = v.Get(context.Background())
	assert.Equal(t, Refreshed, state)
	assert.Equal(t, int32(2), calls.Load())
}

func TestValue_CoalescesConcurrentMisses(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	v := NewValue(time.Minute, func(context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "catalog", nil
	})

	const n = 20
	var started, done sync.WaitGroup
	results := make([]string, n)
	for i := range n {
		started.Add(1)
		done.Add(1)
		go func() {
			defer done.Done()
			started.Done()
			results[i], _, _ = v.Get(context.Background())
		}()
	}
	started.Wait()
	// Give the goroutines a moment to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, "catalog", r)
	}
}

func TestValue_StaleServe(t *testing.T) {
	clock := newFakeClock()
	fail := false
	v := NewValue(time.Minute, func(context.Context) (string, error) {
		if fail {
			return "", errors.New("upstream down")
		}
		return "good", nil
	}, WithClock[string](clock.Now))

	_, _, err := v.Get(context.Background())
	require.NoError(t, err)
	first, _ := v.Peek()

	fail = true
	clock.Advance(2 * time.Minute)

	got, state, err := v.Get(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Stale, state)
	assert.Equal(t, "good", got)

	after, _ := v.Peek()
	assert.Equal(t, first.StoredAt, after.StoredAt, "stale-serve must not touch storedAt")
	assert.False(t, v.Fresh())
}

func TestValue_EmptyOnFirstFailure(t *testing.T) {
	v := NewValue(time.Minute, func(context.Context) ([]string, error) {
		return nil, errors.New("timeout")
	}, WithEmpty([]string{}))

	got, state, err := v.Get(context.Background())
	assert.Error(t, err)
	assert.Equal(t, Empty, state)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, ok := v.Peek()
	assert.False(t, ok)
}

func TestValue_RefreshForcesProduce(t *testing.T) {
	var calls atomic.Int32
	v := NewValue(time.Hour, func(context.Context) (int32, error) {
		return calls.Add(1), nil
	})

	got, _, _ := v.Get(context.Background())
	assert.Equal(t, int32(1), got)

	got, state, err := v.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Refreshed, state)
	assert.Equal(t, int32(2), got)
}

func TestValue_ProducerIgnoresCallerCancellation(t *testing.T) {
	v := NewValue(time.Minute, func(ctx context.Context) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return "ok", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, state, err := v.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, Refreshed, state)
	assert.Equal(t, "ok", got)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "hit", Hit.String())
	assert.Equal(t, "refreshed", Refreshed.String())
	assert.Equal(t, "stale", Stale.String())
	assert.Equal(t, "empty", Empty.String())
}

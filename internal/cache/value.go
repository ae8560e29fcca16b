// Package cache provides the two in-memory caches the server relies on: a
// single time-bounded value with coalesced refresh and stale-serve, and a
// bounded keyed map with insertion-order eviction.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// State describes how a Value.Get call was satisfied.
type State int

const (
	// Hit means a fresh entry was returned without calling the producer.
	Hit State = iota
	// Refreshed means the producer ran and its result was stored.
	Refreshed
	// Stale means the producer failed and the previous entry was returned.
	Stale
	// Empty means the producer failed and there was nothing to fall back to.
	Empty
)

func (s State) String() string {
	switch s {
	case Hit:
		return "hit"
	case Refreshed:
		return "refreshed"
	case Stale:
		return "stale"
	default:
		return "empty"
	}
}

// Producer computes a fresh value. It runs detached from the caller's
// cancellation, so a client going away never aborts a shared refresh.
type Producer[T any] func(ctx context.Context) (T, error)

// Entry is an immutable stored value.
type Entry[T any] struct {
	Value    T
	StoredAt time.Time
}

// Value holds one time-bounded value. Concurrent misses share a single
// producer call; if the producer fails the last good value is served.
type Value[T any] struct {
	ttl     time.Duration
	produce Producer[T]
	now     func() time.Time
	empty   T

	entry atomic.Pointer[Entry[T]]
	group singleflight.Group
}

// Option configures a Value.
type Option[T any] func(*Value[T])

// WithClock replaces time.Now, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(v *Value[T]) { v.now = now }
}

// WithEmpty sets what Get returns when the producer fails with no prior entry.
func WithEmpty[T any](empty T) Option[T] {
	return func(v *Value[T]) { v.empty = empty }
}

// NewValue creates a Value that refreshes through produce once ttl has elapsed.
func NewValue[T any](ttl time.Duration, produce Producer[T], opts ...Option[T]) *Value[T] {
	v := &Value[T]{ttl: ttl, produce: produce, now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Get returns the current value, producing a new one if the stored entry is
// missing or expired. The returned error is the producer's failure, if any;
// the value is always usable.
func (v *Value[T]) Get(ctx context.Context) (T, State, error) {
	if e := v.entry.Load(); e != nil && v.fresh(e) {
		return e.Value, Hit, nil
	}
	return v.refresh(ctx, false)
}

// Refresh runs the producer even if the stored entry is fresh. Failure
// handling matches Get.
func (v *Value[T]) Refresh(ctx context.Context) (T, State, error) {
	return v.refresh(ctx, true)
}

// Peek returns the stored entry without producing. ok is false if nothing
// has been stored yet.
func (v *Value[T]) Peek() (Entry[T], bool) {
	e := v.entry.Load()
	if e == nil {
		return Entry[T]{}, false
	}
	return *e, true
}

// Fresh reports whether the stored entry is within its TTL.
func (v *Value[T]) Fresh() bool {
	e := v.entry.Load()
	return e != nil && v.fresh(e)
}

func (v *Value[T]) fresh(e *Entry[T]) bool {
	return v.now().Sub(e.StoredAt) < v.ttl
}

type outcome[T any] struct {
	value T
	state State
}

func (v *Value[T]) refresh(ctx context.Context, force bool) (T, State, error) {
	detached := context.WithoutCancel(ctx)
	res, err, _ := v.group.Do("value", func() (any, error) {
		// A caller that queued behind a just-finished refresh sees its result.
		if e := v.entry.Load(); !force && e != nil && v.fresh(e) {
			return outcome[T]{e.Value, Hit}, nil
		}

		value, err := v.produce(detached)
		if err != nil {
			if e := v.entry.Load(); e != nil {
				return outcome[T]{e.Value, Stale}, err
			}
			return outcome[T]{v.empty, Empty}, err
		}

		v.entry.Store(&Entry[T]{Value: value, StoredAt: v.now()})
		return outcome[T]{value, Refreshed}, nil
	})

	o, _ := res.(outcome[T])
	return o.value, o.state, err
}

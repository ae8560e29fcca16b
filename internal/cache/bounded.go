package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Bounded is a string-keyed TTL map holding at most maxEntries values. When
// full, inserting a new key evicts the oldest inserted key; reads do not
// change eviction order. Expired entries are never served.
type Bounded[V any] struct {
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
	onEvict    func(key string)

	mu    sync.Mutex
	items map[string]*list.Element
	order *list.List // front is oldest insertion

	group singleflight.Group
}

type boundedItem[V any] struct {
	key      string
	value    V
	storedAt time.Time
}

// BoundedOption configures a Bounded cache.
type BoundedOption func(*boundedOptions)

type boundedOptions struct {
	now     func() time.Time
	onEvict func(string)
}

// WithBoundedClock replaces time.Now, for tests.
func WithBoundedClock(now func() time.Time) BoundedOption {
	return func(o *boundedOptions) { o.now = now }
}

// WithEvictHook is called, without locks held, for each capacity eviction.
func WithEvictHook(fn func(key string)) BoundedOption {
	return func(o *boundedOptions) { o.onEvict = fn }
}

// NewBounded creates a Bounded cache. maxEntries below 1 is treated as 1.
func NewBounded[V any](ttl time.Duration, maxEntries int, opts ...BoundedOption) *Bounded[V] {
	o := boundedOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Bounded[V]{
		ttl:        ttl,
		maxEntries: max(maxEntries, 1),
		now:        o.now,
		onEvict:    o.onEvict,
		items:      make(map[string]*list.Element),
		order:      list.New(),
	}
}

// Get returns the value for key if present and unexpired.
func (b *Bounded[V]) Get(key string) (V, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	el, ok := b.items[key]
	if !ok {
		var zero V
		return zero, false
	}
	item := el.Value.(*boundedItem[V])
	if b.now().Sub(item.storedAt) >= b.ttl {
		b.order.Remove(el)
		delete(b.items, key)
		var zero V
		return zero, false
	}
	return item.value, true
}

// Set stores value under key as the newest insertion.
func (b *Bounded[V]) Set(key string, value V) {
	var evicted []string

	b.mu.Lock()
	if el, ok := b.items[key]; ok {
		b.order.Remove(el)
		delete(b.items, key)
	}
	for b.order.Len() >= b.maxEntries {
		oldest := b.order.Front()
		k := oldest.Value.(*boundedItem[V]).key
		b.order.Remove(oldest)
		delete(b.items, k)
		evicted = append(evicted, k)
	}
	b.items[key] = b.order.PushBack(&boundedItem[V]{key: key, value: value, storedAt: b.now()})
	b.mu.Unlock()

	if b.onEvict != nil {
		for _, k := range evicted {
			b.onEvict(k)
		}
	}
}

// GetOrLoad returns the cached value for key, or calls load and stores its
// result. Concurrent misses for the same key share one load call, which runs
// detached from the caller's cancellation. A load error is returned and
// nothing is stored. hit reports whether the value came from the cache.
func (b *Bounded[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (value V, hit bool, err error) {
	if v, ok := b.Get(key); ok {
		return v, true, nil
	}

	detached := context.WithoutCancel(ctx)
	res, err, _ := b.group.Do(key, func() (any, error) {
		v, err := load(detached)
		if err != nil {
			return v, err
		}
		b.Set(key, v)
		return v, nil
	})
	value, _ = res.(V)
	return value, false, err
}

// Len returns the number of stored entries, including expired ones not yet
// removed.
func (b *Bounded[V]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.order.Len()
}

// Keys returns the stored keys from oldest to newest insertion.
func (b *Bounded[V]) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, b.order.Len())
	for el := b.order.Front(); el != nil; el = el.Next() {
		keys = append(keys, el.Value.(*boundedItem[V]).key)
	}
	return keys
}

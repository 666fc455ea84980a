package cache

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// Clock abstracts time.Now so TTL behavior is testable without real timers
type Clock func() time.Time

// Loader fetches a fresh value from the backing source
type Loader[T any] func(ctx context.Context) (T, error)

// TTL is a read-mostly single-value cache with time-based expiry. A stale
// read during refresh is tolerated; if the loader fails and a previous value
// exists, the stale value is served and the failure is logged.
type TTL[T any] struct {
	mu        sync.RWMutex
	value     T
	loaded    bool
	fetchedAt time.Time

	ttl   time.Duration
	clock Clock
	load  Loader[T]
}

type Option[T any] func(*TTL[T])

// WithClock replaces the wall clock, used by tests
func WithClock[T any](clock Clock) Option[T] {
	return func(c *TTL[T]) {
		c.clock = clock
	}
}

// New creates a TTL cache around the given loader
func New[T any](ttl time.Duration, load Loader[T], opts ...Option[T]) *TTL[T] {
	c := &TTL[T]{
		ttl:   ttl,
		clock: time.Now,
		load:  load,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value, refreshing it when the TTL has elapsed
func (c *TTL[T]) Get(ctx context.Context) (T, error) {
	c.mu.RLock()
	if c.loaded && c.clock().Sub(c.fetchedAt) < c.ttl {
		value := c.value
		c.mu.RUnlock()
		return value, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another goroutine may have refreshed while we waited for the lock
	if c.loaded && c.clock().Sub(c.fetchedAt) < c.ttl {
		return c.value, nil
	}

	value, err := c.load(ctx)
	if err != nil {
		if c.loaded {
			logging.From(ctx).Warn("cache refresh failed, serving stale value", "error", err)
			return c.value, nil
		}
		var zero T
		return zero, goerr.Wrap(err, "failed to load cache value")
	}

	c.value = value
	c.loaded = true
	c.fetchedAt = c.clock()
	return value, nil
}

// Invalidate drops the cached value, forcing a reload on the next Get
func (c *TTL[T]) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}

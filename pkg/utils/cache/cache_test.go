package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/leverege/meetingmind/pkg/utils/cache"
)

func TestTTLCache(t *testing.T) {
	ctx := context.Background()

	t.Run("loads once within TTL", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		calls := 0
		c := cache.New(5*time.Minute, func(ctx context.Context) ([]string, error) {
			calls++
			return []string{"Les Schwab", "Walmart"}, nil
		}, cache.WithClock[[]string](func() time.Time { return now }))

		v1, err := c.Get(ctx)
		gt.NoError(t, err)
		gt.A(t, v1).Length(2)

		now = now.Add(4 * time.Minute)
		_, err = c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, calls).Equal(1)
	})

	t.Run("reloads after TTL elapses", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		calls := 0
		c := cache.New(5*time.Minute, func(ctx context.Context) (int, error) {
			calls++
			return calls, nil
		}, cache.WithClock[int](func() time.Time { return now }))

		v, err := c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, v).Equal(1)

		now = now.Add(6 * time.Minute)
		v, err = c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, v).Equal(2)
	})

	t.Run("serves stale value when refresh fails", func(t *testing.T) {
		now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		calls := 0
		c := cache.New(5*time.Minute, func(ctx context.Context) (string, error) {
			calls++
			if calls > 1 {
				return "", errors.New("storage unavailable")
			}
			return "fresh", nil
		}, cache.WithClock[string](func() time.Time { return now }))

		v, err := c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, v).Equal("fresh")

		now = now.Add(10 * time.Minute)
		v, err = c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, v).Equal("fresh")
	})

	t.Run("first load failure is an error", func(t *testing.T) {
		c := cache.New(time.Minute, func(ctx context.Context) (string, error) {
			return "", errors.New("boom")
		})
		_, err := c.Get(ctx)
		gt.Error(t, err)
	})

	t.Run("invalidate forces reload", func(t *testing.T) {
		calls := 0
		c := cache.New(time.Hour, func(ctx context.Context) (int, error) {
			calls++
			return calls, nil
		})
		_, err := c.Get(ctx)
		gt.NoError(t, err)
		c.Invalidate()
		v, err := c.Get(ctx)
		gt.NoError(t, err)
		gt.V(t, v).Equal(2)
	})
}

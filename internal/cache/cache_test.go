package cache

import (
	"context"
	"errors"
	"testing"
)

func TestNilCacheIsNoOp(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var dest struct{}
	if err := c.Get(ctx, "k", &dest); !errors.Is(err, ErrMiss) {
		t.Errorf("Get on nil cache = %v, want ErrMiss", err)
	}

	// writes and invalidations on a nil cache must not panic
	c.Set(ctx, "k", 1, 0)
	c.Invalidate(ctx, "k")

	if err := c.Close(); err != nil {
		t.Errorf("Close on nil cache = %v, want nil", err)
	}
}

package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/ratelimit"
)

// Cooldown allows one use per key per window.
type Cooldown struct {
	limiter ratelimit.RateLimiter
	window  time.Duration
}

// NewCooldown returns nil when window is not positive, which disables the cooldown.
func NewCooldown(window time.Duration) *Cooldown {
	if window <= 0 {
		return nil
	}
	return &Cooldown{
		limiter: ratelimit.New(&ratelimit.Config{
			Rate:     1,
			Burst:    1,
			Interval: window,
		}),
		window: window,
	}
}

// Allow consumes the key's slot if it is free.
func (c *Cooldown) Allow(ctx context.Context, key string) bool {
	if c == nil {
		return true
	}
	return c.limiter.Allow(ctx, key)
}

func (c *Cooldown) Window() time.Duration {
	if c == nil {
		return 0
	}
	return c.window
}

func (c *Cooldown) Close() error {
	if c == nil {
		return nil
	}
	return c.limiter.Close()
}

// Package resilience wraps calls to external collaborators with a circuit
// breaker and a concurrency bulkhead. Calls are never retried.
package resilience

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/bulkhead"
	"github.com/felixgeelhaar/fortify/circuitbreaker"
	"go.uber.org/zap"
)

// Config holds guard settings
type Config struct {
	// Name labels log lines, usually the provider or backend name
	Name string

	// MaxConcurrent caps in-flight calls (default: 5)
	MaxConcurrent int

	// FailureThreshold is the consecutive failure count that opens the breaker (default: 3)
	FailureThreshold int

	// OpenTimeout is how long the breaker stays open (default: 30s)
	OpenTimeout time.Duration

	// QueueTimeout bounds the wait for a bulkhead slot (default: 30s)
	QueueTimeout time.Duration

	Logger *zap.Logger
}

// DefaultConfig returns defaults suited to chat command traffic
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxConcurrent:    5,
		FailureThreshold: 3,
		OpenTimeout:      30 * time.Second,
		QueueTimeout:     30 * time.Second,
	}
}

// Guard runs operations through a bulkhead inside a circuit breaker.
type Guard[T any] struct {
	breaker  circuitbreaker.CircuitBreaker[T]
	bulkhead bulkhead.Bulkhead[T]
}

func NewGuard[T any](cfg Config) *Guard[T] {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 5
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	threshold := cfg.FailureThreshold

	return &Guard[T]{
		breaker: circuitbreaker.New[T](circuitbreaker.Config{
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     cfg.OpenTimeout,
			ReadyToTrip: func(counts circuitbreaker.Counts) bool {
				return int(counts.ConsecutiveFailures) >= threshold
			},
			OnStateChange: func(from, to circuitbreaker.State) {
				logger.Warn("circuit breaker state change",
					zap.String("name", cfg.Name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		}),
		bulkhead: bulkhead.New[T](bulkhead.Config{
			MaxConcurrent: cfg.MaxConcurrent,
			MaxQueue:      cfg.MaxConcurrent * 2,
			QueueTimeout:  cfg.QueueTimeout,
		}),
	}
}

// Execute runs op once.
func (g *Guard[T]) Execute(ctx context.Context, op func(ctx context.Context) (T, error)) (T, error) {
	return g.breaker.Execute(ctx, func(ctx context.Context) (T, error) {
		return g.bulkhead.Execute(ctx, op)
	})
}

package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"
)

// BreakerConfig holds configuration for a provider circuit breaker
type BreakerConfig struct {
	MaxRequests uint32        // requests allowed in half-open state
	Interval    time.Duration // cyclic period of the closed state to clear counts
	Timeout     time.Duration // period of the open state before moving to half-open
	MinRequests uint32        // requests required before the failure ratio is considered
	MaxFailRate float64       // failure ratio that trips the breaker
}

// DefaultBreakerConfig trips after half of at least five requests fail
var DefaultBreakerConfig = BreakerConfig{
	MaxRequests: 1,
	Interval:    1 * time.Minute,
	Timeout:     30 * time.Second,
	MinRequests: 5,
	MaxFailRate: 0.5,
}

// Breaker wraps a Provider with a circuit breaker. Only retryable failures
// (network, server, rate limit, timeout) count against the provider; an
// unknown ticker or an unparsable page does not.
type Breaker struct {
	provider Provider
	cb       *gobreaker.CircuitBreaker[*Snapshot]
}

// NewBreaker creates a circuit breaker around p
func NewBreaker(p Provider, cfg BreakerConfig) *Breaker {
	settings := gobreaker.Settings{
		Name:        p.Name(),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= cfg.MinRequests && failureRatio >= cfg.MaxFailRate
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsRetryable(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state change",
				"provider", name,
				"from", from.String(),
				"to", to.String())
		},
	}

	return &Breaker{
		provider: p,
		cb:       gobreaker.NewCircuitBreaker[*Snapshot](settings),
	}
}

// Fetch runs the wrapped provider through the circuit breaker
func (b *Breaker) Fetch(ctx context.Context, ticker Ticker) (*Snapshot, error) {
	snap, err := b.cb.Execute(func() (*Snapshot, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return b.provider.Fetch(ctx, ticker)
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, NewUnavailableError(b.provider.Name(), err)
	}
	return snap, err
}

// Name returns the wrapped provider's name
func (b *Breaker) Name() string {
	return b.provider.Name()
}

// State returns the current breaker state, e.g. "closed"
func (b *Breaker) State() string {
	return b.cb.State().String()
}

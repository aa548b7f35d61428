// Package circuitbreaker provides a typed wrapper around sony/gobreaker.
package circuitbreaker

import (
	"time"

	"github.com/sony/gobreaker/v2"
)

// Config holds circuit breaker settings.
type Config struct {
	Name          string
	MaxRequests   uint32        // Requests allowed in half-open state
	Interval      time.Duration // Cyclic period to clear counts in closed state
	Timeout       time.Duration // Open state duration before half-open
	ReadyToTrip   func(counts gobreaker.Counts) bool
	OnStateChange func(name string, from, to gobreaker.State)
}

// DefaultConfig returns settings suited to exchange API calls:
// trip after 5 consecutive failures, retry after 30 seconds.
func DefaultConfig(name string) Config {
	return Config{
		Name:        name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
}

// CircuitBreaker wraps gobreaker.CircuitBreaker with a result type.
type CircuitBreaker[T any] struct {
	cb *gobreaker.CircuitBreaker[T]
}

// New creates a circuit breaker from the config.
func New[T any](cfg Config) *CircuitBreaker[T] {
	return &CircuitBreaker[T]{
		cb: gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
			Name:          cfg.Name,
			MaxRequests:   cfg.MaxRequests,
			Interval:      cfg.Interval,
			Timeout:       cfg.Timeout,
			ReadyToTrip:   cfg.ReadyToTrip,
			OnStateChange: cfg.OnStateChange,
		}),
	}
}

// Execute runs fn through the breaker.
func (c *CircuitBreaker[T]) Execute(fn func() (T, error)) (T, error) {
	return c.cb.Execute(fn)
}

// State returns the current breaker state.
func (c *CircuitBreaker[T]) State() gobreaker.State {
	return c.cb.State()
}

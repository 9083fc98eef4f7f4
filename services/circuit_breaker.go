package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"sentiment-edge/observability"
)

// Breaker names for the external services this module talks to.
const (
	BreakerAlpaca  = "alpaca"
	BreakerFinnhub = "finnhub"
	BreakerBedrock = "bedrock"
	BreakerFinBERT = "finbert"
	BreakerFeeds   = "feeds"
)

// CircuitBreakerConfig holds the per-breaker gobreaker tuning.
type CircuitBreakerConfig struct {
	MaxRequests uint32        // probe requests allowed while half-open
	Interval    time.Duration // closed-state window before counts reset
	Timeout     time.Duration // open-state duration before a half-open probe
}

// DefaultCircuitBreakerConfig is the tuning used by the global registry.
var DefaultCircuitBreakerConfig = CircuitBreakerConfig{
	MaxRequests: 5,
	Interval:    1 * time.Minute,
	Timeout:     30 * time.Second,
}

// CircuitBreakerRegistry lazily creates one breaker per external service
// and shares it across all callers.
type CircuitBreakerRegistry struct {
	mu       sync.RWMutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
	config   CircuitBreakerConfig
}

func NewCircuitBreakerRegistry(config CircuitBreakerConfig) *CircuitBreakerRegistry {
	return &CircuitBreakerRegistry{
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
		config:   config,
	}
}

// GetBreaker returns the breaker for name, creating it on first use.
func (r *CircuitBreakerRegistry) GetBreaker(name string) *gobreaker.CircuitBreaker[any] {
	r.mu.RLock()
	cb, ok := r.breakers[name]
	r.mu.RUnlock()
	if ok {
		return cb
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if cb, ok = r.breakers[name]; ok {
		return cb
	}

	cb = gobreaker.NewCircuitBreaker[any](r.settings(name))
	r.breakers[name] = cb
	return cb
}

func (r *CircuitBreakerRegistry) settings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: r.config.MaxRequests,
		Interval:    r.config.Interval,
		Timeout:     r.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Half of at least five requests failing trips the breaker.
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && ratio >= 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			observability.Warn("circuit breaker state change",
				"breaker", name,
				"from", from.String(),
				"to", to.String())

			m := observability.GetMetrics()
			m.SetCircuitBreakerState(name, stateToInt(to))
			if to == gobreaker.StateOpen {
				m.RecordCircuitBreakerTrip(name)
			}
		},
	}
}

// Execute runs fn through the named breaker. A rejected call comes back
// as a plain error naming the service so callers can wrap it in their
// own taxonomy.
func (r *CircuitBreakerRegistry) Execute(ctx context.Context, name string, fn func() (any, error)) (any, error) {
	result, err := r.GetBreaker(name).Execute(func() (any, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return fn()
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState):
		observability.Warn("circuit breaker open, rejecting request", "breaker", name)
		return nil, fmt.Errorf("service %s unavailable: circuit breaker open", name)
	case errors.Is(err, gobreaker.ErrTooManyRequests):
		observability.Warn("circuit breaker half-open, too many requests", "breaker", name)
		return nil, fmt.Errorf("service %s unavailable: too many requests in half-open state", name)
	}

	return result, err
}

// CircuitBreakerStatus is a point-in-time snapshot of one breaker,
// surfaced by the health endpoint.
type CircuitBreakerStatus struct {
	Name             string `json:"name"`
	State            string `json:"state"`
	Requests         uint32 `json:"requests"`
	TotalSuccesses   uint32 `json:"total_successes"`
	TotalFailures    uint32 `json:"total_failures"`
	ConsecutiveSucc  uint32 `json:"consecutive_successes"`
	ConsecutiveFails uint32 `json:"consecutive_failures"`
}

// Status snapshots every breaker created so far.
func (r *CircuitBreakerRegistry) Status() map[string]CircuitBreakerStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()

	status := make(map[string]CircuitBreakerStatus, len(r.breakers))
	for name, cb := range r.breakers {
		c := cb.Counts()
		status[name] = CircuitBreakerStatus{
			Name:             name,
			State:            cb.State().String(),
			Requests:         c.Requests,
			TotalSuccesses:   c.TotalSuccesses,
			TotalFailures:    c.TotalFailures,
			ConsecutiveSucc:  c.ConsecutiveSuccesses,
			ConsecutiveFails: c.ConsecutiveFailures,
		}
	}
	return status
}

var (
	globalRegistry *CircuitBreakerRegistry
	registryOnce   sync.Once
)

// GetGlobalRegistry returns the process-wide registry, creating it with
// defaults on first use.
func GetGlobalRegistry() *CircuitBreakerRegistry {
	registryOnce.Do(func() {
		globalRegistry = NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	})
	return globalRegistry
}

// SetGlobalRegistry replaces the global registry. Tests use this to get
// a clean breaker set per test.
func SetGlobalRegistry(r *CircuitBreakerRegistry) {
	globalRegistry = r
}

// WithCircuitBreaker runs fn through the global registry's breaker for
// name, preserving fn's result type.
func WithCircuitBreaker[T any](ctx context.Context, name string, fn func() (T, error)) (T, error) {
	result, err := GetGlobalRegistry().Execute(ctx, name, func() (any, error) {
		return fn()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result.(T), nil
}

// stateToInt maps breaker states for the gauge: 0 closed, 1 half-open,
// 2 open.
func stateToInt(state gobreaker.State) int {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

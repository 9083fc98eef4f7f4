package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
)

func TestCircuitBreakerRegistry_GetBreaker(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	// First call should create a new breaker
	breaker1 := registry.GetBreaker("test-service")
	if breaker1 == nil {
		t.Fatal("expected breaker to be created")
	}

	// Second call should return the same breaker
	breaker2 := registry.GetBreaker("test-service")
	if breaker1 != breaker2 {
		t.Error("expected same breaker instance")
	}

	// Different name should create different breaker
	breaker3 := registry.GetBreaker("other-service")
	if breaker1 == breaker3 {
		t.Error("expected different breaker for different name")
	}
}

func TestCircuitBreakerRegistry_Execute(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	result, err := registry.Execute(ctx, "test-service", func() (any, error) {
		return "success", nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if result != "success" {
		t.Errorf("expected 'success', got %v", result)
	}

	expectedErr := errors.New("test error")
	result, err = registry.Execute(ctx, "test-service", func() (any, error) {
		return nil, expectedErr
	})
	if err == nil {
		t.Error("expected error")
	}
	if result != nil {
		t.Errorf("expected nil result, got %v", result)
	}
}

func TestCircuitBreakerRegistry_Execute_ContextCanceled(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	_, err := registry.Execute(ctx, "test-service", func() (any, error) {
		return "should not reach", nil
	})

	if err == nil {
		t.Error("expected error due to cancelled context")
	}
}

func TestCircuitBreakerRegistry_Status(t *testing.T) {
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)
	ctx := context.Background()

	_, _ = registry.Execute(ctx, "service-a", func() (any, error) {
		return "ok", nil
	})
	_, _ = registry.Execute(ctx, "service-b", func() (any, error) {
		return nil, errors.New("fail")
	})

	status := registry.Status()

	if len(status) != 2 {
		t.Errorf("expected 2 breakers in status, got %d", len(status))
	}
	if status["service-a"].TotalSuccesses != 1 {
		t.Errorf("expected 1 success for service-a, got %d", status["service-a"].TotalSuccesses)
	}
	if status["service-b"].TotalFailures != 1 {
		t.Errorf("expected 1 failure for service-b, got %d", status["service-b"].TotalFailures)
	}
}

func TestCircuitBreakerRegistry_TripsAfterFailures(t *testing.T) {
	config := CircuitBreakerConfig{
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     1 * time.Second,
	}
	registry := NewCircuitBreakerRegistry(config)
	ctx := context.Background()

	// Cause 5 failures to trip the breaker (ReadyToTrip requires 50% failure rate with >= 5 requests)
	for i := 0; i < 5; i++ {
		_, _ = registry.Execute(ctx, "failing-service", func() (any, error) {
			return nil, errors.New("fail")
		})
	}

	status := registry.Status()
	if status["failing-service"].State != "open" {
		t.Errorf("expected breaker to be open, got %s", status["failing-service"].State)
	}

	// Next call should fail immediately with circuit breaker open
	_, err := registry.Execute(ctx, "failing-service", func() (any, error) {
		return "should not execute", nil
	})

	if err == nil {
		t.Error("expected error due to open circuit breaker")
	}
	if !errors.Is(err, gobreaker.ErrOpenState) {
		// The error is wrapped, so check the message
		if err.Error() != "service failing-service unavailable: circuit breaker open" {
			t.Errorf("unexpected error: %v", err)
		}
	}
}

func TestWithCircuitBreaker_TypedResults(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))
	ctx := context.Background()

	result, err := WithCircuitBreaker(ctx, "typed-test", func() ([]int, error) {
		return []int{1, 2, 3}, nil
	})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("expected 3 items, got %d", len(result))
	}

	str, err := WithCircuitBreaker(ctx, "typed-test", func() (string, error) {
		return "", errors.New("boom")
	})
	if err == nil {
		t.Error("expected error")
	}
	if str != "" {
		t.Errorf("expected zero value, got %q", str)
	}
}

func TestBreakerConstants(t *testing.T) {
	if BreakerAlpaca != "alpaca" {
		t.Error("unexpected BreakerAlpaca constant")
	}
	if BreakerFinnhub != "finnhub" {
		t.Error("unexpected BreakerFinnhub constant")
	}
	if BreakerBedrock != "bedrock" {
		t.Error("unexpected BreakerBedrock constant")
	}
	if BreakerFinBERT != "finbert" {
		t.Error("unexpected BreakerFinBERT constant")
	}
	if BreakerFeeds != "feeds" {
		t.Error("unexpected BreakerFeeds constant")
	}
}

func TestCircuitBreakerRegistry_GetBreaker_Concurrent(t *testing.T) {
	// Concurrent GetBreaker calls for the same name exercise the double-check path
	registry := NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig)

	const goroutines = 100
	var wg sync.WaitGroup
	breakers := make(chan *gobreaker.CircuitBreaker[any], goroutines)

	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			breakers <- registry.GetBreaker("concurrent-breaker")
		}()
	}

	wg.Wait()
	close(breakers)

	var first *gobreaker.CircuitBreaker[any]
	for cb := range breakers {
		if first == nil {
			first = cb
		} else if cb != first {
			t.Error("all goroutines should get the same breaker instance")
		}
	}

	status := registry.Status()
	if len(status) != 1 {
		t.Errorf("expected 1 breaker, got %d", len(status))
	}
}

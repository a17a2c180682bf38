package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errProvider = errors.New("provider down")

func failing(context.Context) error { return errProvider }
func succeeding(context.Context) error { return nil }

func newTestBreaker(max uint32) (*CircuitBreaker, *time.Time) {
	clock := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", MaxFailures: max, OpenTimeout: 10 * time.Second})
	cb.now = func() time.Time { return clock }
	return cb, &clock
}

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb, _ := newTestBreaker(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := cb.Execute(ctx, failing); !errors.Is(err, errProvider) {
			t.Fatalf("call %d: expected provider error, got %v", i, err)
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("expected open after 3 failures, got %v", cb.State())
	}

	called := false
	err := cb.Execute(ctx, func(context.Context) error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if called {
		t.Errorf("fn must not run while open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb, _ := newTestBreaker(2)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	_ = cb.Execute(ctx, succeeding)
	_ = cb.Execute(ctx, failing)

	if cb.State() != StateClosed {
		t.Errorf("non-consecutive failures should not open the circuit, got %v", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	cb, clock := newTestBreaker(1)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %v", cb.State())
	}

	*clock = clock.Add(11 * time.Second)
	if err := cb.Execute(ctx, succeeding); err != nil {
		t.Fatalf("probe should be admitted, got %v", err)
	}
	if cb.State() != StateClosed {
		t.Errorf("successful probe should close the circuit, got %v", cb.State())
	}

	_ = cb.Execute(ctx, failing)
	*clock = clock.Add(11 * time.Second)
	_ = cb.Execute(ctx, failing)
	if cb.State() != StateOpen {
		t.Errorf("failed probe should reopen the circuit, got %v", cb.State())
	}
}

func TestCircuitBreaker_CallerCancellationIsNotAFailure(t *testing.T) {
	cb, _ := newTestBreaker(1)

	_ = cb.Execute(context.Background(), func(context.Context) error { return context.Canceled })

	if cb.State() != StateClosed {
		t.Errorf("caller cancellation should not trip the breaker, got %v", cb.State())
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		Name:        "payos",
		MaxFailures: 1,
		OnStateChange: func(name string, from, to CircuitState) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	_ = cb.Execute(context.Background(), failing)

	if len(transitions) != 1 || transitions[0] != "payos:closed->open" {
		t.Errorf("unexpected transitions %v", transitions)
	}
}

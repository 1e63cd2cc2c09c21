package resilience

import (
	"sync"
	"testing"
	"time"
)

func closedBreaker(threshold int, timeout time.Duration) *CircuitBreaker {
	return NewCircuitBreaker(BreakerConfig{
		Name:             "test",
		Enabled:          true,
		FailureThreshold: threshold,
		RecoveryTimeout:  timeout,
	})
}

func TestCircuitBreaker_StartsClosed(t *testing.T) {
	cb := NewCircuitBreaker(DefaultBreakerConfig("test"))

	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
	if !cb.CanExecute() {
		t.Error("closed breaker must permit execution")
	}
}

func TestCircuitBreaker_OpensAtThreshold(t *testing.T) {
	cb := closedBreaker(3, time.Second)

	cb.RecordFailure()
	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed below threshold, got %s", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("expected open at threshold, got %s", cb.State())
	}
	if cb.CanExecute() {
		t.Error("open breaker must reject execution")
	}
}

func TestCircuitBreaker_SuccessDecrementsFailures(t *testing.T) {
	cb := closedBreaker(3, time.Second)

	// Two failures, one success: count decays to 1 instead of resetting,
	// so one more failure still leaves the circuit closed.
	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	if got := cb.Snapshot().Failures; got != 1 {
		t.Fatalf("failures = %d, want 1", got)
	}

	cb.RecordFailure()
	if cb.State() != StateClosed {
		t.Errorf("expected closed at failures=2, got %s", cb.State())
	}

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Errorf("expected open at failures=3, got %s", cb.State())
	}
}

func TestCircuitBreaker_FullCycle(t *testing.T) {
	cb := closedBreaker(3, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		cb.RecordFailure()
	}
	if cb.CanExecute() {
		t.Fatal("expected rejection while open")
	}

	time.Sleep(60 * time.Millisecond)

	// The lazy check transitions open -> half-open.
	if !cb.CanExecute() {
		t.Fatal("expected half-open probe to be allowed after timeout")
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open, got %s", cb.State())
	}

	// A failure while probing reopens immediately.
	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatalf("expected open after half-open failure, got %s", cb.State())
	}

	time.Sleep(60 * time.Millisecond)
	if !cb.CanExecute() {
		t.Fatal("expected half-open probe after second timeout")
	}

	// min(threshold=3, 3) = 3 successes close the circuit.
	cb.RecordSuccess()
	cb.RecordSuccess()
	if cb.State() != StateHalfOpen {
		t.Fatalf("expected half-open after 2 successes, got %s", cb.State())
	}
	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after 3 successes, got %s", cb.State())
	}
	if got := cb.Snapshot().Failures; got != 0 {
		t.Errorf("failures after close = %d, want 0", got)
	}
}

func TestCircuitBreaker_HalfOpenSuccessCapBelowThreshold(t *testing.T) {
	cb := closedBreaker(2, 20*time.Millisecond)

	cb.RecordFailure()
	cb.RecordFailure()
	time.Sleep(30 * time.Millisecond)
	if !cb.CanExecute() {
		t.Fatal("expected half-open")
	}

	// min(threshold=2, 3) = 2 successes.
	cb.RecordSuccess()
	if cb.State() != StateClosed {
		cb.RecordSuccess()
	}
	if cb.State() != StateClosed {
		t.Errorf("expected closed, got %s", cb.State())
	}
}

func TestCircuitBreaker_RecoveryEstimate(t *testing.T) {
	cb := closedBreaker(1, 10*time.Second)
	cb.RecordFailure()

	est := cb.RecoveryEstimate()
	if est <= 0 || est > 10*time.Second {
		t.Errorf("estimate = %v, want (0, 10s]", est)
	}

	cb.Reset()
	if cb.RecoveryEstimate() != 0 {
		t.Error("closed breaker should estimate zero recovery")
	}
}

func TestCircuitBreaker_DisabledIsInert(t *testing.T) {
	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "test",
		Enabled:          false,
		FailureThreshold: 1,
		RecoveryTimeout:  time.Second,
	})

	cb.RecordFailure()
	cb.RecordFailure()

	if !cb.CanExecute() {
		t.Error("disabled breaker must always permit execution")
	}
	if cb.State() != StateClosed {
		t.Errorf("disabled breaker must not transition, got %s", cb.State())
	}
	// Recordings still accumulate for a later enable.
	if got := cb.Snapshot().Failures; got != 2 {
		t.Errorf("failures = %d, want 2", got)
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var mu sync.Mutex
	var changes []struct{ from, to State }

	cb := NewCircuitBreaker(BreakerConfig{
		Name:             "test",
		Enabled:          true,
		FailureThreshold: 1,
		RecoveryTimeout:  time.Second,
		OnStateChange: func(name string, from, to State) {
			mu.Lock()
			changes = append(changes, struct{ from, to State }{from, to})
			mu.Unlock()
		},
	})

	cb.RecordFailure()

	mu.Lock()
	defer mu.Unlock()
	if len(changes) != 1 || changes[0].from != StateClosed || changes[0].to != StateOpen {
		t.Errorf("unexpected transitions %v", changes)
	}
}

func TestCircuitBreaker_ConcurrentAccess(t *testing.T) {
	cb := NewCircuitBreaker(DefaultBreakerConfig("test"))

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cb.CanExecute()
			cb.RecordSuccess()
			cb.Snapshot()
		}()
	}
	wg.Wait()

	if cb.State() != StateClosed {
		t.Errorf("expected closed after all successes, got %s", cb.State())
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}

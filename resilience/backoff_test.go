package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_Exponential(t *testing.T) {
	b := Backoff{Initial: 100 * time.Millisecond, Max: 10 * time.Second, Factor: 2}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 100 * time.Millisecond},
		{1, 100 * time.Millisecond},
		{2, 200 * time.Millisecond},
		{3, 400 * time.Millisecond},
		{4, 800 * time.Millisecond},
	}

	for _, tc := range tests {
		if got := b.Duration(tc.attempt); got != tc.want {
			t.Errorf("attempt %d: expected %v, got %v", tc.attempt, tc.want, got)
		}
	}
}

func TestBackoff_CappedAtMax(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 3 * time.Second, Factor: 10}
	if got := b.Duration(5); got != 3*time.Second {
		t.Errorf("expected cap of 3s, got %v", got)
	}
	if got := b.Duration(10000); got != 3*time.Second {
		t.Errorf("expected cap for huge attempt, got %v", got)
	}
}

func TestBackoff_JitterBounds(t *testing.T) {
	low := Backoff{Initial: time.Second, Max: time.Minute, Factor: 2, Jitter: 0.1, Rand: func() float64 { return 0 }}
	high := Backoff{Initial: time.Second, Max: time.Minute, Factor: 2, Jitter: 0.1, Rand: func() float64 { return 0.999999 }}

	if got := low.Duration(1); got != 900*time.Millisecond {
		t.Errorf("expected 900ms with minimum jitter, got %v", got)
	}
	if got := high.Duration(1); got < time.Second || got > 1100*time.Millisecond {
		t.Errorf("expected about 1.1s with maximum jitter, got %v", got)
	}

	random := DefaultBackoff()
	for i := 0; i < 100; i++ {
		d := random.Duration(1)
		if d < 90*time.Millisecond || d > 110*time.Millisecond {
			t.Fatalf("jittered delay %v out of bounds", d)
		}
	}
}

func TestBackoff_Defaults(t *testing.T) {
	var b Backoff
	if got := b.Duration(1); got != 100*time.Millisecond {
		t.Errorf("expected default initial 100ms, got %v", got)
	}
	if got := b.Cap(time.Hour); got != 10*time.Second {
		t.Errorf("expected default cap 10s, got %v", got)
	}
	if got := b.Cap(time.Second); got != time.Second {
		t.Errorf("expected 1s to pass through, got %v", got)
	}
}

func TestWait_Elapses(t *testing.T) {
	start := time.Now()
	if err := Wait(context.Background(), 20*time.Millisecond); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("returned before the delay elapsed")
	}
}

func TestWait_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	err := Wait(ctx, 5*time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Error("wait was not interrupted by cancellation")
	}
}

func TestWait_AlreadyDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := Wait(ctx, 0); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled for a done context, got %v", err)
	}
}

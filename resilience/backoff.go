package resilience

import (
	"context"
	"math"
	"math/rand/v2"
	"time"
)

// Backoff computes exponential delays between attempts.
type Backoff struct {
	// Initial is the delay before the second attempt.
	Initial time.Duration
	// Max caps every computed delay.
	Max time.Duration
	// Factor is the multiplier applied per attempt.
	Factor float64
	// Jitter adds randomness to the delay (0.0 to 1.0).
	Jitter float64
	// Rand returns a value in [0, 1). Defaults to math/rand/v2.
	Rand func() float64
}

// DefaultBackoff returns sensible defaults: 100ms doubling up to 10s with 10% jitter.
func DefaultBackoff() Backoff {
	return Backoff{
		Initial: 100 * time.Millisecond,
		Max:     10 * time.Second,
		Factor:  2.0,
		Jitter:  0.1,
	}
}

// Duration returns the delay to wait after the given attempt (1-based):
// Initial * Factor^(attempt-1), jittered and capped at Max.
func (b Backoff) Duration(attempt int) time.Duration {
	b = b.withDefaults()
	if attempt < 1 {
		attempt = 1
	}

	d := float64(b.Initial) * math.Pow(b.Factor, float64(attempt-1))

	if b.Jitter > 0 {
		rnd := b.Rand
		if rnd == nil {
			rnd = rand.Float64
		}
		jitterRange := d * b.Jitter
		d += (rnd()*2 - 1) * jitterRange // between -jitter and +jitter
	}

	if d > float64(b.Max) || math.IsInf(d, 1) || math.IsNaN(d) {
		d = float64(b.Max)
	}
	if d < 0 {
		d = float64(b.Initial)
	}
	return time.Duration(d)
}

// Cap limits d to the configured maximum.
func (b Backoff) Cap(d time.Duration) time.Duration {
	b = b.withDefaults()
	if d > b.Max {
		return b.Max
	}
	return d
}

func (b Backoff) withDefaults() Backoff {
	if b.Initial <= 0 {
		b.Initial = 100 * time.Millisecond
	}
	if b.Max <= 0 {
		b.Max = 10 * time.Second
	}
	if b.Max < b.Initial {
		b.Max = b.Initial
	}
	if b.Factor < 1 {
		b.Factor = 2.0
	}
	return b
}

// Wait blocks for d or until ctx is done, whichever comes first.
// It returns ctx.Err() if the context ended the wait.
func Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package policy

import (
	"context"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/resilience"
)

// RetryOptions configures the retry policy.
type RetryOptions struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
	// InitialDelay is the delay after the first failed attempt.
	InitialDelay time.Duration `mapstructure:"initial_delay" yaml:"initial_delay"`
	// MaxDelay caps every delay, including Retry-After hints.
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay"`
	// Multiplier grows the delay per attempt.
	Multiplier float64 `mapstructure:"multiplier" yaml:"multiplier"`
	// Jitter randomizes each delay by up to this fraction. 0 disables it.
	Jitter float64 `mapstructure:"jitter" yaml:"jitter"`
	// StatusCodes are the response statuses that trigger another attempt.
	StatusCodes []int `mapstructure:"status_codes" yaml:"status_codes"`

	// OnRetry is called before waiting for the next attempt.
	OnRetry func(attempt int, resp *pipeline.Response, err error, delay time.Duration) `mapstructure:"-" yaml:"-"`
	// Logger receives a debug line per retry. Defaults to the "rest" logger.
	Logger *logger.Logger `mapstructure:"-" yaml:"-"`
}

// DefaultRetryStatusCodes are the statuses retried by default.
var DefaultRetryStatusCodes = []int{
	http.StatusRequestTimeout,
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// DefaultRetryOptions returns 3 attempts, 100ms doubling up to 10s with 10%
// jitter, on DefaultRetryStatusCodes.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       0.1,
		StatusCodes:  slices.Clone(DefaultRetryStatusCodes),
	}
}

// ApplyDefaults fills unset fields. Jitter is left as configured.
func (o *RetryOptions) ApplyDefaults() {
	def := DefaultRetryOptions()
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = def.MaxAttempts
	}
	if o.InitialDelay <= 0 {
		o.InitialDelay = def.InitialDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = def.MaxDelay
	}
	if o.Multiplier < 1 {
		o.Multiplier = def.Multiplier
	}
	if o.StatusCodes == nil {
		o.StatusCodes = def.StatusCodes
	}
}

// Retry returns a factory for a policy that re-sends failed attempts.
//
// Every attempt sends a clone of the request through the rest of the chain.
// An attempt is retried when it fails with a retryable error (see
// errors.IsRetryable) or answers with one of StatusCodes. Context errors
// are never retried. When attempts run out the last response or error is
// returned unchanged.
func Retry(opts RetryOptions) pipeline.Factory {
	opts.ApplyDefaults()
	opts.StatusCodes = slices.Clone(opts.StatusCodes)
	if opts.Logger == nil {
		opts.Logger = logger.Get("rest")
	}
	backoff := resilience.Backoff{
		Initial: opts.InitialDelay,
		Max:     opts.MaxDelay,
		Factor:  opts.Multiplier,
		Jitter:  opts.Jitter,
	}
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return &retryPolicy{next: next, opts: opts, backoff: backoff}
	})
}

type retryPolicy struct {
	next    pipeline.Policy
	opts    RetryOptions
	backoff resilience.Backoff
}

func (p *retryPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := p.next.Send(ctx, req.Clone())
		if attempt >= p.opts.MaxAttempts || !p.shouldRetry(ctx, resp, err) {
			return resp, err
		}

		delay := p.delay(attempt, resp)
		p.opts.Logger.WithContext(ctx).Debug("retrying request", p.retryFields(req, attempt, resp, err, delay))
		if p.opts.OnRetry != nil {
			p.opts.OnRetry(attempt, resp, err, delay)
		}
		if resp != nil {
			resp.Drain()
		}

		if err := resilience.Wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (p *retryPolicy) shouldRetry(ctx context.Context, resp *pipeline.Response, err error) bool {
	if err != nil {
		return ctx.Err() == nil && errors.IsRetryable(err)
	}
	return resp != nil && slices.Contains(p.opts.StatusCodes, resp.StatusCode)
}

// delay is the backoff for attempt, raised to a Retry-After hint on 429
// and 503 responses and capped at MaxDelay.
func (p *retryPolicy) delay(attempt int, resp *pipeline.Response) time.Duration {
	d := p.backoff.Duration(attempt)
	if resp == nil {
		return d
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return d
	}
	if hint := RetryAfter(resp.Header, time.Now()); hint > d {
		d = p.backoff.Cap(hint)
	}
	return d
}

func (p *retryPolicy) retryFields(req *pipeline.Request, attempt int, resp *pipeline.Response, err error, delay time.Duration) map[string]interface{} {
	fields := logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.Redacted(),
		logger.FieldAttempt, attempt,
		"delay_ms", delay.Milliseconds(),
	)
	if err != nil {
		return logger.MergeWithError(fields, err)
	}
	fields[logger.FieldStatus] = resp.StatusCode
	return fields
}

const maxRetryAfter = 24 * time.Hour

// RetryAfter parses a Retry-After header given in seconds or as an
// HTTP-date relative to now. It returns 0 when the header is absent,
// malformed or in the past.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return 0
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		switch {
		case secs <= 0:
			return 0
		case secs > int64(maxRetryAfter/time.Second):
			return maxRetryAfter
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(v); err == nil {
		if d := t.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

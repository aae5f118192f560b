package policy

import (
	"context"
	stderrors "errors"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/resilience"
)

// CircuitBreaker returns a factory for a policy that rejects requests
// while cb is open. Transport errors and 5xx responses count as failures;
// cancelled requests are not counted.
func CircuitBreaker(cb *resilience.CircuitBreaker) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if cb == nil {
			return next
		}
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			if err := cb.Allow(); err != nil {
				return nil, err
			}
			resp, err := next.Send(ctx, req)
			switch {
			case err == nil:
				cb.Record(resp.StatusCode < http.StatusInternalServerError)
			case !canceled(ctx, err):
				cb.Record(false)
			}
			return resp, err
		})
	})
}

// RateLimit returns a factory for a policy that waits on limiter before
// each request. The wait ends early with the context error.
func RateLimit(limiter *rate.Limiter) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if limiter == nil {
			return next
		}
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			if err := limiter.Wait(ctx); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, ctxErr
				}
				return nil, err
			}
			return next.Send(ctx, req)
		})
	})
}

// Bulkhead returns a factory for a policy that caps concurrent requests
// with b. The slot is held until the response headers arrive.
func Bulkhead(b *resilience.Bulkhead) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if b == nil {
			return next
		}
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			release, err := b.Acquire(ctx)
			if err != nil {
				return nil, err
			}
			defer release()
			return next.Send(ctx, req)
		})
	})
}

// canceled reports whether err is the caller's own cancellation.
func canceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && (stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded))
}

package policy

import (
	"context"
	"time"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/observability"
	"github.com/kbukum/restpipe/pipeline"
)

// Metrics returns a factory for a policy that records request count,
// duration, in-flight requests and failures on m. Nil m adds nothing.
func Metrics(m *observability.ClientMetrics) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if m == nil {
			return next
		}
		return &metricsPolicy{next: next, metrics: m}
	})
}

type metricsPolicy struct {
	next    pipeline.Policy
	metrics *observability.ClientMetrics
}

func (p *metricsPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	method, host := req.Method, req.URL.Host

	p.metrics.RecordStart(ctx)
	start := time.Now()
	resp, err := p.next.Send(ctx, req)
	if err != nil {
		p.metrics.RecordError(ctx, method, host, errors.KindOf(err).String())
		return resp, err
	}
	p.metrics.RecordResponse(ctx, method, host, resp.StatusCode, time.Since(start))
	return resp, nil
}

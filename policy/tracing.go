package policy

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/observability"
	"github.com/kbukum/restpipe/pipeline"
)

// Tracing returns a factory for a policy that wraps each send in a client
// span and injects the trace context into the request headers using the
// global propagator. A nil tp uses the global tracer provider.
func Tracing(tp trace.TracerProvider) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		provider := tp
		if provider == nil {
			provider = otel.GetTracerProvider()
		}
		return &tracingPolicy{
			next:   next,
			tracer: provider.Tracer(observability.InstrumentationName),
		}
	})
}

type tracingPolicy struct {
	next   pipeline.Policy
	tracer trace.Tracer
}

func (p *tracingPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	ctx, span := p.tracer.Start(ctx, observability.SpanClientSend,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(observability.AttrHTTPMethod, req.Method),
			attribute.String(observability.AttrURLFull, req.URL.Redacted()),
			attribute.String(observability.AttrServerAddress, req.URL.Hostname()),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := p.next.Send(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String(observability.AttrErrorKind, errors.KindOf(err).String()))
		span.SetStatus(codes.Error, err.Error())
		return resp, err
	}

	span.SetAttributes(attribute.Int(observability.AttrHTTPStatusCode, resp.StatusCode))
	if resp.StatusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	return resp, nil
}

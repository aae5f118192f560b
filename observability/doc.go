// Package observability wires OpenTelemetry tracing and metrics for the
// client runtime.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("billing"))
//	defer tp.Shutdown(ctx)
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("billing"))
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewClientMetrics(observability.Meter())
//	client, err := rest.NewBuilder().AddCustomPolicy(policy.Metrics(metrics))...
package observability

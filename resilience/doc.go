// Package resilience provides the fault-tolerance primitives used by the
// request pipeline.
//
//   - Backoff and Wait: exponential, jittered, capped delays and a
//     context-aware timer used between retry attempts
//   - CircuitBreaker: fails fast while a service is unhealthy
//   - Bulkhead: limits concurrent calls to isolate failures
//
// The primitives are wired into a client as request policies:
//
//	cb := resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("storage"))
//	client, err := rest.NewBuilder().
//	    AddCustomPolicy(policy.CircuitBreaker(cb)).
//	    AddCustomPolicy(policy.Bulkhead(resilience.NewBulkhead(resilience.DefaultBulkheadConfig("storage")))).
//	    ...
//	    Build()
package resilience

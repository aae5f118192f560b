// Package policy provides the request policies a client pipeline is built
// from.
//
// The builder composes the built-in policies in a fixed order:
//
//	UserAgent -> Retry -> Logging -> Credentials -> custom... -> transport
//
// Retry re-runs everything below it once per attempt, so logging and
// credentials observe every attempt individually.
//
// The remaining factories are meant to be registered as custom policies:
// RequestID, Headers, Tracing, Metrics, CircuitBreaker, RateLimit and
// Bulkhead. Stateful ones take a shared instance so several clients can
// share a breaker, limiter or bulkhead.
package policy

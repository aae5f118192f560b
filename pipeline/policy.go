package pipeline

import "context"

// Policy is one link of the request chain. Implementations typically
// modify the request, call the next policy and inspect the result; a
// policy may also short-circuit by returning without calling next.
//
// Send returns exactly one of a non-nil response or a non-nil error.
// Policies upstream rely on this and read resp.StatusCode whenever err is
// nil, so a short-circuiting policy must never return (nil, nil).
type Policy interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, req *Request) (*Response, error)

// Send calls f(ctx, req).
func (f PolicyFunc) Send(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Transport performs the actual network exchange. It is the final link
// of every chain.
type Transport interface {
	Send(ctx context.Context, req *Request) (*Response, error)
}

// Factory creates a policy bound to its successor. Factories are shared
// across requests and must be immutable. A factory that has nothing to do
// may return next (or nil) so it adds no link to the chain.
type Factory interface {
	Create(next Policy) Policy
}

// FactoryFunc adapts a function to the Factory interface.
type FactoryFunc func(next Policy) Policy

// Create calls f(next).
func (f FactoryFunc) Create(next Policy) Policy {
	return f(next)
}

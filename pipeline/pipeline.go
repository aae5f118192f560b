package pipeline

import (
	"context"
	"reflect"

	"github.com/kbukum/restpipe/errors"
)

// Pipeline is a composed chain of policies ending in a transport.
// It is immutable and safe for concurrent use.
type Pipeline struct {
	head  Policy
	links int
}

// Result is the outcome of an asynchronous send.
type Result struct {
	Response *Response
	Err      error
}

// New composes factories around transport. Factories are invoked once,
// from last to first, so the first factory becomes the outermost policy:
// with factories A, B, C a request passes A, B, C, the transport, and the
// response returns through C, B, A. Nil factories are skipped.
//
// Every link is handed a successor that turns a (nil, nil) result into an
// INTERNAL_ERROR, so observers never see a nil response without an error.
func New(transport Transport, factories ...Factory) *Pipeline {
	if transport == nil {
		panic("pipeline: nil transport")
	}

	var next Policy = transport
	links := 0
	for i := len(factories) - 1; i >= 0; i-- {
		if factories[i] == nil {
			continue
		}
		guarded := &checked{next: next}
		created := factories[i].Create(guarded)
		if created == nil || samePolicy(created, guarded) {
			continue
		}
		next = created
		links++
	}
	return &Pipeline{head: &checked{next: next}, links: links}
}

// Send sends req through the chain.
func (p *Pipeline) Send(ctx context.Context, req *Request) (*Response, error) {
	return p.head.Send(ctx, req)
}

// SendAsync sends req on a new goroutine. The returned channel receives
// exactly one Result and is never closed before it does.
func (p *Pipeline) SendAsync(ctx context.Context, req *Request) <-chan Result {
	ch := make(chan Result, 1)
	go func() {
		resp, err := p.Send(ctx, req)
		ch <- Result{Response: resp, Err: err}
	}()
	return ch
}

// Len returns the number of policies linked in front of the transport.
func (p *Pipeline) Len() int { return p.links }

// Chain composes factories into one, applied in order: the first factory
// is outermost. Chain(a, b, c).Create(p) is equivalent to
// a.Create(b.Create(c.Create(p))).
func Chain(factories ...Factory) Factory {
	return FactoryFunc(func(next Policy) Policy {
		for i := len(factories) - 1; i >= 0; i-- {
			if factories[i] == nil {
				continue
			}
			if created := factories[i].Create(next); created != nil {
				next = created
			}
		}
		return next
	})
}

// checked enforces that a link returns a response or an error.
type checked struct {
	next Policy
}

func (c *checked) Send(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.next.Send(ctx, req)
	if resp == nil && err == nil {
		return nil, errors.Internal(nil).WithDetail("reason", "policy returned neither response nor error")
	}
	return resp, err
}

// samePolicy reports whether a factory handed back its successor.
// Function-typed policies are not comparable and never match.
func samePolicy(a, b Policy) bool {
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

package testutil

import (
	"context"
	"sync"

	"github.com/kbukum/restpipe/pipeline"
)

// Recorder records the order in which policies see requests and responses.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Factory returns a policy factory that records "<name>:pre" before
// forwarding and "<name>:post" after the response returns.
func (r *Recorder) Factory(name string) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			r.Add(name + ":pre")
			resp, err := next.Send(ctx, req)
			r.Add(name + ":post")
			return resp, err
		})
	})
}

// Add records an event.
func (r *Recorder) Add(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// HeaderProbe returns a factory that captures the value of header as seen
// at its position in the chain, once per request.
func HeaderProbe(header string, seen *[]string, mu *sync.Mutex) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			mu.Lock()
			*seen = append(*seen, req.Header.Get(header))
			mu.Unlock()
			return next.Send(ctx, req)
		})
	})
}

package policy

import (
	"context"
	"maps"
	"net/http"

	"github.com/google/uuid"

	"github.com/kbukum/restpipe/pipeline"
)

// HeaderRequestID is the default header written by RequestID.
const HeaderRequestID = "X-Request-Id"

// RequestID returns a factory for a policy that tags each attempt with a
// fresh UUID in header (X-Request-Id when empty). A value set by the
// caller is kept.
func RequestID(header string) pipeline.Factory {
	if header == "" {
		header = HeaderRequestID
	}
	header = http.CanonicalHeaderKey(header)
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			if req.Header.Get(header) == "" {
				req.Header.Set(header, uuid.NewString())
			}
			return next.Send(ctx, req)
		})
	})
}

// Headers returns a factory for a policy that sets default headers on
// every request. Headers already present on the request win.
func Headers(defaults map[string]string) pipeline.Factory {
	defaults = maps.Clone(defaults)
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if len(defaults) == 0 {
			return next
		}
		return pipeline.PolicyFunc(func(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
			for k, v := range defaults {
				if req.Header.Get(k) == "" {
					req.Header.Set(k, v)
				}
			}
			return next.Send(ctx, req)
		})
	})
}

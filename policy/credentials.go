package policy

import (
	"context"

	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

// Credentials returns a factory for a policy that authorizes each attempt
// before forwarding it. Nil credentials add nothing to the chain.
//
// A credentials failure aborts the chain with an authentication error,
// which the retry policy never retries.
func Credentials(c credentials.Credentials) pipeline.Factory {
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if c == nil {
			return next
		}
		return &credentialsPolicy{next: next, creds: c}
	})
}

type credentialsPolicy struct {
	next  pipeline.Policy
	creds credentials.Credentials
}

func (p *credentialsPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	if err := p.creds.Authorize(ctx, req); err != nil {
		if errors.IsAuthentication(err) {
			return nil, err
		}
		return nil, errors.AuthenticationFailed(err)
	}
	return p.next.Send(ctx, req)
}

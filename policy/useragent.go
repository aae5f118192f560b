package policy

import (
	"context"

	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/version"
)

// HeaderUserAgent is the header written by the UserAgent policy.
const HeaderUserAgent = "User-Agent"

// UserAgent returns a factory for a policy that sets the User-Agent header
// to ua, replacing any value already present. An empty ua uses
// version.UserAgent().
func UserAgent(ua string) pipeline.Factory {
	if ua == "" {
		ua = version.UserAgent()
	}
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		return &userAgentPolicy{next: next, ua: ua}
	})
}

type userAgentPolicy struct {
	next pipeline.Policy
	ua   string
}

func (p *userAgentPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	req.Header.Set(HeaderUserAgent, p.ua)
	return p.next.Send(ctx, req)
}

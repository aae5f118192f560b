// Package pipeline composes request policies around an HTTP transport.
//
// A policy is a link in an onion-shaped chain: it sees the request on the
// way down and the response on the way back up. Factories build policies
// bound to their successor once, when a client is built; every request
// then flows through the same immutable chain.
//
//	p := pipeline.New(transport,
//	    policy.UserAgent(""),
//	    policy.Retry(policy.DefaultRetryOptions()),
//	    myFactory,
//	)
//	resp, err := p.Send(ctx, req)
package pipeline

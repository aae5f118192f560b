package credentials

import (
	"context"
	"encoding/base64"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

// Credentials attaches authorization material to an outgoing request.
// Implementations must be safe for concurrent use; Authorize is called
// once per attempt.
type Credentials interface {
	Authorize(ctx context.Context, req *pipeline.Request) error
}

// Func adapts a function to the Credentials interface.
type Func func(ctx context.Context, req *pipeline.Request) error

// Authorize calls f(ctx, req).
func (f Func) Authorize(ctx context.Context, req *pipeline.Request) error {
	return f(ctx, req)
}

// Bearer returns credentials that send a static bearer token.
func Bearer(token string) Credentials {
	return Func(func(_ context.Context, req *pipeline.Request) error {
		if token == "" {
			return errors.Unauthorized("bearer token is empty")
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil
	})
}

// Basic returns credentials that send HTTP basic authentication.
func Basic(username, password string) Credentials {
	encoded := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
	return Func(func(_ context.Context, req *pipeline.Request) error {
		if username == "" {
			return errors.Unauthorized("basic auth username is empty")
		}
		req.Header.Set("Authorization", "Basic "+encoded)
		return nil
	})
}

// APIKey returns credentials that send key in the named header
// (X-API-Key when header is empty).
func APIKey(header, key string) Credentials {
	if header == "" {
		header = "X-API-Key"
	}
	return Func(func(_ context.Context, req *pipeline.Request) error {
		if key == "" {
			return errors.Unauthorized("API key is empty")
		}
		req.Header.Set(header, key)
		return nil
	})
}

// APIKeyQuery returns credentials that send key as a query parameter.
func APIKeyQuery(param, key string) Credentials {
	return Func(func(_ context.Context, req *pipeline.Request) error {
		if key == "" {
			return errors.Unauthorized("API key is empty")
		}
		q := req.URL.Query()
		q.Set(param, key)
		req.URL.RawQuery = q.Encode()
		return nil
	})
}

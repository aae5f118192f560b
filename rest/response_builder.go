package rest

import (
	"net/http"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/serializer"
)

// ServiceResponse is a response whose status was registered with a
// ResponseBuilder. Body is the registered target, decoded.
type ServiceResponse struct {
	StatusCode int
	Header     http.Header
	Body       any
	Response   *pipeline.Response
}

// ResponseBuilder maps a response to a ServiceResponse or an error by
// status code. A builder is used for one response.
type ResponseBuilder interface {
	// Register marks status as expected and decodes its body into target
	// (a pointer), or skips decoding when target is nil.
	Register(status int, target any) ResponseBuilder
	// RegisterError decodes the body of unregistered statuses into target,
	// which is attached to the returned error under Details["model"].
	RegisterError(target any) ResponseBuilder
	// Build consumes the response body.
	Build(resp *pipeline.Response) (*ServiceResponse, error)
}

// ResponseBuilderFactory creates response builders bound to a serializer.
type ResponseBuilderFactory interface {
	NewResponseBuilder(s serializer.Adapter) ResponseBuilder
}

// DefaultResponseBuilderFactory creates the default ResponseBuilder.
type DefaultResponseBuilderFactory struct{}

// NewResponseBuilder implements ResponseBuilderFactory.
func (DefaultResponseBuilderFactory) NewResponseBuilder(s serializer.Adapter) ResponseBuilder {
	return &responseBuilder{serializer: s, targets: make(map[int]any)}
}

type responseBuilder struct {
	serializer  serializer.Adapter
	targets     map[int]any
	errorTarget any
}

func (b *responseBuilder) Register(status int, target any) ResponseBuilder {
	b.targets[status] = target
	return b
}

func (b *responseBuilder) RegisterError(target any) ResponseBuilder {
	b.errorTarget = target
	return b
}

func (b *responseBuilder) Build(resp *pipeline.Response) (*ServiceResponse, error) {
	if resp == nil {
		return nil, errors.Internal(nil).WithDetail("reason", "nil response")
	}
	data, err := resp.Bytes()
	if err != nil {
		host := ""
		if resp.Request != nil && resp.Request.URL != nil {
			host = resp.Request.URL.Host
		}
		return nil, errors.ConnectionFailed(host, err).WithDetail("reason", "reading response body")
	}

	target, ok := b.targets[resp.StatusCode]
	if !ok {
		appErr := errors.UnexpectedStatus(resp.StatusCode, data)
		if b.errorTarget != nil && b.serializer.Deserialize(data, b.errorTarget) == nil {
			appErr.WithDetail("model", b.errorTarget)
		}
		return nil, appErr
	}

	if target != nil {
		if err := b.serializer.Deserialize(data, target); err != nil {
			return nil, errors.DecodeFailed(resp.StatusCode, data, err)
		}
	}
	return &ServiceResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       target,
		Response:   resp,
	}, nil
}

package rest

import (
	"context"
	"crypto/tls"
	"io"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/serializer"
)

// Client holds an immutable client configuration and the pipeline built
// from it. It is safe for concurrent use.
type Client struct {
	baseURL                *url.URL
	userAgent              string
	readTimeout            time.Duration
	connectionTimeout      time.Duration
	maxIdleConnections     int
	tlsConfig              *tls.Config
	serializer             serializer.Adapter
	responseBuilderFactory ResponseBuilderFactory
	credentials            credentials.Credentials
	logLevel               policy.LogLevel
	logger                 *logger.Logger
	retry                  policy.RetryOptions
	transport              pipeline.Transport
	customPolicies         []pipeline.Factory
	headers                map[string]string
	pipeline               *pipeline.Pipeline
}

// BaseURL returns the base URL requests are resolved against.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// UserAgent returns the User-Agent header value sent with every request.
func (c *Client) UserAgent() string { return c.userAgent }

// ReadTimeout returns the response header timeout of the default transport.
func (c *Client) ReadTimeout() time.Duration { return c.readTimeout }

// ConnectionTimeout returns the dial and TLS handshake timeout of the
// default transport.
func (c *Client) ConnectionTimeout() time.Duration { return c.connectionTimeout }

// MaxIdleConnections returns the per-host idle connection limit, 0 for the
// net/http default.
func (c *Client) MaxIdleConnections() int { return c.maxIdleConnections }

// SerializerAdapter returns the adapter used for request and response bodies.
func (c *Client) SerializerAdapter() serializer.Adapter { return c.serializer }

// ResponseBuilderFactory returns the factory behind NewResponseBuilder.
func (c *Client) ResponseBuilderFactory() ResponseBuilderFactory { return c.responseBuilderFactory }

// Credentials returns the credentials applied to every request, or nil.
func (c *Client) Credentials() credentials.Credentials { return c.credentials }

// LogLevel returns the logging policy level.
func (c *Client) LogLevel() policy.LogLevel { return c.logLevel }

// Pipeline returns the composed policy chain.
func (c *Client) Pipeline() *pipeline.Pipeline { return c.pipeline }

// Logger returns the logger set with Builder.WithLogger, or nil when the
// "rest" component logger is used.
func (c *Client) Logger() *logger.Logger { return c.logger }

// RetryOptions returns a copy of the retry configuration.
func (c *Client) RetryOptions() policy.RetryOptions {
	opts := c.retry
	opts.StatusCodes = slices.Clone(opts.StatusCodes)
	return opts
}

// CustomPolicies returns a copy of the custom policy factories.
func (c *Client) CustomPolicies() []pipeline.Factory {
	return slices.Clone(c.customPolicies)
}

// NewBuilder returns a builder pre-filled with this client's configuration.
// Changes to the builder never affect c.
func (c *Client) NewBuilder() *Builder {
	return &Builder{
		baseURL:                c.baseURL.String(),
		userAgent:              c.userAgent,
		readTimeout:            c.readTimeout,
		connectionTimeout:      c.connectionTimeout,
		maxIdleConnections:     c.maxIdleConnections,
		tlsConfig:              c.tlsConfig,
		serializer:             c.serializer,
		responseBuilderFactory: c.responseBuilderFactory,
		credentials:            c.credentials,
		logLevel:               c.logLevel,
		logger:                 c.logger,
		retry:                  c.RetryOptions(),
		transport:              c.transport,
		customPolicies:         c.CustomPolicies(),
		headers:                maps.Clone(c.headers),
	}
}

// NewRequest creates a request for path resolved against the base URL.
// Absolute URLs are used as given. body may be nil, []byte, string or an
// io.Reader, which are sent as-is; any other value is serialized with the
// serializer adapter, which also sets Content-Type.
func (c *Client) NewRequest(method, path string, body any) (*pipeline.Request, error) {
	target, err := c.resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := pipeline.NewRequest(method, target)
	if err != nil {
		return nil, err
	}

	switch v := body.(type) {
	case nil:
	case []byte:
		req.SetBody(v)
	case string:
		req.SetBody([]byte(v))
	case io.Reader:
		if err := req.SetBodyReader(v); err != nil {
			return nil, errors.Internal(err).WithDetail("reason", "reading request body")
		}
	default:
		data, err := c.serializer.Serialize(v)
		if err != nil {
			return nil, errors.InvalidRequest("request body", "encode: "+err.Error()).WithCause(err)
		}
		req.SetBody(data)
		req.Header.Set("Content-Type", c.serializer.ContentType())
	}
	return req, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", errors.InvalidRequest("request path", err.Error()).WithCause(err)
	}
	if ref.IsAbs() {
		return ref.String(), nil
	}

	u := *c.baseURL
	u.User = nil
	if c.baseURL.User != nil {
		user := *c.baseURL.User
		u.User = &user
	}
	if ref.Path != "" {
		u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(ref.Path, "/")
		u.RawPath = ""
	}
	switch {
	case ref.RawQuery == "":
	case u.RawQuery == "":
		u.RawQuery = ref.RawQuery
	default:
		u.RawQuery += "&" + ref.RawQuery
	}
	u.Fragment = ""
	return u.String(), nil
}

// Send sends req through the pipeline.
func (c *Client) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	return c.pipeline.Send(ctx, req)
}

// SendAsync sends req on a new goroutine; see pipeline.Pipeline.SendAsync.
func (c *Client) SendAsync(ctx context.Context, req *pipeline.Request) <-chan pipeline.Result {
	return c.pipeline.SendAsync(ctx, req)
}

// NewResponseBuilder returns a response builder bound to the client's
// serializer.
func (c *Client) NewResponseBuilder() ResponseBuilder {
	return c.responseBuilderFactory.NewResponseBuilder(c.serializer)
}

// Do sends req and maps the response with rb.
func (c *Client) Do(ctx context.Context, req *pipeline.Request, rb ResponseBuilder) (*ServiceResponse, error) {
	if rb == nil {
		rb = c.NewResponseBuilder()
	}
	resp, err := c.Send(ctx, req)
	if err != nil {
		return nil, err
	}
	return rb.Build(resp)
}

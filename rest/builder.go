package rest

import (
	"crypto/tls"
	"maps"
	"net/url"
	"slices"
	"time"

	"github.com/kbukum/restpipe/credentials"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
	"github.com/kbukum/restpipe/policy"
	"github.com/kbukum/restpipe/serializer"
	"github.com/kbukum/restpipe/transport"
	"github.com/kbukum/restpipe/validation"
	"github.com/kbukum/restpipe/version"
)

const (
	defaultReadTimeout       = 10 * time.Second
	defaultConnectionTimeout = 10 * time.Second
)

// Builder stages the configuration of a Client. Setters return the same
// builder for chaining; Build may be called repeatedly and never changes
// the builder.
type Builder struct {
	baseURL                string
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

	err error
}

// NewBuilder returns a builder with the default settings: 10s read and
// connection timeouts, no logging, policy.DefaultRetryOptions and the
// version.UserAgent user agent.
func NewBuilder() *Builder {
	return &Builder{
		userAgent:         version.UserAgent(),
		readTimeout:       defaultReadTimeout,
		connectionTimeout: defaultConnectionTimeout,
		logLevel:          policy.LogNone,
		retry:             policy.DefaultRetryOptions(),
	}
}

// WithBaseURL sets the base URL requests are resolved against.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.baseURL = baseURL
	return b
}

// WithEnvironment sets the base URL to the endpoint of env.
func (b *Builder) WithEnvironment(env Environment, endpoint Endpoint) *Builder {
	if env == nil {
		b.baseURL = ""
		return b
	}
	b.baseURL = env.URL(endpoint)
	return b
}

// WithCredentials sets the credentials that authorize every attempt.
func (b *Builder) WithCredentials(c credentials.Credentials) *Builder {
	b.credentials = c
	return b
}

// WithUserAgent sets the User-Agent header value.
func (b *Builder) WithUserAgent(ua string) *Builder {
	b.userAgent = ua
	return b
}

// WithLogLevel sets how much of each exchange is logged.
func (b *Builder) WithLogLevel(level policy.LogLevel) *Builder {
	b.logLevel = level
	return b
}

// WithLogger sets the logger used by the logging and retry policies.
func (b *Builder) WithLogger(log *logger.Logger) *Builder {
	b.logger = log
	return b
}

// WithReadTimeout bounds the wait for response headers.
func (b *Builder) WithReadTimeout(d time.Duration) *Builder {
	b.readTimeout = d
	return b
}

// WithConnectionTimeout bounds connection setup.
func (b *Builder) WithConnectionTimeout(d time.Duration) *Builder {
	b.connectionTimeout = d
	return b
}

// WithMaxIdleConnections sizes the per-host idle connection pool of the
// default transport. It has no effect together with WithTransport.
func (b *Builder) WithMaxIdleConnections(n int) *Builder {
	b.maxIdleConnections = n
	return b
}

// WithTLSConfig sets the TLS configuration of the default transport. It is
// ignored when WithTransport is used.
func (b *Builder) WithTLSConfig(cfg *tls.Config) *Builder {
	b.tlsConfig = cfg
	return b
}

// WithRetryOptions replaces the retry configuration.
func (b *Builder) WithRetryOptions(opts policy.RetryOptions) *Builder {
	opts.StatusCodes = slices.Clone(opts.StatusCodes)
	b.retry = opts
	return b
}

// WithTransport replaces the default net/http transport.
func (b *Builder) WithTransport(t pipeline.Transport) *Builder {
	b.transport = t
	return b
}

// AddCustomPolicy appends a policy factory. Custom policies run after the
// built-in ones, in the order they were added.
func (b *Builder) AddCustomPolicy(f pipeline.Factory) *Builder {
	b.customPolicies = append(b.customPolicies, f)
	return b
}

// WithSerializerAdapter sets the serializer for request and response bodies.
func (b *Builder) WithSerializerAdapter(s serializer.Adapter) *Builder {
	b.serializer = s
	return b
}

// WithResponseBuilderFactory sets the factory for response builders.
func (b *Builder) WithResponseBuilderFactory(f ResponseBuilderFactory) *Builder {
	b.responseBuilderFactory = f
	return b
}

// WithOptions applies the non-zero fields of o. Default headers are sent
// through a Headers policy placed ahead of the custom policies.
func (b *Builder) WithOptions(o Options) *Builder {
	if o.BaseURL != "" {
		b.baseURL = o.BaseURL
	}
	if o.UserAgent != "" {
		b.userAgent = o.UserAgent
	}
	if o.LogLevel != "" {
		level, err := policy.ParseLogLevel(o.LogLevel)
		if err != nil {
			b.err = err
		} else {
			b.logLevel = level
		}
	}
	if o.ReadTimeout != 0 {
		b.readTimeout = o.ReadTimeout
	}
	if o.ConnectionTimeout != 0 {
		b.connectionTimeout = o.ConnectionTimeout
	}
	if o.MaxIdleConnections != 0 {
		b.maxIdleConnections = o.MaxIdleConnections
	}
	if o.Retry.MaxAttempts != 0 {
		b.retry.MaxAttempts = o.Retry.MaxAttempts
	}
	if o.Retry.InitialDelay != 0 {
		b.retry.InitialDelay = o.Retry.InitialDelay
	}
	if o.Retry.MaxDelay != 0 {
		b.retry.MaxDelay = o.Retry.MaxDelay
	}
	if len(o.Headers) > 0 {
		b.headers = maps.Clone(o.Headers)
	}
	if !o.TLS.IsZero() {
		cfg, err := o.TLS.Build()
		if err != nil {
			b.err = err
		} else {
			b.tlsConfig = cfg
		}
	}
	return b
}

// settings is the validated view of a builder. Fields are checked in
// declaration order and the first failure is reported.
type settings struct {
	BaseURL                string                 `validate:"required,url" label:"base URL"`
	ResponseBuilderFactory ResponseBuilderFactory `validate:"required" label:"response builder factory"`
	SerializerAdapter      serializer.Adapter     `validate:"required" label:"serializer adapter"`
	ReadTimeout            time.Duration          `validate:"gte=0" label:"read timeout"`
	ConnectionTimeout      time.Duration          `validate:"gte=0" label:"connection timeout"`
	MaxIdleConnections     int                    `validate:"gte=0" label:"max idle connections"`
	LogLevel               policy.LogLevel        `validate:"gte=0,lte=4" label:"log level"`
}

// Build validates the configuration and creates a Client whose pipeline
// runs UserAgent, Retry, Logging, Credentials, the custom policies and
// then the transport.
func (b *Builder) Build() (*Client, error) {
	if b.err != nil {
		return nil, b.err
	}
	if err := validation.Validate(settings{
		BaseURL:                b.baseURL,
		ResponseBuilderFactory: b.responseBuilderFactory,
		SerializerAdapter:      b.serializer,
		ReadTimeout:            b.readTimeout,
		ConnectionTimeout:      b.connectionTimeout,
		MaxIdleConnections:     b.maxIdleConnections,
		LogLevel:               b.logLevel,
	}); err != nil {
		return nil, err
	}

	base, err := url.Parse(b.baseURL)
	if err != nil {
		return nil, err
	}

	log := b.logger
	if log == nil {
		log = logger.Get("rest")
	}

	tr := b.transport
	if tr == nil {
		httpTransport, err := transport.New(transport.Config{
			ConnectionTimeout:  b.connectionTimeout,
			ReadTimeout:        b.readTimeout,
			MaxIdleConnections: b.maxIdleConnections,
			TLSConfig:          b.tlsConfig,
		})
		if err != nil {
			return nil, err
		}
		tr = httpTransport
	}

	retry := b.retry
	retry.StatusCodes = slices.Clone(retry.StatusCodes)
	if retry.Logger == nil {
		retry.Logger = log
	}

	custom := slices.Clone(b.customPolicies)
	factories := []pipeline.Factory{
		policy.UserAgent(b.userAgent),
		policy.Retry(retry),
		policy.Logging(b.logLevel, log),
		policy.Credentials(b.credentials),
	}
	if len(b.headers) > 0 {
		factories = append(factories, policy.Headers(b.headers))
	}
	factories = append(factories, custom...)

	return &Client{
		baseURL:                base,
		userAgent:              b.userAgent,
		readTimeout:            b.readTimeout,
		connectionTimeout:      b.connectionTimeout,
		maxIdleConnections:     b.maxIdleConnections,
		tlsConfig:              b.tlsConfig,
		serializer:             b.serializer,
		responseBuilderFactory: b.responseBuilderFactory,
		credentials:            b.credentials,
		logLevel:               b.logLevel,
		logger:                 b.logger,
		retry:                  b.retry,
		transport:              b.transport,
		customPolicies:         custom,
		headers:                b.headers,
		pipeline:               pipeline.New(tr, factories...),
	}, nil
}

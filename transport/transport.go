package transport

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http/httpproxy"
	"golang.org/x/net/http2"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/pipeline"
)

// Config configures the HTTP transport.
type Config struct {
	// ConnectionTimeout bounds dialing and the TLS handshake. 0 means no limit.
	ConnectionTimeout time.Duration
	// ReadTimeout bounds the wait for response headers once the request is
	// written. 0 means no limit.
	ReadTimeout time.Duration
	// MaxIdleConnections sizes the idle connection pool per host.
	// 0 keeps the net/http default.
	MaxIdleConnections int
	// TLSConfig overrides the default TLS configuration.
	TLSConfig *tls.Config
	// Proxy overrides proxy settings read from HTTP_PROXY, HTTPS_PROXY and
	// NO_PROXY.
	Proxy *httpproxy.Config
	// DisableHTTP2 keeps connections on HTTP/1.1.
	DisableHTTP2 bool
}

// HTTP is the terminal link of a pipeline. It performs the exchange with
// net/http and classifies failures into transport errors.
type HTTP struct {
	client *http.Client
	base   *http.Transport
}

// New creates an HTTP transport from cfg.
func New(cfg Config) (*HTTP, error) {
	proxyCfg := cfg.Proxy
	if proxyCfg == nil {
		proxyCfg = httpproxy.FromEnvironment()
	}
	proxyFunc := proxyCfg.ProxyFunc()

	dialer := &net.Dialer{
		Timeout:   cfg.ConnectionTimeout,
		KeepAlive: 30 * time.Second,
	}

	base := &http.Transport{
		Proxy: func(r *http.Request) (*url.URL, error) {
			return proxyFunc(r.URL)
		},
		DialContext:           dialer.DialContext,
		TLSClientConfig:       cfg.TLSConfig.Clone(),
		TLSHandshakeTimeout:   cfg.ConnectionTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		ExpectContinueTimeout: time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
	}
	if cfg.MaxIdleConnections > 0 {
		base.MaxIdleConnsPerHost = cfg.MaxIdleConnections
		if cfg.MaxIdleConnections > base.MaxIdleConns {
			base.MaxIdleConns = cfg.MaxIdleConnections
		}
	}

	if !cfg.DisableHTTP2 {
		h2, err := http2.ConfigureTransports(base)
		if err != nil {
			return nil, errors.InvalidConfig("transport", "configure HTTP/2: "+err.Error()).WithCause(err)
		}
		// Health-check idle HTTP/2 connections so dead peers surface as
		// retryable connection errors instead of hanging reads.
		h2.ReadIdleTimeout = 30 * time.Second
		h2.PingTimeout = 15 * time.Second
	}

	return &HTTP{
		client: &http.Client{Transport: base},
		base:   base,
	}, nil
}

// NewWithClient wraps an existing http.Client.
func NewWithClient(client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	base, _ := client.Transport.(*http.Transport)
	return &HTTP{client: client, base: base}
}

// Send performs the exchange. The response body is returned unread; the
// caller owns closing it.
func (t *HTTP) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	body, err := req.Body()
	if err != nil {
		return nil, errors.Internal(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL.String(), body)
	if err != nil {
		if body != nil {
			_ = body.Close()
		}
		return nil, errors.InvalidRequest("request", err.Error()).WithCause(err)
	}
	httpReq.Header = req.Header.Clone()
	if httpReq.Header == nil {
		httpReq.Header = make(http.Header)
	}
	if body != nil {
		httpReq.ContentLength = req.ContentLength()
		httpReq.GetBody = req.Body
	}
	if host := req.Header.Get("Host"); host != "" {
		httpReq.Host = host
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, Classify(ctx, req.URL.Host, err)
	}

	return &pipeline.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       resp.Body,
		Request:    req,
	}, nil
}

// CloseIdleConnections closes idle pooled connections.
func (t *HTTP) CloseIdleConnections() {
	t.client.CloseIdleConnections()
}

// Base returns the underlying *http.Transport, or nil when the transport
// wraps a client with a custom RoundTripper.
func (t *HTTP) Base() *http.Transport { return t.base }

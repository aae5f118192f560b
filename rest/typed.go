package rest

import (
	"context"
	"net/http"

	"github.com/kbukum/restpipe/pipeline"
)

// Response is a decoded response of a typed call.
type Response[T any] struct {
	StatusCode int
	Header     http.Header
	Data       T
}

// RequestOption configures a single typed call.
type RequestOption func(*pipeline.Request)

// WithQuery adds query parameters.
func WithQuery(params map[string]string) RequestOption {
	return func(r *pipeline.Request) {
		q := r.URL.Query()
		for k, v := range params {
			q.Set(k, v)
		}
		r.URL.RawQuery = q.Encode()
	}
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *pipeline.Request) {
		r.Header.Set(key, value)
	}
}

// successStatuses are the statuses typed calls accept.
var successStatuses = []int{http.StatusOK, http.StatusCreated, http.StatusAccepted, http.StatusNoContent}

// Get sends a GET request and decodes a 2xx body into T.
func Get[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return invoke[T](ctx, c, http.MethodGet, path, nil, opts...)
}

// Post sends a POST request with body and decodes a 2xx body into T.
func Post[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return invoke[T](ctx, c, http.MethodPost, path, body, opts...)
}

// Put sends a PUT request with body and decodes a 2xx body into T.
func Put[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return invoke[T](ctx, c, http.MethodPut, path, body, opts...)
}

// Patch sends a PATCH request with body and decodes a 2xx body into T.
func Patch[T any](ctx context.Context, c *Client, path string, body any, opts ...RequestOption) (*Response[T], error) {
	return invoke[T](ctx, c, http.MethodPatch, path, body, opts...)
}

// Delete sends a DELETE request and decodes a 2xx body into T.
func Delete[T any](ctx context.Context, c *Client, path string, opts ...RequestOption) (*Response[T], error) {
	return invoke[T](ctx, c, http.MethodDelete, path, nil, opts...)
}

func invoke[T any](ctx context.Context, c *Client, method, path string, body any, opts ...RequestOption) (*Response[T], error) {
	req, err := c.NewRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", c.serializer.ContentType())
	for _, opt := range opts {
		opt(req)
	}

	var data T
	rb := c.NewResponseBuilder()
	for _, status := range successStatuses {
		rb.Register(status, &data)
	}

	sr, err := c.Do(ctx, req, rb)
	if err != nil {
		return nil, err
	}
	return &Response[T]{StatusCode: sr.StatusCode, Header: sr.Header, Data: data}, nil
}

package pipeline

import (
	"bytes"
	"io"
	"net/http"
	"net/url"

	"github.com/kbukum/restpipe/errors"
)

// Request is an outgoing HTTP request flowing down the policy chain.
// Policies mutate it in place; the retry policy sends a Clone per attempt.
type Request struct {
	Method string
	URL    *url.URL
	Header http.Header

	body *body
}

// body is an immutable, re-readable request payload shared between clones.
type body struct {
	data []byte
	open func() (io.ReadCloser, error)
	size int64
}

// NewRequest creates a request for an absolute URL.
func NewRequest(method, rawURL string) (*Request, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidRequest("request URL", err.Error()).WithCause(err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, errors.InvalidRequest("request URL", "must be absolute: "+rawURL)
	}
	return &Request{
		Method: method,
		URL:    u,
		Header: make(http.Header),
	}, nil
}

// SetBody sets an in-memory payload.
func (r *Request) SetBody(data []byte) {
	if data == nil {
		r.body = nil
		return
	}
	r.body = &body{data: data, size: int64(len(data))}
}

// SetBodyReader captures rd into memory so the payload can be replayed
// on retry. If rd is an io.Closer it is closed.
func (r *Request) SetBodyReader(rd io.Reader) error {
	if c, ok := rd.(io.Closer); ok {
		defer c.Close()
	}
	data, err := io.ReadAll(rd)
	if err != nil {
		return err
	}
	r.SetBody(data)
	return nil
}

// SetBodyFunc registers a payload that is re-opened for every attempt,
// for bodies too large to hold in memory. size is -1 when unknown.
func (r *Request) SetBodyFunc(open func() (io.ReadCloser, error), size int64) {
	r.body = &body{open: open, size: size}
}

// HasBody reports whether a payload is set.
func (r *Request) HasBody() bool { return r.body != nil }

// Body returns a fresh reader over the payload, or nil when none is set.
func (r *Request) Body() (io.ReadCloser, error) {
	switch {
	case r.body == nil:
		return nil, nil
	case r.body.open != nil:
		return r.body.open()
	default:
		return io.NopCloser(bytes.NewReader(r.body.data)), nil
	}
}

// BodyBytes returns the in-memory payload. It is nil for streamed bodies.
func (r *Request) BodyBytes() []byte {
	if r.body == nil {
		return nil
	}
	return r.body.data
}

// ContentLength returns the payload size: 0 without a body, -1 if unknown.
func (r *Request) ContentLength() int64 {
	if r.body == nil {
		return 0
	}
	return r.body.size
}

// Clone returns a copy with its own URL and headers. The payload is shared.
func (r *Request) Clone() *Request {
	clone := &Request{
		Method: r.Method,
		Header: r.Header.Clone(),
		body:   r.body,
	}
	if clone.Header == nil {
		clone.Header = make(http.Header)
	}
	if r.URL != nil {
		u := *r.URL
		if r.URL.User != nil {
			user := *r.URL.User
			u.User = &user
		}
		clone.URL = &u
	}
	return clone
}

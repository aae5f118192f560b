package pipeline

import (
	"bytes"
	"io"
	"net/http"
)

// Response is an HTTP response flowing back up the policy chain.
// Body is a stream that can be consumed once; Bytes buffers it so that
// observers and the final consumer see the same content.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       io.ReadCloser
	Request    *Request

	buffered []byte
	isBuf    bool
}

// IsSuccess reports whether the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Bytes drains the body once, caches it, and replaces Body with a fresh
// in-memory reader so the payload remains readable.
func (r *Response) Bytes() ([]byte, error) {
	if !r.isBuf {
		var data []byte
		if r.Body != nil {
			var err error
			data, err = io.ReadAll(r.Body)
			_ = r.Body.Close()
			if err != nil {
				return nil, err
			}
		}
		r.buffered = data
		r.isBuf = true
	}
	r.Body = io.NopCloser(bytes.NewReader(r.buffered))
	return r.buffered, nil
}

// Close releases the body stream.
func (r *Response) Close() error {
	if r.Body == nil {
		return nil
	}
	return r.Body.Close()
}

// Drain discards any unread body and closes it so the connection can be reused.
func (r *Response) Drain() {
	if r.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(r.Body, 1<<20))
	_ = r.Body.Close()
}

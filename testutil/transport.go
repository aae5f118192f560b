package testutil

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/kbukum/restpipe/pipeline"
)

// Outcome is one scripted transport result.
type Outcome struct {
	Status int
	Header http.Header
	Body   string
	Err    error
}

// Status returns an outcome answering with code and an empty body.
func Status(code int) Outcome { return Outcome{Status: code} }

// Fail returns an outcome failing with err.
func Fail(err error) Outcome { return Outcome{Err: err} }

// ScriptedTransport is a pipeline.Transport returning outcomes in order;
// the last outcome repeats once the script is exhausted. It records every
// request it receives.
type ScriptedTransport struct {
	mu       sync.Mutex
	outcomes []Outcome
	requests []*pipeline.Request
}

// NewScriptedTransport creates a transport answering with outcomes.
// Without outcomes it answers 200 OK.
func NewScriptedTransport(outcomes ...Outcome) *ScriptedTransport {
	if len(outcomes) == 0 {
		outcomes = []Outcome{Status(http.StatusOK)}
	}
	return &ScriptedTransport{outcomes: outcomes}
}

// Send implements pipeline.Transport.
func (t *ScriptedTransport) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	t.mu.Lock()
	idx := len(t.requests)
	t.requests = append(t.requests, req)
	if idx >= len(t.outcomes) {
		idx = len(t.outcomes) - 1
	}
	out := t.outcomes[idx]
	t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if out.Err != nil {
		return nil, out.Err
	}

	header := out.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	return &pipeline.Response{
		StatusCode: out.Status,
		Header:     header,
		Body:       io.NopCloser(strings.NewReader(out.Body)),
		Request:    req,
	}, nil
}

// Calls returns the number of requests received.
func (t *ScriptedTransport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// Requests returns the requests received, in order.
func (t *ScriptedTransport) Requests() []*pipeline.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*pipeline.Request(nil), t.requests...)
}

// LastRequest returns the most recent request, or nil.
func (t *ScriptedTransport) LastRequest() *pipeline.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return nil
	}
	return t.requests[len(t.requests)-1]
}

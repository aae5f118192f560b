package policy_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
)

func newRequest(t *testing.T, method string) *pipeline.Request {
	t.Helper()
	req, err := pipeline.NewRequest(method, "https://api.example.com/items?api-version=1")
	require.NoError(t, err)
	return req
}

func bufferLogger() (*logger.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logger.New(&logger.Config{Level: "debug", Format: logger.FormatJSON, Writer: &buf}, "test"), &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		lines = append(lines, m)
	}
	return lines
}

// trackedBody records whether it was closed.
type trackedBody struct {
	io.Reader
	closed *atomic.Bool
}

func (b trackedBody) Close() error {
	b.closed.Store(true)
	return nil
}

// statusTransport answers with each status in turn and tracks body closes.
type statusTransport struct {
	statuses []int
	header   http.Header
	calls    atomic.Int32
	closed   []*atomic.Bool
}

func (s *statusTransport) Send(_ context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	i := int(s.calls.Add(1)) - 1
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	closed := &atomic.Bool{}
	s.closed = append(s.closed, closed)
	return &pipeline.Response{
		StatusCode: s.statuses[i],
		Header:     s.header.Clone(),
		Body:       trackedBody{Reader: strings.NewReader("body"), closed: closed},
		Request:    req,
	}, nil
}

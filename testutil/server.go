package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
)

// RecordedRequest is a request as seen by a Server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Header http.Header
	Body   []byte
}

// Server is a scripted HTTP server backed by gin. Every request is
// recorded before its route runs. Routes must be registered before the
// first request is sent.
type Server struct {
	*httptest.Server
	engine *gin.Engine

	mu       sync.Mutex
	requests []RecordedRequest
}

// NewServer starts a Server that is closed when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := &Server{engine: gin.New()}
	s.engine.Use(s.record)
	s.Server = httptest.NewServer(s.engine)
	t.Cleanup(s.Close)
	return s
}

func (s *Server) record(c *gin.Context) {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	s.mu.Lock()
	s.requests = append(s.requests, RecordedRequest{
		Method: c.Request.Method,
		Path:   c.Request.URL.Path,
		Query:  c.Request.URL.RawQuery,
		Header: c.Request.Header.Clone(),
		Body:   body,
	})
	s.mu.Unlock()

	c.Next()
}

// Handle registers a gin handler for method and path.
func (s *Server) Handle(method, path string, handler gin.HandlerFunc) *Server {
	s.engine.Handle(method, path, handler)
	return s
}

// Respond registers a route answering with status and body encoded as JSON.
// A nil body sends no content.
func (s *Server) Respond(method, path string, status int, body any) *Server {
	return s.Handle(method, path, func(c *gin.Context) {
		if body == nil {
			c.Status(status)
			return
		}
		c.JSON(status, body)
	})
}

// Sequence registers a route answering with each status in turn; the last
// status repeats once the sequence is exhausted.
func (s *Server) Sequence(method, path string, statuses ...int) *Server {
	var mu sync.Mutex
	next := 0
	return s.Handle(method, path, func(c *gin.Context) {
		mu.Lock()
		status := statuses[len(statuses)-1]
		if next < len(statuses) {
			status = statuses[next]
			next++
		}
		mu.Unlock()
		c.JSON(status, gin.H{"status": status})
	})
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// Hits returns the number of recorded requests for path.
func (s *Server) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if r.Path == path {
			n++
		}
	}
	return n
}

// Reset forgets all recorded requests.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

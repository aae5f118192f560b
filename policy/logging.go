package policy

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/restpipe/errors"
	"github.com/kbukum/restpipe/logger"
	"github.com/kbukum/restpipe/pipeline"
)

// LogLevel selects how much of each exchange the logging policy records.
type LogLevel int

const (
	// LogNone disables the logging policy.
	LogNone LogLevel = iota
	// LogBasic logs method, URL, status and duration.
	LogBasic
	// LogHeaders adds request and response headers.
	LogHeaders
	// LogBody adds request and response bodies.
	LogBody
	// LogBodyAndHeaders logs everything.
	LogBodyAndHeaders
)

var logLevelNames = [...]string{"none", "basic", "headers", "body", "body_and_headers"}

// String returns the level name accepted by ParseLogLevel.
func (l LogLevel) String() string {
	if l < LogNone || l > LogBodyAndHeaders {
		return fmt.Sprintf("LogLevel(%d)", int(l))
	}
	return logLevelNames[l]
}

// Valid reports whether l is a known level.
func (l LogLevel) Valid() bool { return l >= LogNone && l <= LogBodyAndHeaders }

func (l LogLevel) headers() bool { return l == LogHeaders || l == LogBodyAndHeaders }
func (l LogLevel) body() bool    { return l == LogBody || l == LogBodyAndHeaders }

// ParseLogLevel parses a level name. Matching ignores case, and "-" is
// accepted in place of "_".
func ParseLogLevel(s string) (LogLevel, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	if name == "" {
		return LogNone, nil
	}
	for i, n := range logLevelNames {
		if n == name {
			return LogLevel(i), nil
		}
	}
	return LogNone, errors.InvalidConfig("log level", fmt.Sprintf("unknown level %q", s))
}

// maxLoggedBody bounds the bytes of a body written to a log line.
const maxLoggedBody = 16 << 10

const redacted = "REDACTED"

var redactedHeaders = []string{"Authorization", "Proxy-Authorization", "Cookie", "Set-Cookie"}

// Logging returns a factory for a policy that logs each attempt at the
// given level. LogNone adds nothing to the chain. A nil log uses the
// "rest" component logger.
//
// The policy only observes: credentials are redacted in the log line, not
// on the request, and a logged response body stays readable.
func Logging(level LogLevel, log *logger.Logger) pipeline.Factory {
	if log == nil {
		log = logger.Get("rest")
	}
	return pipeline.FactoryFunc(func(next pipeline.Policy) pipeline.Policy {
		if level == LogNone || !level.Valid() {
			return next
		}
		return &loggingPolicy{next: next, level: level, log: log}
	})
}

type loggingPolicy struct {
	next  pipeline.Policy
	level LogLevel
	log   *logger.Logger
}

func (p *loggingPolicy) Send(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	fields := logger.Fields(
		logger.FieldMethod, req.Method,
		logger.FieldURL, req.URL.Redacted(),
	)
	if p.level.headers() {
		fields["request_"+logger.FieldHeaders] = redactHeaders(req.Header)
	}
	if p.level.body() && req.HasBody() {
		if data := req.BodyBytes(); data != nil {
			fields["request_"+logger.FieldBody] = truncate(data)
		} else {
			fields["request_"+logger.FieldBody] = fmt.Sprintf("<streamed, %d bytes>", req.ContentLength())
		}
	}

	start := time.Now()
	resp, err := p.next.Send(ctx, req)
	fields = logger.MergeWithDuration(fields, time.Since(start))

	log := p.log.WithContext(ctx)
	if err != nil {
		log.Warn("request failed", logger.MergeWithError(fields, err))
		return resp, err
	}

	fields[logger.FieldStatus] = resp.StatusCode
	if p.level.headers() {
		fields["response_"+logger.FieldHeaders] = redactHeaders(resp.Header)
	}
	if p.level.body() {
		data, readErr := resp.Bytes()
		if readErr != nil {
			log.Warn("reading response body failed", logger.MergeWithError(fields, readErr))
			return nil, errors.ConnectionFailed(req.URL.Host, readErr).WithDetail("reason", "reading response body")
		}
		fields["response_"+logger.FieldBody] = truncate(data)
	}

	log.Info("request completed", fields)
	return resp, nil
}

func redactHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		out[k] = strings.Join(v, ", ")
	}
	for _, k := range redactedHeaders {
		if _, ok := out[k]; ok {
			out[k] = redacted
		}
	}
	return out
}

func truncate(data []byte) string {
	if len(data) <= maxLoggedBody {
		return string(data)
	}
	return string(data[:maxLoggedBody]) + fmt.Sprintf("... (%d bytes truncated)", len(data)-maxLoggedBody)
}

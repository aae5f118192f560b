package transport

import (
	"context"
	stderrors "errors"
	"net"
	"syscall"

	"github.com/kbukum/restpipe/errors"
)

// Classify maps a net/http failure onto the transport error kinds:
//   - the caller's context is done: the context error itself
//   - dial, TLS handshake or response header timeouts: retryable TIMEOUT,
//     including net/http deadlines that wrap context.DeadlineExceeded
//   - unknown host: non-retryable CONNECTION_FAILED
//   - any other connection failure: retryable CONNECTION_FAILED
func Classify(ctx context.Context, host string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	var dnsErr *net.DNSError
	if stderrors.As(err, &dnsErr) && dnsErr.IsNotFound {
		appErr := errors.ConnectionFailed(host, err)
		appErr.Retryable = false
		return appErr.WithDetail("reason", "host not found")
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		return errors.Timeout("request to "+host, err)
	}

	appErr := errors.ConnectionFailed(host, err)
	switch {
	case stderrors.Is(err, syscall.ECONNREFUSED):
		appErr.WithDetail("reason", "connection refused")
	case stderrors.Is(err, syscall.ECONNRESET):
		appErr.WithDetail("reason", "connection reset")
	}
	return appErr
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError is the unified error type returned by the client runtime.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the received status code for protocol errors.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Body is the raw response body for protocol errors.
	Body []byte `json:"-"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Kind returns the kind of the error code.
func (e *AppError) Kind() Kind { return e.Code.Kind() }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Configuration ---

// MissingField creates a configuration error for a required field that is unset.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("missing required field: %s", field),
		Details: map[string]any{"field": field},
	}
}

// InvalidConfig creates a configuration error for a field with an invalid value.
func InvalidConfig(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// --- Transport ---

// ConnectionFailed creates a transport error for a host that could not be reached.
func ConnectionFailed(host string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("unable to connect to %s", host),
		Retryable: true, Details: map[string]any{"host": host}, Cause: cause,
	}
}

// Timeout creates a transport error for a connection or read timeout.
func Timeout(operation string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: fmt.Sprintf("%s timed out", operation),
		Retryable: true, Details: map[string]any{"operation": operation}, Cause: cause,
	}
}

// --- Authentication ---

// Unauthorized creates an authentication error.
func Unauthorized(reason string) *AppError {
	if reason == "" {
		reason = "authorization required"
	}
	return &AppError{Code: ErrCodeUnauthorized, Message: reason}
}

// TokenExpired creates an authentication error for an expired token.
func TokenExpired() *AppError {
	return &AppError{Code: ErrCodeTokenExpired, Message: "credential token has expired"}
}

// InvalidToken creates an authentication error for a malformed token.
func InvalidToken(reason string) *AppError {
	return &AppError{Code: ErrCodeInvalidToken, Message: fmt.Sprintf("invalid credential token: %s", reason)}
}

// AuthenticationFailed wraps a credentials failure.
func AuthenticationFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeAuthenticationFailed, Message: "credentials could not authorize the request",
		Cause: cause,
	}
}

// --- Protocol ---

// FromStatus converts a response status into a protocol error.
// Returns nil for 2xx status codes.
func FromStatus(statusCode int, body []byte) *AppError {
	var code ErrorCode
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		code = ErrCodeForbidden
	case statusCode == http.StatusNotFound:
		code = ErrCodeNotFound
	case statusCode == http.StatusConflict || statusCode == http.StatusPreconditionFailed:
		code = ErrCodeConflict
	case statusCode == http.StatusTooManyRequests:
		code = ErrCodeRateLimited
	case statusCode == http.StatusServiceUnavailable:
		code = ErrCodeServiceUnavailable
	case statusCode >= 400 && statusCode < 500:
		code = ErrCodeBadRequest
	case statusCode >= 500:
		code = ErrCodeServerError
	default:
		code = ErrCodeUnexpectedStatus
	}
	return &AppError{
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d %s", statusCode, http.StatusText(statusCode)),
		Retryable:  IsRetryableCode(code),
		HTTPStatus: statusCode,
		Body:       body,
		Details:    map[string]any{"status": statusCode},
	}
}

// UnexpectedStatus creates a protocol error for a status the caller did not
// expect, including 2xx statuses.
func UnexpectedStatus(statusCode int, body []byte) *AppError {
	if statusCode < 200 || statusCode >= 300 {
		return FromStatus(statusCode, body)
	}
	return &AppError{
		Code:       ErrCodeUnexpectedStatus,
		Message:    fmt.Sprintf("unexpected HTTP %d %s", statusCode, http.StatusText(statusCode)),
		HTTPStatus: statusCode,
		Body:       body,
		Details:    map[string]any{"status": statusCode},
	}
}

// DecodeFailed creates a protocol error for a response body that could not
// be deserialized.
func DecodeFailed(statusCode int, body []byte, cause error) *AppError {
	return &AppError{
		Code:       ErrCodeDecodeFailed,
		Message:    fmt.Sprintf("decode HTTP %d response body", statusCode),
		HTTPStatus: statusCode,
		Body:       body,
		Details:    map[string]any{"status": statusCode},
		Cause:      cause,
	}
}

// --- Policy ---

// CircuitOpen creates an error for a request rejected by an open circuit.
func CircuitOpen(name string) *AppError {
	return &AppError{
		Code: ErrCodeCircuitOpen, Message: fmt.Sprintf("circuit %q is open", name),
		Details: map[string]any{"circuit": name},
	}
}

// BulkheadFull creates an error for a request rejected by a full bulkhead.
func BulkheadFull(name string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeBulkheadFull, Message: fmt.Sprintf("bulkhead %q has no free slot", name),
		Details: map[string]any{"bulkhead": name}, Cause: cause,
	}
}

// InvalidRequest creates an error for a request that could not be built,
// such as a malformed URL or a body the serializer rejects.
func InvalidRequest(field, reason string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidRequest, Message: fmt.Sprintf("invalid %s: %s", field, reason),
		Details: map[string]any{"field": field},
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: "unexpected internal error", Cause: cause}
}

// --- Inspection ---

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of the first AppError in err's chain.
func KindOf(err error) Kind {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Kind()
	}
	return KindUnknown
}

// IsConfiguration reports whether err is a configuration error.
func IsConfiguration(err error) bool { return KindOf(err) == KindConfiguration }

// IsTransport reports whether err is a transport error.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsAuthentication reports whether err is an authentication error.
func IsAuthentication(err error) bool { return KindOf(err) == KindAuthentication }

// IsProtocol reports whether err is a protocol error.
func IsProtocol(err error) bool { return KindOf(err) == KindProtocol }

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code ErrorCode) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Code == code
}

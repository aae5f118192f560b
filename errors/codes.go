package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Configuration errors, raised by client builders before any request is sent.
const (
	// ErrCodeMissingField indicates a required configuration field is unset.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidConfig indicates a configuration field has an invalid value.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Transport errors (retryable unless stated otherwise)
const (
	// ErrCodeConnectionFailed indicates the transport could not reach the remote host.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates a connection or read timeout.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
)

// Authentication errors
const (
	// ErrCodeUnauthorized indicates the request could not be authorized.
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	// ErrCodeTokenExpired indicates the credential token has expired.
	ErrCodeTokenExpired ErrorCode = "TOKEN_EXPIRED"
	// ErrCodeInvalidToken indicates the credential token is malformed.
	ErrCodeInvalidToken ErrorCode = "INVALID_TOKEN"
	// ErrCodeAuthenticationFailed indicates the credentials capability failed
	// to produce authorization material.
	ErrCodeAuthenticationFailed ErrorCode = "AUTHENTICATION_FAILED"
)

// Protocol errors, derived from non-2xx responses.
const (
	// ErrCodeBadRequest indicates a 4xx response not covered by a narrower code.
	ErrCodeBadRequest ErrorCode = "BAD_REQUEST"
	// ErrCodeForbidden indicates a 401 or 403 response.
	ErrCodeForbidden ErrorCode = "FORBIDDEN"
	// ErrCodeNotFound indicates a 404 response.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeConflict indicates a 409 or 412 response.
	ErrCodeConflict ErrorCode = "CONFLICT"
	// ErrCodeRateLimited indicates a 429 response.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	// ErrCodeServerError indicates a 5xx response.
	ErrCodeServerError ErrorCode = "SERVER_ERROR"
	// ErrCodeServiceUnavailable indicates a 503 response.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeUnexpectedStatus indicates any other unregistered response status.
	ErrCodeUnexpectedStatus ErrorCode = "UNEXPECTED_STATUS"
	// ErrCodeDecodeFailed indicates a response body could not be deserialized.
	ErrCodeDecodeFailed ErrorCode = "DECODE_FAILED"
)

// Policy errors
const (
	// ErrCodeCircuitOpen indicates a circuit breaker rejected the request.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeBulkheadFull indicates no concurrency slot was available.
	ErrCodeBulkheadFull ErrorCode = "BULKHEAD_FULL"
	// ErrCodeInvalidRequest indicates a request that could not be built or
	// encoded. Unlike configuration errors it is raised per request.
	ErrCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Kind groups error codes by the layer that raises them.
type Kind int

const (
	// KindUnknown is any error that is not an AppError or has an unmapped code.
	KindUnknown Kind = iota
	// KindConfiguration errors are raised at build time.
	KindConfiguration
	// KindTransport errors are raised by the transport and observed by retry.
	KindTransport
	// KindAuthentication errors are raised by credentials and never retried.
	KindAuthentication
	// KindProtocol errors describe non-2xx responses.
	KindProtocol
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindTransport:
		return "transport"
	case KindAuthentication:
		return "authentication"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

var codeKinds = map[ErrorCode]Kind{
	ErrCodeMissingField:         KindConfiguration,
	ErrCodeInvalidConfig:        KindConfiguration,
	ErrCodeConnectionFailed:     KindTransport,
	ErrCodeTimeout:              KindTransport,
	ErrCodeUnauthorized:         KindAuthentication,
	ErrCodeTokenExpired:         KindAuthentication,
	ErrCodeInvalidToken:         KindAuthentication,
	ErrCodeAuthenticationFailed: KindAuthentication,
	ErrCodeBadRequest:           KindProtocol,
	ErrCodeForbidden:            KindProtocol,
	ErrCodeNotFound:             KindProtocol,
	ErrCodeConflict:             KindProtocol,
	ErrCodeRateLimited:          KindProtocol,
	ErrCodeServerError:          KindProtocol,
	ErrCodeServiceUnavailable:   KindProtocol,
	ErrCodeUnexpectedStatus:     KindProtocol,
	ErrCodeDecodeFailed:         KindProtocol,
}

// Kind returns the kind the code belongs to.
func (c ErrorCode) Kind() Kind {
	return codeKinds[c]
}

var retryableCodes = map[ErrorCode]bool{
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeServerError:        true,
	ErrCodeServiceUnavailable: true,
	ErrCodeCircuitOpen:        false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}

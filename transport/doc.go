// Package transport adapts net/http to the pipeline Transport interface.
//
// The connection timeout bounds dialing and the TLS handshake; the read
// timeout bounds the wait for response headers. HTTP/2 is negotiated via
// golang.org/x/net/http2 with idle-connection health checks, and proxies
// are read from the environment via golang.org/x/net/http/httpproxy.
package transport

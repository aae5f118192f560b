// Package errors provides the typed error model of the client runtime.
// Every error carries a machine-readable code; codes are grouped into kinds
// (configuration, transport, authentication, protocol) so callers and
// policies can decide how to react without string matching.
package errors

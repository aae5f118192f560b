// Package version exposes build information and the default User-Agent
// string of the client runtime.
//
// Version, git commit and build time are set at compile time via -ldflags:
//
//	go build -ldflags "-X github.com/kbukum/restpipe/version.Version=1.0.0"
package version

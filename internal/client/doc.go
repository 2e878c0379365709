// Package client provides the HTTP fetch layer for vscan.
//
// The package wraps net/http with the settings every scan needs: a
// per-request timeout, a capped redirect chain, a response body size
// limit, charset decoding to UTF-8, and injection of the configured
// User-Agent, cookie and custom headers into every request. An optional
// SOCKS5 proxy can be configured for scanning through a tunnel.
//
// The package is designed to be used with dependency injection - create a
// Client and pass it to components that need HTTP access rather than
// using global state.
package client

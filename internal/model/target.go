package model

import (
	"errors"
	"net/url"
	"strings"
)

// Target errors.
var (
	// ErrInvalidTarget is returned when the URL format is invalid.
	ErrInvalidTarget = errors.New("invalid target URL format")
	// ErrEmptyTarget is returned when the URL is empty.
	ErrEmptyTarget = errors.New("target URL cannot be empty")
	// ErrUnsupportedScheme is returned when the URL scheme is not http or https.
	ErrUnsupportedScheme = errors.New("target URL scheme must be http or https")
)

// Scheme represents the URL scheme of a scan target.
type Scheme int

const (
	// SchemeUnknown indicates an unknown or unsupported scheme.
	SchemeUnknown Scheme = iota
	// SchemeHTTP indicates a plain HTTP target.
	SchemeHTTP
	// SchemeHTTPS indicates a TLS-protected HTTPS target.
	SchemeHTTPS
)

// unknownStr is the string representation for unknown values.
const unknownStr = "unknown"

// String returns the string representation of the Scheme.
func (s Scheme) String() string {
	switch s {
	case SchemeHTTP:
		return "http"
	case SchemeHTTPS:
		return "https"
	default:
		return unknownStr
	}
}

// Target is an immutable value object representing a scan target URL.
// It validates the URL format up front so that later stages can assume
// a well-formed absolute http(s) URL.
//
// Design decision: A URL must carry both a scheme and a host to be accepted.
// Bare hostnames like "example.com" are rejected rather than silently
// prefixed, so the user always sees exactly what will be requested.
type Target struct {
	url    *url.URL // Parsed URL with lowercased scheme and host
	scheme Scheme   // Detected scheme (http or https)
}

// NewTarget creates a new Target from a raw URL string.
// It validates the format and normalizes the scheme and host to lowercase.
// Returns an error if the URL is empty, malformed, missing a host, or uses
// a scheme other than http/https.
func NewTarget(rawURL string) (Target, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Target{}, ErrEmptyTarget
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return Target{}, ErrInvalidTarget
	}

	// Both scheme and host are required for an absolute target.
	if u.Scheme == "" || u.Host == "" {
		return Target{}, ErrInvalidTarget
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	scheme := parseScheme(u.Scheme)
	if scheme == SchemeUnknown {
		return Target{}, ErrUnsupportedScheme
	}

	// An empty path makes URL comparisons ambiguous ("http://a" vs "http://a/").
	if u.Path == "" {
		u.Path = "/"
	}

	return Target{
		url:    u,
		scheme: scheme,
	}, nil
}

// MustNewTarget creates a new Target or panics if invalid.
// Use only for known-valid URLs in tests or initialization.
func MustNewTarget(rawURL string) Target {
	t, err := NewTarget(rawURL)
	if err != nil {
		panic(err)
	}
	return t
}

// parseScheme maps a lowercase scheme string to a Scheme value.
func parseScheme(s string) Scheme {
	switch s {
	case "http":
		return SchemeHTTP
	case "https":
		return SchemeHTTPS
	default:
		return SchemeUnknown
	}
}

// String returns the full normalized target URL.
func (t Target) String() string {
	if t.url == nil {
		return ""
	}
	return t.url.String()
}

// Host returns the target host, including the port if one was given.
func (t Target) Host() string {
	if t.url == nil {
		return ""
	}
	return t.url.Host
}

// Hostname returns the target host without any port.
func (t Target) Hostname() string {
	if t.url == nil {
		return ""
	}
	return t.url.Hostname()
}

// Scheme returns the target scheme.
func (t Target) Scheme() Scheme {
	return t.scheme
}

// IsTLS returns true if the target uses HTTPS.
func (t Target) IsTLS() bool {
	return t.scheme == SchemeHTTPS
}

// URL returns a copy of the parsed URL.
// Callers may modify the copy without affecting the Target.
func (t Target) URL() *url.URL {
	if t.url == nil {
		return nil
	}
	clone := *t.url
	return &clone
}

// IsZero returns true if this is a zero value (empty) Target.
func (t Target) IsZero() bool {
	return t.url == nil
}

// Equals returns true if two Target values refer to the same URL.
func (t Target) Equals(other Target) bool {
	return t.String() == other.String()
}

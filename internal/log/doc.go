// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Database connection strings and URLs with embedded credentials
//   - Session identifiers and authentication tokens
//
// A scanner that reads verbose error pages handles exactly this kind of
// data: debug pages dump environment variables, DSNs and API keys, and
// per-site scan configs may attach auth headers to requests. Even in
// verbose mode, such values are masked so logs can be shared or stored
// without leaking what the scan uncovered.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("request sent",
//	    "cookie", "session=abc123",  // Will be sanitized to "***REDACTED***"
//	    "url", "https://staging.example.com/broken",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

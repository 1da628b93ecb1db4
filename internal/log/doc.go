// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (cookies, tokens, secrets)
//   - Masking of credentials and sensitive query parameters inside URLs
//   - Configurable log levels with verbose mode support
//   - Text or JSON output selected at startup
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//   - URL passwords and query parameters such as token, sig or session
//
// Crawled URLs are logged for every page, so per-host cookies configured
// in .pagecrawl and signed links found on pages must never reach the log
// verbatim. Even in verbose mode, sensitive values are masked.
//
// # Usage
//
//	// Create a secure logger
//	logger, err := log.NewLogger(os.Stderr, true, log.FormatText) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("page visited",
//	    "cookie", "session=abc123",                  // sanitized to "***REDACTED***"
//	    "url", "https://example.com/?token=abc123", // token value masked
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

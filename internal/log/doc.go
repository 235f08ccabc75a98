// Package log provides secure logging functionality with automatic masking
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic masking of customer PII (email addresses, phone numbers)
//   - Automatic masking of explanation provider credentials (API keys, tokens)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Security Features
//
// The SecureHandler automatically masks sensitive information in log output:
//   - Customer record values that look like email addresses or phone numbers
//   - API keys for Groq, OpenAI, Anthropic, and Google providers
//   - Generic secrets detected by pattern matching (JWTs, bearer tokens)
//   - Attributes keyed by credential or contact field names
//
// The quality report itself is a separate output channel and deliberately
// shows the offending cell values; logs must not. Even in verbose mode,
// sensitive values are masked to prevent accidental exposure of customer
// data in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger
//	logger := log.NewSecureLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Info("cell flagged",
//	    "email", "john@acme.com",  // Will be masked to "***REDACTED***"
//	    "source", "leads.csv",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

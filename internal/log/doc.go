// Package log provides secure logging functionality with automatic sanitization
// of sensitive information, built on top of the standard slog package.
//
// This package extends slog to provide:
//   - Automatic sanitization of sensitive values (tokens, cookies, secrets)
//   - Configurable log levels with verbose mode support
//   - Colored terminal output via tint, plain text when redirected
//
// # Security Features
//
// The SecureHandler automatically sanitizes sensitive information in log output:
//   - HTTP headers (Authorization, Cookie, Set-Cookie, X-Api-Key)
//   - Notion integration tokens (secret_... and ntn_...), including tokens
//     embedded in messages and error strings
//   - Secret values detected by pattern matching (passwords, tokens, keys)
//   - Session identifiers and authentication tokens
//
// Even in verbose mode, sensitive values are masked to prevent accidental
// exposure of secrets in logs that may be shared or stored.
//
// # Usage
//
//	// Create a secure logger for the terminal
//	logger := log.NewConsoleLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Debug("request sent",
//	    "authorization", "Bearer secret_...", // Will be masked
//	    "url", "https://api.notion.com/v1/search",
//	)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log

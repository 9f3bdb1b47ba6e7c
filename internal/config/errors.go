package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Callers match them with errors.Is.
var (
	// ErrInvalidFormat is returned when --format is not json, csv or both.
	ErrInvalidFormat = errors.New("invalid format: must be one of json, csv, both")

	// ErrEmptyOutputPath is returned when the output path is blank.
	ErrEmptyOutputPath = errors.New("invalid output path: must not be empty")

	// ErrInvalidTimeout is returned when the API timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRateLimit is returned when the request rate is not positive.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be positive")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidConcurrency is returned when fewer than one worker is requested.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrInvalidSummary is returned for an unknown --summary style.
	ErrInvalidSummary = errors.New("invalid summary: must be one of text, markdown, none")

	// ErrUnknownIndicator is returned when the configuration file disables an
	// indicator ID that does not exist.
	ErrUnknownIndicator = errors.New("unknown public indicator in configuration")

	// ErrInvalidProbeTimeout is returned when probing is on with a non-positive timeout.
	ErrInvalidProbeTimeout = errors.New("invalid probe timeout: must be positive")

	// ErrMissingToken is returned when neither NOTION_TOKEN nor the
	// configuration file provides an integration token.
	ErrMissingToken = errors.New("notion integration token is not configured")
)

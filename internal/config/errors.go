package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoBaseURL is returned when no base URL is provided.
	ErrNoBaseURL = errors.New("no base URL specified: provide the crawl root as an argument")

	// ErrInvalidWorkers is returned when the worker count is not
	// positive. Zero workers would mean no crawling at all.
	ErrInvalidWorkers = errors.New("invalid worker count: must be positive")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	// A timeout of zero or negative would cause immediate request
	// failures.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDelay is returned when the politeness delay range is
	// negative or inverted. Use 0/0 to disable the delay.
	ErrInvalidDelay = errors.New("invalid delay range: bounds must be non-negative and min must not exceed max")

	// ErrNoOutput is returned when the output path is empty.
	ErrNoOutput = errors.New("no output path specified for the sitemap file")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one report format can be used at
	// a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidRateLimit is returned when the rate limit is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is
	// negative. Use 0 to apply the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")
)

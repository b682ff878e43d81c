package scope

import "errors"

// Base URL validation errors returned by NewPolicy.
var (
	// errNotHTTP is returned when the base URL scheme is not http or https.
	errNotHTTP = errors.New("base URL scheme must be http or https")

	// errNoHost is returned when the base URL has no host component.
	errNoHost = errors.New("base URL has no host")
)

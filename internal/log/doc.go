// Package log provides the structured logger used across the crawler,
// built on the standard slog package. Its RedactHandler masks
// credential-bearing attributes (cookies, auth headers, URL userinfo)
// so that verbose per-URL debug output never leaks secrets configured
// for authenticated crawls.
package log

// Package fetcher provides the HTTP transport used by the crawl
// engine. It owns everything network-shaped: per-request timeouts,
// retry with exponential backoff on transient statuses (429, 500, 502,
// 503, 504), response body size limits, and an optional global request
// rate cap. The crawl engine above it sees only "a Result or an error"
// and never retries on its own.
package fetcher

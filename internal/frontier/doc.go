// Package frontier implements the crawl work queue with built-in
// deduplication. It exposes only atomic admit/dispatch/complete
// operations plus a read-only statistics snapshot, never the underlying
// collections, so correctness does not depend on caller discipline.
package frontier

// Package model defines the data structures shared across the crawl
// engine, report writers, and crawl history database: per-page fetch
// records and the end-of-crawl session summary.
package model

// Package database provides SQLite-based persistence for crawl
// history. Each sitemap generation run is stored as a session together
// with its per-page fetch records, enabling comparison between
// successive runs against the same site.
//
// The database uses modernc.org/sqlite, a pure-Go SQLite
// implementation, which avoids CGO dependencies and simplifies
// cross-compilation.
package database

// Package main provides the entry point for the sitemapgen CLI.
//
// sitemapgen crawls a website starting from a base URL and generates a
// sitemap.xml conforming to the sitemaps.org protocol. Only pages on
// the same host at or below the base URL path are included.
//
// Usage:
//
//	sitemapgen generate https://example.com/docs
//	sitemapgen generate --workers 10 -o public/sitemap.xml https://example.com
//
// See --help for all available options.
package main

// main is the entry point for sitemapgen.
func main() {
	Execute()
}

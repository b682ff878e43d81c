// Package config provides configuration structures and utilities for
// sitemapgen. It defines the crawl options populated from CLI flags,
// the YAML configuration file with per-site overrides, and the XDG
// directory helpers used for database placement.
package config

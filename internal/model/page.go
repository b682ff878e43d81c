package model

import "time"

// Page records the outcome of fetching one canonical URL during a crawl.
// It is what the coordinator hands to the database and what debug
// logging summarizes; the sitemap document itself is built from the
// slimmer sitemap.Entry records.
type Page struct {
	// URL is the canonical URL that was fetched.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code. Zero when the fetch
	// failed before receiving a response.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header,
	// without parameters.
	ContentType string `json:"content_type,omitempty"`

	// Title is the page title from the <title> tag, empty for
	// non-HTML responses or pages without one.
	Title string `json:"title,omitempty"`

	// Depth is the number of non-empty path segments of the URL.
	Depth int `json:"depth"`

	// Links is the number of anchor hrefs extracted from the page.
	Links int `json:"links"`

	// FetchedAt is when the fetch completed.
	FetchedAt time.Time `json:"fetched_at"`

	// InSitemap reports whether the page produced a sitemap entry.
	// Pages skipped for status, content type, or parse failures are
	// still recorded here with InSitemap false.
	InSitemap bool `json:"in_sitemap"`
}

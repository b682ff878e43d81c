// Package crawler implements the crawl engine: a coordinator owning a
// frontier and a fixed pool of workers, plus the HTML link extractor
// the workers use. Workers fetch pages through an injected transport,
// feed in-scope links back into the frontier, and accumulate sitemap
// entries until the frontier drains or the crawl is interrupted.
package crawler

// Package scope implements the URL normalization and admission policy
// for the crawl. It canonicalizes discovered links (resolving relative
// references, stripping queries and fragments) and decides whether each
// link belongs to the crawl scope: same host as the base URL and under
// the base URL prefix, with document and image extensions excluded.
package scope

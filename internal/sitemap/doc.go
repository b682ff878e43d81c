// Package sitemap builds sitemap protocol 0.9 documents. It accumulates
// page entries in insertion order, derives change frequency and priority
// from URL depth, and renders the final urlset document as a single
// well-formed XML byte buffer.
package sitemap

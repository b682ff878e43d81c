package sitemap

import (
	"encoding/xml"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"
)

// Namespace is the sitemap protocol namespace for the urlset root element.
const Namespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is the expected change frequency of a page, one of the
// values defined by the sitemap protocol.
type ChangeFreq string

// Change frequencies used by the depth table. The protocol defines more
// values (always, hourly, yearly, never) but the depth heuristic only
// produces these three.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// Entry is one page's metadata record in the output document.
// Entries are immutable after creation and owned by the Builder.
type Entry struct {
	// Loc is the canonical URL of the page.
	Loc string `xml:"loc"`

	// LastMod is the date the page was fetched, in ISO YYYY-MM-DD form.
	// It is captured at the moment the entry is added, not at render time.
	LastMod string `xml:"lastmod"`

	// ChangeFreq is derived from URL depth; see FrequencyPriority.
	ChangeFreq ChangeFreq `xml:"changefreq"`

	// Priority is derived from URL depth, formatted with one decimal place.
	Priority string `xml:"priority"`
}

// urlSet is the XML document root.
type urlSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []Entry  `xml:"url"`
}

// Builder accumulates sitemap entries and renders the final document.
// Entry appends are serialized internally, so workers may call AddEntry
// concurrently. The Builder performs no deduplication of its own: the
// frontier guarantees each canonical URL is processed at most once, so
// AddEntry is only ever reached once per page.
type Builder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: make([]Entry, 0)}
}

// AddEntry appends an entry for a successfully fetched page. The change
// frequency and priority are pure functions of the URL's path depth, and
// the last-modified stamp is the fetch time's date.
func (b *Builder) AddEntry(canonicalURL string, fetchedAt time.Time) {
	depth := Depth(canonicalURL)
	freq, priority := FrequencyPriority(depth)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, Entry{
		Loc:        canonicalURL,
		LastMod:    fetchedAt.Format(time.DateOnly),
		ChangeFreq: freq,
		Priority:   priority,
	})
}

// Len returns the number of entries added so far.
func (b *Builder) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

// Entries returns a copy of the entry list in insertion order.
func (b *Builder) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Render emits the complete sitemap document as UTF-8 XML bytes, one
// <url> element per entry in insertion order. Special characters in
// URLs are entity-escaped by the XML encoder, so the output is
// well-formed regardless of input.
func (b *Builder) Render() ([]byte, error) {
	b.mu.Lock()
	doc := urlSet{Xmlns: Namespace, URLs: make([]Entry, len(b.entries))}
	copy(doc.URLs, b.entries)
	b.mu.Unlock()

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(xml.Header)+len(body)+1)
	out = append(out, xml.Header...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// WriteFile renders the document and persists it to path in a single
// write. The full byte buffer is built first so a failure can never
// leave a partially written document behind an earlier successful write.
func (b *Builder) WriteFile(path string) error {
	data, err := b.Render()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Depth returns the number of non-empty path segments of a URL.
// A path of exactly "/" (or no path at all) has depth 0.
func Depth(canonicalURL string) int {
	u, err := url.Parse(canonicalURL)
	if err != nil {
		return 0
	}
	depth := 0
	for seg := range strings.SplitSeq(u.Path, "/") {
		if seg != "" {
			depth++
		}
	}
	return depth
}

// FrequencyPriority maps URL depth to the expected change frequency and
// priority of the page:
//
//	depth 0:  daily   1.0
//	depth 1:  weekly  0.8
//	depth 2:  monthly 0.6
//	depth 3+: monthly 0.4
//
// The heuristic is that pages near the site root change more often and
// matter more to crawlers than deeply nested ones.
func FrequencyPriority(depth int) (ChangeFreq, string) {
	switch depth {
	case 0:
		return ChangeFreqDaily, "1.0"
	case 1:
		return ChangeFreqWeekly, "0.8"
	case 2:
		return ChangeFreqMonthly, "0.6"
	default:
		return ChangeFreqMonthly, "0.4"
	}
}

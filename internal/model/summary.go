package model

import "time"

// CrawlSummary is the final accounting of one crawl session. It is
// rendered by the report writers and persisted to the crawl history
// database alongside the per-page records.
type CrawlSummary struct {
	// BaseURL is the canonical URL the crawl was seeded with.
	BaseURL string `json:"base_url"`

	// OutputPath is where the sitemap document was written.
	OutputPath string `json:"output_path"`

	// StartedAt and FinishedAt bound the crawl session.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// URLsAdmitted is the number of distinct canonical URLs that ever
	// entered the frontier.
	URLsAdmitted int `json:"urls_admitted"`

	// URLsCompleted is the number of URLs whose processing finished,
	// successfully or not.
	URLsCompleted int `json:"urls_completed"`

	// EntriesWritten is the number of pages in the sitemap document.
	EntriesWritten int `json:"entries_written"`

	// ChangeFreqCounts maps change frequency labels (daily, weekly,
	// monthly) to the number of entries carrying each.
	ChangeFreqCounts map[string]int `json:"changefreq_counts,omitempty"`

	// Interrupted reports whether the crawl was cut short by an
	// external stop signal. The sitemap still contains every entry
	// accumulated before the interruption.
	Interrupted bool `json:"interrupted"`
}

// Duration returns how long the crawl session took.
func (s *CrawlSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/nao1215/sitemapgen/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the per-page listing in addition to the summary.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the per-page listing with status and depth.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl report in human-readable format.
func (w *SimpleWriter) Write(summary *model.CrawlSummary, pages []*model.Page) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeCounts(&sb, summary)
	w.writeChangeFreqs(&sb, summary)
	if w.verbose {
		w.writePages(&sb, pages)
	}
	w.writeSkipped(&sb, pages)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with crawl information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SITEMAP CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Base URL:       %s\n", summary.BaseURL))
	sb.WriteString(fmt.Sprintf("Sitemap File:   %s\n", summary.OutputPath))
	sb.WriteString(fmt.Sprintf("Started:        %s\n", summary.StartedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:       %s\n", summary.Duration().Round(1e7)))

	if summary.Interrupted {
		sb.WriteString("Status:         INTERRUPTED (partial sitemap written)\n")
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeCounts writes the URL accounting section.
func (w *SimpleWriter) writeCounts(sb *strings.Builder, summary *model.CrawlSummary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  URLs admitted:   %d\n", summary.URLsAdmitted))
	sb.WriteString(fmt.Sprintf("  URLs completed:  %d\n", summary.URLsCompleted))
	sb.WriteString(fmt.Sprintf("  Sitemap entries: %d\n", summary.EntriesWritten))
	sb.WriteString("\n")
}

// writeChangeFreqs writes the change frequency distribution section.
func (w *SimpleWriter) writeChangeFreqs(sb *strings.Builder, summary *model.CrawlSummary) {
	if len(summary.ChangeFreqCounts) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CHANGE FREQUENCY DISTRIBUTION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, freq := range sortedFreqs(summary.ChangeFreqCounts) {
		sb.WriteString(fmt.Sprintf("  %-10s %d\n", freq+":", summary.ChangeFreqCounts[freq]))
	}
	sb.WriteString("\n")
}

// writePages writes the per-page listing, sitemap pages first.
func (w *SimpleWriter) writePages(sb *strings.Builder, pages []*model.Page) {
	if len(pages) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range pages {
		marker := " "
		if p.InSitemap {
			marker = "+"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %d  %s\n", marker, p.StatusCode, p.URL))
	}
	sb.WriteString("\n")
}

// writeSkipped writes the pages that completed without producing an
// entry. Always shown because a surprising skip usually means the site
// is misconfigured (wrong content type, auth wall) and is the first
// thing the operator needs to see.
func (w *SimpleWriter) writeSkipped(sb *strings.Builder, pages []*model.Page) {
	var skipped []*model.Page
	for _, p := range pages {
		if !p.InSitemap {
			skipped = append(skipped, p)
		}
	}
	if len(skipped) == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("SKIPPED PAGES (%d)\n", len(skipped)))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, p := range skipped {
		reason := skipReason(p)
		sb.WriteString(fmt.Sprintf("  * %s (%s)\n", p.URL, reason))
	}
	sb.WriteString("\n")
}

// skipReason derives a short human-readable reason a page produced no
// sitemap entry.
func skipReason(p *model.Page) string {
	switch {
	case p.StatusCode == 0:
		return "fetch failed"
	case p.StatusCode != 200:
		return fmt.Sprintf("status %d", p.StatusCode)
	default:
		return "not HTML: " + p.ContentType
	}
}

// sortedFreqs returns change frequency labels in update-rate order,
// fastest first, with any unknown labels appended alphabetically.
func sortedFreqs(counts map[string]int) []string {
	order := map[string]int{"always": 0, "hourly": 1, "daily": 2, "weekly": 3, "monthly": 4, "yearly": 5, "never": 6}
	freqs := make([]string, 0, len(counts))
	for f := range counts {
		freqs = append(freqs, f)
	}
	sort.Slice(freqs, func(i, j int) bool {
		oi, iok := order[freqs[i]]
		oj, jok := order[freqs[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return freqs[i] < freqs[j]
	})
	return freqs
}

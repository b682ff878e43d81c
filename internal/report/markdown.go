package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/sitemapgen/internal/model"
)

// MarkdownWriter outputs crawl reports in Markdown format.
// This format is designed for documentation and sharing, e.g. pasting
// the result of a crawl into a pull request or wiki page.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl report in Markdown format.
func (w *MarkdownWriter) Write(summary *model.CrawlSummary, pages []*model.Page) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeChangeFreqs(md, summary)
	w.writePages(md, pages)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.CrawlSummary) {
	md.H1("Sitemap Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Base URL", "`" + summary.BaseURL + "`"},
			{"Sitemap File", "`" + summary.OutputPath + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().Round(1e7).String()},
			{"URLs Admitted", strconv.Itoa(summary.URLsAdmitted)},
			{"URLs Completed", strconv.Itoa(summary.URLsCompleted)},
			{"Sitemap Entries", strconv.Itoa(summary.EntriesWritten)},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")

	if summary.Interrupted {
		md.Warningf(
			"The crawl was interrupted before the frontier drained. The sitemap contains the %d entries collected so far.",
			summary.EntriesWritten,
		)
	} else if summary.EntriesWritten == 0 {
		md.Cautionf("No sitemap entries were produced. Check that the base URL serves HTML with status 200.")
	}
	md.PlainText("")
}

// statusText returns the status text based on the crawl outcome.
func (w *MarkdownWriter) statusText(summary *model.CrawlSummary) string {
	if summary.Interrupted {
		return "⚠️ Interrupted (partial sitemap)"
	}
	return "✅ Complete"
}

// writeChangeFreqs writes the change frequency distribution with a
// mermaid pie chart.
func (w *MarkdownWriter) writeChangeFreqs(md *markdown.Markdown, summary *model.CrawlSummary) {
	if len(summary.ChangeFreqCounts) == 0 {
		return
	}

	md.H2("Change Frequency Distribution")
	md.PlainText("")

	titler := cases.Title(language.English)

	rows := make([][]string, 0, len(summary.ChangeFreqCounts))
	for _, freq := range sortedFreqs(summary.ChangeFreqCounts) {
		rows = append(rows, []string{
			titler.String(freq),
			strconv.Itoa(summary.ChangeFreqCounts[freq]),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Change Frequency", "Entries"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Sitemap Entries by Change Frequency"),
		piechart.WithShowData(true),
	)
	for _, freq := range sortedFreqs(summary.ChangeFreqCounts) {
		if n := summary.ChangeFreqCounts[freq]; n > 0 {
			chart.LabelAndIntValue(titler.String(freq), uint64(n))
		}
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writePages writes the per-page table, including skipped pages.
func (w *MarkdownWriter) writePages(md *markdown.Markdown, pages []*model.Page) {
	md.H2("Pages")
	md.PlainText("")

	if len(pages) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(pages))
	for i, p := range pages {
		inSitemap := "no"
		if p.InSitemap {
			inSitemap = "yes"
		}
		title := p.Title
		if title == "" {
			title = "-"
		}
		rows[i] = []string{
			"`" + truncateString(p.URL, 60) + "`",
			strconv.Itoa(p.StatusCode),
			truncateString(title, 40),
			strconv.Itoa(p.Links),
			inSitemap,
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Status", "Title", "Links", "In Sitemap"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [sitemapgen](https://github.com/nao1215/sitemapgen)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

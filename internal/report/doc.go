// Package report renders the outcome of a crawl session for humans and
// tools. Three writers share one interface: a plain-text terminal
// report, a GitHub-flavored Markdown report with tables and a change
// frequency pie chart, and a JSON report for programmatic consumers.
// MultiWriter fans a single report out to several destinations.
package report

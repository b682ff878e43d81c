package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/sitemapgen/internal/model"
)

// JSONWriter outputs crawl reports in JSON format.
// This format is designed for tool integration and programmatic
// processing, e.g. feeding crawl stats into a CI dashboard.
//
// Design decision: We use standard encoding/json rather than a
// third-party JSON library because:
// 1. It's part of the standard library (no extra dependencies)
// 2. It's sufficient for our needs
// 3. It provides consistent behavior across Go versions
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used per level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = ""
		w.indentString = "  "
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the JSON document shape: the summary plus per-page
// records under a single root.
//
// Design decision: We wrap summary and pages rather than emitting two
// documents because a single root object is easier to consume with jq
// and typed decoders.
type JSONReport struct {
	// Summary is the crawl session accounting.
	Summary *model.CrawlSummary `json:"summary"`

	// Pages is the per-URL fetch record list, in completion order.
	Pages []*model.Page `json:"pages,omitempty"`
}

// Write outputs the crawl report in JSON format.
func (w *JSONWriter) Write(summary *model.CrawlSummary, pages []*model.Page) (int, error) {
	wrapped := &JSONReport{Summary: summary, Pages: pages}

	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(wrapped, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(wrapped)
	}
	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/pagecrawl/internal/model"
)

// JSONWriter outputs crawl summaries in JSON format.
// This format is designed for tool integration and programmatic processing.
//
// Design decision: We use standard encoding/json rather than a third-party
// JSON library because:
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

	// version is the pagecrawl version stamped into the output.
	// Empty means the bare statistics are written.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
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
	return WithIndent("", "  ")
}

// WithVersion wraps the statistics in a JSONSummary carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
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

// Write outputs the crawl statistics in JSON format.
func (w *JSONWriter) Write(stats *model.CrawlStats) (int, error) {
	if w.version == "" {
		return w.writeJSON(stats)
	}
	return w.writeJSON(NewJSONSummary(stats, w.version))
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}

// JSONSummary wraps the statistics with metadata that is not part of the
// crawl itself.
type JSONSummary struct {
	// Version is the pagecrawl version that ran the crawl.
	Version string `json:"version"`

	// Status is "Complete", "Interrupted (partial results)" or "Running".
	Status string `json:"status"`

	// DurationSeconds is the wall-clock time of the crawl loop.
	DurationSeconds float64 `json:"duration_seconds"`

	// Stats are the crawl statistics.
	Stats *model.CrawlStats `json:"stats"`
}

// NewJSONSummary creates a JSONSummary for stats.
func NewJSONSummary(stats *model.CrawlStats, version string) *JSONSummary {
	return &JSONSummary{
		Version:         version,
		Status:          statusText(stats),
		DurationSeconds: stats.Duration().Seconds(),
		Stats:           stats,
	}
}

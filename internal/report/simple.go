package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pagecrawl/internal/model"
)

// ruleWidth is the width of the section rules in text summaries.
const ruleWidth = 70

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with nothing to list are shown.
	showEmpty bool

	// verbose lists every batch file instead of only the count.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
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

// Write outputs the crawl summary in human-readable format.
func (w *SimpleWriter) Write(stats *model.CrawlStats) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, stats)
	w.writeOutcomes(&sb, stats)
	w.writeSeeds(&sb, stats)
	w.writeBatchFiles(&sb, stats)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, stats *model.CrawlStats) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")

	if stats.RunID != "" {
		fmt.Fprintf(sb, "Run ID:    %s\n", stats.RunID)
	}
	fmt.Fprintf(sb, "Started:   %s\n", formatTime(stats.StartedAt))
	fmt.Fprintf(sb, "Finished:  %s\n", formatTime(stats.FinishedAt))
	fmt.Fprintf(sb, "Duration:  %s\n", stats.Duration())
	fmt.Fprintf(sb, "Status:    %s\n", statusText(stats))
	sb.WriteString("\n")
}

// writeSection writes a section title between two rules.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

// writeOutcomes writes the per-outcome counts.
func (w *SimpleWriter) writeOutcomes(sb *strings.Builder, stats *model.CrawlStats) {
	w.writeSection(sb, "OUTCOMES")

	fmt.Fprintf(sb, "  VISITED:  %d\n", stats.Completed)
	fmt.Fprintf(sb, "  FAILED:   %d\n", stats.Failed)
	fmt.Fprintf(sb, "  DROPPED:  %d\n", stats.Dropped)
	fmt.Fprintf(sb, "  PENDING:  %d\n", stats.Pending)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:    %d attempts\n", stats.Attempts())
	sb.WriteString("\n")
}

// writeSeeds lists the seed URLs.
func (w *SimpleWriter) writeSeeds(sb *strings.Builder, stats *model.CrawlStats) {
	if len(stats.Seeds) == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "SEEDS")

	if len(stats.Seeds) == 0 {
		sb.WriteString("  No seeds\n")
	}
	for _, seed := range stats.Seeds {
		fmt.Fprintf(sb, "  [+] %s\n", seed)
	}
	sb.WriteString("\n")
}

// writeBatchFiles writes the output file section.
func (w *SimpleWriter) writeBatchFiles(sb *strings.Builder, stats *model.CrawlStats) {
	if len(stats.BatchFiles) == 0 && stats.PageFiles == 0 && !w.showEmpty {
		return
	}

	w.writeSection(sb, "OUTPUT FILES")

	fmt.Fprintf(sb, "  Raw HTML files: %d\n", stats.PageFiles)
	fmt.Fprintf(sb, "  Batch files:    %d\n", len(stats.BatchFiles))
	if w.verbose {
		for _, path := range stats.BatchFiles {
			fmt.Fprintf(sb, "    * %s\n", path)
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

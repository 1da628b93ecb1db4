package report

import (
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/pagecrawl/internal/model"
)

// summaryTimeFormat is how timestamps appear in summaries.
const summaryTimeFormat = "2006-01-02 15:04:05 MST"

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter

	// version is shown in the footer.
	version string
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer, version string) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
		version:    version,
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(stats *model.CrawlStats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, stats)
	w.writeOutcomes(md, stats)
	w.writeSeeds(md, stats)
	w.writeBatchFiles(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H1("Crawl Summary")
	md.PlainText("")

	runID := stats.RunID
	if runID == "" {
		runID = "-"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Run ID", "`" + runID + "`"},
			{"Started", formatTime(stats.StartedAt)},
			{"Finished", formatTime(stats.FinishedAt)},
			{"Duration", stats.Duration().String()},
			{"Status", statusText(stats)},
		},
	})
	md.PlainText("")
}

// writeOutcomes writes the per-outcome counts and a distribution chart.
func (w *MarkdownWriter) writeOutcomes(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H2("Outcomes")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"Visited", strconv.Itoa(stats.Completed)},
			{"Failed", strconv.Itoa(stats.Failed)},
			{"Dropped (non-200)", strconv.Itoa(stats.Dropped)},
			{"Pending", strconv.Itoa(stats.Pending)},
			{"**Attempts**", "**" + strconv.Itoa(stats.Attempts()) + "**"},
		},
	})
	md.PlainText("")

	if stats.Attempts() > 0 {
		w.writePieChart(md, stats)
	}

	w.writeAlert(md, stats)
}

// writePieChart writes a mermaid pie chart of fetch outcomes.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, stats *model.CrawlStats) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Fetch Outcomes"),
		piechart.WithShowData(true),
	)

	if stats.Completed > 0 {
		chart.LabelAndIntValue("Visited", uint64(stats.Completed))
	}
	if stats.Failed > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failed))
	}
	if stats.Dropped > 0 {
		chart.LabelAndIntValue("Dropped", uint64(stats.Dropped))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an alert describing how the crawl went.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, stats *model.CrawlStats) {
	switch {
	case stats.Completed == 0:
		md.Cautionf("No page was visited. %d fetch(es) failed and %d were dropped.",
			stats.Failed, stats.Dropped)
	case stats.Interrupted:
		md.Warningf("The crawl stopped early with %d URL(s) still pending.", stats.Pending)
	case stats.Failed > 0:
		md.Importantf("%d fetch(es) failed at the transport level.", stats.Failed)
	default:
		md.Tip("All fetched pages were processed.")
	}
	md.PlainText("")
}

// writeSeeds lists the seed URLs.
func (w *MarkdownWriter) writeSeeds(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H2("Seeds")
	md.PlainText("")

	if len(stats.Seeds) == 0 {
		md.PlainText("No seeds.")
		md.PlainText("")
		return
	}

	md.BulletList(stats.Seeds...)
	md.PlainText("")
}

// writeBatchFiles lists the JSON batch files and the raw page count.
func (w *MarkdownWriter) writeBatchFiles(md *markdown.Markdown, stats *model.CrawlStats) {
	md.H2("Output Files")
	md.PlainText("")
	md.PlainTextf("Raw HTML files written: %d", stats.PageFiles)
	md.PlainText("")

	if len(stats.BatchFiles) == 0 {
		md.PlainText("No batch files were written.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(stats.BatchFiles))
	for i, path := range stats.BatchFiles {
		rows[i] = []string{strconv.Itoa(i + 1), "`" + filepath.Base(path) + "`", truncateString(path, 60)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "File", "Path"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	if w.version != "" {
		md.PlainTextf("*Summary generated by pagecrawl %s*", w.version)
		return
	}
	md.PlainText("*Summary generated by pagecrawl*")
}

// formatTime renders t, or "-" when it is unset.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(summaryTimeFormat)
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

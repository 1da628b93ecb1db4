// Package report writes crawl output to disk and renders crawl summaries.
//
// This package contains:
//   - BatchFileWriter: JSON batch files of page records
//   - SimpleWriter: Human-readable text summary for terminal display
//   - JSONWriter: Structured JSON summary for tool integration
//   - MarkdownWriter: Markdown summary for sharing
//
// Design decision: We separate report writing from the data structures
// (which are in the model package) so that the crawler only depends on
// the small BatchWriter contract, not on file formats.
//
// Summary writers implement the Writer interface, allowing them to be used
// interchangeably and composed for multi-format output.
package report

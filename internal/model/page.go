package model

import (
	"strings"
	"time"
)

// TimestampFormat is the layout used for record timestamps.
// RFC 3339 is an ISO-8601 profile, so batch files stay readable by any
// ISO-8601 consumer.
const TimestampFormat = time.RFC3339Nano

// ParagraphSeparator joins paragraph texts into PageResult.Paragraphs.
const ParagraphSeparator = ","

// VisitedPage is the value stored in the visited map for every URL that
// was fetched with HTTP 200.
type VisitedPage struct {
	// Timestamp is when the page was processed (ISO-8601).
	Timestamp string `json:"timestamp"`

	// Title is the trimmed text of the first <title> element, or "None".
	Title string `json:"title"`

	// Paragraphs holds the trimmed text of every <p> element in document order.
	Paragraphs []string `json:"p_tags"`

	// ImageURLs holds the absolute http(s) image URLs found on the page.
	ImageURLs []string `json:"image_urls"`
}

// PageResult is the structured summary of one successfully fetched page.
// It is created once, appended to the in-memory batch and never mutated.
type PageResult struct {
	// URL is the exact URL string popped from the frontier.
	URL string `json:"url"`

	// Timestamp is when the page was processed (ISO-8601).
	Timestamp string `json:"timestamp"`

	// Title is the page title, "None" when the page has no <title>.
	Title string `json:"title"`

	// Paragraphs is every paragraph text joined by ParagraphSeparator.
	Paragraphs string `json:"p_tags"`

	// ImageURLs holds the absolute http(s) image URLs found on the page.
	// Never nil, so it serializes as [] rather than null.
	ImageURLs []string `json:"image_urls"`
}

// NewPageResult builds the record for url from a visited entry.
func NewPageResult(url string, visited VisitedPage) PageResult {
	images := make([]string, len(visited.ImageURLs))
	copy(images, visited.ImageURLs)

	return PageResult{
		URL:        url,
		Timestamp:  visited.Timestamp,
		Title:      visited.Title,
		Paragraphs: JoinParagraphs(visited.Paragraphs),
		ImageURLs:  images,
	}
}

// JoinParagraphs concatenates paragraph texts with ParagraphSeparator.
func JoinParagraphs(paragraphs []string) string {
	return strings.Join(paragraphs, ParagraphSeparator)
}

// FormatTimestamp renders t in TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// ArchivedPage describes a visited page together with where its data was
// written. It is what the crawl history database stores.
type ArchivedPage struct {
	// Result is the record appended to the batch.
	Result PageResult

	// Paragraphs keeps the individual paragraph texts.
	Paragraphs []string

	// HTMLFile is the path of the raw HTML file.
	HTMLFile string

	// Sequence is the page's position in the crawl, starting at 1.
	Sequence int

	// BatchSequence is the number of the JSON batch file the record goes to.
	BatchSequence int
}

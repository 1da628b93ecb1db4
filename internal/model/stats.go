package model

import "time"

// CrawlStats summarizes a crawl run.
type CrawlStats struct {
	// RunID identifies the run in the history database and summary.
	RunID string `json:"run_id"`

	// Seeds are the URLs the frontier was seeded with.
	Seeds []string `json:"seeds"`

	// Completed is the number of pages fetched with HTTP 200.
	Completed int `json:"completed"`

	// Failed is the number of fetch attempts that ended in a transport error.
	Failed int `json:"failed"`

	// Dropped is the number of responses discarded for a non-200 status.
	Dropped int `json:"dropped"`

	// BatchFiles lists the JSON batch files written, in order.
	BatchFiles []string `json:"batch_files"`

	// Pending is the number of URLs left in the frontier.
	Pending int `json:"pending"`

	// PageFiles is the number of raw HTML files written.
	PageFiles int `json:"page_files"`

	// StartedAt is when the crawl loop started.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the crawl loop returned.
	FinishedAt time.Time `json:"finished_at"`

	// Interrupted reports whether the crawl stopped before the frontier emptied.
	Interrupted bool `json:"interrupted"`
}

// Attempts returns the number of URLs popped from the frontier.
func (s *CrawlStats) Attempts() int {
	return s.Completed + s.Failed + s.Dropped
}

// Duration returns how long the crawl ran.
// Zero is returned while the crawl is still running.
func (s *CrawlStats) Duration() time.Duration {
	if s.FinishedAt.IsZero() || s.StartedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

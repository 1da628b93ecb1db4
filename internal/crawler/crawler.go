package crawler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding/unicode"

	"github.com/nao1215/pagecrawl/internal/model"
)

// DefaultBatchSize is the number of completed pages per JSON batch file.
const DefaultBatchSize = 100

// DefaultMaxBodySize limits how much of a response body is read.
const DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// ErrFrontierEmpty is returned by Step when there is nothing left to fetch.
var ErrFrontierEmpty = errors.New("frontier is empty")

// PageArchive persists the raw body of a visited page.
type PageArchive interface {
	// Save writes body as the seq-th page of the crawl and returns its path.
	Save(seq int, body []byte) (string, error)
}

// BatchWriter persists a batch of page records.
type BatchWriter interface {
	// Flush writes records as batch number seq and returns the file path.
	Flush(records []model.PageResult, seq int) (string, error)
}

// Recorder receives every visited page after it has been archived.
// Recording is best effort: errors are logged and the crawl continues.
type Recorder interface {
	RecordPage(ctx context.Context, page model.ArchivedPage) error
}

// RequestDecorator adjusts an outgoing request, e.g. to add headers.
type RequestDecorator func(req *http.Request)

// PageState is where a URL stands in the crawl loop.
type PageState int

const (
	// StatePending means the URL waits in the frontier.
	StatePending PageState = iota
	// StateFetching means the URL was popped and is being requested.
	StateFetching
	// StateVisited means the page returned 200 and was fully processed.
	StateVisited
	// StateFailed means the request failed at the transport level.
	StateFailed
	// StateDropped means the server answered with a status other than 200.
	StateDropped
)

// String returns the lower-case name of the state.
func (s PageState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateFetching:
		return "fetching"
	case StateVisited:
		return "visited"
	case StateFailed:
		return "failed"
	case StateDropped:
		return "dropped"
	default:
		return fmt.Sprintf("PageState(%d)", int(s))
	}
}

// Outcome is the result of processing one frontier entry.
type Outcome struct {
	// URL is the popped URL.
	URL string

	// State is the terminal state the URL reached.
	State PageState

	// StatusCode is the HTTP status, zero on transport failure.
	StatusCode int

	// Err is the transport error for StateFailed.
	Err error
}

// Crawler runs the sequential crawl loop. It owns the frontier, the
// visited map, the pending batch and the completed-page counter.
//
// A Crawler is not safe for concurrent use. Page and batch numbers follow
// fetch order.
type Crawler struct {
	client   *http.Client
	archive  PageArchive
	batches  BatchWriter
	recorder Recorder
	decorate RequestDecorator
	logger   *slog.Logger
	out      io.Writer
	now      func() time.Time

	batchSize   int
	maxPages    int
	maxBodySize int64
	userAgent   string

	frontier  *Frontier
	visited   map[string]model.VisitedPage
	batch     []model.PageResult
	completed int
	stats     model.CrawlStats
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithBatchSize sets how many completed pages go into one JSON batch.
// Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(c *Crawler) {
		if n > 0 {
			c.batchSize = n
		}
	}
}

// WithMaxPages stops the crawl after n completed pages. 0 means unbounded.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		c.maxPages = n
	}
}

// WithMaxBodySize limits how many bytes of a response body are read.
// 0 means no limit.
func WithMaxBodySize(size int64) Option {
	return func(c *Crawler) {
		c.maxBodySize = size
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Crawler) {
		c.userAgent = ua
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) {
		c.logger = logger
	}
}

// WithOutput sets where the human-readable progress lines go.
func WithOutput(w io.Writer) Option {
	return func(c *Crawler) {
		c.out = w
	}
}

// WithRecorder registers a Recorder for visited pages.
func WithRecorder(r Recorder) Option {
	return func(c *Crawler) {
		c.recorder = r
	}
}

// WithRequestDecorator registers a function applied to every request.
func WithRequestDecorator(d RequestDecorator) Option {
	return func(c *Crawler) {
		c.decorate = d
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Crawler) {
		c.now = now
	}
}

// New creates a Crawler that fetches with client, writes raw pages to
// archive and JSON batches to batches.
func New(client *http.Client, archive PageArchive, batches BatchWriter, opts ...Option) *Crawler {
	c := &Crawler{
		client:      client,
		archive:     archive,
		batches:     batches,
		out:         io.Discard,
		now:         time.Now,
		batchSize:   DefaultBatchSize,
		maxBodySize: DefaultMaxBodySize,
		frontier:    NewFrontier(),
		visited:     make(map[string]model.VisitedPage),
		batch:       make([]model.PageResult, 0),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.client == nil {
		c.client = http.DefaultClient
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Seed pushes urls onto the frontier in the given order, so the last one
// is fetched first.
func (c *Crawler) Seed(urls ...string) {
	for _, u := range urls {
		c.frontier.Push(u)
		c.stats.Seeds = append(c.stats.Seeds, u)
	}
}

// Run processes the frontier until it is empty, the context is cancelled
// or the page limit is reached, then flushes the remaining batch.
//
// Only filesystem errors abort the loop. A cancelled context is reported
// after the final flush so that no completed page is lost.
func (c *Crawler) Run(ctx context.Context) (*model.CrawlStats, error) {
	c.stats.StartedAt = c.now()
	c.logger.Info("crawl started",
		"seeds", c.stats.Seeds,
		"batchSize", c.batchSize,
		"maxPages", c.maxPages,
	)

	for !c.frontier.IsEmpty() {
		if ctx.Err() != nil {
			c.stats.Interrupted = true
			break
		}
		if c.maxPages > 0 && c.completed >= c.maxPages {
			c.logger.Info("page limit reached", "maxPages", c.maxPages)
			c.stats.Interrupted = true
			break
		}

		if _, err := c.Step(ctx); err != nil {
			c.stats.FinishedAt = c.now()
			return c.Stats(), err
		}
	}

	err := c.Finish()
	c.stats.FinishedAt = c.now()
	if err != nil {
		return c.Stats(), err
	}

	fmt.Fprintln(c.out, "Crawling finished.")
	c.logger.Info("crawl finished",
		"completed", c.stats.Completed,
		"failed", c.stats.Failed,
		"dropped", c.stats.Dropped,
		"batches", len(c.stats.BatchFiles),
		"pending", c.frontier.Len(),
	)

	if c.stats.Interrupted && ctx.Err() != nil {
		return c.Stats(), ctx.Err()
	}
	return c.Stats(), nil
}

// Step pops one URL and drives it to a terminal state.
// The returned error is non-nil only when writing output failed or the
// frontier was empty. When ctx is cancelled during the request the URL is
// pushed back and the outcome stays StatePending.
func (c *Crawler) Step(ctx context.Context) (Outcome, error) {
	pageURL, ok := c.frontier.Pop()
	if !ok {
		return Outcome{State: StatePending}, ErrFrontierEmpty
	}

	c.logger.Debug("fetching page", "url", pageURL, "pending", c.frontier.Len())

	resp, body, err := c.fetch(ctx, pageURL)
	if err != nil && ctx.Err() != nil {
		// Cancelled mid-request: the page was never really attempted.
		c.frontier.Push(pageURL)
		c.logger.Debug("fetch cancelled", "url", pageURL)
		return Outcome{URL: pageURL, State: StatePending, Err: err}, nil
	}
	if err != nil {
		c.stats.Failed++
		fmt.Fprintf(c.out, "Failed to fetch %s: %v\n", pageURL, err)
		c.logger.Warn("fetch failed", "url", pageURL, "error", err)
		return Outcome{URL: pageURL, State: StateFailed, Err: err}, nil
	}

	if resp.StatusCode != http.StatusOK {
		c.stats.Dropped++
		c.logger.Debug("page dropped", "url", pageURL, "status", resp.StatusCode)
		return Outcome{URL: pageURL, State: StateDropped, StatusCode: resp.StatusCode}, nil
	}

	if err := c.visit(ctx, pageURL, body); err != nil {
		return Outcome{URL: pageURL, State: StateFetching, StatusCode: resp.StatusCode}, err
	}

	return Outcome{URL: pageURL, State: StateVisited, StatusCode: resp.StatusCode}, nil
}

// Finish flushes the pending batch, if any, as the batch following the
// last full one.
func (c *Crawler) Finish() error {
	if len(c.batch) == 0 {
		return nil
	}
	return c.flush(c.completed/c.batchSize + 1)
}

// fetch requests pageURL and returns the response along with its body
// decoded to UTF-8. The response body is already closed.
func (c *Crawler) fetch(ctx context.Context, pageURL string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, err
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.decorate != nil {
		c.decorate(req)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp, nil, nil
	}

	var bodyReader io.Reader = resp.Body
	if c.maxBodySize > 0 {
		// One extra byte tells a body of exactly the limit from a longer one.
		bodyReader = io.LimitReader(resp.Body, c.maxBodySize+1)
	}
	raw, err := io.ReadAll(bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if c.maxBodySize > 0 && int64(len(raw)) > c.maxBodySize {
		raw = raw[:c.maxBodySize]
		c.logger.Warn("response body truncated", "url", pageURL, "limit", c.maxBodySize)
	}

	return resp, decodeBody(raw, resp.Header.Get("Content-Type")), nil
}

// decodeBody converts raw to UTF-8 using the Content-Type charset or the
// document's own meta declaration. Undecodable input is returned as-is.
func decodeBody(raw []byte, contentType string) []byte {
	enc, _, _ := charset.DetermineEncoding(raw, contentType)
	if enc == unicode.UTF8 && utf8.Valid(raw) {
		return raw
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// visit applies every effect of a successful fetch. The console lines,
// frontier, visited map and batch are only updated once the page has been
// archived.
func (c *Crawler) visit(ctx context.Context, pageURL string, body []byte) error {
	extractor, err := NewExtractor(pageURL)
	if err != nil {
		return fmt.Errorf("invalid page URL %q: %w", pageURL, err)
	}
	extraction, err := extractor.Extract(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", pageURL, err)
	}

	// Nothing is printed or queued until the page is on disk, so a failed
	// archive leaves the crawl state as it was before the pop.
	seq := c.completed + 1
	htmlFile, err := c.archive.Save(seq, body)
	if err != nil {
		return fmt.Errorf("failed to archive %s: %w", pageURL, err)
	}
	c.stats.PageFiles++

	fmt.Fprintf(c.out, "Title: %s\n", extraction.Title)
	fmt.Fprintf(c.out, "Paragraph Tags: %s\n", model.JoinParagraphs(extraction.Paragraphs))
	fmt.Fprintf(c.out, "Image URLs: %v\n", extraction.ImageURLs)

	queued := c.enqueue(pageURL, extraction.Links)

	visited := model.VisitedPage{
		Timestamp:  model.FormatTimestamp(c.now()),
		Title:      extraction.Title,
		Paragraphs: extraction.Paragraphs,
		ImageURLs:  extraction.ImageURLs,
	}
	c.visited[pageURL] = visited

	record := model.NewPageResult(pageURL, visited)
	c.batch = append(c.batch, record)
	c.completed++
	c.stats.Completed = c.completed

	c.logger.Info("page visited",
		"url", pageURL,
		"title", extraction.Title,
		"links", len(extraction.Links),
		"queued", queued,
		"file", htmlFile,
	)

	c.record(ctx, model.ArchivedPage{
		Result:        record,
		Paragraphs:    extraction.Paragraphs,
		HTMLFile:      htmlFile,
		Sequence:      seq,
		BatchSequence: (seq-1)/c.batchSize + 1,
	})

	if c.completed%c.batchSize == 0 {
		return c.flush(c.completed / c.batchSize)
	}
	return nil
}

// enqueue pushes every link that is neither pending, visited, nor the page
// itself. It returns the number of links pushed.
func (c *Crawler) enqueue(pageURL string, links []string) int {
	queued := 0
	for _, link := range links {
		if link == pageURL {
			continue
		}
		if _, ok := c.visited[link]; ok {
			continue
		}
		if c.frontier.PushIfAbsent(link) {
			queued++
		}
	}
	return queued
}

// record hands page to the Recorder, if any.
func (c *Crawler) record(ctx context.Context, page model.ArchivedPage) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.RecordPage(ctx, page); err != nil {
		c.logger.Warn("failed to record page", "url", page.Result.URL, "error", err)
	}
}

// flush writes the pending batch as file seq and starts a new batch.
func (c *Crawler) flush(seq int) error {
	path, err := c.batches.Flush(c.batch, seq)
	if err != nil {
		return fmt.Errorf("failed to write batch %d: %w", seq, err)
	}

	c.logger.Info("batch written", "file", path, "records", len(c.batch))
	c.stats.BatchFiles = append(c.stats.BatchFiles, path)
	c.batch = make([]model.PageResult, 0, c.batchSize)
	return nil
}

// Frontier returns the pending URLs from bottom to top of the stack.
func (c *Crawler) Frontier() []string {
	return c.frontier.Items()
}

// Visited returns a copy of the visited map.
func (c *Crawler) Visited() map[string]model.VisitedPage {
	return maps.Clone(c.visited)
}

// Batch returns a copy of the records not yet flushed.
func (c *Crawler) Batch() []model.PageResult {
	batch := make([]model.PageResult, len(c.batch))
	copy(batch, c.batch)
	return batch
}

// Completed returns the number of pages visited so far.
func (c *Crawler) Completed() int {
	return c.completed
}

// Stats returns a snapshot of the crawl statistics.
func (c *Crawler) Stats() *model.CrawlStats {
	stats := c.stats
	stats.Pending = c.frontier.Len()
	stats.Seeds = append([]string(nil), c.stats.Seeds...)
	stats.BatchFiles = append([]string(nil), c.stats.BatchFiles...)
	return &stats
}

// SetRunID tags the statistics with the identifier of this run.
func (c *Crawler) SetRunID(id string) {
	c.stats.RunID = id
}

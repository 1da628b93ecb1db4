package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pagecrawl/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "pagecrawl.db"

// ErrDatabaseNotFound is returned by Open when the database must already
// exist but does not.
var ErrDatabaseNotFound = errors.New("database not found")

// ErrAmbiguousRunID is returned when a run ID prefix matches several runs.
var ErrAmbiguousRunID = errors.New("run id prefix matches more than one run")

// CrawlDB provides SQLite-based storage for crawl runs and visited pages.
//
// Design decision: We keep every run in a single database file rather than
// one file per run. This lets history queries span runs and keeps
// backup/restore to a single file.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist,
// ErrDatabaseNotFound is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrDatabaseNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the database file path.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Runs store one crawl invocation and its final statistics
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seeds TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		completed INTEGER DEFAULT 0,
		failed INTEGER DEFAULT 0,
		dropped INTEGER DEFAULT 0,
		pending INTEGER DEFAULT 0,
		page_files INTEGER DEFAULT 0,
		batch_files TEXT,
		interrupted INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- Pages store every page visited by a run
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		sequence INTEGER NOT NULL,
		url TEXT NOT NULL,
		visited_at TEXT NOT NULL,
		title TEXT,
		paragraphs TEXT,
		image_urls TEXT,
		html_file TEXT,
		batch_seq INTEGER,
		UNIQUE(run_id, sequence)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_run ON pages(run_id);
	CREATE INDEX IF NOT EXISTS idx_pages_url ON pages(url);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// StartRun registers a new run.
func (cdb *CrawlDB) StartRun(ctx context.Context, runID string, seeds []string, startedAt time.Time) error {
	seedsJSON, err := json.Marshal(nonNil(seeds))
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	query := `INSERT INTO runs (id, seeds, started_at) VALUES (?, ?, ?)`
	if _, err := cdb.db.ExecContext(ctx, query, runID, string(seedsJSON), formatTimestamp(startedAt)); err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}
	return nil
}

// FinishRun stores the final statistics of the run stats.RunID.
func (cdb *CrawlDB) FinishRun(ctx context.Context, stats *model.CrawlStats) error {
	batchJSON, err := json.Marshal(nonNil(stats.BatchFiles))
	if err != nil {
		return fmt.Errorf("failed to serialize batch files: %w", err)
	}

	query := `
	UPDATE runs SET
		finished_at = ?,
		completed = ?,
		failed = ?,
		dropped = ?,
		pending = ?,
		page_files = ?,
		batch_files = ?,
		interrupted = ?
	WHERE id = ?
	`

	result, err := cdb.db.ExecContext(ctx, query,
		formatTimestamp(stats.FinishedAt),
		stats.Completed,
		stats.Failed,
		stats.Dropped,
		stats.Pending,
		stats.PageFiles,
		string(batchJSON),
		stats.Interrupted,
		stats.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("failed to finish run: unknown run %q", stats.RunID)
	}
	return nil
}

// PageRecord represents a stored visited page.
type PageRecord struct {
	ID         int64
	RunID      string
	Sequence   int
	URL        string
	VisitedAt  time.Time
	Title      string
	Paragraphs []string
	ImageURLs  []string
	HTMLFile   string
	BatchSeq   int
}

// InsertPage stores a visited page of run runID.
func (cdb *CrawlDB) InsertPage(ctx context.Context, runID string, page model.ArchivedPage) error {
	paragraphsJSON, err := json.Marshal(nonNil(page.Paragraphs))
	if err != nil {
		return fmt.Errorf("failed to serialize paragraphs: %w", err)
	}
	imagesJSON, err := json.Marshal(nonNil(page.Result.ImageURLs))
	if err != nil {
		return fmt.Errorf("failed to serialize image urls: %w", err)
	}

	query := `
	INSERT INTO pages (run_id, sequence, url, visited_at, title, paragraphs, image_urls, html_file, batch_seq)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = cdb.db.ExecContext(ctx, query,
		runID,
		page.Sequence,
		page.Result.URL,
		page.Result.Timestamp,
		page.Result.Title,
		string(paragraphsJSON),
		string(imagesJSON),
		page.HTMLFile,
		page.BatchSequence,
	)
	if err != nil {
		return fmt.Errorf("failed to insert page: %w", err)
	}
	return nil
}

// GetRun retrieves a run by its ID. It returns nil when there is no such run.
func (cdb *CrawlDB) GetRun(ctx context.Context, runID string) (*model.CrawlStats, error) {
	rows, err := cdb.db.QueryContext(ctx, selectRuns+` WHERE id = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

// FindRun retrieves the run whose ID starts with prefix.
// It returns nil when nothing matches and ErrAmbiguousRunID when several
// runs match.
func (cdb *CrawlDB) FindRun(ctx context.Context, prefix string) (*model.CrawlStats, error) {
	rows, err := cdb.db.QueryContext(ctx, selectRuns+` WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to find run: %w", err)
	}
	defer rows.Close()

	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	switch len(runs) {
	case 0:
		return nil, nil
	case 1:
		return runs[0], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrAmbiguousRunID, prefix)
	}
}

// ListRuns returns the most recent runs first. limit <= 0 returns all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, limit int) ([]*model.CrawlStats, error) {
	query := selectRuns + ` ORDER BY started_at DESC`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// ListPages returns the pages of run runID in visit order.
func (cdb *CrawlDB) ListPages(ctx context.Context, runID string) ([]PageRecord, error) {
	query := `
	SELECT id, run_id, sequence, url, visited_at, title, paragraphs, image_urls, html_file, batch_seq
	FROM pages
	WHERE run_id = ?
	ORDER BY sequence
	`

	rows, err := cdb.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var results []PageRecord
	for rows.Next() {
		var (
			page           PageRecord
			visitedAt      string
			paragraphsJSON sql.NullString
			imagesJSON     sql.NullString
		)

		err := rows.Scan(
			&page.ID,
			&page.RunID,
			&page.Sequence,
			&page.URL,
			&visitedAt,
			&page.Title,
			&paragraphsJSON,
			&imagesJSON,
			&page.HTMLFile,
			&page.BatchSeq,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}

		page.VisitedAt = parseTimestamp(visitedAt)
		page.Paragraphs = decodeStrings(paragraphsJSON)
		page.ImageURLs = decodeStrings(imagesJSON)
		results = append(results, page)
	}

	return results, rows.Err()
}

// selectRuns is the column list shared by every run query.
const selectRuns = `
	SELECT id, seeds, started_at, finished_at, completed, failed, dropped,
		pending, page_files, batch_files, interrupted
	FROM runs`

// scanRuns reads every row of a selectRuns query.
func scanRuns(rows *sql.Rows) ([]*model.CrawlStats, error) {
	var runs []*model.CrawlStats
	for rows.Next() {
		var (
			stats      model.CrawlStats
			seedsJSON  string
			startedAt  string
			finishedAt sql.NullString
			batchJSON  sql.NullString
		)

		err := rows.Scan(
			&stats.RunID,
			&seedsJSON,
			&startedAt,
			&finishedAt,
			&stats.Completed,
			&stats.Failed,
			&stats.Dropped,
			&stats.Pending,
			&stats.PageFiles,
			&batchJSON,
			&stats.Interrupted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		stats.Seeds = decodeStrings(sql.NullString{String: seedsJSON, Valid: true})
		stats.BatchFiles = decodeStrings(batchJSON)
		stats.StartedAt = parseTimestamp(startedAt)
		if finishedAt.Valid {
			stats.FinishedAt = parseTimestamp(finishedAt.String)
		}
		runs = append(runs, &stats)
	}

	return runs, rows.Err()
}

// RunRecorder records visited pages of a single run.
// It satisfies the crawler's Recorder interface.
type RunRecorder struct {
	db    *CrawlDB
	runID string
}

// Recorder returns a RunRecorder bound to runID.
func (cdb *CrawlDB) Recorder(runID string) *RunRecorder {
	return &RunRecorder{db: cdb, runID: runID}
}

// RecordPage stores page under the recorder's run.
func (r *RunRecorder) RecordPage(ctx context.Context, page model.ArchivedPage) error {
	return r.db.InsertPage(ctx, r.runID, page)
}

// nonNil returns s, or an empty slice when s is nil, so that it serializes
// as [] instead of null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// decodeStrings parses a JSON string array column. Malformed or NULL values
// yield an empty slice.
func decodeStrings(v sql.NullString) []string {
	out := []string{}
	if !v.Valid || v.String == "" {
		return out
	}
	if err := json.Unmarshal([]byte(v.String), &out); err != nil {
		return []string{}
	}
	return out
}

// storageTimeFormat has a fixed width so stored timestamps sort as text.
const storageTimeFormat = "2006-01-02T15:04:05.000000000Z"

// formatTimestamp renders t in UTC for storage.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format(storageTimeFormat)
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // Format written by formatTimestamp
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultSeed is the page the crawl starts from when no seed is given.
	DefaultSeed = "https://www.azquotes.com/quotes/topics/focus.html"

	// DefaultOutputDir is where raw pages and batch files are written.
	DefaultOutputDir = "."

	// DefaultFilePrefix is prepended to every raw page and batch file name.
	DefaultFilePrefix = "azquotes"

	// DefaultBatchSize is the number of completed pages per JSON batch file.
	DefaultBatchSize = 100

	// DefaultMaxPages of 0 crawls until the frontier is empty.
	DefaultMaxPages = 0

	// DefaultTimeout bounds a single request including reading the body.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize limits how much of a response body is read.
	// 10MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultUserAgent identifies pagecrawl in HTTP requests.
	DefaultUserAgent = "pagecrawl/1.0 (+https://github.com/nao1215/pagecrawl)"

	// DefaultLogFormat is the log output format.
	DefaultLogFormat = "text"

	// AppName is the application name used for XDG directory paths.
	AppName = "pagecrawl"
)

// Config holds all configuration options for pagecrawl.
// It is populated from defaults, then the config file, then CLI flags, and
// passed through the application rather than kept in global state.
//
// Design decision: We use a single flat struct instead of nested structs.
// The number of options is manageable, and nesting would add complexity
// without significant benefit.
type Config struct {
	// Seeds are the URLs pushed onto the frontier before the crawl starts.
	// They are pushed in order, so the last seed is fetched first.
	Seeds []string

	// OutputDir is the directory raw pages and batch files are written to.
	OutputDir string

	// FilePrefix is prepended to raw page (<prefix><n>.html) and batch
	// (<prefix><seq>.json) file names.
	FilePrefix string

	// BatchSize is the number of completed pages per JSON batch file.
	BatchSize int

	// MaxPages stops the crawl after this many completed pages.
	// A value of 0 means no limit.
	MaxPages int

	// Timeout is the per-request timeout. 0 disables it.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated. 0 disables the limit.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// LogFormat selects the log handler: "text" or "json".
	LogFormat string

	// ConfigFilePath is the path to the configuration file.
	// If empty, FindConfigFile searches the usual locations.
	ConfigFilePath string

	// Hosts holds the per-host request settings loaded from the config file.
	Hosts *File

	// DBDir is the directory of the crawl history database.
	// Defaults to the XDG data directory (~/.local/share/pagecrawl on Linux).
	DBDir string

	// SaveToDB records runs and visited pages in the crawl history database.
	SaveToDB bool

	// SummaryFile is where the crawl summary is written after the crawl.
	// The format follows the extension (.md, .json, otherwise text).
	// Empty disables the summary file.
	SummaryFile string
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Seeds:       []string{DefaultSeed},
		OutputDir:   DefaultOutputDir,
		FilePrefix:  DefaultFilePrefix,
		BatchSize:   DefaultBatchSize,
		MaxPages:    DefaultMaxPages,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		LogFormat:   DefaultLogFormat,
		DBDir:       XDGDataDir(),
		SaveToDB:    true,
	}
}

// XDGDataDir returns the XDG data directory for pagecrawl.
// On Linux: ~/.local/share/pagecrawl
// On macOS: ~/Library/Application Support/pagecrawl
// On Windows: %LOCALAPPDATA%\pagecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for pagecrawl.
// On Linux: ~/.config/pagecrawl
// On macOS: ~/Library/Application Support/pagecrawl
// On Windows: %APPDATA%\pagecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found, wrapping one of the sentinel errors.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast, before any request is sent or file written.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeed
	}
	for _, seed := range c.Seeds {
		if err := validateSeed(seed); err != nil {
			return err
		}
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.Timeout < 0 {
		return ErrInvalidTimeout
	}

	if c.MaxPages < 0 {
		return ErrInvalidMaxPages
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.FilePrefix == "" || strings.ContainsAny(c.FilePrefix, `/\`) {
		return ErrEmptyFilePrefix
	}

	return nil
}

// validateSeed checks that seed is an absolute http(s) URL with a host.
func validateSeed(seed string) error {
	u, err := url.Parse(seed)
	if err != nil {
		return fmt.Errorf("%w: %q: %w", ErrInvalidSeed, seed, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
	}
	return nil
}

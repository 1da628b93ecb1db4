package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/pagecrawl/internal/archive"
	"github.com/nao1215/pagecrawl/internal/config"
	"github.com/nao1215/pagecrawl/internal/crawler"
	"github.com/nao1215/pagecrawl/internal/database"
	"github.com/nao1215/pagecrawl/internal/log"
	"github.com/nao1215/pagecrawl/internal/model"
	"github.com/nao1215/pagecrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [seed-url...]",
		Short: "Crawl from the seed pages and archive what is found",
		Long: `Crawl fetches pages depth-first starting from the seed URLs.

For every page answered with 200 OK it:
- saves the raw HTML as <prefix><n>.html
- prints the title, paragraphs and image URLs
- pushes every new http(s) link onto the frontier

Every 100 visited pages are written to <prefix><seq>.json. The pages left
over when the crawl ends go to the next sequence number.

Press Ctrl+C to stop early. Pages already visited are still written.

Examples:
  # Crawl from the default seed
  pagecrawl crawl

  # Crawl from your own seeds into ./out
  pagecrawl crawl -o out https://example.com/

  # Stop after 500 pages and write a Markdown summary
  pagecrawl crawl -n 500 -s summary.md

Configuration file (.pagecrawl) example:
  crawl:
    batch_size: 50
  hosts:
    www.azquotes.com:
      cookie: "session_id=abc123"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Output flags
	cmd.Flags().StringP("output-dir", "o", config.DefaultOutputDir,
		"Directory for raw HTML pages and JSON batch files")
	cmd.Flags().StringP("prefix", "p", config.DefaultFilePrefix,
		"File name prefix for raw pages and batch files")
	cmd.Flags().IntP("batch-size", "b", config.DefaultBatchSize,
		"Number of visited pages per JSON batch file")
	cmd.Flags().StringP("summary", "s", "",
		"Write a crawl summary to this file (.md, .json, otherwise text)")

	// Crawl behavior flags
	cmd.Flags().IntP("max-pages", "n", config.DefaultMaxPages,
		"Stop after this many visited pages (0 = no limit)")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each request (0 = no timeout)")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body-size", config.DefaultMaxBodySize,
		"Maximum response body size in bytes (0 = no limit)")

	// History flags
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")
	cmd.Flags().Bool("no-history", false,
		"Do not record this run in the history database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := log.NewLogger(os.Stderr, cfg.Verbose, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, finishing current page...")
			cancel()
		case <-ctx.Done():
		}
	}()

	_, err = runCrawl(ctx, cfg, logger, cmd.OutOrStdout())
	return err
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getStringFlag retrieves a string flag from the command or its parent.
func getStringFlag(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		value, err = cmd.Root().PersistentFlags().GetString(name)
		if err != nil {
			return ""
		}
	}
	return value
}

// loadConfigFile finds and loads the configuration file.
// If the user explicitly specified a path, a missing file is an error.
// Otherwise an empty configuration is returned.
func loadConfigFile(path string) (*config.File, error) {
	configPath := config.FindConfigFile(path)
	if configPath == "" {
		if path != "" {
			return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, path)
		}
		return &config.File{Hosts: make(map[string]config.HostConfig)}, nil
	}

	cf, err := config.LoadConfigFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
	}
	return cf, nil
}

// buildConfig creates a Config from defaults, the configuration file and
// the command flags, in that order of precedence.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.ConfigFilePath = getStringFlag(cmd, "config")
	cfg.Verbose = getVerboseFlag(cmd)

	cf, err := loadConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	cf.ApplyTo(cfg)

	if format := getStringFlag(cmd, "log-format"); format != "" {
		cfg.LogFormat = format
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		if cfg.OutputDir, err = flags.GetString("output-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("prefix") {
		if cfg.FilePrefix, err = flags.GetString("prefix"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("batch-size") {
		if cfg.BatchSize, err = flags.GetInt("batch-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("summary") {
		if cfg.SummaryFile, err = flags.GetString("summary"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-pages") {
		if cfg.MaxPages, err = flags.GetInt("max-pages"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("user-agent") {
		if cfg.UserAgent, err = flags.GetString("user-agent"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("max-body-size") {
		if cfg.MaxBodySize, err = flags.GetInt64("max-body-size"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("db-dir") {
		if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("no-history") {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return nil, err
		}
		cfg.SaveToDB = !noHistory
	}

	// Positional arguments replace the configured seeds.
	if len(args) > 0 {
		cfg.Seeds = args
	}

	return cfg, nil
}

// runCrawl executes one crawl run and returns its statistics.
// Console lines for every page go to out.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) (*model.CrawlStats, error) {
	runID := uuid.NewString()

	logger.Info("starting crawl",
		"runID", runID,
		"seeds", cfg.Seeds,
		"outputDir", cfg.OutputDir,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	opts := []crawler.Option{
		crawler.WithBatchSize(cfg.BatchSize),
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxBodySize(cfg.MaxBodySize),
		crawler.WithUserAgent(cfg.UserAgent),
		crawler.WithLogger(logger),
		crawler.WithOutput(out),
	}
	if cfg.Hosts != nil {
		opts = append(opts, crawler.WithRequestDecorator(cfg.Hosts.Decorate))
	}

	// History is best effort: a crawl never fails because of it.
	db := openHistory(cfg, logger)
	if db != nil {
		defer db.Close()
		if err := db.StartRun(ctx, runID, cfg.Seeds, time.Now()); err != nil {
			logger.Warn("failed to record run start", "runID", runID, "error", err)
		} else {
			opts = append(opts, crawler.WithRecorder(db.Recorder(runID)))
		}
	}

	client := &http.Client{Timeout: cfg.Timeout}
	c := crawler.New(
		client,
		archive.NewStore(cfg.OutputDir, cfg.FilePrefix),
		report.NewBatchFileWriter(cfg.OutputDir, cfg.FilePrefix),
		opts...,
	)
	c.SetRunID(runID)
	c.Seed(cfg.Seeds...)

	stats, crawlErr := c.Run(ctx)
	if errors.Is(crawlErr, context.Canceled) {
		logger.Warn("crawl interrupted", "pending", stats.Pending)
		crawlErr = nil
	}

	if db != nil {
		// The run context may already be cancelled.
		if err := db.FinishRun(context.WithoutCancel(ctx), stats); err != nil {
			logger.Warn("failed to record run result", "runID", runID, "error", err)
		} else {
			logger.Info("run saved to history", "runID", runID, "db", db.Path())
		}
	}

	if err := writeSummary(cfg, stats, logger); err != nil {
		logger.Error("summary failed", "file", cfg.SummaryFile, "error", err)
	}

	if crawlErr != nil {
		return stats, fmt.Errorf("crawl failed: %w", crawlErr)
	}
	return stats, nil
}

// openHistory opens the history database if enabled.
// It returns nil when history is disabled or the database cannot be opened.
func openHistory(cfg *config.Config, logger *slog.Logger) *database.CrawlDB {
	if !cfg.SaveToDB {
		return nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history disabled: failed to open database", "dir", cfg.DBDir, "error", err)
		return nil
	}
	logger.Debug("database opened", "dir", cfg.DBDir)
	return db
}

// writeSummary writes the crawl summary to cfg.SummaryFile in the format
// selected by its extension. In verbose mode the text summary is also
// written to stderr.
func writeSummary(cfg *config.Config, stats *model.CrawlStats, logger *slog.Logger) error {
	var writers []report.Writer
	if cfg.Verbose {
		writers = append(writers, report.NewSimpleWriter(os.Stderr, report.WithVerbose(true), report.WithShowEmpty(true)))
	}

	if cfg.SummaryFile != "" {
		dir := filepath.Dir(cfg.SummaryFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.SummaryFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create summary file: %w", err)
		}
		defer f.Close()

		w, err := report.NewWriter(report.FormatFromPath(cfg.SummaryFile), f, getVersion())
		if err != nil {
			return err
		}
		writers = append(writers, w)
	}

	if len(writers) == 0 {
		return nil
	}

	if _, err := report.NewMultiWriter(writers...).Write(stats); err != nil {
		return err
	}
	if cfg.SummaryFile != "" {
		logger.Info("summary written", "file", cfg.SummaryFile)
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pagecrawl/internal/config"
	"github.com/nao1215/pagecrawl/internal/database"
	"github.com/nao1215/pagecrawl/internal/model"
	"github.com/nao1215/pagecrawl/internal/report"
	"github.com/spf13/cobra"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
// This command shows crawl runs stored in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show past crawl runs",
		Long: `History lists the crawl runs recorded in the history database.

Given a run ID, or any unique prefix of one, it shows the summary of that
run followed by every page it visited.

Examples:
  # List the 20 most recent runs
  pagecrawl history

  # List every run
  pagecrawl history --limit 0

  # Show one run
  pagecrawl history 3f2a9c1e

  # Show one run as Markdown
  pagecrawl history 3f2a9c1e --format markdown`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit,
		"Maximum number of runs to list (0 = all)")
	cmd.Flags().StringP("format", "f", report.FormatText,
		"Output format for a single run: text, json or markdown")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	dbDir, err := historyDBDir(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		if errors.Is(err, database.ErrDatabaseNotFound) {
			fmt.Fprintln(out, "No crawl history found.")
			fmt.Fprintln(out, "\nUse 'pagecrawl crawl' to start a crawl.")
			return nil
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := context.Background()
	if len(args) == 0 {
		return listRuns(ctx, db, out, limit)
	}
	return showRun(ctx, db, out, args[0], format)
}

// historyDBDir returns the database directory from the --db-dir flag,
// the configuration file or the XDG default, in that order.
func historyDBDir(cmd *cobra.Command) (string, error) {
	if cmd.Flags().Changed("db-dir") {
		return cmd.Flags().GetString("db-dir")
	}

	cf, err := loadConfigFile(getStringFlag(cmd, "config"))
	if err != nil {
		return "", err
	}
	cfg := config.NewConfig()
	cf.ApplyTo(cfg)
	return cfg.DBDir, nil
}

// listRuns prints the most recent runs as a table.
func listRuns(ctx context.Context, db *database.CrawlDB, out io.Writer, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to get crawl history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintln(out, "No crawl history found.")
		fmt.Fprintln(out, "\nUse 'pagecrawl crawl' to start a crawl.")
		return nil
	}

	fmt.Fprintf(out, "Crawl history (%d runs):\n\n", len(runs))
	fmt.Fprintf(out, "  %-8s  %-19s  %-8s  %-7s  %-7s  %s\n",
		"ID", "Started", "Visited", "Failed", "Batches", "Status")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 70))

	for _, run := range runs {
		fmt.Fprintf(out, "  %-8s  %-19s  %-8d  %-7d  %-7d  %s\n",
			shortRunID(run.RunID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Completed,
			run.Failed,
			len(run.BatchFiles),
			runStatus(run),
		)
	}

	fmt.Fprintln(out, "\nUse 'pagecrawl history <id>' to show the pages of a run.")
	return nil
}

// showRun prints the summary and pages of the run matching prefix.
func showRun(ctx context.Context, db *database.CrawlDB, out io.Writer, prefix, format string) error {
	run, err := db.FindRun(ctx, prefix)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("no crawl run found for id %q", prefix)
	}

	w, err := report.NewWriter(format, out, getVersion())
	if err != nil {
		return err
	}
	if _, err := w.Write(run); err != nil {
		return err
	}

	// Structured formats are meant to be parsed, so the page list is only
	// appended to text output.
	if format != report.FormatText {
		return nil
	}

	pages, err := db.ListPages(ctx, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to get pages: %w", err)
	}

	fmt.Fprintf(out, "\nVisited pages (%d):\n\n", len(pages))
	for _, page := range pages {
		fmt.Fprintf(out, "  %5d  %-19s  %s\n",
			page.Sequence,
			page.VisitedAt.Local().Format("2006-01-02 15:04:05"),
			page.URL,
		)
		fmt.Fprintf(out, "         %s  (batch %d, %s)\n",
			page.Title, page.BatchSeq, page.HTMLFile)
	}
	return nil
}

// runStatus returns a one-word status for the history table.
func runStatus(run *model.CrawlStats) string {
	switch {
	case run.FinishedAt.IsZero():
		return "running"
	case run.Interrupted:
		return "stopped"
	default:
		return "complete"
	}
}

// shortRunID returns the first 8 characters of a run ID.
func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

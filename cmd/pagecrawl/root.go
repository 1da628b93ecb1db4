package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pagecrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pagecrawl",
		Short: "Sequential web crawler that archives pages and extracts their content",
		Long: `pagecrawl is a sequential web crawler.

Starting from the seed pages, it follows every http(s) link depth-first,
saves each fetched page as raw HTML and writes the page title, paragraphs
and image URLs to JSON batch files of 100 pages each.

Runs and visited pages are recorded in a local history database.
Use --no-history to disable it.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .pagecrawl in current or home directory)")
	cmd.PersistentFlags().String("log-format", "",
		"Log output format: text or json (default: text)")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/nao1215/sitemapgen/internal/config"
	"github.com/nao1215/sitemapgen/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [base-url]",
		Short: "List past sitemap generation runs",
		Long: `History lists crawl sessions recorded in the local database, most
recent first. With a base URL argument only sessions for that crawl
root are shown, which makes it easy to spot a shrinking sitemap or new
fetch failures between runs.

Examples:
  # List all recorded sessions
  sitemapgen history

  # List sessions for one site
  sitemapgen history https://example.com/docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", "",
		"Database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	var baseURL string
	if len(args) == 1 {
		baseURL = args[0]
	}

	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'sitemapgen generate' first): %w", err)
	}
	defer db.Close()

	sessions, err := db.ListSessions(cmd.Context(), baseURL)
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No crawl sessions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tDURATION\tBASE URL\tENTRIES\tCOMPLETED\tSTATUS")
	for _, s := range sessions {
		status := "complete"
		if s.Interrupted {
			status = "interrupted"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%s\n",
			s.ID,
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			s.FinishedAt.Sub(s.StartedAt).Round(1e9).String(),
			truncateURL(s.BaseURL, 50),
			s.EntriesWritten,
			s.URLsCompleted,
			status,
		)
	}
	return w.Flush()
}

// truncateURL shortens long URLs for the table display.
func truncateURL(u string, maxLen int) string {
	if len(u) <= maxLen {
		return u
	}
	return strings.TrimRight(u[:maxLen-3], "/") + "..."
}

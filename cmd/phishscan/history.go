package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raysh454/phishscan/internal/history"
)

var (
	historyLimit int
	historyHash  string
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show recorded analyses",
	Long: `Without an argument, lists recorded analyses newest-first. With an
analysis id, prints that analysis as JSON.

Use --limit to cap the number of rows shown (default: 20) and
--favicon-hash to find every analysis that matched one icon.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.History.Enabled {
			return errors.New("history is disabled (history.enabled: false)")
		}

		store, err := history.Open(cfg.History.Path, newLogger(os.Stderr))
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			res, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(out, res, true)
		}

		rows, err := store.List(cmd.Context(), history.ListOptions{Limit: historyLimit, FaviconHash: historyHash})
		if err != nil {
			return fmt.Errorf("listing analyses: %w", err)
		}
		if historyJSON {
			return printJSON(out, rows, true)
		}
		if len(rows) == 0 {
			fmt.Fprintln(out, "No analyses recorded")
			return nil
		}

		const separator = "────────────────────────────────────────────────────────────────────────"

		fmt.Fprintln(out, separator)
		fmt.Fprintf(out, "  %-3s  %-12s  %-17s  %-8s  %-12s  %s\n", "#", "ID", "Started", "Findings", "Favicon", "Target")
		fmt.Fprintln(out, separator)
		for i, row := range rows {
			fav := row.FaviconHash
			if fav == "" {
				fav = "-"
			}
			fmt.Fprintf(out, "  %-3d  %-12s  %-17s  %-8d  %-12s  %s\n",
				i+1, shortID(row.ID), row.StartedAt.UTC().Format("2006-01-02 15:04"), row.Findings, fav, row.Target)
		}
		fmt.Fprintln(out, separator)
		fmt.Fprintf(out, "Total: %d analysis(es)\n", len(rows))
		return nil
	},
}

// shortID returns the first 8 characters of a UUID followed by "..." for
// compact table display.
func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", history.DefaultListLimit, "maximum rows")
	historyCmd.Flags().StringVar(&historyHash, "favicon-hash", "", "only analyses whose favicon hash matches")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print rows as JSON")
	rootCmd.AddCommand(historyCmd)
}

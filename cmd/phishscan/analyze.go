package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/raysh454/phishscan/internal/app"
	"github.com/raysh454/phishscan/internal/model"
)

var (
	analyzeStages  bool
	analyzeNoSave  bool
	analyzeCompact bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url>",
	Short: "Analyze one URL and print the result as JSON",
	Long: `Runs the full pipeline once and prints the assembled result to stdout.
Logs go to stderr. The exit status is 2 for invalid input and 3 when the
SSRF guard refuses the target.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if analyzeNoSave {
			cfg.History.Enabled = false
		}

		application, err := app.New(cfg, newLogger(os.Stderr))
		if err != nil {
			return err
		}
		defer application.Close()

		out := cmd.OutOrStdout()
		var observe func(model.StageEvent)
		if analyzeStages {
			errOut := cmd.ErrOrStderr()
			observe = func(ev model.StageEvent) {
				line := fmt.Sprintf("%-13s -> %-13s %s", ev.From, ev.To, ev.Elapsed.Round(time.Millisecond))
				if ev.Error != "" {
					line += "  (" + ev.Error + ")"
				}
				fmt.Fprintln(errOut, line)
			}
		}

		res, err := application.Analyze(cmd.Context(), args[0], observe)
		if err != nil {
			return fmt.Errorf("analysis rejected: %w", err)
		}
		return printJSON(out, res, !analyzeCompact)
	},
}

func printJSON(w io.Writer, v any, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeStages, "stages", false, "print each state transition to stderr")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "do not record the result in history")
	analyzeCmd.Flags().BoolVar(&analyzeCompact, "compact", false, "single-line JSON output")
	rootCmd.AddCommand(analyzeCmd)
}

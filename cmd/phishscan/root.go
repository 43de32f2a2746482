package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/raysh454/phishscan/internal/config"
	"github.com/raysh454/phishscan/internal/logging"
)

var (
	cfgFile string
	envFile string
	verbose bool
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "phishscan",
	Short: "URL phishing-risk analyzer",
	Long: `phishscan normalizes a URL, refuses targets that resolve to private
addresses, scores it with lexical heuristics, fingerprints its favicon and
enriches the result with Shodan and VirusTotal when API keys are configured.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for commands that don't need it
		skipConfig := map[string]bool{
			"init":    true,
			"help":    true,
			"version": true,
		}
		if skipConfig[cmd.Name()] {
			return nil
		}

		// A missing .env is normal outside development.
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: search for phishscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with provider credentials")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "debug logging")

	rootCmd.Version = "1.0.0"
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func newLogger(out io.Writer) logging.Logger {
	return logging.NewLogger(out, "phishscan", cfg.LogLevel())
}

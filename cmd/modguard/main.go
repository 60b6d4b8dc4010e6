package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/modguard/modguard/cmd/modguard/commands"
	"github.com/modguard/modguard/pkg/observability/logging"
)

var (
	// Version information (set by build flags)
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	// Initialize logging
	if _, err := logging.InitLoggerFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
	}

	rootCmd := &cobra.Command{
		Use:   "modguard",
		Short: "Comment risk scoring and PII redaction",
		Long: `modguard assigns a risk tier to free-form comments and produces a
PII-redacted copy, for moderation pipelines that must react in real time.

Scoring runs a two-stage classifier cascade with deterministic override
rules; redaction masks email, phone, and card-like spans with
false-positive guards.

Common workflows:
  modguard score "some comment"          # Score one or more comments
  modguard score --file comments.txt     # Score a batch, one per line
  modguard redact "text with PII"        # Redact PII
  modguard serve                         # Run the HTTP API + metrics`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringP("output", "o", "table", "Output format: table, json")

	// Add subcommands
	rootCmd.AddCommand(commands.NewScoreCmd())
	rootCmd.AddCommand(commands.NewRedactCmd())
	rootCmd.AddCommand(commands.NewServeCmd())

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

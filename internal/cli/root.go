// Package cli wires the agentwatch commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/nickmvincent/agentwatch/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "agentwatch",
	Short: "Redaction and session preparation for AI coding transcripts",
	Long: "Prepares locally captured agent transcripts for contribution: strips fields " +
		"to a sensitivity profile, replaces secrets, PII, and paths with stable " +
		"placeholders, and verifies the result before export.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	defer logging.Sync()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

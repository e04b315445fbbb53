package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nickmvincent/agentwatch/internal/redact"
)

var checkCmd = &cobra.Command{
	Use:   "check FILE...",
	Short: "Residue-scan already-redacted files",
	Long: "Re-applies the high-confidence detection rules to files that should " +
		"already be clean. Any match means the redaction pass missed something.",
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lib := redact.DefaultLibrary()
		total := 0
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			for _, w := range redact.CheckResidue(lib, string(data)) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, w)
				total++
			}
		}
		if total > 0 {
			return fmt.Errorf("%d residue warning(s)", total)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "clean")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

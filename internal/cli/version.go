package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set by ldflags at build time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the agentwatch version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("agentwatch", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

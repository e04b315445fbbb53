package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nickmvincent/agentwatch/internal/profile"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Inspect and manage sensitivity profiles",
}

var profileListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, id := range profile.List() {
			p, err := profile.Load(id)
			if err != nil {
				return err
			}
			marker := " "
			if p.Builtin {
				marker = "*"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %-16s %s\n", marker, id, p.Name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "(* builtin)")
		return nil
	},
}

var profileShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print a profile's kept fields and redaction defaults",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := profile.Load(args[0])
		if err != nil {
			return err
		}
		data, err := yaml.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	},
}

var profileInitCmd = &cobra.Command{
	Use:   "init ID",
	Short: "Create a starter user profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := profile.Init(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", path)
		return nil
	},
}

func init() {
	profileCmd.AddCommand(profileListCmd, profileShowCmd, profileInitCmd)
	rootCmd.AddCommand(profileCmd)
}

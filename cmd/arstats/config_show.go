// cmd/arstats/config_show.go
package arstats

import (
	"github.com/k0kubun/pp"
	"github.com/spf13/cobra"
)

// configCmd groups configuration related subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Group commands for inspecting configuration",
	Long:  `The 'config' command groups subcommands that inspect the resolved configuration. It performs no action on its own.`,
}

// configShowCmd implements 'config show', which prints the configuration
// resolved from defaults, the config file, environment and flags.
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the resolved configuration",
	Long:  `The 'show' subcommand prints the configuration after defaults, the config file, ARSTATS_INPUT/ARSTATS_OUTPUT and flags have been applied.`,
	Run: func(cmd *cobra.Command, args []string) {
		pp.Fprintln(cmd.OutOrStdout(), conf)
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

// cmd/arstats/list_commands.go
package arstats

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// commandsCmd implements 'list commands', which prints the command tree
// with the short description of every command.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands",
	Long:  `The 'commands' subcommand prints the arstats command tree, one command path per line next to its short description.`,
	Run: func(cmd *cobra.Command, args []string) {
		printCommandTree(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

var pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

type commandLine struct {
	path  string
	short string
}

// printCommandTree writes every available command below root, indented
// by depth, with descriptions aligned in a second column.
func printCommandTree(w io.Writer, root *cobra.Command) {
	lines := walkCommands(root, "", 0)
	width := 0
	for _, l := range lines {
		width = max(width, len(l.path))
	}
	fmt.Fprintln(w, "Commands:")
	for _, l := range lines {
		fmt.Fprintf(w, "  %s  %s\n", pathStyle.Width(width).Render(l.path), l.short)
	}
}

func walkCommands(cmd *cobra.Command, parent string, depth int) []commandLine {
	path := cmd.Name()
	if parent != "" {
		path = parent + " " + path
	}
	indent := fmt.Sprintf("%*s", 2*depth, "")
	out := []commandLine{{path: indent + path, short: cmd.Short}}
	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		out = append(out, walkCommands(sub, path, depth+1)...)
	}
	return out
}

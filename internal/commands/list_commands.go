// internal/commands/list_commands.go
package mdextract

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// commandsCmd implements 'list commands', which prints the mdextract command
// tree with each command's arguments and short description.
var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List mdextract commands and their arguments",
	Long:  `The 'commands' subcommand prints every mdextract command, indented by depth, followed by the arguments it accepts and its short description. Shell completion and help commands are omitted.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		printCommandTree(cmd.OutOrStdout(), walkCommands(rootCmd, 0))
	},
}

func init() {
	listCmd.AddCommand(commandsCmd)
}

// commandRow is one line of the command tree.
type commandRow struct {
	depth int
	path  string
	args  string
	short string
}

// walkCommands flattens the tree below cmd in definition order.
func walkCommands(cmd *cobra.Command, depth int) []commandRow {
	if cmd.Hidden || cmd.Name() == "completion" || cmd.Name() == "help" {
		return nil
	}
	_, args, _ := strings.Cut(cmd.Use, " ")
	rows := []commandRow{{depth: depth, path: cmd.CommandPath(), args: args, short: cmd.Short}}
	for _, sub := range cmd.Commands() {
		rows = append(rows, walkCommands(sub, depth+1)...)
	}
	return rows
}

func printCommandTree(out io.Writer, rows []commandRow) {
	width := 0
	labels := make([]string, len(rows))
	for i, r := range rows {
		label := strings.Repeat("  ", r.depth) + r.path
		if r.args != "" {
			label += " " + r.args
		}
		labels[i] = label
		width = max(width, len(label))
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for i, r := range rows {
		fmt.Fprintf(out, "  %-*s  %s\n", width, labels[i], r.short)
	}
}

// internal/cli/show_commands.go
package chatlat

import "github.com/spf13/cobra"

// showCommandsCmd implements 'show commands', which prints the available
// commands and subcommands in a hierarchical, indented, two-column format.
var showCommandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands in two columns",
	Long:  `The 'commands' subcommand lists all commands and subcommands in a hierarchical, indented format, with the command path in the first column and its short description in the second column.`,
	Run: func(cmd *cobra.Command, args []string) {
		runListCommands(cmd.OutOrStdout(), rootCmd)
	},
}

func init() {
	showCmd.AddCommand(showCommandsCmd)
}

// internal/cli/show_prompts.go
package chatlat

import "github.com/spf13/cobra"

// showPromptsCmd implements 'show prompts', which lists the prompt catalog
// with the character length of each prompt.
var showPromptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Show the prompt catalog",
	Long:  `The 'prompts' subcommand prints the system preamble and every prompt type with its character length.`,
	Run: func(cmd *cobra.Command, args []string) {
		runShowPrompts(cmd.OutOrStdout())
	},
}

func init() {
	showCmd.AddCommand(showPromptsCmd)
}

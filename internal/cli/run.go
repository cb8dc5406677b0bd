// internal/cli/run.go
package chatlat

import "github.com/spf13/cobra"

// runCmd implements 'run', the full benchmark workflow: probe every model,
// prompt type and iteration, print the summary, then persist the table and
// both charts into the results directory.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Benchmark chat-completion latency for the configured models",
	Long: `The 'run' command times one completion per model, prompt size and iteration,
prints a summary table in seconds and writes dataframe-<stamp>.csv, plot-<stamp>.png
and trend.png into the results directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBenchmark(cmd.Context(), cmd.OutOrStdout(), GetConfig())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
}

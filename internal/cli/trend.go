// internal/cli/trend.go
package chatlat

import "github.com/spf13/cobra"

// trendCmd implements 'trend', which rebuilds trend.png from every table
// already in the results directory without probing the API.
var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Redraw the historical trend chart from saved tables",
	Long:  `The 'trend' command scans the results directory for dataframe-<stamp>.csv files and plots one column per model across runs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		column, _ := cmd.Flags().GetString("column")
		return runTrend(cmd.OutOrStdout(), GetConfig(), column)
	},
}

func init() {
	rootCmd.AddCommand(trendCmd)

	trendCmd.Flags().String("column", "short.1", "table column to plot, as <promptType>.<iteration>")
}

// internal/cli/show_config.go
package chatlat

import (
	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/spf13/cobra"
)

// showConfigCmd implements 'show config', which prints the configuration after
// defaults, the config file and flags have been merged.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	Long:  `Show config settings ensuring that the JSON configs are loaded properly and overridden by flags accordingly.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := GetConfig()
		if cfg == nil {
			cfg = &appconfig.Config{}
		}
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, *cfg)
	},
}

func init() {
	showCmd.AddCommand(showConfigCmd)
}

// internal/cli/root.go
package chatlat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile       string
	currentConfig *appconfig.Config
	appVersion    = "dev"
	appCommit     = "none"
	appDate       = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:          "chatlat",
	Short:        "chatlat: latency benchmark for chat-completion APIs",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := ensureConfigLoaded(cmd)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("debug") {
			_ = cmd.Flags().Set("debug", strconv.FormatBool(viper.GetBool("debug")))
		}

		var cfg appconfig.Config
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("unmarshal config: %w", err)
		}
		cfg.ConfigPath = loaded
		cfg = cfg.WithDefaults()
		currentConfig = &cfg

		if err := logging.Init(currentConfig.LogFilePath()); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		return nil
	},
}

// Execute adds all child commands to the root command and runs it. Interrupts
// cancel the command context so an in-flight benchmark stops cleanly.
func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", appVersion, appCommit, appDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logging.Close()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		_ = logging.Close()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", appconfig.DefaultConfigPath, "config file (e.g., config/config.json)")

	rootCmd.PersistentFlags().Bool("debug", false, "restrict the run to one model and one iteration, and log API payloads")
	rootCmd.PersistentFlags().StringSlice("models", nil, "ordered, comma-separated model identifiers")
	rootCmd.PersistentFlags().Int("iterations", 0, "number of full sweeps over models and prompts")
	rootCmd.PersistentFlags().String("resultsDir", "", "directory for tables and charts")
	rootCmd.PersistentFlags().String("baseURL", "", "chat-completion API root")
	rootCmd.PersistentFlags().String("apiKeyEnv", "", "environment variable holding the API key")
	rootCmd.PersistentFlags().Int("maxTokens", 0, "completion token ceiling per probe")
	rootCmd.PersistentFlags().Int("timeout", 0, "seconds allowed per probe, retries included (0 = default)")
	rootCmd.PersistentFlags().Int("concurrency", 0, "probes in flight at once (default 1, sequential)")
	rootCmd.PersistentFlags().Float64("rateLimit", 0, "maximum probe starts per second (0 = unlimited)")
	rootCmd.PersistentFlags().Int("retries", 0, "extra attempts after a transient probe failure, with exponential backoff")
	rootCmd.PersistentFlags().String("logFile", "", "path to the log file")

	bindFlags()
}

// bindFlags binds every persistent flag to the viper key of the same name
// (flags > config > defaults).
func bindFlags() {
	for _, name := range []string{"debug", "models", "iterations", "resultsDir", "baseURL", "apiKeyEnv", "maxTokens", "timeout", "concurrency", "rateLimit", "retries", "logFile"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}
}

// initConfig reads in config file if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// ensureConfigLoaded reads and schema-checks the config file, sets defaults and
// returns the path of the file actually read. A missing file is fine unless
// --config was given explicitly.
func ensureConfigLoaded(cmd *cobra.Command) (string, error) {
	viper.SetDefault("debug", false)
	viper.SetDefault("models", appconfig.DefaultModels)
	viper.SetDefault("iterations", appconfig.DefaultIterations)
	viper.SetDefault("resultsDir", appconfig.DefaultResultsDir)
	viper.SetDefault("baseURL", appconfig.DefaultBaseURL)
	viper.SetDefault("apiKeyEnv", appconfig.DefaultAPIKeyEnv)
	viper.SetDefault("maxTokens", appconfig.DefaultMaxTokens)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
			return "", nil
		}
		return "", fmt.Errorf("failed to load config: %w", err)
	}

	used := viper.ConfigFileUsed()
	if !strings.EqualFold(filepath.Ext(used), ".json") {
		return used, nil
	}
	raw, err := os.ReadFile(used)
	if err != nil {
		return "", fmt.Errorf("failed to load config: %w", err)
	}
	return used, appconfig.ValidateDocument(raw)
}

// GetConfig returns the loaded application configuration for other packages.
func GetConfig() *appconfig.Config {
	return currentConfig
}

// SetVersionInfo allows the main package to inject build-time variables.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

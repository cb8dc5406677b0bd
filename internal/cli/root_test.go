package chatlat

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/logging"
	"github.com/spf13/viper"
)

var persistentFlagNames = []string{"debug", "models", "iterations", "resultsDir", "baseURL", "apiKeyEnv", "maxTokens", "timeout", "concurrency", "rateLimit", "retries", "logFile"}

func resetFlag(cmdFlag string) {
	flag := rootCmd.PersistentFlags().Lookup(cmdFlag)
	if flag == nil {
		return
	}
	if cmdFlag == "models" {
		// slice flags append on Set; clear through the slice interface
		if sv, ok := flag.Value.(interface{ Replace([]string) error }); ok {
			_ = sv.Replace(nil)
		}
	} else {
		_ = flag.Value.Set(flag.DefValue)
	}
	flag.Changed = false
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// useConfig points the root command at path and isolates flag and logger state.
func useConfig(t *testing.T, path string) {
	t.Helper()
	prevCfgFile := cfgFile
	cfgFile = path
	for _, name := range persistentFlagNames {
		resetFlag(name)
	}
	viper.Reset()
	bindFlags()
	viper.SetConfigFile(path)
	_ = rootCmd.PersistentFlags().Set("logFile", filepath.Join(t.TempDir(), "chatlat.log"))
	t.Cleanup(func() {
		cfgFile = prevCfgFile
		viper.SetConfigFile(prevCfgFile)
		for _, name := range persistentFlagNames {
			resetFlag(name)
		}
		_ = logging.Close()
	})
}

func TestRootCmd(t *testing.T) {
	b := new(bytes.Buffer)
	rootCmd.SetOut(b)
	rootCmd.SetErr(b)

	rootCmd.SetArgs([]string{"nonexistent"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err == nil {
		t.Fatal("expected an error for an unknown command")
	}
}

func TestPersistentPreRunEMergesFileAndFlags(t *testing.T) {
	configPath := writeTempConfig(t, `{"models": ["gpt-4", "gpt-4-0613"], "iterations": 5, "resultsDir": "out", "retries": 2}`)
	useConfig(t, configPath)

	_ = rootCmd.PersistentFlags().Set("iterations", "7")
	_ = rootCmd.PersistentFlags().Set("concurrency", "4")

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}

	cfg := GetConfig()
	if cfg == nil || cfg.ConfigPath != configPath {
		t.Fatalf("expected config loaded from %s, got %+v", configPath, cfg)
	}
	if strings.Join(cfg.Models, ",") != "gpt-4,gpt-4-0613" {
		t.Fatalf("expected models from file, got %v", cfg.Models)
	}
	if cfg.Iterations != 7 {
		t.Fatalf("expected flag to override iterations, got %d", cfg.Iterations)
	}
	if cfg.Concurrency != 4 || cfg.Retries != 2 || cfg.ResultsDir != "out" {
		t.Fatalf("unexpected merged config: %+v", cfg)
	}
	if cfg.BaseURL != appconfig.DefaultBaseURL || cfg.MaxTokens != appconfig.DefaultMaxTokens {
		t.Fatalf("expected defaults for unset options: %+v", cfg)
	}
}

func TestPersistentPreRunEDefaultsWithoutFile(t *testing.T) {
	useConfig(t, filepath.Join(t.TempDir(), "absent.json"))

	if err := rootCmd.PersistentPreRunE(rootCmd, []string{}); err != nil {
		t.Fatalf("PersistentPreRunE error: %v", err)
	}
	cfg := GetConfig()
	if cfg.ConfigPath != "" {
		t.Fatalf("expected no config file, got %s", cfg.ConfigPath)
	}
	if len(cfg.Models) != len(appconfig.DefaultModels) || cfg.Iterations != appconfig.DefaultIterations {
		t.Fatalf("expected default models and iterations: %+v", cfg)
	}
}

func TestPersistentPreRunERejectsUnknownKeys(t *testing.T) {
	useConfig(t, writeTempConfig(t, `{"models": ["gpt-4"], "iterations": 0, "colour": "blue"}`))

	err := rootCmd.PersistentPreRunE(rootCmd, []string{})
	if !errors.Is(err, appconfig.ErrConfiguration) {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestShowConfigCommandOutput(t *testing.T) {
	configPath := writeTempConfig(t, `{"models": ["gpt-4", "gpt-3.5-turbo"]}`)
	useConfig(t, configPath)

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"--debug", "show", "config"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"Config file: " + configPath,
		"Debug:        true",
		"Models:       gpt-4, gpt-3.5-turbo",
		"Effective (debug) configuration:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
}

func TestShowPromptsCommandOutput(t *testing.T) {
	useConfig(t, writeTempConfig(t, `{}`))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"show", "prompts"})
	t.Cleanup(func() { rootCmd.SetArgs([]string{}) })
	if _, err := rootCmd.ExecuteC(); err != nil {
		t.Fatalf("ExecuteC error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"System preamble", "short", "medium", "long", "chars"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output, got %s", want, out)
		}
	}
}

func TestShowCommandsListsTree(t *testing.T) {
	var buf bytes.Buffer
	runListCommands(&buf, rootCmd)
	out := buf.String()
	for _, want := range []string{"chatlat", "  chatlat run", "    chatlat show config", "    chatlat show prompts", "  chatlat trend"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "completion") {
		t.Fatalf("completion command should be hidden:\n%s", out)
	}
}

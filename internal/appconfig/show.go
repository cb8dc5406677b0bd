package appconfig

import (
	"fmt"
	"io"
	"strings"

	"github.com/k0kubun/pp"
)

// ShowConfig prints the current configuration summary.
func ShowConfig(out io.Writer, file string, cfg Config) {
	if file == "" {
		fmt.Fprintln(out, "No config file loaded (using defaults).")
	} else {
		fmt.Fprintf(out, "Config file: %s\n\n", file)
	}

	fmt.Fprintln(out, "Current configuration:")
	fmt.Fprintf(out, "  Debug:        %v\n", cfg.Debug)
	fmt.Fprintf(out, "  Models:       %s\n", strings.Join(cfg.Models, ", "))
	fmt.Fprintf(out, "  Iterations:   %d\n", cfg.Iterations)
	fmt.Fprintf(out, "  Results Dir:  %s\n", cfg.ResultsDir)
	fmt.Fprintf(out, "  Base URL:     %s\n", cfg.BaseURL)
	fmt.Fprintf(out, "  API Key Env:  %s\n", cfg.APIKeyEnv)
	fmt.Fprintf(out, "  Max Tokens:   %d\n", cfg.MaxTokens)
	fmt.Fprintf(out, "  Timeout:      %s\n", cfg.ProbeTimeout())
	fmt.Fprintf(out, "  Concurrency:  %d\n", cfg.Concurrency)
	fmt.Fprintf(out, "  Rate Limit:   %g req/s\n", cfg.RateLimit)
	fmt.Fprintf(out, "  Retries:      %d\n", cfg.Retries)

	if cfg.Debug {
		eff := cfg.Effective()
		fmt.Fprintln(out, "\nEffective (debug) configuration:")
		_, _ = pp.Fprintln(out, eff)
	}
}

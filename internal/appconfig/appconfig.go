// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// DefaultResultsDir holds tabular reports and charts.
	DefaultResultsDir = "results"
	// DefaultBaseURL is the OpenAI-compatible API root.
	DefaultBaseURL = "https://api.openai.com/v1"
	// DefaultAPIKeyEnv names the environment variable holding the API credential.
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
	// DefaultIterations is the number of full sweeps per run.
	DefaultIterations = 3
	// DefaultMaxTokens caps the completion length of each probe.
	DefaultMaxTokens = 150
	// defaultProbeTimeout bounds one probe combination, retries and backoff included.
	defaultProbeTimeout = 120 * time.Second
)

// DefaultModels is the model list used when neither the config file nor flags set one.
var DefaultModels = []string{
	"gpt-3.5-turbo",
	"gpt-3.5-turbo-0301",
	"gpt-3.5-turbo-0613",
	"gpt-3.5-turbo-16k",
	"gpt-3.5-turbo-16k-0613",
	"gpt-4",
	"gpt-4-0314",
	"gpt-4-0613",
}

// ErrConfiguration is matched by every configuration failure.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports an invalid or missing setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Unwrap lets errors.Is match ErrConfiguration.
func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// Config represents the top-level application configuration.
type Config struct {
	Models         []string `json:"models" mapstructure:"models"`
	Iterations     int      `json:"iterations" mapstructure:"iterations"`
	Debug          bool     `json:"debug" mapstructure:"debug"`
	ResultsDir     string   `json:"resultsDir,omitempty" mapstructure:"resultsDir"`
	BaseURL        string   `json:"baseURL,omitempty" mapstructure:"baseURL"`
	APIKeyEnv      string   `json:"apiKeyEnv,omitempty" mapstructure:"apiKeyEnv"`
	MaxTokens      int      `json:"maxTokens,omitempty" mapstructure:"maxTokens"`
	TimeoutSeconds int      `json:"timeout,omitempty" mapstructure:"timeout"`
	Concurrency    int      `json:"concurrency,omitempty" mapstructure:"concurrency"`
	RateLimit      float64  `json:"rateLimit,omitempty" mapstructure:"rateLimit"`
	Retries        int      `json:"retries,omitempty" mapstructure:"retries"`
	LogFile        string   `json:"logFile,omitempty" mapstructure:"logFile"`
	ConfigPath     string   `json:"-" mapstructure:"-"`
}

// WithDefaults fills zero-valued optional settings. Models and Iterations are
// left alone so that an explicitly empty value still fails validation.
func (c Config) WithDefaults() Config {
	if strings.TrimSpace(c.ResultsDir) == "" {
		c.ResultsDir = DefaultResultsDir
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		c.BaseURL = DefaultBaseURL
	}
	if strings.TrimSpace(c.APIKeyEnv) == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = int(defaultProbeTimeout.Seconds())
	}
	if c.Concurrency == 0 {
		c.Concurrency = 1
	}
	return c
}

// Effective applies debug mode: a single model and a single iteration.
func (c Config) Effective() Config {
	if !c.Debug {
		return c
	}
	if len(c.Models) > 1 {
		c.Models = append([]string(nil), c.Models[:1]...)
	}
	c.Iterations = 1
	return c
}

// Validate checks every recognised option. It never touches the network.
func (c Config) Validate() error {
	if len(c.Models) == 0 {
		return &ConfigError{Field: "models", Reason: "at least one model is required"}
	}
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if strings.TrimSpace(m) == "" {
			return &ConfigError{Field: "models", Reason: fmt.Sprintf("entry %d is blank", i)}
		}
		if strings.TrimSpace(m) != m {
			return &ConfigError{Field: "models", Reason: fmt.Sprintf("entry %d %q has surrounding whitespace", i, m)}
		}
		if _, dup := seen[m]; dup {
			return &ConfigError{Field: "models", Reason: fmt.Sprintf("duplicate model %q", m)}
		}
		seen[m] = struct{}{}
	}
	if c.Iterations < 1 {
		return &ConfigError{Field: "iterations", Reason: "must be a positive integer"}
	}
	if c.MaxTokens < 1 {
		return &ConfigError{Field: "maxTokens", Reason: "must be a positive integer"}
	}
	if c.Concurrency < 1 {
		return &ConfigError{Field: "concurrency", Reason: "must be a positive integer"}
	}
	if c.TimeoutSeconds < 0 {
		return &ConfigError{Field: "timeout", Reason: "must not be negative"}
	}
	if c.RateLimit < 0 {
		return &ConfigError{Field: "rateLimit", Reason: "must not be negative"}
	}
	if c.Retries < 0 {
		return &ConfigError{Field: "retries", Reason: "must not be negative"}
	}
	if strings.TrimSpace(c.ResultsDir) == "" {
		return &ConfigError{Field: "resultsDir", Reason: "must not be empty"}
	}
	return nil
}

// ProbeTimeout returns the per-probe deadline, falling back to the default if not specified.
func (c Config) ProbeTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultProbeTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "chatlat.log"
}

// ResolveAPIKey reads the credential from the environment once. A nil getenv uses os.Getenv.
func (c Config) ResolveAPIKey(getenv func(string) string) (string, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	name := c.APIKeyEnv
	if strings.TrimSpace(name) == "" {
		name = DefaultAPIKeyEnv
	}
	key := strings.TrimSpace(getenv(name))
	if key == "" {
		return "", &ConfigError{Field: "apiKeyEnv", Reason: fmt.Sprintf("environment variable %s is not set", name)}
	}
	return key, nil
}

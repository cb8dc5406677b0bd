// internal/providerfactory/factory.go
package providerfactory

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/logging"
	"github.com/mwiater/chatlat/internal/providers"
	"github.com/mwiater/chatlat/internal/providers/openai"
)

// NewCompleter builds the completion client for cfg. The base URL must be an
// absolute http or https URL; anything else is a configuration error so the
// run stops before the first probe.
func NewCompleter(cfg appconfig.Config, apiKey string) (providers.Completer, error) {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = appconfig.DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, &appconfig.ConfigError{Field: "baseURL", Reason: fmt.Sprintf("%q is not an http(s) URL", base)}
	}

	logging.LogEvent("completion API: %s (timeout %s)", base, cfg.ProbeTimeout())
	return openai.New(openai.Options{
		BaseURL: base,
		APIKey:  apiKey,
		Timeout: cfg.ProbeTimeout(),
		Debug:   cfg.Debug,
	}), nil
}

package chatlat

import (
	"io"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/results"
)

// runTrend redraws trend.png for the given column without running probes.
func runTrend(out io.Writer, loaded *appconfig.Config, column string) error {
	if loaded == nil {
		return &appconfig.ConfigError{Field: "config", Reason: "not loaded"}
	}
	cfg := loaded.WithDefaults()

	key := results.DefaultTrendKey
	if column != "" {
		k, err := results.ParseKey(column)
		if err != nil {
			return &appconfig.ConfigError{Field: "column", Reason: err.Error()}
		}
		key = k
	}
	return renderTrend(out, results.NewWriter(cfg.ResultsDir), key)
}

// internal/providerfactory/factory_test.go
package providerfactory

import (
	"errors"
	"testing"

	"github.com/mwiater/chatlat/internal/appconfig"
	"github.com/mwiater/chatlat/internal/providers/openai"
)

func TestNewCompleterDefaultsToOpenAI(t *testing.T) {
	c, err := NewCompleter(appconfig.Config{}, "key")
	if err != nil {
		t.Fatalf("NewCompleter returned error: %v", err)
	}
	if _, ok := c.(*openai.Provider); !ok {
		t.Fatalf("expected *openai.Provider, got %T", c)
	}
}

func TestNewCompleterRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"api.openai.com/v1", "ftp://example.com", "http://"} {
		_, err := NewCompleter(appconfig.Config{BaseURL: base}, "key")
		if !errors.Is(err, appconfig.ErrConfiguration) {
			t.Fatalf("expected configuration error for %q, got %v", base, err)
		}
	}
}

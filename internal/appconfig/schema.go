package appconfig

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const configSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "models":      {"type": "array", "items": {"type": "string", "minLength": 1}},
    "iterations":  {"type": "integer", "minimum": 1},
    "debug":       {"type": "boolean"},
    "resultsDir":  {"type": "string", "minLength": 1},
    "baseURL":     {"type": "string", "minLength": 1},
    "apiKeyEnv":   {"type": "string", "minLength": 1},
    "maxTokens":   {"type": "integer", "minimum": 1},
    "timeout":     {"type": "integer", "minimum": 0},
    "concurrency": {"type": "integer", "minimum": 1},
    "rateLimit":   {"type": "number", "minimum": 0},
    "retries":     {"type": "integer", "minimum": 0},
    "logFile":     {"type": "string"}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(configSchema)

// ValidateDocument checks a raw JSON config file against the config schema.
func ValidateDocument(raw []byte) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ConfigError{Field: "config", Reason: fmt.Sprintf("unreadable document: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	var problems []string
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ConfigError{Field: "config", Reason: strings.Join(problems, "; ")}
}

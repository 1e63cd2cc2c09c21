package client

import (
	"encoding/json"
	"strings"
)

// maxParamsSummary bounds the parameter summary attached to errors.
const maxParamsSummary = 120

// redactedKeys are parameter names whose values never reach error
// context or logs.
var redactedKeys = []string{"token", "secret", "password", "authorization", "key"}

// summarizeParams renders a truncated, redacted view of call parameters
// for error context. It never fails; unserializable params degrade to a
// placeholder.
func summarizeParams(params any) string {
	if params == nil {
		return "{}"
	}

	raw, err := json.Marshal(params)
	if err != nil {
		return "<unserializable>"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "<unserializable>"
	}

	redacted, err := json.Marshal(redactValue(v))
	if err != nil {
		return "<unserializable>"
	}

	s := string(redacted)
	if len(s) > maxParamsSummary {
		s = s[:maxParamsSummary] + "..."
	}
	return s
}

func redactValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if isSensitiveKey(k) {
				out[k] = "[REDACTED]"
				continue
			}
			out[k] = redactValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = redactValue(item)
		}
		return out
	default:
		return v
	}
}

func isSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, sensitive := range redactedKeys {
		if strings.Contains(lower, sensitive) {
			return true
		}
	}
	return false
}

package client

import (
	"strings"
	"testing"
)

func TestSummarizeParams_Redacts(t *testing.T) {
	got := summarizeParams(map[string]any{
		"owner":        "octocat",
		"access_token": "ghp_secret",
		"nested":       map[string]any{"client_secret": "shh"},
	})

	if strings.Contains(got, "ghp_secret") || strings.Contains(got, "shh") {
		t.Errorf("summary leaked a secret: %q", got)
	}
	if !strings.Contains(got, "[REDACTED]") {
		t.Errorf("summary = %q, want redaction markers", got)
	}
	if !strings.Contains(got, "octocat") {
		t.Errorf("summary = %q, want non-sensitive values preserved", got)
	}
}

func TestSummarizeParams_Truncates(t *testing.T) {
	got := summarizeParams(map[string]any{"q": strings.Repeat("x", 500)})

	if len(got) > maxParamsSummary+3 {
		t.Errorf("summary length = %d, want <= %d", len(got), maxParamsSummary+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("summary = %q, want truncation marker", got)
	}
}

func TestSummarizeParams_Nil(t *testing.T) {
	if got := summarizeParams(nil); got != "{}" {
		t.Errorf("summary = %q, want {}", got)
	}
}

func TestSummarizeParams_Unserializable(t *testing.T) {
	if got := summarizeParams(make(chan int)); got != "<unserializable>" {
		t.Errorf("summary = %q", got)
	}
}

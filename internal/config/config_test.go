package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replrun.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
api:
  base_url: https://replicate.internal/v1
  token: tok-123
model_version: abc123
prompt: "Hello Granite!"
timeout_seconds: "45"
poll_interval_seconds: "1"
request_timeout: 5s
notify_webhook: https://hooks.example.com/run-done
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://replicate.internal/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Token != "tok-123" {
		t.Errorf("Token = %q", cfg.API.Token)
	}
	if cfg.ModelVersion != "abc123" {
		t.Errorf("ModelVersion = %q", cfg.ModelVersion)
	}
	if cfg.Prompt != "Hello Granite!" {
		t.Errorf("Prompt = %q", cfg.Prompt)
	}
	if cfg.Timeout != 45*time.Second {
		t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
	}
	if cfg.PollInterval != 1*time.Second {
		t.Errorf("PollInterval = %v, want 1s", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.NotifyWebhook != "https://hooks.example.com/run-done" {
		t.Errorf("NotifyWebhook = %q", cfg.NotifyWebhook)
	}
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != defaultBaseURL {
		t.Errorf("BaseURL = %q, want default", cfg.API.BaseURL)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 90s", cfg.Timeout)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.PollInterval)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "model_version: [broken")
	if _, err := Load(path); err == nil {
		t.Fatal("Load: expected error for invalid YAML")
	}
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("REPLRUN_TEST_TOKEN", "from-env")
	path := writeConfig(t, `
api:
  token: ${REPLRUN_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.Token != "from-env" {
		t.Errorf("Token = %q, want \"from-env\"", cfg.API.Token)
	}
}

func TestLoad_MalformedDurationsFallBack(t *testing.T) {
	path := writeConfig(t, `
timeout_seconds: "ninety"
poll_interval_seconds: "-3"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want default 90s", cfg.Timeout)
	}
	if cfg.PollInterval != 2*time.Second {
		t.Errorf("PollInterval = %v, want default 2s", cfg.PollInterval)
	}
}

func TestSecondsOrDefault(t *testing.T) {
	def := 90 * time.Second
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"90", 90 * time.Second},
		{"2.5", 2500 * time.Millisecond},
		{" 10 ", 10 * time.Second},
		{"1m30s", 90 * time.Second},
		{"500ms", 500 * time.Millisecond},
		{"", def},
		{"abc", def},
		{"0", def},
		{"-5", def},
		{"-2s", def},
		{"10x", def},
	}
	for _, tt := range tests {
		if got := SecondsOrDefault(tt.raw, def); got != tt.want {
			t.Errorf("SecondsOrDefault(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestResolveToken(t *testing.T) {
	t.Setenv(TokenEnvVar, "env-token")

	if got := ResolveToken("direct-token"); got != "direct-token" {
		t.Errorf("ResolveToken(direct) = %q", got)
	}
	if got := ResolveToken("  padded  "); got != "padded" {
		t.Errorf("ResolveToken(padded) = %q", got)
	}
	if got := ResolveToken("   "); got != "env-token" {
		t.Errorf("ResolveToken(blank) = %q, want env fallback", got)
	}

	t.Setenv(TokenEnvVar, "")
	if got := ResolveToken(""); got != "" {
		t.Errorf("ResolveToken with no env = %q, want empty", got)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// TokenEnvVar is consulted when no token is supplied directly.
const TokenEnvVar = "REPLICATE_API_TOKEN"

const (
	defaultBaseURL        = "https://api.replicate.com/v1"
	defaultTimeout        = 90 * time.Second
	defaultPollInterval   = 2 * time.Second
	defaultRequestTimeout = 15 * time.Second
)

// Config is the resolved configuration for one prediction run.
type Config struct {
	API            APIConfig
	ModelVersion   string
	Prompt         string
	Timeout        time.Duration // overall poll budget
	PollInterval   time.Duration // pause between status fetches
	RequestTimeout time.Duration // per-HTTP-call bound
	NotifyWebhook  string
}

// APIConfig locates and authenticates against the predictions endpoint.
type APIConfig struct {
	BaseURL string
	Token   string
}

// rawConfig is used for YAML unmarshaling. The two poll-budget fields are
// strings on purpose: the upstream surface hands them over as text and any
// parse failure silently falls back to a default instead of failing the run.
type rawConfig struct {
	API struct {
		BaseURL string `yaml:"base_url"`
		Token   string `yaml:"token"`
	} `yaml:"api"`
	ModelVersion   string `yaml:"model_version"`
	Prompt         string `yaml:"prompt"`
	TimeoutSeconds string `yaml:"timeout_seconds"`
	PollInterval   string `yaml:"poll_interval_seconds"`
	RequestTimeout string `yaml:"request_timeout"`
	NotifyWebhook  string `yaml:"notify_webhook"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		API:            APIConfig{BaseURL: defaultBaseURL},
		Timeout:        defaultTimeout,
		PollInterval:   defaultPollInterval,
		RequestTimeout: defaultRequestTimeout,
	}
}

// Load reads and parses the YAML config file at path. Environment variables
// in the file are expanded before parsing. A missing file is not an error:
// the CLI can run entirely from flags, so defaults are returned instead.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	baseURL := strings.TrimSpace(raw.API.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Config{
		API: APIConfig{
			BaseURL: baseURL,
			Token:   raw.API.Token,
		},
		ModelVersion:   strings.TrimSpace(raw.ModelVersion),
		Prompt:         raw.Prompt,
		Timeout:        SecondsOrDefault(raw.TimeoutSeconds, defaultTimeout),
		PollInterval:   SecondsOrDefault(raw.PollInterval, defaultPollInterval),
		RequestTimeout: SecondsOrDefault(raw.RequestTimeout, defaultRequestTimeout),
		NotifyWebhook:  strings.TrimSpace(raw.NotifyWebhook),
	}, nil
}

// SecondsOrDefault parses raw as a duration. It accepts either a bare number
// of seconds ("90", "2.5") or a Go duration string ("90s", "1m30s"). Empty,
// unparseable, zero, or negative input all yield def; a malformed value must
// never fail a run.
func SecondsOrDefault(raw string, def time.Duration) time.Duration {
	s := strings.TrimSpace(raw)
	if s == "" {
		return def
	}

	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		if d := time.Duration(secs * float64(time.Second)); d > 0 {
			return d
		}
		return def
	}

	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}

	return def
}

// ResolveToken trims the directly supplied token and falls back to the
// REPLICATE_API_TOKEN environment variable when it is empty. An empty result
// means no credentials are available.
func ResolveToken(direct string) string {
	if t := strings.TrimSpace(direct); t != "" {
		return t
	}
	return strings.TrimSpace(os.Getenv(TokenEnvVar))
}

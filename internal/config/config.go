// Package config holds the proxy CLI configuration with the usual
// resolution order: environment defaults bound at flag registration, flags
// on top, then entries from the proxy's own YAML config file.
package config

import (
	"flag"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config controls authentication, logging and telemetry for a proxy session.
type Config struct {
	// APIKey authenticates against the platform API. Empty means local-only.
	APIKey string `yaml:"api_key"`

	// APIURL is the platform API base URL.
	APIURL string `yaml:"api_url"`

	// DefaultTier forces a tier instead of the one carried by JWT claims.
	DefaultTier string `yaml:"default_tier"`

	// LogLevel is the base verbosity when no -v flags are given.
	LogLevel string `yaml:"log_level"`

	// TrafficLog is the JSONL file receiving relayed request/response lines.
	TrafficLog string `yaml:"traffic_log"`

	// CommandLog is the JSONL file receiving launch-command metadata records.
	CommandLog string `yaml:"command_log"`

	// BatchSize is the telemetry flush threshold; 1 sends events as they arrive.
	BatchSize int `yaml:"batch_size"`

	// ExcludePing drops MCP ping traffic from telemetry to cut noise.
	ExcludePing bool `yaml:"exclude_ping"`

	// PayloadLimit truncates telemetry payloads to this many bytes; 0 keeps all.
	PayloadLimit int `yaml:"payload_limit"`

	// TokenFile is the fallback token cache used when no OS keyring exists.
	TokenFile string `yaml:"token_file"`

	// MetricsAddr exposes Prometheus metrics when non-empty (addr or port).
	MetricsAddr string `yaml:"metrics_addr"`

	// RiskThreshold is the score above which commands are blocked for paid tiers.
	RiskThreshold float64 `yaml:"risk_threshold"`

	ConfigFile string `yaml:"-"`
}

// DefaultAPIURL is the production platform endpoint.
const DefaultAPIURL = "https://api.mcptap.dev"

// BindFlags populates the struct with defaults from environment variables and
// binds flags on fs so the caller can parse it.
func (c *Config) BindFlags(fs *flag.FlagSet) {
	c.ConfigFile = getEnv("CONFIG_FILE", DefaultConfigPath())
	c.LogLevel = getEnv("LOG_LEVEL", "error")
	c.APIKey = getEnv("MCPTAP_API_KEY", "")
	c.APIURL = getEnv("MCPTAP_API_URL", DefaultAPIURL)
	c.DefaultTier = getEnv("MCPTAP_TIER", "")
	c.TrafficLog = getEnv("MCPTAP_TRAFFIC_LOG", DefaultTrafficLog())
	c.CommandLog = getEnv("MCPTAP_COMMAND_LOG", DefaultCommandLog())
	if v, err := strconv.Atoi(getEnv("MCPTAP_BATCH_SIZE", "1")); err == nil && v > 0 {
		c.BatchSize = v
	} else {
		c.BatchSize = 1
	}
	if b, err := strconv.ParseBool(getEnv("MCPTAP_EXCLUDE_PING", "true")); err == nil {
		c.ExcludePing = b
	} else {
		c.ExcludePing = true
	}
	if v, err := strconv.Atoi(getEnv("MCPTAP_PAYLOAD_LIMIT", "0")); err == nil && v >= 0 {
		c.PayloadLimit = v
	}
	c.TokenFile = getEnv("MCPTAP_TOKEN_FILE", DefaultTokenPath())
	mp := getEnv("METRICS_PORT", "")
	if mp != "" && !strings.Contains(mp, ":") {
		mp = ":" + mp
	}
	c.MetricsAddr = mp
	if f, err := strconv.ParseFloat(getEnv("MCPTAP_RISK_THRESHOLD", "0.8"), 64); err == nil {
		c.RiskThreshold = f
	} else {
		c.RiskThreshold = 0.8
	}

	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "config file path")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	fs.StringVar(&c.APIKey, "api-key", c.APIKey, "platform API key; leave empty to run local-only")
	fs.StringVar(&c.APIURL, "api-url", c.APIURL, "platform API base URL")
	fs.StringVar(&c.TrafficLog, "log-file", c.TrafficLog, "traffic log file path")
	fs.StringVar(&c.CommandLog, "command-log", c.CommandLog, "command metadata log file path")
	fs.IntVar(&c.BatchSize, "batch-size", c.BatchSize, "telemetry events buffered before a flush")
	fs.BoolVar(&c.ExcludePing, "exclude-ping", c.ExcludePing, "skip ping messages in telemetry")
	fs.IntVar(&c.PayloadLimit, "payload-limit", c.PayloadLimit, "max telemetry payload bytes; 0 for unlimited")
	fs.StringVar(&c.TokenFile, "token-file", c.TokenFile, "token cache path used when no OS keyring is available")
	fs.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port (disabled when empty; e.g. 127.0.0.1:9090 or 9090)")
	fs.Float64Var(&c.RiskThreshold, "risk-threshold", c.RiskThreshold, "risk score above which commands are blocked")
}

// LoadFile populates the config from a YAML file. Fields already set remain unless
// overwritten by corresponding entries in the file.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, c)
}

// Save writes the config as YAML, creating the parent directory if needed.
// The file is written to a temp sibling first and renamed into place.
func (c *Config) Save(path string) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// MaskSecret hides the middle of a credential for display. Short values are
// masked entirely.
func MaskSecret(s string) string {
	if len(s) <= 8 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + "..." + s[len(s)-4:]
}

func getEnv(k, d string) string {
	if v := env(k); v != "" {
		return v
	}
	return d
}

var env = os.Getenv

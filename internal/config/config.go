// Package config provides configuration types and helpers for logshare.
package config

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application-wide configuration.
type Config struct {
	Format   string       `mapstructure:"format"`
	Verbose  bool         `mapstructure:"verbose"`
	LogLevel string       `mapstructure:"log_level"`
	Color    string       `mapstructure:"color"`
	Server   ServerConfig `mapstructure:"server"`
	Client   ClientConfig `mapstructure:"client"`
	Detect   DetectConfig `mapstructure:"detect"`
	LLM      LLMConfig    `mapstructure:"llm"`
}

// ServerConfig holds settings for `logshare serve`.
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	BaseURL         string `mapstructure:"base_url"`  // used to build share URLs; derived from the request when empty
	DataFile        string `mapstructure:"data_file"` // JSON snapshot; empty keeps logs in memory only
	MaxContentBytes int64  `mapstructure:"max_content_bytes"`
	SweepInterval   string `mapstructure:"sweep_interval"` // e.g. "10m"
	DefaultExpiry   string `mapstructure:"default_expiry"` // empty means logs never expire
}

// ClientConfig holds settings for the commands that talk to a server.
type ClientConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	Timeout    string `mapstructure:"timeout"`
	RecentFile string `mapstructure:"recent_file"`
	RecentSize int    `mapstructure:"recent_size"`
}

// DetectConfig holds user-defined classifier signatures. They are appended
// after the built-in table and therefore lose ties to it.
type DetectConfig struct {
	Signatures []SignatureConfig `mapstructure:"signatures"`
}

// SignatureConfig is one extra classifier signature.
type SignatureConfig struct {
	Label   string `mapstructure:"label"`
	Pattern string `mapstructure:"pattern"`
}

// LLMConfig holds configuration for `logshare explain`.
type LLMConfig struct {
	Temperature float32      `mapstructure:"temperature"`
	MaxTokens   int          `mapstructure:"max_tokens"`
	Ollama      OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
	NumCtx    int    `mapstructure:"num_ctx"`    // Context window size
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("log_level", "info")
	v.SetDefault("color", "auto")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.base_url", "")
	v.SetDefault("server.data_file", "")
	v.SetDefault("server.max_content_bytes", 1<<20)
	v.SetDefault("server.sweep_interval", "10m")
	v.SetDefault("server.default_expiry", "")

	v.SetDefault("client.endpoint", "http://localhost:8080")
	v.SetDefault("client.timeout", "30s")
	v.SetDefault("client.recent_file", filepath.Join(".", ".logshare-recent.json"))
	v.SetDefault("client.recent_size", 10)

	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1024)
	v.SetDefault("llm.ollama.host", "http://localhost:11434")
	v.SetDefault("llm.ollama.model", "llama3.2")
	v.SetDefault("llm.ollama.keep_alive", "5m")
	v.SetDefault("llm.ollama.num_ctx", 8192)
}

// DefaultRecentFile is where the recent-uploads list lives under home.
func DefaultRecentFile(home string) string {
	return filepath.Join(home, ".logshare", "recent.json")
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "json", "yaml", "table":
	default:
		return fmt.Errorf("invalid format %q: must be text, json, yaml or table", c.Format)
	}

	switch c.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color %q: must be auto, always or never", c.Color)
	}

	if c.Server.MaxContentBytes <= 0 {
		return fmt.Errorf("server.max_content_bytes must be positive, got %d", c.Server.MaxContentBytes)
	}
	if c.Client.RecentSize < 1 {
		return fmt.Errorf("client.recent_size must be at least 1, got %d", c.Client.RecentSize)
	}

	for key, value := range map[string]string{
		"server.sweep_interval": c.Server.SweepInterval,
		"server.default_expiry": c.Server.DefaultExpiry,
		"client.timeout":        c.Client.Timeout,
		"llm.ollama.keep_alive": c.LLM.Ollama.KeepAlive,
	} {
		if value == "" {
			continue
		}
		if _, err := ParseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	for i, s := range c.Detect.Signatures {
		if strings.TrimSpace(s.Label) == "" || s.Pattern == "" {
			return fmt.Errorf("detect.signatures[%d]: label and pattern are required", i)
		}
	}
	return nil
}

// SignaturePairs returns the configured signatures as label/pattern pairs
// in declaration order.
func (c *Config) SignaturePairs() [][2]string {
	pairs := make([][2]string, 0, len(c.Detect.Signatures))
	for _, s := range c.Detect.Signatures {
		pairs = append(pairs, [2]string{s.Label, s.Pattern})
	}
	return pairs
}

// Duration parses a duration setting, returning fallback when the value is
// empty or invalid.
func Duration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

// ParseLevel converts a log level name to a slog.Level. Unknown names map
// to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "dbg":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err", "fatal", "critical", "crit":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

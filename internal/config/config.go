package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all emojigen configuration.
type Config struct {
	// Upstream Unicode mirror
	Upstream UpstreamConfig `yaml:"upstream"`

	// Content cache
	Cache CacheConfig `yaml:"cache"`

	// Generated dataset output
	Output OutputConfig `yaml:"output"`

	// HTTP fetch behavior
	Fetch FetchConfig `yaml:"fetch"`

	// Path to emojis.lock
	Lockfile string `yaml:"lockfile"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// UpstreamConfig configures where Unicode publication trees are fetched from.
type UpstreamConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CacheConfig configures the content cache.
type CacheConfig struct {
	Dir string `yaml:"dir"` // empty = {cwd}/.cache or $CACHE_DIR/.cache
	TTL string `yaml:"ttl"` // empty or "never" = entries never expire
}

// OutputConfig configures persisted dataset files.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Pretty   bool   `yaml:"pretty"`
	Encoding string `yaml:"encoding"`
}

// FetchConfig configures upstream requests.
type FetchConfig struct {
	Timeout   string `yaml:"timeout"`
	UserAgent string `yaml:"user_agent"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Upstream: UpstreamConfig{
			BaseURL: "https://unicode.org/Public",
		},
		Cache: CacheConfig{
			TTL: "168h",
		},
		Output: OutputConfig{
			Dir:      "data",
			Pretty:   true,
			Encoding: "utf-8",
		},
		Fetch: FetchConfig{
			Timeout:   "60s",
			UserAgent: "emojigen/1.0 (+https://github.com/emojigen)",
		},
		Lockfile: "emojis.lock",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults if config file doesn't exist
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("CACHE_DIR"); dir != "" {
		c.Cache.Dir = filepath.Join(dir, ".cache")
	}
	if url := os.Getenv("EMOJIGEN_UPSTREAM"); url != "" {
		c.Upstream.BaseURL = url
	}
	if dir := os.Getenv("EMOJIGEN_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
	if level := os.Getenv("EMOJIGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// GetCacheDir returns the cache directory, defaulting to {cwd}/.cache.
func (c *Config) GetCacheDir() string {
	if c.Cache.Dir != "" {
		return c.Cache.Dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return ".cache"
	}
	return filepath.Join(cwd, ".cache")
}

// GetCacheTTL returns the cache TTL. Zero means entries never expire.
func (c *Config) GetCacheTTL() time.Duration {
	if c.Cache.TTL == "" || c.Cache.TTL == "never" {
		return 0
	}
	d, err := time.ParseDuration(c.Cache.TTL)
	if err != nil {
		return 168 * time.Hour
	}
	return d
}

// GetFetchTimeout returns the per-request fetch timeout.
func (c *Config) GetFetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Fetch.Timeout)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// ValidFormats lists supported log formats.
var ValidFormats = []string{"json", "console"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream base_url not configured (set EMOJIGEN_UPSTREAM or upstream.base_url)")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output dir not configured")
	}
	if c.Cache.TTL != "" && c.Cache.TTL != "never" {
		if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
			return fmt.Errorf("invalid cache ttl %q: %w", c.Cache.TTL, err)
		}
	}

	validFormat := c.Logging.Format == ""
	for _, f := range ValidFormats {
		if c.Logging.Format == f {
			validFormat = true
			break
		}
	}
	if !validFormat {
		return fmt.Errorf("invalid log format: %s (valid: %v)", c.Logging.Format, ValidFormats)
	}

	return nil
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CACHE_DIR", "EMOJIGEN_UPSTREAM", "EMOJIGEN_OUTPUT_DIR", "EMOJIGEN_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Upstream.BaseURL != "https://unicode.org/Public" {
		t.Errorf("expected unicode.org upstream, got %s", cfg.Upstream.BaseURL)
	}
	if cfg.Lockfile != "emojis.lock" {
		t.Errorf("expected Lockfile=emojis.lock, got %s", cfg.Lockfile)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "emojigen.yaml")

	cfg := DefaultConfig()
	cfg.Output.Dir = "out"
	cfg.Output.Pretty = false
	cfg.Cache.TTL = "1h"

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Output.Dir != "out" {
		t.Errorf("expected Output.Dir=out, got %s", loaded.Output.Dir)
	}
	if loaded.Output.Pretty {
		t.Error("expected Output.Pretty=false")
	}
	if loaded.GetCacheTTL() != time.Hour {
		t.Errorf("expected 1h ttl, got %v", loaded.GetCacheTTL())
	}
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Output.Dir != "data" {
		t.Errorf("expected default output dir, got %s", cfg.Output.Dir)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("upstream: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetCacheDir_DefaultsToCwd(t *testing.T) {
	cfg := DefaultConfig()
	cwd, _ := os.Getwd()
	if got := cfg.GetCacheDir(); got != filepath.Join(cwd, ".cache") {
		t.Errorf("unexpected cache dir %s", got)
	}
}

func TestGetCacheTTL_Never(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.TTL = "never"
	if cfg.GetCacheTTL() != 0 {
		t.Errorf("expected zero ttl for never")
	}
}

func TestGetFetchTimeout_Fallback(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Fetch.Timeout = "soon"
	if cfg.GetFetchTimeout() != 60*time.Second {
		t.Errorf("expected 60s fallback, got %v", cfg.GetFetchTimeout())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"missing upstream", func(c *Config) { c.Upstream.BaseURL = "" }, true},
		{"missing output", func(c *Config) { c.Output.Dir = "" }, true},
		{"bad ttl", func(c *Config) { c.Cache.TTL = "forever" }, true},
		{"never ttl", func(c *Config) { c.Cache.TTL = "never" }, false},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoggingConfig_IsCategoryEnabled(t *testing.T) {
	lc := LoggingConfig{Categories: map[string]bool{"fetch": false}}
	if lc.IsCategoryEnabled("fetch") {
		t.Error("fetch should be disabled")
	}
	if !lc.IsCategoryEnabled("cache") {
		t.Error("unlisted category should be enabled")
	}
	opts := lc.Options()
	if opts.Categories["fetch"] {
		t.Error("options should carry category toggles")
	}
}

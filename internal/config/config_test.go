package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 5001 {
		t.Errorf("expected default port 5001, got %d", cfg.Server.Port)
	}
	if cfg.Data.Timezone != "Asia/Kolkata" {
		t.Errorf("expected Asia/Kolkata, got %s", cfg.Data.Timezone)
	}
	if cfg.Scan.Workers != 8 || cfg.Scan.Timeout != 5*time.Minute {
		t.Errorf("unexpected scan defaults %+v", cfg.Scan)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
server:
  port: 8080
  cors_origins: ["http://localhost:3000"]
data:
  dir: /srv/bars
  timezone: UTC
scan:
  workers: 4
  timeout: 30s
sync:
  enabled: true
  symbols: [TCS, INFY]
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9090")
	t.Setenv("SCAN_WORKERS", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("env should override port, got %d", cfg.Server.Port)
	}
	if cfg.Scan.Workers != 2 {
		t.Errorf("env should override workers, got %d", cfg.Scan.Workers)
	}
	if cfg.Scan.Timeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Scan.Timeout)
	}
	if cfg.Data.Dir != "/srv/bars" || len(cfg.Sync.Symbols) != 2 {
		t.Errorf("file values not loaded: %+v", cfg)
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected validation error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"no workers", func(c *Config) { c.Scan.Workers = -1 }},
		{"bad timezone", func(c *Config) { c.Data.Timezone = "Mars/Olympus" }},
		{"bad catalog cron", func(c *Config) { c.Schedule.CatalogCron = "every minute" }},
		{"bad sync cron", func(c *Config) { c.Sync.Enabled = true; c.Schedule.SyncCron = "x" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.applyDefaults()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when CONFIG_PATH is not set.
const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Host        string   `yaml:"host"`
		Port        int      `yaml:"port"`
		Production  bool     `yaml:"production"`
		CORSOrigins []string `yaml:"cors_origins"`
		PublicURL   string   `yaml:"public_url"`
	} `yaml:"server"`
	Data struct {
		Dir       string `yaml:"dir"`
		StockList string `yaml:"stock_list"`
		Timezone  string `yaml:"timezone"`
	} `yaml:"data"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Scan struct {
		Workers int           `yaml:"workers"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"scan"`
	Schedule struct {
		CatalogCron string `yaml:"catalog_cron"`
		SyncCron    string `yaml:"sync_cron"`
	} `yaml:"schedule"`
	Sync struct {
		Enabled        bool     `yaml:"enabled"`
		Symbols        []string `yaml:"symbols"`
		Range          string   `yaml:"range"`
		Suffix         string   `yaml:"suffix"`
		RequestsPerSec int      `yaml:"requests_per_sec"`
	} `yaml:"sync"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML config at path, then applies environment
// variable overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	// .env is optional.
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("PRODUCTION"); v != "" {
		c.Server.Production = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("PUBLIC_URL"); v != "" {
		c.Server.PublicURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("STOCK_LIST"); v != "" {
		c.Data.StockList = v
	}
	if v := os.Getenv("DATA_TIMEZONE"); v != "" {
		c.Data.Timezone = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SCAN_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_WORKERS: %w", err)
		}
		c.Scan.Workers = n
	}
	if v := os.Getenv("SCAN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SCAN_TIMEOUT: %w", err)
		}
		c.Scan.Timeout = d
	}
	if v := os.Getenv("CRON_CATALOG"); v != "" {
		c.Schedule.CatalogCron = v
	}
	if v := os.Getenv("CRON_SYNC"); v != "" {
		c.Schedule.SyncCron = v
	}
	if v := os.Getenv("SYNC_ENABLED"); v != "" {
		c.Sync.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("SYNC_SYMBOLS"); v != "" {
		c.Sync.Symbols = splitList(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		c.Log.JSON = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		c.Proxy = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 5001
	}
	if len(c.Server.CORSOrigins) == 0 {
		c.Server.CORSOrigins = []string{"*"}
	}
	if c.Data.Dir == "" {
		c.Data.Dir = "data"
	}
	if c.Data.StockList == "" {
		c.Data.StockList = "StockList.csv"
	}
	if c.Data.Timezone == "" {
		c.Data.Timezone = "Asia/Kolkata"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "backtests.db"
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 8
	}
	if c.Scan.Timeout == 0 {
		c.Scan.Timeout = 5 * time.Minute
	}
	if c.Schedule.CatalogCron == "" {
		c.Schedule.CatalogCron = "0 */15 * * * *"
	}
	if c.Schedule.SyncCron == "" {
		c.Schedule.SyncCron = "0 30 18 * * 1-5"
	}
	if c.Sync.Range == "" {
		c.Sync.Range = "max"
	}
	if c.Sync.RequestsPerSec == 0 {
		c.Sync.RequestsPerSec = 2
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("scan.workers must be positive")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(c.Schedule.CatalogCron); err != nil {
		return fmt.Errorf("schedule.catalog_cron: %w", err)
	}
	if c.Sync.Enabled {
		if _, err := parser.Parse(c.Schedule.SyncCron); err != nil {
			return fmt.Errorf("schedule.sync_cron: %w", err)
		}
		if c.Sync.RequestsPerSec <= 0 {
			return fmt.Errorf("sync.requests_per_sec must be positive")
		}
	}
	return nil
}

// Location loads the reference timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("data.timezone %q: %w", c.Data.Timezone, err)
	}
	return loc, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

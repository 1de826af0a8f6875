// Package config loads runtime settings from the environment and an
// optional canvas-sync.yaml file. Environment variables win over the file;
// both win over defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration.
type Config struct {
	APIURL   string `mapstructure:"api_url"`
	APIToken string `mapstructure:"api_token"`
	DBPath   string `mapstructure:"db_path"`

	// TermID filters which enrollment term gets synced; -1 means the most
	// recent term.
	TermID int64 `mapstructure:"term_id"`

	SyncWindowDays int           `mapstructure:"sync_window_days"`
	SyncInterval   time.Duration `mapstructure:"sync_interval"`

	CacheSize int           `mapstructure:"cache_size"`
	CacheTTL  time.Duration `mapstructure:"cache_ttl"`

	DashboardPort int    `mapstructure:"dashboard_port"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	UserID        string `mapstructure:"user_id"`
}

// Load reads configuration. configFile may be empty, in which case only
// well-known locations are tried and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api_url", "")
	v.SetDefault("api_token", "")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("term_id", -1)
	v.SetDefault("sync_window_days", 21)
	v.SetDefault("sync_interval", time.Hour)
	v.SetDefault("cache_size", 128)
	v.SetDefault("cache_ttl", 5*time.Minute)
	v.SetDefault("dashboard_port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("user_id", "")

	v.SetEnvPrefix("CANVAS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("canvas-sync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "canvas-sync"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Validate checks settings needed before talking to the API.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("api_url is required (set CANVAS_API_URL)")
	}
	if c.APIToken == "" {
		return fmt.Errorf("api_token is required (set CANVAS_API_TOKEN)")
	}
	return nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "canvas.db"
	}
	return filepath.Join(home, ".local", "share", "canvas-sync", "canvas.db")
}

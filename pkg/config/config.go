// Package config loads client settings from .agenda.yaml and AGENDA_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config is the resolved client configuration.
type Config struct {
	APIURL          string        `mapstructure:"api_url"`
	Token           string        `mapstructure:"token"`
	Timezone        string        `mapstructure:"timezone"`
	CachePath       string        `mapstructure:"cache_path"`
	JournalPath     string        `mapstructure:"journal_path"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	RefreshCron     string        `mapstructure:"refresh_cron"`
	PageSize        int           `mapstructure:"page_size"`
	Debounce        time.Duration `mapstructure:"debounce"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", "http://localhost:8000/api")
	v.SetDefault("token", "")
	v.SetDefault("timezone", "Local")
	v.SetDefault("cache_path", "~/.agenda/cache")
	v.SetDefault("journal_path", "~/.agenda/journal.db")
	v.SetDefault("refresh_interval", "5m")
	v.SetDefault("refresh_cron", "")
	v.SetDefault("page_size", 20)
	v.SetDefault("debounce", "500ms")
}

// Load reads the config file, if any, and the environment. A missing file is
// not an error.
func Load() (*Config, error) {
	return LoadFrom(viper.New())
}

// LoadFrom reads into v so callers can bind flags first.
func LoadFrom(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetConfigName(".agenda") // .yaml is implicit
	v.SetEnvPrefix("AGENDA")
	v.AutomaticEnv()

	if override := os.Getenv("AGENDA_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	var err error
	if cfg.CachePath, err = homedir.Expand(cfg.CachePath); err != nil {
		return nil, fmt.Errorf("config: cache_path: %w", err)
	}
	if cfg.JournalPath, err = homedir.Expand(cfg.JournalPath); err != nil {
		return nil, fmt.Errorf("config: journal_path: %w", err)
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 20
	}
	return cfg, nil
}

// BasePath is where the offline mirror lives.
func (c *Config) BasePath() string {
	return c.CachePath
}

// Location resolves Timezone. "Local" and "" mean the machine's zone.
func (c *Config) Location() (*time.Location, error) {
	switch c.Timezone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

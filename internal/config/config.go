// Package config provides Viper-based hierarchical configuration management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	YNAB struct {
		BaseURL        string `mapstructure:"base_url"`
		APIToken       string `mapstructure:"api_token"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		MaxRetries     int    `mapstructure:"max_retries"`
	} `mapstructure:"ynab"`

	Cache struct {
		SettingsTTLHours int `mapstructure:"settings_ttl_hours"`
	} `mapstructure:"cache"`

	AI struct {
		Model  string `mapstructure:"model"`
		APIKey string `mapstructure:"api_key"`
	} `mapstructure:"ai"`

	// ReadOnly gates every mutating tool before it reaches the stores.
	ReadOnly bool `mapstructure:"read_only"`
}

// RequestTimeout returns the per-request timeout for the YNAB client.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.YNAB.TimeoutSeconds) * time.Second
}

// SettingsTTL returns the expiry window for cached budget settings.
func (c *Config) SettingsTTL() time.Duration {
	return time.Duration(c.Cache.SettingsTTLHours) * time.Hour
}

// Load initializes configuration with hierarchical precedence:
// defaults, then an optional yaml config file, then YNAB_* environment
// variables.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("$HOME/.ynab-assist")
	v.AddConfigPath(".ynab-assist")
	v.AddConfigPath(".")

	v.SetEnvPrefix("YNAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file %s: %w", v.ConfigFileUsed(), err)
		}
		// No config file is fine, defaults and env vars carry.
	}

	// Secrets always come from unprefixed env vars.
	if err := v.BindEnv("ynab.api_token", "YNAB_API_TOKEN"); err != nil {
		return nil, fmt.Errorf("binding YNAB_API_TOKEN: %w", err)
	}
	if err := v.BindEnv("ai.api_key", "GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("binding GEMINI_API_KEY: %w", err)
	}
	if err := v.BindEnv("read_only", "YNAB_READ_ONLY"); err != nil {
		return nil, fmt.Errorf("binding YNAB_READ_ONLY: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("ynab.base_url", "https://api.ynab.com/v1")
	v.SetDefault("ynab.timeout_seconds", 30)
	v.SetDefault("ynab.max_retries", 3)

	v.SetDefault("cache.settings_ttl_hours", 24)

	v.SetDefault("ai.model", "gemini-2.0-flash")

	v.SetDefault("read_only", false)
}

func validate(cfg *Config) error {
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", cfg.Log.Level)
	}
	if cfg.YNAB.BaseURL == "" {
		return fmt.Errorf("ynab.base_url must not be empty")
	}
	if cfg.YNAB.TimeoutSeconds <= 0 {
		return fmt.Errorf("ynab.timeout_seconds must be positive")
	}
	if cfg.YNAB.MaxRetries < 0 {
		return fmt.Errorf("ynab.max_retries must not be negative")
	}
	if cfg.Cache.SettingsTTLHours <= 0 {
		return fmt.Errorf("cache.settings_ttl_hours must be positive")
	}
	return nil
}

// LoadEnv loads variables from a .env file in the current or parent
// directory, if one exists. Missing files are not an error.
func LoadEnv() {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			return
		}
	}
	_ = godotenv.Load(envFile)
}

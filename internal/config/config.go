// Package config loads settings from configs/config.yml, the environment and
// an optional .env file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	TelegramToken string        `mapstructure:"telegram_token"`
	API           APIConfig     `mapstructure:"api"`
	Grid          GridConfig    `mapstructure:"grid"`
	Form          FormConfig    `mapstructure:"form"`
	Redis         RedisConfig   `mapstructure:"redis"`
	Actions       ActionsConfig `mapstructure:"actions"`
	Log           LogConfig     `mapstructure:"log"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type GridConfig struct {
	PageSize            int  `mapstructure:"page_size"`
	ShowExtendedToolbar bool `mapstructure:"show_extended_toolbar"`
}

type FormConfig struct {
	RedirectPath string `mapstructure:"redirect_path"`
}

type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type ActionsConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

var defaults = map[string]any{
	"api.base_url":               "http://127.0.0.1:5000",
	"api.timeout":                10 * time.Second,
	"grid.page_size":             5,
	"grid.show_extended_toolbar": true,
	"form.redirect_path":         "/",
	"redis.address":              "localhost:6379",
	"redis.password":             "",
	"redis.db":                   0,
	"redis.ttl":                  24 * time.Hour,
	"actions.ttl":                10 * time.Minute,
	"log.level":                  "info",
	"log.file":                   "persons-tui.log",
}

// LoadEnv reads .env from the working directory. A missing file is only an
// error when required is set.
func LoadEnv(required bool) error {
	err := godotenv.Load()
	if err == nil {
		return nil
	}
	if !required && errors.Is(err, os.ErrNotExist) {
		slog.Debug("No .env file, using environment")
		return nil
	}
	return fmt.Errorf("load .env: %w", err)
}

// Load reads the config file at path, or configs/config.yml when path is
// empty. A missing default file leaves the built-in defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		v.SetConfigType("yml")
	}

	if err := v.BindEnv("telegram_token", "TELEGRAM_TOKEN"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("api.base_url", "PERSONS_API_URL"); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		slog.Info("Config file not found, using defaults")
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Grid.PageSize <= 0 {
		return nil, fmt.Errorf("grid.page_size must be positive, got %d", cfg.Grid.PageSize)
	}
	if cfg.API.Timeout <= 0 {
		return nil, fmt.Errorf("api.timeout must be positive, got %s", cfg.API.Timeout)
	}
	return cfg, nil
}

// LogLevel maps log.level onto slog, falling back to info.
func (c *Config) LogLevel() slog.Level {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

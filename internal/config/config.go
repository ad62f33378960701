// Package config loads client configuration from, in increasing priority:
// defaults, an optional config file, a .env file, and CAMPUS_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. CAMPUS_API_BASE_URL.
const EnvPrefix = "CAMPUS"

// Config holds everything the client needs to reach the platform.
type Config struct {
	API struct {
		BaseURL string        `mapstructure:"base_url" validate:"required,url"`
		Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
	} `mapstructure:"api"`
	Media struct {
		PlaceholderURL string `mapstructure:"placeholder_url" validate:"required,url"`
	} `mapstructure:"media"`
	Logging struct {
		FilePath string `mapstructure:"file_path"`
		Level    string `mapstructure:"level" validate:"oneof=debug info warn error"`
	} `mapstructure:"logging"`
}

// Load reads configuration. A missing config file or .env is fine; an
// invalid value is not.
func Load() (*Config, error) {
	// .env values become plain environment variables, so viper's env
	// binding picks them up like any other.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("media.placeholder_url", "https://placehold.co/1200x400")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file_path", "")
}

// configDir resolves $XDG_CONFIG_HOME/campus, falling back to
// ~/.config/campus.
func configDir() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "campus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "campus"), nil
}

// Package config loads aqlwizard settings from a YAML file, environment
// variables and defaults, in increasing order of precedence below flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/aqlwizard/internal/wizerr"
)

// FileName is the config file searched for, without extension.
const FileName = "aqlwizard"

// EnvPrefix prefixes environment overrides, e.g. AQLWIZARD_CATALOG_PATH.
const EnvPrefix = "AQLWIZARD"

// Config holds all application configuration.
type Config struct {
	Catalog CatalogConfig `mapstructure:"catalog"`
	Lookups LookupsConfig `mapstructure:"lookups"`
	Store   StoreConfig   `mapstructure:"store"`
	Output  OutputConfig  `mapstructure:"output"`
	Log     LogConfig     `mapstructure:"log"`
}

type CatalogConfig struct {
	Path   string `mapstructure:"path"`
	Source string `mapstructure:"source"`
}

type LookupsConfig struct {
	Path string `mapstructure:"path"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type OutputConfig struct {
	Format string `mapstructure:"format"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Defaults returns a Config with all default values.
func Defaults() *Config {
	return &Config{
		Catalog: CatalogConfig{Source: "agg"},
		Store:   StoreConfig{Path: "aqlwizard.db"},
		Output:  OutputConfig{Format: "text"},
		Log:     LogConfig{Level: "warn"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("catalog.path", d.Catalog.Path)
	v.SetDefault("catalog.source", d.Catalog.Source)
	v.SetDefault("lookups.path", d.Lookups.Path)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("log.level", d.Log.Level)
}

// Load reads configuration. An explicit path must exist; otherwise
// aqlwizard.yaml is looked up in the user config directory and then the
// working directory, and a missing file just means defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if dir, err := Dir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	switch c.Output.Format {
	case "text", "json":
	default:
		return wizerr.New(wizerr.CodeInvalidInput, "invalid output.format %q, valid formats:", c.Output.Format).
			WithHints("text", "json")
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, wizerr.Wrap(wizerr.CodeInvalidInput, err, "invalid log.level %q", c.Log.Level).
			WithHints("debug", "info", "warn", "error")
	}
	return level, nil
}

// Dir returns the per-user config directory.
func Dir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, FileName), nil
}

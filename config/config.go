// Package config loads zoo settings from defaults, an optional config file
// and ZOO_* environment variables, in increasing order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config defines program configuration.
type Config struct {
	DB             DBConfig             `mapstructure:"db"`
	Log            LogConfig            `mapstructure:"log"`
	DefaultExhibit DefaultExhibitConfig `mapstructure:"default_exhibit"`
}

type DBConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// DefaultExhibitConfig is the exhibit created when the database holds none.
type DefaultExhibitConfig struct {
	Name     string `mapstructure:"name"`
	Type     string `mapstructure:"type"`
	Capacity int    `mapstructure:"capacity"`
}

// SetDefaults registers the built-in values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("db.path", "zoo.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("default_exhibit.name", "Default")
	v.SetDefault("default_exhibit.type", "General")
	v.SetDefault("default_exhibit.capacity", 20)
}

// New returns a viper instance with defaults and environment binding, and
// the config file at path if path is not empty.
func New(path string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("ZOO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			v.SetConfigType("toml")
		case ".json":
			v.SetConfigType("json")
		default:
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// Load reads configuration; path may be empty.
func Load(path string) (*Config, error) {
	v, err := New(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates configuration held by v.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the program cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path must not be empty")
	}
	if c.DefaultExhibit.Name != "" && c.DefaultExhibit.Capacity <= 0 {
		return fmt.Errorf("default_exhibit.capacity must be positive, got %d", c.DefaultExhibit.Capacity)
	}
	return nil
}

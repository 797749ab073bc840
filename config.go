package listing

import (
	"encoding/base64"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config holds listing settings, read from the environment and an optional
// config file.
type Config struct {
	DefaultLimit int    `mapstructure:"default_limit"`
	MaxLimit     int    `mapstructure:"max_limit"`
	CursorKey    string `mapstructure:"cursor_key"` // base64, 16, 24 or 32 bytes once decoded
	LogLevel     string `mapstructure:"log_level"`
	LogFormat    string `mapstructure:"log_format"`
}

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// LoadConfig reads <PREFIX>_DEFAULT_LIMIT, <PREFIX>_MAX_LIMIT,
// <PREFIX>_CURSOR_KEY, <PREFIX>_LOG_LEVEL and <PREFIX>_LOG_FORMAT.
// Environment variables take precedence over configFile, which may be empty.
func LoadConfig(prefix string, configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("default_limit", DefaultLimit)
	v.SetDefault("max_limit", MaxLimit)
	v.SetDefault("cursor_key", "")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("log_format", "text")

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configFile)
		}
	}

	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DefaultLimit < 0 {
		return errors.Errorf("default limit %d cannot be negative", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return errors.Errorf("max limit %d is less than default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if _, err := c.CursorKeyBytes(); err != nil {
		return err
	}
	return nil
}

// CursorKeyBytes decodes CursorKey. It returns nil when no key is configured.
func (c *Config) CursorKeyBytes() ([]byte, error) {
	if c.CursorKey == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(c.CursorKey)
	if err != nil {
		return nil, errors.Wrap(err, "cursor key is not valid base64")
	}
	switch len(key) {
	case 16, 24, 32:
		return key, nil
	default:
		return nil, errors.Errorf("cursor key must be 16, 24 or 32 bytes, got %d", len(key))
	}
}

// Hooks returns the paginator hooks the configuration asks for.
func Hooks[T any](cfg *Config) []func(next Paginator[T]) Paginator[T] {
	return []func(next Paginator[T]) Paginator[T]{
		EnsureLimits[T](cfg.DefaultLimit, cfg.MaxLimit),
	}
}

// Package config loads client and dev-server settings from .env, an optional
// config file, RECONCTL_* environment variables and command-line flags.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const EnvPrefix = "RECONCTL"

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	List   ListConfig   `mapstructure:"list"`
	UI     UIConfig     `mapstructure:"ui"`
	Log    LogConfig    `mapstructure:"log"`
	Server ServerConfig `mapstructure:"server"`
}

// APIConfig points the client at the reconciliation backend.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ListConfig struct {
	PageSize int `mapstructure:"page_size"`
}

// UIConfig holds presentation settings. Timezone is also the zone task date
// ranges are interpreted in.
type UIConfig struct {
	Timezone       string `mapstructure:"timezone"`
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
	DateTimeFormat string `mapstructure:"datetime_format"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig is only read by the local development backend.
type ServerConfig struct {
	Address        string   `mapstructure:"address"`
	PublicURL      string   `mapstructure:"public_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

const (
	DefaultBaseURL    = "http://localhost:8080"
	DefaultTimeout    = 30 * time.Second
	DefaultPageSize   = 10
	DefaultAddress    = ":8080"
	DefaultDateFormat = "2006-01-02"
)

// New returns a viper instance with defaults, env binding and the optional
// config file applied. Callers may bind flags before passing it to Load.
func New() *viper.Viper {
	// .env is optional; system env wins over nothing.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("list.page_size", DefaultPageSize)
	v.SetDefault("ui.timezone", "Local")
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.date_format", DefaultDateFormat)
	v.SetDefault("ui.datetime_format", "2006-01-02 15:04:05")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.address", DefaultAddress)
	v.SetDefault("server.public_url", "")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := os.Getenv(EnvPrefix + "_CONFIG"); path != "" {
		v.SetConfigFile(path)
	}
	return v
}

// Load reads the config file (if one was set) and decodes v into a Config.
func Load(v *viper.Viper) (Config, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.Wrapf(err, "read config %s", v.ConfigFileUsed())
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks the settings the client cannot run without.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Errorf("api.base_url %q is not an absolute URL", c.API.BaseURL)
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}
	if c.List.PageSize <= 0 {
		return errors.Errorf("list.page_size must be positive, got %d", c.List.PageSize)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves ui.timezone; empty and "Local" mean the machine zone.
func (c Config) Location() (*time.Location, error) {
	switch c.UI.Timezone {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.UI.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "ui.timezone %q", c.UI.Timezone)
	}
	return loc, nil
}

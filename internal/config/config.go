// Package config loads grunwald settings from viper (config file,
// GRUNWALD_ environment variables and bound command-line flags).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"codeberg.org/snonux/grunwald/internal"
	"codeberg.org/snonux/grunwald/internal/image"
	"codeberg.org/snonux/grunwald/internal/parser"
	"codeberg.org/snonux/grunwald/internal/wiktionary"
)

// EnvPrefix is prepended to every environment variable name
const EnvPrefix = "GRUNWALD"

// Config is the full application configuration
type Config struct {
	Dictionary DictionaryConfig
	Breaker    BreakerConfig
	Database   DatabaseConfig
	Image      ImageConfig
	Log        LogConfig
}

// DictionaryConfig selects the remote dictionary and how it is called
type DictionaryConfig struct {
	Language     string
	BaseURL      string
	ProbeURL     string
	UserAgent    string
	Timeout      time.Duration
	MaxBodyBytes int64
	// MaxImageBytes caps downloads of original page images
	MaxImageBytes int64
}

type BreakerConfig struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

// ImageConfig is the default display size of word images
type ImageConfig struct {
	Width  int
	Height int
}

type LogConfig struct {
	Level  string
	Format string
}

// DefaultDatabasePath returns $HOME/.local/state/grunwald/grunwald.sqlite
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "grunwald.sqlite"
	}
	return filepath.Join(home, ".local", "state", "grunwald", "grunwald.sqlite")
}

// SetDefaults registers the default of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("dictionary.language", parser.DefaultLanguage)
	v.SetDefault("dictionary.base_url", wiktionary.DefaultBaseURL)
	v.SetDefault("dictionary.probe_url", wiktionary.DefaultProbeURL)
	v.SetDefault("dictionary.user_agent", internal.UserAgent())
	v.SetDefault("dictionary.timeout", wiktionary.DefaultTimeout)
	v.SetDefault("dictionary.max_body_bytes", wiktionary.DefaultMaxBodyBytes)
	v.SetDefault("dictionary.max_image_bytes", wiktionary.DefaultMaxImageBytes)
	v.SetDefault("breaker.max_failures", wiktionary.DefaultMaxFailures)
	v.SetDefault("breaker.open_timeout", wiktionary.DefaultOpenTimeout)
	v.SetDefault("database.path", DefaultDatabasePath())
	v.SetDefault("image.width", image.DefaultWidth)
	v.SetDefault("image.height", image.DefaultHeight)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads the configuration from v, applying defaults for unset keys,
// and validates it.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	maxFailures := v.GetInt("breaker.max_failures")
	if maxFailures <= 0 {
		return Config{}, fmt.Errorf("breaker.max_failures must be > 0 (got %d)", maxFailures)
	}

	cfg := Config{
		Dictionary: DictionaryConfig{
			Language:      strings.TrimSpace(v.GetString("dictionary.language")),
			BaseURL:       strings.TrimSpace(v.GetString("dictionary.base_url")),
			ProbeURL:      strings.TrimSpace(v.GetString("dictionary.probe_url")),
			UserAgent:     v.GetString("dictionary.user_agent"),
			Timeout:       v.GetDuration("dictionary.timeout"),
			MaxBodyBytes:  v.GetInt64("dictionary.max_body_bytes"),
			MaxImageBytes: v.GetInt64("dictionary.max_image_bytes"),
		},
		Breaker: BreakerConfig{
			MaxFailures: uint32(maxFailures),
			OpenTimeout: v.GetDuration("breaker.open_timeout"),
		},
		Database: DatabaseConfig{
			Path: expandHome(v.GetString("database.path")),
		},
		Image: ImageConfig{
			Width:  v.GetInt("image.width"),
			Height: v.GetInt("image.height"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the loaded values. Load calls it automatically.
func (c *Config) Validate() error {
	if c.Dictionary.Language == "" {
		return fmt.Errorf("dictionary.language must not be empty")
	}
	if err := validateURL("dictionary.base_url", c.Dictionary.BaseURL); err != nil {
		return err
	}
	// An empty probe url disables the connectivity probe
	if c.Dictionary.ProbeURL != "" {
		if err := validateURL("dictionary.probe_url", c.Dictionary.ProbeURL); err != nil {
			return err
		}
	}
	if c.Dictionary.Timeout <= 0 {
		return fmt.Errorf("dictionary.timeout must be > 0 (got %v)", c.Dictionary.Timeout)
	}
	if c.Dictionary.MaxBodyBytes <= 0 {
		return fmt.Errorf("dictionary.max_body_bytes must be > 0 (got %d)", c.Dictionary.MaxBodyBytes)
	}
	if c.Dictionary.MaxImageBytes <= 0 {
		return fmt.Errorf("dictionary.max_image_bytes must be > 0 (got %d)", c.Dictionary.MaxImageBytes)
	}
	if c.Breaker.OpenTimeout <= 0 {
		return fmt.Errorf("breaker.open_timeout must be > 0 (got %v)", c.Breaker.OpenTimeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Image.Width <= 0 || c.Image.Height <= 0 {
		return fmt.Errorf("image size must be > 0 (got %dx%d)", c.Image.Width, c.Image.Height)
	}
	return nil
}

// Client returns the remote client configuration
func (c *Config) Client() wiktionary.Config {
	return wiktionary.Config{
		BaseURL:       c.Dictionary.BaseURL,
		ProbeURL:      c.Dictionary.ProbeURL,
		UserAgent:     c.Dictionary.UserAgent,
		Timeout:       c.Dictionary.Timeout,
		MaxBodyBytes:  c.Dictionary.MaxBodyBytes,
		MaxImageBytes: c.Dictionary.MaxImageBytes,
		MaxFailures:   c.Breaker.MaxFailures,
		OpenTimeout:   c.Breaker.OpenTimeout,
	}
}

// ImageSize returns the default display size of word images
func (c *Config) ImageSize() image.Size {
	return image.Size{Width: c.Image.Width, Height: c.Image.Height}
}

func validateURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http(s) url (got %q)", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host (got %q)", key, raw)
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// Package config loads the bot settings.
//
// Settings come from three layers, later ones winning: built-in defaults, an
// optional YAML settings file and TGQUEST_* environment variables (a .env file
// in the working directory is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/tgquest/internal/logging"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TGQUEST_"

// ErrMissingToken is returned when a transport needs a bot token and none is set.
var ErrMissingToken = errors.New("bot_token is required")

// Config holds the process settings.
type Config struct {
	BotToken   string `mapstructure:"bot_token" env:"BOT_TOKEN"`
	QuestsFile string `mapstructure:"quests_file" env:"QUESTS_FILE"`

	// Proxy is an http(s):// or socks5:// URL for the Telegram client.
	Proxy     string `mapstructure:"proxy" env:"PROXY"`
	ProxyUser string `mapstructure:"proxy_user" env:"PROXY_USER"` // user:password

	WebhookURL string `mapstructure:"webhook_url" env:"WEBHOOK_URL"`
	Listen     string `mapstructure:"listen" env:"LISTEN"`

	RedisAddr string `mapstructure:"redis_addr" env:"REDIS_ADDR"`

	LogLevel   string        `mapstructure:"log_level" env:"LOG_LEVEL"`
	SilentMiss bool          `mapstructure:"silent_miss" env:"SILENT_MISS"`
	Workers    int           `mapstructure:"workers" env:"WORKERS"`
	Timeout    time.Duration `mapstructure:"timeout" env:"TIMEOUT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		QuestsFile: "quests.yaml",
		Listen:     ":8080",
		LogLevel:   "info",
		Workers:    8,
		Timeout:    30 * time.Second,
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults and the environment apply. A relative quests_file in the settings
// file is resolved against the directory of that file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse settings %s: %w", path, err)
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(raw); err != nil {
		return fmt.Errorf("decode settings %s: %w", path, err)
	}

	if _, ok := raw["quests_file"]; ok && !filepath.IsAbs(c.QuestsFile) {
		c.QuestsFile = filepath.Join(filepath.Dir(path), c.QuestsFile)
	}
	return nil
}

// Validate checks values that do not depend on the chosen command.
func (c *Config) Validate() error {
	var errs []error
	if c.QuestsFile == "" {
		errs = append(errs, errors.New("quests_file is required"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.Proxy != "" {
		if _, err := c.ProxyURL(); err != nil {
			errs = append(errs, err)
		}
	}
	if c.WebhookURL != "" {
		if u, err := url.Parse(c.WebhookURL); err != nil || u.Scheme != "https" {
			errs = append(errs, fmt.Errorf("webhook_url must be an https URL, got %q", c.WebhookURL))
		}
	}
	return errors.Join(errs...)
}

// RequireToken fails when no bot token is configured.
func (c *Config) RequireToken() error {
	if strings.TrimSpace(c.BotToken) == "" {
		return fmt.Errorf("%w (set it in the settings file or %sBOT_TOKEN)", ErrMissingToken, EnvPrefix)
	}
	return nil
}

// Level returns the parsed log level.
func (c *Config) Level() slog.Level {
	level, _ := logging.ParseLevel(c.LogLevel)
	return level
}

// ProxyURL returns the proxy with ProxyUser applied, or nil when no proxy is set.
func (c *Config) ProxyURL() (*url.URL, error) {
	if c.Proxy == "" {
		return nil, nil
	}
	u, err := url.Parse(c.Proxy)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid proxy %q", c.Proxy)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
	if c.ProxyUser != "" {
		user, pass, _ := strings.Cut(c.ProxyUser, ":")
		u.User = url.UserPassword(user, pass)
	}
	return u, nil
}

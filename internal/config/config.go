package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	DiscordClientID     string `env:"DISCORD_CLIENT_ID,required" validate:"required"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET,required" validate:"required"`

	// BaseURL is this backend's public URL; the OAuth redirect URI is
	// derived from it. FrontendURL is the site users are sent back to.
	BaseURL     string `env:"BASE_URL,required" validate:"required,url"`
	FrontendURL string `env:"FRONTEND_URL,required" validate:"required,url"`

	SessionSecret        string `env:"SESSION_SECRET,required" validate:"required,min=32"`
	SessionStoreProvider string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	CacheProvider        string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisAddr            string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0"`

	StartingBalance int    `env:"STARTING_BALANCE" envDefault:"5000" validate:"min=0"`
	PetPoolsFile    string `env:"PET_POOLS_FILE"`
	TimeLocation    string `env:"TIME_LOCATION" envDefault:"UTC" validate:"required"`

	SentryDSN string `env:"SENTRY_DSN"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`
	Port      string     `env:"PORT" envDefault:"3000"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if err := validatePublicURL("BASE_URL", c.BaseURL); err != nil {
		return err
	}
	if err := validatePublicURL("FRONTEND_URL", c.FrontendURL); err != nil {
		return err
	}

	if _, err := time.LoadLocation(c.TimeLocation); err != nil {
		return fmt.Errorf("TIME_LOCATION must be a valid IANA location: %w", err)
	}

	return nil
}

// Location returns the reference timezone the shop rotation is computed in.
// validate guarantees the name loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TimeLocation)
	if err != nil {
		return time.UTC
	}
	return loc
}

func validatePublicURL(name, rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return fmt.Errorf("%s must be a valid absolute URL", name)
	}
	if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
		return fmt.Errorf("%s must use https outside local development", name)
	}
	return nil
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}

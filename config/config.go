// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// DefaultURL is the trait endpoint used when TRAITHASH_URL is unset.
const DefaultURL = "https://api.close.com/buildwithus"

// Prefix is prepended to every variable name below.
const Prefix = "TRAITHASH_"

// Config controls where traits are fetched from and how the run is logged.
type Config struct {
	URL          string        `env:"URL"            envDefault:"https://api.close.com/buildwithus"`
	Timeout      time.Duration `env:"TIMEOUT"        envDefault:"30s"`
	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	LogLevel     string        `env:"LOG_LEVEL"      envDefault:"info"`
	LogFormat    string        `env:"LOG_FORMAT"     envDefault:"text"`
}

// Load reads TRAITHASH_* variables and validates the result.
func Load() (Config, error) {
	return LoadFrom(Environ())
}

// LoadFrom is Load over an explicit environment.
//
// Callers that layer flags over the environment write the flag values into
// environ (see Environ) so a valid flag replaces an invalid variable before
// anything is parsed.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Prefix: Prefix, Environment: environ})
}

// Environ returns a copy of the process environment as a map.
func Environ() map[string]string {
	return env.ToMap(os.Environ())
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if err := ValidateURL(c.URL); err != nil {
		return err
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("config: timeout must be positive, got %s", c.Timeout)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("config: max body bytes must be positive, got %d", c.MaxBodyBytes)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: invalid log level %q", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("config: invalid log format %q", c.LogFormat)
	}
	return nil
}

// ValidateURL requires an absolute http or https URL.
func ValidateURL(raw string) error {
	if raw == "" {
		return errors.New("config: empty url")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("config: url %q has no host", raw)
	}
	return nil
}

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.URL != DefaultURL {
		t.Fatalf("expected default url, got %q", cfg.URL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Fatalf("expected 30s timeout, got %s", cfg.Timeout)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("unexpected max body bytes %d", cfg.MaxBodyBytes)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Fatalf("unexpected log settings %q %q", cfg.LogLevel, cfg.LogFormat)
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"TRAITHASH_URL":            "http://127.0.0.1:9000/traits",
		"TRAITHASH_TIMEOUT":        "250ms",
		"TRAITHASH_MAX_BODY_BYTES": "4096",
		"TRAITHASH_LOG_LEVEL":      "debug",
		"TRAITHASH_LOG_FORMAT":     "json",
	})
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.URL != "http://127.0.0.1:9000/traits" || cfg.Timeout != 250*time.Millisecond || cfg.MaxBodyBytes != 4096 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log overrides not applied: %+v", cfg)
	}
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"bad duration":  {"TRAITHASH_TIMEOUT": "soon"},
		"zero timeout":  {"TRAITHASH_TIMEOUT": "0s"},
		"bad scheme":    {"TRAITHASH_URL": "ftp://example.com/x"},
		"relative url":  {"TRAITHASH_URL": "/buildwithus"},
		"bad level":     {"TRAITHASH_LOG_LEVEL": "loud"},
		"bad format":    {"TRAITHASH_LOG_FORMAT": "xml"},
		"zero body cap": {"TRAITHASH_MAX_BODY_BYTES": "0"},
	}
	for name, environ := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := LoadFrom(environ); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL(DefaultURL); err != nil {
		t.Fatalf("expected default url to validate: %v", err)
	}
	err := ValidateURL("https://")
	if err == nil || !strings.Contains(err.Error(), "no host") {
		t.Fatalf("expected missing host error, got %v", err)
	}
}

func TestEnviron_FlagValueReplacesInvalidVariable(t *testing.T) {
	t.Setenv(Prefix+"TIMEOUT", "bogus")
	environ := Environ()
	if environ[Prefix+"TIMEOUT"] != "bogus" {
		t.Fatalf("expected process environment in map")
	}
	if _, err := LoadFrom(environ); err == nil {
		t.Fatalf("expected parse error for invalid timeout")
	}
	environ[Prefix+"TIMEOUT"] = "5s"
	cfg, err := LoadFrom(environ)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %s", cfg.Timeout)
	}
}

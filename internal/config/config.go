// Package config resolves runtime settings from environment defaults and
// an optional YAML overrides file next to the feed list.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds the external-program paths and fetch settings. It is built
// once at startup and passed by value into the pipeline and the UI.
type Config struct {
	Browser   string `env:"BROWSER" yaml:"browser"`
	Media     string `env:"PLAYER" yaml:"media"`
	Editor    string `env:"EDITOR" yaml:"editor"`
	Terminal  string `env:"-" yaml:"terminal"`
	TermFlags string `env:"-" yaml:"term_flags"`
	Speech    string `env:"-" yaml:"speech"`

	// TimeoutSeconds is the per-feed fetch timeout from the overrides
	// file; Timeout is the resolved value.
	TimeoutSeconds int           `env:"-" yaml:"reqtimeout"`
	Timeout        time.Duration `env:"-" yaml:"-"`
}

const defaultTimeout = 8 * time.Second

// Load reads environment defaults, applies the overrides file when it
// exists, and fills remaining gaps with built-in fallbacks.
func Load(overridesPath string) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if data, err := os.ReadFile(overridesPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse settings file %s: %w", overridesPath, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("read settings file %s: %w", overridesPath, err)
	}

	if cfg.Browser == "" {
		cfg.Browser = "firefox"
	}
	if cfg.Media == "" {
		cfg.Media = "mpv"
	}
	if cfg.Editor == "" {
		cfg.Editor = "nano"
	}
	if cfg.Terminal == "" {
		cfg.Terminal = "xterm"
	}
	if cfg.TermFlags == "" {
		cfg.TermFlags = "-fa 'Monospace' -fs 14"
	}
	if cfg.Speech == "" {
		cfg.Speech = "espeak"
	}
	cfg.Timeout = defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		cfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive: %s", c.Timeout)
	}
	if strings.TrimSpace(c.Browser) == "" {
		return errors.New("browser command is empty")
	}
	return nil
}

// DerivedPaths maps the feed list file to its sibling database, settings
// and log files: feeds.csv -> feeds.db, feeds.yml, feeds.log.
type DerivedPaths struct {
	FeedFile string
	Database string
	Settings string
	LogFile  string
}

// Derive computes the sibling paths for a feed list file.
func Derive(feedFile string) DerivedPaths {
	base := strings.TrimSuffix(feedFile, filepath.Ext(feedFile))
	return DerivedPaths{
		FeedFile: feedFile,
		Database: base + ".db",
		Settings: base + ".yml",
		LogFile:  base + ".log",
	}
}

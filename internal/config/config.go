package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
)

const (
	DefaultURL       = "https://api.openai.com/v1/chat/completions"
	DefaultModel     = "gpt-4o"
	DefaultMaxTokens = 300

	fileName = ".ponopush_config.toml"
)

var (
	ErrUnknownKey   = errors.New("invalid configuration key")
	ErrInvalidValue = errors.New("invalid configuration value")
)

type Config struct {
	API APIConfig `toml:"api"`
}

type APIConfig struct {
	Token     string `toml:"token"`
	URL       string `toml:"url"`
	Model     string `toml:"model"`
	MaxTokens int    `toml:"max_tokens"`
}

// Path returns the per-user settings file location.
func Path() string {
	return filepath.Join(xdg.Home, fileName)
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			URL:       DefaultURL,
			Model:     DefaultModel,
			MaxTokens: DefaultMaxTokens,
		},
	}
}

// Load reads the settings file at path. It never fails: a missing file or
// one that does not decode yields Default().
func Load(path string) *Config {
	if path == "" {
		path = Path()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("Cannot read settings, using defaults")
		}
		return Default()
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Malformed settings, using defaults")
		return Default()
	}
	if cfg.API.MaxTokens <= 0 {
		cfg.API.MaxTokens = DefaultMaxTokens
	}
	return cfg
}

// Save replaces the file at path with the full settings.
func (c *Config) Save(path string) error {
	if path == "" {
		path = Path()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace settings: %w", err)
	}
	return nil
}

// Keys lists the settings accepted by Set.
func Keys() []string {
	return []string{"api.token", "api.url", "api.model", "api.max_tokens"}
}

// Set applies a single dotted key. The receiver is left untouched on error.
func (c *Config) Set(key, value string) error {
	switch key {
	case "api.token":
		c.API.Token = value
	case "api.url":
		c.API.URL = value
	case "api.model":
		c.API.Model = value
	case "api.max_tokens":
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: api.max_tokens must be a positive integer, got %q", ErrInvalidValue, value)
		}
		c.API.MaxTokens = n
	default:
		return fmt.Errorf("%w %q (valid keys: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	out := *c
	if out.API.Token != "" {
		out.API.Token = "********"
	}
	return out
}

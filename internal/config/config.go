// Package config resolves CLI settings from defaults, a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aaronwald/rawdash/internal/utils"
)

const (
	DefaultAPIURL          = "http://localhost:8000"
	DefaultRowLimit        = 20
	MaxRowLimit            = 500
	DefaultRefreshInterval = 30 * time.Second

	EnvAPIURL = "RAWDASH_API_URL"
	EnvAPIKey = "RAWDASH_API_KEY"
)

// Config holds the effective client settings
type Config struct {
	APIURL          string        `yaml:"api_url"`
	APIKey          string        `yaml:"api_key,omitempty"`
	RowLimit        int           `yaml:"row_limit"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	Timeout         time.Duration `yaml:"timeout"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		APIURL:          DefaultAPIURL,
		RowLimit:        DefaultRowLimit,
		RefreshInterval: DefaultRefreshInterval,
	}
}

// DefaultPath returns <user config dir>/rawdash/config.yaml
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "rawdash", "config.yaml"), nil
}

// Load layers the YAML file and the environment over Default. An empty path means
// the default location, which is optional; an explicit path must exist.
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		err := utils.LoadYAML(path, cfg)
		switch {
		case err == nil:
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("loading config %s: %w", path, err)
		}
	}

	cfg.ApplyEnv(getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from RAWDASH_* variables that are set
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
}

// Validate checks the settings before they reach the client
func (c *Config) Validate() error {
	if err := utils.ValidateURL(c.APIURL, "api_url"); err != nil {
		return err
	}
	if err := utils.ValidateRowLimit(c.RowLimit, MaxRowLimit); err != nil {
		return err
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// Save writes the config to path. The file may hold an API key, so it is private to the user.
func (c *Config) Save(path string) error {
	return utils.SaveYAML(c, path, 0600)
}

// Package config manages persistent user configuration for fabvis.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fabvis/fabvis/pkg/util"
)

// Config holds credentials, connection endpoints, and editor preferences.
// Zero values fall back to sane defaults via Normalize.
type Config struct {
	// OrchestratorURL is the control framework API endpoint
	OrchestratorURL string `yaml:"orchestrator_url,omitempty" validate:"omitempty,url"`

	// TokenPath points at the identity token used for API calls
	TokenPath string `yaml:"token_path,omitempty"`

	// Bastion describes the jump host for node shell sessions
	Bastion BastionSettings `yaml:"bastion,omitempty"`

	// NodeKeyPath is the private key installed on provisioned nodes
	NodeKeyPath string `yaml:"node_key_path,omitempty"`

	// RedisAddr enables the site/metrics cache when set (host:port)
	RedisAddr string `yaml:"redis_addr,omitempty" validate:"omitempty,hostname_port"`

	// PrometheusURL enables site metrics queries when set
	PrometheusURL string `yaml:"prometheus_url,omitempty" validate:"omitempty,url"`

	// DefaultSite is used for new nodes when no site is given
	DefaultSite string `yaml:"default_site,omitempty"`

	// DefaultImage overrides the built-in default OS image
	DefaultImage string `yaml:"default_image,omitempty"`

	// Theme selects light or dark topology colors
	Theme string `yaml:"theme,omitempty" validate:"omitempty,oneof=light dark"`
}

// BastionSettings locates the jump host and its credentials.
type BastionSettings struct {
	Host    string `yaml:"host,omitempty" validate:"omitempty,hostname_port"`
	User    string `yaml:"user,omitempty"`
	KeyPath string `yaml:"key_path,omitempty"`
}

// DefaultConfigPath returns the default path for the config file.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "fabvis.yaml"
	}
	return filepath.Join(home, ".fabvis", "config.yaml")
}

// Load reads configuration from the default location.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom reads configuration from a specific path. A missing file yields
// an empty config so first runs work without setup.
func LoadFrom(path string) (*Config, error) {
	c := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.Normalize()
			return c, nil
		}
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	c.Normalize()
	return c, nil
}

// Validate checks field formats and reports the first offending field.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			return fmt.Errorf("config field %s is invalid (%s): %w",
				errs[0].Namespace(), errs[0].Tag(), util.ErrInvalidConfig)
		}
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

// Normalize fills defaults for unset fields.
func (c *Config) Normalize() {
	if c.Theme == "" {
		c.Theme = "light"
	}
	if c.DefaultSite == "" {
		c.DefaultSite = "auto"
	}
	if c.Bastion.User == "" {
		c.Bastion.User = os.Getenv("USER")
	}
}

// Save writes configuration to the default location.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes configuration to a specific path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config dir %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	// Key paths and endpoints are private to the user.
	return os.WriteFile(path, data, 0600)
}

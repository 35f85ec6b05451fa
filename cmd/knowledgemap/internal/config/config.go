// Package config reads knowledgemap.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/recera/knowledgemap/pkg/knowledge/physics"
)

// FileName is the config file looked up in the project directory
const FileName = "knowledgemap.yaml"

// Config represents the knowledgemap.yaml configuration
type Config struct {
	// Path to the map document (.json, .yaml or .toml)
	Data string `yaml:"data,omitempty"`

	// HTTP server configuration
	Server *ServerConfig `yaml:"server,omitempty"`

	// Layout constants
	Physics *physics.Config `yaml:"physics,omitempty"`

	// Viewport and presentation
	View *ViewConfig `yaml:"view,omitempty"`
}

// ServerConfig contains the serve command settings
type ServerConfig struct {
	Host string `yaml:"host,omitempty"`
	Port int    `yaml:"port,omitempty"`

	// Relax overlapping topics when a session starts
	Relax bool `yaml:"relax,omitempty"`

	// Reload the document when the data file changes
	Watch *bool `yaml:"watch,omitempty"`

	// Origins allowed to open a live session; empty allows any
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// ViewConfig contains viewport and presentation settings
type ViewConfig struct {
	MinZoom float64 `yaml:"minZoom,omitempty"`
	MaxZoom float64 `yaml:"maxZoom,omitempty"`

	// Ambient drift of topics
	Idle *bool `yaml:"idle,omitempty"`

	// Back link shown in the chrome
	Home string `yaml:"home,omitempty"`
}

// Load loads configuration from knowledgemap.yaml in dir. A missing file
// yields the defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile loads configuration from path
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	applyDefaults(&config)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &config, nil
}

// Save saves configuration to knowledgemap.yaml in dir
func Save(config *Config, dir string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0644)
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	watch, idle := true, true
	cfg := physics.DefaultConfig()
	return &Config{
		Data: "knowledge.yaml",
		Server: &ServerConfig{
			Host:  "localhost",
			Port:  8080,
			Watch: &watch,
		},
		Physics: &cfg,
		View: &ViewConfig{
			MinZoom: 0.5,
			MaxZoom: 2.4,
			Idle:    &idle,
		},
	}
}

// applyDefaults applies default values to missing configuration
func applyDefaults(config *Config) {
	defaults := DefaultConfig()

	if config.Data == "" {
		config.Data = defaults.Data
	}

	if config.Server == nil {
		config.Server = defaults.Server
	} else {
		if config.Server.Host == "" {
			config.Server.Host = defaults.Server.Host
		}
		if config.Server.Port == 0 {
			config.Server.Port = defaults.Server.Port
		}
		if config.Server.Watch == nil {
			config.Server.Watch = defaults.Server.Watch
		}
	}

	if config.Physics == nil {
		config.Physics = defaults.Physics
	} else {
		p, d := config.Physics, defaults.Physics
		if p.MaxLinkLength == 0 {
			p.MaxLinkLength = d.MaxLinkLength
		}
		if p.StretchBand == 0 {
			p.StretchBand = d.StretchBand
		}
		if p.FollowFactor == 0 {
			p.FollowFactor = d.FollowFactor
		}
		if p.MinNodeDistance == 0 {
			p.MinNodeDistance = d.MinNodeDistance
		}
		if p.CollisionBudget == 0 {
			p.CollisionBudget = d.CollisionBudget
		}
	}

	if config.View == nil {
		config.View = defaults.View
	} else {
		if config.View.MinZoom == 0 {
			config.View.MinZoom = defaults.View.MinZoom
		}
		if config.View.MaxZoom == 0 {
			config.View.MaxZoom = defaults.View.MaxZoom
		}
		if config.View.Idle == nil {
			config.View.Idle = defaults.View.Idle
		}
	}
}

// Validate reports the first setting that cannot work
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.View.MinZoom <= 0 || c.View.MaxZoom < c.View.MinZoom {
		return fmt.Errorf("view zoom bounds [%g, %g] are invalid", c.View.MinZoom, c.View.MaxZoom)
	}
	p := c.Physics
	if p.MaxLinkLength < 0 || p.StretchBand < 0 || p.FollowFactor < 0 || p.MinNodeDistance < 0 || p.CollisionBudget < 0 {
		return errors.New("physics constants must not be negative")
	}
	if p.FollowFactor > 1 {
		return fmt.Errorf("physics.followFactor %g exceeds 1", p.FollowFactor)
	}
	return nil
}

// Watching reports whether serve reloads the data file
func (c *Config) Watching() bool {
	return c.Server.Watch == nil || *c.Server.Watch
}

// IdleMotion reports whether topics drift when idle
func (c *Config) IdleMotion() bool {
	return c.View.Idle == nil || *c.View.Idle
}

// DataPath resolves the data file against the config directory
func (c *Config) DataPath(dir string) string {
	if filepath.IsAbs(c.Data) {
		return c.Data
	}
	return filepath.Join(dir, c.Data)
}

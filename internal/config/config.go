// Package config provides configuration loading for dtray.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables the core event loop treats as fixed for its
// lifetime: the icon square side length, the background colour spec, and the
// redock grace period. They are read-only once Load returns.
type Config struct {
	// IconSize is the side length, in pixels, of each docked tray-icon window.
	IconSize int `yaml:"icon_size"`

	// Background is a "#rrggbb" colour spec used for the tray-icon window
	// background pixel.
	Background string `yaml:"background"`

	// RedockDelay is how long the docker waits after observing a new tray owner
	// before recreating every icon window.
	RedockDelay time.Duration `yaml:"redock_delay"`

	// Display overrides the X11 display name. Empty means use the display client
	// library's default behaviour (the DISPLAY environment variable).
	Display string `yaml:"display"`

	// Version is the daemon version string reported by -v. It is not read from the
	// config file; main sets it from internal/version at build time.
	Version string `yaml:"-"`
}

// Defaults returns the configuration used when no config file is present.
func Defaults() *Config {
	return &Config{
		IconSize:    24,
		Background:  "#1a1a1a",
		RedockDelay: 100 * time.Millisecond,
	}
}

// Load reads configuration from the default location
// (~/.config/dtray/config.yaml), falling back to Defaults if the file does
// not exist.
func Load() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("get config dir: %w", err)
	}

	path := filepath.Join(configDir, "dtray", "config.yaml")
	cfg, err := LoadFrom(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads configuration from a specific path and applies defaults for
// any field left unset.
func LoadFrom(path string) (*Config, error) {
	path = expandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.IconSize <= 0 {
		c.IconSize = 24
	}
	if c.Background == "" {
		c.Background = "#1a1a1a"
	}
	if c.RedockDelay <= 0 {
		c.RedockDelay = 100 * time.Millisecond
	}
}

// UnmarshalYAML implements custom unmarshaling so RedockDelay accepts
// parseDuration's day/week-extended duration syntax.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		IconSize    int    `yaml:"icon_size"`
		Background  string `yaml:"background"`
		RedockDelay string `yaml:"redock_delay"`
		Display     string `yaml:"display"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	c.IconSize = raw.IconSize
	c.Background = raw.Background
	c.Display = raw.Display
	if raw.RedockDelay != "" {
		d, err := parseDuration(raw.RedockDelay)
		if err != nil {
			return fmt.Errorf("parse redock_delay: %w", err)
		}
		c.RedockDelay = d
	}
	return nil
}

// parseDuration parses a duration string with support for days (d) and weeks (w)
// in addition to the standard Go duration suffixes.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if strings.HasSuffix(s, "d") {
		numStr := strings.TrimSuffix(s, "d")
		var days int
		if _, err := fmt.Sscanf(numStr, "%d", &days); err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if days < 0 {
			return 0, fmt.Errorf("invalid duration %q: negative values not allowed", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	if strings.HasSuffix(s, "w") {
		numStr := strings.TrimSuffix(s, "w")
		var weeks int
		if _, err := fmt.Sscanf(numStr, "%d", &weeks); err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", s, err)
		}
		if weeks < 0 {
			return 0, fmt.Errorf("invalid duration %q: negative values not allowed", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// expandPath expands a leading ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

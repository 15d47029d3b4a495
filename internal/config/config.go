// Package config loads the admin tool's own settings: where the engine
// document lives, whether to keep backups, and output preferences. Settings
// come from an optional admin.yaml in the bbs config directory, overridden
// by BBS_* environment variables. The engine document itself is owned by
// pkg/routeconf; this file only configures the tool.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// EnvDocument overrides the engine document path.
	EnvDocument = "BBS_CONFIG"
	envColor    = "BBS_COLOR"
	envBackup   = "BBS_BACKUP"
	envDebounce = "BBS_WATCH_DEBOUNCE_MS"
)

// Settings are the admin tool's knobs, all optional.
type Settings struct {
	// ConfigFile is the engine document path. Empty means the default
	// <user config dir>/bbs/bbs.json.
	ConfigFile string `yaml:"config_file"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
	// Backup keeps a .bak copy of the document before each save.
	Backup bool `yaml:"backup"`
	// WatchDebounceMs batches filesystem events in check --watch.
	WatchDebounceMs int `yaml:"watch_debounce_ms"`
}

func defaults() Settings {
	return Settings{
		Color:           "auto",
		Backup:          true,
		WatchDebounceMs: 300,
	}
}

// Dir returns the bbs configuration directory for this user.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "bbs")
}

// DefaultSettingsPath is where Load looks when no explicit path is given.
func DefaultSettingsPath() string {
	return filepath.Join(Dir(), "admin.yaml")
}

// DefaultDocumentPath is the engine document location when neither flag,
// environment nor settings file names one.
func DefaultDocumentPath() string {
	return filepath.Join(Dir(), "bbs.json")
}

// Load reads the settings file at path, fills defaults and applies
// environment overrides. A missing file is not an error; a present but
// unreadable or invalid one is.
func Load(path string) (Settings, error) {
	s := defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// first run, defaults apply
	case err != nil:
		return s, fmt.Errorf("read settings %s: %w", path, err)
	default:
		var file struct {
			ConfigFile      string `yaml:"config_file"`
			Color           string `yaml:"color"`
			Backup          *bool  `yaml:"backup"`
			WatchDebounceMs *int   `yaml:"watch_debounce_ms"`
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return s, fmt.Errorf("parse settings %s: %w", path, err)
		}
		if strings.TrimSpace(file.ConfigFile) != "" {
			s.ConfigFile = strings.TrimSpace(file.ConfigFile)
		}
		if strings.TrimSpace(file.Color) != "" {
			s.Color = strings.TrimSpace(file.Color)
		}
		if file.Backup != nil {
			s.Backup = *file.Backup
		}
		if file.WatchDebounceMs != nil {
			s.WatchDebounceMs = *file.WatchDebounceMs
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvDocument)); v != "" {
		s.ConfigFile = v
	}
	if v := strings.TrimSpace(os.Getenv(envColor)); v != "" {
		s.Color = v
	}
	if v, ok := envBool(envBackup); ok {
		s.Backup = v
	}
	if v := strings.TrimSpace(os.Getenv(envDebounce)); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			s.WatchDebounceMs = ms
		}
	}

	switch s.Color {
	case "auto", "always", "never":
	default:
		return s, fmt.Errorf("settings: color must be auto, always or never, got %q", s.Color)
	}
	return s, nil
}

func envBool(name string) (bool, bool) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(name)))
	switch v {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	default:
		return false, false
	}
}

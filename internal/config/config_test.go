package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "admin.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "admin.yaml"))
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if s.Color != "auto" {
		t.Fatalf("color default=%q", s.Color)
	}
	if !s.Backup {
		t.Fatalf("backup default should be true")
	}
	if s.WatchDebounceMs != 300 {
		t.Fatalf("watch_debounce_ms default=%d", s.WatchDebounceMs)
	}
	if s.ConfigFile != "" {
		t.Fatalf("config_file default=%q", s.ConfigFile)
	}
}

func TestLoad_FileValues(t *testing.T) {
	p := writeSettings(t, `
config_file: /srv/bbs/bbs.json
color: never
backup: false
watch_debounce_ms: 50
`)
	s, err := Load(p)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if s.ConfigFile != "/srv/bbs/bbs.json" {
		t.Fatalf("config_file=%q", s.ConfigFile)
	}
	if s.Color != "never" {
		t.Fatalf("color=%q", s.Color)
	}
	if s.Backup {
		t.Fatalf("backup not overridden")
	}
	if s.WatchDebounceMs != 50 {
		t.Fatalf("watch_debounce_ms=%d", s.WatchDebounceMs)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	p := writeSettings(t, `
config_file: /srv/bbs/bbs.json
color: always
`)
	t.Setenv("BBS_CONFIG", "/tmp/other.json")
	t.Setenv("BBS_COLOR", "never")
	t.Setenv("BBS_BACKUP", "off")
	t.Setenv("BBS_WATCH_DEBOUNCE_MS", "1000")

	s, err := Load(p)
	if err != nil {
		t.Fatalf("Load err=%v", err)
	}
	if s.ConfigFile != "/tmp/other.json" {
		t.Fatalf("config_file=%q", s.ConfigFile)
	}
	if s.Color != "never" {
		t.Fatalf("color=%q", s.Color)
	}
	if s.Backup {
		t.Fatalf("BBS_BACKUP=off not applied")
	}
	if s.WatchDebounceMs != 1000 {
		t.Fatalf("watch_debounce_ms=%d", s.WatchDebounceMs)
	}
}

func TestLoad_BadColor(t *testing.T) {
	p := writeSettings(t, `color: sometimes`)
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for invalid color")
	}
}

func TestLoad_BadYAML(t *testing.T) {
	p := writeSettings(t, "color: [unclosed")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected error for invalid yaml")
	}
}

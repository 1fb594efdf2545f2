package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{"SEZI_PORT", "SEZI_DB", "SEZI_STORE", "SEZI_SERVER", "SEZI_LOG"} {
		t.Setenv(k, "")
	}
	return dir
}

func TestLoadDefaultsWhenMissing(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreLibrary || cfg.Port != 51735 || cfg.Reader.WPM != 250 {
		t.Errorf("defaults = %+v", cfg)
	}
	if want := filepath.Join(dir, "data", "sezi", "sezi.db"); cfg.DBPath != want {
		t.Errorf("DBPath = %s, want %s", cfg.DBPath, want)
	}
	if cfg.Reader.SaveInterval.Duration != 10*time.Second {
		t.Errorf("SaveInterval = %v", cfg.Reader.SaveInterval)
	}
}

func TestLoadExplicitMissingFails(t *testing.T) {
	isolate(t)
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("missing explicit config accepted")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "sezi.yaml")
	os.WriteFile(path, []byte(`
store: state
port: 9000
reader:
  wpm: 400
  mode: sentence
  debounce: 1500ms
`), 0644)
	t.Setenv("SEZI_PORT", "9100")
	t.Setenv("SEZI_LOG", "dev")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store != StoreState || cfg.Reader.WPM != 400 || cfg.Reader.Mode != "sentence" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Reader.DebounceDelay.Duration != 1500*time.Millisecond {
		t.Errorf("debounce = %v", cfg.Reader.DebounceDelay)
	}
	if cfg.Reader.SaveTimeout.Duration != 5*time.Second {
		t.Errorf("unset duration lost its default: %v", cfg.Reader.SaveTimeout)
	}
	if cfg.Port != 9100 || cfg.Log != "dev" {
		t.Errorf("env not applied: port=%d log=%s", cfg.Port, cfg.Log)
	}
	if cfg.Addr() != ":9100" {
		t.Errorf("Addr = %s", cfg.Addr())
	}
}

func TestLoadBadEnvPort(t *testing.T) {
	isolate(t)
	t.Setenv("SEZI_PORT", "eighty")
	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), "SEZI_PORT") {
		t.Errorf("err = %v, want SEZI_PORT error", err)
	}
}

func TestLoadBadDuration(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("reader:\n  debounce: soon\n"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("bad duration accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"unknown store", func(c *Config) { c.Store = "s3" }, false},
		{"remote without server", func(c *Config) { c.Store = StoreRemote }, false},
		{"remote with server", func(c *Config) { c.Store = StoreRemote; c.Server = "http://localhost:8000" }, true},
		{"port zero", func(c *Config) { c.Port = 0 }, false},
		{"slow wpm", func(c *Config) { c.Reader.WPM = 10 }, false},
		{"fast wpm", func(c *Config) { c.Reader.WPM = 900 }, false},
		{"zero wpm means default", func(c *Config) { c.Reader.WPM = 0 }, true},
		{"bad mode", func(c *Config) { c.Reader.Mode = "chapter" }, false},
		{"negative interval", func(c *Config) { c.Reader.SaveInterval.Duration = -time.Second }, false},
		{"recent limit", func(c *Config) { c.RecentLimit = 51 }, false},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if (err == nil) != tt.ok {
			t.Errorf("%s: Validate() = %v, want ok=%v", tt.name, err, tt.ok)
		}
	}
}

// Package config loads sezi settings from a YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds select where reading progress is kept.
const (
	StoreLibrary = "library" // SQLite library database
	StoreState   = "state"   // JSON file keyed by content hash
	StoreRemote  = "remote"  // a running `sezi serve`
)

const (
	minWPM = 50
	maxWPM = 800
)

type Config struct {
	Store  string `yaml:"store"`
	DBPath string `yaml:"db_path"`
	Server string `yaml:"server"`

	Port        int      `yaml:"port"`
	UploadDir   string   `yaml:"upload_dir"`
	CacheTTL    Duration `yaml:"cache_ttl"`
	RecentLimit int      `yaml:"recent_limit"`

	Log     string `yaml:"log"`
	LogFile string `yaml:"log_file"`

	Reader ReaderConfig `yaml:"reader"`
}

// ReaderConfig tunes the reading engine.
type ReaderConfig struct {
	WPM           int      `yaml:"wpm"`
	Mode          string   `yaml:"mode"`
	Bionic        bool     `yaml:"bionic"`
	DebounceDelay Duration `yaml:"debounce"`
	SaveInterval  Duration `yaml:"save_interval"`
	SaveTimeout   Duration `yaml:"save_timeout"`
}

// Duration reads YAML values like "1s" or "1500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	d.Duration = parsed
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	dataDir := DataDir()
	return Config{
		Store:       StoreLibrary,
		DBPath:      filepath.Join(dataDir, "sezi.db"),
		Port:        51735,
		UploadDir:   filepath.Join(dataDir, "uploads"),
		CacheTTL:    Duration{30 * time.Minute},
		RecentLimit: 10,
		Log:         "prod",
		Reader: ReaderConfig{
			WPM:           250,
			Mode:          "word",
			Bionic:        true,
			DebounceDelay: Duration{time.Second},
			SaveInterval:  Duration{10 * time.Second},
			SaveTimeout:   Duration{5 * time.Second},
		},
	}
}

// DataDir returns XDG_DATA_HOME/sezi or ~/.local/share/sezi.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "sezi")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "sezi")
}

// DefaultPath returns XDG_CONFIG_HOME/sezi/config.yaml or
// ~/.config/sezi/config.yaml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sezi", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "sezi", "config.yaml")
}

// Load reads path over the defaults and applies environment overrides. An
// empty path means DefaultPath, which may be missing.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SEZI_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEZI_PORT: %w", err)
		}
		c.Port = port
	}
	if v := os.Getenv("SEZI_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("SEZI_STORE"); v != "" {
		c.Store = v
	}
	if v := os.Getenv("SEZI_SERVER"); v != "" {
		c.Server = v
	}
	if v := os.Getenv("SEZI_LOG"); v != "" {
		c.Log = v
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store {
	case StoreLibrary, StoreState:
	case StoreRemote:
		if c.Server == "" {
			return errors.New("store remote needs a server address")
		}
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", c.Store, StoreLibrary, StoreState, StoreRemote)
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.Reader.WPM != 0 && (c.Reader.WPM < minWPM || c.Reader.WPM > maxWPM) {
		return fmt.Errorf("reader.wpm %d outside %d-%d", c.Reader.WPM, minWPM, maxWPM)
	}
	switch strings.ToLower(c.Reader.Mode) {
	case "", "word", "sentence", "page":
	default:
		return fmt.Errorf("unknown reader.mode %q", c.Reader.Mode)
	}
	if c.Reader.DebounceDelay.Duration < 0 || c.Reader.SaveInterval.Duration < 0 || c.Reader.SaveTimeout.Duration < 0 {
		return errors.New("reader durations must not be negative")
	}
	if c.RecentLimit < 1 || c.RecentLimit > 50 {
		return fmt.Errorf("recent_limit %d outside 1-50", c.RecentLimit)
	}
	return nil
}

// Addr is the listen address for the API server.
func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

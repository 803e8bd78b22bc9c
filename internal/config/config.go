package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"kcal-cli/internal/calories"

	"gopkg.in/yaml.v3"
)

// Config is the user configuration, read from <ConfigDir>/config.yaml.
type Config struct {
	// Endpoint is the calorie calculation URL the form submits to.
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Timeout bounds one calculation request (e.g. "30s").
	Timeout string `json:"timeout" yaml:"timeout"`
	// StatusTTL is how long the status area stays up (e.g. "15s").
	StatusTTL string `json:"status_ttl" yaml:"status_ttl"`

	Server ServerConfig `json:"server" yaml:"server"`
}

type ServerConfig struct {
	Addr        string `json:"addr" yaml:"addr"`
	DBPath      string `json:"db_path" yaml:"db_path"`
	LookupURL   string `json:"lookup_url" yaml:"lookup_url"`
	AllowOrigin string `json:"allow_origin" yaml:"allow_origin"`
}

func Default() Config {
	return Config{
		Endpoint:  calories.DefaultEndpoint,
		Timeout:   "30s",
		StatusTTL: "15s",
		Server: ServerConfig{
			Addr:        "127.0.0.1:8080",
			AllowOrigin: "*",
		},
	}
}

// ConfigDir returns ~/.kcal unless KCAL_CONFIG_DIR overrides it.
func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.kcal).
	if v := strings.TrimSpace(os.Getenv("KCAL_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".kcal"), nil
}

func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads path (or the default path when empty) over the defaults.
// A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Default(), fmt.Errorf("parse %s: %w", path, err)
	}
	if _, err := cfg.RequestTimeout(); err != nil {
		return Default(), err
	}
	if _, err := cfg.StatusDuration(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Save writes cfg to path atomically, creating the directory if needed.
func Save(path string, cfg Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return atomicWriteFile(dir, "config-*.yaml.tmp", path, b, 0o644)
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func (c Config) RequestTimeout() (time.Duration, error) {
	return parseDuration("timeout", c.Timeout, 30*time.Second)
}

func (c Config) StatusDuration() (time.Duration, error) {
	return parseDuration("status_ttl", c.StatusTTL, 15*time.Second)
}

// DBPath returns the server database path, defaulting to <ConfigDir>/kcal.sqlite.
func (c Config) DBPath() (string, error) {
	if p := strings.TrimSpace(c.Server.DBPath); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "kcal.sqlite"), nil
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("config: invalid %s %q: %w", key, s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return d, nil
}

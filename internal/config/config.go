package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the runtime settings for larder.
type Config struct {
	APIURL          string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration // zero disables background refresh
	ExportDir       string
	LogFile         string
	LogLevel        string
}

const (
	defaultConfigPath      = "~/.config/larder/config.toml"
	defaultAPIURL          = "http://localhost:5000/api/food"
	defaultRequestTimeout  = 5 * time.Second
	defaultRefreshInterval = 30 * time.Second
	defaultExportDir       = "~"
	defaultLogFile         = "~/.local/state/larder/larder.log"
	defaultLogLevel        = "info"
)

// Environment variables that override the config file.
const (
	EnvAPIURL    = "LARDER_API_URL"
	EnvLogLevel  = "LARDER_LOG_LEVEL"
	EnvExportDir = "LARDER_EXPORT_DIR"
)

// dotenvPath is read relative to the working directory.
var dotenvPath = ".env"

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		RequestTimeout:  defaultRequestTimeout,
		RefreshInterval: defaultRefreshInterval,
		ExportDir:       mustExpand(defaultExportDir),
		LogFile:         mustExpand(defaultLogFile),
		LogLevel:        defaultLogLevel,
	}
}

// Load parses the config file at path, falling back to defaults when it is
// missing, then applies environment overrides. Variables set in the process
// environment win over those from .env.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	switch {
	case err == nil:
		defer file.Close()
		if err := cfg.decode(file); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("open config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	bytes, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL          string `toml:"api_url"`
		RequestTimeout  string `toml:"request_timeout"`
		RefreshInterval string `toml:"refresh_interval"`
		ExportDir       string `toml:"export_dir"`
		LogFile         string `toml:"log_file"`
		LogLevel        string `toml:"log_level"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		c.APIURL = v
	}
	if v := strings.TrimSpace(raw.RequestTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return fmt.Errorf("parse config: request_timeout %q must be a positive duration", v)
		}
		c.RequestTimeout = d
	}
	if v := strings.TrimSpace(raw.RefreshInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return fmt.Errorf("parse config: refresh_interval %q must be a duration >= 0", v)
		}
		c.RefreshInterval = d
	}
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		c.ExportDir = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		c.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return nil
}

func (c *Config) applyEnv() error {
	dotenv, err := godotenv.Read(dotenvPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read %s: %w", dotenvPath, err)
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return strings.TrimSpace(v)
		}
		return strings.TrimSpace(dotenv[key])
	}

	if v := lookup(EnvAPIURL); v != "" {
		c.APIURL = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := lookup(EnvExportDir); v != "" {
		c.ExportDir = mustExpand(v)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

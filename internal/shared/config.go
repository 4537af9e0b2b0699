package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that take precedence over the config file.
const (
	EnvBackendURL   = "SDOS_BACKEND_URL"
	EnvBackendToken = "SDOS_BACKEND_TOKEN"
	EnvLogLevel     = "SDOS_LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Backend  BackendConfig  `toml:"backend"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Playback PlaybackConfig `toml:"playback"`
	Render   RenderConfig   `toml:"render"`
	Database DatabaseConfig `toml:"database"`
	Log      LogConfig      `toml:"log"`
}

// BackendConfig points at the path-finding service.
type BackendConfig struct {
	BaseURL     string `toml:"base_url"`
	Token       string `toml:"token"`
	SearchLimit int    `toml:"search_limit"`
}

// CatalogConfig configures the public catalog used as the first media tier.
type CatalogConfig struct {
	BaseURL     string  `toml:"base_url"`
	Country     string  `toml:"country"`
	ArtworkSize int     `toml:"artwork_size"`
	RateLimit   float64 `toml:"rate_limit"`
	Burst       int     `toml:"burst"`
	Disabled    bool    `toml:"disabled"`
}

type PlaybackConfig struct {
	FrameIntervalMS int `toml:"frame_interval_ms"`
}

// FrameInterval returns the progress refresh interval.
func (p PlaybackConfig) FrameInterval() time.Duration {
	if p.FrameIntervalMS <= 0 {
		return 100 * time.Millisecond
	}
	return time.Duration(p.FrameIntervalMS) * time.Millisecond
}

// RenderConfig contains settings for building and revealing path cards.
type RenderConfig struct {
	RevealDelayMS        int    `toml:"reveal_delay_ms"`
	DefaultCover         string `toml:"default_cover"`
	MaxConcurrentLookups int    `toml:"max_concurrent_lookups"`
}

// RevealDelay returns the delay between revealing consecutive cards.
func (r RenderConfig) RevealDelay() time.Duration {
	if r.RevealDelayMS <= 0 {
		return 400 * time.Millisecond
	}
	return time.Duration(r.RevealDelayMS) * time.Millisecond
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// LogLevel parses the configured level, falling back to info.
func (l LogConfig) LogLevel() log.Level {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(l.Level)))
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the config at path, using [DefaultConfig] when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if err == nil {
		return config, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultConfig(), nil
	}
	return nil, err
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, fs.ErrExist)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads dotenv files (defaulting to .env) into the process environment.
// Missing files are ignored; existing variables are never overwritten.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, f, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from SDOS_* environment variables.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackendURL)); v != "" {
		c.Backend.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackendToken)); v != "" {
		c.Backend.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
}

// Validate reports configuration that cannot be used to talk to the backend.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Backend.BaseURL) == "" {
		return fmt.Errorf("%w: backend.base_url is required", ErrInvalidConfig)
	}
	if c.Catalog.ArtworkSize < 0 {
		return fmt.Errorf("%w: catalog.artwork_size must be positive", ErrInvalidConfig)
	}
	if c.Render.MaxConcurrentLookups < 0 {
		return fmt.Errorf("%w: render.max_concurrent_lookups must be positive", ErrInvalidConfig)
	}
	return nil
}

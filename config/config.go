package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Environment variable name for controlling statistics visibility
const ENV_DEV_MODE = "DEV_MODE"

// DefaultRelayURL is the public CORS relay used when no other is configured.
const DefaultRelayURL = "https://api.allorigins.win/get"

// Config holds all application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Fetch  FetchConfig  `yaml:"fetch"`
	Log    LogConfig    `yaml:"log"`

	// DataDir is where usage statistics are persisted.
	DataDir string `yaml:"dataDir"`

	// StatsRetainMonths is how many months of statistics are kept, counting
	// the current one.
	StatsRetainMonths int `yaml:"statsRetainMonths"` // default: 12

	// DevMode exposes the full statistics payload.
	DevMode bool `yaml:"devMode"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Port string `yaml:"port"` // default: "8082"
	Mode string `yaml:"mode"` // gin mode; default: "release"
}

// FetchConfig controls page retrieval.
type FetchConfig struct {
	// RelayURL is the relay endpoint; the target is passed as ?url=.
	RelayURL string `yaml:"relayUrl"`

	// Direct skips the relay and requests pages directly.
	Direct bool `yaml:"direct"`

	// Timeout bounds a single page retrieval.
	Timeout time.Duration `yaml:"timeout"` // default: 15s

	UserAgent string `yaml:"userAgent"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: "info"
	Format string `yaml:"format"` // "json" or "console"; default: "console"
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8082",
			Mode: "release",
		},
		Fetch: FetchConfig{
			RelayURL:  DefaultRelayURL,
			Timeout:   15 * time.Second,
			UserAgent: "SEOAnalyzer/1.0",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		DataDir:           "data",
		StatsRetainMonths: 12,
	}
}

// Load builds the configuration from .env files, an optional YAML file named
// by SEO_CONFIG_FILE, and finally the process environment.
func Load() (*Config, error) {
	loadEnv()

	cfg := Default()
	if path := os.Getenv("SEO_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func loadEnv() {
	// Try to load .env.development first (for local development)
	if err := godotenv.Load(".env.development"); err != nil {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("no .env file found, using environment variables")
		}
	}
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = envOr("PORT", c.Server.Port)
	c.Server.Mode = envOr("GIN_MODE", c.Server.Mode)
	c.Fetch.RelayURL = envOr("SEO_RELAY_URL", c.Fetch.RelayURL)
	c.Fetch.Direct = envBoolOr("SEO_DIRECT_FETCH", c.Fetch.Direct)
	c.Fetch.Timeout = envDurationOr("SEO_FETCH_TIMEOUT", c.Fetch.Timeout)
	c.Fetch.UserAgent = envOr("SEO_USER_AGENT", c.Fetch.UserAgent)
	c.Log.Level = envOr("SEO_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envOr("SEO_LOG_FORMAT", c.Log.Format)
	c.DataDir = envOr("SEO_DATA_DIR", c.DataDir)
	c.StatsRetainMonths = envIntOr("SEO_STATS_RETAIN_MONTHS", c.StatsRetainMonths)
	c.DevMode = envBoolOr(ENV_DEV_MODE, c.DevMode)
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

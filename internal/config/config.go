// Package config loads the gumby configuration: a YAML file chosen by
// environment, then connection overrides from GUMBY_* variables.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the connection settings.
const (
	EnvHosts    = "GUMBY_HOSTS"
	EnvUsername = "GUMBY_USERNAME"
	EnvPassword = "GUMBY_PASSWORD"
	EnvPrefix   = "GUMBY_PREFIX"
)

// Config holds the gumby configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Storage  StorageConfig  `yaml:"storage"`
	Factory  FactoryConfig  `yaml:"factory"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// DatabaseConfig holds search engine connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	CommandTimeout   int      `yaml:"command_timeout_sec"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// FactoryConfig sizes the synthetic data set.
type FactoryConfig struct {
	Individuals   int    `yaml:"individuals"`
	MinEncounters int    `yaml:"min_encounters"`
	MaxEncounters int    `yaml:"max_encounters"`
	Seed          uint64 `yaml:"seed"` // 0 = random
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// MetricsConfig holds the metrics listener settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty = disabled
}

// Load reads configuration by environment name (local, dev, prod). A
// missing file is not an error: defaults and environment overrides apply.
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from path; see Load.
func LoadFile(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(filepath.Clean(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	default:
		// Substitute env variables of the form ${VAR}
		data = expandEnvVars(data)
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv loads variables from .env files that exist; variables
// already set in the environment win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if fileExists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(existing, ","), err)
	}
	return nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyEnv overrides connection settings from GUMBY_* variables.
func (c *Config) ApplyEnv() {
	if hosts := os.Getenv(EnvHosts); hosts != "" {
		c.Database.Addrs = splitHosts(hosts)
	}
	if v, ok := os.LookupEnv(EnvUsername); ok {
		c.Database.Username = v
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		c.Database.Password = v
	}
	if v := os.Getenv(EnvPrefix); v != "" {
		c.Storage.KeyPrefix = v
	}
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if len(c.Database.Addrs) == 0 {
		c.Database.Addrs = []string{"localhost:6379"}
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.CommandTimeout <= 0 {
		c.Database.CommandTimeout = 300
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "gumby:"
	}
	if c.Factory.Individuals <= 0 {
		c.Factory.Individuals = 50
	}
	if c.Factory.MinEncounters <= 0 {
		c.Factory.MinEncounters = 1
	}
	if c.Factory.MaxEncounters <= 0 {
		c.Factory.MaxEncounters = 20
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if len(c.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	for _, addr := range c.Database.Addrs {
		if !strings.Contains(addr, ":") {
			return fmt.Errorf("database.addrs: %q must be host:port", addr)
		}
	}
	if c.Factory.MinEncounters > c.Factory.MaxEncounters {
		return fmt.Errorf("factory.min_encounters (%d) must not exceed factory.max_encounters (%d)",
			c.Factory.MinEncounters, c.Factory.MaxEncounters)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}

func splitHosts(s string) []string {
	var out []string
	for _, h := range strings.Split(s, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

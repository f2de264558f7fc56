// Package config loads tada settings from a YAML file with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Makepad-fr/tadakit/internal/validation"
	"gopkg.in/yaml.v3"
)

// EnvConfig points at a config file, overriding the search.
const EnvConfig = "TADA_CONFIG"

// Config file names searched in the working directory.
var localConfigFiles = []string{".tada.yaml", ".tada.yml"}

// Config holds application configuration
type Config struct {
	DataDir    string        `yaml:"data_dir" validate:"required"`
	UsersFile  string        `yaml:"users_file" validate:"required"`
	TodosFile  string        `yaml:"todos_file" validate:"required"`
	StateDir   string        `yaml:"state_dir" validate:"required"`
	Theme      string        `yaml:"theme" validate:"oneof=classic neon mono"`
	Debug      bool          `yaml:"debug"`
	SessionTTL time.Duration `yaml:"session_ttl" validate:"min=0"`

	// Source is the file the config was read from, empty for defaults.
	Source string `yaml:"-"`
}

// Default keeps users.json and todos.json in the
// working directory.
func Default() *Config {
	return &Config{
		DataDir:    ".",
		UsersFile:  "users.json",
		TodosFile:  "todos.json",
		StateDir:   defaultStateDir(),
		Theme:      "classic",
		SessionTTL: 24 * time.Hour,
	}
}

func defaultStateDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".tada"
	}
	return filepath.Join(home, ".tada")
}

// Load reads path when given, otherwise searches TADA_CONFIG, the working
// directory and ~/.config/tada/config.yaml. A missing config is not an
// error unless path was explicit.
func Load(path string) (*Config, error) {
	cfg := Default()

	src, err := locate(path)
	if err != nil {
		return nil, err
	}
	if src != "" {
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", src, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", src, err)
		}
		cfg.Source = src
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the field rules; callers that override fields after
// Load run it again.
func (c *Config) Validate() error {
	if err := validation.Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

func locate(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file: %w", err)
		}
		return path, nil
	}
	if p := os.Getenv(EnvConfig); p != "" {
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("%s: %w", EnvConfig, err)
		}
		return p, nil
	}
	for _, name := range localConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, ".config", "tada", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("config file: %w", err)
		}
	}
	return "", nil
}

func applyEnv(cfg *Config) {
	cfg.DataDir = getEnv("TADA_DATA_DIR", cfg.DataDir)
	cfg.StateDir = getEnv("TADA_STATE_DIR", cfg.StateDir)
	cfg.Theme = getEnv("TADA_THEME", cfg.Theme)
	cfg.Debug = getEnvBool("TADA_DEBUG", cfg.Debug)
	cfg.SessionTTL = getEnvDuration("TADA_SESSION_TTL", cfg.SessionTTL)
}

// UsersPath is the users file, relative to DataDir unless absolute.
func (c *Config) UsersPath() string { return c.resolve(c.UsersFile) }

// TodosPath is the todos file, relative to DataDir unless absolute.
func (c *Config) TodosPath() string { return c.resolve(c.TodosFile) }

func (c *Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.DataDir, name)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

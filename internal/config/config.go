// Package config provides unified configuration loading for neuropath.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/network"
)

// NeuropathConfig contains all neuropath configuration settings.
type NeuropathConfig struct {
	// Network contains the numeric parameters of the decision network.
	Network NetworkConfig `json:"network" yaml:"network"`

	// Logging contains settings for operational and decision logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Store contains settings for persistence.
	Store StoreConfig `json:"store" yaml:"store"`

	// Server contains settings for `neuropath serve`.
	Server ServerConfig `json:"server" yaml:"server"`

	// Backup contains settings for backup retention.
	Backup BackupConfig `json:"backup" yaml:"backup"`
}

// NetworkConfig holds the reinforcement parameters.
type NetworkConfig struct {
	// DefaultStrength is the weight of a connection created without an explicit weight.
	DefaultStrength float64 `json:"default_strength" yaml:"default_strength"`

	// LearningRate is the Hebbian reinforcement step. Range: 0.0 to 1.0
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// DecayRate is subtracted from every weight per decay run. Range: 0.0 to 1.0
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
}

// ToNetwork converts the settings into a network.Config.
func (c NetworkConfig) ToNetwork() network.Config {
	return network.Config{
		DefaultStrength: c.DefaultStrength,
		LearningRate:    c.LearningRate,
		DecayRate:       c.DecayRate,
	}
}

// LoggingConfig configures neuropath's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .neuropath/decisions.jsonl.
	// "trace" additionally logs every edge relaxation during path search.
	Level string `json:"level" yaml:"level"`
}

// StoreConfig configures persistence.
type StoreConfig struct {
	// HistoryLimit is the default number of searches shown by `neuropath history`.
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`

	// RecordSearches controls whether path searches are written to history.
	RecordSearches bool `json:"record_searches" yaml:"record_searches"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	// Addr is the listen address, e.g. "127.0.0.1:8741".
	Addr string `json:"addr" yaml:"addr"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`

	// Persist saves the graph after every mutating request.
	Persist bool `json:"persist" yaml:"persist"`

	// RateLimit is the number of mutating requests per second each client
	// may make. 0 disables rate limiting.
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"`

	// RateBurst is the number of mutating requests a client may make at once.
	RateBurst int `json:"rate_burst" yaml:"rate_burst"`
}

// BackupConfig configures which backups `neuropath backup` keeps.
// A backup is kept if any configured rule keeps it.
type BackupConfig struct {
	// MaxCount keeps the N most recent backups. Default: 10
	MaxCount int `json:"max_count" yaml:"max_count"`

	// MaxAge keeps backups younger than this, e.g. "30d", "2w", "720h".
	MaxAge string `json:"max_age,omitempty" yaml:"max_age,omitempty"`
}

// Default returns a NeuropathConfig with sensible defaults.
func Default() *NeuropathConfig {
	return &NeuropathConfig{
		Network: NetworkConfig{
			DefaultStrength: constants.DefaultInitialStrength,
			LearningRate:    constants.DefaultLearningRate,
			DecayRate:       constants.DefaultDecayRate,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Store: StoreConfig{
			HistoryLimit:   constants.DefaultHistoryLimit,
			RecordSearches: true,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8741",
			ShutdownTimeout: 5 * time.Second,
			Persist:         true,
			RateLimit:       10,
			RateBurst:       20,
		},
		Backup: BackupConfig{
			MaxCount: 10,
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.neuropath/config.yaml -> environment variables
func Load() (*NeuropathConfig, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, constants.DirName, constants.ConfigFile)
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys missing from the file keep their defaults.
func LoadFromFile(path string) (*NeuropathConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	config.Server.Addr = expandEnvVars(config.Server.Addr)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *NeuropathConfig) Validate() error {
	if err := c.Network.ToNetwork().Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	if c.Store.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must be non-negative, got %d", c.Store.HistoryLimit)
	}

	if c.Server.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown_timeout must be non-negative, got %v", c.Server.ShutdownTimeout)
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("rate_limit must be non-negative, got %v", c.Server.RateLimit)
	}

	if c.Backup.MaxCount < 0 {
		return fmt.Errorf("backup max_count must be non-negative, got %d", c.Backup.MaxCount)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Unparseable numbers are ignored.
func applyEnvOverrides(config *NeuropathConfig) {
	if v := os.Getenv("NEUROPATH_DEFAULT_STRENGTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Network.DefaultStrength = f
		}
	}

	if v := os.Getenv("NEUROPATH_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Network.LearningRate = f
		}
	}

	if v := os.Getenv("NEUROPATH_DECAY_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Network.DecayRate = f
		}
	}

	if v := os.Getenv("NEUROPATH_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("NEUROPATH_SERVER_ADDR"); v != "" {
		config.Server.Addr = v
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

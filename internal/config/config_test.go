package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nvandessel/neuropath/internal/network"
)

func TestDefault(t *testing.T) {
	config := Default()

	// Network defaults
	if config.Network.DefaultStrength != 0.5 {
		t.Errorf("expected DefaultStrength 0.5, got %f", config.Network.DefaultStrength)
	}
	if config.Network.LearningRate != 0.2 {
		t.Errorf("expected LearningRate 0.2, got %f", config.Network.LearningRate)
	}
	if config.Network.DecayRate != 0.05 {
		t.Errorf("expected DecayRate 0.05, got %f", config.Network.DecayRate)
	}

	// Logging defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}

	// Store defaults
	if config.Store.HistoryLimit != 20 {
		t.Errorf("expected HistoryLimit 20, got %d", config.Store.HistoryLimit)
	}
	if !config.Store.RecordSearches {
		t.Error("expected RecordSearches to be true by default")
	}

	// Server defaults
	if config.Server.Addr != "127.0.0.1:8741" {
		t.Errorf("expected Addr '127.0.0.1:8741', got '%s'", config.Server.Addr)
	}
	if config.Server.ShutdownTimeout != 5*time.Second {
		t.Errorf("expected ShutdownTimeout 5s, got %v", config.Server.ShutdownTimeout)
	}
	if config.Server.RateLimit != 10 || config.Server.RateBurst != 20 {
		t.Errorf("expected rate limit 10/20, got %v/%d", config.Server.RateLimit, config.Server.RateBurst)
	}

	// Backup defaults
	if config.Backup.MaxCount != 10 {
		t.Errorf("expected Backup.MaxCount 10, got %d", config.Backup.MaxCount)
	}
	if config.Backup.MaxAge != "" {
		t.Errorf("expected empty Backup.MaxAge, got %q", config.Backup.MaxAge)
	}
}

func TestNetworkConfig_ToNetwork(t *testing.T) {
	got := Default().Network.ToNetwork()
	if got != network.DefaultConfig() {
		t.Errorf("ToNetwork() = %+v, want %+v", got, network.DefaultConfig())
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
network:
  default_strength: 0.25
  learning_rate: 0.3
  decay_rate: 0.1

store:
  history_limit: 5
  record_searches: false

server:
  addr: ":9000"
  shutdown_timeout: 10s

backup:
  max_count: 3
  max_age: 2w
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Network.DefaultStrength != 0.25 {
		t.Errorf("expected DefaultStrength 0.25, got %f", config.Network.DefaultStrength)
	}
	if config.Network.LearningRate != 0.3 {
		t.Errorf("expected LearningRate 0.3, got %f", config.Network.LearningRate)
	}
	if config.Network.DecayRate != 0.1 {
		t.Errorf("expected DecayRate 0.1, got %f", config.Network.DecayRate)
	}
	if config.Store.HistoryLimit != 5 {
		t.Errorf("expected HistoryLimit 5, got %d", config.Store.HistoryLimit)
	}
	if config.Store.RecordSearches {
		t.Error("expected RecordSearches to be false")
	}
	if config.Server.Addr != ":9000" {
		t.Errorf("expected Addr ':9000', got '%s'", config.Server.Addr)
	}
	if config.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("expected ShutdownTimeout 10s, got %v", config.Server.ShutdownTimeout)
	}
	if config.Backup.MaxCount != 3 || config.Backup.MaxAge != "2w" {
		t.Errorf("expected backup 3/2w, got %d/%q", config.Backup.MaxCount, config.Backup.MaxAge)
	}
	// Untouched sections keep their defaults
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  addr: ${TEST_NEUROPATH_ADDR}
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("TEST_NEUROPATH_ADDR", "0.0.0.0:9999")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Server.Addr != "0.0.0.0:9999" {
		t.Errorf("expected Addr '0.0.0.0:9999', got '%s'", config.Server.Addr)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("NEUROPATH_DEFAULT_STRENGTH", "0.4")
	t.Setenv("NEUROPATH_LEARNING_RATE", "0.5")
	t.Setenv("NEUROPATH_DECAY_RATE", "0.01")
	t.Setenv("NEUROPATH_SERVER_ADDR", "localhost:1234")

	config := Default()
	applyEnvOverrides(config)

	if config.Network.DefaultStrength != 0.4 {
		t.Errorf("expected DefaultStrength 0.4, got %f", config.Network.DefaultStrength)
	}
	if config.Network.LearningRate != 0.5 {
		t.Errorf("expected LearningRate 0.5, got %f", config.Network.LearningRate)
	}
	if config.Network.DecayRate != 0.01 {
		t.Errorf("expected DecayRate 0.01, got %f", config.Network.DecayRate)
	}
	if config.Server.Addr != "localhost:1234" {
		t.Errorf("expected Addr 'localhost:1234', got '%s'", config.Server.Addr)
	}
}

func TestEnvOverrides_IgnoresUnparseable(t *testing.T) {
	t.Setenv("NEUROPATH_LEARNING_RATE", "fast")

	config := Default()
	applyEnvOverrides(config)

	if config.Network.LearningRate != 0.2 {
		t.Errorf("expected LearningRate to stay 0.2, got %f", config.Network.LearningRate)
	}
}

func TestEnvOverrides_LogLevel(t *testing.T) {
	origLogLevel := os.Getenv("NEUROPATH_LOG_LEVEL")
	defer os.Setenv("NEUROPATH_LOG_LEVEL", origLogLevel)

	os.Setenv("NEUROPATH_LOG_LEVEL", "debug")

	config := Default()
	applyEnvOverrides(config)

	if config.Logging.Level != "debug" {
		t.Errorf("expected Logging.Level 'debug', got '%s'", config.Logging.Level)
	}
}

func TestLoad_ReadsHomeConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("NEUROPATH_DECAY_RATE", "")

	dir := filepath.Join(home, ".neuropath")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("network:\n  decay_rate: 0.2\n"), 0600); err != nil {
		t.Fatal(err)
	}

	config, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Network.DecayRate != 0.2 {
		t.Errorf("expected DecayRate 0.2, got %f", config.Network.DecayRate)
	}
	if config.Network.LearningRate != 0.2 {
		t.Errorf("expected LearningRate default 0.2, got %f", config.Network.LearningRate)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_InvalidNetwork(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NeuropathConfig)
	}{
		{"negative strength", func(c *NeuropathConfig) { c.Network.DefaultStrength = -0.1 }},
		{"learning rate above one", func(c *NeuropathConfig) { c.Network.LearningRate = 1.1 }},
		{"negative decay", func(c *NeuropathConfig) { c.Network.DecayRate = -0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			err := config.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, network.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestValidate_InvalidStoreAndServer(t *testing.T) {
	config := Default()
	config.Store.HistoryLimit = -1
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for negative history limit")
	}

	config = Default()
	config.Server.ShutdownTimeout = -time.Second
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for negative shutdown timeout")
	}

	config = Default()
	config.Server.RateLimit = -1
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for negative rate limit")
	}

	config = Default()
	config.Backup.MaxCount = -3
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for negative backup max_count")
	}
}

func TestLoadFromFile_LoggingConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
logging:
  level: trace
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Logging.Level != "trace" {
		t.Errorf("expected Logging.Level 'trace', got '%s'", config.Logging.Level)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	config := Default()
	config.Logging.Level = "verbose"
	if err := config.Validate(); err == nil {
		t.Error("expected validation error for invalid log level")
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
network:
  learning_rate: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

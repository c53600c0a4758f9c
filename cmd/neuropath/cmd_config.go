package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neuropath/internal/backup"
	"github.com/nvandessel/neuropath/internal/config"
	"github.com/nvandessel/neuropath/internal/constants"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage neuropath configuration",
		Long: `View and modify neuropath configuration settings.

Configuration is stored in ~/.neuropath/config.yaml. NEUROPATH_* environment
variables override the file.

Examples:
  neuropath config list
  neuropath config get network.learning_rate
  neuropath config set network.decay_rate 0.1`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(cfg)
			}

			fmt.Fprintln(out, "Configuration (~/.neuropath/config.yaml):")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Network Settings:")
			fmt.Fprintf(out, "  network.default_strength:  %.4f\n", cfg.Network.DefaultStrength)
			fmt.Fprintf(out, "  network.learning_rate:     %.4f\n", cfg.Network.LearningRate)
			fmt.Fprintf(out, "  network.decay_rate:        %.4f\n", cfg.Network.DecayRate)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Logging Settings:")
			fmt.Fprintf(out, "  logging.level:             %s\n", valueOrDefault(cfg.Logging.Level, "info"))
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Store Settings:")
			fmt.Fprintf(out, "  store.history_limit:       %d\n", cfg.Store.HistoryLimit)
			fmt.Fprintf(out, "  store.record_searches:     %v\n", cfg.Store.RecordSearches)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Server Settings:")
			fmt.Fprintf(out, "  server.addr:               %s\n", cfg.Server.Addr)
			fmt.Fprintf(out, "  server.shutdown_timeout:   %v\n", cfg.Server.ShutdownTimeout)
			fmt.Fprintf(out, "  server.persist:            %v\n", cfg.Server.Persist)
			fmt.Fprintf(out, "  server.rate_limit:         %v\n", cfg.Server.RateLimit)
			fmt.Fprintf(out, "  server.rate_burst:         %d\n", cfg.Server.RateBurst)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Backup Settings:")
			fmt.Fprintf(out, "  backup.max_count:          %d\n", cfg.Backup.MaxCount)
			fmt.Fprintf(out, "  backup.max_age:            %s\n", valueOrDefault(cfg.Backup.MaxAge, "(none)"))

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}

			if err := saveConfig(cfg); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", key, value)
			return nil
		},
	}
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.NeuropathConfig, key string) (interface{}, bool) {
	switch key {
	case "network.default_strength":
		return cfg.Network.DefaultStrength, true
	case "network.learning_rate":
		return cfg.Network.LearningRate, true
	case "network.decay_rate":
		return cfg.Network.DecayRate, true
	case "logging.level":
		return cfg.Logging.Level, true
	case "store.history_limit":
		return cfg.Store.HistoryLimit, true
	case "store.record_searches":
		return cfg.Store.RecordSearches, true
	case "server.addr":
		return cfg.Server.Addr, true
	case "server.shutdown_timeout":
		return cfg.Server.ShutdownTimeout.String(), true
	case "server.persist":
		return cfg.Server.Persist, true
	case "server.rate_limit":
		return cfg.Server.RateLimit, true
	case "server.rate_burst":
		return cfg.Server.RateBurst, true
	case "backup.max_count":
		return cfg.Backup.MaxCount, true
	case "backup.max_age":
		return cfg.Backup.MaxAge, true
	default:
		return nil, false
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.NeuropathConfig, key, value string) error {
	parseFloat := func() (float64, error) {
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid number for %s: %s", key, value)
		}
		return f, nil
	}

	switch key {
	case "network.default_strength":
		f, err := parseFloat()
		if err != nil {
			return err
		}
		cfg.Network.DefaultStrength = f
	case "network.learning_rate":
		f, err := parseFloat()
		if err != nil {
			return err
		}
		cfg.Network.LearningRate = f
	case "network.decay_rate":
		f, err := parseFloat()
		if err != nil {
			return err
		}
		cfg.Network.DecayRate = f
	case "logging.level":
		cfg.Logging.Level = value
	case "store.history_limit":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Store.HistoryLimit = n
	case "store.record_searches":
		cfg.Store.RecordSearches = value == "true" || value == "1"
	case "server.addr":
		cfg.Server.Addr = value
	case "server.shutdown_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %s", value)
		}
		cfg.Server.ShutdownTimeout = d
	case "server.persist":
		cfg.Server.Persist = value == "true" || value == "1"
	case "server.rate_limit":
		f, err := parseFloat()
		if err != nil {
			return err
		}
		cfg.Server.RateLimit = f
	case "server.rate_burst":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Server.RateBurst = n
	case "backup.max_count":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Backup.MaxCount = n
	case "backup.max_age":
		if value != "" {
			if _, err := backup.ParseDuration(value); err != nil {
				return err
			}
		}
		cfg.Backup.MaxAge = value
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return nil
}

// saveConfig writes the configuration to ~/.neuropath/config.yaml.
func saveConfig(cfg *config.NeuropathConfig) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	dir := filepath.Join(homeDir, constants.DirName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", constants.DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, constants.ConfigFile), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// valueOrDefault returns the value if non-empty, otherwise the default.
func valueOrDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nvandessel/neuropath/internal/config"
	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/logging"
	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/store"
)

// workspace is an opened network: configuration, store, and the graph
// loaded from it.
type workspace struct {
	cfg       *config.NeuropathConfig
	dir       string
	store     *store.SQLiteGraphStore
	graph     *network.Graph
	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// scopeFromFlags returns the scope selected by --global.
func scopeFromFlags(cmd *cobra.Command) constants.Scope {
	global, _ := cmd.Flags().GetBool("global")
	if global {
		return constants.ScopeGlobal
	}
	return constants.ScopeLocal
}

// dataDir resolves the .neuropath directory selected by --root and --global.
func dataDir(cmd *cobra.Command) (string, error) {
	root, _ := cmd.Flags().GetString("root")
	return store.ScopePath(scopeFromFlags(cmd), root)
}

// loadConfig loads and validates the effective configuration.
func loadConfig() (*config.NeuropathConfig, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openWorkspace opens the initialized network for the command's scope.
func openWorkspace(ctx context.Context, cmd *cobra.Command) (*workspace, error) {
	dir, err := dataDir(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if scopeFromFlags(cmd) == constants.ScopeGlobal {
			return nil, fmt.Errorf("global %s not initialized. Run 'neuropath init --global' first", constants.DirName)
		}
		return nil, fmt.Errorf("%s not initialized. Run 'neuropath init' first", constants.DirName)
	}

	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
	decisions := logging.NewDecisionLogger(dir, cfg.Logging.Level)

	gs, err := store.NewSQLiteGraphStore(dir)
	if err != nil {
		decisions.Close()
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	g, err := store.LoadGraph(ctx, gs, cfg.Network.ToNetwork())
	if err != nil {
		gs.Close()
		decisions.Close()
		return nil, err
	}
	g.SetLogger(logger, decisions)

	return &workspace{
		cfg:       cfg,
		dir:       dir,
		store:     gs,
		graph:     g,
		logger:    logger,
		decisions: decisions,
	}, nil
}

// save persists the graph.
func (w *workspace) save(ctx context.Context) error {
	return store.SaveGraph(ctx, w.store, w.graph)
}

// Close releases the store and decision log.
func (w *workspace) Close() error {
	w.decisions.Close()
	return w.store.Close()
}

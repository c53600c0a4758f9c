package store

import (
	"context"
	"fmt"

	"github.com/nvandessel/neuropath/internal/network"
)

// LoadGraph loads the stored network into a new graph built with cfg.
func LoadGraph(ctx context.Context, gs GraphStore, cfg network.Config) (*network.Graph, error) {
	snap, err := gs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load network: %w", err)
	}
	g, err := network.FromSnapshot(cfg, snap)
	if err != nil {
		return nil, fmt.Errorf("rebuild network: %w", err)
	}
	return g, nil
}

// SaveGraph persists the graph's current state.
func SaveGraph(ctx context.Context, gs GraphStore, g *network.Graph) error {
	if err := gs.Save(ctx, g.Snapshot()); err != nil {
		return fmt.Errorf("save network: %w", err)
	}
	return nil
}

// Package backup writes decision network snapshots to checksummed,
// compressed files and restores them into a store.
package backup

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nvandessel/neuropath/internal/constants"
	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/store"
)

const (
	filePrefix = "neuropath-backup-"
	fileExt    = ".json.gz"
)

// DefaultDir returns the backups directory inside a .neuropath directory.
func DefaultDir(dataDir string) string {
	return filepath.Join(dataDir, constants.BackupDir)
}

// GeneratePath returns a timestamped backup filename in dir. Names sort in
// creation order.
func GeneratePath(dir string) string {
	ts := time.Now().UTC().Format("20060102-150405.000000")
	return filepath.Join(dir, filePrefix+ts+fileExt)
}

// Backup writes the stored network to path.
func Backup(ctx context.Context, gs store.GraphStore, path string) (*Header, error) {
	snap, err := gs.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load network: %w", err)
	}
	return Write(path, &File{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Network:   snap,
	})
}

// RestoreMode controls how a restore treats the network already stored.
type RestoreMode string

const (
	// RestoreMerge adds the backup's neurons and synapses that are missing,
	// keeping existing weights (default).
	RestoreMerge RestoreMode = "merge"
	// RestoreReplace discards the stored network in favor of the backup.
	RestoreReplace RestoreMode = "replace"
)

// ParseRestoreMode validates a mode name. Empty means merge.
func ParseRestoreMode(s string) (RestoreMode, error) {
	switch RestoreMode(s) {
	case "", RestoreMerge:
		return RestoreMerge, nil
	case RestoreReplace:
		return RestoreReplace, nil
	default:
		return "", fmt.Errorf("%w: unknown restore mode %q (valid: merge, replace)", network.ErrInvalidArgument, s)
	}
}

// RestoreResult counts what a restore changed.
type RestoreResult struct {
	NeuronsRestored  int `json:"neurons_restored"`
	NeuronsSkipped   int `json:"neurons_skipped"`
	SynapsesRestored int `json:"synapses_restored"`
	SynapsesSkipped  int `json:"synapses_skipped"`
}

// Restore loads the backup at path into gs. The result is validated as a
// network built with cfg before anything is saved, so a bad backup leaves
// the store untouched.
func Restore(ctx context.Context, gs store.GraphStore, path string, mode RestoreMode, cfg network.Config) (*RestoreResult, error) {
	f, err := Read(path)
	if err != nil {
		return nil, err
	}
	if _, err := network.FromSnapshot(cfg, f.Network); err != nil {
		return nil, fmt.Errorf("invalid backup: %w", err)
	}

	result := &RestoreResult{}
	merged := f.Network

	switch mode {
	case RestoreReplace:
		result.NeuronsRestored = len(f.Network.Nodes)
		result.SynapsesRestored = len(f.Network.Edges)

	case RestoreMerge:
		current, err := gs.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load network: %w", err)
		}
		merged = mergeSnapshots(current, f.Network, result)

	default:
		return nil, fmt.Errorf("%w: unknown restore mode %q", network.ErrInvalidArgument, mode)
	}

	g, err := network.FromSnapshot(cfg, merged)
	if err != nil {
		return nil, fmt.Errorf("invalid merged network: %w", err)
	}
	if err := store.SaveGraph(ctx, gs, g); err != nil {
		return nil, err
	}
	return result, nil
}

// mergeSnapshots adds to current the neurons and synapses of incoming it
// lacks.
func mergeSnapshots(current, incoming network.Snapshot, result *RestoreResult) network.Snapshot {
	out := network.Snapshot{
		Nodes: append([]network.Node{}, current.Nodes...),
		Edges: append([]network.Edge{}, current.Edges...),
	}

	have := make(map[string]bool, len(current.Nodes))
	for _, n := range current.Nodes {
		have[n.Key] = true
	}
	for _, n := range incoming.Nodes {
		if have[n.Key] {
			result.NeuronsSkipped++
			continue
		}
		have[n.Key] = true
		out.Nodes = append(out.Nodes, n)
		result.NeuronsRestored++
	}

	for _, e := range incoming.Edges {
		if _, ok := current.Weight(e.A, e.B); ok {
			result.SynapsesSkipped++
			continue
		}
		out.Edges = append(out.Edges, e)
		result.SynapsesRestored++
	}
	return out
}

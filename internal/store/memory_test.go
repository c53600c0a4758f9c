package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/neuropath/internal/network"
)

func TestInMemoryGraphStore_SaveLoad(t *testing.T) {
	s := NewInMemoryGraphStore()
	ctx := context.Background()

	empty, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty.Nodes)

	snap := demoSnapshot()
	require.NoError(t, s.Save(ctx, snap))
	snap.Edges[0].Weight = 0.99

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, demoSnapshot(), got, "store must not alias the caller's slices")
}

func TestInMemoryGraphStore_SearchHistoryOrder(t *testing.T) {
	s := NewInMemoryGraphStore()
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	for i, end := range []string{"B", "C", "D"} {
		rec := NewSearchRecord(network.SearchResult{Start: "A", End: end}, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.RecordSearch(ctx, rec))
	}

	recs, err := s.ListSearches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "D", recs[0].End)
	assert.Equal(t, "C", recs[1].End)
}

func TestLoadGraph_SaveGraph(t *testing.T) {
	s := NewInMemoryGraphStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, demoSnapshot()))

	g, err := LoadGraph(ctx, s, network.DefaultConfig())
	require.NoError(t, err)

	path, ok := g.FindDecisionPath("Sensory Input", "Memory Recall")
	require.True(t, ok)
	assert.Equal(t, []string{"Sensory Input", "Attention", "Memory Recall"}, path)

	require.NoError(t, SaveGraph(ctx, s, g))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	w, _ := got.Weight("Sensory Input", "Attention")
	assert.InDelta(t, network.Reinforce(0.3, 0.2), w, 1e-12)
}

func TestLoadGraph_CorruptSnapshot(t *testing.T) {
	s := NewInMemoryGraphStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, network.Snapshot{
		Nodes: []network.Node{{Key: "A"}},
		Edges: []network.Edge{{A: "A", B: "missing", Weight: 0.1}},
	}))

	_, err := LoadGraph(ctx, s, network.DefaultConfig())
	assert.ErrorIs(t, err, network.ErrPreconditionFailed)
}

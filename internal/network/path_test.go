package network

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindDecisionPath_Chain(t *testing.T) {
	g := chain(t)
	before := g.Snapshot()

	path, ok := g.FindDecisionPath("A", "E")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, path)

	for _, e := range before.Edges {
		after, _ := g.Weight(e.A, e.B)
		assert.Greater(t, after, e.Weight, "%s-%s should be reinforced", e.A, e.B)
		assert.InDelta(t, Reinforce(e.Weight, 0.2), after, 1e-12)
	}
}

func TestFindDecisionPath_RepeatedSearchCompoundsReinforcement(t *testing.T) {
	g := chain(t)

	first, ok := g.FindDecisionPath("A", "E")
	require.True(t, ok)
	mid := g.Snapshot()

	second, ok := g.FindDecisionPath("A", "E")
	require.True(t, ok)
	assert.Equal(t, first, second)

	for _, e := range mid.Edges {
		after, _ := g.Weight(e.A, e.B)
		assert.InDelta(t, Reinforce(e.Weight, 0.2), after, 1e-12, "%s-%s", e.A, e.B)
	}
}

func TestFindDecisionPath_NoPath(t *testing.T) {
	g := chain(t, "F")
	before := g.Snapshot()

	path, ok := g.FindDecisionPath("A", "F")
	assert.False(t, ok)
	assert.Nil(t, path)
	assert.Equal(t, before, g.Snapshot())
}

func TestFindDecisionPath_MissingNodes(t *testing.T) {
	g := chain(t)
	before := g.Snapshot()

	for _, pair := range [][2]string{{"A", "Z"}, {"Z", "A"}, {"Y", "Z"}, {"Z", "Z"}} {
		path, ok := g.FindDecisionPath(pair[0], pair[1])
		assert.False(t, ok, "%v", pair)
		assert.Nil(t, path)
	}
	assert.Equal(t, before, g.Snapshot())
}

func TestFindDecisionPath_SameNode(t *testing.T) {
	g := chain(t, "F")
	before := g.Snapshot()

	path, ok := g.FindDecisionPath("F", "F")
	require.True(t, ok)
	assert.Equal(t, []string{"F"}, path)

	path, ok = g.FindDecisionPath("C", "C")
	require.True(t, ok)
	assert.Equal(t, []string{"C"}, path)
	assert.Equal(t, before, g.Snapshot(), "a one-element path has no synapses to reinforce")
}

func TestFindDecisionPath_MinimizesLiteralWeight(t *testing.T) {
	// Direct A-C is heavier than the detour through B, so the detour wins:
	// the search treats weight as cost, not as preference.
	g := New()
	for _, k := range []string{"A", "B", "C"} {
		require.NoError(t, g.AddNode(k))
	}
	require.NoError(t, g.AddConnection("A", "C", WithWeight(0.9)))
	require.NoError(t, g.AddConnection("A", "B", WithWeight(0.2)))
	require.NoError(t, g.AddConnection("B", "C", WithWeight(0.2)))

	path, ok := g.FindDecisionPath("A", "C")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C"}, path)

	w, _ := g.Weight("A", "C")
	assert.Equal(t, 0.9, w, "synapses off the path are untouched")
}

func TestFindDecisionPath_FeedbackShiftsRoute(t *testing.T) {
	// Two routes of nearly equal cost. Reinforcing the cheaper one makes it
	// the more expensive one, so the next search takes the other route.
	g := New()
	for _, k := range []string{"S", "X", "Y", "T"} {
		require.NoError(t, g.AddNode(k))
	}
	require.NoError(t, g.AddConnection("S", "X", WithWeight(0.10)))
	require.NoError(t, g.AddConnection("X", "T", WithWeight(0.10)))
	require.NoError(t, g.AddConnection("S", "Y", WithWeight(0.12)))
	require.NoError(t, g.AddConnection("Y", "T", WithWeight(0.12)))

	first, ok := g.FindDecisionPath("S", "T")
	require.True(t, ok)
	assert.Equal(t, []string{"S", "X", "T"}, first)

	second, ok := g.FindDecisionPath("S", "T")
	require.True(t, ok)
	assert.Equal(t, []string{"S", "Y", "T"}, second)
}

func TestFindDecisionPath_DeterministicTieBreak(t *testing.T) {
	build := func() *Graph {
		g := New()
		for _, k := range []string{"S", "M1", "M2", "T"} {
			require.NoError(t, g.AddNode(k))
		}
		require.NoError(t, g.AddConnection("S", "M2", WithWeight(0.2)))
		require.NoError(t, g.AddConnection("M2", "T", WithWeight(0.2)))
		require.NoError(t, g.AddConnection("S", "M1", WithWeight(0.2)))
		require.NoError(t, g.AddConnection("M1", "T", WithWeight(0.2)))
		return g
	}

	for i := 0; i < 20; i++ {
		path, ok := build().FindDecisionPath("S", "T")
		require.True(t, ok)
		assert.Equal(t, []string{"S", "M1", "T"}, path)
	}
}

func TestFindDecisionPath_ZeroWeightEdges(t *testing.T) {
	g := chain(t)
	for i := 0; i < 20; i++ {
		g.DecayConnections()
	}

	path, ok := g.FindDecisionPath("A", "E")
	require.True(t, ok)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, path)

	w, _ := g.Weight("A", "B")
	assert.InDelta(t, 0.2, w, 1e-12, "reinforcing a zero weight moves it by the learning rate")
}

func TestSearch_ReportsCostAndChanges(t *testing.T) {
	g := chain(t)

	res, err := g.Search(context.Background(), "A", "E")
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.InDelta(t, 1.5, res.Cost, 1e-12)
	require.Len(t, res.Reinforced, 4)
	assert.Equal(t, WeightChange{A: "A", B: "B", Before: 0.3, After: Reinforce(0.3, 0.2)}, res.Reinforced[0])
}

func TestFindDecisionPathContext_Cancelled(t *testing.T) {
	g := chain(t)
	before := g.Snapshot()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path, ok, err := g.FindDecisionPathContext(ctx, "A", "E")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Nil(t, path)
	assert.Equal(t, before, g.Snapshot())
}

func TestPathCost(t *testing.T) {
	g := chain(t)

	cost, ok := g.PathCost([]string{"A", "B", "C"})
	require.True(t, ok)
	assert.InDelta(t, 0.7, cost, 1e-12)

	_, ok = g.PathCost([]string{"A", "C"})
	assert.False(t, ok)
}

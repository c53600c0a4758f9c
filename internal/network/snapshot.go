package network

import "fmt"

// Snapshot returns a copy of the graph's nodes and edges. Mutating the
// snapshot does not affect the graph.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{Nodes: g.Nodes(), Edges: g.Edges()}
}

// FromSnapshot rebuilds a graph from a snapshot, preserving neuron
// activations. Every edge must reference neurons present in the snapshot.
func FromSnapshot(cfg Config, s Snapshot) (*Graph, error) {
	g, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	for _, n := range s.Nodes {
		if err := g.AddNode(n.Key); err != nil {
			return nil, fmt.Errorf("restore neuron: %w", err)
		}
		g.nodes[n.Key].Activation = n.Activation
	}
	for _, e := range s.Edges {
		if err := g.AddConnection(e.A, e.B, WithWeight(e.Weight)); err != nil {
			return nil, fmt.Errorf("restore synapse %s-%s: %w", e.A, e.B, err)
		}
	}
	return g, nil
}

// Restore replaces the graph's neurons and synapses with those of s, keeping
// its config and loggers. An invalid snapshot leaves the graph unchanged.
func (g *Graph) Restore(s Snapshot) error {
	rebuilt, err := FromSnapshot(g.cfg, s)
	if err != nil {
		return err
	}
	g.nodes = rebuilt.nodes
	g.adj = rebuilt.adj
	return nil
}

// Weight returns the weight of the synapse between a and b in the snapshot.
func (s Snapshot) Weight(a, b string) (float64, bool) {
	a, b = canonical(a, b)
	for _, e := range s.Edges {
		if e.A == a && e.B == b {
			return e.Weight, true
		}
	}
	return 0, false
}

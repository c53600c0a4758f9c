package network

// Node is a neuron in the network.
type Node struct {
	Key string `json:"key" yaml:"key"`
	// Activation is carried for compatibility with stored networks.
	// Nothing in the model reads or changes it.
	Activation float64 `json:"activation" yaml:"activation"`
}

// Edge is an undirected synapse. A and B are stored in canonical order (A < B).
type Edge struct {
	A      string  `json:"a" yaml:"a"`
	B      string  `json:"b" yaml:"b"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Snapshot is a read-only copy of a network's nodes and edges, sorted by key.
type Snapshot struct {
	Nodes []Node `json:"nodes" yaml:"nodes"`
	Edges []Edge `json:"edges" yaml:"edges"`
}

// WeightChange records one synapse update.
type WeightChange struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// SearchResult describes one decision path search.
type SearchResult struct {
	Start string   `json:"start"`
	End   string   `json:"end"`
	Path  []string `json:"path,omitempty"`
	Found bool     `json:"found"`
	// Cost is the summed weight of Path measured before reinforcement.
	Cost       float64        `json:"cost"`
	Reinforced []WeightChange `json:"reinforced,omitempty"`
}

// canonical orders a synapse's endpoints.
func canonical(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

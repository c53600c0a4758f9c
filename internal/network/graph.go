package network

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode"

	"github.com/nvandessel/neuropath/internal/logging"
)

// Graph is an adaptive decision network. The zero value is not usable; call
// New or NewWithConfig.
type Graph struct {
	cfg   Config
	nodes map[string]*Node
	// adj holds each synapse twice, once under each endpoint.
	adj map[string]map[string]float64

	logger    *slog.Logger
	decisions *logging.DecisionLogger
}

// New creates an empty graph with DefaultConfig.
func New() *Graph {
	g, _ := NewWithConfig(DefaultConfig())
	return g
}

// NewWithConfig creates an empty graph with the given parameters.
func NewWithConfig(cfg Config) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid network config: %w", err)
	}
	return &Graph{
		cfg:   cfg,
		nodes: make(map[string]*Node),
		adj:   make(map[string]map[string]float64),
	}, nil
}

// SetLogger sets the structured logger and decision logger for observability.
// Either may be nil.
func (g *Graph) SetLogger(logger *slog.Logger, decisions *logging.DecisionLogger) {
	g.logger = logger
	g.decisions = decisions
}

// Config returns the parameters the graph was built with.
func (g *Graph) Config() Config {
	return g.cfg
}

// AddNode inserts a neuron with activation 0. Adding a key that already
// exists is a no-op.
func (g *Graph) AddNode(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if _, exists := g.nodes[key]; exists {
		return nil
	}
	g.nodes[key] = &Node{Key: key}
	g.debug("neuron added", "key", key)
	return nil
}

// ConnectionOption customizes AddConnection.
type ConnectionOption func(*connectionOptions)

type connectionOptions struct {
	weight    float64
	hasWeight bool
}

// WithWeight sets the connection's weight instead of Config.DefaultStrength.
func WithWeight(w float64) ConnectionOption {
	return func(o *connectionOptions) {
		o.weight = w
		o.hasWeight = true
	}
}

// AddConnection creates or overwrites the synapse between key1 and key2.
//
// Both neurons must already exist (ErrPreconditionFailed). Self-loops and
// negative or non-finite weights are rejected with ErrInvalidArgument.
// On error the graph is unchanged.
func (g *Graph) AddConnection(key1, key2 string, opts ...ConnectionOption) error {
	o := connectionOptions{weight: g.cfg.DefaultStrength}
	for _, opt := range opts {
		opt(&o)
	}

	if key1 == key2 {
		return fmt.Errorf("%w: cannot connect %q to itself", ErrInvalidArgument, key1)
	}
	if !g.HasNode(key1) || !g.HasNode(key2) {
		return fmt.Errorf("%w: both endpoints must exist (%q, %q)", ErrPreconditionFailed, key1, key2)
	}
	if err := checkWeight(o.weight); err != nil {
		return err
	}

	g.setWeight(key1, key2, o.weight)
	g.debug("connection added", "a", key1, "b", key2, "weight", o.weight, "explicit", o.hasWeight)
	return nil
}

// StrengthenConnection applies one reinforcement step to the synapse between
// key1 and key2. It reports whether a synapse existed; a missing synapse is
// not an error, there is simply nothing to strengthen.
func (g *Graph) StrengthenConnection(key1, key2 string) bool {
	_, ok := g.strengthen(key1, key2)
	return ok
}

func (g *Graph) strengthen(key1, key2 string) (WeightChange, bool) {
	before, ok := g.Weight(key1, key2)
	if !ok {
		return WeightChange{}, false
	}
	after := Reinforce(before, g.cfg.LearningRate)
	g.setWeight(key1, key2, after)

	a, b := canonical(key1, key2)
	change := WeightChange{A: a, B: b, Before: before, After: after}
	g.debug("connection strengthened", "a", a, "b", b, "before", before, "after", after)
	g.decisions.Log(logging.Decision{
		Event:  logging.DecisionReinforce,
		Change: &logging.WeightTrace{A: a, B: b, Before: before, After: after},
	})
	return change, true
}

// DecayConnections weakens every synapse by Config.DecayRate.
func (g *Graph) DecayConnections() {
	g.decay(g.cfg.DecayRate)
}

// DecayConnectionsBy weakens every synapse by rate. A rate outside [0, 1] is
// ErrInvalidArgument and leaves the graph unchanged.
func (g *Graph) DecayConnectionsBy(rate float64) error {
	if err := checkRate(rate); err != nil {
		return err
	}
	g.decay(rate)
	return nil
}

func (g *Graph) decay(rate float64) {
	edges := 0
	for a, neighbors := range g.adj {
		for b, w := range neighbors {
			neighbors[b] = Decay(w, rate)
			if a < b {
				edges++
			}
		}
	}
	g.debug("connections decayed", "rate", rate, "edges", edges)
	g.decisions.Log(logging.Decision{
		Event: logging.DecisionDecay,
		Decay: &logging.DecayTrace{Rate: rate, Edges: edges},
	})
}

// HasNode reports whether key is a neuron in the graph.
func (g *Graph) HasNode(key string) bool {
	_, ok := g.nodes[key]
	return ok
}

// Weight returns the weight of the synapse between key1 and key2.
func (g *Graph) Weight(key1, key2 string) (float64, bool) {
	w, ok := g.adj[key1][key2]
	return w, ok
}

// NodeCount returns the number of neurons.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of synapses.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, neighbors := range g.adj {
		n += len(neighbors)
	}
	return n / 2
}

// Nodes returns a copy of every neuron, sorted by key.
func (g *Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Edges returns a copy of every synapse in canonical order, sorted by (A, B).
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.EdgeCount())
	for a, neighbors := range g.adj {
		for b, w := range neighbors {
			if a < b {
				out = append(out, Edge{A: a, B: b, Weight: w})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// neighbors returns the keys adjacent to key in sorted order.
func (g *Graph) neighbors(key string) []string {
	out := make([]string, 0, len(g.adj[key]))
	for k := range g.adj[key] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (g *Graph) setWeight(key1, key2 string, w float64) {
	if g.adj[key1] == nil {
		g.adj[key1] = make(map[string]float64)
	}
	if g.adj[key2] == nil {
		g.adj[key2] = make(map[string]float64)
	}
	g.adj[key1][key2] = w
	g.adj[key2][key1] = w
}

func (g *Graph) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}

// ValidateKey reports whether key can name a neuron. Empty or blank keys and
// keys containing control characters are ErrInvalidArgument.
func ValidateKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: neuron key must be a non-empty string", ErrInvalidArgument)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: neuron key %q contains control characters", ErrInvalidArgument, key)
		}
	}
	return nil
}

package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nvandessel/neuropath/internal/logging"
	"github.com/nvandessel/neuropath/internal/metrics"
	"github.com/nvandessel/neuropath/internal/network"
	"github.com/nvandessel/neuropath/internal/store"
)

// StepResult captures the outcome of a single step execution.
type StepResult struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	Label  string `json:"label,omitempty"`

	// Search is set for path steps.
	Search *network.SearchResult `json:"search,omitempty"`

	// Strengthened reports whether a strengthen step found its synapse.
	Strengthened bool `json:"strengthened,omitempty"`

	// Weights maps EdgeKey to weight after the step.
	Weights map[string]float64 `json:"weights"`
}

// Result captures every step and the final network.
type Result struct {
	Name    string           `json:"name"`
	Config  network.Config   `json:"config"`
	Initial network.Snapshot `json:"initial"`
	Steps   []StepResult     `json:"steps"`
	Final   network.Snapshot `json:"final"`
}

// EdgeKey builds the canonical map key for an undirected synapse.
func EdgeKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "--" + b
}

// Runner executes scenarios against fresh in-memory graphs.
type Runner struct {
	base      network.Config
	logger    *slog.Logger
	decisions *logging.DecisionLogger
	metrics   *metrics.Collector
	history   store.GraphStore
}

// NewRunner creates a runner whose graphs start from base.
func NewRunner(base network.Config) *Runner {
	return &Runner{base: base, logger: logging.Discard()}
}

// SetLogger sets the structured logger and decision logger passed to every graph.
func (r *Runner) SetLogger(logger *slog.Logger, decisions *logging.DecisionLogger) {
	if logger == nil {
		logger = logging.Discard()
	}
	r.logger = logger
	r.decisions = decisions
}

// SetMetrics records step activity on c.
func (r *Runner) SetMetrics(c *metrics.Collector) {
	r.metrics = c
}

// SetHistory records every path search in gs and saves the final network to it.
func (r *Runner) SetHistory(gs store.GraphStore) {
	r.history = gs
}

// Run executes the scenario. It stops at the first failing step; the
// returned error wraps the network error so callers can test it with errors.Is.
func (r *Runner) Run(ctx context.Context, sc Scenario) (Result, error) {
	if err := sc.Validate(); err != nil {
		return Result{}, err
	}

	cfg := sc.Network.Apply(r.base)
	g, err := network.NewWithConfig(cfg)
	if err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}
	g.SetLogger(r.logger, r.decisions)

	// Phase 1: Seed the graph with neurons and connections.
	if err := seedGraph(g, sc); err != nil {
		return Result{}, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	res := Result{
		Name:    sc.Name,
		Config:  cfg,
		Initial: g.Snapshot(),
	}
	r.logger.Info("simulation started", "scenario", sc.Name, "neurons", g.NodeCount(), "synapses", g.EdgeCount(), "steps", len(sc.Steps))

	// Phase 2: Run steps.
	index := 0
	for i, st := range sc.Steps {
		times := st.Repeat
		if times == 0 {
			times = 1
		}
		for n := 0; n < times; n++ {
			sr, err := r.runStep(ctx, g, index, st)
			if err != nil {
				return res, fmt.Errorf("scenario %q step %d (%s): %w", sc.Name, i, st.Action, err)
			}
			res.Steps = append(res.Steps, sr)
			index++
		}
	}

	res.Final = g.Snapshot()
	if r.metrics != nil {
		r.metrics.SetSize(g.NodeCount(), g.EdgeCount())
	}
	if r.history != nil {
		if err := store.SaveGraph(ctx, r.history, g); err != nil {
			return res, err
		}
	}
	r.logger.Info("simulation finished", "scenario", sc.Name, "steps", len(res.Steps))
	return res, nil
}

func seedGraph(g *network.Graph, sc Scenario) error {
	for _, key := range sc.Neurons {
		if err := g.AddNode(key); err != nil {
			return err
		}
	}
	for _, c := range sc.Connections {
		var opts []network.ConnectionOption
		if c.Weight != nil {
			opts = append(opts, network.WithWeight(*c.Weight))
		}
		if err := g.AddConnection(c.A, c.B, opts...); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runStep(ctx context.Context, g *network.Graph, index int, st Step) (StepResult, error) {
	sr := StepResult{Index: index, Action: st.Action, Label: st.Label}

	switch st.Action {
	case ActionPath:
		search, err := g.Search(ctx, st.Start, st.End)
		if err != nil {
			if r.metrics != nil {
				r.metrics.ObserveSearchError()
			}
			return sr, err
		}
		sr.Search = &search
		if r.metrics != nil {
			r.metrics.ObserveSearch(search)
		}
		if r.history != nil {
			if err := r.history.RecordSearch(ctx, store.NewSearchRecord(search, time.Now())); err != nil {
				return sr, err
			}
		}
		r.logger.Debug("simulation step", "index", index, "action", st.Action, "found", search.Found, "path", search.Path)

	case ActionStrengthen:
		sr.Strengthened = g.StrengthenConnection(st.A, st.B)
		if sr.Strengthened && r.metrics != nil {
			r.metrics.ObserveReinforcement()
		}
		r.logger.Debug("simulation step", "index", index, "action", st.Action, "a", st.A, "b", st.B, "strengthened", sr.Strengthened)

	case ActionDecay:
		if st.Rate != nil {
			if err := g.DecayConnectionsBy(*st.Rate); err != nil {
				return sr, err
			}
		} else {
			g.DecayConnections()
		}
		if r.metrics != nil {
			r.metrics.ObserveDecay()
		}
		r.logger.Debug("simulation step", "index", index, "action", st.Action)
	}

	sr.Weights = weights(g)
	return sr, nil
}

func weights(g *network.Graph) map[string]float64 {
	out := make(map[string]float64, g.EdgeCount())
	for _, e := range g.Edges() {
		out[EdgeKey(e.A, e.B)] = e.Weight
	}
	return out
}

// WeightAfter returns the weight of a-b after the given step.
func (r Result) WeightAfter(step int, a, b string) (float64, bool) {
	if step < 0 || step >= len(r.Steps) {
		return 0, false
	}
	w, ok := r.Steps[step].Weights[EdgeKey(a, b)]
	return w, ok
}

// PathAt returns the path found by the given step, or nil when the step was
// not a successful search.
func (r Result) PathAt(step int) []string {
	if step < 0 || step >= len(r.Steps) || r.Steps[step].Search == nil {
		return nil
	}
	return r.Steps[step].Search.Path
}

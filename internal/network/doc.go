// Package network models an adaptive decision network: neurons joined by
// undirected weighted synapses whose weights grow with use and shrink with
// time.
//
// Three rules drive the model:
//
//   - Reinforcement (Hebbian): w' = min(1, w + (1-w)*LearningRate).
//     Repeated use approaches 1.0 asymptotically.
//   - Decay: w' = max(0, w - rate), applied to every synapse at once when
//     the caller asks for it. Nothing decays on its own.
//   - Decision path search: Dijkstra over the literal synapse weights
//     (a heavier synapse is a more expensive step). Every synapse on the
//     returned path is reinforced, so each search changes the costs seen by
//     the next one.
//
// A Graph is owned by exactly one caller and is not safe for concurrent use.
// Adapters that share one across goroutines must hold a single exclusive lock
// around every call, because FindDecisionPath both reads and writes weights.
//
// Usage:
//
//	g := network.New()
//	_ = g.AddNode("Sensory Input")
//	_ = g.AddNode("Attention")
//	_ = g.AddConnection("Sensory Input", "Attention", network.WithWeight(0.3))
//	path, ok := g.FindDecisionPath("Sensory Input", "Attention")
package network

// Package simulation runs scripted decision-network experiments.
//
// A Scenario names its neurons and weighted connections, then lists steps
// (path searches, direct reinforcements, decay runs) executed in order on a
// fresh graph. Every step records the resulting synapse weights so tests and
// the CLI can inspect how repeated use reshapes the network.
//
// Scenarios are plain Go values or YAML files:
//
//	name: decision
//	neurons: [Sensory Input, Attention, Decision Output]
//	connections:
//	  - {a: Sensory Input, b: Attention, weight: 0.3}
//	  - {a: Attention, b: Decision Output}
//	steps:
//	  - {action: path, start: Sensory Input, end: Decision Output}
//	  - {action: decay, rate: 0.1}
//
// Usage in tests:
//
//	func TestRepetitionStrengthens(t *testing.T) {
//	    res, err := simulation.NewRunner(network.DefaultConfig()).Run(ctx, simulation.DemoScenario())
//	    require.NoError(t, err)
//	    simulation.AssertPath(t, res, 1, "Sensory Input", "Attention", ...)
//	}
package simulation

package simulation

// DemoScenario is the five-neuron decision chain searched twice in a row.
// The second search follows the same route over weights reinforced by the first.
func DemoScenario() Scenario {
	w := func(f float64) *float64 { return &f }
	return Scenario{
		Name:        "decision",
		Description: "sensory input to decision output, searched twice",
		Neurons: []string{
			"Sensory Input",
			"Attention",
			"Memory Recall",
			"Risk Assessment",
			"Decision Output",
		},
		Connections: []ConnectionSpec{
			{A: "Sensory Input", B: "Attention", Weight: w(0.3)},
			{A: "Attention", B: "Memory Recall", Weight: w(0.4)},
			{A: "Memory Recall", B: "Risk Assessment", Weight: w(0.3)},
			{A: "Risk Assessment", B: "Decision Output", Weight: w(0.5)},
		},
		Steps: []Step{
			{Action: ActionPath, Label: "first decision", Start: "Sensory Input", End: "Decision Output"},
			{Action: ActionPath, Label: "after repetition", Start: "Sensory Input", End: "Decision Output"},
		},
	}
}

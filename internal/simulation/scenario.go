package simulation

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nvandessel/neuropath/internal/network"
)

// Step actions.
const (
	ActionPath       = "path"
	ActionStrengthen = "strengthen"
	ActionDecay      = "decay"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`

	// Network overrides individual parameters of the runner's base config.
	Network ConfigOverrides `yaml:"network,omitempty"`

	Neurons     []string         `yaml:"neurons"`
	Connections []ConnectionSpec `yaml:"connections"`
	Steps       []Step           `yaml:"steps"`
}

// ConfigOverrides replaces the non-nil parameters of a network.Config.
type ConfigOverrides struct {
	DefaultStrength *float64 `yaml:"default_strength,omitempty"`
	LearningRate    *float64 `yaml:"learning_rate,omitempty"`
	DecayRate       *float64 `yaml:"decay_rate,omitempty"`
}

// Apply returns base with the overrides applied.
func (o ConfigOverrides) Apply(base network.Config) network.Config {
	if o.DefaultStrength != nil {
		base.DefaultStrength = *o.DefaultStrength
	}
	if o.LearningRate != nil {
		base.LearningRate = *o.LearningRate
	}
	if o.DecayRate != nil {
		base.DecayRate = *o.DecayRate
	}
	return base
}

// ConnectionSpec is a pre-seeded synapse. A nil Weight uses the default strength.
type ConnectionSpec struct {
	A      string   `yaml:"a"`
	B      string   `yaml:"b"`
	Weight *float64 `yaml:"weight,omitempty"`
}

// Step is one scripted operation.
type Step struct {
	Action string `yaml:"action"`
	Label  string `yaml:"label,omitempty"`

	// Start and End are used by path steps.
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// A and B are used by strengthen steps.
	A string `yaml:"a,omitempty"`
	B string `yaml:"b,omitempty"`

	// Rate optionally overrides the decay rate of a decay step.
	Rate *float64 `yaml:"rate,omitempty"`

	// Repeat runs the step this many times; 0 means once.
	Repeat int `yaml:"repeat,omitempty"`
}

// Validate checks the scenario's structure. Graph-level errors such as
// unknown endpoints surface when the scenario runs.
func (s Scenario) Validate() error {
	if len(s.Neurons) == 0 {
		return fmt.Errorf("scenario %q: no neurons", s.Name)
	}
	for i, st := range s.Steps {
		if st.Repeat < 0 {
			return fmt.Errorf("step %d: repeat must be non-negative", i)
		}
		switch st.Action {
		case ActionPath:
			if st.Start == "" || st.End == "" {
				return fmt.Errorf("step %d: path needs start and end", i)
			}
		case ActionStrengthen:
			if st.A == "" || st.B == "" {
				return fmt.Errorf("step %d: strengthen needs a and b", i)
			}
		case ActionDecay:
		default:
			return fmt.Errorf("step %d: unknown action %q (valid: path, strengthen, decay)", i, st.Action)
		}
	}
	return nil
}

// ParseScenario decodes and validates a YAML scenario.
func ParseScenario(data []byte) (Scenario, error) {
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Scenario{}, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

// LoadScenario reads a YAML scenario file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseScenario(data)
}

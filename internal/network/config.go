package network

import (
	"fmt"
	"math"

	"github.com/nvandessel/neuropath/internal/constants"
)

// Config holds the numeric parameters of the model. It is fixed when the
// graph is constructed; per-call overrides exist only where noted.
type Config struct {
	// DefaultStrength is the weight of a connection added without WithWeight. Default: 0.5.
	DefaultStrength float64 `json:"default_strength" yaml:"default_strength"`

	// LearningRate is the reinforcement step. Default: 0.2.
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`

	// DecayRate is used by DecayConnections. DecayConnectionsBy overrides it
	// per call. Default: 0.05.
	DecayRate float64 `json:"decay_rate" yaml:"decay_rate"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		DefaultStrength: constants.DefaultInitialStrength,
		LearningRate:    constants.DefaultLearningRate,
		DecayRate:       constants.DefaultDecayRate,
	}
}

// Validate checks that every parameter is usable by the update rules.
func (c Config) Validate() error {
	if err := checkWeight(c.DefaultStrength); err != nil {
		return fmt.Errorf("default_strength: %w", err)
	}
	if err := checkRate(c.LearningRate); err != nil {
		return fmt.Errorf("learning_rate: %w", err)
	}
	if err := checkRate(c.DecayRate); err != nil {
		return fmt.Errorf("decay_rate: %w", err)
	}
	return nil
}

// checkWeight accepts any finite non-negative weight. Values above 1.0 are
// allowed; reinforcement pulls them back to the ceiling.
func checkWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
		return fmt.Errorf("%w: weight must be finite and non-negative, got %v", ErrInvalidArgument, w)
	}
	return nil
}

func checkRate(r float64) error {
	if math.IsNaN(r) || r < 0 || r > 1 {
		return fmt.Errorf("%w: rate must be in [0, 1], got %v", ErrInvalidArgument, r)
	}
	return nil
}

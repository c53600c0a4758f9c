package network

import (
	"math"

	"github.com/nvandessel/neuropath/internal/constants"
)

// Reinforce applies one Hebbian step to weight.
//
//	w' = w + (1 - w) * rate
//
// Each step closes a fixed fraction of the distance to 1.0, so repeated use
// converges on the ceiling without crossing it. The result is still clamped
// to MaxWeight so that weights stored above 1.0 come back into range.
func Reinforce(weight, rate float64) float64 {
	return clampWeight(weight+(1-weight)*rate, math.Inf(-1), constants.MaxWeight)
}

// Decay lowers weight by rate, flooring at MinWeight.
func Decay(weight, rate float64) float64 {
	return clampWeight(weight-rate, constants.MinWeight, math.Inf(1))
}

// clampWeight restricts a weight to [min, max].
func clampWeight(w, min, max float64) float64 {
	if math.IsNaN(w) {
		return constants.MinWeight
	}
	if w < min {
		return min
	}
	if w > max {
		return max
	}
	return w
}

package rlwe

import (
	"math"

	"github.com/tuneinsight/lattigo/v6/ring"
)

// Distribution pairs sampling parameters with the statistics used by the noise bookkeeping.
type Distribution struct {
	ring.DistributionParameters
	Std      float64
	AbsBound float64
}

// NewDistribution returns the [Distribution] of the given sampling parameters.
func NewDistribution(params ring.DistributionParameters) (d Distribution) {
	d.DistributionParameters = params
	switch params := params.(type) {
	case ring.DiscreteGaussian:
		d.Std = params.Sigma
		d.AbsBound = math.Floor(params.Bound)
	case ring.Ternary:
		d.Std = math.Sqrt(params.P)
		d.AbsBound = 1
	default:
		// Sanity check
		panic("invalid dist")
	}
	return
}

package sampler

import (
	"github.com/CraigKelly/betaflip/model"
)

// A Target is an unnormalized log density over p in (0,1). model.Coin is the
// usual one.
type Target interface {
	LogProb(p float64) float64
}

// A Sampler produces a dependent stream of draws from its target
type Sampler interface {
	Sample() (float64, error)
}

// Measure is a distance between two histograms, like model.HellingerDiff
type Measure func(h1 *model.Histogram, h2 *model.Histogram) float64

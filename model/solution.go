package model

import (
	"github.com/pkg/errors"

	"github.com/CraigKelly/betaflip/belief"
)

// Solution is the exact posterior for an experiment. Because the model is
// conjugate it never needs sampling: it is binned by CDF differences so that
// sampled estimates can be scored against it.
type Solution struct {
	Posterior belief.Belief // Closed form posterior
	Hist      *Histogram    // Posterior mass per bucket
}

// NewSolution computes the exact solution for the experiment at the given
// resolution
func NewSolution(c *Coin, bins int) (*Solution, error) {
	post, err := c.Posterior()
	if err != nil {
		return nil, errors.Wrapf(err, "No posterior for coin %s", c.Name)
	}

	hist, err := NewHistogram("solution", bins)
	if err != nil {
		return nil, err
	}

	prev := 0.0
	for i := 0; i < bins; i++ {
		edge := float64(i+1) / float64(bins)
		if i == bins-1 {
			edge = 1.0
		}
		cdf, err := post.CDF(edge)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not bin posterior at %v", edge)
		}
		hist.Marginal[i] = cdf - prev
		if hist.Marginal[i] < 0 {
			hist.Marginal[i] = 0 // CDF rounding in the tails
		}
		prev = cdf
	}

	if err := hist.NormMarginal(); err != nil {
		return nil, err
	}

	sol := &Solution{Posterior: post, Hist: hist}
	if err := sol.Check(); err != nil {
		return nil, err
	}
	return sol, nil
}

// Check insures that the solution is as correct as can be checked
func (s *Solution) Check() error {
	if err := s.Posterior.Check(); err != nil {
		return errors.Wrap(err, "Solution has an invalid posterior")
	}
	if err := s.Hist.Check(); err != nil {
		return errors.Wrap(err, "Solution has an invalid histogram")
	}
	return nil
}

// Error is a helper method to return the entire error suite we offer for the
// given estimates, each scored against this solution
func (s *Solution) Error(estimates []*Histogram) (*ErrorSuite, error) {
	exact := make([]*Histogram, len(estimates))
	for i := range exact {
		exact[i] = s.Hist
	}
	return NewErrorSuite(estimates, exact)
}

package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/betaflip/model"
)

// ChainConvergence scores each chain by comparing a histogram of the older
// half of its convergence window with one of the newer half. Stationary
// chains score near 0. Chains without a full window are an error.
func ChainConvergence(chains []*Chain, d Measure) ([]float64, error) {
	if d == nil {
		d = model.HellingerDiff
	}

	scores := make([]float64, len(chains))
	for i, ch := range chains {
		first, err := NewEmptyHistogram(ch.Hist.Bins)
		if err != nil {
			return nil, err
		}
		second := first.Clone()

		it1, it2 := ch.History.FirstHalf(), ch.History.SecondHalf()
		if it1 == nil || it2 == nil {
			return nil, errors.Errorf("Chain %d has only %d of %d window samples", i, ch.History.Count, ch.History.BufSize)
		}
		for it1.Next() {
			if err := first.Add(it1.Value()); err != nil {
				return nil, err
			}
		}
		for it2.Next() {
			if err := second.Add(it2.Value()); err != nil {
				return nil, err
			}
		}

		scores[i] = d(first, second)
	}

	return scores, nil
}

// RHat is the Gelman-Rubin potential scale reduction factor computed over
// the convergence windows of at least two chains. Values close to 1 mean the
// chains agree with each other.
func RHat(chains []*Chain) (float64, error) {
	if len(chains) < 2 {
		return 0, errors.Errorf("At least 2 chains required for R-hat, got %d", len(chains))
	}

	n := -1
	means := make([]float64, len(chains))
	vars := make([]float64, len(chains))
	for i, ch := range chains {
		vals := ch.History.Values()
		if n < 0 {
			n = len(vals)
		}
		if len(vals) != n || n < 2 {
			return 0, errors.Errorf("Chain %d has %d window samples, need %d (>= 2)", i, len(vals), n)
		}
		means[i], vars[i] = stat.MeanVariance(vals, nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	if w <= 0 {
		if b <= 0 {
			return 1.0, nil // every chain stuck at the same point
		}
		return math.Inf(1), nil
	}

	fn := float64(n)
	varHat := (fn-1)/fn*w + b/fn
	return math.Sqrt(varHat / w), nil
}

// WindowMean is the mean of every window sample across chains
func WindowMean(chains []*Chain) float64 {
	all := make([]float64, 0)
	for _, ch := range chains {
		all = append(all, ch.History.Values()...)
	}
	if len(all) < 1 {
		return math.NaN()
	}
	return stat.Mean(all, nil)
}

package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ErrorSuite represents all the loss/error functions we use to judge a
// sampled posterior against the exact one. Inputs are lists of histogram
// pairs (usually one per chain). Errors beginning with Mean are the mean
// across all the pairs while Max is the maximum value over the pairs. So
// MeanMaxAbsError is the MEAN of the Maximum Absolute Error for each pair.
// Likewise, MaxMeanAbsError represents the maximum value of the mean
// difference between two histograms.
type ErrorSuite struct {
	MeanMeanAbsError float64
	MeanMaxAbsError  float64
	MeanHellinger    float64
	MeanJSDiverge    float64

	MaxMeanAbsError float64
	MaxMaxAbsError  float64
	MaxHellinger    float64
	MaxJSDiverge    float64
}

// NewErrorSuite returns an ErrorSuite with all calculated error functions
func NewErrorSuite(hists1 []*Histogram, hists2 []*Histogram) (*ErrorSuite, error) {
	if len(hists1) != len(hists2) {
		return nil, errors.Errorf("Histogram count mismatch %d != %d", len(hists1), len(hists2))
	}

	if len(hists1) < 1 {
		return nil, errors.Errorf("No histograms to score")
	}

	for i, h1 := range hists1 {
		h2 := hists2[i]
		if h1.Bins != h2.Bins || len(h1.Marginal) != h1.Bins || len(h2.Marginal) != h2.Bins {
			return nil, errors.Errorf("Histogram bin mismatch %d != %d", h1.Bins, h2.Bins)
		}
	}

	es := ErrorSuite{}

	// Each metric is scored on every pair, then reduced to a mean and a max
	metrics := []struct {
		measure   func(*Histogram, *Histogram) float64
		mean, max *float64
	}{
		{MeanAbsDiff, &es.MeanMeanAbsError, &es.MaxMeanAbsError},
		{MaxAbsDiff, &es.MeanMaxAbsError, &es.MaxMaxAbsError},
		{HellingerDiff, &es.MeanHellinger, &es.MaxHellinger},
		{JSDivergence, &es.MeanJSDiverge, &es.MaxJSDiverge},
	}

	scores := make([]float64, len(hists1))
	for _, m := range metrics {
		for i, h1 := range hists1 {
			scores[i] = m.measure(h1, hists2[i])
		}
		*m.mean = stat.Mean(scores, nil)
		*m.max = floats.Max(scores)
	}

	return &es, nil
}

// pmf returns the histogram normalized to sum to 1. Raw counts are fine;
// an empty histogram stays all zero.
func pmf(h *Histogram) []float64 {
	const eps = 1e-12

	p := make([]float64, h.Bins)
	copy(p, h.Marginal)
	tot := floats.Sum(p)
	if tot < eps {
		tot = eps
	}
	floats.Scale(1/tot, p)
	return p
}

// MaxAbsDiff returns the largest per bin difference between the two
// normalized histograms
func MaxAbsDiff(v1 *Histogram, v2 *Histogram) float64 {
	if v1.Bins < 1 {
		return 0
	}
	return floats.Distance(pmf(v1), pmf(v2), math.Inf(1))
}

// MeanAbsDiff returns the mean per bin difference between the two
// normalized histograms
func MeanAbsDiff(v1 *Histogram, v2 *Histogram) float64 {
	if v1.Bins < 1 {
		return 0
	}
	return floats.Distance(pmf(v1), pmf(v2), 1) / float64(v1.Bins)
}

// HellingerDiff returns the Hellinger distance between two histograms,
// sqrt(sum((sqrt(p) - sqrt(q))**2)) / sqrt(2), which is in [0,1]
func HellingerDiff(v1 *Histogram, v2 *Histogram) float64 {
	p, q := pmf(v1), pmf(v2)
	for i := range p {
		p[i] = math.Sqrt(p[i])
		q[i] = math.Sqrt(q[i])
	}
	return floats.Distance(p, q, 2) / math.Sqrt2
}

// JSDivergence returns the Jensen-Shannon divergence in bits: symmetric,
// bounded by 1, and 0 only for identical histograms
func JSDivergence(v1 *Histogram, v2 *Histogram) float64 {
	return stat.JensenShannon(pmf(v1), pmf(v2)) / math.Ln2
}

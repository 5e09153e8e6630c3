package model

import (
	"math"

	"github.com/pkg/errors"
)

// Histogram is a discretized distribution over p in [0,1]: Bins equal width
// buckets. It is how a sampled posterior is summarized, and how the closed
// form posterior is binned so the two can be compared.
type Histogram struct {
	Name     string    // Label for reports
	Bins     int       // Number of buckets
	Marginal []float64 // Mass (or raw counts) per bucket: len should equal Bins
}

// NewHistogram creates an empty histogram with the given bucket count. The
// marginal will be set to uniform.
func NewHistogram(name string, bins int) (*Histogram, error) {
	if bins < 1 {
		return nil, errors.Errorf("Invalid bin count %d for histogram %s", bins, name)
	}

	h := &Histogram{
		Name:     name,
		Bins:     bins,
		Marginal: make([]float64, bins),
	}

	err := h.NormMarginal()
	if err != nil {
		return nil, errors.Wrapf(err, "Could not init norm marginal for histogram %s", name)
	}

	return h, nil
}

// Clone returns a deep copy of the histogram
func (h *Histogram) Clone() *Histogram {
	cp := &Histogram{
		Name:     h.Name,
		Bins:     h.Bins,
		Marginal: make([]float64, len(h.Marginal)),
	}
	copy(cp.Marginal, h.Marginal)
	return cp
}

// Bin returns the bucket index for p. p == 1 lands in the last bucket.
func (h *Histogram) Bin(p float64) int {
	i := int(p * float64(h.Bins))
	if i >= h.Bins {
		i = h.Bins - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// Add counts one sample. Out of range samples are an error.
func (h *Histogram) Add(p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return errors.Errorf("Histogram %s: sample %v outside [0,1]", h.Name, p)
	}
	h.Marginal[h.Bin(p)] += 1.0
	return nil
}

// Reset zeroes every bucket
func (h *Histogram) Reset() {
	for i := range h.Marginal {
		h.Marginal[i] = 0
	}
}

// Check returns an error if the histogram is not a probability distribution
func (h *Histogram) Check() error {
	if h.Bins != len(h.Marginal) {
		return errors.Errorf("Histogram %s Bins %d != len(M) %d", h.Name, h.Bins, len(h.Marginal))
	}

	var sum float64
	for _, p := range h.Marginal {
		if p < 0 {
			return errors.Errorf("Histogram %s has negative mass %f", h.Name, p)
		}
		sum += p
	}

	const EPS = 1e-8
	if math.Abs(sum-1.0) >= EPS {
		return errors.Errorf("Histogram %s has marginal dist with sum=%f", h.Name, sum)
	}

	return nil
}

// NormMarginal insures/scales the current Marginal vector to sum to 1
func (h *Histogram) NormMarginal() error {
	if h.Bins != len(h.Marginal) {
		return errors.Errorf("Histogram %s - can not norm: Bins=%d, Len(m)=%d", h.Name, h.Bins, len(h.Marginal))
	}

	if h.Bins < 1 {
		return nil // Nothing to do
	}

	var sum float64
	for _, p := range h.Marginal {
		sum += p
	}

	const EPS = 1e-8

	// Can stop if already normed
	if math.Abs(sum-1.0) < EPS {
		return nil
	}

	// If sum is 0, we just assume uniformity
	if math.Abs(sum) < EPS {
		p := 1.0 / float64(h.Bins)
		for i := range h.Marginal {
			h.Marginal[i] = p
		}
		return nil
	}

	for i, p := range h.Marginal {
		h.Marginal[i] = p / sum
	}

	return nil
}

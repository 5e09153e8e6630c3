package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHistogramCreation(t *testing.T) {
	assert := assert.New(t)

	h, err := NewHistogram("H", 4)
	assert.NoError(err)
	assert.NoError(h.Check())
	assert.InDeltaSlice([]float64{0.25, 0.25, 0.25, 0.25}, h.Marginal, 1e-8)

	h, err = NewHistogram("bad", 0)
	assert.Nil(h)
	assert.Error(err)
}

func TestHistogramAdd(t *testing.T) {
	assert := assert.New(t)

	h, err := NewHistogram("H", 4)
	assert.NoError(err)
	h.Reset()

	for _, p := range []float64{0, 0.1, 0.26, 0.5, 0.74, 0.99, 1.0} {
		assert.NoError(h.Add(p))
	}
	assert.Equal([]float64{2, 1, 2, 2}, h.Marginal)
	assert.Error(h.Check())

	assert.Error(h.Add(-0.1))
	assert.Error(h.Add(1.01))

	cp := h.Clone()
	assert.NoError(cp.NormMarginal())
	assert.NoError(cp.Check())
	assert.InDeltaSlice([]float64{2.0 / 7, 1.0 / 7, 2.0 / 7, 2.0 / 7}, cp.Marginal, 1e-8)
	assert.Equal([]float64{2, 1, 2, 2}, h.Marginal) // clone is deep

	h.Marginal = h.Marginal[:3]
	assert.Error(h.Check())
	assert.Error(h.NormMarginal())
}

func TestHistogramNegative(t *testing.T) {
	assert := assert.New(t)

	h := &Histogram{"neg", 2, []float64{1.5, -0.5}}
	assert.Error(h.Check())
}

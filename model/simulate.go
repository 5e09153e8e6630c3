package model

import (
	"math"

	"github.com/pkg/errors"
	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Simulate flips a coin with heads probability p n times
func Simulate(src exprand.Source, p float64, n int) ([]bool, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, errors.Errorf("Invalid heads probability %v", p)
	}
	if n < 0 {
		return nil, errors.Errorf("Invalid flip count %d", n)
	}

	coin := distuv.Bernoulli{P: p, Src: src}
	obs := make([]bool, n)
	for i := range obs {
		obs[i] = coin.Rand() == 1
	}

	return obs, nil
}

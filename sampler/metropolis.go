package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/CraigKelly/betaflip/rand"
)

// Metropolis is a random walk Metropolis sampler over a single probability.
// Proposals are Gaussian steps from the current point; anything that lands
// outside (0,1) is rejected.
type Metropolis struct {
	Step     float64 // Proposal standard deviation
	Proposed int64   // Proposals since the last ResetStats
	Accepted int64   // Accepted proposals since the last ResetStats

	target    Target
	gen       *rand.Generator
	noise     distuv.Normal
	current   float64
	currentLP float64
}

// NewMetropolis creates a sampler starting at start
func NewMetropolis(gen *rand.Generator, target Target, start float64, step float64) (*Metropolis, error) {
	if gen == nil {
		return nil, errors.New("No random generator supplied")
	}
	if target == nil {
		return nil, errors.New("No target supplied")
	}
	if !(step > 0) || math.IsInf(step, 1) {
		return nil, errors.Errorf("Invalid proposal step %v", step)
	}
	if !(start > 0 && start < 1) {
		return nil, errors.Errorf("Invalid start %v: must be in (0,1)", start)
	}

	lp := target.LogProb(start)
	if math.IsInf(lp, 0) || math.IsNaN(lp) {
		return nil, errors.Errorf("Target has no mass at start %v (log prob %v)", start, lp)
	}

	m := &Metropolis{
		Step:      step,
		target:    target,
		gen:       gen,
		noise:     distuv.Normal{Mu: 0, Sigma: 1, Src: gen},
		current:   start,
		currentLP: lp,
	}
	return m, nil
}

// Current is the present state of the walk
func (m *Metropolis) Current() float64 {
	return m.current
}

// Sample takes one Metropolis step and returns the (possibly unchanged)
// state - implements Sampler
func (m *Metropolis) Sample() (float64, error) {
	prop := m.current + m.Step*m.noise.Rand()
	m.Proposed++

	if prop <= 0 || prop >= 1 {
		return m.current, nil
	}

	lp := m.target.LogProb(prop)
	if math.IsNaN(lp) {
		return m.current, errors.Errorf("Target log prob is NaN at %v", prop)
	}

	if lp >= m.currentLP || math.Log(m.gen.Float64()) < lp-m.currentLP {
		m.current = prop
		m.currentLP = lp
		m.Accepted++
	}

	return m.current, nil
}

// AcceptanceRate is Accepted/Proposed (0 before any proposals)
func (m *Metropolis) AcceptanceRate() float64 {
	if m.Proposed < 1 {
		return 0
	}
	return float64(m.Accepted) / float64(m.Proposed)
}

// ResetStats zeroes the acceptance counters
func (m *Metropolis) ResetStats() {
	m.Proposed = 0
	m.Accepted = 0
}

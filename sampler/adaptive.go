package sampler

import (
	"math"

	"github.com/pkg/errors"
)

// An Adapter may tune chains between burn in rounds. It must never be used
// once samples are being recorded, since changing the kernel mid-run breaks
// detailed balance.
type Adapter interface {
	Adapt(chains []*Chain) ([]*Chain, error)
}

// IdentityAdapter leaves every chain's kernel as configured, so burn in
// rounds only move the chains toward the posterior.
type IdentityAdapter struct{}

// NewIdentityAdapter creates the fixed step strategy
func NewIdentityAdapter() (*IdentityAdapter, error) {
	return &IdentityAdapter{}, nil
}

// Adapt returns the chains untouched
func (i *IdentityAdapter) Adapt(chains []*Chain) ([]*Chain, error) {
	if len(chains) < 1 {
		return nil, errors.Errorf("At least 1 chain required for adaptation")
	}
	return chains, nil
}

// NewAdapter picks the adapter for a config: a StepAdapter aiming at
// cfg.Acceptance, or an IdentityAdapter when tuning is off.
func NewAdapter(cfg *Config) (Adapter, error) {
	if !cfg.Adapt || cfg.AdaptRounds < 1 {
		return NewIdentityAdapter()
	}
	return NewStepAdapter(cfg.Acceptance)
}

// StepAdapter scales the proposal step of Metropolis chains toward a target
// acceptance rate. 0.44 is the usual choice for a one dimensional random
// walk.
type StepAdapter struct {
	TargetRate float64
	MinStep    float64
	MaxStep    float64
}

// NewStepAdapter creates a StepAdapter for the given acceptance target
func NewStepAdapter(targetRate float64) (*StepAdapter, error) {
	if !(targetRate > 0 && targetRate < 1) {
		return nil, errors.Errorf("Invalid target acceptance rate %v", targetRate)
	}

	s := &StepAdapter{
		TargetRate: targetRate,
		MinStep:    1e-5,
		MaxStep:    1.0,
	}
	return s, nil
}

// Adapt rescales each Metropolis step by how far its acceptance rate since
// the last adaptation is from the target, then resets the counters. Chains
// with other samplers, or that have not proposed anything, are left alone.
func (s *StepAdapter) Adapt(chains []*Chain) ([]*Chain, error) {
	if len(chains) < 1 {
		return nil, errors.Errorf("At least 1 chain required for adaptation")
	}

	for _, ch := range chains {
		m, ok := ch.Sampler.(*Metropolis)
		if !ok || m.Proposed < 1 {
			continue
		}

		// Accepting too often means steps are too timid
		scale := math.Exp(m.AcceptanceRate() - s.TargetRate)
		m.Step = math.Max(s.MinStep, math.Min(s.MaxStep, m.Step*scale*scale))
		m.ResetStats()
	}

	return chains, nil
}

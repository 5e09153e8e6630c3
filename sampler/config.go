package sampler

import (
	"github.com/pkg/errors"
)

const (
	// DefaultChains is the number of independent chains
	DefaultChains = 4

	// DefaultWindow is the number of samples per chain per round
	DefaultWindow = 2000

	// DefaultBurnIn is the number of samples discarded per adaptation round
	DefaultBurnIn = 500

	// DefaultBins is the histogram resolution used for scoring
	DefaultBins = 20

	// DefaultStep is the initial proposal standard deviation
	DefaultStep = 0.1

	// DefaultAdaptRounds is the number of burn in rounds with step tuning
	DefaultAdaptRounds = 4

	// DefaultMaxRounds caps the number of recording rounds
	DefaultMaxRounds = 20

	// DefaultRHatTarget stops sampling once R-hat drops below it
	DefaultRHatTarget = 1.01

	// DefaultAcceptance is the acceptance rate the step adapter aims for
	DefaultAcceptance = 0.44
)

// Config holds the parameters for a sampling run
type Config struct {
	Chains      int
	Window      int
	BurnIn      int64
	Bins        int
	Step        float64
	AdaptRounds int
	MaxRounds   int
	RHatTarget  float64
	Acceptance  float64
	Adapt       bool // Tune the step during burn in
	Seed        int64
}

// NewDefaultConfig creates a new Config with default values
func NewDefaultConfig() *Config {
	return &Config{
		Chains:      DefaultChains,
		Window:      DefaultWindow,
		BurnIn:      DefaultBurnIn,
		Bins:        DefaultBins,
		Step:        DefaultStep,
		AdaptRounds: DefaultAdaptRounds,
		MaxRounds:   DefaultMaxRounds,
		RHatTarget:  DefaultRHatTarget,
		Acceptance:  DefaultAcceptance,
		Adapt:       true,
		Seed:        1,
	}
}

// WithChains sets the number of chains
func (c *Config) WithChains(n int) *Config {
	c.Chains = n
	return c
}

// WithWindow sets the convergence window (samples per chain per round)
func (c *Config) WithWindow(n int) *Config {
	c.Window = n
	return c
}

// WithBurnIn sets the samples discarded per adaptation round
func (c *Config) WithBurnIn(n int64) *Config {
	c.BurnIn = n
	return c
}

// WithBins sets the histogram resolution
func (c *Config) WithBins(n int) *Config {
	c.Bins = n
	return c
}

// WithStep sets the initial proposal step
func (c *Config) WithStep(step float64) *Config {
	c.Step = step
	return c
}

// WithAdaptRounds sets the number of tuning rounds (0 disables tuning)
func (c *Config) WithAdaptRounds(n int) *Config {
	c.AdaptRounds = n
	return c
}

// WithMaxRounds sets the maximum number of recording rounds
func (c *Config) WithMaxRounds(n int) *Config {
	c.MaxRounds = n
	return c
}

// WithRHatTarget sets the R-hat stopping threshold
func (c *Config) WithRHatTarget(r float64) *Config {
	c.RHatTarget = r
	return c
}

// WithSeed sets the base seed; chain i uses Seed+i
func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

// WithAdapt turns step tuning during burn in on or off
func (c *Config) WithAdapt(adapt bool) *Config {
	c.Adapt = adapt
	return c
}

// Check returns an error if the configuration can not be run
func (c *Config) Check() error {
	if c.Chains < 1 {
		return errors.Errorf("Need at least 1 chain, got %d", c.Chains)
	}
	if c.Window < 2 {
		return errors.Errorf("Convergence window %d must be >= 2", c.Window)
	}
	if c.BurnIn < 0 {
		return errors.Errorf("Burn in %d must be >= 0", c.BurnIn)
	}
	if c.Bins < 1 {
		return errors.Errorf("Bins %d must be >= 1", c.Bins)
	}
	if !(c.Step > 0) {
		return errors.Errorf("Step %v must be > 0", c.Step)
	}
	if c.AdaptRounds < 0 {
		return errors.Errorf("Adapt rounds %d must be >= 0", c.AdaptRounds)
	}
	if c.MaxRounds < 1 {
		return errors.Errorf("Max rounds %d must be >= 1", c.MaxRounds)
	}
	if !(c.Acceptance > 0 && c.Acceptance < 1) {
		return errors.Errorf("Target acceptance %v must be in (0,1)", c.Acceptance)
	}
	return nil
}

package model

import (
	"io/ioutil"
	"math"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/CraigKelly/betaflip/belief"
)

// Reader implementors turn a byte stream into an ordered list of binary
// observations (true is a success/heads).
type Reader interface {
	ReadObservations(data []byte) ([]bool, error)
}

// Coin is a coin flipping experiment: a prior over the probability of heads
// plus the sufficient statistics of what was observed. The raw sequence is
// not kept.
type Coin struct {
	Name  string        // Experiment name
	Prior belief.Belief // Belief before any flips
	Heads int           // Successes observed
	Tails int           // Failures observed
}

// NewCoin creates an experiment with no observations
func NewCoin(name string, prior belief.Belief) (*Coin, error) {
	if err := prior.Check(); err != nil {
		return nil, errors.Wrapf(err, "Invalid prior for coin %s", name)
	}
	return &Coin{Name: name, Prior: prior}, nil
}

// Clone returns a copy of the experiment
func (c *Coin) Clone() *Coin {
	cp := *c
	return &cp
}

// Add counts the given observations
func (c *Coin) Add(obs []bool) {
	for _, o := range obs {
		if o {
			c.Heads++
		} else {
			c.Tails++
		}
	}
}

// Flips is the total number of observations
func (c *Coin) Flips() int {
	return c.Heads + c.Tails
}

// Check returns an error if there is a problem with the experiment
func (c *Coin) Check() error {
	if err := c.Prior.Check(); err != nil {
		return errors.Wrapf(err, "Coin %s has an invalid prior", c.Name)
	}
	if c.Heads < 0 || c.Tails < 0 {
		return errors.Errorf("Coin %s has negative counts H=%d T=%d", c.Name, c.Heads, c.Tails)
	}
	return nil
}

// Posterior is the closed form conjugate posterior for the experiment
func (c *Coin) Posterior() (belief.Belief, error) {
	if err := c.Check(); err != nil {
		return belief.Belief{}, err
	}
	return c.Prior.Observe(c.Heads, c.Tails)
}

// LogProb is the unnormalized log posterior density of p: the prior log
// density plus the Bernoulli log likelihood. It is -Inf wherever the
// posterior has no mass, including outside (0,1). This is what a sampler
// targets when it has to find the posterior without conjugacy.
func (c *Coin) LogProb(p float64) float64 {
	if p <= 0 || p >= 1 {
		return math.Inf(-1)
	}

	lp, err := c.Prior.LogDensity(p)
	if err != nil {
		return math.Inf(-1)
	}

	return lp + float64(c.Heads)*math.Log(p) + float64(c.Tails)*math.Log1p(-p)
}

// NewCoinFromFile reads observations from filename and counts them against
// the prior. The experiment is named after the file.
func NewCoinFromFile(r Reader, filename string, prior belief.Belief) (*Coin, error) {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not READ observations from %s", filename)
	}

	coin, err := NewCoinFromBuffer(r, data, prior)
	if err != nil {
		return nil, err
	}

	// Name the experiment from the file, without directory or extension
	base := filepath.Base(filename)
	coin.Name = base[:len(base)-len(filepath.Ext(base))]

	return coin, nil
}

// NewCoinFromBuffer creates an experiment from the given pre-read data
func NewCoinFromBuffer(r Reader, data []byte, prior belief.Belief) (*Coin, error) {
	obs, err := r.ReadObservations(data)
	if err != nil {
		return nil, errors.Wrapf(err, "Could not PARSE observations")
	}

	coin, err := NewCoin("", prior)
	if err != nil {
		return nil, err
	}
	coin.Add(obs)

	return coin, nil
}

// Package belief maintains a Beta distributed belief over the success
// probability of a Bernoulli process (a coin), updated in closed form as
// binary observations arrive.
//
// A Belief is a plain value. Every operation returns a new Belief and never
// changes the receiver, so beliefs can be shared freely between goroutines.
package belief

import (
	"math"

	"gonum.org/v1/gonum/mathext"
)

// Belief is a Beta(Alpha, Beta) distribution over p in [0,1]. Alpha and Beta
// act as pseudo-counts of successes and failures. Both must be > 0; values
// built with New always are, literals should be validated with Check.
type Belief struct {
	Alpha float64
	Beta  float64
}

// New returns the prior Beta(alpha, beta)
func New(alpha, beta float64) (Belief, error) {
	if err := checkParam("alpha", alpha); err != nil {
		return Belief{}, err
	}
	if err := checkParam("beta", beta); err != nil {
		return Belief{}, err
	}
	return Belief{Alpha: alpha, Beta: beta}, nil
}

// Uniform returns the flat Beta(1, 1) prior
func Uniform() Belief {
	return Belief{Alpha: 1, Beta: 1}
}

func checkParam(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return invalidParam(name, v, "must be finite and > 0")
	}
	return nil
}

// Check returns an error if the belief does not have positive, finite
// parameters
func (b Belief) Check() error {
	if err := checkParam("alpha", b.Alpha); err != nil {
		return err
	}
	return checkParam("beta", b.Beta)
}

// Update returns the posterior after observing obs, where true is a success.
// Only the counts matter, so any ordering of the same outcomes gives the same
// posterior. An empty obs returns b unchanged.
func Update(b Belief, obs []bool) (Belief, error) {
	if err := b.Check(); err != nil {
		return Belief{}, err
	}
	return b.add(obs), nil
}

// add applies the conjugate update with no validation
func (b Belief) add(obs []bool) Belief {
	successes := 0
	for _, o := range obs {
		if o {
			successes++
		}
	}
	failures := len(obs) - successes

	return Belief{
		Alpha: b.Alpha + float64(successes),
		Beta:  b.Beta + float64(failures),
	}
}

// Observe is Update from sufficient statistics: the number of successes and
// failures seen.
func (b Belief) Observe(successes, failures int) (Belief, error) {
	if err := b.Check(); err != nil {
		return Belief{}, err
	}
	if successes < 0 {
		return Belief{}, invalidParam("successes", float64(successes), "must be >= 0")
	}
	if failures < 0 {
		return Belief{}, invalidParam("failures", float64(failures), "must be >= 0")
	}

	return Belief{
		Alpha: b.Alpha + float64(successes),
		Beta:  b.Beta + float64(failures),
	}, nil
}

// Count is the total pseudo-count Alpha+Beta
func (b Belief) Count() float64 {
	return b.Alpha + b.Beta
}

// Mean is Alpha/(Alpha+Beta)
func (b Belief) Mean() float64 {
	return b.Alpha / (b.Alpha + b.Beta)
}

// Variance is Alpha*Beta / ((Alpha+Beta)^2 * (Alpha+Beta+1))
func (b Belief) Variance() float64 {
	n := b.Alpha + b.Beta
	return (b.Alpha * b.Beta) / (n * n * (n + 1))
}

// StdDev is the square root of Variance
func (b Belief) StdDev() float64 {
	return math.Sqrt(b.Variance())
}

// Density returns the Beta pdf at p. It is evaluated in log space so large
// parameters (after many observations) do not overflow. At the edges of
// [0,1] the density may be 0 or +Inf depending on the parameters.
func (b Belief) Density(p float64) (float64, error) {
	lp, err := b.LogDensity(p)
	if err != nil {
		return 0, err
	}
	return math.Exp(lp), nil
}

// LogDensity returns the natural log of the Beta pdf at p (-Inf where the
// density is 0).
func (b Belief) LogDensity(p float64) (float64, error) {
	if err := b.Check(); err != nil {
		return 0, err
	}
	if err := checkUnit("Density", p); err != nil {
		return 0, err
	}
	return b.logPDF(p), nil
}

// logPDF requires a valid belief and p in [0,1]
func (b Belief) logPDF(p float64) float64 {
	// (a-1)*log(x) with 0*log(0) taken as 0, so a=1 has a finite edge
	term := func(coef, logx float64) float64 {
		if coef == 0 {
			return 0
		}
		return coef * logx
	}

	return term(b.Alpha-1, math.Log(p)) +
		term(b.Beta-1, math.Log1p(-p)) -
		mathext.Lbeta(b.Alpha, b.Beta)
}

func checkUnit(op string, p float64) error {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return outsideDomain(op, p)
	}
	return nil
}

package belief

import (
	"math"

	exprand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mode is the most likely value of p. It is only defined (and unique) when
// both parameters are > 1.
func (b Belief) Mode() (float64, error) {
	if err := b.Check(); err != nil {
		return 0, err
	}
	if b.Alpha <= 1 || b.Beta <= 1 {
		return 0, outsideDomain("Mode", math.Min(b.Alpha, b.Beta))
	}
	return (b.Alpha - 1) / (b.Alpha + b.Beta - 2), nil
}

// CDF returns P(X <= p)
func (b Belief) CDF(p float64) (float64, error) {
	if err := b.Check(); err != nil {
		return 0, err
	}
	if err := checkUnit("CDF", p); err != nil {
		return 0, err
	}
	return mathext.RegIncBeta(b.Alpha, b.Beta, p), nil
}

// Quantile is the inverse of CDF
func (b Belief) Quantile(q float64) (float64, error) {
	if err := b.Check(); err != nil {
		return 0, err
	}
	if err := checkUnit("Quantile", q); err != nil {
		return 0, err
	}
	return mathext.InvRegIncBeta(b.Alpha, b.Beta, q), nil
}

// CredibleInterval returns the central interval holding the given mass of
// the belief, so 0.95 gives the 2.5% and 97.5% quantiles.
func (b Belief) CredibleInterval(mass float64) (lo float64, hi float64, err error) {
	if math.IsNaN(mass) || mass <= 0 || mass >= 1 {
		return 0, 0, invalidParam("mass", mass, "must be in (0, 1)")
	}

	tail := (1 - mass) / 2
	if lo, err = b.Quantile(tail); err != nil {
		return 0, 0, err
	}
	if hi, err = b.Quantile(1 - tail); err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

// Sample draws a single p from the belief using src. A nil src uses the
// global source. An invalid belief is an error, nothing is drawn.
func (b Belief) Sample(src exprand.Source) (float64, error) {
	if err := b.Check(); err != nil {
		return 0, err
	}
	return distuv.Beta{Alpha: b.Alpha, Beta: b.Beta, Src: src}.Rand(), nil
}

// Grid evaluates the density at n evenly spaced points covering [0,1]. This
// is the shape a plotting routine wants.
func (b Belief) Grid(n int) (ps []float64, dens []float64, err error) {
	if n < 2 {
		return nil, nil, invalidParam("n", float64(n), "grid needs at least 2 points")
	}
	if err = b.Check(); err != nil {
		return nil, nil, err
	}

	ps = make([]float64, n)
	dens = make([]float64, n)
	step := 1.0 / float64(n-1)
	for i := range ps {
		p := float64(i) * step
		if i == n-1 {
			p = 1.0 // no drift past the edge
		}
		ps[i] = p
		dens[i] = math.Exp(b.logPDF(p))
	}

	return ps, dens, nil
}

// Hellinger returns the Hellinger distance between two beliefs, a value in
// [0,1] where 0 means identical. It uses the closed form Bhattacharyya
// coefficient for Beta distributions:
//
//	BC = B((a1+a2)/2, (b1+b2)/2) / sqrt(B(a1,b1) * B(a2,b2))
func Hellinger(x, y Belief) (float64, error) {
	if err := x.Check(); err != nil {
		return 0, err
	}
	if err := y.Check(); err != nil {
		return 0, err
	}

	logBC := mathext.Lbeta((x.Alpha+y.Alpha)/2, (x.Beta+y.Beta)/2) -
		0.5*(mathext.Lbeta(x.Alpha, x.Beta)+mathext.Lbeta(y.Alpha, y.Beta))

	h2 := 1 - math.Exp(logBC)
	if h2 < 0 {
		h2 = 0 // rounding for identical beliefs
	}
	return math.Sqrt(h2), nil
}

package belief

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/betaflip/rand"
)

func TestMode(t *testing.T) {
	assert := assert.New(t)

	m, err := Belief{Alpha: 3, Beta: 2}.Mode()
	assert.NoError(err)
	assert.InEpsilon(2.0/3.0, m, 1e-12)

	_, err = Uniform().Mode()
	assert.True(IsDomain(err))
	_, err = Belief{Alpha: 5, Beta: 0.5}.Mode()
	assert.True(IsDomain(err))

	// The error names the operation and the parameter that left the domain
	de, ok := errors.Cause(err).(*DomainError)
	assert.True(ok)
	assert.Equal("Mode", de.Op)
	assert.Equal(0.5, de.Value)
}

func TestCDFAndQuantile(t *testing.T) {
	assert := assert.New(t)

	// Uniform CDF is the identity
	for _, p := range []float64{0, 0.2, 0.5, 0.77, 1} {
		c, err := Uniform().CDF(p)
		assert.NoError(err)
		assert.InDelta(p, c, 1e-12)
	}

	// Beta(3,2) CDF = 4p^3 - 3p^4
	b := Belief{Alpha: 3, Beta: 2}
	for _, p := range []float64{0.1, 0.4, 0.6, 0.95} {
		c, err := b.CDF(p)
		assert.NoError(err)
		assert.InDelta(4*math.Pow(p, 3)-3*math.Pow(p, 4), c, 1e-10)

		q, err := b.Quantile(c)
		assert.NoError(err)
		assert.InDelta(p, q, 1e-8)
	}

	_, err := b.CDF(2)
	assert.True(IsDomain(err))
	_, err = b.Quantile(-0.1)
	assert.True(IsDomain(err))
}

func TestCredibleInterval(t *testing.T) {
	assert := assert.New(t)

	lo, hi, err := Uniform().CredibleInterval(0.9)
	assert.NoError(err)
	assert.InDelta(0.05, lo, 1e-9)
	assert.InDelta(0.95, hi, 1e-9)

	// Symmetric belief has a symmetric interval around 1/2
	lo, hi, err = Belief{Alpha: 51, Beta: 51}.CredibleInterval(0.95)
	assert.NoError(err)
	assert.InDelta(1.0, lo+hi, 1e-9)
	assert.True(lo > 0.35 && hi < 0.65)

	for _, mass := range []float64{0, 1, -0.5, 1.2, math.NaN()} {
		_, _, err = Uniform().CredibleInterval(mass)
		assert.True(IsInvalidParameter(err), "%v", mass)
	}
}

func TestSample(t *testing.T) {
	assert := assert.New(t)

	gen, err := rand.NewGenerator(42)
	assert.NoError(err)
	defer gen.Close()

	b := Belief{Alpha: 30, Beta: 10}
	const n = 20000
	sum := 0.0
	for i := 0; i < n; i++ {
		p, err := b.Sample(gen)
		assert.NoError(err)
		assert.True(p >= 0 && p <= 1)
		sum += p
	}
	assert.InDelta(b.Mean(), sum/n, 0.005)

	// Invalid beliefs fail before reaching the Beta sampler
	for _, bad := range []Belief{{}, {Alpha: -1, Beta: 2}, {Alpha: 2, Beta: math.NaN()}} {
		_, err := bad.Sample(gen)
		assert.Error(err)
		assert.True(IsInvalidParameter(err), "%+v", bad)
	}
}

func TestGrid(t *testing.T) {
	assert := assert.New(t)

	ps, dens, err := Belief{Alpha: 3, Beta: 2}.Grid(5)
	assert.NoError(err)
	assert.Equal([]float64{0, 0.25, 0.5, 0.75, 1}, ps)
	assert.InDeltaSlice([]float64{0, 12 * 0.0625 * 0.75, 1.5, 12 * 0.5625 * 0.25, 0}, dens, 1e-10)

	_, _, err = Uniform().Grid(1)
	assert.True(IsInvalidParameter(err))
	_, _, err = Belief{}.Grid(10)
	assert.True(IsInvalidParameter(err))
}

func TestHellinger(t *testing.T) {
	assert := assert.New(t)

	b := Belief{Alpha: 3, Beta: 2}
	h, err := Hellinger(b, b)
	assert.NoError(err)
	assert.InDelta(0.0, h, 1e-7)

	near, err := Hellinger(Belief{Alpha: 50, Beta: 50}, Belief{Alpha: 51, Beta: 50})
	assert.NoError(err)
	far, err := Hellinger(Belief{Alpha: 50, Beta: 50}, Belief{Alpha: 500, Beta: 50})
	assert.NoError(err)
	assert.Less(near, far)
	assert.True(far <= 1.0)

	// Symmetric
	h1, _ := Hellinger(Uniform(), b)
	h2, _ := Hellinger(b, Uniform())
	assert.InDelta(h1, h2, 1e-12)

	// Beta(1,1) vs Beta(2,1): BC = B(1.5,1)/sqrt(B(1,1)B(2,1)) = (2/3)/sqrt(1/2)
	assert.InDelta(math.Sqrt(1-(2.0/3.0)*math.Sqrt2), func() float64 {
		h, _ := Hellinger(Uniform(), Belief{Alpha: 2, Beta: 1})
		return h
	}(), 1e-10)

	_, err = Hellinger(Belief{}, b)
	assert.True(IsInvalidParameter(err))
}

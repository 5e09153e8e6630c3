package rand

import (
	"github.com/pkg/errors"
	"github.com/seehuhn/mt19937"
)

// A Generator uses a goroutine to populate batches of random numbers from a
// Mersenne twister. It satisfies the Source interface gonum's distuv
// distributions take, so a single seeded Generator can drive simulation,
// proposals, and Beta draws.
type Generator struct {
	ch   chan uint64
	done chan struct{}
}

// NewGenerator starts a new background PRNG based on the given seed
func NewGenerator(seed int64) (*Generator, error) {
	g := &Generator{}
	g.start(func(r *mt19937.MT19937) { r.Seed(seed) })
	return g, nil
}

// NewGeneratorSlice starts a new background PRNG seeded from the given key.
// This is the canonical init_by_array64 seeding, so reference sequences can
// be checked.
func NewGeneratorSlice(key []uint64) (*Generator, error) {
	if len(key) < 1 {
		return nil, errors.Errorf("Seed key must have at least one value")
	}

	cp := make([]uint64, len(key))
	copy(cp, key)

	g := &Generator{}
	g.start(func(r *mt19937.MT19937) { r.SeedFromSlice(cp) })
	return g, nil
}

func (g *Generator) start(seeder func(r *mt19937.MT19937)) {
	numChan := make(chan uint64, 1024)
	done := make(chan struct{})

	go func() {
		r := mt19937.New()
		seeder(r)
		for {
			select {
			case numChan <- r.Uint64():
			case <-done:
				return
			}
		}
	}()

	g.ch = numChan
	g.done = done
}

// Close stops the background goroutine. The generator must not be read from
// after Close unless it is re-seeded.
func (g *Generator) Close() {
	if g.done != nil {
		close(g.done)
		g.done = nil
	}
}

// Seed discards any pre-generated values and restarts the generator from
// seed. It must not be called concurrently with reads.
func (g *Generator) Seed(seed uint64) {
	g.Close()
	g.start(func(r *mt19937.MT19937) { r.Seed(int64(seed)) })
}

// Uint64 returns the next full 64 bits from the twister
func (g *Generator) Uint64() uint64 {
	return <-g.ch
}

// Int63 provides the same interface as Go's math/rand, but with pre-generation.
func (g *Generator) Int63() int64 {
	return int64(g.Uint64() & 0x7fffffffffffffff)
}

// Int63n is a copy of the current Go code
func (g *Generator) Int63n(n int64) int64 {
	if n <= 0 {
		panic("invalid argument to Int63n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int63() & (n - 1)
	}

	max := int64((1 << 63) - 1 - (1<<63)%uint64(n))
	v := g.Int63()
	for v > max {
		v = g.Int63()
	}

	return v % n
}

// Int31 is just a copy of the golang impl
func (g *Generator) Int31() int32 {
	return int32(g.Int63() >> 32)
}

// Int31n is just a copy of the golang impL
func (g *Generator) Int31n(n int32) int32 {
	if n <= 0 {
		panic("invalid argument to Int31n")
	}

	if n&(n-1) == 0 { // n is power of two, can mask
		return g.Int31() & (n - 1)
	}

	max := int32((1 << 31) - 1 - (1<<31)%uint32(n))
	v := g.Int31()

	for v > max {
		v = g.Int31()
	}

	return v % n
}

// Float64 returns a value in [0, 1) with 53 bits of precision
func (g *Generator) Float64() float64 {
	// See the Go lang comments for Rand Float64 implementation for details
	return float64(g.Int63n(1<<53)) / (1 << 53)
}

package belief

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReplay(t *testing.T) {
	assert := assert.New(t)

	obs := flips("HHTHTTTHHH")
	prior := Belief{Alpha: 2, Beta: 2}

	// Sequential reference
	exp := make([]Belief, len(obs)+1)
	for i := range exp {
		b, err := Update(prior, obs[:i])
		assert.NoError(err)
		exp[i] = b
	}

	for _, workers := range []int{0, 1, 3, 64} {
		frames, err := Replay(context.Background(), prior, obs, workers)
		assert.NoError(err)
		assert.Equal(exp, frames, "workers=%d", workers)
	}

	assert.Equal(prior, exp[0])
	assert.Equal(Belief{Alpha: 8, Beta: 6}, exp[len(exp)-1])
	assert.Equal(flips("HHTHTTTHHH"), obs)
}

func TestReplayEmpty(t *testing.T) {
	assert := assert.New(t)

	frames, err := Replay(context.Background(), Uniform(), nil, 4)
	assert.NoError(err)
	assert.Equal([]Belief{Uniform()}, frames)
}

func TestReplayErrors(t *testing.T) {
	assert := assert.New(t)

	frames, err := Replay(context.Background(), Belief{Alpha: 0, Beta: 1}, flips("HT"), 2)
	assert.Nil(frames)
	assert.True(IsInvalidParameter(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	frames, err = Replay(ctx, Uniform(), make([]bool, 10000), 1)
	assert.Nil(frames)
	assert.Error(err)
}

func TestReplayLarge(t *testing.T) {
	assert := assert.New(t)

	// Spans many batches, with a partial last one
	const n = 1000003
	obs := make([]bool, n)
	heads := 0
	for i := range obs {
		if i%3 == 0 {
			obs[i] = true
			heads++
		}
	}

	start := time.Now()
	frames, err := Replay(context.Background(), Uniform(), obs, 4)
	elapsed := time.Since(start)
	assert.NoError(err)
	assert.Len(frames, n+1)
	assert.Less(elapsed, 10*time.Second, "replay of %d flips took %v", n, elapsed)

	// Spot check against the sequential update, including batch edges
	for _, i := range []int{0, 1, replayBatch - 1, replayBatch, replayBatch + 1, n / 2, n} {
		exp, err := Update(Uniform(), obs[:i])
		assert.NoError(err)
		assert.Equal(exp, frames[i], "frame %d", i)
	}
	assert.Equal(Belief{Alpha: float64(1 + heads), Beta: float64(1 + n - heads)}, frames[n])
}

func BenchmarkReplay(b *testing.B) {
	obs := make([]bool, 100000)
	for i := range obs {
		obs[i] = i%2 == 0
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Replay(context.Background(), Uniform(), obs, 0); err != nil {
			b.Fatal(err)
		}
	}
}

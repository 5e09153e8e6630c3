package belief

import (
	"context"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// replayBatch is how many frames a worker computes per job
const replayBatch = 4096

// Replay returns the belief after every prefix of obs: frame i is the prior
// updated with obs[:i], so there are len(obs)+1 frames and frame 0 is the
// prior. Success counts are accumulated once; each frame is then computed
// from the prior and its prefix counts on its own, spread over
// workers goroutines (runtime.NumCPU() if workers <= 0). The result does not
// depend on the worker count.
func Replay(ctx context.Context, prior Belief, obs []bool, workers int) ([]Belief, error) {
	if err := prior.Check(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// successes[i] counts the successes in obs[:i]
	successes := make([]int, len(obs)+1)
	for i, o := range obs {
		successes[i+1] = successes[i]
		if o {
			successes[i+1]++
		}
	}

	frames := make([]Belief, len(obs)+1)
	if batches := (len(frames) + replayBatch - 1) / replayBatch; workers > batches {
		workers = batches
	}

	// Workers take batches of consecutive frames
	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lo := range jobs {
				hi := lo + replayBatch
				if hi > len(frames) {
					hi = len(frames)
				}
				for i := lo; i < hi; i++ {
					frames[i] = Belief{
						Alpha: prior.Alpha + float64(successes[i]),
						Beta:  prior.Beta + float64(i-successes[i]),
					}
				}
			}
		}()
	}

	var err error
feed:
	for lo := 0; lo < len(frames); lo += replayBatch {
		if ctx.Err() != nil {
			err = errors.Wrapf(ctx.Err(), "Replay stopped after %d of %d frames", lo, len(frames))
			break
		}
		select {
		case jobs <- lo:
		case <-ctx.Done():
			err = errors.Wrapf(ctx.Err(), "Replay stopped after %d of %d frames", lo, len(frames))
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return frames, nil
}

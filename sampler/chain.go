package sampler

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/CraigKelly/betaflip/buffer"
	"github.com/CraigKelly/betaflip/model"
)

// Chain provides functionality around a single sampler: burn in, a
// convergence window of the latest draws, and a histogram estimate of the
// posterior.
type Chain struct {
	Sampler           Sampler
	ConvergenceWindow int
	History           *buffer.CircularFloat
	Hist              *model.Histogram
	TotalSampleCount  int64
	LastSample        float64

	err error
}

// MergeChains returns a single histogram summed over all chains, suitable
// for estimating the posterior.
func MergeChains(chains []*Chain) (*model.Histogram, error) {
	chLen := len(chains)
	if chLen < 1 {
		return nil, errors.Errorf("Can not merge 0 chains")
	}

	merged := chains[0].Hist.Clone()
	merged.Name = "merged"

	for _, ch := range chains[1:] {
		if ch.Hist.Bins != merged.Bins {
			return nil, errors.Errorf("Cannot merge chain with %d bins into %d bins", ch.Hist.Bins, merged.Bins)
		}
		for i, val := range ch.Hist.Marginal {
			merged.Marginal[i] += val
		}
	}

	return merged, nil
}

// NewChain returns a chain ready to go. It even performs burnin.
func NewChain(samp Sampler, bins int, cw int, burnIn int64) (*Chain, error) {
	if samp == nil {
		return nil, errors.New("No sampler supplied")
	}

	hist, err := NewEmptyHistogram(bins)
	if err != nil {
		return nil, err
	}

	ch := &Chain{
		Sampler:           samp,
		ConvergenceWindow: cw,
		History:           buffer.NewCircularFloat(cw),
		Hist:              hist,
	}
	ch.ConvergenceWindow = ch.History.BufSize

	if err := ch.BurnIn(burnIn); err != nil {
		return nil, err
	}

	return ch, nil
}

// NewEmptyHistogram is a histogram with all zero counts
func NewEmptyHistogram(bins int) (*model.Histogram, error) {
	hist, err := model.NewHistogram("chain", bins)
	if err != nil {
		return nil, errors.Wrap(err, "Could not create chain histogram")
	}
	hist.Reset()
	return hist, nil
}

// BurnIn draws and discards n samples
func (c *Chain) BurnIn(n int64) error {
	for i := int64(0); i < n; i++ {
		if err := c.oneSample(false); err != nil {
			return errors.Wrap(err, "Failure during chain burn in")
		}
	}
	return nil
}

// AdvanceChain asynchonously generates samples until a full convergence
// window of new samples has been recorded or ctx is done. Call Err after
// wg.Wait to see whether the run failed.
func (c *Chain) AdvanceChain(ctx context.Context, wg *sync.WaitGroup) {
	target := c.History.TotalSeen + int64(c.ConvergenceWindow)
	c.err = nil

	wg.Add(1)
	go func() {
		defer wg.Done()

		// Check for cancellation in batches rather than every draw
		const batchSize = 256

		for c.History.TotalSeen < target {
			if err := ctx.Err(); err != nil {
				c.err = errors.Wrap(err, "Chain stopped")
				return
			}
			for i := 0; i < batchSize && c.History.TotalSeen < target; i++ {
				if err := c.oneSample(true); err != nil {
					c.err = err
					return
				}
			}
		}
	}()
}

// Err is the error from the last AdvanceChain (nil on success)
func (c *Chain) Err() error {
	return c.err
}

// oneSample takes a single sample and optionally updates the chain state.
func (c *Chain) oneSample(updateState bool) error {
	p, err := c.Sampler.Sample()
	if err != nil {
		return errors.Wrap(err, "Error taking sample")
	}
	c.LastSample = p

	if updateState {
		if err := c.Hist.Add(p); err != nil {
			return errors.Wrap(err, "Invalid sample")
		}
		c.History.Add(p)
		c.TotalSampleCount++
	}

	return nil
}

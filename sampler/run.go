package sampler

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/CraigKelly/betaflip/model"
	"github.com/CraigKelly/betaflip/rand"
)

// Result is the state of a sampling run after a round
type Result struct {
	RunID      string
	Round      int
	Chains     []*Chain
	Merged     *model.Histogram  // Normalized posterior estimate over all chains
	Solution   *model.Solution   // Exact answer the chains are scored against
	Score      *model.ErrorSuite // Per chain histograms vs the solution
	RHat       float64           // NaN with a single chain, which then runs MaxRounds
	HalfDiff   []float64         // Per chain Hellinger between window halves
	MaxHalf    float64           // Largest HalfDiff
	Mean       float64           // Mean of the latest window over all chains
	Acceptance float64           // Mean acceptance rate of the latest round
	Samples    int64             // Recorded samples over all chains
	Elapsed    time.Duration
	Converged  bool
}

// Runner samples the posterior of a coin experiment with independent
// Metropolis chains and scores the result against the closed form posterior.
type Runner struct {
	Config  *Config
	Coin    *model.Coin
	Logger  *zap.Logger
	Adapter Adapter       // Tunes chains between burn in rounds
	OnRound func(*Result) // Optional, called after every recording round
}

// NewRunner creates a runner. A nil logger is replaced with a no-op logger.
func NewRunner(cfg *Config, coin *model.Coin, logger *zap.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Check(); err != nil {
		return nil, errors.Wrap(err, "Invalid sampler config")
	}
	if coin == nil {
		return nil, errors.New("No coin experiment supplied")
	}
	if err := coin.Check(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	adapter, err := NewAdapter(cfg)
	if err != nil {
		return nil, err
	}

	return &Runner{Config: cfg, Coin: coin, Logger: logger, Adapter: adapter}, nil
}

// Run performs burn in (with step adaptation), then records rounds of
// Config.Window samples per chain until R-hat reaches the target or
// MaxRounds is hit. Every round is scored against the exact solution.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	cfg := r.Config
	start := time.Now()
	runID := uuid.New().String()
	logger := r.Logger.With(zap.String("run", runID))

	sol, err := model.NewSolution(r.Coin, cfg.Bins)
	if err != nil {
		return nil, err
	}

	chains := make([]*Chain, cfg.Chains)
	gens := make([]*rand.Generator, 0, cfg.Chains)
	defer func() {
		for _, g := range gens {
			g.Close()
		}
	}()

	for i := range chains {
		gen, err := rand.NewGenerator(cfg.Seed + int64(i))
		if err != nil {
			return nil, err
		}
		gens = append(gens, gen)

		// Spread starting points over (0,1) so R-hat means something
		startP := float64(i+1) / float64(cfg.Chains+1)
		samp, err := NewMetropolis(gen, r.Coin, startP, cfg.Step)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not start chain %d", i)
		}

		chains[i], err = NewChain(samp, cfg.Bins, cfg.Window, 0)
		if err != nil {
			return nil, err
		}
	}

	adapter := r.Adapter
	if adapter == nil {
		if adapter, err = NewAdapter(cfg); err != nil {
			return nil, err
		}
	}
	for a := 0; a < cfg.AdaptRounds; a++ {
		for _, ch := range chains {
			if err := ch.BurnIn(cfg.BurnIn); err != nil {
				return nil, err
			}
		}
		if chains, err = adapter.Adapt(chains); err != nil {
			return nil, err
		}
	}
	// Plain burn in with the final step
	for _, ch := range chains {
		if err := ch.BurnIn(cfg.BurnIn); err != nil {
			return nil, err
		}
		if m, ok := ch.Sampler.(*Metropolis); ok {
			m.ResetStats()
		}
	}

	logger.Info("burn in complete",
		zap.Int("chains", len(chains)),
		zap.Int64("burnIn", cfg.BurnIn*int64(cfg.AdaptRounds+1)),
		zap.Float64("step", stepOf(chains[0])),
	)

	var res *Result
	for round := 1; round <= cfg.MaxRounds; round++ {
		wg := sync.WaitGroup{}
		for _, ch := range chains {
			ch.AdvanceChain(ctx, &wg)
		}
		wg.Wait()

		for i, ch := range chains {
			if err := ch.Err(); err != nil {
				return nil, errors.Wrapf(err, "Chain %d failed in round %d", i, round)
			}
		}

		res, err = r.score(sol, chains)
		if err != nil {
			return nil, err
		}
		res.RunID = runID
		res.Round = round
		res.Elapsed = time.Since(start)
		res.Converged = res.RHat <= cfg.RHatTarget

		logger.Debug("round complete",
			zap.Int("round", round),
			zap.Float64("rhat", res.RHat),
			zap.Float64("maxHalf", res.MaxHalf),
			zap.Float64("mean", res.Mean),
			zap.Float64("maxHellinger", res.Score.MaxHellinger),
			zap.Float64("acceptance", res.Acceptance),
		)

		if r.OnRound != nil {
			r.OnRound(res)
		}

		if res.Converged {
			break
		}

		for _, ch := range chains {
			if m, ok := ch.Sampler.(*Metropolis); ok {
				m.ResetStats()
			}
		}
	}

	logger.Info("sampling complete",
		zap.Int("rounds", res.Round),
		zap.Bool("converged", res.Converged),
		zap.Int64("samples", res.Samples),
		zap.Duration("elapsed", res.Elapsed),
	)

	return res, nil
}

func (r *Runner) score(sol *model.Solution, chains []*Chain) (*Result, error) {
	hists := make([]*model.Histogram, len(chains))
	var samples int64
	var accept float64
	for i, ch := range chains {
		hists[i] = ch.Hist
		samples += ch.TotalSampleCount
		if m, ok := ch.Sampler.(*Metropolis); ok {
			accept += m.AcceptanceRate()
		}
	}

	score, err := sol.Error(hists)
	if err != nil {
		return nil, errors.Wrap(err, "Could not score chains")
	}

	merged, err := MergeChains(chains)
	if err != nil {
		return nil, err
	}
	if err := merged.NormMarginal(); err != nil {
		return nil, err
	}

	halves, err := ChainConvergence(chains, model.HellingerDiff)
	if err != nil {
		return nil, err
	}

	rhat := math.NaN()
	if len(chains) > 1 {
		if rhat, err = RHat(chains); err != nil {
			return nil, err
		}
	}

	return &Result{
		Chains:     chains,
		Merged:     merged,
		Solution:   sol,
		Score:      score,
		RHat:       rhat,
		HalfDiff:   halves,
		MaxHalf:    floats.Max(halves),
		Mean:       WindowMean(chains),
		Acceptance: accept / float64(len(chains)),
		Samples:    samples,
	}, nil
}

func stepOf(ch *Chain) float64 {
	if m, ok := ch.Sampler.(*Metropolis); ok {
		return m.Step
	}
	return 0
}

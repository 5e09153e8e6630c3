package cmd

import (
	"log"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/betaflip/model"
	"github.com/CraigKelly/betaflip/sampler"
)

const (
	chainsFlag  = "chains"
	windowFlag  = "window"
	burnInFlag  = "burnin"
	binsFlag    = "bins"
	roundsFlag  = "rounds"
	stepFlag    = "step"
	rhatFlag    = "rhat"
	adaptFlag   = "adapt"
	monitorFlag = "monitor"
	verboseFlag = "verbose"
)

var checkCmd = &cobra.Command{
	Use:   "check [flip files...]",
	Short: "Sample the posterior with Metropolis chains and score it against the closed form",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()

		return CheckOutput(sp, cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addInputFlags(checkCmd, 100)
	addCheckFlags(checkCmd)
}

func addCheckFlags(cmd *cobra.Command) {
	def := sampler.NewDefaultConfig()
	f := cmd.Flags()
	f.Int(chainsFlag, def.Chains, "Independent chains to run")
	f.Int(windowFlag, def.Window, "Samples recorded per chain each round")
	f.Int64(burnInFlag, def.BurnIn, "Burn in samples per chain for each adapt round")
	f.Int(binsFlag, def.Bins, "Histogram bins over [0,1]")
	f.Int(roundsFlag, def.MaxRounds, "Maximum recording rounds")
	f.Float64(stepFlag, def.Step, "Initial proposal std dev")
	f.Float64(rhatFlag, def.RHatTarget, "Stop once R-hat is at or below this")
	f.Bool(adaptFlag, def.Adapt, "Tune the proposal step during burn in")
	f.String(monitorFlag, "", "Serve progress over HTTP on this address (like :8000)")
	f.BoolP(verboseFlag, "v", false, "Print every round and the histograms")
}

// checkConfig builds the sampler config from flags
func checkConfig(sp *startupParams, cmd *cobra.Command) (*sampler.Config, error) {
	f := cmd.Flags()
	chains, err := f.GetInt(chainsFlag)
	if err != nil {
		return nil, err
	}
	window, err := f.GetInt(windowFlag)
	if err != nil {
		return nil, err
	}
	burnIn, err := f.GetInt64(burnInFlag)
	if err != nil {
		return nil, err
	}
	bins, err := f.GetInt(binsFlag)
	if err != nil {
		return nil, err
	}
	rounds, err := f.GetInt(roundsFlag)
	if err != nil {
		return nil, err
	}
	step, err := f.GetFloat64(stepFlag)
	if err != nil {
		return nil, err
	}
	rhat, err := f.GetFloat64(rhatFlag)
	if err != nil {
		return nil, err
	}
	adapt, err := f.GetBool(adaptFlag)
	if err != nil {
		return nil, err
	}

	cfg := sampler.NewDefaultConfig().
		WithChains(chains).
		WithWindow(window).
		WithBurnIn(burnIn).
		WithBins(bins).
		WithMaxRounds(rounds).
		WithStep(step).
		WithRHatTarget(rhat).
		WithAdapt(adapt).
		WithSeed(sp.randomSeed)
	return cfg, cfg.Check()
}

// CheckOutput runs the Metropolis cross check on the observed flips and
// reports how far the sampled posterior is from the exact one.
func CheckOutput(sp *startupParams, cmd *cobra.Command, files []string) error {
	cfg, err := checkConfig(sp, cmd)
	if err != nil {
		return errors.Wrap(err, "Invalid sampler settings")
	}
	verbose, err := cmd.Flags().GetBool(verboseFlag)
	if err != nil {
		return err
	}
	monitorAddr, err := cmd.Flags().GetString(monitorFlag)
	if err != nil {
		return err
	}

	obs, source, err := readObservations(sp, cmd, files)
	if err != nil {
		return err
	}
	coin, err := model.NewCoin(source, sp.prior)
	if err != nil {
		return err
	}
	coin.Add(obs)
	sp.out.Printf("Checking %d flips (%d heads, %d tails) from %s\n", coin.Flips(), coin.Heads, coin.Tails, source)

	// Baseline: what a flat histogram scores
	sol, err := model.NewSolution(coin, cfg.Bins)
	if err != nil {
		return err
	}
	flat, err := model.NewHistogram("flat", cfg.Bins)
	if err != nil {
		return err
	}
	flatScore, err := sol.Error([]*model.Histogram{flat})
	if err != nil {
		return errors.Wrap(err, "Error calculating baseline score")
	}
	errorReport(sp, "ASSUME A UNIFORM POSTERIOR", flatScore, false, sp.out)

	runner, err := sampler.NewRunner(cfg, coin, sp.logger)
	if err != nil {
		return err
	}

	var mon *monitor
	if len(monitorAddr) > 0 {
		mon = newMonitor(sp.logger)
		if err := mon.Start(monitorAddr); err != nil {
			return err
		}
		defer mon.Stop()
		mon.Configure(cfg)
		sp.out.Printf("HTTP now available at %v (see /debug/vars and /posterior)\n", mon.Addr())
	}

	runner.OnRound = func(res *sampler.Result) {
		if mon != nil {
			mon.Update(res)
		}
		sp.trace.Printf("%d\t%d\t%.6f\t%.6f\t%.6f\t%.6f\t%.6f\n",
			res.Round, res.Samples, res.RHat, res.Mean, res.Score.MaxHellinger, res.MaxHalf, res.Acceptance)
		if verbose {
			errorReport(sp, "ROUND", res.Score, false, sp.out)
		}
	}

	res, err := runner.Run(cmdContext(cmd))
	if err != nil {
		return err
	}

	errorReport(sp, "FINAL", res.Score, verbose, sp.out)
	sp.out.Printf("Rounds:     %d (converged: %v)\n", res.Round, res.Converged)
	sp.out.Printf("Samples:    %d\n", res.Samples)
	sp.out.Printf("R-hat:      %8.5f\n", res.RHat)
	sp.out.Printf("Acceptance: %8.5f\n", res.Acceptance)
	sp.out.Printf("Mean:       %8.5f sampled, %8.5f exact\n", res.Mean, res.Solution.Posterior.Mean())

	if verbose {
		sp.out.Printf("Half diff:  %8.5f (max %8.5f)\n", res.HalfDiff, res.MaxHalf)
		sp.out.Printf("SAMPLED : %8.5f\n", res.Merged.Marginal)
		sp.out.Printf("SOLUTION: %8.5f\n", res.Solution.Hist.Marginal)
	}

	sp.logger.Info("check complete",
		zap.String("run", res.RunID),
		zap.Float64("maxHellinger", res.Score.MaxHellinger),
		zap.Float64("meanError", math.Abs(res.Mean-res.Solution.Posterior.Mean())),
	)
	return nil
}

// errorReport writes one line of -log2 scores (bigger is better). Verbose
// adds the raw mean and max values.
func errorReport(sp *startupParams, title string, score *model.ErrorSuite, verbose bool, out *log.Logger) {
	if score == nil {
		return
	}
	if out == nil {
		out = sp.out
	}

	out.Printf(
		"%-26s NLog | MeanAE:%7.3f MaxAE:%7.3f Hel:%7.3f JSD:%7.3f\n",
		title,
		-math.Log2(score.MaxMeanAbsError),
		-math.Log2(score.MaxMaxAbsError),
		-math.Log2(score.MaxHellinger),
		-math.Log2(score.MaxJSDiverge),
	)

	if verbose {
		out.Printf("  Mean | MeanAE:%8.5f MaxAE:%8.5f Hel:%8.5f JSD:%8.5f\n",
			score.MeanMeanAbsError, score.MeanMaxAbsError, score.MeanHellinger, score.MeanJSDiverge)
		out.Printf("  Max  | MeanAE:%8.5f MaxAE:%8.5f Hel:%8.5f JSD:%8.5f\n",
			score.MaxMeanAbsError, score.MaxMaxAbsError, score.MaxHellinger, score.MaxJSDiverge)
	}
}

package cmd

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/betaflip/belief"
)

const everyFlag = "every"

var replayCmd = &cobra.Command{
	Use:   "replay [flip files...]",
	Short: "Show the belief after each flip of a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()

		every, err := cmd.Flags().GetInt(everyFlag)
		if err != nil {
			return err
		}
		return ReplayOutput(cmdContext(cmd), sp, cmd, args, every)
	},
}

func init() {
	rootCmd.AddCommand(replayCmd)
	addInputFlags(replayCmd, 100)
	replayCmd.Flags().Int(everyFlag, 10, "Print every k-th frame (the last frame is always printed)")
}

// ReplayOutput computes the belief after every prefix of the observations
// and prints a summary table. Every frame goes to the trace file as TSV.
func ReplayOutput(ctx context.Context, sp *startupParams, cmd *cobra.Command, files []string, every int) error {
	if every < 1 {
		return errors.Errorf("--%s must be at least 1, got %d", everyFlag, every)
	}

	obs, source, err := readObservations(sp, cmd, files)
	if err != nil {
		return err
	}

	start := time.Now()
	frames, err := belief.Replay(ctx, sp.prior, obs, sp.workers)
	if err != nil {
		return errors.Wrap(err, "Replay failed")
	}
	elapsed := time.Since(start)

	heads, tails := countHeads(obs)
	sp.out.Printf("Replaying %d flips (%d heads, %d tails) from %s\n", len(obs), heads, tails, source)
	sp.out.Printf("%6s %6s %9s %9s %9s %9s\n", "n", "heads", "mean", "var", "lo95", "hi95")

	sp.trace.Printf("n\theads\talpha\tbeta\tmean\tvariance\n")

	seen := 0
	for i, b := range frames {
		if i > 0 && obs[i-1] {
			seen++
		}
		sp.trace.Printf("%d\t%d\t%g\t%g\t%.8f\t%.8f\n", i, seen, b.Alpha, b.Beta, b.Mean(), b.Variance())

		if i%every != 0 && i != len(frames)-1 {
			continue
		}
		lo, hi, err := b.CredibleInterval(0.95)
		if err != nil {
			return err
		}
		sp.out.Printf("%6d %6d %9.5f %9.6f %9.5f %9.5f\n", i, seen, b.Mean(), b.Variance(), lo, hi)
	}

	sp.logger.Info("replay complete",
		zap.Int("frames", len(frames)),
		zap.Int("workers", sp.workers),
		zap.Duration("elapsed", elapsed),
	)
	return nil
}

package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/betaflip/belief"
	"github.com/CraigKelly/betaflip/model"
)

var updateCmd = &cobra.Command{
	Use:   "update [flip files...]",
	Short: "Update the prior with observed flips and summarize the posterior",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()

		coin, err := UpdateFromInput(sp, cmd, args)
		if err != nil {
			return err
		}
		return beliefReport(sp, coin)
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	addInputFlags(updateCmd, 0)
}

// UpdateFromInput counts flips from every file argument plus --flips against
// the prior. With no input at all it simulates --n flips.
func UpdateFromInput(sp *startupParams, cmd *cobra.Command, files []string) (*model.Coin, error) {
	coin, err := model.NewCoin("betaflip", sp.prior)
	if err != nil {
		return nil, err
	}

	reader := model.TokenReader{}
	for _, fn := range files {
		fileCoin, err := model.NewCoinFromFile(reader, fn, sp.prior)
		if err != nil {
			return nil, err
		}
		sp.logger.Debug("counted flips",
			zap.String("file", fn),
			zap.Int("heads", fileCoin.Heads),
			zap.Int("tails", fileCoin.Tails),
		)
		coin.Heads += fileCoin.Heads
		coin.Tails += fileCoin.Tails
		coin.Name = fileCoin.Name
	}

	flips, err := cmd.Flags().GetString(flipsFlag)
	if err != nil {
		return nil, err
	}
	if len(files) < 1 || len(flips) > 0 {
		// Inline flips, or a simulation when there is nothing else
		obs, source, err := readObservations(sp, cmd, nil)
		if err != nil {
			return nil, err
		}
		coin.Add(obs)
		if len(files) < 1 {
			coin.Name = source
		}
	}

	return coin, nil
}

// beliefReport prints the prior, the evidence, and posterior summaries
func beliefReport(sp *startupParams, coin *model.Coin) error {
	post, err := coin.Posterior()
	if err != nil {
		return errors.Wrap(err, "Could not compute posterior")
	}

	sp.out.Printf("Source:    %s\n", coin.Name)
	sp.out.Printf("Prior:     Beta(%g, %g)\n", coin.Prior.Alpha, coin.Prior.Beta)
	sp.out.Printf("Flips:     %d (%d heads, %d tails)\n", coin.Flips(), coin.Heads, coin.Tails)
	sp.out.Printf("Posterior: Beta(%g, %g)\n", post.Alpha, post.Beta)
	sp.out.Printf("Mean:      %8.5f\n", post.Mean())
	sp.out.Printf("Variance:  %8.5f\n", post.Variance())
	sp.out.Printf("StdDev:    %8.5f\n", post.StdDev())

	if mode, err := post.Mode(); err == nil {
		sp.out.Printf("Mode:      %8.5f\n", mode)
	} else if !belief.IsDomain(err) {
		return err
	}

	lo, hi, err := post.CredibleInterval(0.95)
	if err != nil {
		return err
	}
	sp.out.Printf("95%% CI:    [%.5f, %.5f]\n", lo, hi)

	sp.logger.Info("posterior",
		zap.Float64("alpha", post.Alpha),
		zap.Float64("beta", post.Beta),
		zap.Float64("mean", post.Mean()),
	)
	return nil
}

package cmd

import (
	"context"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CraigKelly/betaflip/model"
	"github.com/CraigKelly/betaflip/rand"
)

// Observations come from files named as arguments, from --flips, or (when
// neither is given) from simulating --n flips of a coin with P(heads)=--p.
const (
	flipsFlag = "flips"
	probFlag  = "p"
	countFlag = "n"
)

func addInputFlags(cmd *cobra.Command, defaultN int) {
	cmd.Flags().StringP(flipsFlag, "f", "", "Inline flips, like HHTHT or 1,0,1")
	cmd.Flags().Float64(probFlag, 0.5, "P(heads) when simulating flips")
	cmd.Flags().Int(countFlag, defaultN, "Number of flips to simulate when no flips are given")
}

// readObservations returns the ordered observations for a command and a
// short description of where they came from
func readObservations(sp *startupParams, cmd *cobra.Command, files []string) ([]bool, string, error) {
	reader := model.TokenReader{}
	obs := make([]bool, 0)
	source := ""

	for _, fn := range files {
		data, err := ioutil.ReadFile(fn)
		if err != nil {
			return nil, "", errors.Wrapf(err, "Could not READ observations from %s", fn)
		}
		fileObs, err := reader.ReadObservations(data)
		if err != nil {
			return nil, "", errors.Wrapf(err, "Could not PARSE observations in %s", fn)
		}
		sp.logger.Debug("read observations", zap.String("file", fn), zap.Int("count", len(fileObs)))
		obs = append(obs, fileObs...)
		source = fn
	}

	flips, err := cmd.Flags().GetString(flipsFlag)
	if err != nil {
		return nil, "", err
	}
	if len(flips) > 0 {
		inline, err := reader.ReadObservations([]byte(flips))
		if err != nil {
			return nil, "", errors.Wrap(err, "Could not PARSE --flips")
		}
		obs = append(obs, inline...)
		source = "inline"
	}

	if len(files) > 1 {
		source = "files"
	}
	if len(files) > 0 || len(flips) > 0 {
		return obs, source, nil
	}

	p, err := cmd.Flags().GetFloat64(probFlag)
	if err != nil {
		return nil, "", err
	}
	n, err := cmd.Flags().GetInt(countFlag)
	if err != nil {
		return nil, "", err
	}

	gen, err := rand.NewGenerator(sp.randomSeed)
	if err != nil {
		return nil, "", err
	}
	defer gen.Close()

	obs, err = model.Simulate(gen, p, n)
	if err != nil {
		return nil, "", err
	}
	return obs, "simulated", nil
}

func countHeads(obs []bool) (heads int, tails int) {
	for _, o := range obs {
		if o {
			heads++
		}
	}
	return heads, len(obs) - heads
}

// cmdContext is the command context, or a background context when the
// command was not started through Execute
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

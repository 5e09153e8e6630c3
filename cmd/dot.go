package cmd

import (
	"log"

	"github.com/spf13/cobra"
)

var dotCmd = &cobra.Command{
	Use:   "dot [flip files...]",
	Short: "Output a graphviz description of the coin model",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()

		return DotOutput(sp, cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(dotCmd)
	addInputFlags(dotCmd, 0)
}

// DotOutput reads the flips and outputs a graphviz description of the
// model: the prior hyperparameters, the coin bias, and the observed flips.
// The graph goes to the trace file when there is one.
func DotOutput(sp *startupParams, cmd *cobra.Command, files []string) error {
	coin, err := UpdateFromInput(sp, cmd, files)
	if err != nil {
		return err
	}
	post, err := coin.Posterior()
	if err != nil {
		return err
	}

	var target *log.Logger
	if len(sp.traceFile) > 0 {
		sp.out.Printf("Writing model to trace file %v\n", sp.traceFile)
		target = sp.trace
	} else {
		target = sp.out
	}

	target.Printf("digraph G {\n")
	target.Printf("    rankdir=LR;\n")
	target.Printf("    alpha [shape=box, label=\"alpha=%g\"];\n", coin.Prior.Alpha)
	target.Printf("    beta [shape=box, label=\"beta=%g\"];\n", coin.Prior.Beta)
	target.Printf("    p [label=\"p ~ Beta(%g, %g)\\nmean=%.4f\"];\n", post.Alpha, post.Beta, post.Mean())
	target.Printf("    flips [shape=doublecircle, label=\"%d flips\\n%d H / %d T\"];\n", coin.Flips(), coin.Heads, coin.Tails)
	target.Printf("    alpha -> p;\n")
	target.Printf("    beta -> p;\n")
	target.Printf("    p -> flips [label=\"Bernoulli\"];\n")
	target.Printf("}\n")

	return nil
}

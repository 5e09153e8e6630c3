package cmd

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/CraigKelly/betaflip/belief"
)

const (
	outFlag    = "out"
	framesFlag = "frames"

	plotPoints = 401
)

var plotCmd = &cobra.Command{
	Use:   "plot [flip files...]",
	Short: "Plot the prior, intermediate beliefs, and posterior densities",
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := newStartupParams(cmd)
		if err != nil {
			return err
		}
		defer sp.Close()

		out, err := cmd.Flags().GetString(outFlag)
		if err != nil {
			return err
		}
		frames, err := cmd.Flags().GetInt(framesFlag)
		if err != nil {
			return err
		}
		return PlotOutput(sp, cmd, args, out, frames)
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	addInputFlags(plotCmd, 100)
	plotCmd.Flags().StringP(outFlag, "o", "belief.png", "Output image (extension picks the format)")
	plotCmd.Flags().Int(framesFlag, 2, "Intermediate beliefs to draw between prior and posterior")
}

// PlotOutput draws the prior, the posterior, and evenly spaced intermediate
// beliefs to filename.
func PlotOutput(sp *startupParams, cmd *cobra.Command, files []string, filename string, frames int) error {
	if frames < 0 {
		return errors.Errorf("--%s must not be negative, got %d", framesFlag, frames)
	}

	obs, source, err := readObservations(sp, cmd, files)
	if err != nil {
		return err
	}

	all, err := belief.Replay(cmdContext(cmd), sp.prior, obs, sp.workers)
	if err != nil {
		return err
	}

	picks := pickFrames(len(all), frames)
	beliefs := make([]belief.Belief, len(picks))
	labels := make([]string, len(picks))
	for i, idx := range picks {
		b := all[idx]
		beliefs[i] = b
		switch {
		case idx == 0:
			labels[i] = fmt.Sprintf("prior Beta(%g,%g)", b.Alpha, b.Beta)
		case idx == len(all)-1:
			labels[i] = fmt.Sprintf("posterior Beta(%g,%g)", b.Alpha, b.Beta)
		default:
			labels[i] = fmt.Sprintf("after %d flips", idx)
		}
	}

	title := fmt.Sprintf("%d flips from %s", len(obs), source)
	if err := renderBeliefs(beliefs, labels, title, filename); err != nil {
		return err
	}

	sp.out.Printf("Wrote %d densities to %s\n", len(beliefs), filename)
	sp.logger.Debug("plot written", zap.String("file", filename), zap.Ints("frames", picks))
	return nil
}

// pickFrames returns sorted, distinct frame indexes: the first, the last,
// and up to k evenly spaced in between
func pickFrames(total int, k int) []int {
	if total < 1 {
		return nil
	}
	picks := []int{0}
	last := total - 1
	for i := 1; i <= k; i++ {
		idx := int(math.Round(float64(i) * float64(last) / float64(k+1)))
		if idx > picks[len(picks)-1] && idx < last {
			picks = append(picks, idx)
		}
	}
	if last > 0 {
		picks = append(picks, last)
	}
	return picks
}

// renderBeliefs saves one density curve per belief. Points where the
// density is not finite (the edges for alpha or beta < 1) are dropped.
func renderBeliefs(beliefs []belief.Belief, labels []string, title string, filename string) error {
	if len(beliefs) != len(labels) {
		return errors.Errorf("Have %d beliefs but %d labels", len(beliefs), len(labels))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "P(heads)"
	p.Y.Label.Text = "density"
	p.X.Min = 0
	p.X.Max = 1
	p.Add(plotter.NewGrid())

	for i, b := range beliefs {
		ps, dens, err := b.Grid(plotPoints)
		if err != nil {
			return errors.Wrapf(err, "Could not plot %s", labels[i])
		}

		points := make(plotter.XYs, 0, len(ps))
		for j, x := range ps {
			y := dens[j]
			if math.IsInf(y, 0) || math.IsNaN(y) {
				continue
			}
			points = append(points, plotter.XY{X: x, Y: y})
		}

		line, err := plotter.NewLine(points)
		if err != nil {
			return errors.Wrapf(err, "Could not create line for %s", labels[i])
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		line.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(labels[i], line)
	}
	p.Legend.Top = true

	if err := p.Save(8*vg.Inch, 5*vg.Inch, filename); err != nil {
		return errors.Wrapf(err, "Could not save plot to %s", filename)
	}
	return nil
}

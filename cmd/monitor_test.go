package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CraigKelly/betaflip/belief"
	"github.com/CraigKelly/betaflip/model"
	"github.com/CraigKelly/betaflip/sampler"
)

func getJSON(t *testing.T, url string, target interface{}) int {
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
	}
	return resp.StatusCode
}

func TestMonitor(t *testing.T) {
	assert := assert.New(t)

	mon := newMonitor(nil)
	mon.Stop() // not started is fine
	assert.Equal("", mon.Addr())

	require.NoError(t, mon.Start("127.0.0.1:0"))
	defer mon.Stop()
	assert.Error(mon.Start("127.0.0.1:0"))

	base := "http://" + mon.Addr()

	var info posteriorInfo
	assert.Equal(http.StatusServiceUnavailable, getJSON(t, base+"/posterior", &info))

	mon.Configure(sampler.NewDefaultConfig().WithChains(3))

	coin, err := model.NewCoin("mon", belief.Uniform())
	require.NoError(t, err)
	coin.Heads, coin.Tails = 4, 6
	sol, err := model.NewSolution(coin, 4)
	require.NoError(t, err)
	merged, err := model.NewHistogram("merged", 4)
	require.NoError(t, err)

	mon.Update(&sampler.Result{
		RunID:      "run-1",
		Round:      3,
		Merged:     merged,
		Solution:   sol,
		Score:      &model.ErrorSuite{MaxHellinger: 0.25},
		RHat:       1.02,
		Mean:       0.41,
		Acceptance: 0.5,
		HalfDiff:   []float64{0.01, 0.03, 0.02},
		MaxHalf:    0.03,
		Samples:    1200,
		Elapsed:    1500 * time.Millisecond,
	})

	// Following the redirect from / lands on the vars
	vars := map[string]interface{}{}
	assert.Equal(http.StatusOK, getJSON(t, base+"/", &vars))
	assert.Equal(3.0, vars["Chain-Count"])
	assert.Equal(3.0, vars["Rounds"])
	assert.Equal(1200.0, vars["Total-Samples"])
	assert.Equal(1.5, vars["Run-Time"])
	assert.Equal(1.02, vars["R-Hat"])
	assert.Equal(0.25, vars["Last-Max-Hellinger"])
	assert.Equal(0.03, vars["Max-Half-Hellinger"])

	assert.Equal(http.StatusOK, getJSON(t, base+"/posterior", &info))
	assert.Equal("run-1", info.RunID)
	assert.Equal(3, info.Round)
	assert.Equal(5.0, info.Alpha)
	assert.Equal(7.0, info.Beta)
	assert.InDelta(5.0/12.0, info.ExactMean, 1e-12)
	assert.Equal(0.41, info.SampledMean)
	assert.Len(info.Exact, 4)
	assert.Equal([]float64{0.25, 0.25, 0.25, 0.25}, info.Sampled)
	assert.Equal([]float64{0.01, 0.03, 0.02}, info.HalfDiff)

	// A single chain run has no R-hat and must not break the JSON
	mon.Update(&sampler.Result{Round: 4, RHat: math.NaN()})
	vars = map[string]interface{}{}
	assert.Equal(http.StatusOK, getJSON(t, base+"/debug/vars", &vars))
	assert.Equal(4.0, vars["Rounds"])
	assert.Equal(1.02, vars["R-Hat"])
}

func testCheckCommand(t *testing.T, args ...string) *cobra.Command {
	c := &cobra.Command{Use: "check"}
	addInputFlags(c, 100)
	addCheckFlags(c)
	require.NoError(t, c.Flags().Parse(args))
	return c
}

func TestCheckOutput(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	trace := &bytes.Buffer{}
	sp := testParams(belief.Uniform(), out)
	sp.trace.SetOutput(trace)

	c := testCheckCommand(t,
		"--flips", "HHHTTTTTTT",
		"--chains", "3",
		"--window", "2000",
		"--burnin", "200",
		"--bins", "5",
		"--rounds", "3",
		"--monitor", "127.0.0.1:0",
		"-v",
	)
	require.NoError(t, CheckOutput(sp, c, nil))

	text := out.String()
	assert.Contains(text, "Checking 10 flips (3 heads, 7 tails) from inline")
	assert.Contains(text, "ASSUME A UNIFORM POSTERIOR")
	assert.Contains(text, "FINAL")
	assert.Contains(text, "HTTP now available at 127.0.0.1:")
	assert.Contains(text, "0.33333 exact")
	assert.Contains(text, "SOLUTION:")
	assert.Contains(text, "Half diff:")
	assert.NotEmpty(trace.String())

	// Without adaptation the proposal step is never changed
	out.Reset()
	fixed := testCheckCommand(t,
		"--flips", "HHHTTTTTTT",
		"--chains", "2",
		"--window", "500",
		"--rounds", "1",
		"--adapt=false",
	)
	cfg, err := checkConfig(sp, fixed)
	require.NoError(t, err)
	assert.False(cfg.Adapt)
	require.NoError(t, CheckOutput(sp, fixed, nil))
	assert.Contains(out.String(), "FINAL")
	assert.NotContains(out.String(), "Half diff:")

	bad := testCheckCommand(t, "--flips", "HT", "--chains", "0")
	assert.Error(CheckOutput(sp, bad, nil))
}

func TestErrorReport(t *testing.T) {
	assert := assert.New(t)

	out := &bytes.Buffer{}
	sp := testParams(belief.Uniform(), out)
	score := &model.ErrorSuite{
		MaxMeanAbsError: 0.5,
		MaxMaxAbsError:  0.25,
		MaxHellinger:    0.125,
		MaxJSDiverge:    0.0625,
	}

	errorReport(sp, "T", nil, true, nil)
	assert.Empty(out.String())

	errorReport(sp, "T", score, false, nil)
	assert.Contains(out.String(), "MeanAE:  1.000 MaxAE:  2.000 Hel:  3.000 JSD:  4.000")

	out.Reset()
	errorReport(sp, "T", score, true, sp.out)
	assert.Equal(3, bytes.Count(out.Bytes(), []byte("\n")))
}

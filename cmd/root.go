package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CraigKelly/betaflip/belief"
)

const (
	envVarPrefix   = "BETAFLIP"
	defaultEnvFile = ".env"

	alphaFlag    = "alpha"
	betaFlag     = "beta"
	seedFlag     = "seed"
	logLevelFlag = "logLevel"
	traceFlag    = "trace"
	workersFlag  = "workers"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "betaflip",
	Short: "Bayesian coin flipping with a conjugate Beta prior",
	Long: `betaflip keeps a Beta belief about the probability of heads and
updates it in closed form as flips are observed.
Among other features:

  - Posterior summaries from flip files or inline flips (update)
  - The belief after every flip of a simulated run (replay)
  - Density plots of prior and posterior (plot)
  - A Metropolis sampler scored against the exact posterior (check)
  - A graphviz view of the model (dot)
`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.betaflip.yaml)")
	pf.Float64P(alphaFlag, "a", 1.0, "Prior pseudo-count of heads (alpha > 0)")
	pf.Float64P(betaFlag, "b", 1.0, "Prior pseudo-count of tails (beta > 0)")
	pf.Int64P(seedFlag, "r", 1, "Random seed to use")
	pf.StringP(logLevelFlag, "l", zap.InfoLevel.String(), "log level")
	pf.StringP(traceFlag, "t", "", "Optional trace file for detailed output")
	pf.IntP(workersFlag, "w", 0, "Worker goroutines (0 is one per CPU)")

	viper.SetEnvPrefix(envVarPrefix) // look for env vars with "BETAFLIP_" prefix
	viper.AutomaticEnv()             // read in environment variables that match
	if err := viper.BindPFlags(pf); err != nil {
		panic(err)
	}
}

// initConfig reads in a .env file, the config file, and ENV variables if set.
func initConfig() {
	if err := loadEnvFile(os.Getenv(envVarPrefix + "_ENV")); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(".betaflip")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Could not read config file %s: %v\n", cfgFile, err)
	}
}

// loadEnvFile loads name into the environment. An empty name means the
// default .env, which may be missing; a named file must exist.
func loadEnvFile(name string) error {
	if name == "" {
		err := godotenv.Load(defaultEnvFile)
		if err == nil || os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "Could not read %s", defaultEnvFile)
	}
	if err := godotenv.Load(name); err != nil {
		return errors.Wrapf(err, "Could not read env file %s", name)
	}
	return nil
}

// startupParams is everything a command needs that comes from flags, env,
// or config
type startupParams struct {
	prior      belief.Belief
	randomSeed int64
	workers    int
	traceFile  string

	out    *log.Logger // command output
	trace  *log.Logger // detailed output, discarded without a trace file
	logger *zap.Logger

	traceCloser io.Closer
}

func newStartupParams(cmd *cobra.Command) (*startupParams, error) {
	prior, err := belief.New(viper.GetFloat64(alphaFlag), viper.GetFloat64(betaFlag))
	if err != nil {
		return nil, errors.Wrap(err, "Invalid prior")
	}

	var ll zapcore.Level
	if err := ll.Set(viper.GetString(logLevelFlag)); err != nil {
		return nil, errors.Wrapf(err, "Invalid log level %q", viper.GetString(logLevelFlag))
	}

	sp := &startupParams{
		prior:      prior,
		randomSeed: viper.GetInt64(seedFlag),
		workers:    viper.GetInt(workersFlag),
		traceFile:  viper.GetString(traceFlag),
		out:        log.New(cmd.OutOrStdout(), "", 0),
		trace:      log.New(io.Discard, "", 0),
		logger:     newLogger(ll),
	}

	if len(sp.traceFile) > 0 {
		if err := os.MkdirAll(filepath.Dir(sp.traceFile), 0755); err != nil {
			return nil, errors.Wrapf(err, "Could not create trace dir for %s", sp.traceFile)
		}
		f, err := os.Create(sp.traceFile)
		if err != nil {
			return nil, errors.Wrapf(err, "Could not create trace file %s", sp.traceFile)
		}
		sp.trace = log.New(f, "", 0)
		sp.traceCloser = f
	}

	return sp, nil
}

// Close flushes the logger and closes the trace file
func (sp *startupParams) Close() error {
	_ = sp.logger.Sync()
	if sp.traceCloser != nil {
		return sp.traceCloser.Close()
	}
	return nil
}

// newLogger creates a development logger at the given level, logging to
// stderr so command output stays clean.
func newLogger(level zapcore.Level) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	config.DisableCaller = true
	config.Level.SetLevel(level)

	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

package cmd

import (
	"encoding/json"
	"expvar"
	"math"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/CraigKelly/betaflip/sampler"
)

// monitor serves sampler progress over HTTP while a check runs. The vars
// live in a private expvar.Map so more than one monitor can exist in a
// process (tests start several).
type monitor struct {
	info     *expvar.Map
	stopped  chan struct{}
	server   *http.Server
	listener net.Listener
	logger   *zap.Logger

	mu        sync.RWMutex
	posterior *posteriorInfo

	Chains       *expvar.Int
	Window       *expvar.Int
	BurnIn       *expvar.Int
	MaxRounds    *expvar.Int
	Rounds       *expvar.Int
	TotalSamples *expvar.Int
	RunTime      *expvar.Float
	RHat         *expvar.Float
	Acceptance   *expvar.Float

	LastMeanHellinger *expvar.Float
	LastMaxHellinger  *expvar.Float
	LastMeanJSD       *expvar.Float
	LastMaxJSD        *expvar.Float
	MaxHalfHellinger  *expvar.Float
}

// posteriorInfo is the JSON body of /posterior
type posteriorInfo struct {
	RunID       string    `json:"run_id"`
	Round       int       `json:"round"`
	Alpha       float64   `json:"alpha"`
	Beta        float64   `json:"beta"`
	ExactMean   float64   `json:"exact_mean"`
	SampledMean float64   `json:"sampled_mean"`
	Exact       []float64 `json:"exact"`
	Sampled     []float64 `json:"sampled"`
	HalfDiff    []float64 `json:"half_hellinger"`
	Converged   bool      `json:"converged"`
}

func newMonitor(logger *zap.Logger) *monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &monitor{logger: logger}
}

// Start begins serving on addr (":0" picks a free port, see Addr)
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "Could not listen on %s", addr)
	}

	m.info = new(expvar.Map).Init()
	m.stopped = make(chan struct{})
	m.listener = ln

	m.Chains = m.newInt("Chain-Count")
	m.Window = m.newInt("Convergence-Window")
	m.BurnIn = m.newInt("Burn-In")
	m.MaxRounds = m.newInt("Max-Rounds")
	m.Rounds = m.newInt("Rounds")
	m.TotalSamples = m.newInt("Total-Samples")
	m.RunTime = m.newFloat("Run-Time")
	m.RHat = m.newFloat("R-Hat")
	m.Acceptance = m.newFloat("Acceptance")

	m.LastMeanHellinger = m.newFloat("Last-Mean-Hellinger")
	m.LastMaxHellinger = m.newFloat("Last-Max-Hellinger")
	m.LastMeanJSD = m.newFloat("Last-Mean-JSD")
	m.LastMaxJSD = m.newFloat("Last-Max-JSD")
	m.MaxHalfHellinger = m.newFloat("Max-Half-Hellinger")

	m.server = &http.Server{
		Handler:           m.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		defer close(m.stopped)
		if err := m.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			m.logger.Warn("monitor stopped", zap.Error(err))
		}
	}()

	m.logger.Info("monitor available", zap.String("addr", m.Addr()), zap.String("vars", "/debug/vars"))
	return nil
}

func (m *monitor) newInt(name string) *expvar.Int {
	v := new(expvar.Int)
	m.info.Set(name, v)
	return v
}

func (m *monitor) newFloat(name string) *expvar.Float {
	v := new(expvar.Float)
	m.info.Set(name, v)
	return v
}

func (m *monitor) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	// Help the user and redirect to the progress vars
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})
	r.Get("/debug/vars", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = w.Write([]byte(m.info.String()))
	})
	r.Get("/posterior", func(w http.ResponseWriter, r *http.Request) {
		m.mu.RLock()
		info := m.posterior
		m.mu.RUnlock()

		if info == nil {
			http.Error(w, "no sampling round has finished", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(info); err != nil {
			m.logger.Warn("could not encode posterior", zap.Error(err))
		}
	})

	return r
}

// Addr is the address the monitor is listening on
func (m *monitor) Addr() string {
	if m.listener == nil {
		return ""
	}
	return m.listener.Addr().String()
}

// Configure records the run settings
func (m *monitor) Configure(cfg *sampler.Config) {
	if m.info == nil || cfg == nil {
		return
	}
	m.Chains.Set(int64(cfg.Chains))
	m.Window.Set(int64(cfg.Window))
	m.BurnIn.Set(cfg.BurnIn)
	m.MaxRounds.Set(int64(cfg.MaxRounds))
}

// Update records the result of a sampling round
func (m *monitor) Update(res *sampler.Result) {
	if m.info == nil || res == nil {
		return
	}

	m.Rounds.Set(int64(res.Round))
	m.TotalSamples.Set(res.Samples)
	m.RunTime.Set(res.Elapsed.Seconds())
	if !math.IsNaN(res.RHat) && !math.IsInf(res.RHat, 0) {
		m.RHat.Set(res.RHat) // keep /debug/vars valid JSON
	}
	m.Acceptance.Set(res.Acceptance)

	if res.Score != nil {
		m.LastMeanHellinger.Set(res.Score.MeanHellinger)
		m.LastMaxHellinger.Set(res.Score.MaxHellinger)
		m.LastMeanJSD.Set(res.Score.MeanJSDiverge)
		m.LastMaxJSD.Set(res.Score.MaxJSDiverge)
	}
	m.MaxHalfHellinger.Set(res.MaxHalf)

	info := &posteriorInfo{
		RunID:       res.RunID,
		Round:       res.Round,
		SampledMean: res.Mean,
		HalfDiff:    append([]float64(nil), res.HalfDiff...),
		Converged:   res.Converged,
	}
	if res.Solution != nil {
		post := res.Solution.Posterior
		info.Alpha, info.Beta = post.Alpha, post.Beta
		info.ExactMean = post.Mean()
		info.Exact = append([]float64(nil), res.Solution.Hist.Marginal...)
	}
	if res.Merged != nil {
		info.Sampled = append([]float64(nil), res.Merged.Marginal...)
	}

	m.mu.Lock()
	m.posterior = info
	m.mu.Unlock()
}

// Stop shuts the server down, waiting a little for it to exit
func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	_ = m.server.Close()

	select {
	case <-m.stopped:
		m.logger.Info("monitor stopped")
	case <-time.After(2 * time.Second):
		m.logger.Warn("monitor would NOT stop: just continuing on")
	}
}

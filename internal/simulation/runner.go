package simulation

import (
	"context"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/metrics"
	"networth-scenario-lab/internal/observability"
)

// Runner executes Monte Carlo runs: N independent trials reduced into an aggregate.
type Runner struct {
	workers int
	logger  zerolog.Logger
}

// RunnerOptions contains configuration for creating a Runner.
type RunnerOptions struct {
	// Workers bounds concurrent trial goroutines per run. Defaults to GOMAXPROCS.
	Workers int
	Logger  zerolog.Logger
}

// NewRunner creates a simulation runner.
func NewRunner(opts RunnerOptions) *Runner {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{
		workers: workers,
		logger:  opts.Logger.With().Str("component", "simulation").Logger(),
	}
}

// Run executes in.TrialCount trials under the preset of in.Regime.
func (r *Runner) Run(ctx context.Context, in domain.SimulationInput) (*domain.AggregateResult, error) {
	return r.RunWithParams(ctx, in, domain.RegimeParams(in.Regime))
}

// RunWithParams executes in.TrialCount trials under explicit regime parameters.
// Trial i draws from its own stream seeded by (in.Seed, i), so the result depends
// only on the input and seed, never on worker scheduling.
// A negative TrialCount runs no trials.
// Returns the context error if ctx is done before every trial finished.
func (r *Runner) RunWithParams(ctx context.Context, in domain.SimulationInput, params domain.RegimeParameters) (*domain.AggregateResult, error) {
	start := time.Now()
	in.TrialCount = max(in.TrialCount, 0)
	pm := newPathModel(params)
	results := make([]domain.TrialResult, in.TrialCount)

	g, gctx := errgroup.WithContext(ctx)
	for _, sp := range partition(in.TrialCount, r.workers) {
		g.Go(func() error {
			for i := sp.from; i < sp.to; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i] = pm.run(TrialSource(in.Seed, i), in)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.RecordRunCanceled()
		r.logger.Warn().Err(err).
			Str("regime", in.Regime).
			Int("trials", in.TrialCount).
			Msg("run aborted")
		return nil, err
	}

	agg := metrics.Aggregate(results, in, params)

	elapsed := time.Since(start)
	observability.RecordRun(domain.CanonicalRegime(in.Regime), in.TrialCount, elapsed.Seconds())
	r.logger.Debug().
		Str("regime", in.Regime).
		Int("trials", in.TrialCount).
		Int("horizon_years", in.HorizonYears).
		Dur("elapsed", elapsed).
		Msg("run complete")

	return agg, nil
}

// TrialSource returns the private random stream of trial i under seed.
func TrialSource(seed uint64, i int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, splitmix64(uint64(i))))
}

// DeriveSeed returns a new seed decorrelated from seed by salt.
func DeriveSeed(seed, salt uint64) uint64 {
	return splitmix64(seed ^ splitmix64(salt))
}

// splitmix64 is a bijective 64-bit mixer.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

type span struct{ from, to int }

// partition splits [0, n) into at most parts contiguous spans.
func partition(n, parts int) []span {
	if n <= 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	size := (n + parts - 1) / parts
	spans := make([]span, 0, parts)
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		spans = append(spans, span{from: from, to: to})
	}
	return spans
}

package orchestrator

import (
	"context"

	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/config"
	"networth-scenario-lab/internal/simulation"
)

// FromConfig wires the simulation engine, narrative coach and cache from cfg.
// The returned cleanup closes the cache connection.
func FromConfig(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Orchestrator, func()) {
	runner := simulation.NewRunner(simulation.RunnerOptions{
		Workers: cfg.SimWorkers,
		Logger:  logger,
	})
	comparator := simulation.NewComparator(simulation.ComparatorOptions{
		Runner:           runner,
		PrimaryTrials:    cfg.PrimaryTrials,
		ComparisonTrials: cfg.ComparisonTrials,
	})

	coachOpts := coach.Options{
		CacheTTL:   cfg.Redis.NarrativeTTL,
		Timeout:    cfg.Coach.Timeout,
		RatePerSec: cfg.Coach.RatePerSec,
		Burst:      cfg.Coach.Burst,
		Logger:     logger,
	}
	cleanup := func() {}

	if cfg.Coach.Ready() {
		coachOpts.Completer = coach.NewClient(cfg.Coach.Endpoint, cfg.Coach.APIKey, cfg.Coach.Model)
		logger.Info().
			Str("provider", cfg.Coach.Provider).
			Str("model", cfg.Coach.Model).
			Dur("timeout", cfg.Coach.Timeout).
			Msg("narrative coach enabled")

		if cfg.Redis.Addr != "" {
			// a nil *RedisCache must not be stored in the interface field
			if cache := coach.NewRedisCache(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger); cache != nil {
				coachOpts.Cache = cache
				cleanup = func() { cache.Close() }
			}
		}
	} else {
		logger.Info().Msg("narrative coach not configured, using local fallback narrative")
	}

	return New(Options{
		Comparator: comparator,
		Narrator:   coach.New(coachOpts),
		Budget:     cfg.RequestBudget,
		Logger:     logger,
	}), cleanup
}

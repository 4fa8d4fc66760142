package simulation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"networth-scenario-lab/internal/domain"
)

// Seed salts of the reference runs.
const (
	baselineSeedSalt = 1
	bullSeedSalt     = 2
)

// Comparison holds the primary run, the reference runs and their deltas.
type Comparison struct {
	Primary  *domain.AggregateResult
	Baseline *domain.AggregateResult
	Bull     *domain.AggregateResult
	Deltas   domain.Comparisons
}

// Comparator runs a scenario under the requested regime and two fixed reference regimes.
type Comparator struct {
	runner           *Runner
	primaryTrials    int
	comparisonTrials int
}

// ComparatorOptions contains configuration for creating a Comparator.
type ComparatorOptions struct {
	Runner           *Runner
	PrimaryTrials    int // defaults to domain.PrimaryTrialCount
	ComparisonTrials int // defaults to domain.ComparisonTrialCount
}

// NewComparator creates a scenario comparator.
func NewComparator(opts ComparatorOptions) *Comparator {
	c := &Comparator{
		runner:           opts.Runner,
		primaryTrials:    opts.PrimaryTrials,
		comparisonTrials: opts.ComparisonTrials,
	}
	if c.primaryTrials <= 0 {
		c.primaryTrials = domain.PrimaryTrialCount
	}
	if c.comparisonTrials <= 0 {
		c.comparisonTrials = domain.ComparisonTrialCount
	}
	return c
}

// Compare runs the three aggregator runs concurrently and computes deltas.
// in.TrialCount is ignored; the comparator owns trial counts.
// Reference seeds derive from in.Seed so one seed reproduces the whole comparison.
func (c *Comparator) Compare(ctx context.Context, in domain.SimulationInput) (*Comparison, error) {
	primaryIn := in
	primaryIn.TrialCount = c.primaryTrials

	baselineIn := in
	baselineIn.Regime = domain.RegimeBalanced
	baselineIn.TrialCount = c.comparisonTrials
	baselineIn.Seed = DeriveSeed(in.Seed, baselineSeedSalt)

	bullIn := in
	bullIn.Regime = domain.RegimeBull
	bullIn.TrialCount = c.comparisonTrials
	bullIn.Seed = DeriveSeed(in.Seed, bullSeedSalt)

	cmp := &Comparison{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cmp.Primary, err = c.runner.Run(gctx, primaryIn)
		return err
	})
	g.Go(func() (err error) {
		cmp.Baseline, err = c.runner.Run(gctx, baselineIn)
		return err
	})
	g.Go(func() (err error) {
		cmp.Bull, err = c.runner.Run(gctx, bullIn)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	cmp.Deltas = domain.Comparisons{
		Baseline: domain.Delta(cmp.Primary, cmp.Baseline),
		Bull:     domain.Delta(cmp.Primary, cmp.Bull),
	}
	return cmp, nil
}

// Package orchestrator assembles one scenario response.
// It coordinates: comparison runs → narrative coach → response
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"networth-scenario-lab/internal/coach"
	"networth-scenario-lab/internal/domain"
	"networth-scenario-lab/internal/observability"
	"networth-scenario-lab/internal/simulation"
)

// DefaultBudget is the wall-clock budget of the numeric work of one request.
const DefaultBudget = 5 * time.Second

// ErrBudgetExceeded is returned when the comparison runs outlast the request budget.
var ErrBudgetExceeded = errors.New("scenario budget exceeded")

// Narrator produces a narrative for a metrics set. *coach.Coach satisfies it.
type Narrator interface {
	Narrate(ctx context.Context, sess *coach.Session, m domain.NarrativeMetrics) coach.Result
}

// Orchestrator turns a scenario request into a full response.
// Flow: comparison → narrative metrics → coach (or fallback) → response
type Orchestrator struct {
	comparator *simulation.Comparator
	narrator   Narrator
	budget     time.Duration
	logger     zerolog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	Comparator *simulation.Comparator
	Narrator   Narrator      // nil always uses the fallback narrative
	Budget     time.Duration // defaults to DefaultBudget
	Logger     zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Budget <= 0 {
		opts.Budget = DefaultBudget
	}
	return &Orchestrator{
		comparator: opts.Comparator,
		narrator:   opts.Narrator,
		budget:     opts.Budget,
		logger:     opts.Logger.With().Str("component", "orchestrator").Logger(),
	}
}

// Run executes one scenario request.
// Phases:
//  1. Primary, baseline and bull runs under the request budget
//  2. Flatten metrics for the narrative
//  3. Ask the coach; merge its reply over the fallback narrative
//  4. Assemble the response
func (o *Orchestrator) Run(ctx context.Context, in domain.SimulationInput, sess *coach.Session) (*domain.ScenarioResponse, error) {
	start := time.Now()

	// Phase 1: Comparison runs
	runCtx, cancel := context.WithTimeout(ctx, o.budget)
	cmp, err := o.comparator.Compare(runCtx, in)
	cancel()
	if err != nil {
		status := "canceled"
		if errors.Is(err, context.DeadlineExceeded) {
			status = "budget_exceeded"
			err = fmt.Errorf("%w after %s: %w", ErrBudgetExceeded, o.budget, err)
		}
		observability.RecordScenario(status, time.Since(start).Seconds())
		return nil, err
	}

	// Phase 2: Narrative metrics
	metrics := NarrativeMetrics(in, cmp.Primary)

	// Phase 3: Narrative
	narrative := o.narrate(ctx, sess, metrics)

	// Phase 4: Response
	resp := &domain.ScenarioResponse{
		AggregateResult: *cmp.Primary,
		Regime:          domain.NormalizeRegime(in.Regime),
		Comparisons:     cmp.Deltas,
		Coach:           narrative,
		Explanation:     narrative.Commentary,
	}

	elapsed := time.Since(start)
	observability.RecordScenario("ok", elapsed.Seconds())
	o.logger.Debug().
		Str("regime", resp.Regime).
		Int("horizon_years", in.HorizonYears).
		Float64("p50", resp.Percentiles.P50).
		Str("tone", string(narrative.Tone)).
		Dur("elapsed", elapsed).
		Msg("scenario assembled")

	return resp, nil
}

// narrate returns the coach narrative, field by field over the fallback.
func (o *Orchestrator) narrate(ctx context.Context, sess *coach.Session, m domain.NarrativeMetrics) domain.Narrative {
	base := coach.Fallback(m)
	if o.narrator == nil {
		return base
	}

	res := o.narrator.Narrate(ctx, sess, m)
	if res.Status != coach.StatusOK {
		return base
	}
	return coach.Merge(base, res.Reply)
}

// NarrativeMetrics flattens a primary aggregate into the coach's metrics set.
func NarrativeMetrics(in domain.SimulationInput, agg *domain.AggregateResult) domain.NarrativeMetrics {
	return domain.NarrativeMetrics{
		MonthlyInvestment:     in.MonthlyInvestment,
		ExtraLoanPayment:      in.ExtraLoanPayment,
		SavingsRatePct:        coach.SavingsRatePct(in.MonthlyInvestment),
		LiquidityP10Months:    agg.Liquidity.P10Months,
		LiquidityAvgMonths:    agg.Liquidity.AvgMonths,
		LiquiditySurvivalProb: agg.SurvivalProb,
		RecoveryYears:         agg.RecoveryYears,
		NetWorthP10:           agg.Percentiles.P10,
		NetWorthP50:           agg.Percentiles.P50,
		NetWorthP90:           agg.Percentiles.P90,
		HorizonYears:          in.HorizonYears,
		Regime:                domain.RegimeLabel(in.Regime),
	}
}

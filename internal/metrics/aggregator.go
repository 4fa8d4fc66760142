package metrics

import (
	"networth-scenario-lab/internal/domain"
)

// Aggregate reduces trial results of one run into an AggregateResult.
// The reduction is order-independent except for floating point summation order;
// callers pass trials in trial-index order to keep results reproducible.
func Aggregate(trials []domain.TrialResult, in domain.SimulationInput, params domain.RegimeParameters) *domain.AggregateResult {
	n := len(trials)
	netWorth := make([]float64, n)
	liquidity := make([]float64, n)
	drawdowns := make([]float64, n)
	payoffs := make([]*int, n)
	recoveries := make([]*int, n)
	for i, t := range trials {
		netWorth[i] = t.NetWorthEnd
		liquidity[i] = t.LiquidityBufferEnd
		drawdowns[i] = t.MaxDrawdown
		payoffs[i] = t.PayoffMonth
		recoveries[i] = t.RecoveryMonth
	}

	debtFreedomYears, paid := computeMeanMonthsAsYears(payoffs)
	if !paid {
		// Loan never retired within the horizon.
		debtFreedomYears = float64(in.HorizonYears)
	}
	recoveryYears, _ := computeMeanMonthsAsYears(recoveries)

	return &domain.AggregateResult{
		Distribution: ComputeHistogram(netWorth, domain.HistogramBuckets),
		Percentiles:  ComputePercentiles(netWorth),
		Liquidity: domain.Liquidity{
			AvgMonths: computeMean(liquidity),
			P10Months: computePercentiles(liquidity, 10)[0],
		},
		DebtFreedomYears:    debtFreedomYears,
		SurvivalProb:        1.0 - computeBelowFraction(liquidity, domain.LiquidityThreshold),
		RecoveryYears:       recoveryYears,
		ExpectedMaxDrawdown: computeMean(drawdowns),
		Assumptions: domain.Assumptions{
			AnnualReturn: params.AnnualReturn,
			AnnualVol:    params.AnnualVol,
			Simulations:  in.TrialCount,
			HorizonYears: in.HorizonYears,
		},
	}
}

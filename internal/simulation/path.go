package simulation

import (
	"math"

	"networth-scenario-lab/internal/domain"
)

// NormalSource draws from a standard normal distribution.
// *rand.Rand from math/rand/v2 satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

// pathModel holds the monthly parameters derived once from a regime.
type pathModel struct {
	monthlyDrift float64
	monthlyVol   float64
}

func newPathModel(params domain.RegimeParameters) pathModel {
	return pathModel{
		monthlyDrift: math.Pow(1+params.AnnualReturn, 1.0/12.0) - 1,
		monthlyVol:   params.AnnualVol / math.Sqrt(12),
	}
}

// trialState is the mutable state of a single path. It never outlives the trial.
type trialState struct {
	investBalance   float64
	loanBalance     float64
	liquidReserve   float64
	liquidityBuffer float64
	peakNetWorth    float64
	maxDrawdown     float64
	payoffMonth     *int
	belowThreshold  bool
	recoveryMonth   *int
}

func newTrialState() *trialState {
	return &trialState{
		loanBalance:   domain.LoanPrincipal,
		liquidReserve: domain.LiquidReserveStart,
	}
}

// SimulateTrial runs one stochastic path over the input horizon.
func SimulateTrial(src NormalSource, in domain.SimulationInput, params domain.RegimeParameters) domain.TrialResult {
	return newPathModel(params).run(src, in)
}

func (pm pathModel) run(src NormalSource, in domain.SimulationInput) domain.TrialResult {
	st := newTrialState()
	for month := 1; month <= in.Months(); month++ {
		st.step(month, pm.monthlyDrift+pm.monthlyVol*src.NormFloat64(), in)
	}

	return domain.TrialResult{
		NetWorthEnd:        st.investBalance - st.loanBalance,
		LiquidityBufferEnd: st.liquidityBuffer,
		PayoffMonth:        st.payoffMonth,
		RecoveryMonth:      st.recoveryMonth,
		MaxDrawdown:        st.maxDrawdown,
	}
}

// step advances the state by one month given that month's return r.
func (st *trialState) step(month int, r float64, in domain.SimulationInput) {
	// Loan payment, only while debt remains
	scenarioPayment := 0.0
	if st.loanBalance > 0 {
		scenarioPayment = domain.LoanMinPayment + in.ExtraLoanPayment + domain.InvestToLoanShare*in.MonthlyInvestment
	}

	// Contribution lands at month end and earns nothing this month.
	// A month cannot lose more than the whole balance.
	investFlow := in.MonthlyInvestment
	if st.loanBalance <= 0 {
		investFlow += scenarioPayment
	}
	st.investBalance = st.investBalance*math.Max(1+r, 0) + math.Max(investFlow, 0)

	// Amortization; unpaid interest is not capitalized
	if st.loanBalance > 0 {
		interest := st.loanBalance * (domain.LoanAnnualRate / 12)
		principal := math.Max(scenarioPayment-interest, 0)
		st.loanBalance = math.Max(st.loanBalance-principal, 0)
		if st.loanBalance <= 0 && st.payoffMonth == nil {
			m := month
			st.payoffMonth = &m
		}
	}

	st.liquidReserve = math.Max(
		st.liquidReserve*(1+domain.LiquidReserveGrowth)+in.MonthlyInvestment*domain.LiquidReserveShare-domain.LiquidMonthlySpend,
		0,
	)
	st.liquidityBuffer = 0
	if st.liquidReserve > 0 {
		st.liquidityBuffer = st.liquidReserve / domain.MonthlyExpenses
	}

	if st.liquidityBuffer < domain.LiquidityThreshold {
		st.belowThreshold = true
	} else if st.belowThreshold && st.recoveryMonth == nil {
		m := month
		st.recoveryMonth = &m
	}

	current := st.investBalance - st.loanBalance
	st.peakNetWorth = math.Max(st.peakNetWorth, current)
	if st.peakNetWorth > 0 {
		st.maxDrawdown = math.Max(st.maxDrawdown, (st.peakNetWorth-current)/st.peakNetWorth)
	}
}

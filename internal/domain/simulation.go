package domain

// Fixed model constants of the scenario engine.
const (
	LoanPrincipal        = 10_000.0
	LoanMinPayment       = 250.0
	LoanAnnualRate       = 0.10
	InvestToLoanShare    = 0.2 // share of monthly investment that also goes to the loan
	LiquidReserveStart   = 3_000.0
	LiquidReserveGrowth  = 0.01 // monthly
	LiquidReserveShare   = 0.2  // share of monthly investment added to the reserve
	LiquidMonthlySpend   = 400.0
	MonthlyExpenses      = 2_000.0
	LiquidityThreshold   = 6.0 // months of runway
	HistogramBuckets     = 20
	PrimaryTrialCount    = 500
	ComparisonTrialCount = 300
	MinHorizonYears      = 1
	MaxHorizonYears      = 40
)

// Request defaults
const (
	DefaultMonthlyInvestment = 450.0
	DefaultExtraLoanPayment  = 200.0
	DefaultHorizonYears      = 10
)

// MaxMoney is the largest accepted monthly amount. Larger inputs can overflow the
// invested balance to +Inf over a long horizon.
const MaxMoney = 1e9


// SimulationInput is the immutable per-run configuration.
type SimulationInput struct {
	MonthlyInvestment float64
	ExtraLoanPayment  float64
	HorizonYears      int
	Regime            string
	TrialCount        int
	Seed              uint64
}

// Months returns the simulated horizon in months.
func (in SimulationInput) Months() int {
	return in.HorizonYears * 12
}

// ClampHorizon limits horizon years to [MinHorizonYears, MaxHorizonYears].
func ClampHorizon(years int) int {
	if years < MinHorizonYears {
		return MinHorizonYears
	}
	if years > MaxHorizonYears {
		return MaxHorizonYears
	}
	return years
}

// ClampMoney maps negative monetary inputs to zero.
func ClampMoney(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// TrialResult is the terminal record of one simulated path.
type TrialResult struct {
	NetWorthEnd        float64
	LiquidityBufferEnd float64 // months of runway
	PayoffMonth        *int    // nil if the loan was never retired
	RecoveryMonth      *int    // nil if liquidity never recovered
	MaxDrawdown        float64
}

// Bucket is one histogram bin of ending net worth.
type Bucket struct {
	NetWorth float64 `json:"net_worth"` // bucket center
	Count    int     `json:"count"`
}

// Percentiles holds net worth percentiles.
type Percentiles struct {
	P10 float64 `json:"p10"`
	P50 float64 `json:"p50"`
	P90 float64 `json:"p90"`
}

// Liquidity summarises ending liquidity buffers.
type Liquidity struct {
	AvgMonths float64 `json:"avg_months"`
	P10Months float64 `json:"p10_months"`
}

// Assumptions echoes the model parameters of a run.
type Assumptions struct {
	AnnualReturn float64 `json:"annual_return"`
	AnnualVol    float64 `json:"annual_vol"`
	Simulations  int     `json:"simulations"`
	HorizonYears int     `json:"horizon_years"`
}

// AggregateResult is the reduction of all trials of one run.
type AggregateResult struct {
	Distribution        []Bucket    `json:"distribution"`
	Percentiles         Percentiles `json:"percentiles"`
	Liquidity           Liquidity   `json:"liquidity"`
	DebtFreedomYears    float64     `json:"debt_freedom_years"`
	SurvivalProb        float64     `json:"survival_prob"`
	RecoveryYears       float64     `json:"recovery_years"`
	ExpectedMaxDrawdown float64     `json:"expected_max_drawdown"`
	Assumptions         Assumptions `json:"assumptions"`
}

// ComparisonDelta is primary minus reference.
type ComparisonDelta struct {
	DeltaNetWorthP50     float64 `json:"delta_net_worth_p50"`
	DeltaSurvivalProb    float64 `json:"delta_survival_prob"`
	DeltaLiquidityMonths float64 `json:"delta_liquidity_months"`
}

// Comparisons holds deltas against the two reference regimes.
type Comparisons struct {
	Baseline ComparisonDelta `json:"baseline"`
	Bull     ComparisonDelta `json:"bull"`
}

// Delta computes primary - reference.
func Delta(primary, reference *AggregateResult) ComparisonDelta {
	return ComparisonDelta{
		DeltaNetWorthP50:     primary.Percentiles.P50 - reference.Percentiles.P50,
		DeltaSurvivalProb:    primary.SurvivalProb - reference.SurvivalProb,
		DeltaLiquidityMonths: primary.Liquidity.AvgMonths - reference.Liquidity.AvgMonths,
	}
}

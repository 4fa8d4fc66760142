package domain

// Tone classifies a narrative.
type Tone string

// Tone values
const (
	ToneStrong   Tone = "strong"
	ToneBalanced Tone = "balanced"
	ToneCaution  Tone = "caution"
)

// Valid reports whether t is a known tone.
func (t Tone) Valid() bool {
	switch t {
	case ToneStrong, ToneBalanced, ToneCaution:
		return true
	}
	return false
}

// Narrative is the coach's short structured explanation of a scenario.
type Narrative struct {
	Headline        string  `json:"headline"`
	Commentary      string  `json:"commentary"`
	SavingsRatePct  int     `json:"savings_rate_pct"`
	LiquidityMonths float64 `json:"liquidity_months"`
	Tone            Tone    `json:"tone"`
}

// NarrativeMetrics is the flattened metrics set handed to the coach.
type NarrativeMetrics struct {
	MonthlyInvestment     float64 `json:"monthly_investment"`
	ExtraLoanPayment      float64 `json:"extra_loan_payment"`
	SavingsRatePct        int     `json:"savings_rate_pct"`
	LiquidityP10Months    float64 `json:"liquidity_p10_months"`
	LiquidityAvgMonths    float64 `json:"liquidity_avg_months"`
	LiquiditySurvivalProb float64 `json:"liquidity_survival_prob"`
	RecoveryYears         float64 `json:"recovery_years"`
	NetWorthP10           float64 `json:"net_worth_p10"`
	NetWorthP50           float64 `json:"net_worth_p50"`
	NetWorthP90           float64 `json:"net_worth_p90"`
	HorizonYears          int     `json:"horizon_years"`
	Regime                string  `json:"regime"` // narrative label, e.g. "bear cycle"
}

// ScenarioResponse is the full answer to a scenario request.
type ScenarioResponse struct {
	AggregateResult
	Regime      string      `json:"regime"`
	Comparisons Comparisons `json:"comparisons"`
	Coach       Narrative   `json:"coach"`
	Explanation string      `json:"explanation"`
}

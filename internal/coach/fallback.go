package coach

import (
	"fmt"
	"math"
	"strings"

	"networth-scenario-lab/internal/domain"
)

// incomeProxyOffset stands in for non-invested monthly income.
const incomeProxyOffset = 1000.0

// SavingsRatePct approximates the savings rate, in whole percent.
func SavingsRatePct(monthlyInvestment float64) int {
	income := monthlyInvestment + incomeProxyOffset
	if income <= 0 {
		return 0
	}
	return int(math.RoundToEven(monthlyInvestment / income * 100))
}

// FallbackTone classifies a scenario from savings rate and the p10 liquidity buffer.
func FallbackTone(savingsRatePct int, liquidityP10 float64) domain.Tone {
	switch {
	case savingsRatePct >= 40 && liquidityP10 >= 6:
		return domain.ToneStrong
	case liquidityP10 < 3:
		return domain.ToneCaution
	default:
		return domain.ToneBalanced
	}
}

// Fallback builds the deterministic local narrative. It needs no network or state.
func Fallback(m domain.NarrativeMetrics) domain.Narrative {
	pct := SavingsRatePct(m.MonthlyInvestment)
	liq := m.LiquidityP10Months

	return domain.Narrative{
		Headline: fmt.Sprintf("Savings rate around %d%% with a %.1f-month buffer.", pct, liq),
		Commentary: fmt.Sprintf("At this level, your savings rate is roughly %d%%. "+
			"That materially accelerates long-term wealth build, but your emergency cushion sits near %.1f months. "+
			"If that feels thin, consider nudging a bit more into cash until you reach 6+ months of runway.", pct, liq),
		SavingsRatePct:  pct,
		LiquidityMonths: liq,
		Tone:            FallbackTone(pct, liq),
	}
}

// Merge overlays a model reply on the fallback narrative field by field.
// Empty, zero or invalid reply fields keep the fallback value.
func Merge(base domain.Narrative, r *Reply) domain.Narrative {
	if r == nil {
		return base
	}
	out := base
	if s := strings.TrimSpace(r.Headline); s != "" {
		out.Headline = s
	}
	if s := strings.TrimSpace(r.Commentary); s != "" {
		out.Commentary = s
	}
	if r.SavingsRatePct != 0 && !math.IsNaN(r.SavingsRatePct) && !math.IsInf(r.SavingsRatePct, 0) {
		// clamp before converting so huge replies cannot overflow int
		out.SavingsRatePct = int(math.RoundToEven(math.Max(0, math.Min(r.SavingsRatePct, 100))))
	}
	if r.LiquidityMonths != 0 && !math.IsNaN(r.LiquidityMonths) && !math.IsInf(r.LiquidityMonths, 0) {
		out.LiquidityMonths = r.LiquidityMonths
	}
	if tone := domain.Tone(strings.ToLower(strings.TrimSpace(r.Tone))); tone.Valid() {
		out.Tone = tone
	}
	return out
}

package reporting

import (
	"fmt"
	"strings"
	"time"

	"networth-scenario-lab/internal/domain"
)

// histogramWidth is the bar length of the fullest bucket.
const histogramWidth = 40

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder
	resp := r.Response
	in := r.Input

	// Header
	sb.WriteString("# Net Worth Scenario\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s | Seed: %d\n\n", r.GeneratedAt.Format(time.RFC3339), r.Seed))

	// Scenario
	sb.WriteString("## Scenario\n\n")
	sb.WriteString("| Input | Value |\n")
	sb.WriteString("|-------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Monthly Investment | %.2f |\n", in.MonthlyInvestment))
	sb.WriteString(fmt.Sprintf("| Extra Loan Payment | %.2f |\n", in.ExtraLoanPayment))
	sb.WriteString(fmt.Sprintf("| Horizon (years) | %d |\n", in.HorizonYears))
	sb.WriteString(fmt.Sprintf("| Regime | %s (%s) |\n", resp.Regime, domain.RegimeLabel(resp.Regime)))
	sb.WriteString("\n")

	// Assumptions
	a := resp.Assumptions
	sb.WriteString("## Assumptions\n\n")
	sb.WriteString(fmt.Sprintf("Annual return %.2f%%, annual volatility %.2f%%, %d simulations over %d years.\n\n",
		a.AnnualReturn*100, a.AnnualVol*100, a.Simulations, a.HorizonYears))

	// Outcomes
	sb.WriteString("## Outcomes\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Net Worth P10 | %.2f |\n", resp.Percentiles.P10))
	sb.WriteString(fmt.Sprintf("| Net Worth P50 | %.2f |\n", resp.Percentiles.P50))
	sb.WriteString(fmt.Sprintf("| Net Worth P90 | %.2f |\n", resp.Percentiles.P90))
	sb.WriteString(fmt.Sprintf("| Liquidity Avg (months) | %.2f |\n", resp.Liquidity.AvgMonths))
	sb.WriteString(fmt.Sprintf("| Liquidity P10 (months) | %.2f |\n", resp.Liquidity.P10Months))
	sb.WriteString(fmt.Sprintf("| Survival Probability | %.4f |\n", resp.SurvivalProb))
	sb.WriteString(fmt.Sprintf("| Debt Freedom (years) | %.2f |\n", resp.DebtFreedomYears))
	sb.WriteString(fmt.Sprintf("| Recovery (years) | %.2f |\n", resp.RecoveryYears))
	sb.WriteString(fmt.Sprintf("| Expected Max Drawdown | %.4f |\n", resp.ExpectedMaxDrawdown))
	sb.WriteString("\n")

	// Comparisons
	sb.WriteString("## Regime Comparison\n\n")
	sb.WriteString("| Reference | Δ Net Worth P50 | Δ Survival | Δ Liquidity (months) |\n")
	sb.WriteString("|-----------|-----------------|------------|----------------------|\n")
	for _, row := range []struct {
		name  string
		delta domain.ComparisonDelta
	}{
		{domain.RegimeBalanced, resp.Comparisons.Baseline},
		{domain.RegimeBull, resp.Comparisons.Bull},
	} {
		sb.WriteString(fmt.Sprintf("| %s | %+.2f | %+.4f | %+.2f |\n",
			row.name, row.delta.DeltaNetWorthP50, row.delta.DeltaSurvivalProb, row.delta.DeltaLiquidityMonths))
	}
	sb.WriteString("\n")

	// Distribution
	sb.WriteString("## Distribution\n\n")
	if len(resp.Distribution) > 0 {
		sb.WriteString("```\n")
		sb.WriteString(renderHistogram(resp.Distribution))
		sb.WriteString("```\n")
	} else {
		sb.WriteString("No distribution available.\n")
	}
	sb.WriteString("\n")

	// Coach
	c := resp.Coach
	sb.WriteString("## Coach\n\n")
	sb.WriteString(fmt.Sprintf("**%s** _(tone: %s)_\n\n", c.Headline, c.Tone))
	sb.WriteString(c.Commentary)
	sb.WriteString("\n")

	return sb.String()
}

// renderHistogram draws one bar per bucket, scaled to the fullest bucket.
func renderHistogram(buckets []domain.Bucket) string {
	peak := 0
	for _, b := range buckets {
		peak = max(peak, b.Count)
	}

	var sb strings.Builder
	for _, b := range buckets {
		bar := 0
		if peak > 0 {
			bar = b.Count * histogramWidth / peak
		}
		if b.Count > 0 && bar == 0 {
			bar = 1
		}
		sb.WriteString(fmt.Sprintf("%14.2f | %-*s %d\n", b.NetWorth, histogramWidth, strings.Repeat("#", bar), b.Count))
	}
	return sb.String()
}

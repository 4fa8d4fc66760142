package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"networth-scenario-lab/internal/domain"
)

func TestComparator_TrialCountsAndDeltas(t *testing.T) {
	cmp := NewComparator(ComparatorOptions{Runner: newTestRunner(4)})

	in := defaultInput(10)
	in.Regime = domain.RegimeBear
	in.Seed = 7

	res, err := cmp.Compare(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, domain.PrimaryTrialCount, res.Primary.Assumptions.Simulations)
	assert.Equal(t, domain.ComparisonTrialCount, res.Baseline.Assumptions.Simulations)
	assert.Equal(t, domain.ComparisonTrialCount, res.Bull.Assumptions.Simulations)

	assert.Equal(t, -0.05, res.Primary.Assumptions.AnnualReturn)
	assert.Equal(t, 0.07, res.Baseline.Assumptions.AnnualReturn)
	assert.Equal(t, 0.15, res.Bull.Assumptions.AnnualReturn)

	assert.InDelta(t, res.Primary.Percentiles.P50-res.Baseline.Percentiles.P50, res.Deltas.Baseline.DeltaNetWorthP50, 1e-9)
	assert.InDelta(t, res.Primary.SurvivalProb-res.Bull.SurvivalProb, res.Deltas.Bull.DeltaSurvivalProb, 1e-9)
	assert.InDelta(t, res.Primary.Liquidity.AvgMonths-res.Bull.Liquidity.AvgMonths, res.Deltas.Bull.DeltaLiquidityMonths, 1e-9)
}

func TestComparator_Reproducible(t *testing.T) {
	cmp := NewComparator(ComparatorOptions{Runner: newTestRunner(3), PrimaryTrials: 120, ComparisonTrials: 80})

	in := defaultInput(8)
	in.Regime = domain.RegimeCryptoWinter
	in.Seed = 31337

	a, err := cmp.Compare(context.Background(), in)
	require.NoError(t, err)
	b, err := cmp.Compare(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, 120, a.Primary.Assumptions.Simulations)
	assert.Equal(t, 80, a.Baseline.Assumptions.Simulations)
}

func TestComparator_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmp := NewComparator(ComparatorOptions{Runner: newTestRunner(2)})
	res, err := cmp.Compare(ctx, defaultInput(10))

	require.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

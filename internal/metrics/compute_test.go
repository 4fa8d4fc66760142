package metrics

import (
	"math"
	"math/rand/v2"
	"testing"
)

const eps = 1e-9

func TestComputePercentiles_MatchesInclusiveQuantiles(t *testing.T) {
	// Reference values from statistics.quantiles(data, n=100, method="inclusive").
	tests := []struct {
		name          string
		values        []float64
		p10, p50, p90 float64
	}{
		{"five ascending", []float64{1, 2, 3, 4, 5}, 1.4, 3.0, 4.6},
		{"unordered with negatives", []float64{3.5, -2, 7, 1}, -1.1, 2.25, 5.95},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ComputePercentiles(tt.values)
			if math.Abs(p.P10-tt.p10) > eps {
				t.Errorf("p10: expected %f, got %f", tt.p10, p.P10)
			}
			if math.Abs(p.P50-tt.p50) > eps {
				t.Errorf("p50: expected %f, got %f", tt.p50, p.P50)
			}
			if math.Abs(p.P90-tt.p90) > eps {
				t.Errorf("p90: expected %f, got %f", tt.p90, p.P90)
			}
		})
	}
}

func TestComputePercentiles_Empty(t *testing.T) {
	p := ComputePercentiles(nil)
	if p.P10 != 0 || p.P50 != 0 || p.P90 != 0 {
		t.Errorf("expected zero percentiles, got %+v", p)
	}
}

func TestComputePercentiles_SingleValue(t *testing.T) {
	p := ComputePercentiles([]float64{42})
	if p.P10 != 42 || p.P50 != 42 || p.P90 != 42 {
		t.Errorf("expected all percentiles 42, got %+v", p)
	}
}

func TestComputePercentiles_DoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	ComputePercentiles(values)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input was reordered: %v", values)
	}
}

func TestComputePercentiles_Ordered(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for run := 0; run < 50; run++ {
		n := 1 + rng.IntN(300)
		values := make([]float64, n)
		for i := range values {
			values[i] = rng.NormFloat64() * 1000
		}
		p := ComputePercentiles(values)
		if p.P10 > p.P50 || p.P50 > p.P90 {
			t.Fatalf("run %d: percentiles out of order: %+v", run, p)
		}
	}
}

func TestComputeHistogram_CountsSumToSampleSize(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	values := make([]float64, 500)
	for i := range values {
		values[i] = rng.NormFloat64()*5000 + 20000
	}

	dist := ComputeHistogram(values, 20)
	if len(dist) != 20 {
		t.Fatalf("expected 20 buckets, got %d", len(dist))
	}
	total := 0
	for _, b := range dist {
		total += b.Count
	}
	if total != 500 {
		t.Errorf("expected counts to sum to 500, got %d", total)
	}
}

func TestComputeHistogram_MaxGoesToLastBucket(t *testing.T) {
	dist := ComputeHistogram([]float64{0, 10}, 20)
	if dist[0].Count != 1 {
		t.Errorf("expected min in first bucket, got %d", dist[0].Count)
	}
	if dist[19].Count != 1 {
		t.Errorf("expected max in last bucket, got %d", dist[19].Count)
	}
	if math.Abs(dist[0].NetWorth-0.25) > eps {
		t.Errorf("expected first center 0.25, got %f", dist[0].NetWorth)
	}
	if math.Abs(dist[19].NetWorth-9.75) > eps {
		t.Errorf("expected last center 9.75, got %f", dist[19].NetWorth)
	}
}

func TestComputeHistogram_DegenerateRange(t *testing.T) {
	dist := ComputeHistogram([]float64{100, 100, 100}, 20)

	nonEmpty := 0
	for _, b := range dist {
		if b.Count > 0 {
			nonEmpty++
			if b.Count != 3 {
				t.Errorf("expected all 3 values in one bucket, got %d", b.Count)
			}
		}
	}
	if nonEmpty != 1 {
		t.Errorf("expected exactly one non-empty bucket, got %d", nonEmpty)
	}
	// Range widened to [100, 101]: width 0.05
	if math.Abs(dist[0].NetWorth-100.025) > eps {
		t.Errorf("expected first center 100.025, got %f", dist[0].NetWorth)
	}
}

func TestComputeHistogram_Empty(t *testing.T) {
	dist := ComputeHistogram(nil, 20)
	if len(dist) != 20 {
		t.Fatalf("expected 20 buckets, got %d", len(dist))
	}
	for _, b := range dist {
		if b.Count != 0 {
			t.Errorf("expected empty bucket, got %d", b.Count)
		}
	}
}

func TestComputeMeanMonthsAsYears(t *testing.T) {
	m12, m36 := 12, 36

	years, ok := computeMeanMonthsAsYears([]*int{&m12, nil, &m36})
	if !ok {
		t.Fatal("expected ok")
	}
	if math.Abs(years-2.0) > eps {
		t.Errorf("expected 2.0 years, got %f", years)
	}

	if _, ok := computeMeanMonthsAsYears([]*int{nil, nil}); ok {
		t.Error("expected !ok when every entry is nil")
	}
}

func TestComputeBelowFraction(t *testing.T) {
	got := computeBelowFraction([]float64{0, 5.99, 6, 12}, 6)
	if got != 0.5 {
		t.Errorf("expected 0.5, got %f", got)
	}
	if computeBelowFraction(nil, 6) != 0 {
		t.Error("expected 0 for empty sample")
	}
}

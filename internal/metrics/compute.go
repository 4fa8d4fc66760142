package metrics

import (
	"math"
	"sort"

	"networth-scenario-lab/internal/domain"
)

// quantileCuts is the number of groups in the quantile partition (percentiles).
const quantileCuts = 100

// inclusiveQuantiles returns the n-1 cut points dividing sorted into n groups
// with the inclusive method: the sample is treated as the whole population, so
// the lowest cut is interpolated from the minimum and the highest from the maximum.
// sorted must be pre-sorted ASC and non-empty.
func inclusiveQuantiles(sorted []float64, n int) []float64 {
	ld := len(sorted)
	cuts := make([]float64, n-1)
	if ld == 1 {
		for i := range cuts {
			cuts[i] = sorted[0]
		}
		return cuts
	}

	m := ld - 1
	for i := 1; i < n; i++ {
		j := i * m / n
		delta := i*m - j*n
		cuts[i-1] = (sorted[j]*float64(n-delta) + sorted[j+1]*float64(delta)) / float64(n)
	}
	return cuts
}

// computePercentiles returns the values at the given percentile ranks (1..99)
// of an unordered sample. An empty sample yields zeros.
func computePercentiles(values []float64, ranks ...int) []float64 {
	out := make([]float64, len(ranks))
	if len(values) == 0 {
		return out
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	cuts := inclusiveQuantiles(sorted, quantileCuts)
	for i, rank := range ranks {
		idx := rank - 1
		if idx > len(cuts)-1 {
			idx = len(cuts) - 1
		}
		if idx < 0 {
			idx = 0
		}
		out[i] = cuts[idx]
	}
	return out
}

// ComputePercentiles returns p10/p50/p90 of an unordered sample.
func ComputePercentiles(values []float64) domain.Percentiles {
	p := computePercentiles(values, 10, 50, 90)
	return domain.Percentiles{P10: p[0], P50: p[1], P90: p[2]}
}

// computeMean calculates the arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeMeanMonthsAsYears averages the non-nil month indices and converts to years.
// ok is false when every entry is nil.
func computeMeanMonthsAsYears(months []*int) (years float64, ok bool) {
	sum, n := 0, 0
	for _, m := range months {
		if m != nil {
			sum += *m
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n) / 12.0, true
}

// computeBelowFraction returns the share of values strictly below threshold.
func computeBelowFraction(values []float64, threshold float64) float64 {
	if len(values) == 0 {
		return 0
	}
	below := 0
	for _, v := range values {
		if v < threshold {
			below++
		}
	}
	return float64(below) / float64(len(values))
}

// ComputeHistogram bins values into equal-width buckets spanning [min, max].
// A degenerate range is widened by one unit. Counts sum to len(values).
func ComputeHistogram(values []float64, buckets int) []domain.Bucket {
	vmin, vmax := 0.0, 0.0
	if len(values) > 0 {
		vmin, vmax = values[0], values[0]
		for _, v := range values[1:] {
			vmin = math.Min(vmin, v)
			vmax = math.Max(vmax, v)
		}
	}
	if vmax == vmin {
		vmax = vmin + 1.0
	}
	width := (vmax - vmin) / float64(buckets)

	counts := make([]int, buckets)
	for _, v := range values {
		idx := int(math.Floor((v - vmin) / width))
		if idx >= buckets {
			idx = buckets - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	dist := make([]domain.Bucket, buckets)
	for i, c := range counts {
		dist[i] = domain.Bucket{
			NetWorth: vmin + (float64(i)+0.5)*width,
			Count:    c,
		}
	}
	return dist
}

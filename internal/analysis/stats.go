// Package analysis derives point-in-time metrics, historical patterns
// and forward projections from a cleaned dataset.
package analysis

import "math"

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stddev is the sample standard deviation.
func stddev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		ss += (v - m) * (v - m)
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// slope fits y = a + b*x by least squares over x = 0..n-1 and returns b.
func slope(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		x := float64(i)
		sumX += x
		sumY += v
		sumXY += x * v
		sumXX += x * x
	}
	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (fn*sumXY - sumX*sumY) / denom
}

// growthRate compares the mean of the second half of the series against
// the first: 0 for constant series, ~1 when the level doubles.
func growthRate(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mid := len(values) / 2
	first := mean(values[:mid])
	second := mean(values[mid:])
	if first == 0 {
		return 0
	}
	return (second - first) / first
}

// trend is the least-squares slope normalized by the series mean, so a
// flat series reports 0 regardless of level.
func trend(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	if m == 0 {
		return 0
	}
	return slope(values) / m
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// sanitize maps non-finite values to 0 before they reach serialization.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

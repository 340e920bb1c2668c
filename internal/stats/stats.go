// Package stats wraps gonum for the descriptive statistics shared by
// profiling, cleaning and analysis. Quantiles interpolate linearly between
// order statistics at rank (n-1)p, so the median of an even-sized sample is
// the mean of its two middle values.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"podium/internal/athlete/models"
)

// Summarize returns the summary of values; ok is false for an empty sample.
// values is not modified.
func Summarize(values []float64) (models.Summary, bool) {
	if len(values) == 0 {
		return models.Summary{}, false
	}
	xs := sorted(values)
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 || math.IsNaN(std) {
		std = 0
	}
	return models.Summary{
		Min:    xs[0],
		Q1:     quantile(xs, 0.25),
		Median: quantile(xs, 0.5),
		Q3:     quantile(xs, 0.75),
		Max:    xs[len(xs)-1],
		Mean:   mean,
		StdDev: std,
	}, true
}

// Median returns the sample median; ok is false for an empty sample.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return quantile(sorted(values), 0.5), true
}

// Mean returns the arithmetic mean; ok is false for an empty sample.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	return stat.Mean(values, nil), true
}

// Outliers returns the values outside the Tukey fences of s, in input order.
func Outliers(values []float64, s models.Summary) []float64 {
	lower, upper := s.Fences()
	var out []float64
	for _, v := range values {
		if v < lower || v > upper {
			out = append(out, v)
		}
	}
	return out
}

// quantile expects xs sorted and non-empty.
func quantile(xs []float64, p float64) float64 {
	h := float64(len(xs)-1) * p
	lo := int(math.Floor(h))
	if lo >= len(xs)-1 {
		return xs[len(xs)-1]
	}
	return xs[lo] + (h-float64(lo))*(xs[lo+1]-xs[lo])
}

func sorted(values []float64) []float64 {
	xs := make([]float64, len(values))
	copy(xs, values)
	sort.Float64s(xs)
	return xs
}

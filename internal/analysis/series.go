// Package analysis computes the figures the reference backend serves: price
// returns and rolling windows for stock files, and listing breakdowns for
// metadata files.
package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// Rolling windows used by the chart and returns endpoints.
const (
	ShortWindow      = 20
	LongWindow       = 50
	ReturnsVolWindow = 30
	TradingDays      = 252
)

// PctChange returns the fractional change from the previous value. The
// first element, and any step touching a missing or zero base, is NaN.
func PctChange(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		if i == 0 || math.IsNaN(xs[i]) || math.IsNaN(xs[i-1]) || xs[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = xs[i]/xs[i-1] - 1
	}
	return out
}

// RollingMean is the trailing mean over window values. Positions without a
// full window of present values are NaN.
func RollingMean(xs []float64, window int) []float64 {
	return rolling(xs, window, func(w []float64) float64 { return stat.Mean(w, nil) })
}

// RollingStd is the trailing sample standard deviation over window values.
func RollingStd(xs []float64, window int) []float64 {
	return rolling(xs, window, func(w []float64) float64 { return stat.StdDev(w, nil) })
}

func rolling(xs []float64, window int, fn func([]float64) float64) []float64 {
	out := make([]float64, len(xs))
	for i := range xs {
		out[i] = math.NaN()
		if window <= 0 || i+1 < window {
			continue
		}
		w := xs[i+1-window : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = fn(w)
	}
	return out
}

// CumulativeReturn compounds returns as the running product of 1+r.
// Missing returns stay missing and do not reset the product.
func CumulativeReturn(returns []float64) []float64 {
	out := make([]float64, len(returns))
	acc := 1.0
	for i, r := range returns {
		if math.IsNaN(r) {
			out[i] = math.NaN()
			continue
		}
		acc *= 1 + r
		out[i] = acc
	}
	return out
}

// Present drops NaN and infinite values.
func Present(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			out = append(out, x)
		}
	}
	return out
}

func hasNaN(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}

// Quantile uses linear interpolation between closest ranks, matching the
// default of numpy and pandas.
func Quantile(xs []float64, q float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (pos-float64(lo))*(sorted[hi]-sorted[lo])
}

// Round rounds to places decimals. NaN comes back as nil so it encodes as
// JSON null.
func Round(x float64, places int) interface{} {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil
	}
	r, err := stats.Round(x, places)
	if err != nil {
		return nil
	}
	return r
}

// Correlate returns the Pearson correlation of two columns over the rows
// where both are present.
func Correlate(x, y []float64) float64 {
	var xs, ys []float64
	for i := range x {
		if i >= len(y) || math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Correlation(xs, ys, nil)
}

// Count is one bucket of a value_counts style breakdown.
type Count struct {
	Value string
	N     int
}

// ValueCounts tallies non-empty cells, most frequent first. Ties keep the
// order in which values first appeared.
func ValueCounts(cells []string) []Count {
	index := map[string]int{}
	var counts []Count
	for _, c := range cells {
		if c == "" {
			continue
		}
		i, ok := index[c]
		if !ok {
			i = len(counts)
			index[c] = i
			counts = append(counts, Count{Value: c})
		}
		counts[i].N++
	}
	sort.SliceStable(counts, func(a, b int) bool { return counts[a].N > counts[b].N })
	return counts
}

// Mode returns the most frequent non-empty cell, picking the smallest value
// among ties.
func Mode(cells []string) (string, bool) {
	counts := ValueCounts(cells)
	if len(counts) == 0 {
		return "", false
	}
	best := counts[0]
	for _, c := range counts[1:] {
		if c.N < best.N {
			break
		}
		if c.Value < best.Value {
			best = c
		}
	}
	return best.Value, true
}

func mean(xs []float64) float64 {
	m, err := stats.Mean(xs)
	if err != nil {
		return math.NaN()
	}
	return m
}

func sampleStd(xs []float64) float64 {
	sd, err := stats.StandardDeviationSample(xs)
	if err != nil {
		return math.NaN()
	}
	return sd
}

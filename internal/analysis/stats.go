package analysis

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Present drops NaN entries.
func Present(vals []float64) []float64 {
	out := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Mean of the present values; NaN when none are present.
func Mean(vals []float64) float64 {
	xs := Present(vals)
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Median of the present values with linear interpolation between the two
// middle values; NaN when none are present.
func Median(vals []float64) float64 {
	xs := Present(vals)
	if len(xs) == 0 {
		return math.NaN()
	}
	sort.Float64s(xs)
	return quantile(xs, 0.5)
}

// Pearson computes the correlation coefficient over rows where both x and y
// are present. It returns NaN with fewer than two complete pairs or when
// either side has zero variance.
func Pearson(x, y []float64) float64 {
	xs, ys := PairwiseComplete(x, y)
	if len(xs) < 2 {
		return math.NaN()
	}
	r := stat.Correlation(xs, ys, nil)
	if r > 1 {
		r = 1
	} else if r < -1 {
		r = -1
	}
	return r
}

// PairwiseComplete keeps the positions where both slices hold a value.
func PairwiseComplete(x, y []float64) ([]float64, []float64) {
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

// CorrMatrix holds a symmetric Pearson correlation matrix.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// Correlations builds the pairwise-complete correlation matrix of cols.
func Correlations(names []string, cols [][]float64) *CorrMatrix {
	n := len(cols)
	mat := make([][]float64, n)
	for i := range mat {
		mat[i] = make([]float64, n)
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			r := Pearson(cols[a], cols[b])
			if a == b && !math.IsNaN(r) {
				r = 1
			}
			mat[a][b] = r
			mat[b][a] = r
		}
	}
	return &CorrMatrix{Columns: append([]string(nil), names...), Values: mat}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

package analysis

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/edakit/internal/table"
)

var (
	// ErrInvalidMethod is returned for an unrecognized imputation method.
	ErrInvalidMethod = errors.New("method must be 'mean', 'mode' or 'median'")
	// ErrNoValues is returned when a mode is requested from a column with no present values.
	ErrNoValues = errors.New("column has no present values")
)

// Method selects the statistic used to fill missing cells.
type Method string

const (
	MethodMean   Method = "mean"
	MethodMedian Method = "median"
	MethodMode   Method = "mode"
)

// ParseMethod validates a method name.
func ParseMethod(s string) (Method, error) {
	switch m := Method(strings.ToLower(strings.TrimSpace(s))); m {
	case MethodMean, MethodMedian, MethodMode:
		return m, nil
	}
	return "", fmt.Errorf("%w: got %q", ErrInvalidMethod, s)
}

// Impute fills missing cells of column with its mean, median or mode.
// The table is mutated in place and returned. On error it is unchanged.
func Impute(t *table.Table, column string, method string) (*table.Table, error) {
	m, err := ParseMethod(method)
	if err != nil {
		return t, err
	}
	value, err := fillValue(t, column, m)
	if err != nil {
		return t, err
	}
	if value == "" {
		// mean/median of an all-missing column is itself missing
		slog.Warn("nothing to impute from", "column", column, "method", string(m))
		return t, nil
	}
	n, err := t.Fill(column, value)
	if err != nil {
		return t, err
	}
	slog.Debug("imputed column", "column", column, "method", string(m), "value", value, "filled", n)
	return t, nil
}

// fillValue returns the text form of the statistic, or "" when it is undefined.
func fillValue(t *table.Table, column string, m Method) (string, error) {
	if m == MethodMode {
		return Mode(t, column)
	}
	vals, err := t.Floats(column)
	if err != nil {
		return "", err
	}
	var v float64
	if m == MethodMean {
		v = Mean(vals)
	} else {
		v = Median(vals)
	}
	if math.IsNaN(v) {
		return "", nil
	}
	return table.FormatFloat(v), nil
}

// Mode returns the most frequent present value of column. Ties go to the
// smallest value, compared numerically for numeric columns.
func Mode(t *table.Table, column string) (string, error) {
	cat, err := t.IsCategorical(column)
	if err != nil {
		return "", err
	}
	vals, present, err := t.Texts(column)
	if err != nil {
		return "", err
	}
	counts := map[string]int{}
	for i, v := range vals {
		if present[i] {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return "", fmt.Errorf("mode of %q: %w", column, ErrNoValues)
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		if !cat {
			a, errA := strconv.ParseFloat(keys[i], 64)
			b, errB := strconv.ParseFloat(keys[j], 64)
			if errA == nil && errB == nil {
				return a < b
			}
		}
		return keys[i] < keys[j]
	})
	return keys[0], nil
}

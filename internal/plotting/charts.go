package plotting

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"github.com/KaramelBytes/edakit/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

var (
	// ErrNoColumns is returned when a chart is requested without columns.
	ErrNoColumns = errors.New("no columns given")
	// ErrUnsupportedPair is returned for column type combinations that have no bivariate chart.
	ErrUnsupportedPair = errors.New("no chart for this column type combination")
	// ErrNoValues is returned when a column has nothing to plot.
	ErrNoValues = errors.New("no values to plot")
)

// HistBins is the number of histogram bins for numeric distributions.
const HistBins = 30

// Univariate shows the distribution of one column: a count plot for
// categorical data, a histogram with a density curve for numeric data.
func Univariate(d Display, t *table.Table, column string) error {
	cat, err := t.IsCategorical(column)
	if err != nil {
		return err
	}
	if cat {
		return countPlot(d, t, column)
	}
	vals, err := t.Floats(column)
	if err != nil {
		return err
	}
	xs := analysis.Present(vals)
	if len(xs) == 0 {
		return fmt.Errorf("%w: %q", ErrNoValues, column)
	}
	title := fmt.Sprintf("Distribution of %s", column)
	p := newPlot(title, column, "Frequency")
	h, err := histogram(xs, HistBins)
	if err != nil {
		return fmt.Errorf("histogram %q: %w", column, err)
	}
	p.Add(h)
	if fn := densityOverlay(xs, h.Width); fn != nil {
		p.Add(fn)
	}
	_, err = d.Show(Chart{Kind: "histogram", Title: title, Figure: p})
	return err
}

func countPlot(d Display, t *table.Table, column string) error {
	vals, present, err := t.Texts(column)
	if err != nil {
		return err
	}
	counts := map[string]int{}
	var order []string
	for i, v := range vals {
		if !present[i] {
			continue
		}
		if _, ok := counts[v]; !ok {
			order = append(order, v)
		}
		counts[v]++
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: %q", ErrNoValues, column)
	}
	heights := make([]float64, len(order))
	for i, v := range order {
		heights[i] = float64(counts[v])
	}
	title := fmt.Sprintf("Count Plot of %s", column)
	p := newPlot(title, column, "Count")
	bars, err := barChart(heights, len(heights))
	if err != nil {
		return fmt.Errorf("count plot %q: %w", column, err)
	}
	p.Add(bars)
	p.NominalX(order...)
	_, err = d.Show(Chart{Kind: "count", Title: title, Figure: p})
	return err
}

// Bivariate shows the relationship of two columns. Two non-categorical
// columns give a scatter plot; a categorical first column with a numeric
// second column gives a box plot per category. Other combinations return
// ErrUnsupportedPair and show nothing.
func Bivariate(d Display, t *table.Table, col1, col2 string) error {
	cat1, err := t.IsCategorical(col1)
	if err != nil {
		return err
	}
	cat2, err := t.IsCategorical(col2)
	if err != nil {
		return err
	}
	switch {
	case !cat1 && !cat2:
		return scatterPlot(d, t, col1, col2)
	case cat1 && !cat2:
		return boxPlot(d, t, col1, col2)
	default:
		return fmt.Errorf("%w: %q (categorical=%t) vs %q (categorical=%t)", ErrUnsupportedPair, col1, cat1, col2, cat2)
	}
}

func scatterPlot(d Display, t *table.Table, col1, col2 string) error {
	xs, ys, err := completePairs(t, col1, col2)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Scatter Plot of %s vs %s", col1, col2)
	p := newPlot(title, col1, col2)
	s, err := scatter(toXYs(xs, ys))
	if err != nil {
		return fmt.Errorf("scatter %q/%q: %w", col1, col2, err)
	}
	p.Add(s)
	_, err = d.Show(Chart{Kind: "scatter", Title: title, Figure: p})
	return err
}

func boxPlot(d Display, t *table.Table, groupCol, valueCol string) error {
	keys, keyOK, err := t.Texts(groupCol)
	if err != nil {
		return err
	}
	vals, err := t.Floats(valueCol)
	if err != nil {
		return err
	}
	groups := map[string]plotter.Values{}
	var order []string
	for i, k := range keys {
		if !keyOK[i] || math.IsNaN(vals[i]) {
			continue
		}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], vals[i])
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: %q by %q", ErrNoValues, valueCol, groupCol)
	}
	title := fmt.Sprintf("Box Plot of %s by %s", valueCol, groupCol)
	p := newPlot(title, groupCol, valueCol)
	for i, k := range order {
		b, err := plotter.NewBoxPlot(vg.Points(20), float64(i), groups[k])
		if err != nil {
			return fmt.Errorf("box plot %q=%s: %w", groupCol, k, err)
		}
		b.FillColor = barFill
		p.Add(b)
	}
	p.NominalX(order...)
	_, err = d.Show(Chart{Kind: "box", Title: title, Figure: p})
	return err
}

// Multivariate shows a pairwise scatter matrix for more than two columns
// and a correlation heatmap otherwise. All columns must be numeric.
func Multivariate(d Display, t *table.Table, columns []string) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}
	cols := make([][]float64, len(columns))
	for i, c := range columns {
		v, err := t.Floats(c)
		if err != nil {
			return err
		}
		cols[i] = v
	}
	if len(columns) > 2 {
		g, err := pairGrid(columns, cols)
		if err != nil {
			return err
		}
		side := vg.Length(len(columns)) * 2.5 * vg.Inch
		_, err = d.Show(Chart{Kind: "pairplot", Title: "Pair Plot of " + joinNames(columns), Figure: g, Width: side, Height: side})
		return err
	}
	m := analysis.Correlations(columns, cols)
	p, err := heatmap(m, "Correlation Heatmap")
	if err != nil {
		return err
	}
	_, err = d.Show(Chart{Kind: "heatmap", Title: "Correlation Heatmap", Figure: p, Width: 10 * vg.Inch, Height: 8 * vg.Inch})
	return err
}

// CorrelationPlot computes the Pearson coefficient of two numeric columns,
// logs it, and shows a scatter plot with the least-squares line annotated
// with the coefficient.
func CorrelationPlot(d Display, t *table.Table, col1, col2 string) (float64, error) {
	xs, ys, err := completePairs(t, col1, col2)
	if err != nil {
		return 0, err
	}
	if len(xs) < 2 {
		return 0, fmt.Errorf("%w: need two complete rows of %q and %q", ErrNoValues, col1, col2)
	}
	r := analysis.Pearson(xs, ys)
	slog.Info("correlation", "x", col1, "y", col2, "r", r, "n", len(xs))

	title := fmt.Sprintf("Correlation between %s and %s", col1, col2)
	p := newPlot(title, col1, col2)
	s, err := scatter(toXYs(xs, ys))
	if err != nil {
		return r, fmt.Errorf("scatter %q/%q: %w", col1, col2, err)
	}
	p.Add(s)
	p.Legend.Top = true
	label := fmt.Sprintf("Pearson r = %.2f", r)

	// A constant column has no least-squares line.
	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(r) || math.IsNaN(alpha) || math.IsNaN(beta) || math.IsInf(beta, 0) {
		p.Legend.Add(label, s)
	} else {
		lo, hi := floats.Min(xs), floats.Max(xs)
		line, err := plotter.NewLine(plotter.XYs{{X: lo, Y: alpha + beta*lo}, {X: hi, Y: alpha + beta*hi}})
		if err != nil {
			return r, fmt.Errorf("regression line: %w", err)
		}
		line.Color = lineColor
		line.Width = vg.Points(2)
		p.Add(line)
		p.Legend.Add(label, line)
	}

	_, err = d.Show(Chart{Kind: "regression", Title: title, Figure: p})
	return r, err
}

func completePairs(t *table.Table, col1, col2 string) ([]float64, []float64, error) {
	x, err := t.Floats(col1)
	if err != nil {
		return nil, nil, err
	}
	y, err := t.Floats(col2)
	if err != nil {
		return nil, nil, err
	}
	xs, ys := analysis.PairwiseComplete(x, y)
	if len(xs) == 0 {
		return nil, nil, fmt.Errorf("%w: %q and %q share no complete rows", ErrNoValues, col1, col2)
	}
	return xs, ys, nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func joinNames(cols []string) string {
	out := ""
	for i, c := range cols {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

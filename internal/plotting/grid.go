package plotting

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"github.com/KaramelBytes/edakit/internal/analysis"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// gridFigure lays out a matrix of plots on a single canvas.
type gridFigure struct {
	plots [][]*plot.Plot
}

func (g *gridFigure) WriterTo(w, h vg.Length, format string) (io.WriterTo, error) {
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return nil, err
	}
	rows := len(g.plots)
	cols := 0
	if rows > 0 {
		cols = len(g.plots[0])
	}
	tiles := draw.Tiles{
		Rows: rows, Cols: cols,
		PadX: vg.Millimeter, PadY: vg.Millimeter,
		PadTop: vg.Points(2), PadBottom: vg.Points(2),
		PadLeft: vg.Points(2), PadRight: vg.Points(2),
	}
	canvases := plot.Align(g.plots, tiles, draw.New(c))
	for i := range g.plots {
		for j, p := range g.plots[i] {
			if p != nil {
				p.Draw(canvases[i][j])
			}
		}
	}
	return c, nil
}

// pairGrid builds the scatter matrix: histograms on the diagonal, pairwise
// complete scatter plots elsewhere. Axis labels appear on the outer edge only.
func pairGrid(names []string, cols [][]float64) (*gridFigure, error) {
	n := len(names)
	g := &gridFigure{plots: make([][]*plot.Plot, n)}
	for i := 0; i < n; i++ {
		g.plots[i] = make([]*plot.Plot, n)
		for j := 0; j < n; j++ {
			p := plot.New()
			if i == n-1 {
				p.X.Label.Text = names[j]
			}
			if j == 0 {
				p.Y.Label.Text = names[i]
			}
			if i == j {
				xs := analysis.Present(cols[i])
				if len(xs) > 0 {
					h, err := histogram(xs, 10)
					if err != nil {
						return nil, fmt.Errorf("pair plot %s: %w", names[i], err)
					}
					p.Add(h)
				}
			} else {
				xs, ys := analysis.PairwiseComplete(cols[j], cols[i])
				if len(xs) > 0 {
					s, err := scatter(toXYs(xs, ys))
					if err != nil {
						return nil, fmt.Errorf("pair plot %s/%s: %w", names[j], names[i], err)
					}
					s.GlyphStyle.Radius = vg.Points(1)
					p.Add(s)
				}
			}
			g.plots[i][j] = p
		}
	}
	return g, nil
}

// corrGrid adapts a correlation matrix to plotter.GridXYZ. Column c of the
// grid is variable c on the x axis; row r is variable r on the y axis.
type corrGrid struct {
	m *analysis.CorrMatrix
}

func (g corrGrid) Dims() (c, r int)   { n := len(g.m.Columns); return n, n }
func (g corrGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// heatmap draws the coefficients on a blue-red scale fixed to [-1, 1] and
// writes each value, to two decimals, in its cell.
func heatmap(m *analysis.CorrMatrix, title string) (*plot.Plot, error) {
	n := len(m.Columns)
	if n == 0 {
		return nil, ErrNoColumns
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(-1)
	cmap.SetMax(1)
	hm := plotter.NewHeatMap(corrGrid{m: m}, cmap.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Gray{Y: 200}

	p := plot.New()
	p.Title.Text = title
	p.Add(hm)

	var labels plotter.XYLabels
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := m.Values[r][c]
			text := "nan"
			if !math.IsNaN(v) {
				text = fmt.Sprintf("%.2f", v)
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, text)
		}
	}
	l, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("heatmap labels: %w", err)
	}
	p.Add(l)
	p.NominalX(m.Columns...)
	p.NominalY(m.Columns...)
	return p, nil
}

package plotting

import (
	"image/color"
	"math"

	mstats "github.com/aclements/go-moremath/stats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	barFill   = color.RGBA{R: 76, G: 114, B: 176, A: 255}
	lineColor = color.RGBA{R: 196, G: 78, B: 82, A: 255}
)

func newPlot(title, xlabel, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	return p
}

func scatter(pts plotter.XYs) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = plotutil.Color(0)
	s.GlyphStyle.Radius = vg.Points(2)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

func histogram(xs []float64, bins int) (*plotter.Histogram, error) {
	h, err := plotter.NewHist(plotter.Values(xs), bins)
	if err != nil {
		return nil, err
	}
	h.FillColor = barFill
	h.LineStyle.Color = color.White
	return h, nil
}

// densityOverlay returns a Gaussian KDE curve scaled to histogram counts,
// or nil when the sample has no spread.
func densityOverlay(xs []float64, binWidth float64) *plotter.Function {
	if len(xs) < 2 || binWidth <= 0 {
		return nil
	}
	sample := mstats.Sample{Xs: xs}
	if sd := sample.StdDev(); sd == 0 || math.IsNaN(sd) {
		return nil
	}
	kde := &mstats.KDE{Sample: sample}
	scale := float64(len(xs)) * binWidth
	lo, hi := sample.Bounds()
	fn := plotter.NewFunction(func(x float64) float64 { return kde.PDF(x) * scale })
	fn.XMin, fn.XMax = lo, hi
	fn.Samples = 200
	fn.Color = lineColor
	fn.Width = vg.Points(2)
	return fn
}

func barChart(vals []float64, n int) (*plotter.BarChart, error) {
	width := vg.Points(40)
	if n > 10 {
		width = vg.Points(math.Max(4, 400/float64(n)))
	}
	for i, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			vals[i] = 0
		}
	}
	b, err := plotter.NewBarChart(plotter.Values(vals), width)
	if err != nil {
		return nil, err
	}
	b.Color = barFill
	b.LineStyle.Width = vg.Length(0)
	return b, nil
}

// Package charts renders the reporter's figures with gonum/plot. Every
// renderer is tolerant of thin input: a variable nobody measured or an empty
// table produces either an empty-axes figure or no file at all, never an
// error.
package charts

import (
	"fmt"
	"image/color"
	"math"
	"path/filepath"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/q8810247/air-quality-insights/internal/series"
)

// Line renders one time series per city for the variable and writes
// line_<variable>.png. An unrecognized variable writes nothing; recognized
// variables always produce a file, empty axes included.
func Line(t series.Table, variable, outDir string) error {
	if !series.IsVariable(variable) {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over time", variable)
	p.X.Label.Text = "time"
	p.Y.Label.Text = variable
	p.X.Tick.Marker = plot.TimeTicks{Format: "01-02 15:04"}
	p.Add(plotter.NewGrid())

	for i, id := range t.CityIDs() {
		xys := cityXYs(t, id, variable)
		if len(xys) == 0 {
			continue
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line %s: %w", variable, err)
		}
		line.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(cityLabel(t, id), line)
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 4*vg.Inch, filepath.Join(outDir, fmt.Sprintf("line_%s.png", variable)))
}

// BoxByCity renders one box per city for the variable and writes
// box_<variable>_by_city.png. Without a single observation anywhere no file
// is written.
func BoxByCity(t series.Table, variable, outDir string) error {
	if !series.IsVariable(variable) {
		return nil
	}

	type group struct {
		label  string
		values plotter.Values
	}
	var groups []group
	for _, id := range t.CityIDs() {
		vals := cityValues(t, id, variable)
		if len(vals) == 0 {
			continue
		}
		groups = append(groups, group{label: cityLabel(t, id), values: vals})
	}
	if len(groups) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s by city", variable)
	p.Y.Label.Text = variable

	names := make([]string, len(groups))
	for i, g := range groups {
		box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), g.values)
		if err != nil {
			return fmt.Errorf("box %s: %w", variable, err)
		}
		p.Add(box)
		names[i] = g.label
	}
	p.NominalX(names...)

	return p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(outDir, fmt.Sprintf("box_%s_by_city.png", variable)))
}

// HistWithStats renders overlaid per-city histograms with dashed mean and
// dotted median markers, written to hist_<variable>_with_stats.png.
func HistWithStats(t series.Table, variable, outDir string) error {
	if !series.IsVariable(variable) {
		return nil
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s distribution", variable)
	p.X.Label.Text = variable
	p.Y.Label.Text = "count"

	var samples []plotter.Values
	maxWeight := 0.0
	for i, id := range t.CityIDs() {
		vals := cityValues(t, id, variable)
		if len(vals) == 0 {
			continue
		}
		h, err := plotter.NewHist(vals, 30)
		if err != nil {
			return fmt.Errorf("hist %s: %w", variable, err)
		}
		base, ok := plotutil.Color(i).(color.RGBA)
		if !ok {
			base = color.RGBA{B: 255, A: 255}
		}
		h.FillColor = color.NRGBA{R: base.R, G: base.G, B: base.B, A: 128}
		p.Add(h)
		p.Legend.Add(cityLabel(t, id), h)
		for _, b := range h.Bins {
			if b.Weight > maxWeight {
				maxWeight = b.Weight
			}
		}
		samples = append(samples, vals)
	}

	if maxWeight == 0 {
		maxWeight = 1
	}
	for _, vals := range samples {
		sorted := make([]float64, len(vals))
		copy(sorted, vals)
		sort.Float64s(sorted)

		mean := stat.Mean(vals, nil)
		med := middle(sorted)

		if err := addVLine(p, mean, maxWeight, color.RGBA{R: 200, A: 255}, []vg.Length{vg.Points(6), vg.Points(3)}); err != nil {
			return err
		}
		if err := addVLine(p, med, maxWeight, color.RGBA{G: 150, A: 255}, []vg.Length{vg.Points(2), vg.Points(3)}); err != nil {
			return err
		}
	}
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, filepath.Join(outDir, fmt.Sprintf("hist_%s_with_stats.png", variable)))
}

// CorrHeatmap renders the Pearson correlation matrix over every variable
// with data, written to heatmap_corr.png. Fewer than two usable variables
// writes nothing.
func CorrHeatmap(t series.Table, outDir string) error {
	vars := usableVariables(t)
	if len(vars) < 2 {
		return nil
	}

	grid := corrGrid{names: vars, cells: make([][]float64, len(vars))}
	for i := range grid.cells {
		grid.cells[i] = make([]float64, len(vars))
		for j := range grid.cells[i] {
			grid.cells[i][j] = pairCorrelation(t, vars[i], vars[j])
		}
	}

	p := plot.New()
	p.Title.Text = "correlation heatmap"
	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min, hm.Max = -1, 1
	p.Add(hm)

	ticks := make([]plot.Tick, len(vars))
	for i, name := range vars {
		ticks[i] = plot.Tick{Value: float64(i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)
	p.Y.Tick.Marker = plot.ConstantTicks(ticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -0.5

	return p.Save(6*vg.Inch, 5*vg.Inch, filepath.Join(outDir, "heatmap_corr.png"))
}

// corrGrid adapts the square correlation matrix to the heat map's grid
// interface.
type corrGrid struct {
	names []string
	cells [][]float64
}

func (g corrGrid) Dims() (c, r int)   { return len(g.names), len(g.names) }
func (g corrGrid) Z(c, r int) float64 { return g.cells[r][c] }
func (g corrGrid) X(c int) float64    { return float64(c) }
func (g corrGrid) Y(r int) float64    { return float64(r) }

// pairCorrelation computes the Pearson correlation over rows carrying both
// variables. Undefined correlations (no joint observations, zero variance)
// render as 0.
func pairCorrelation(t series.Table, a, b string) float64 {
	var xs, ys []float64
	for _, row := range t.Rows {
		x, okX := row.Value(a)
		y, okY := row.Value(b)
		if !okX || !okY || !finite(x) || !finite(y) {
			continue
		}
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return 0
	}
	r := stat.Correlation(xs, ys, nil)
	if !finite(r) {
		return 0
	}
	return r
}

func usableVariables(t series.Table) []string {
	var out []string
	for _, v := range series.Variables {
		for _, row := range t.Rows {
			if x, ok := row.Value(v); ok && finite(x) {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

func addVLine(p *plot.Plot, x, height float64, c color.Color, dashes []vg.Length) error {
	if !finite(x) {
		return nil
	}
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: height}})
	if err != nil {
		return err
	}
	line.Color = c
	line.Dashes = dashes
	p.Add(line)
	return nil
}

func cityXYs(t series.Table, cityID int, variable string) plotter.XYs {
	var xys plotter.XYs
	for _, row := range t.Rows {
		if row.CityID != cityID {
			continue
		}
		if v, ok := row.Value(variable); ok && finite(v) {
			xys = append(xys, plotter.XY{X: float64(row.Hour.Unix()), Y: v})
		}
	}
	return xys
}

func cityValues(t series.Table, cityID int, variable string) plotter.Values {
	var vals plotter.Values
	for _, row := range t.Rows {
		if row.CityID != cityID {
			continue
		}
		if v, ok := row.Value(variable); ok && finite(v) {
			vals = append(vals, v)
		}
	}
	return vals
}

func cityLabel(t series.Table, cityID int) string {
	for _, row := range t.Rows {
		if row.CityID == cityID && row.CityName != "" {
			return row.CityName
		}
	}
	return fmt.Sprintf("%d", cityID)
}

func middle(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

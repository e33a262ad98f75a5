// internal/chart/chart.go
// Package: chart

// Package chart renders aggregate tables as PNG charts with 95%
// confidence error bars.
package chart

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/mwiater/arstats/internal/aggregate"
	"github.com/mwiater/arstats/internal/export"
	"github.com/mwiater/arstats/internal/group"
	"github.com/mwiater/arstats/internal/record"
)

// Options sizes a chart. Width and Height are in centimeters. Title
// replaces the default title when set.
type Options struct {
	Width  float64
	Height float64
	Title  string
}

func (o Options) title(dflt string) string {
	if o.Title != "" {
		return o.Title
	}
	return dflt
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 16
	}
	if h <= 0 {
		h = 10
	}
	return vg.Length(w) * vg.Centimeter, vg.Length(h) * vg.Centimeter
}

// errorPoints is plottable as both a line and a set of error bars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

var divergedColor = color.RGBA{R: 200, A: 255}

// ErrorCurves writes one chart for category: one curve per train size,
// mean of m over lag (log2 axis) with 95% error bars. Baseline references
// of the category are drawn as dashed horizontal lines and diverged
// entries as crosses at aggregate.DivergenceDisplayValue. It returns the
// number of curves drawn.
func ErrorCurves(path string, t *aggregate.Table, m record.Measurement, category string, opts Options) (int, error) {
	p := plot.New()
	p.Title.Text = opts.title(fmt.Sprintf("%s - %s", CategoryName(category), strings.ToUpper(string(m))))
	p.X.Label.Text = "lag"
	p.Y.Label.Text = string(m)
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = log2Ticks{}
	p.Legend.Top = true

	curves := 0
	var diverged plotter.XYs
	for i, ts := range t.SortedTrainSizes(category) {
		var pts errorPoints
		for _, lag := range t.SortedLags(category, ts) {
			key := group.Key{Category: category, TrainSize: ts, Lag: lag}
			if s, ok := t.Lookup(key, m); ok {
				pts.XYs = append(pts.XYs, plotter.XY{X: float64(lag), Y: s.Mean})
				pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{s.CI95, s.CI95})
			}
		}
		if len(pts.XYs) == 0 {
			continue
		}
		if err := addCurve(p, fmt.Sprintf("train %d", ts), pts, i); err != nil {
			return 0, err
		}
		curves++
	}
	for _, d := range t.Divergences() {
		if d.Key.Category != category || d.Measurement != m || d.Baseline != record.NoBaseline {
			continue
		}
		if _, ok := t.Lookup(d.Key, m); !ok {
			diverged = append(diverged, plotter.XY{X: float64(d.Key.Lag), Y: aggregate.DivergenceDisplayValue})
		}
	}
	curves += addDiverged(p, diverged)
	if p.X.Min == p.X.Max {
		p.X.Min /= 2
		p.X.Max *= 2
	}

	for i, id := range []record.Baseline{record.SilenceSubstitution, record.PatternReplication} {
		s, ok := t.Baseline(category, id, m)
		if !ok {
			continue
		}
		mean := s.Mean
		fn := plotter.NewFunction(func(float64) float64 { return mean })
		fn.Color = plotutil.Color(len(plotutil.DefaultColors) - 1 - i)
		fn.Dashes = plotutil.Dashes(1 + i)
		fn.Width = vg.Points(1)
		p.Add(fn)
		p.Legend.Add(id.Label(), fn)
	}

	if curves == 0 {
		return 0, nil
	}
	return curves, save(p, path, opts)
}

// Rows writes one chart of flattened rows: one curve per row over the
// columns of the first row, in header order.
func Rows(path, title, yLabel string, rows []export.Series, opts Options) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	cols := rows[0].Columns()

	p := plot.New()
	p.Title.Text = opts.title(title)
	p.X.Label.Text = "train size - lag"
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	ticks := make([]plot.Tick, len(cols))
	for i, c := range cols {
		ticks[i] = plot.Tick{Value: float64(i), Label: c.String()}
	}
	p.X.Tick.Marker = plot.ConstantTicks(ticks)

	curves := 0
	var diverged plotter.XYs
	for i, row := range rows {
		var pts errorPoints
		for x, c := range cols {
			cell, ok := row.Cells[c]
			switch {
			case !ok:
			case cell.Diverged:
				diverged = append(diverged, plotter.XY{X: float64(x), Y: aggregate.DivergenceDisplayValue})
			default:
				pts.XYs = append(pts.XYs, plotter.XY{X: float64(x), Y: cell.Stat.Mean})
				pts.YErrors = append(pts.YErrors, struct{ Low, High float64 }{cell.Stat.CI95, cell.Stat.CI95})
			}
		}
		if len(pts.XYs) == 0 {
			continue
		}
		if err := addCurve(p, AlgorithmName(row.Label), pts, i); err != nil {
			return 0, err
		}
		curves++
	}
	curves += addDiverged(p, diverged)
	if curves == 0 {
		return 0, nil
	}
	return curves, save(p, path, opts)
}

// Line writes one chart of values over their index, as used for the
// prediction curve of a single trial. Nothing is written for no values.
func Line(path, title string, values []float64, opts Options) (bool, error) {
	if len(values) == 0 {
		return false, nil
	}
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i] = plotter.XY{X: float64(i), Y: v}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return false, fmt.Errorf("failed to build line %s: %w", title, err)
	}
	line.Color = plotutil.Color(0)

	p := plot.New()
	p.Title.Text = opts.title(title)
	p.X.Label.Text = "sample"
	p.Add(line)
	return true, save(p, path, opts)
}

func addCurve(p *plot.Plot, label string, pts errorPoints, i int) error {
	line, points, err := plotter.NewLinePoints(pts.XYs)
	if err != nil {
		return fmt.Errorf("failed to build curve %s: %w", label, err)
	}
	line.Color = plotutil.Color(i)
	points.Color = plotutil.Color(i)
	points.Shape = plotutil.Shape(i)

	bars, err := plotter.NewYErrorBars(pts)
	if err != nil {
		return fmt.Errorf("failed to build error bars %s: %w", label, err)
	}
	bars.Color = plotutil.Color(i)

	p.Add(line, points, bars)
	p.Legend.Add(label, line, points)
	return nil
}

func addDiverged(p *plot.Plot, pts plotter.XYs) int {
	if len(pts) == 0 {
		return 0
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return 0
	}
	sc.Shape = draw.CrossGlyph{}
	sc.Color = divergedColor
	sc.Radius = vg.Points(4)
	p.Add(sc)
	p.Legend.Add("diverged", sc)
	return 1
}

func save(p *plot.Plot, path string, opts Options) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create chart directory: %w", err)
	}
	w, h := opts.size()
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}

// log2Ticks labels powers of two, the lags and train sizes benchmarked.
type log2Ticks struct{}

func (log2Ticks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	for v := 1.0; v <= max; v *= 2 {
		if v < min {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: v, Label: fmt.Sprintf("%g", v)})
	}
	return ticks
}

// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/ptsp-tools/expstat/expproc"
)

// A Chart configures the charts of one metric.
type Chart struct {
	Metric expproc.Metric

	// XLabel overrides the metric's label on the value axis.
	XLabel string

	// XMin and XMax fix the value axis range if non-nil.
	XMin, XMax *float64

	// Colors maps algorithm labels to display colors. Algorithms
	// without a color get one from a fixed palette.
	Colors map[string]string
}

// The width of a chart, and the height per map row.
const (
	chartWidth  = 16 * vg.Centimeter
	rowHeight   = 1.5 * vg.Centimeter
	minHeight   = 6 * vg.Centimeter
	chartDPI    = 150
	barSpacing  = 0.8 // fraction of a row filled by bars
	outerAlpha  = 0.35
	outerWidth  = 6
	innerWidth  = 2
	meanRadius  = 3
	errorBarCap = 4
)

func (c *Chart) newPlot(title string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = c.XLabel
	if p.X.Label.Text == "" {
		p.X.Label.Text = c.Metric.Label
	}
	p.Legend.Top = true
	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	p.Add(grid)
	return p
}

func (c *Chart) fixRange(p *plot.Plot) {
	if c.XMin != nil {
		p.X.Min = *c.XMin
	}
	if c.XMax != nil {
		p.X.Max = *c.XMax
	}
}

// rowOffset returns the vertical offset of the i'th of n algorithms
// within a map row.
func rowOffset(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	step := barSpacing / float64(n)
	return -barSpacing/2 + step/2 + float64(i)*step
}

type xyErrors struct {
	plotter.XYs
	plotter.XErrors
}

// ErrorBars plots, for every map and algorithm, the min..max range as
// a wide translucent bar, the mean ± one standard deviation as a
// narrow bar, and the mean as a dot.
func (c *Chart) ErrorBars(sums []expproc.GroupedSummary) (*plot.Plot, error) {
	var algs, maps []string
	seenAlg, seenMap := make(map[string]bool), make(map[string]bool)
	for _, s := range sums {
		if !seenAlg[s.Algorithm] {
			seenAlg[s.Algorithm] = true
			algs = append(algs, s.Algorithm)
		}
		if !seenMap[s.MapID] {
			seenMap[s.MapID] = true
			maps = append(maps, s.MapID)
		}
	}
	expproc.SortMapIDs(maps)
	row := make(map[string]int, len(maps))
	for i, id := range maps {
		row[id] = i
	}

	p := c.newPlot(c.Metric.Name)
	for i, alg := range algs {
		var outer, inner xyErrors
		for _, s := range sums {
			if s.Algorithm != alg || s.N == 0 {
				continue
			}
			y := float64(row[s.MapID]) + rowOffset(i, len(algs))
			sd := s.StdDev
			if math.IsNaN(sd) {
				sd = 0
			}
			outer.XYs = append(outer.XYs, plotter.XY{X: s.Mean, Y: y})
			outer.XErrors = append(outer.XErrors, struct{ Low, High float64 }{s.Mean - s.Min, s.Max - s.Mean})
			inner.XYs = append(inner.XYs, plotter.XY{X: s.Mean, Y: y})
			inner.XErrors = append(inner.XErrors, struct{ Low, High float64 }{sd, sd})
		}
		if len(outer.XYs) == 0 {
			continue
		}
		clr := setColor(i, c.Colors[alg])

		ob, err := plotter.NewXErrorBars(outer)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		ob.LineStyle.Color = translucent(clr, outerAlpha)
		ob.LineStyle.Width = vg.Points(outerWidth)
		ob.CapWidth = 0

		ib, err := plotter.NewXErrorBars(inner)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		ib.LineStyle.Color = clr
		ib.LineStyle.Width = vg.Points(innerWidth)
		ib.CapWidth = vg.Points(errorBarCap)

		mean, err := plotter.NewScatter(outer.XYs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		mean.GlyphStyle.Color = clr
		mean.GlyphStyle.Shape = draw.CircleGlyph{}
		mean.GlyphStyle.Radius = vg.Points(meanRadius)

		p.Add(ob, ib, mean)
		p.Legend.Add(alg, mean)
	}
	p.NominalY(maps...)
	c.fixRange(p)
	return p, nil
}

// Means plots a grouped horizontal bar chart of the per-map means in
// pv. Maps an algorithm has no results for get no bar.
func (c *Chart) Means(pv *expproc.Pivot) (*plot.Plot, error) {
	p := c.newPlot("Mean " + c.Metric.Name)
	n := len(pv.Algorithms)
	width := rowHeight * barSpacing
	if n > 0 {
		width /= vg.Length(n)
	}
	for i, alg := range pv.Algorithms {
		vals := make(plotter.Values, len(pv.MapIDs))
		for j, v := range pv.Means[i] {
			if !math.IsNaN(v) {
				vals[j] = v
			}
		}
		bars, err := plotter.NewBarChart(vals, width)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", alg, err)
		}
		bars.Horizontal = true
		bars.Offset = vg.Length(rowOffset(i, n)) * rowHeight
		bars.Color = setColor(i, c.Colors[alg])
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(alg, bars)
	}
	p.NominalY(pv.MapIDs...)
	c.fixRange(p)
	return p, nil
}

// Chart image formats.
const (
	PNG = "png"
	SVG = "svg"
)

// Save writes p to dir/name.<format> for each format and returns the
// written paths. Its height grows with the number of rows of p.
func Save(p *plot.Plot, rows int, dir, name string, formats ...string) ([]string, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, err
	}
	height := vg.Length(rows+1) * rowHeight
	if height < minHeight {
		height = minHeight
	}

	var paths []string
	for _, format := range formats {
		var can vg.CanvasWriterTo
		switch format {
		case PNG:
			can = vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(chartWidth, height),
				vgimg.UseDPI(chartDPI), vgimg.UseBackgroundColor(color.White))}
		case SVG:
			can = vgsvg.New(chartWidth, height)
		default:
			return paths, fmt.Errorf("unknown chart format %q", format)
		}
		p.Draw(draw.New(can))

		path := filepath.Join(dir, name+"."+format)
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		_, err = can.WriteTo(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// FileName returns the base name of the chart of kind for metric.
func FileName(metric, kind string) string {
	return metric + "-" + kind
}

package render

import (
	"fmt"
	"math"
	"strconv"

	"mbtidash/internal/core"
)

// Canvas sizes for the inline SVG charts.
const (
	ChartWidth  = 640
	ChartHeight = 360
	PieSize     = 360

	plotLeft   = 48.0
	plotRight  = 12.0
	plotTop    = 16.0
	plotBottom = 40.0
	barGap     = 0.2
)

// BarView is one positioned bar.
type BarView struct {
	X, Y, Width, Height string
	LabelX, LabelY      string
	Fill                string
	Label               string
	Score               int
}

// Tick is a y-axis gridline.
type Tick struct {
	Y     string
	Label string
}

// BarGeometry is the template input for the bar chart.
type BarGeometry struct {
	Width, Height int
	PlotLeft      string
	PlotRight     string
	Baseline      string
	Bars          []BarView
	Ticks         []Tick
}

// SliceView is one positioned donut slice.
type SliceView struct {
	Path           string
	Fill           string
	Label          string
	Percent        string
	LabelX, LabelY string
	Emphasized     bool
	Score          int
}

// PieGeometry is the template input for the pie chart.
type PieGeometry struct {
	Size   int
	Slices []SliceView
}

// LayoutBars positions the bars of c on a 0–100 score axis.
func LayoutBars(c core.BarChart) BarGeometry {
	plotW := ChartWidth - plotLeft - plotRight
	plotH := ChartHeight - plotTop - plotBottom
	baseline := plotTop + plotH

	g := BarGeometry{
		Width:     ChartWidth,
		Height:    ChartHeight,
		PlotLeft:  ff(plotLeft),
		PlotRight: ff(ChartWidth - plotRight),
		Baseline:  ff(baseline),
	}
	for v := core.MinScore; v <= core.MaxScore; v += 25 {
		y := baseline - plotH*float64(v)/core.MaxScore
		g.Ticks = append(g.Ticks, Tick{Y: ff(y), Label: strconv.Itoa(v)})
	}
	if len(c.Bars) == 0 {
		return g
	}

	step := plotW / float64(len(c.Bars))
	width := step * (1 - barGap)
	for i, b := range c.Bars {
		h := plotH * float64(b.Record.Score) / core.MaxScore
		x := plotLeft + step*float64(i) + (step-width)/2
		g.Bars = append(g.Bars, BarView{
			X:      ff(x),
			Y:      ff(baseline - h),
			Width:  ff(width),
			Height: ff(h),
			LabelX: ff(x + width/2),
			LabelY: ff(baseline + 16),
			Fill:   Plasma(b.Intensity),
			Label:  string(b.Record.Category),
			Score:  b.Record.Score,
		})
	}
	return g
}

// LayoutPie positions the slices of c clockwise from twelve o'clock.
func LayoutPie(c core.PieChart) PieGeometry {
	g := PieGeometry{Size: PieSize}
	cx, cy := PieSize/2.0, PieSize/2.0
	outer := PieSize/2.0 - 8
	inner := outer * c.Hole
	labelR := (outer + inner) / 2

	start := -math.Pi / 2
	for _, s := range c.Slices {
		sweep := 2 * math.Pi * s.Share
		end := start + sweep
		mid := start + sweep/2
		g.Slices = append(g.Slices, SliceView{
			Path:       donutPath(cx, cy, outer, inner, start, end),
			Fill:       SliceFill(s.Emphasized),
			Label:      string(s.Record.Category),
			Percent:    fmt.Sprintf("%.1f%%", s.Share*100),
			LabelX:     ff(cx + labelR*math.Cos(mid)),
			LabelY:     ff(cy + labelR*math.Sin(mid)),
			Emphasized: s.Emphasized,
			Score:      s.Record.Score,
		})
		start = end
	}
	return g
}

func donutPath(cx, cy, outer, inner, start, end float64) string {
	large := 0
	if end-start > math.Pi {
		large = 1
	}
	ox0, oy0 := cx+outer*math.Cos(start), cy+outer*math.Sin(start)
	ox1, oy1 := cx+outer*math.Cos(end), cy+outer*math.Sin(end)
	ix0, iy0 := cx+inner*math.Cos(start), cy+inner*math.Sin(start)
	ix1, iy1 := cx+inner*math.Cos(end), cy+inner*math.Sin(end)
	return fmt.Sprintf("M%s %s A%s %s 0 %d 1 %s %s L%s %s A%s %s 0 %d 0 %s %sZ",
		ff(ox0), ff(oy0), ff(outer), ff(outer), large, ff(ox1), ff(oy1),
		ff(ix1), ff(iy1), ff(inner), ff(inner), large, ff(ix0), ff(iy0))
}

func ff(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

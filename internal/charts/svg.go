// SPDX-License-Identifier: MIT

package charts

import (
	"math"
	"strconv"
	"strings"
)

// Donut geometry, in viewBox units.
const (
	DonutSize        = 200
	donutOuterRadius = 90
	donutInnerRadius = 60
)

// Slice is one drawn donut segment.
type Slice struct {
	Key   string // pending, failed or succeeded
	Label string
	Value int
	Path  string
}

// DonutChart is the laid-out breakdown.
type DonutChart struct {
	Size   int
	Slices []Slice
	Total  string
}

// Donut lays out the non-empty slices of b clockwise from twelve o'clock, in
// the order pending, failed, succeeded. total is the formatted centre label.
func Donut(b Breakdown, total string) DonutChart {
	chart := DonutChart{Size: DonutSize, Total: total}
	if b.Empty() {
		return chart
	}
	parts := []Slice{
		{Key: "pending", Label: "Pending", Value: b.Pending},
		{Key: "failed", Label: "Failed", Value: b.Failed},
		{Key: "succeeded", Label: "Succeeded", Value: b.Succeeded},
	}
	sum := b.Pending + b.Failed + b.Succeeded
	if sum == 0 {
		return chart
	}

	angle := 0.0
	for _, s := range parts {
		if s.Value == 0 {
			continue
		}
		span := 2 * math.Pi * float64(s.Value) / float64(sum)
		s.Path = ringPath(angle, angle+span)
		chart.Slices = append(chart.Slices, s)
		angle += span
	}
	return chart
}

func polar(r, a float64) (float64, float64) {
	c := float64(DonutSize) / 2
	return c + r*math.Sin(a), c - r*math.Cos(a)
}

// ringPath draws the ring segment between angles a0 and a1 (radians). A full
// turn is split in two arcs since SVG cannot draw a closed arc.
func ringPath(a0, a1 float64) string {
	if a1-a0 >= 2*math.Pi-1e-9 {
		mid := a0 + math.Pi
		return ringPath(a0, mid) + " " + ringPath(mid, a1)
	}
	large := "0"
	if a1-a0 > math.Pi {
		large = "1"
	}
	ox0, oy0 := polar(donutOuterRadius, a0)
	ox1, oy1 := polar(donutOuterRadius, a1)
	ix1, iy1 := polar(donutInnerRadius, a1)
	ix0, iy0 := polar(donutInnerRadius, a0)

	var b strings.Builder
	b.WriteString("M" + num(ox0) + "," + num(oy0))
	b.WriteString(" A" + num(donutOuterRadius) + "," + num(donutOuterRadius) + " 0 " + large + " 1 " + num(ox1) + "," + num(oy1))
	b.WriteString(" L" + num(ix1) + "," + num(iy1))
	b.WriteString(" A" + num(donutInnerRadius) + "," + num(donutInnerRadius) + " 0 " + large + " 0 " + num(ix0) + "," + num(iy0))
	b.WriteString(" Z")
	return b.String()
}

// Area chart geometry, in viewBox units.
const (
	AreaWidth   = 600
	AreaHeight  = 200
	areaPadding = 20
	maxTicks    = 12
)

// Tick labels the x axis.
type Tick struct {
	X     string
	Label string
}

// AreaChart is the laid-out duration distribution.
type AreaChart struct {
	Width  int
	Height int
	Fill   string // closed area path
	Line   string // top edge
	Ticks  []Tick
}

// Area lays out points as a filled area over a linear x axis. A single point
// is drawn as a flat band across the chart.
func Area(points []Point) AreaChart {
	chart := AreaChart{Width: AreaWidth, Height: AreaHeight}
	if len(points) == 0 {
		return chart
	}

	minX, maxX, maxY := points[0].X, points[len(points)-1].X, 0
	for _, p := range points {
		maxY = max(maxY, p.Y)
	}
	plotW := float64(AreaWidth - 2*areaPadding)
	plotH := float64(AreaHeight - 2*areaPadding)
	base := float64(AreaHeight - areaPadding)

	xOf := func(x int) float64 {
		if maxX == minX {
			return areaPadding + plotW/2
		}
		return areaPadding + plotW*float64(x-minX)/float64(maxX-minX)
	}
	yOf := func(y int) float64 {
		if maxY == 0 {
			return base
		}
		return base - plotH*float64(y)/float64(maxY)
	}

	coords := make([]string, 0, len(points)+1)
	if len(points) == 1 {
		y := num(yOf(points[0].Y))
		coords = append(coords, num(areaPadding)+","+y, num(areaPadding+plotW)+","+y)
	} else {
		for _, p := range points {
			coords = append(coords, num(xOf(p.X))+","+num(yOf(p.Y)))
		}
	}
	chart.Line = "M" + strings.Join(coords, " L")

	first := strings.SplitN(coords[0], ",", 2)[0]
	last := strings.SplitN(coords[len(coords)-1], ",", 2)[0]
	chart.Fill = "M" + first + "," + num(base) + " L" + strings.Join(coords, " L") + " L" + last + "," + num(base) + " Z"

	step := 1
	if len(points) > maxTicks {
		step = (len(points) + maxTicks - 1) / maxTicks
	}
	for i := 0; i < len(points); i += step {
		chart.Ticks = append(chart.Ticks, Tick{X: num(xOf(points[i].X)), Label: strconv.Itoa(points[i].X)})
	}
	return chart
}

func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

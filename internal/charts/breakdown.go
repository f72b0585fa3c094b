// SPDX-License-Identifier: MIT

// Package charts derives the delivery breakdown and duration distribution of
// a producer and lays them out as SVG geometry.
package charts

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// EmptyText replaces the donut while nothing has been generated.
const EmptyText = "No Messages Generated Yet"

// Breakdown splits a producer's messages into delivery states.
type Breakdown struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Failed    int `json:"failed"`
	Succeeded int `json:"succeeded"`
}

// Empty reports whether there is nothing to chart.
func (b Breakdown) Empty() bool {
	return b.Total == 0
}

// NewBreakdown derives the pie slices: pending = total - sent, and
// succeeded = sent - failed. Slices never go negative.
func NewBreakdown(total, sent, failed int) Breakdown {
	return Breakdown{
		Total:     total,
		Pending:   max(total-sent, 0),
		Failed:    max(failed, 0),
		Succeeded: max(sent-failed, 0),
	}
}

// Point is one bar of the duration distribution: X seconds took Y messages.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Distribution groups equal durations and sorts them by duration.
func Distribution(times []int) []Point {
	counts := make(map[int]int, len(times))
	for _, t := range times {
		counts[t]++
	}
	points := make([]Point, 0, len(counts))
	for x, y := range counts {
		points = append(points, Point{X: x, Y: y})
	}
	sort.Slice(points, func(i, j int) bool { return points[i].X < points[j].X })
	return points
}

// FormatCount renders n with the grouping separators of tag.
func FormatCount(tag language.Tag, n int) string {
	return message.NewPrinter(tag).Sprintf("%d", n)
}

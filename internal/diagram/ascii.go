// Package diagram renders solved beams: terminal charts and schematics
// through asciigraph, and image files through gonum/plot.
package diagram

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/load"
)

// Options controls the terminal rendering size.
type Options struct {
	Width  int
	Height int
}

// DefaultOptions fits a standard terminal.
func DefaultOptions() Options { return Options{Width: 64, Height: 10} }

// Plot renders one quantity from a sample set as a terminal chart.
func Plot(s beam.Samples, q beam.Quantity, opts Options) string {
	ys := s.Values(q)
	if len(ys) == 0 {
		return ""
	}
	caption := fmt.Sprintf("%s [%s]", q, q.Unit())
	return asciigraph.Plot(ys,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption))
}

// PlotAll renders the five quantity charts separated by blank lines.
func PlotAll(s beam.Samples, opts Options) string {
	var sb strings.Builder
	for i, q := range beam.Quantities() {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(Plot(s, q, opts))
	}
	return sb.String()
}

// Schematic draws the beam with its supports, loads and query points on a
// character grid: an elevation line for the member, load markers above it
// and support markers below.
func Schematic(s beam.Schematic, width int) string {
	if width < 16 {
		width = 16
	}
	cols := width - 2
	col := func(x float64) int {
		c := int(math.Round(x / s.Length * float64(cols-1)))
		if c < 0 {
			c = 0
		}
		if c >= cols {
			c = cols - 1
		}
		return c
	}

	loads := make([]rune, cols)
	arrows := make([]rune, cols)
	member := make([]rune, cols)
	under := make([]rune, cols)
	for i := 0; i < cols; i++ {
		loads[i], arrows[i], under[i] = ' ', ' ', ' '
		member[i] = '='
	}

	for _, l := range s.Loads {
		start, end := l.Span()
		switch v := l.(type) {
		case load.Point:
			c := col(v.Coord)
			arrows[c] = pointGlyph(v)
		case load.Torque:
			arrows[col(v.Coord)] = '@'
		case load.Distributed:
			a, b := col(start), col(end)
			for i := a; i <= b; i++ {
				loads[i] = 'v'
				if v.Fx() != 0 && v.Fy() == 0 {
					loads[i] = '>'
				}
			}
		}
	}

	for _, q := range s.QueryPoints {
		member[col(q)] = '+'
	}

	for _, sp := range s.Supports {
		c := col(sp.Coord)
		switch sp.Kind() {
		case "fixed":
			under[c] = '#'
		case "pinned":
			under[c] = '^'
		case "roller":
			under[c] = 'o'
		case "spring":
			under[c] = '}'
		default:
			under[c] = '?'
		}
	}

	var sb strings.Builder
	sb.WriteString(" " + string(loads) + "\n")
	sb.WriteString(" " + string(arrows) + "\n")
	sb.WriteString(" " + string(member) + "\n")
	sb.WriteString(" " + string(under) + "\n")
	sb.WriteString(fmt.Sprintf(" 0%*s\n", cols-1, fmt.Sprintf("%g m", s.Length)))
	return sb.String()
}

func pointGlyph(p load.Point) rune {
	switch {
	case p.Fy() < 0:
		return 'V'
	case p.Fy() > 0:
		return '^'
	case p.Fx() > 0:
		return '>'
	case p.Fx() < 0:
		return '<'
	}
	return '.'
}

// SummaryBox frames a titled list of result lines.
func SummaryBox(title string, lines []string) string {
	maxLen := len(title)
	for _, line := range lines {
		if len(line) > maxLen {
			maxLen = len(line)
		}
	}
	maxLen += 2

	var sb strings.Builder
	border := strings.Repeat("-", maxLen+2)
	sb.WriteString("+" + border + "+\n")
	sb.WriteString(fmt.Sprintf("| %-*s |\n", maxLen, title))
	sb.WriteString("+" + border + "+\n")
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("| %-*s |\n", maxLen, line))
	}
	sb.WriteString("+" + border + "+\n")
	return sb.String()
}

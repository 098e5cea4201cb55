// Package piecewise represents load-effect diagrams as piecewise closed-form
// functions of the beam position. A Func is zero left of its first
// breakpoint and right-continuous at every breakpoint, matching the
// cumulative-from-the-left construction of shear and moment diagrams: the
// value queried exactly at a discontinuity is the value just to its right.
package piecewise

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/aversten/beamsolve/internal/expr"
)

// Func is a piecewise function: pieces[i] applies on [breaks[i], breaks[i+1]),
// the last piece on [breaks[n-1], +inf), and the value is zero for
// x < breaks[0]. A Func with no breaks is identically zero.
type Func struct {
	breaks []float64
	pieces []expr.Expr
}

const mergeEps = 1e-12

// Zero returns the identically zero function.
func Zero() Func { return Func{} }

// Step returns a function that is 0 before a and c from a onward.
func Step(a, c float64) Func {
	if c == 0 {
		return Zero()
	}
	return Func{breaks: []float64{a}, pieces: []expr.Expr{expr.Num(c)}}
}

// Window returns a function equal to e on [a, b) and zero elsewhere.
func Window(e expr.Expr, a, b float64) Func {
	return Func{breaks: []float64{a, b}, pieces: []expr.Expr{e, expr.Num(0)}}
}

// FromExpr returns a function equal to e on [start, +inf).
func FromExpr(e expr.Expr, start float64) Func {
	return Func{breaks: []float64{start}, pieces: []expr.Expr{e}}
}

// IsZero reports whether the function has no pieces.
func (f Func) IsZero() bool { return len(f.breaks) == 0 }

// Breaks returns the breakpoints of the function.
func (f Func) Breaks() []float64 {
	out := make([]float64, len(f.breaks))
	copy(out, f.breaks)
	return out
}

// pieceAt returns the expression active at x, or nil left of the domain.
func (f Func) pieceAt(x float64) expr.Expr {
	i := sort.SearchFloat64s(f.breaks, x)
	// SearchFloat64s returns the first index with breaks[i] >= x; the active
	// piece starts at the last break <= x.
	if i < len(f.breaks) && f.breaks[i] == x {
		return f.pieces[i]
	}
	if i == 0 {
		return nil
	}
	return f.pieces[i-1]
}

// Eval returns the value at x, right-continuous at breakpoints.
func (f Func) Eval(x float64) float64 {
	p := f.pieceAt(x)
	if p == nil {
		return 0
	}
	return p.Eval(x)
}

// evalLeft returns the limit from the left at x.
func (f Func) evalLeft(x float64) float64 {
	i := sort.SearchFloat64s(f.breaks, x)
	if i == 0 {
		return 0
	}
	return f.pieces[i-1].Eval(x)
}

// Add returns f+g on the merged breakpoint set.
func (f Func) Add(g Func) Func {
	if f.IsZero() {
		return g
	}
	if g.IsZero() {
		return f
	}
	merged := mergeBreaks(f.breaks, g.breaks)
	pieces := make([]expr.Expr, len(merged))
	for i, b := range merged {
		// Probe inside the interval so near-duplicate breakpoints that were
		// merged away still select the correct piece of each operand.
		probe := b
		if i+1 < len(merged) {
			probe = (b + merged[i+1]) / 2
		}
		fp := f.pieceAt(probe)
		gp := g.pieceAt(probe)
		switch {
		case fp == nil:
			pieces[i] = gp
		case gp == nil:
			pieces[i] = fp
		default:
			pieces[i] = expr.Add(fp, gp)
		}
	}
	return Func{breaks: merged, pieces: pieces}
}

// Scale returns c*f.
func (f Func) Scale(c float64) Func {
	if c == 0 || f.IsZero() {
		return Zero()
	}
	pieces := make([]expr.Expr, len(f.pieces))
	for i, p := range f.pieces {
		pieces[i] = expr.Mul(expr.Num(c), p)
	}
	return Func{breaks: append([]float64(nil), f.breaks...), pieces: pieces}
}

// Integrate returns the cumulative integral from the left end of the domain,
// continuous across breakpoints and zero left of the first break. It fails
// when a piece has no closed-form antiderivative.
func (f Func) Integrate() (Func, error) {
	if f.IsZero() {
		return Zero(), nil
	}
	pieces := make([]expr.Expr, len(f.pieces))
	acc := 0.0
	for i, p := range f.pieces {
		anti, err := p.Antiderivative()
		if err != nil {
			return Func{}, err
		}
		start := f.breaks[i]
		// piece value: anti(x) - anti(start) + accumulated integral
		pieces[i] = expr.Add(anti, expr.Num(acc-anti.Eval(start)))
		if i+1 < len(f.breaks) {
			acc += anti.Eval(f.breaks[i+1]) - anti.Eval(start)
		}
	}
	return Func{breaks: append([]float64(nil), f.breaks...), pieces: pieces}, nil
}

// DefiniteIntegral returns the integral of f over [a, b].
func (f Func) DefiniteIntegral(a, b float64) (float64, error) {
	g, err := f.Integrate()
	if err != nil {
		return 0, err
	}
	return g.Eval(b) - g.Eval(a), nil
}

// Sample evaluates f at n+1 evenly spaced points across [lo, hi].
func (f Func) Sample(lo, hi float64, n int) (xs, ys []float64) {
	if n < 1 {
		n = 1
	}
	xs = make([]float64, n+1)
	ys = make([]float64, n+1)
	for i := 0; i <= n; i++ {
		x := lo + (hi-lo)*float64(i)/float64(n)
		xs[i] = x
		ys[i] = f.Eval(x)
	}
	return xs, ys
}

// MinMax returns the extreme values of f over [lo, hi], considering both
// sides of every discontinuity, piece boundaries, and interior critical
// points located by a derivative sign-change scan.
func (f Func) MinMax(lo, hi float64) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	consider := func(v float64) {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	consider(f.Eval(lo))
	consider(f.Eval(hi))

	// Interval edges inside [lo, hi]: value on both sides of the jump.
	edges := []float64{lo}
	for _, b := range f.breaks {
		if b > lo && b < hi {
			consider(f.Eval(b))
			consider(f.evalLeft(b))
			edges = append(edges, b)
		}
	}
	edges = append(edges, hi)

	const samplesPerPiece = 128
	for i := 0; i+1 < len(edges); i++ {
		a, b := edges[i], edges[i+1]
		p := f.pieceAt((a + b) / 2)
		if p == nil {
			consider(0)
			continue
		}
		d := p.Derivative()
		prevX := a
		prevD := d.Eval(a)
		for j := 1; j <= samplesPerPiece; j++ {
			x := a + (b-a)*float64(j)/samplesPerPiece
			consider(p.Eval(x))
			dv := d.Eval(x)
			if prevD == 0 || (prevD < 0) != (dv < 0) {
				consider(p.Eval(bisectRoot(d, prevX, x)))
			}
			prevX, prevD = x, dv
		}
	}
	return min, max
}

// AbsMax returns the value of greatest magnitude over [lo, hi], sign
// preserved.
func (f Func) AbsMax(lo, hi float64) float64 {
	min, max := f.MinMax(lo, hi)
	if math.Abs(min) > math.Abs(max) {
		return min
	}
	return max
}

func bisectRoot(d expr.Expr, a, b float64) float64 {
	fa := d.Eval(a)
	for i := 0; i < 60; i++ {
		m := (a + b) / 2
		fm := d.Eval(m)
		if fm == 0 {
			return m
		}
		if (fa < 0) != (fm < 0) {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return (a + b) / 2
}

func mergeBreaks(a, b []float64) []float64 {
	out := make([]float64, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	sort.Float64s(out)
	dedup := out[:1]
	for _, v := range out[1:] {
		if v-dedup[len(dedup)-1] > mergeEps {
			dedup = append(dedup, v)
		}
	}
	return dedup
}

func (f Func) String() string {
	if f.IsZero() {
		return "0"
	}
	var sb strings.Builder
	for i, p := range f.pieces {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString("[")
		sb.WriteString(formatFloat(f.breaks[i]))
		sb.WriteString(", ")
		if i+1 < len(f.breaks) {
			sb.WriteString(formatFloat(f.breaks[i+1]))
		} else {
			sb.WriteString("inf")
		}
		sb.WriteString("): ")
		sb.WriteString(p.String())
	}
	return sb.String()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

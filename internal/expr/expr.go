// Package expr implements the small symbolic layer the solver is built on:
// closed-form expressions in the beam position variable, with exact
// evaluation, differentiation and antidifferentiation. Expressions that have
// no closed-form antiderivative under the supported rule set are rejected
// with ErrUnintegrable rather than approximated.
package expr

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// PositionVar is the fixed name of the free variable used in all load
// expressions. Every expression parsed or built by this package is a
// function of this single variable.
const PositionVar = "x"

// Expr is a closed-form function of the beam position variable.
type Expr interface {
	// Eval returns the value of the expression at position x.
	Eval(x float64) float64

	// Derivative returns d/dx of the expression.
	Derivative() Expr

	// Antiderivative returns an antiderivative with respect to x, or
	// ErrUnintegrable when the expression falls outside the supported
	// closed-form rules.
	Antiderivative() (Expr, error)

	String() string
}

type num float64

type variable struct{}

type add struct{ terms []Expr }

type mul struct{ a, b Expr }

type pow struct{ base, exp Expr }

type call struct {
	fn  string
	arg Expr
}

// Num returns a constant expression.
func Num(v float64) Expr { return num(v) }

// X returns the position variable.
func X() Expr { return variable{} }

// Add returns the sum of terms, folding constants and dropping zeros.
func Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	c := 0.0
	for _, t := range terms {
		switch v := t.(type) {
		case num:
			c += float64(v)
		case add:
			for _, inner := range v.terms {
				if n, ok := inner.(num); ok {
					c += float64(n)
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, t)
		}
	}
	if c != 0 {
		flat = append(flat, num(c))
	}
	switch len(flat) {
	case 0:
		return num(0)
	case 1:
		return flat[0]
	}
	return add{terms: flat}
}

// Mul returns the product a*b with constant folding.
func Mul(a, b Expr) Expr {
	an, aok := a.(num)
	bn, bok := b.(num)
	switch {
	case aok && bok:
		return num(float64(an) * float64(bn))
	case aok && float64(an) == 0, bok && float64(bn) == 0:
		return num(0)
	case aok && float64(an) == 1:
		return b
	case bok && float64(bn) == 1:
		return a
	}
	return mul{a: a, b: b}
}

// Neg returns -e.
func Neg(e Expr) Expr { return Mul(Num(-1), e) }

// Sub returns a-b.
func Sub(a, b Expr) Expr { return Add(a, Neg(b)) }

// Div returns a/b, represented as a*b^-1.
func Div(a, b Expr) Expr {
	if bn, ok := b.(num); ok && float64(bn) != 0 {
		return Mul(Num(1/float64(bn)), a)
	}
	return Mul(a, Pow(b, Num(-1)))
}

// Pow returns base^exp with constant folding.
func Pow(base, exp Expr) Expr {
	if en, ok := exp.(num); ok {
		if float64(en) == 0 {
			return num(1)
		}
		if float64(en) == 1 {
			return base
		}
		if bn, ok := base.(num); ok {
			return num(math.Pow(float64(bn), float64(en)))
		}
	}
	return pow{base: base, exp: exp}
}

// Sin returns sin(arg).
func Sin(arg Expr) Expr { return call{fn: "sin", arg: arg} }

// Cos returns cos(arg).
func Cos(arg Expr) Expr { return call{fn: "cos", arg: arg} }

// Exp returns e^arg.
func Exp(arg Expr) Expr { return call{fn: "exp", arg: arg} }

// Log returns the natural logarithm of arg.
func Log(arg Expr) Expr { return call{fn: "log", arg: arg} }

// Sqrt returns arg^0.5.
func Sqrt(arg Expr) Expr { return Pow(arg, Num(0.5)) }

// Poly builds the polynomial coeffs[0] + coeffs[1]*x + coeffs[2]*x^2 + ...
func Poly(coeffs ...float64) Expr {
	terms := make([]Expr, 0, len(coeffs))
	for i, c := range coeffs {
		if c == 0 {
			continue
		}
		switch i {
		case 0:
			terms = append(terms, Num(c))
		case 1:
			terms = append(terms, Mul(Num(c), X()))
		default:
			terms = append(terms, Mul(Num(c), Pow(X(), Num(float64(i)))))
		}
	}
	return Add(terms...)
}

// Eval implementations.

func (n num) Eval(float64) float64 { return float64(n) }

func (variable) Eval(x float64) float64 { return x }

func (a add) Eval(x float64) float64 {
	s := 0.0
	for _, t := range a.terms {
		s += t.Eval(x)
	}
	return s
}

func (m mul) Eval(x float64) float64 { return m.a.Eval(x) * m.b.Eval(x) }

func (p pow) Eval(x float64) float64 { return math.Pow(p.base.Eval(x), p.exp.Eval(x)) }

func (c call) Eval(x float64) float64 {
	v := c.arg.Eval(x)
	switch c.fn {
	case "sin":
		return math.Sin(v)
	case "cos":
		return math.Cos(v)
	case "exp":
		return math.Exp(v)
	case "log":
		return math.Log(v)
	}
	return math.NaN()
}

// Derivative implementations.

func (num) Derivative() Expr { return num(0) }

func (variable) Derivative() Expr { return num(1) }

func (a add) Derivative() Expr {
	d := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		d[i] = t.Derivative()
	}
	return Add(d...)
}

func (m mul) Derivative() Expr {
	return Add(Mul(m.a.Derivative(), m.b), Mul(m.a, m.b.Derivative()))
}

func (p pow) Derivative() Expr {
	if n, ok := p.exp.(num); ok {
		// d/dx b^n = n*b^(n-1)*b'
		return Mul(Mul(Num(float64(n)), Pow(p.base, Num(float64(n)-1))), p.base.Derivative())
	}
	// d/dx f^g = f^g * (g' ln f + g f'/f)
	return Mul(Pow(p.base, p.exp), Add(
		Mul(p.exp.Derivative(), Log(p.base)),
		Mul(p.exp, Div(p.base.Derivative(), p.base)),
	))
}

func (c call) Derivative() Expr {
	da := c.arg.Derivative()
	switch c.fn {
	case "sin":
		return Mul(Cos(c.arg), da)
	case "cos":
		return Neg(Mul(Sin(c.arg), da))
	case "exp":
		return Mul(Exp(c.arg), da)
	case "log":
		return Div(da, c.arg)
	}
	return num(math.NaN())
}

// constVal reports whether e is free of the position variable, and its value.
func constVal(e Expr) (float64, bool) {
	switch v := e.(type) {
	case num:
		return float64(v), true
	case variable:
		return 0, false
	case add:
		s := 0.0
		for _, t := range v.terms {
			c, ok := constVal(t)
			if !ok {
				return 0, false
			}
			s += c
		}
		return s, true
	case mul:
		a, ok := constVal(v.a)
		if !ok {
			return 0, false
		}
		b, ok := constVal(v.b)
		if !ok {
			return 0, false
		}
		return a * b, true
	case pow:
		b, ok := constVal(v.base)
		if !ok {
			return 0, false
		}
		x, ok := constVal(v.exp)
		if !ok {
			return 0, false
		}
		return math.Pow(b, x), true
	case call:
		a, ok := constVal(v.arg)
		if !ok {
			return 0, false
		}
		return (call{fn: v.fn, arg: num(a)}).Eval(0), true
	}
	return 0, false
}

// polyCoeffs expands e into dense polynomial coefficients when possible.
func polyCoeffs(e Expr) ([]float64, bool) {
	switch v := e.(type) {
	case num:
		return []float64{float64(v)}, true
	case variable:
		return []float64{0, 1}, true
	case add:
		var sum []float64
		for _, t := range v.terms {
			p, ok := polyCoeffs(t)
			if !ok {
				return nil, false
			}
			sum = polyAdd(sum, p)
		}
		if sum == nil {
			sum = []float64{0}
		}
		return sum, true
	case mul:
		a, ok := polyCoeffs(v.a)
		if !ok {
			return nil, false
		}
		b, ok := polyCoeffs(v.b)
		if !ok {
			return nil, false
		}
		return polyMul(a, b), true
	case pow:
		n, ok := v.exp.(num)
		if !ok || float64(n) < 0 || float64(n) != math.Trunc(float64(n)) {
			if c, ok := constVal(e); ok {
				return []float64{c}, true
			}
			return nil, false
		}
		base, ok := polyCoeffs(v.base)
		if !ok {
			return nil, false
		}
		out := []float64{1}
		for i := 0; i < int(float64(n)); i++ {
			out = polyMul(out, base)
		}
		return out, true
	case call:
		if c, ok := constVal(e); ok {
			return []float64{c}, true
		}
		return nil, false
	}
	return nil, false
}

func polyAdd(a, b []float64) []float64 {
	if len(b) > len(a) {
		a, b = b, a
	}
	out := make([]float64, len(a))
	copy(out, a)
	for i, v := range b {
		out[i] += v
	}
	return out
}

func polyMul(a, b []float64) []float64 {
	out := make([]float64, len(a)+len(b)-1)
	for i, av := range a {
		for j, bv := range b {
			out[i+j] += av * bv
		}
	}
	return out
}

func polyDeriv(p []float64) []float64 {
	if len(p) <= 1 {
		return []float64{0}
	}
	out := make([]float64, len(p)-1)
	for i := 1; i < len(p); i++ {
		out[i-1] = float64(i) * p[i]
	}
	return out
}

func polyIsZero(p []float64) bool {
	for _, c := range p {
		if c != 0 {
			return false
		}
	}
	return true
}

// linearCoeffs reports e == a*x + b.
func linearCoeffs(e Expr) (a, b float64, ok bool) {
	p, ok := polyCoeffs(e)
	if !ok || len(p) > 2 {
		return 0, 0, false
	}
	if len(p) > 0 {
		b = p[0]
	}
	if len(p) > 1 {
		a = p[1]
	}
	return a, b, true
}

// String implementations.

func (n num) String() string {
	return strconv.FormatFloat(float64(n), 'g', -1, 64)
}

func (variable) String() string { return PositionVar }

func (a add) String() string {
	parts := make([]string, len(a.terms))
	for i, t := range a.terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " + ") + ")"
}

func (m mul) String() string {
	return fmt.Sprintf("%s*%s", m.a.String(), m.b.String())
}

func (p pow) String() string {
	return fmt.Sprintf("(%s)^%s", p.base.String(), p.exp.String())
}

func (c call) String() string {
	return fmt.Sprintf("%s(%s)", c.fn, c.arg.String())
}

package expr

import (
	"errors"
	"fmt"
	"math"
)

// ErrUnintegrable indicates an expression with no closed-form antiderivative
// under the supported rules.
var ErrUnintegrable = errors.New("expr: expression has no closed-form antiderivative")

func (n num) Antiderivative() (Expr, error) {
	return Mul(n, X()), nil
}

func (variable) Antiderivative() (Expr, error) {
	return Mul(Num(0.5), Pow(X(), Num(2))), nil
}

func (a add) Antiderivative() (Expr, error) {
	out := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		f, err := t.Antiderivative()
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return Add(out...), nil
}

func (m mul) Antiderivative() (Expr, error) { return integrate(m) }

func (p pow) Antiderivative() (Expr, error) { return integrate(p) }

func (c call) Antiderivative() (Expr, error) { return integrate(c) }

// integrate applies the shared closed-form rules: polynomials by the power
// rule, trig/exp/log of linear arguments, powers of linear expressions, and
// polynomial * {sin,cos,exp} by repeated integration by parts.
func integrate(e Expr) (Expr, error) {
	if c, ok := constVal(e); ok {
		return Mul(Num(c), X()), nil
	}
	if p, ok := polyCoeffs(e); ok {
		return Poly(polyIntCoeffs(p)...), nil
	}

	switch v := e.(type) {
	case call:
		return integrateCall(v, 1)
	case pow:
		return integratePow(v)
	case mul:
		c, poly, f, ok := factorize(e)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
		}
		switch fv := f.(type) {
		case call:
			if polyDegree(poly) == 0 {
				g, err := integrateCall(fv, c*poly[0])
				if err != nil {
					return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
				}
				return g, nil
			}
			g, err := byParts(scaleCoeffs(poly, c), fv)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
			}
			return g, nil
		case pow:
			if polyDegree(poly) != 0 {
				return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
			}
			g, err := integratePow(fv)
			if err != nil {
				return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
			}
			return Mul(Num(c*poly[0]), g), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnintegrable, e)
}

// integrateCall integrates scale*fn(a*x+b) for linear arguments.
func integrateCall(c call, scale float64) (Expr, error) {
	a, _, ok := linearCoeffs(c.arg)
	if !ok || a == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnintegrable, c)
	}
	switch c.fn {
	case "sin":
		return Mul(Num(-scale/a), Cos(c.arg)), nil
	case "cos":
		return Mul(Num(scale/a), Sin(c.arg)), nil
	case "exp":
		return Mul(Num(scale/a), Exp(c.arg)), nil
	case "log":
		// int log(u) dx = (u*log(u) - u)/a
		return Mul(Num(scale/a), Sub(Mul(c.arg, Log(c.arg)), c.arg)), nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnintegrable, c)
}

// integratePow integrates (a*x+b)^n and c^(linear).
func integratePow(p pow) (Expr, error) {
	if n, ok := p.exp.(num); ok {
		a, _, lok := linearCoeffs(p.base)
		if lok && a != 0 {
			if float64(n) == -1 {
				return Mul(Num(1/a), Log(p.base)), nil
			}
			m := float64(n) + 1
			return Mul(Num(1/(a*m)), Pow(p.base, Num(m))), nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnintegrable, p)
	}
	if c, ok := constVal(p.base); ok && c > 0 && c != 1 {
		if a, _, lok := linearCoeffs(p.exp); lok && a != 0 {
			return Mul(Num(1/(a*math.Log(c))), Pow(p.base, p.exp)), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnintegrable, p)
}

// byParts integrates P(x)*f where f is sin/cos/exp of a linear argument,
// recursing on int P'(x)*F with F an antiderivative of f. The polynomial
// degree drops each step so the recursion terminates.
func byParts(p []float64, f call) (Expr, error) {
	if polyIsZero(p) {
		return Num(0), nil
	}
	switch f.fn {
	case "sin", "cos", "exp":
	default:
		return nil, ErrUnintegrable
	}
	bigF, err := integrateCall(f, 1)
	if err != nil {
		return nil, err
	}
	scale, inner, ok := splitScaledCall(bigF)
	if !ok {
		return nil, ErrUnintegrable
	}
	rest, err := byParts(scaleCoeffs(polyDeriv(p), scale), inner)
	if err != nil {
		return nil, err
	}
	return Sub(Mul(Poly(p...), bigF), rest), nil
}

// splitScaledCall decomposes c*fn(arg) into its scale and call parts.
func splitScaledCall(e Expr) (float64, call, bool) {
	switch v := e.(type) {
	case call:
		return 1, v, true
	case mul:
		if n, ok := v.a.(num); ok {
			if c, ok := v.b.(call); ok {
				return float64(n), c, true
			}
		}
		if n, ok := v.b.(num); ok {
			if c, ok := v.a.(call); ok {
				return float64(n), c, true
			}
		}
	}
	return 0, call{}, false
}

// factorize decomposes a product into constant * polynomial * (at most one)
// non-polynomial factor.
func factorize(e Expr) (c float64, poly []float64, f Expr, ok bool) {
	c = 1
	poly = []float64{1}
	var nonPoly []Expr
	var walk func(Expr)
	walk = func(t Expr) {
		if m, isMul := t.(mul); isMul {
			walk(m.a)
			walk(m.b)
			return
		}
		if v, isConst := constVal(t); isConst {
			c *= v
			return
		}
		if p, isPoly := polyCoeffs(t); isPoly {
			poly = polyMul(poly, p)
			return
		}
		nonPoly = append(nonPoly, t)
	}
	walk(e)
	switch len(nonPoly) {
	case 0:
		return c, poly, nil, false // pure polynomial, handled upstream
	case 1:
		return c, poly, nonPoly[0], true
	}
	return 0, nil, nil, false
}

func polyIntCoeffs(p []float64) []float64 {
	out := make([]float64, len(p)+1)
	for i, c := range p {
		out[i+1] = c / float64(i+1)
	}
	return out
}

func scaleCoeffs(p []float64, c float64) []float64 {
	out := make([]float64, len(p))
	for i, v := range p {
		out[i] = v * c
	}
	return out
}

func polyDegree(p []float64) int {
	d := 0
	for i, c := range p {
		if c != 0 {
			d = i
		}
	}
	return d
}

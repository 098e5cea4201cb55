package expr

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestEval(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
		x    float64
		want float64
	}{
		{"constant", Num(3), 10, 3},
		{"variable", X(), 4, 4},
		{"linear", Poly(5, 10), 2, 25},
		{"quadratic", Poly(1, 0, 2), 3, 19},
		{"product", Mul(Poly(0, 1), Sin(X())), math.Pi / 2, math.Pi / 2},
		{"quotient", Div(Num(6), Poly(0, 1)), 3, 2},
		{"power", Pow(X(), Num(3)), 2, 8},
		{"sin", Sin(Mul(Num(2), X())), math.Pi / 4, 1},
		{"exp", Exp(X()), 1, math.E},
		{"log", Log(X()), math.E, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Eval(tt.x); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
		x    float64
		want float64
	}{
		{"constant", Num(7), 2, 0},
		{"linear", Poly(1, 4), 2, 4},
		{"quadratic", Poly(0, 0, 3), 2, 12},
		{"sin chain", Sin(Mul(Num(2), X())), 0, 2},
		{"product rule", Mul(X(), Exp(X())), 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.e.Derivative().Eval(tt.x); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("Derivative().Eval(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestAntiderivative(t *testing.T) {
	// Each antiderivative is checked as a definite integral over [a, b].
	tests := []struct {
		name string
		e    Expr
		a, b float64
		want float64
	}{
		{"constant", Num(2), 0, 3, 6},
		{"linear", Poly(0, 1), 0, 4, 8},
		{"quadratic", Poly(0, 0, 3), 0, 2, 8},
		{"sin", Sin(X()), 0, math.Pi, 2},
		{"cos linear arg", Cos(Mul(Num(2), X())), 0, math.Pi / 4, 0.5},
		{"exp", Exp(X()), 0, 1, math.E - 1},
		{"log", Log(X()), 1, math.E, 1},
		{"shifted power", Pow(Add(X(), Num(1)), Num(2)), 0, 1, 7.0 / 3},
		{"reciprocal", Pow(Add(X(), Num(1)), Num(-1)), 0, math.E - 1, 1},
		{"x sin x", Mul(X(), Sin(X())), 0, math.Pi, math.Pi},
		{"x exp x", Mul(X(), Exp(X())), 0, 1, 1},
		{"x^2 cos x", Mul(Pow(X(), Num(2)), Cos(X())), 0, math.Pi, -2 * math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			anti, err := tt.e.Antiderivative()
			if err != nil {
				t.Fatalf("Antiderivative: %v", err)
			}
			got := anti.Eval(tt.b) - anti.Eval(tt.a)
			if !almostEqual(got, tt.want, 1e-9) {
				t.Errorf("integral over [%v,%v] = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestAntiderivativeUnintegrable(t *testing.T) {
	tests := []struct {
		name string
		e    Expr
	}{
		{"sin of quadratic", Sin(Pow(X(), Num(2)))},
		{"exp of quadratic", Exp(Pow(X(), Num(2)))},
		{"product of calls", Mul(Sin(X()), Exp(X()))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.e.Antiderivative(); !errors.Is(err, ErrUnintegrable) {
				t.Errorf("err = %v, want ErrUnintegrable", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		input string
		x     float64
		want  float64
	}{
		{"5", 0, 5},
		{"10*x + 5", 2, 25},
		{"-2*x", 3, -6},
		{"x^2 - 1", 3, 8},
		{"x**2", 4, 16},
		{"2*sin(0.5*x)", math.Pi, 2},
		{"exp(x) / 2", 0, 0.5},
		{"(x + 1) * (x - 1)", 3, 8},
		{"1.5e3 * x", 2, 3000},
		{"pi", 0, math.Pi},
		{"sqrt(x)", 9, 3},
		{"ln(x)", math.E, 1},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got := e.Eval(tt.x); !almostEqual(got, tt.want, 1e-12) {
				t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	inputs := []string{
		"",
		"10*",
		"foo(x)",
		"y + 1",
		"(x + 1",
		"2 @ 3",
	}
	for _, in := range inputs {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

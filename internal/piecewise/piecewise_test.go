package piecewise

import (
	"math"
	"testing"

	"github.com/aversten/beamsolve/internal/expr"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestStepEval(t *testing.T) {
	f := Step(2, 5)

	tests := []struct {
		x    float64
		want float64
	}{
		{-1, 0},
		{1.999, 0},
		{2, 5}, // right-continuous at the jump
		{3, 5},
		{100, 5},
	}
	for _, tt := range tests {
		if got := f.Eval(tt.x); got != tt.want {
			t.Errorf("Step(2,5).Eval(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestWindowEval(t *testing.T) {
	f := Window(expr.Poly(0, 2), 1, 3) // 2x on [1,3)

	tests := []struct {
		x    float64
		want float64
	}{
		{0.5, 0},
		{1, 2},
		{2, 4},
		{3, 0},
		{10, 0},
	}
	for _, tt := range tests {
		if got := f.Eval(tt.x); got != tt.want {
			t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestAddMergesBreakpoints(t *testing.T) {
	f := Step(1, 2).Add(Step(3, -5))

	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{1, 2},
		{2.5, 2},
		{3, -3},
		{4, -3},
	}
	for _, tt := range tests {
		if got := f.Eval(tt.x); got != tt.want {
			t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if n := len(f.Breaks()); n != 2 {
		t.Errorf("breakpoint count = %d, want 2", n)
	}
}

func TestAddZero(t *testing.T) {
	f := Step(1, 4)
	if got := Zero().Add(f).Eval(2); got != 4 {
		t.Errorf("Zero().Add(f).Eval(2) = %v, want 4", got)
	}
	if got := f.Add(Zero()).Eval(2); got != 4 {
		t.Errorf("f.Add(Zero()).Eval(2) = %v, want 4", got)
	}
}

func TestScale(t *testing.T) {
	f := Step(0, 3).Scale(-2)
	if got := f.Eval(1); got != -6 {
		t.Errorf("Eval(1) = %v, want -6", got)
	}
	if !f.Scale(0).IsZero() {
		t.Error("Scale(0) should be identically zero")
	}
}

func TestIntegrateStep(t *testing.T) {
	// Integral of a unit step at 2 is a ramp starting at 2.
	g, err := Step(2, 1).Integrate()
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0},
		{2, 0},
		{3, 1},
		{5, 3},
	}
	for _, tt := range tests {
		if got := g.Eval(tt.x); !almostEqual(got, tt.want, 1e-12) {
			t.Errorf("Eval(%v) = %v, want %v", tt.x, got, tt.want)
		}
	}
}

func TestIntegrateContinuousAcrossBreaks(t *testing.T) {
	// Constant 2 on [0,3), then 0: the integral must keep its accumulated
	// value after the window closes.
	f := Window(expr.Num(2), 0, 3)
	g, err := f.Integrate()
	if err != nil {
		t.Fatalf("Integrate: %v", err)
	}
	if got := g.Eval(3); !almostEqual(got, 6, 1e-12) {
		t.Errorf("Eval(3) = %v, want 6", got)
	}
	if got := g.Eval(10); !almostEqual(got, 6, 1e-12) {
		t.Errorf("Eval(10) = %v, want 6", got)
	}
}

func TestDefiniteIntegral(t *testing.T) {
	f := Window(expr.Poly(0, 1), 0, 4) // x on [0,4)
	got, err := f.DefiniteIntegral(0, 4)
	if err != nil {
		t.Fatalf("DefiniteIntegral: %v", err)
	}
	if !almostEqual(got, 8, 1e-12) {
		t.Errorf("DefiniteIntegral(0,4) = %v, want 8", got)
	}
}

func TestMinMaxConsidersJumps(t *testing.T) {
	// Ramp up to 4, then drop to 1 at x=2. The left limit at the jump is the
	// true maximum and must not be missed by right-continuous evaluation.
	f := Window(expr.Poly(0, 2), 0, 2).Add(Step(2, 1))
	min, max := f.MinMax(0, 3)
	if !almostEqual(max, 4, 1e-9) {
		t.Errorf("max = %v, want 4 (left limit at the jump)", max)
	}
	if !almostEqual(min, 0, 1e-9) {
		t.Errorf("min = %v, want 0", min)
	}
}

func TestMinMaxInteriorCriticalPoint(t *testing.T) {
	// -(x-1)^2 + 1 on [0,2): peak of 1 at x=1, away from any breakpoint.
	f := Window(expr.Poly(0, 2, -1), 0, 2)
	_, max := f.MinMax(0, 2)
	if !almostEqual(max, 1, 1e-9) {
		t.Errorf("max = %v, want 1", max)
	}
}

func TestAbsMaxKeepsSign(t *testing.T) {
	f := Step(0, 3).Add(Step(1, -10))
	if got := f.AbsMax(0, 2); !almostEqual(got, -7, 1e-12) {
		t.Errorf("AbsMax = %v, want -7", got)
	}
}

func TestSample(t *testing.T) {
	xs, ys := Step(0, 2).Sample(0, 4, 4)
	if len(xs) != 5 || len(ys) != 5 {
		t.Fatalf("lengths = %d, %d, want 5, 5", len(xs), len(ys))
	}
	if xs[0] != 0 || xs[4] != 4 {
		t.Errorf("endpoints = %v, %v, want 0, 4", xs[0], xs[4])
	}
	for i, y := range ys {
		if y != 2 {
			t.Errorf("ys[%d] = %v, want 2", i, y)
		}
	}
}

// Package solve classifies a beam's support arrangement and solves the two
// linear systems of the force method: a flexural system in the vertical
// reactions, moment reactions and the two integration constants, and an
// axial system in the horizontal reactions. Both are assembled from
// equilibrium plus compatibility at the restrained coordinates and solved
// densely with gonum.
package solve

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/aversten/beamsolve/internal/expr"
	"github.com/aversten/beamsolve/internal/load"
	"github.com/aversten/beamsolve/internal/piecewise"
	"github.com/aversten/beamsolve/internal/support"
)

var (
	// ErrUnstable indicates too little restraint for equilibrium.
	ErrUnstable = errors.New("solve: structure is unstable, not enough restraint")

	// ErrSingular indicates an equation system with no unique solution.
	ErrSingular = errors.New("solve: equation system has no unique solution")
)

// Classification summarises the restraint of a support arrangement.
type Classification struct {
	FlexuralUnknowns int // restrained y and m DOFs
	AxialUnknowns    int // restrained x DOFs
	Degree           int // degree of static indeterminacy
}

// Determinate reports whether the arrangement is exactly determinate.
func (c Classification) Determinate() bool { return c.Degree == 0 }

// Classify counts the unknown reactions and checks stability.
// hasHorizontal marks a load set with any horizontal component: with such
// loading at least one x restraint is required. Flexurally the beam always
// needs at least two y/m restraints.
func Classify(supports []support.Support, hasHorizontal bool) (Classification, error) {
	var c Classification
	for _, s := range supports {
		if s.X.Restrained {
			c.AxialUnknowns++
		}
		if s.Y.Restrained {
			c.FlexuralUnknowns++
		}
		if s.M.Restrained {
			c.FlexuralUnknowns++
		}
	}
	c.Degree = max(c.AxialUnknowns-1, 0) + max(c.FlexuralUnknowns-2, 0)
	if c.FlexuralUnknowns < 2 {
		return c, fmt.Errorf("%w: %d flexural restraints, need at least 2", ErrUnstable, c.FlexuralUnknowns)
	}
	if hasHorizontal && c.AxialUnknowns == 0 {
		return c, fmt.Errorf("%w: horizontal loading with no x restraint", ErrUnstable)
	}
	return c, nil
}

// Problem is a fully validated beam ready to solve. Supports may be in any
// order; loads act within [0, Length].
type Problem struct {
	Length   float64
	EI       float64 // flexural rigidity E*I
	EA       float64 // axial rigidity E*A
	Supports []support.Support
	Loads    []load.Load
}

// Reaction holds the solved reaction components at one support.
type Reaction struct {
	Coord float64 `json:"coord"`
	Fx    float64 `json:"fx"`
	Fy    float64 `json:"fy"`
	M     float64 `json:"m"`
}

// Solution carries the solved reactions, integration constants and the
// complete internal diagrams. Slope and Deflection are physical values,
// already divided by EI.
type Solution struct {
	Classification Classification
	Reactions      []Reaction
	C1, C2         float64

	Normal     piecewise.Func
	Shear      piecewise.Func
	Moment     piecewise.Func
	Slope      piecewise.Func
	Deflection piecewise.Func
}

// HasHorizontal reports whether any load acts along the beam axis.
func HasHorizontal(loads []load.Load) bool {
	for _, l := range loads {
		if l.Fx() != 0 || !l.Normal().IsZero() {
			return true
		}
	}
	return false
}

// Run assembles and solves both systems of the force method.
func Run(p Problem) (*Solution, error) {
	cls, err := Classify(p.Supports, HasHorizontal(p.Loads))
	if err != nil {
		return nil, err
	}

	supports := append([]support.Support(nil), p.Supports...)
	sort.Slice(supports, func(i, j int) bool { return supports[i].Coord < supports[j].Coord })

	// Load base functions, cumulative from the left end.
	var sumFy, sumM0, sumFx float64
	normalBase := piecewise.Zero()
	shearBase := piecewise.Zero()
	momentSteps := piecewise.Zero()
	for _, l := range p.Loads {
		sumFy += l.Fy()
		sumM0 += l.M0()
		sumFx += l.Fx()
		normalBase = normalBase.Add(l.Normal())
		shearBase = shearBase.Add(l.Shear())
		momentSteps = momentSteps.Add(l.Moment())
	}
	momentBase, err := shearBase.Integrate()
	if err != nil {
		return nil, fmt.Errorf("solve: bending moment: %w", err)
	}
	momentBase = momentBase.Add(momentSteps)
	slopeBaseEI, err := momentBase.Integrate()
	if err != nil {
		return nil, fmt.Errorf("solve: slope: %w", err)
	}
	deflBaseEI, err := slopeBaseEI.Integrate()
	if err != nil {
		return nil, fmt.Errorf("solve: deflection: %w", err)
	}

	// Unknown ordering: vertical reactions, then moment reactions, then the
	// two integration constants.
	var yIdx, mIdx, xIdx []int
	for i, s := range supports {
		if s.Y.Restrained {
			yIdx = append(yIdx, i)
		}
		if s.M.Restrained {
			mIdx = append(mIdx, i)
		}
		if s.X.Restrained {
			xIdx = append(xIdx, i)
		}
	}

	ny, nm := len(yIdx), len(mIdx)
	n := ny + nm + 2
	a := mat.NewDense(n, n, nil)
	b := mat.NewVecDense(n, nil)

	// Row 0: sum of vertical forces.
	for j := range yIdx {
		a.Set(0, j, 1)
	}
	b.SetVec(0, -sumFy)

	// Row 1: sum of moments about x=0, anti-clockwise positive.
	for j, si := range yIdx {
		a.Set(1, j, supports[si].Coord)
	}
	for j := range mIdx {
		a.Set(1, ny+j, 1)
	}
	b.SetVec(1, -sumM0)

	// One slope compatibility row per rotational restraint:
	// EI*theta(xs) + EI*M/km = 0, the spring term dropping out when rigid.
	row := 2
	for _, si := range mIdx {
		xs := supports[si].Coord
		for j, sj := range yIdx {
			a.Set(row, j, ramp(xs, supports[sj].Coord, 2))
		}
		for j, sj := range mIdx {
			c := -ramp(xs, supports[sj].Coord, 1)
			if sj == si && supports[si].M.IsSpring() {
				c += p.EI / supports[si].M.Stiffness
			}
			a.Set(row, ny+j, c)
		}
		a.Set(row, ny+nm, 1) // C1
		b.SetVec(row, -slopeBaseEI.Eval(xs))
		row++
	}

	// One deflection compatibility row per vertical restraint:
	// EI*v(xs) + EI*R/ky = 0.
	for _, si := range yIdx {
		xs := supports[si].Coord
		for j, sj := range yIdx {
			c := ramp(xs, supports[sj].Coord, 3)
			if sj == si && supports[si].Y.IsSpring() {
				c += p.EI / supports[si].Y.Stiffness
			}
			a.Set(row, j, c)
		}
		for j, sj := range mIdx {
			a.Set(row, ny+j, -ramp(xs, supports[sj].Coord, 2))
		}
		a.Set(row, ny+nm, xs)  // C1
		a.Set(row, ny+nm+1, 1) // C2
		b.SetVec(row, -deflBaseEI.Eval(xs))
		row++
	}

	flex, err := solveDense(a, b)
	if err != nil {
		return nil, err
	}

	// Axial system: force balance plus one stretch compatibility row per
	// additional x restraint.
	nx := len(xIdx)
	axial := make([]float64, nx)
	if nx > 0 {
		aa := mat.NewDense(nx, nx, nil)
		bb := mat.NewVecDense(nx, nil)
		for j := 0; j < nx; j++ {
			aa.Set(0, j, 1)
		}
		bb.SetVec(0, -sumFx)
		if nx > 1 {
			normalInt, err := normalBase.Integrate()
			if err != nil {
				return nil, fmt.Errorf("solve: axial stretch: %w", err)
			}
			first := supports[xIdx[0]]
			for i := 1; i < nx; i++ {
				si := supports[xIdx[i]]
				for j := 0; j < nx; j++ {
					c := ramp(si.Coord, supports[xIdx[j]].Coord, 1) / p.EA
					if j == 0 && first.X.IsSpring() {
						c += 1 / first.X.Stiffness
					}
					if j == i && si.X.IsSpring() {
						c -= 1 / si.X.Stiffness
					}
					aa.Set(i, j, c)
				}
				bb.SetVec(i, -(normalInt.Eval(si.Coord)-normalInt.Eval(first.Coord))/p.EA)
			}
		}
		sol, err := solveDense(aa, bb)
		if err != nil {
			return nil, err
		}
		copy(axial, sol)
	}

	c1 := flex[ny+nm]
	c2 := flex[ny+nm+1]

	// Substitute the solved reactions back into the diagrams.
	normal := normalBase
	for j, si := range xIdx {
		normal = normal.Add(piecewise.Step(supports[si].Coord, axial[j]))
	}
	shear := shearBase
	moment := momentBase
	slopeEI := slopeBaseEI
	deflEI := deflBaseEI
	for j, si := range yIdx {
		pos, v := supports[si].Coord, flex[j]
		shear = shear.Add(piecewise.Step(pos, v))
		moment = moment.Add(rampFunc(pos, 1).Scale(v))
		slopeEI = slopeEI.Add(rampFunc(pos, 2).Scale(v))
		deflEI = deflEI.Add(rampFunc(pos, 3).Scale(v))
	}
	for j, si := range mIdx {
		pos, v := supports[si].Coord, flex[ny+j]
		moment = moment.Add(piecewise.Step(pos, -v))
		slopeEI = slopeEI.Add(rampFunc(pos, 1).Scale(-v))
		deflEI = deflEI.Add(rampFunc(pos, 2).Scale(-v))
	}
	slopeEI = slopeEI.Add(piecewise.Step(0, c1))
	deflEI = deflEI.Add(piecewise.FromExpr(expr.Poly(c2, c1), 0))

	reactions := make([]Reaction, len(supports))
	for i, s := range supports {
		reactions[i].Coord = s.Coord
	}
	for j, si := range xIdx {
		reactions[si].Fx = axial[j]
	}
	for j, si := range yIdx {
		reactions[si].Fy = flex[j]
	}
	for j, si := range mIdx {
		reactions[si].M = flex[ny+j]
	}

	return &Solution{
		Classification: cls,
		Reactions:      reactions,
		C1:             c1,
		C2:             c2,
		Normal:         normal,
		Shear:          shear,
		Moment:         moment,
		Slope:          slopeEI.Scale(1 / p.EI),
		Deflection:     deflEI.Scale(1 / p.EI),
	}, nil
}

// ramp evaluates the n-th influence kernel of a unit action at pos:
// max(0, x-pos)^n / n! for n = 1, 2, 3.
func ramp(x, pos float64, n int) float64 {
	d := x - pos
	if d <= 0 {
		return 0
	}
	switch n {
	case 1:
		return d
	case 2:
		return d * d / 2
	}
	return d * d * d / 6
}

// rampFunc is the piecewise form of the same kernel.
func rampFunc(pos float64, n int) piecewise.Func {
	// (x-pos)^n / n! expanded about x.
	var e expr.Expr
	switch n {
	case 1:
		e = expr.Poly(-pos, 1)
	case 2:
		e = expr.Poly(pos*pos/2, -pos, 0.5)
	default:
		e = expr.Poly(-pos*pos*pos/6, pos*pos/2, -pos/2, 1.0/6)
	}
	return piecewise.FromExpr(e, pos)
}

// solveDense solves a*x = b, mapping singular or indefinite systems to
// ErrSingular. gonum reports ill conditioning through mat.Condition while
// still producing a solution; only a non-finite condition number is fatal.
func solveDense(a *mat.Dense, b *mat.VecDense) ([]float64, error) {
	var x mat.VecDense
	if err := x.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) || math.IsNaN(float64(cond)) {
			return nil, fmt.Errorf("%w: %v", ErrSingular, err)
		}
	}
	out := make([]float64, x.Len())
	for i := range out {
		v := x.AtVec(i)
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, ErrSingular
		}
		out[i] = v
	}
	return out, nil
}

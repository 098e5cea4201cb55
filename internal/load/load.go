// Package load defines the load variants a beam can carry and their
// contribution functions. Every load decomposes into a horizontal and a
// vertical component by its angle and exposes the piecewise functions it
// adds to the normal force, shear force and bending moment diagrams, plus
// its force and moment totals for the equilibrium equations.
package load

import (
	"errors"
	"fmt"
	"math"

	"github.com/aversten/beamsolve/internal/expr"
	"github.com/aversten/beamsolve/internal/piecewise"
)

var (
	// ErrInvalidSpan indicates a distributed load whose span end does not
	// lie strictly right of its start.
	ErrInvalidSpan = errors.New("load: span end must be greater than span start")
)

// Load is any external action on the beam. Angle convention: 0 degrees is a
// force along +x (rightward), 90 degrees along +y (upward). A negative
// magnitude reverses the direction.
type Load interface {
	// Span returns the extent of the load along the beam. Point actions
	// return their coordinate twice.
	Span() (start, end float64)

	// Fx and Fy are the total horizontal and vertical force.
	Fx() float64
	Fy() float64

	// M0 is the moment about x=0, anti-clockwise positive.
	M0() float64

	// Normal, Shear and Moment are the load's contributions to the
	// internal force diagrams, cumulative from the left.
	Normal() piecewise.Func
	Shear() piecewise.Func
	Moment() piecewise.Func

	String() string
}

// components splits a magnitude at an angle in degrees, snapping the
// near-zero residue of exact right angles.
func components(force, angleDeg float64) (fx, fy float64) {
	rad := angleDeg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	if math.Abs(c) < 1e-12 {
		c = 0
	}
	if math.Abs(s) < 1e-12 {
		s = 0
	}
	return force * c, force * s
}

// Point is a concentrated force at a single coordinate.
type Point struct {
	Force float64 // magnitude in newtons
	Coord float64 // position in metres
	Angle float64 // direction in degrees

	fx, fy float64
}

// NewPoint returns a point load of the given magnitude and direction.
func NewPoint(force, coord, angle float64) Point {
	fx, fy := components(force, angle)
	return Point{Force: force, Coord: coord, Angle: angle, fx: fx, fy: fy}
}

// NewPointV returns an upward-positive vertical point load.
func NewPointV(force, coord float64) Point { return NewPoint(force, coord, 90) }

// NewPointH returns a rightward-positive horizontal point load.
func NewPointH(force, coord float64) Point { return NewPoint(force, coord, 0) }

func (p Point) Span() (float64, float64) { return p.Coord, p.Coord }
func (p Point) Fx() float64              { return p.fx }
func (p Point) Fy() float64              { return p.fy }
func (p Point) M0() float64              { return p.fy * p.Coord }

func (p Point) Normal() piecewise.Func { return piecewise.Step(p.Coord, p.fx) }
func (p Point) Shear() piecewise.Func  { return piecewise.Step(p.Coord, p.fy) }
func (p Point) Moment() piecewise.Func { return piecewise.Zero() }

func (p Point) String() string {
	return fmt.Sprintf("point %g N at %g m, %g deg", p.Force, p.Coord, p.Angle)
}

// Torque is a concentrated moment at a single coordinate, anti-clockwise
// positive.
type Torque struct {
	Magnitude float64 // newton-metres
	Coord     float64 // position in metres
}

// NewTorque returns a point torque.
func NewTorque(moment, coord float64) Torque {
	return Torque{Magnitude: moment, Coord: coord}
}

func (t Torque) Span() (float64, float64) { return t.Coord, t.Coord }
func (t Torque) Fx() float64              { return 0 }
func (t Torque) Fy() float64              { return 0 }
func (t Torque) M0() float64              { return t.Magnitude }

func (t Torque) Normal() piecewise.Func { return piecewise.Zero() }
func (t Torque) Shear() piecewise.Func  { return piecewise.Zero() }

// Moment contributes a negative step: looking left along the beam an
// anti-clockwise applied torque reduces the internal bending moment past
// its coordinate.
func (t Torque) Moment() piecewise.Func {
	return piecewise.Step(t.Coord, -t.Magnitude)
}

func (t Torque) String() string {
	return fmt.Sprintf("torque %g N.m at %g m", t.Magnitude, t.Coord)
}

// Form identifies how a distributed load's density was given.
type Form string

const (
	FormUDL        Form = "udl"
	FormTrapezoid  Form = "trapezoid"
	FormExpression Form = "expression"
)

// Distributed is a load spread over a span with a closed-form density.
type Distributed struct {
	Density expr.Expr // force per metre as a function of position
	Start   float64
	End     float64
	Angle   float64
	Form    Form
	Source  string // textual density for display

	fx, fy, m0    float64
	normal, shear piecewise.Func
}

// NewDistributed builds a distributed load from a density expression such as
// "10*x + 5". It fails when the span is invalid or when the density or its
// first moment has no closed-form antiderivative.
func NewDistributed(density string, start, end, angle float64) (Distributed, error) {
	e, err := expr.Parse(density)
	if err != nil {
		return Distributed{}, err
	}
	return newDistributed(e, start, end, angle, FormExpression, density)
}

// NewUDL builds a uniformly distributed vertical load, upward positive.
func NewUDL(force, start, end float64) (Distributed, error) {
	d, err := newDistributed(expr.Num(force), start, end, 90, FormUDL,
		fmt.Sprintf("%g", force))
	return d, err
}

// NewTrapezoid builds a linearly varying vertical load running from
// startForce at the span start to endForce at the span end.
func NewTrapezoid(startForce, endForce, start, end float64) (Distributed, error) {
	if end <= start {
		return Distributed{}, ErrInvalidSpan
	}
	slope := (endForce - startForce) / (end - start)
	density := expr.Poly(startForce-slope*start, slope)
	return newDistributed(density, start, end, 90, FormTrapezoid,
		fmt.Sprintf("%g -> %g", startForce, endForce))
}

func newDistributed(density expr.Expr, start, end, angle float64, form Form, src string) (Distributed, error) {
	if end <= start {
		return Distributed{}, ErrInvalidSpan
	}
	fxUnit, fyUnit := components(1, angle)

	// Total force and first moment over the span. Failure here means the
	// density cannot drive the equilibrium equations.
	w := piecewise.Window(density, start, end)
	total, err := w.DefiniteIntegral(start, end)
	if err != nil {
		return Distributed{}, fmt.Errorf("load: density %q: %w", src, err)
	}
	firstMoment, err := piecewise.Window(expr.Mul(density, expr.X()), start, end).
		DefiniteIntegral(start, end)
	if err != nil {
		return Distributed{}, fmt.Errorf("load: density moment %q: %w", src, err)
	}

	d := Distributed{
		Density: density,
		Start:   start,
		End:     end,
		Angle:   angle,
		Form:    form,
		Source:  src,
		fx:      fxUnit * total,
		fy:      fyUnit * total,
		m0:      fyUnit * firstMoment,
	}

	if fxUnit != 0 {
		f, err := w.Scale(fxUnit).Integrate()
		if err != nil {
			return Distributed{}, fmt.Errorf("load: density %q: %w", src, err)
		}
		d.normal = f
	}
	if fyUnit != 0 {
		f, err := w.Scale(fyUnit).Integrate()
		if err != nil {
			return Distributed{}, fmt.Errorf("load: density %q: %w", src, err)
		}
		d.shear = f
	}
	return d, nil
}

func (d Distributed) Span() (float64, float64) { return d.Start, d.End }
func (d Distributed) Fx() float64              { return d.fx }
func (d Distributed) Fy() float64              { return d.fy }
func (d Distributed) M0() float64              { return d.m0 }

func (d Distributed) Normal() piecewise.Func { return d.normal }
func (d Distributed) Shear() piecewise.Func  { return d.shear }
func (d Distributed) Moment() piecewise.Func { return piecewise.Zero() }

func (d Distributed) String() string {
	switch d.Form {
	case FormUDL:
		return fmt.Sprintf("udl %s N/m over [%g, %g] m", d.Source, d.Start, d.End)
	case FormTrapezoid:
		return fmt.Sprintf("trapezoid %s N/m over [%g, %g] m", d.Source, d.Start, d.End)
	}
	return fmt.Sprintf("distributed %q N/m over [%g, %g] m, %g deg", d.Source, d.Start, d.End, d.Angle)
}

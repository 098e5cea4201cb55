// Package beam is the user-facing aggregate: a beam of a given length and
// section carrying supports and loads. Mutations invalidate any previous
// analysis; queries are only answered while a solution is held.
package beam

import (
	"errors"
	"fmt"

	"github.com/aversten/beamsolve/internal/load"
	"github.com/aversten/beamsolve/internal/piecewise"
	"github.com/aversten/beamsolve/internal/solve"
	"github.com/aversten/beamsolve/internal/support"
)

var (
	// ErrNotSolved indicates a query on a beam that has not been analysed
	// since its last mutation.
	ErrNotSolved = errors.New("beam: not analysed, call Analyse first")

	// ErrOutOfBounds indicates a coordinate outside [0, length].
	ErrOutOfBounds = errors.New("beam: coordinate outside the beam")

	// ErrDuplicateSupport indicates a second support at a coordinate.
	ErrDuplicateSupport = errors.New("beam: a support already exists at that coordinate")

	// ErrNoSupport indicates a support lookup at an unsupported coordinate.
	ErrNoSupport = errors.New("beam: no support at that coordinate")

	// ErrLength indicates a non-positive beam length.
	ErrLength = errors.New("beam: length must be greater than zero")

	// ErrSection indicates a non-positive section property.
	ErrSection = errors.New("beam: section properties must be greater than zero")

	// ErrNoSuchLoad indicates a load index outside the load list.
	ErrNoSuchLoad = errors.New("beam: no such load")
)

// Default section properties: a 150UB18.0 universal beam in SI units.
const (
	DefaultE = 200e9   // Young's modulus, Pa
	DefaultI = 9.05e-6 // second moment of area, m^4
	DefaultA = 2.3e-3  // cross-section area, m^2
)

// Quantity selects one of the five solved diagrams.
type Quantity int

const (
	NormalForce Quantity = iota
	ShearForce
	BendingMoment
	Slope
	Deflection
)

func (q Quantity) String() string {
	switch q {
	case NormalForce:
		return "normal force"
	case ShearForce:
		return "shear force"
	case BendingMoment:
		return "bending moment"
	case Slope:
		return "slope"
	case Deflection:
		return "deflection"
	}
	return "unknown"
}

// Unit returns the SI unit of the quantity.
func (q Quantity) Unit() string {
	switch q {
	case NormalForce, ShearForce:
		return "N"
	case BendingMoment:
		return "N.m"
	case Slope:
		return "rad"
	case Deflection:
		return "m"
	}
	return ""
}

// Quantities lists the diagrams in presentation order.
func Quantities() []Quantity {
	return []Quantity{NormalForce, ShearForce, BendingMoment, Slope, Deflection}
}

// Beam is a 1D member on [0, length] metres.
type Beam struct {
	length  float64
	e, i, a float64

	supports []support.Support
	loads    []load.Load
	marks    []float64 // query points, rendering only

	sol *solve.Solution
}

// New returns a beam of the given length with the default section.
func New(length float64) (*Beam, error) {
	if length <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrLength, length)
	}
	return &Beam{length: length, e: DefaultE, i: DefaultI, a: DefaultA}, nil
}

// SetSection replaces the material and section properties.
func (b *Beam) SetSection(e, i, a float64) error {
	if e <= 0 || i <= 0 || a <= 0 {
		return fmt.Errorf("%w: E=%g I=%g A=%g", ErrSection, e, i, a)
	}
	b.e, b.i, b.a = e, i, a
	b.invalidate()
	return nil
}

// Length returns the beam length in metres.
func (b *Beam) Length() float64 { return b.length }

// Section returns E, I and A.
func (b *Beam) Section() (e, i, a float64) { return b.e, b.i, b.a }

// Supports returns a copy of the support list.
func (b *Beam) Supports() []support.Support {
	return append([]support.Support(nil), b.supports...)
}

// Loads returns a copy of the load list.
func (b *Beam) Loads() []load.Load {
	return append([]load.Load(nil), b.loads...)
}

// Solved reports whether a current analysis is held.
func (b *Beam) Solved() bool { return b.sol != nil }

func (b *Beam) invalidate() { b.sol = nil }

func (b *Beam) checkCoord(x float64) error {
	if x < 0 || x > b.length {
		return fmt.Errorf("%w: %g not in [0, %g]", ErrOutOfBounds, x, b.length)
	}
	return nil
}

// AddSupport places a support on the beam. At most one support may occupy a
// coordinate.
func (b *Beam) AddSupport(s support.Support) error {
	if err := b.checkCoord(s.Coord); err != nil {
		return err
	}
	for _, have := range b.supports {
		if have.Coord == s.Coord {
			return fmt.Errorf("%w: %g m", ErrDuplicateSupport, s.Coord)
		}
	}
	b.supports = append(b.supports, s)
	b.invalidate()
	return nil
}

// RemoveSupport removes the support at the given coordinate.
func (b *Beam) RemoveSupport(coord float64) error {
	for i, have := range b.supports {
		if have.Coord == coord {
			b.supports = append(b.supports[:i], b.supports[i+1:]...)
			b.invalidate()
			return nil
		}
	}
	return fmt.Errorf("%w: %g m", ErrNoSupport, coord)
}

// AddLoad places a load whose span must lie within the beam.
func (b *Beam) AddLoad(l load.Load) error {
	start, end := l.Span()
	if err := b.checkCoord(start); err != nil {
		return err
	}
	if err := b.checkCoord(end); err != nil {
		return err
	}
	b.loads = append(b.loads, l)
	b.invalidate()
	return nil
}

// RemoveLoad removes the i-th load in insertion order.
func (b *Beam) RemoveLoad(i int) error {
	if i < 0 || i >= len(b.loads) {
		return fmt.Errorf("%w: index %d of %d", ErrNoSuchLoad, i, len(b.loads))
	}
	b.loads = append(b.loads[:i], b.loads[i+1:]...)
	b.invalidate()
	return nil
}

// AddQueryPoint marks coordinates for renderers. Marks do not affect the
// analysis and do not invalidate it.
func (b *Beam) AddQueryPoint(xs ...float64) error {
	for _, x := range xs {
		if err := b.checkCoord(x); err != nil {
			return err
		}
	}
	b.marks = append(b.marks, xs...)
	return nil
}

// RemoveQueryPoints clears all marks.
func (b *Beam) RemoveQueryPoints() { b.marks = nil }

// QueryPoints returns a copy of the marks.
func (b *Beam) QueryPoints() []float64 {
	return append([]float64(nil), b.marks...)
}

// Analyse classifies the structure and solves for all reactions and
// diagrams.
func (b *Beam) Analyse() error {
	sol, err := solve.Run(solve.Problem{
		Length:   b.length,
		EI:       b.e * b.i,
		EA:       b.e * b.a,
		Supports: b.supports,
		Loads:    b.loads,
	})
	if err != nil {
		return err
	}
	b.sol = sol
	return nil
}

// Classification returns the restraint classification of the current
// support arrangement without requiring a solve.
func (b *Beam) Classification() (solve.Classification, error) {
	return solve.Classify(b.supports, solve.HasHorizontal(b.loads))
}

// Reactions returns all solved reactions ordered by coordinate.
func (b *Beam) Reactions() ([]solve.Reaction, error) {
	if b.sol == nil {
		return nil, ErrNotSolved
	}
	return append([]solve.Reaction(nil), b.sol.Reactions...), nil
}

// Reaction returns the solved reaction at a supported coordinate.
func (b *Beam) Reaction(coord float64) (solve.Reaction, error) {
	if b.sol == nil {
		return solve.Reaction{}, ErrNotSolved
	}
	for _, r := range b.sol.Reactions {
		if r.Coord == coord {
			return r, nil
		}
	}
	return solve.Reaction{}, fmt.Errorf("%w: %g m", ErrNoSupport, coord)
}

func (b *Beam) diagram(q Quantity) (piecewise.Func, error) {
	if b.sol == nil {
		return piecewise.Func{}, ErrNotSolved
	}
	switch q {
	case NormalForce:
		return b.sol.Normal, nil
	case ShearForce:
		return b.sol.Shear, nil
	case BendingMoment:
		return b.sol.Moment, nil
	case Slope:
		return b.sol.Slope, nil
	case Deflection:
		return b.sol.Deflection, nil
	}
	return piecewise.Func{}, fmt.Errorf("beam: unknown quantity %d", q)
}

// Query evaluates a solved diagram at the given coordinates.
func (b *Beam) Query(q Quantity, xs ...float64) ([]float64, error) {
	f, err := b.diagram(q)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(xs))
	for i, x := range xs {
		if err := b.checkCoord(x); err != nil {
			return nil, err
		}
		out[i] = f.Eval(x)
	}
	return out, nil
}

// NormalForce evaluates the internal axial force at the given coordinates.
func (b *Beam) NormalForce(xs ...float64) ([]float64, error) {
	return b.Query(NormalForce, xs...)
}

// ShearForce evaluates the internal shear force at the given coordinates.
func (b *Beam) ShearForce(xs ...float64) ([]float64, error) {
	return b.Query(ShearForce, xs...)
}

// BendingMoment evaluates the internal bending moment at the given
// coordinates.
func (b *Beam) BendingMoment(xs ...float64) ([]float64, error) {
	return b.Query(BendingMoment, xs...)
}

// SlopeAt evaluates the slope of the deflected shape at the given
// coordinates.
func (b *Beam) SlopeAt(xs ...float64) ([]float64, error) {
	return b.Query(Slope, xs...)
}

// DeflectionAt evaluates the deflection at the given coordinates.
func (b *Beam) DeflectionAt(xs ...float64) ([]float64, error) {
	return b.Query(Deflection, xs...)
}

// Extremes returns the minimum and maximum of a solved diagram over the
// whole beam.
func (b *Beam) Extremes(q Quantity) (min, max float64, err error) {
	f, err := b.diagram(q)
	if err != nil {
		return 0, 0, err
	}
	min, max = f.MinMax(0, b.length)
	return min, max, nil
}

// AbsMax returns the diagram value of greatest magnitude, sign preserved.
func (b *Beam) AbsMax(q Quantity) (float64, error) {
	f, err := b.diagram(q)
	if err != nil {
		return 0, err
	}
	return f.AbsMax(0, b.length), nil
}

// Samples holds the five diagrams evaluated over a shared x grid.
type Samples struct {
	X          []float64
	Normal     []float64
	Shear      []float64
	Moment     []float64
	Slope      []float64
	Deflection []float64
}

// Sample evaluates all diagrams at n+1 evenly spaced coordinates.
func (b *Beam) Sample(n int) (Samples, error) {
	if b.sol == nil {
		return Samples{}, ErrNotSolved
	}
	xs, normal := b.sol.Normal.Sample(0, b.length, n)
	_, shear := b.sol.Shear.Sample(0, b.length, n)
	_, moment := b.sol.Moment.Sample(0, b.length, n)
	_, slope := b.sol.Slope.Sample(0, b.length, n)
	_, defl := b.sol.Deflection.Sample(0, b.length, n)
	return Samples{
		X:          xs,
		Normal:     normal,
		Shear:      shear,
		Moment:     moment,
		Slope:      slope,
		Deflection: defl,
	}, nil
}

// Values returns the series for a quantity from an existing sample set.
func (s Samples) Values(q Quantity) []float64 {
	switch q {
	case NormalForce:
		return s.Normal
	case ShearForce:
		return s.Shear
	case BendingMoment:
		return s.Moment
	case Slope:
		return s.Slope
	case Deflection:
		return s.Deflection
	}
	return nil
}

// Schematic is the renderable description of the beam: geometry, supports,
// loads, marks and, when solved, reactions.
type Schematic struct {
	Length      float64
	Supports    []support.Support
	Loads       []load.Load
	QueryPoints []float64
	Reactions   []solve.Reaction // nil until analysed
}

// Schematic returns the current renderable state.
func (b *Beam) Schematic() Schematic {
	s := Schematic{
		Length:      b.length,
		Supports:    b.Supports(),
		Loads:       b.Loads(),
		QueryPoints: b.QueryPoints(),
	}
	if b.sol != nil {
		s.Reactions = append([]solve.Reaction(nil), b.sol.Reactions...)
	}
	return s
}

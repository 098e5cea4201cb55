// Package support models the restraint a beam has at a coordinate: one
// degree-of-freedom specification each for horizontal translation, vertical
// translation and rotation. A DOF is free, rigid, or an elastic spring with
// a finite positive stiffness.
package support

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrStiffness indicates a spring stiffness that is not positive.
	ErrStiffness = errors.New("support: spring stiffness must be greater than zero")
)

// DOF describes the restraint of a single degree of freedom.
type DOF struct {
	Restrained bool
	Stiffness  float64 // spring constant; +Inf means rigid
}

// Free returns an unrestrained DOF.
func Free() DOF { return DOF{} }

// Rigid returns a fully restrained DOF.
func Rigid() DOF { return DOF{Restrained: true, Stiffness: math.Inf(1)} }

// Spring returns an elastically restrained DOF.
func Spring(k float64) (DOF, error) {
	if k <= 0 || math.IsNaN(k) {
		return DOF{}, fmt.Errorf("%w: got %g", ErrStiffness, k)
	}
	return DOF{Restrained: true, Stiffness: k}, nil
}

// IsRigid reports whether the DOF is restrained with infinite stiffness.
func (d DOF) IsRigid() bool { return d.Restrained && math.IsInf(d.Stiffness, 1) }

// IsSpring reports whether the DOF is restrained elastically.
func (d DOF) IsSpring() bool { return d.Restrained && !math.IsInf(d.Stiffness, 1) }

// Support is the restraint at one beam coordinate.
type Support struct {
	Coord float64
	X     DOF // horizontal translation
	Y     DOF // vertical translation
	M     DOF // rotation
}

// New builds a support from explicit DOF specifications.
func New(coord float64, x, y, m DOF) Support {
	return Support{Coord: coord, X: x, Y: y, M: m}
}

// Fixed returns a fully built-in support: all three DOFs rigid.
func Fixed(coord float64) Support {
	return New(coord, Rigid(), Rigid(), Rigid())
}

// Pinned returns a support restraining both translations but not rotation.
func Pinned(coord float64) Support {
	return New(coord, Rigid(), Rigid(), Free())
}

// Roller returns a support restraining only vertical translation.
func Roller(coord float64) Support {
	return New(coord, Free(), Rigid(), Free())
}

// WithSpringX replaces the horizontal DOF with a spring of stiffness kx.
// An elastic restraint overrides a rigid one on the same DOF.
func (s Support) WithSpringX(kx float64) (Support, error) {
	d, err := Spring(kx)
	if err != nil {
		return s, err
	}
	s.X = d
	return s, nil
}

// WithSpringY replaces the vertical DOF with a spring of stiffness ky.
func (s Support) WithSpringY(ky float64) (Support, error) {
	d, err := Spring(ky)
	if err != nil {
		return s, err
	}
	s.Y = d
	return s, nil
}

// WithSpringM replaces the rotational DOF with a spring of stiffness km.
func (s Support) WithSpringM(km float64) (Support, error) {
	d, err := Spring(km)
	if err != nil {
		return s, err
	}
	s.M = d
	return s, nil
}

// Kind returns a short label for display: "fixed", "pinned", "roller" for
// the rigid archetypes, "spring" when any DOF is elastic, otherwise
// "custom".
func (s Support) Kind() string {
	if s.X.IsSpring() || s.Y.IsSpring() || s.M.IsSpring() {
		return "spring"
	}
	switch {
	case s.X.IsRigid() && s.Y.IsRigid() && s.M.IsRigid():
		return "fixed"
	case s.X.IsRigid() && s.Y.IsRigid():
		return "pinned"
	case s.Y.IsRigid() && !s.X.Restrained && !s.M.Restrained:
		return "roller"
	}
	return "custom"
}

func (s Support) String() string {
	return fmt.Sprintf("%s support at %g m", s.Kind(), s.Coord)
}

func dofLabel(d DOF) string {
	switch {
	case d.IsRigid():
		return "rigid"
	case d.IsSpring():
		return fmt.Sprintf("spring %g", d.Stiffness)
	}
	return "free"
}

// Describe returns the per-DOF restraint detail used by listings.
func (s Support) Describe() string {
	return fmt.Sprintf("x=%s y=%s m=%s", dofLabel(s.X), dofLabel(s.Y), dofLabel(s.M))
}

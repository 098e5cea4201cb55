// Package units converts user-facing units to the SI base units the solver
// works in, and back for presentation. Conversion happens only at the
// boundary: everything inside the module is metres, newtons and pascals.
package units

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownUnit indicates a unit name with no conversion factor for the
// requested dimension.
var ErrUnknownUnit = errors.New("units: unknown unit")

// Dimension names a convertible physical dimension.
type Dimension string

const (
	Length      Dimension = "length"
	Force       Dimension = "force"
	Moment      Dimension = "moment"
	Distributed Dimension = "distributed"
	Stiffness   Dimension = "stiffness"
	Area        Dimension = "area"
	Modulus     Dimension = "modulus"
	Inertia     Dimension = "inertia"
	Deflection  Dimension = "deflection"
)

const (
	mm   = 0.001
	cm   = 0.01
	inch = 0.0254
	ft   = 0.3048
	kn   = 1000.0
	lbf  = 4.4482216
	kip  = 4448.2216
)

// factors maps lowercase unit names to the multiplier that takes a value to
// its SI base unit.
var factors = map[Dimension]map[string]float64{
	Length: {
		"mm": mm, "cm": cm, "m": 1,
		"in": inch, "ft": ft,
	},
	Force: {
		"n": 1, "kn": kn, "mn": 1e6,
		"lbf": lbf, "kip": kip,
	},
	Moment: {
		"n.mm": mm, "kn.mm": kn * mm, "n.m": 1, "kn.m": kn,
		"lbf.ft": lbf * ft, "kip.ft": kip * ft,
		"lbf.in": lbf * inch, "kip.in": kip * inch,
	},
	Distributed: {
		"n/mm": 1 / mm, "kn/mm": kn / mm, "n/m": 1, "kn/m": kn,
		"lbf/ft": lbf / ft, "kip/ft": kip / ft,
		"lbf/in": lbf / inch, "kip/in": kip / inch,
	},
	Area: {
		"mm2": mm * mm, "cm2": cm * cm, "m2": 1,
		"in2": inch * inch, "ft2": ft * ft,
	},
	Modulus: {
		"pa": 1, "kpa": 1e3, "mpa": 1e6, "gpa": 1e9,
		"lbf/in2": lbf / (inch * inch), "kip/in2": kip / (inch * inch),
		"lbf/ft2": lbf / (ft * ft), "kip/ft2": kip / (ft * ft),
	},
	Inertia: {
		"mm4": mm * mm * mm * mm, "cm4": cm * cm * cm * cm, "m4": 1,
		"in4": inch * inch * inch * inch, "ft4": ft * ft * ft * ft,
	},
}

func init() {
	// Stiffness shares the force-per-length table and deflection the length
	// table.
	factors[Stiffness] = factors[Distributed]
	factors[Deflection] = factors[Length]
}

// Factor returns the multiplier that converts one unit of the named kind to
// its SI base unit.
func Factor(d Dimension, unit string) (float64, error) {
	table, ok := factors[d]
	if !ok {
		return 0, fmt.Errorf("units: unknown dimension %q", d)
	}
	f, ok := table[strings.ToLower(unit)]
	if !ok {
		return 0, fmt.Errorf("%w: %q is not a %s unit", ErrUnknownUnit, unit, d)
	}
	return f, nil
}

// ToSI converts a value from the given unit to the SI base unit.
func ToSI(d Dimension, unit string, v float64) (float64, error) {
	f, err := Factor(d, unit)
	if err != nil {
		return 0, err
	}
	return v * f, nil
}

// FromSI converts a value from the SI base unit to the given unit.
func FromSI(d Dimension, unit string, v float64) (float64, error) {
	f, err := Factor(d, unit)
	if err != nil {
		return 0, err
	}
	return v / f, nil
}

// Units lists the accepted unit names for a dimension, for error messages
// and CLI help.
func Units(d Dimension) []string {
	table := factors[d]
	out := make([]string, 0, len(table))
	for u := range table {
		out = append(out, u)
	}
	return out
}

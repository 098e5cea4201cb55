// Package config reads and writes beam definition files in YAML and builds
// solvable beams from them. Values in a file are expressed in the units its
// units block names and converted to SI while building.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/load"
	"github.com/aversten/beamsolve/internal/support"
	"github.com/aversten/beamsolve/internal/units"
)

var (
	// ErrUnknownKind indicates an unrecognised support kind.
	ErrUnknownKind = errors.New("config: unknown support kind")

	// ErrUnknownLoadType indicates an unrecognised load type.
	ErrUnknownLoadType = errors.New("config: unknown load type")
)

type Config struct {
	Name        string          `yaml:"name"`
	Length      float64         `yaml:"length"`
	Units       UnitsConfig     `yaml:"units"`
	Section     SectionConfig   `yaml:"section"`
	Supports    []SupportConfig `yaml:"supports"`
	Loads       []LoadConfig    `yaml:"loads"`
	QueryPoints []float64       `yaml:"query_points"`
}

// UnitsConfig names the unit each dimension is expressed in. Empty fields
// mean SI base units.
type UnitsConfig struct {
	Length      string `yaml:"length,omitempty"`
	Force       string `yaml:"force,omitempty"`
	Moment      string `yaml:"moment,omitempty"`
	Distributed string `yaml:"distributed,omitempty"`
	Stiffness   string `yaml:"stiffness,omitempty"`
	Modulus     string `yaml:"modulus,omitempty"`
	Inertia     string `yaml:"inertia,omitempty"`
	Area        string `yaml:"area,omitempty"`
}

type SectionConfig struct {
	E float64 `yaml:"e"`
	I float64 `yaml:"i"`
	A float64 `yaml:"a"`
}

// SupportConfig is one support: a kind plus optional spring stiffnesses.
// A positive stiffness turns the matching DOF elastic. Kind "custom" reads
// the restrained DOFs from Fix, a string of the letters x, y and m.
type SupportConfig struct {
	Coord float64 `yaml:"coord"`
	Kind  string  `yaml:"kind"`
	Fix   string  `yaml:"fix,omitempty"`
	KX    float64 `yaml:"kx,omitempty"`
	KY    float64 `yaml:"ky,omitempty"`
	KM    float64 `yaml:"km,omitempty"`
}

// LoadConfig is one load. Which fields apply depends on Type:
// point (force, coord, angle), torque (moment, coord),
// udl (force, start, end), trapezoid (start_force, end_force, start, end),
// distributed (expr, start, end, angle).
type LoadConfig struct {
	Type       string  `yaml:"type"`
	Force      float64 `yaml:"force,omitempty"`
	Moment     float64 `yaml:"moment,omitempty"`
	Coord      float64 `yaml:"coord,omitempty"`
	Angle      float64 `yaml:"angle,omitempty"`
	Start      float64 `yaml:"start,omitempty"`
	End        float64 `yaml:"end,omitempty"`
	StartForce float64 `yaml:"start_force,omitempty"`
	EndForce   float64 `yaml:"end_force,omitempty"`
	Expr       string  `yaml:"expr,omitempty"`
}

// DefaultConfig is a simply supported 5 m beam with the default section,
// all values in SI.
func DefaultConfig() *Config {
	return &Config{
		Name:   "beam",
		Length: 5,
		Section: SectionConfig{
			E: beam.DefaultE,
			I: beam.DefaultI,
			A: beam.DefaultA,
		},
		Supports: []SupportConfig{
			{Coord: 0, Kind: "pinned"},
			{Coord: 5, Kind: "roller"},
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal returns the YAML form of the config.
func Marshal(cfg *Config) ([]byte, error) { return yaml.Marshal(cfg) }

// Parse reads a config from YAML bytes.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (u UnitsConfig) factor(d units.Dimension, unit string) (float64, error) {
	if unit == "" {
		return 1, nil
	}
	return units.Factor(d, unit)
}

// Build converts the definition to a solvable beam in SI units.
func (c *Config) Build() (*beam.Beam, error) {
	lengthF, err := c.Units.factor(units.Length, c.Units.Length)
	if err != nil {
		return nil, err
	}
	forceF, err := c.Units.factor(units.Force, c.Units.Force)
	if err != nil {
		return nil, err
	}
	momentF, err := c.Units.factor(units.Moment, c.Units.Moment)
	if err != nil {
		return nil, err
	}
	distF, err := c.Units.factor(units.Distributed, c.Units.Distributed)
	if err != nil {
		return nil, err
	}
	stiffF, err := c.Units.factor(units.Stiffness, c.Units.Stiffness)
	if err != nil {
		return nil, err
	}
	modulusF, err := c.Units.factor(units.Modulus, c.Units.Modulus)
	if err != nil {
		return nil, err
	}
	inertiaF, err := c.Units.factor(units.Inertia, c.Units.Inertia)
	if err != nil {
		return nil, err
	}
	areaF, err := c.Units.factor(units.Area, c.Units.Area)
	if err != nil {
		return nil, err
	}

	b, err := beam.New(c.Length * lengthF)
	if err != nil {
		return nil, err
	}
	sec := c.Section
	if sec.E == 0 && sec.I == 0 && sec.A == 0 {
		sec = SectionConfig{E: beam.DefaultE, I: beam.DefaultI, A: beam.DefaultA}
		modulusF, inertiaF, areaF = 1, 1, 1
	}
	if err := b.SetSection(sec.E*modulusF, sec.I*inertiaF, sec.A*areaF); err != nil {
		return nil, err
	}

	for _, sc := range c.Supports {
		s, err := buildSupport(sc, lengthF, stiffF)
		if err != nil {
			return nil, err
		}
		if err := b.AddSupport(s); err != nil {
			return nil, err
		}
	}

	for _, lc := range c.Loads {
		l, err := buildLoad(lc, lengthF, forceF, momentF, distF)
		if err != nil {
			return nil, err
		}
		if err := b.AddLoad(l); err != nil {
			return nil, err
		}
	}

	for _, q := range c.QueryPoints {
		if err := b.AddQueryPoint(q * lengthF); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func buildSupport(sc SupportConfig, lengthF, stiffF float64) (support.Support, error) {
	coord := sc.Coord * lengthF
	var s support.Support
	switch strings.ToLower(sc.Kind) {
	case "fixed":
		s = support.Fixed(coord)
	case "pinned", "pin":
		s = support.Pinned(coord)
	case "roller", "":
		s = support.Roller(coord)
	case "custom":
		x, y, m := support.Free(), support.Free(), support.Free()
		for _, r := range strings.ToLower(sc.Fix) {
			switch r {
			case 'x':
				x = support.Rigid()
			case 'y':
				y = support.Rigid()
			case 'm':
				m = support.Rigid()
			}
		}
		s = support.New(coord, x, y, m)
	default:
		return support.Support{}, fmt.Errorf("%w: %q", ErrUnknownKind, sc.Kind)
	}

	var err error
	if sc.KX > 0 {
		if s, err = s.WithSpringX(sc.KX * stiffF); err != nil {
			return support.Support{}, err
		}
	}
	if sc.KY > 0 {
		if s, err = s.WithSpringY(sc.KY * stiffF); err != nil {
			return support.Support{}, err
		}
	}
	if sc.KM > 0 {
		// Rotational stiffness converts as moment per radian.
		if s, err = s.WithSpringM(sc.KM * stiffF * lengthF); err != nil {
			return support.Support{}, err
		}
	}
	return s, nil
}

func buildLoad(lc LoadConfig, lengthF, forceF, momentF, distF float64) (load.Load, error) {
	switch strings.ToLower(lc.Type) {
	case "point":
		return load.NewPoint(lc.Force*forceF, lc.Coord*lengthF, lc.Angle), nil
	case "point_v", "pointv":
		return load.NewPointV(lc.Force*forceF, lc.Coord*lengthF), nil
	case "point_h", "pointh":
		return load.NewPointH(lc.Force*forceF, lc.Coord*lengthF), nil
	case "torque":
		return load.NewTorque(lc.Moment*momentF, lc.Coord*lengthF), nil
	case "udl":
		return load.NewUDL(lc.Force*distF, lc.Start*lengthF, lc.End*lengthF)
	case "trapezoid":
		return load.NewTrapezoid(lc.StartForce*distF, lc.EndForce*distF,
			lc.Start*lengthF, lc.End*lengthF)
	case "distributed":
		// The density expression is taken as newtons per metre of SI
		// position already; only its span converts.
		return load.NewDistributed(lc.Expr, lc.Start*lengthF, lc.End*lengthF, lc.Angle)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownLoadType, lc.Type)
}

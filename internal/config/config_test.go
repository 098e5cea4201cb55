package config

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/aversten/beamsolve/internal/beam"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Length <= 0 {
		t.Error("length should be positive")
	}
	if len(cfg.Supports) < 2 {
		t.Error("default beam should be supported at both ends")
	}
	b, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.Analyse(); err != nil {
		t.Errorf("default beam should analyse cleanly: %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "beam.yaml")
	cfg := GetPreset("propped", "textbook")
	if cfg == nil {
		t.Fatal("missing preset")
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildProppedCantilever(t *testing.T) {
	cfg := GetPreset("propped", "textbook")
	b, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := b.Analyse(); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	r, err := b.Reaction(3)
	if err != nil {
		t.Fatalf("Reaction: %v", err)
	}
	if !almostEqual(r.Fy, 9250, 1e-6) {
		t.Errorf("Fy at 3 = %v, want 9250", r.Fy)
	}
}

func TestBuildWithUnits(t *testing.T) {
	data := []byte(`
name: converted
length: 3000
units:
  length: mm
  force: kN
  distributed: kN/m
  modulus: GPa
  inertia: mm4
  area: mm2
section:
  e: 200
  i: 9.05e6
  a: 2300
supports:
  - {coord: 0, kind: fixed}
  - {coord: 3000, kind: roller}
loads:
  - {type: point_v, force: -8, coord: 1500}
  - {type: udl, force: -6, start: 0, end: 3000}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	b, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !almostEqual(b.Length(), 3, 1e-12) {
		t.Fatalf("Length = %v, want 3", b.Length())
	}
	e, i, a := b.Section()
	if !almostEqual(e, 200e9, 1) || !almostEqual(i, 9.05e-6, 1e-12) || !almostEqual(a, 2.3e-3, 1e-12) {
		t.Fatalf("Section = %v, %v, %v", e, i, a)
	}
	if err := b.Analyse(); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	r, err := b.Reaction(3)
	if err != nil {
		t.Fatalf("Reaction: %v", err)
	}
	if !almostEqual(r.Fy, 9250, 1e-6) {
		t.Errorf("Fy at 3 = %v, want 9250 N", r.Fy)
	}
}

func TestBuildCustomSupport(t *testing.T) {
	cfg := &Config{
		Length: 4,
		Supports: []SupportConfig{
			{Coord: 0, Kind: "custom", Fix: "ym"},
			{Coord: 4, Kind: "roller"},
		},
	}
	b, err := cfg.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	s := b.Supports()[0]
	if s.X.Restrained {
		t.Error("x should be free")
	}
	if !s.Y.IsRigid() || !s.M.IsRigid() {
		t.Error("y and m should be rigid")
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr error
	}{
		{
			name: "unknown kind",
			cfg: &Config{Length: 3, Supports: []SupportConfig{
				{Coord: 0, Kind: "glued"},
			}},
			wantErr: ErrUnknownKind,
		},
		{
			name: "unknown load type",
			cfg: &Config{Length: 3,
				Supports: []SupportConfig{{Coord: 0, Kind: "fixed"}},
				Loads:    []LoadConfig{{Type: "wind"}},
			},
			wantErr: ErrUnknownLoadType,
		},
		{
			name: "duplicate support",
			cfg: &Config{Length: 3, Supports: []SupportConfig{
				{Coord: 1, Kind: "roller"},
				{Coord: 1, Kind: "pinned"},
			}},
			wantErr: beam.ErrDuplicateSupport,
		},
		{
			name: "load outside beam",
			cfg: &Config{Length: 3,
				Supports: []SupportConfig{{Coord: 0, Kind: "fixed"}},
				Loads:    []LoadConfig{{Type: "point_v", Force: -1, Coord: 9}},
			},
			wantErr: beam.ErrOutOfBounds,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.cfg.Build(); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetPreset(t *testing.T) {
	if cfg := GetPreset("cantilever", "triangle"); cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg := GetPreset("cantilever", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "udl"); cfg != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestListPresets(t *testing.T) {
	if presets := ListPresets("simple"); len(presets) == 0 {
		t.Error("expected presets for simple")
	}
	if presets := ListPresets("nonexistent"); presets != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestAllPresetsBuildAndAnalyse(t *testing.T) {
	for family, scenarios := range Presets {
		for name, cfg := range scenarios {
			t.Run(family+"/"+name, func(t *testing.T) {
				b, err := cfg.Build()
				if err != nil {
					t.Fatalf("Build: %v", err)
				}
				if err := b.Analyse(); err != nil {
					t.Fatalf("Analyse: %v", err)
				}
			})
		}
	}
}

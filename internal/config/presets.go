package config

// Presets are ready-made beam definitions keyed by family and scenario,
// all in SI units with the default section.
var Presets = map[string]map[string]*Config{
	"simple": {
		"udl": {
			Name: "simply supported, udl", Length: 5,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "pinned"},
				{Coord: 5, Kind: "roller"},
			},
			Loads: []LoadConfig{
				{Type: "udl", Force: -2000, Start: 0, End: 5},
			},
		},
		"midspan_point": {
			Name: "simply supported, midspan point load", Length: 5,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "pinned"},
				{Coord: 5, Kind: "roller"},
			},
			Loads: []LoadConfig{
				{Type: "point_v", Force: -10000, Coord: 2.5},
			},
		},
	},
	"cantilever": {
		"tip_point": {
			Name: "cantilever, tip point load", Length: 2,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "fixed"},
			},
			Loads: []LoadConfig{
				{Type: "point_v", Force: -5000, Coord: 2},
			},
		},
		"triangle": {
			Name: "cantilever, triangular load", Length: 8,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "fixed"},
			},
			Loads: []LoadConfig{
				{Type: "trapezoid", StartForce: -4000, EndForce: 0, Start: 0, End: 6},
			},
		},
	},
	"propped": {
		"textbook": {
			Name: "propped cantilever", Length: 3,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "fixed"},
				{Coord: 3, Kind: "roller"},
			},
			Loads: []LoadConfig{
				{Type: "point_v", Force: -8000, Coord: 1.5},
				{Type: "udl", Force: -6000, Start: 0, End: 3},
			},
		},
		"sprung": {
			Name: "propped cantilever on a spring", Length: 3,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "fixed"},
				{Coord: 3, Kind: "roller", KY: 1e6},
			},
			Loads: []LoadConfig{
				{Type: "udl", Force: -6000, Start: 0, End: 3},
			},
		},
	},
	"fixed_fixed": {
		"udl": {
			Name: "built-in both ends, udl", Length: 4,
			Supports: []SupportConfig{
				{Coord: 0, Kind: "fixed"},
				{Coord: 4, Kind: "fixed"},
			},
			Loads: []LoadConfig{
				{Type: "udl", Force: -3000, Start: 0, End: 4},
			},
		},
	},
}

func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	cfg, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	return names
}

package diagram

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/load"
	"github.com/aversten/beamsolve/internal/support"
)

func solvedBeam(t *testing.T) *beam.Beam {
	t.Helper()
	b, err := beam.New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.AddSupport(support.Fixed(0)); err != nil {
		t.Fatalf("AddSupport: %v", err)
	}
	if err := b.AddSupport(support.Roller(3)); err != nil {
		t.Fatalf("AddSupport: %v", err)
	}
	if err := b.AddLoad(load.NewPointV(-8000, 1.5)); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	u, err := load.NewUDL(-6000, 0, 3)
	if err != nil {
		t.Fatalf("NewUDL: %v", err)
	}
	if err := b.AddLoad(u); err != nil {
		t.Fatalf("AddLoad: %v", err)
	}
	if err := b.Analyse(); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	return b
}

func TestPlot(t *testing.T) {
	b := solvedBeam(t)
	s, err := b.Sample(64)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	out := Plot(s, beam.ShearForce, DefaultOptions())
	if out == "" {
		t.Fatal("empty plot")
	}
	if !strings.Contains(out, "shear force") {
		t.Errorf("caption missing: %q", out)
	}
}

func TestPlotAll(t *testing.T) {
	b := solvedBeam(t)
	s, err := b.Sample(64)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	out := PlotAll(s, DefaultOptions())
	for _, q := range beam.Quantities() {
		if !strings.Contains(out, q.String()) {
			t.Errorf("missing %s chart", q)
		}
	}
}

func TestSchematic(t *testing.T) {
	b := solvedBeam(t)
	if err := b.AddQueryPoint(1); err != nil {
		t.Fatalf("AddQueryPoint: %v", err)
	}
	out := Schematic(b.Schematic(), 60)

	if !strings.Contains(out, "#") {
		t.Error("fixed support marker missing")
	}
	if !strings.Contains(out, "o") {
		t.Error("roller marker missing")
	}
	if !strings.Contains(out, "V") {
		t.Error("downward point load marker missing")
	}
	if !strings.Contains(out, "v") {
		t.Error("distributed load markers missing")
	}
	if !strings.Contains(out, "+") {
		t.Error("query point marker missing")
	}
	if !strings.Contains(out, "3 m") {
		t.Error("length label missing")
	}
}

func TestSummaryBox(t *testing.T) {
	out := SummaryBox("reactions", []string{"R0 = 16750 N", "R3 = 9250 N"})
	if !strings.Contains(out, "reactions") || !strings.Contains(out, "R3 = 9250 N") {
		t.Errorf("box content missing:\n%s", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	for _, l := range lines[1:] {
		if len(l) != len(lines[0]) {
			t.Errorf("ragged box line: %q", l)
		}
	}
}

func TestExport(t *testing.T) {
	b := solvedBeam(t)
	s, err := b.Sample(64)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	path := filepath.Join(t.TempDir(), "moment.png")
	if err := Export(s, beam.BendingMoment, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
}

func TestExportAll(t *testing.T) {
	b := solvedBeam(t)
	s, err := b.Sample(32)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	files, err := ExportAll(s, t.TempDir(), "beam", "png")
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(files) != len(beam.Quantities()) {
		t.Errorf("exported %d files, want %d", len(files), len(beam.Quantities()))
	}
}

package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"math"
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

func TestCSV(t *testing.T) {
	b := solvedBeam(t)
	s, err := b.Sample(30)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}

	var buf bytes.Buffer
	if err := CSV(&buf, s); err != nil {
		t.Fatalf("CSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	// Header plus 31 samples.
	if len(rows) != 32 {
		t.Fatalf("rows = %d, want 32", len(rows))
	}
	if rows[0][0] != "x" || rows[0][3] != "moment" {
		t.Errorf("header = %v", rows[0])
	}
	if len(rows[1]) != 6 {
		t.Errorf("columns = %d, want 6", len(rows[1]))
	}
}

func TestJSON(t *testing.T) {
	b := solvedBeam(t)
	var buf bytes.Buffer
	if err := JSON(&buf, "propped", b, 40); err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc Document
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Name != "propped" || doc.Length != 3 || doc.Degree != 1 {
		t.Errorf("doc = %+v", doc)
	}
	if len(doc.Reactions) != 2 {
		t.Fatalf("reactions = %d, want 2", len(doc.Reactions))
	}
	if got := doc.Reactions[0].Fy; math.Abs(got-16750) > 1e-6 {
		t.Errorf("Fy(0) = %g, want 16750", got)
	}
	if len(doc.Series.X) != 41 || len(doc.Series.Deflection) != 41 {
		t.Errorf("series lengths = %d, %d, want 41", len(doc.Series.X), len(doc.Series.Deflection))
	}
}

func TestJSONUnsolved(t *testing.T) {
	b, err := beam.New(3)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	var buf bytes.Buffer
	if err := JSON(&buf, "", b, 10); !errors.Is(err, beam.ErrNotSolved) {
		t.Errorf("err = %v, want ErrNotSolved", err)
	}
}

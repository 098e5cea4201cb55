// Package export writes sampled diagrams as machine-readable CSV and JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/solve"
)

var csvHeader = []string{"x", "normal", "shear", "moment", "slope", "deflection"}

// CSV writes one row per sample position with all five quantities.
func CSV(w io.Writer, s beam.Samples) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	cols := [][]float64{s.X, s.Normal, s.Shear, s.Moment, s.Slope, s.Deflection}
	row := make([]string, len(cols))
	for i := range s.X {
		for j, col := range cols {
			row[j] = strconv.FormatFloat(col[i], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Document is the JSON export shape.
type Document struct {
	Name      string           `json:"name,omitempty"`
	Length    float64          `json:"length"`
	Degree    int              `json:"degree"`
	Reactions []solve.Reaction `json:"reactions"`
	Series    Series           `json:"series"`
}

// Series holds the sampled diagrams as parallel arrays.
type Series struct {
	X          []float64 `json:"x"`
	Normal     []float64 `json:"normal"`
	Shear      []float64 `json:"shear"`
	Moment     []float64 `json:"moment"`
	Slope      []float64 `json:"slope"`
	Deflection []float64 `json:"deflection"`
}

// JSON writes the solved beam with its sampled diagrams as an indented
// JSON document.
func JSON(w io.Writer, name string, b *beam.Beam, samples int) error {
	reactions, err := b.Reactions()
	if err != nil {
		return err
	}
	cls, err := b.Classification()
	if err != nil {
		return err
	}
	s, err := b.Sample(samples)
	if err != nil {
		return err
	}

	doc := Document{
		Name:      name,
		Length:    b.Length(),
		Degree:    cls.Degree,
		Reactions: reactions,
		Series: Series{
			X:          s.X,
			Normal:     s.Normal,
			Shear:      s.Shear,
			Moment:     s.Moment,
			Slope:      s.Slope,
			Deflection: s.Deflection,
		},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

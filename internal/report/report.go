// Package report produces analysis deliverables: a PDF summary of the
// solved beam and an XLSX workbook with the sampled diagrams.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/aversten/beamsolve/internal/beam"
)

// Meta labels a report.
type Meta struct {
	Title   string
	Project string
	Author  string
}

// PDF writes a one-page analysis summary: geometry, supports, loads,
// reactions and diagram extremes.
func PDF(w io.Writer, b *beam.Beam, meta Meta) error {
	reactions, err := b.Reactions()
	if err != nil {
		return err
	}
	cls, err := b.Classification()
	if err != nil {
		return err
	}

	title := meta.Title
	if title == "" {
		title = "beam analysis"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	if meta.Project != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Project: %s", meta.Project))
		pdf.Ln(6)
	}
	if meta.Author != "" {
		pdf.Cell(0, 6, fmt.Sprintf("Author: %s", meta.Author))
		pdf.Ln(6)
	}
	pdf.Cell(0, 6, fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	pdf.Ln(10)

	e, i, a := b.Section()
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Geometry and section")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, fmt.Sprintf("Length: %g m", b.Length()))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("E = %.4g Pa, I = %.4g m4, A = %.4g m2", e, i, a))
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("Degree of static indeterminacy: %d", cls.Degree))
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Supports")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, s := range b.Supports() {
		pdf.Cell(0, 5, fmt.Sprintf("%s (%s)", s, s.Describe()))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Loads")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, l := range b.Loads() {
		pdf.Cell(0, 5, l.String())
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Reactions")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, r := range reactions {
		pdf.Cell(0, 5, fmt.Sprintf("x = %g m: Fx = %.4f N, Fy = %.4f N, M = %.4f N.m",
			r.Coord, r.Fx, r.Fy, r.M))
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Diagram extremes")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for _, q := range beam.Quantities() {
		min, max, err := b.Extremes(q)
		if err != nil {
			return err
		}
		pdf.Cell(0, 5, fmt.Sprintf("%s: min = %.6g %s, max = %.6g %s",
			q, min, q.Unit(), max, q.Unit()))
		pdf.Ln(5)
	}

	return pdf.Output(w)
}

// XLSX writes a workbook with a summary sheet and one diagrams sheet
// holding the sampled series in columns.
func XLSX(w io.Writer, b *beam.Beam, meta Meta, samples int) error {
	reactions, err := b.Reactions()
	if err != nil {
		return err
	}
	s, err := b.Sample(samples)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return err
	}
	row := 1
	set := func(col string, v interface{}) {
		f.SetCellValue(summary, fmt.Sprintf("%s%d", col, row), v)
	}
	set("A", "title")
	set("B", meta.Title)
	row++
	set("A", "length (m)")
	set("B", b.Length())
	row++
	e, i, a := b.Section()
	set("A", "E (Pa)")
	set("B", e)
	row++
	set("A", "I (m4)")
	set("B", i)
	row++
	set("A", "A (m2)")
	set("B", a)
	row += 2

	set("A", "reaction coord (m)")
	set("B", "Fx (N)")
	set("C", "Fy (N)")
	set("D", "M (N.m)")
	row++
	for _, r := range reactions {
		set("A", r.Coord)
		set("B", r.Fx)
		set("C", r.Fy)
		set("D", r.M)
		row++
	}

	const sheet = "Diagrams"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	headers := []string{"x (m)", "N (N)", "V (N)", "M (N.m)", "theta (rad)", "v (m)"}
	for c, h := range headers {
		cell, err := excelize.CoordinatesToCellName(c+1, 1)
		if err != nil {
			return err
		}
		f.SetCellValue(sheet, cell, h)
	}
	series := [][]float64{s.X, s.Normal, s.Shear, s.Moment, s.Slope, s.Deflection}
	for c, col := range series {
		for r, v := range col {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			f.SetCellValue(sheet, cell, v)
		}
	}

	return f.Write(w)
}

package diagram

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aversten/beamsolve/internal/beam"
)

// Export writes one quantity diagram to an image file. The format follows
// the extension: png, svg or pdf, defaulting to png.
func Export(s beam.Samples, q beam.Quantity, filename string) error {
	p := plot.New()
	p.Title.Text = titleCase(q.String()) + " diagram"
	p.X.Label.Text = "position (m)"
	p.Y.Label.Text = fmt.Sprintf("%s (%s)", q, q.Unit())

	ys := s.Values(q)
	pts := make(plotter.XYs, len(s.X))
	for i := range s.X {
		pts[i] = plotter.XY{X: s.X[i], Y: ys[i]}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = color.RGBA{R: 30, G: 90, B: 180, A: 255}
	p.Add(line)

	// Zero reference line across the span.
	if len(s.X) > 0 {
		zero, err := plotter.NewLine(plotter.XYs{
			{X: s.X[0], Y: 0},
			{X: s.X[len(s.X)-1], Y: 0},
		})
		if err != nil {
			return err
		}
		zero.LineStyle.Width = vg.Points(0.5)
		zero.LineStyle.Color = color.Gray{Y: 128}
		zero.LineStyle.Dashes = []vg.Length{vg.Points(3), vg.Points(3)}
		p.Add(zero)
	}

	dir := filepath.Dir(filename)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	switch filepath.Ext(filename) {
	case ".png", ".svg", ".pdf":
		return p.Save(8*vg.Inch, 4*vg.Inch, filename)
	}
	return p.Save(8*vg.Inch, 4*vg.Inch, filename+".png")
}

// ExportAll writes one image per quantity into dir, named base_<quantity>.ext.
func ExportAll(s beam.Samples, dir, base, ext string) ([]string, error) {
	if ext == "" {
		ext = "png"
	}
	var files []string
	for _, q := range beam.Quantities() {
		name := strings.ReplaceAll(q.String(), " ", "_")
		path := filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, name, ext))
		if err := Export(s, q, path); err != nil {
			return files, err
		}
		files = append(files, path)
	}
	return files, nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/config"
	"github.com/aversten/beamsolve/internal/diagram"
	"github.com/aversten/beamsolve/internal/export"
	"github.com/aversten/beamsolve/internal/report"
	"github.com/aversten/beamsolve/internal/server"
	"github.com/aversten/beamsolve/internal/store"
	"github.com/aversten/beamsolve/internal/tui"
	"github.com/aversten/beamsolve/internal/units"
)

var (
	dataFile string
	preset   string
	samples  int
	// Diagram flags
	quantity string
	width    int
	height   int
	// Export flags
	outDir string
	base   string
	format string
	// Report flags
	pdfFile  string
	xlsxFile string
	title    string
	project  string
	author   string
	// Analyse flags
	saveAs string
	at     []float64
	// Serve flags
	addr string
)

// version is set through -ldflags at release time.
var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "beamsolve",
		Short: "statics solver for indeterminate beams",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the interactive browser when no command given
			return tui.Run(nil)
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataFile, "data", ".beamsolve.db", "beam database file")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [config.yaml]",
		Short: "solve a beam and print reactions and extremes",
		Args:  cobra.MaximumNArgs(1),
		RunE:  analyzeBeam,
	}
	analyzeCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	analyzeCmd.Flags().StringVar(&saveAs, "save", "", "store the definition and result under a name")
	analyzeCmd.Flags().Float64SliceVar(&at, "at", nil, "extra positions to evaluate")

	diagramCmd := &cobra.Command{
		Use:   "diagram [config.yaml]",
		Short: "draw diagrams in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  drawDiagrams,
	}
	diagramCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	diagramCmd.Flags().StringVar(&quantity, "quantity", "", "single quantity: normal, shear, moment, slope or deflection")
	diagramCmd.Flags().IntVar(&width, "width", 64, "chart width")
	diagramCmd.Flags().IntVar(&height, "height", 10, "chart height")
	diagramCmd.Flags().IntVar(&samples, "samples", 256, "diagram sample count")

	exportCmd := &cobra.Command{
		Use:   "export [config.yaml]",
		Short: "export diagram images",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportImages,
	}
	exportCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	exportCmd.Flags().StringVar(&outDir, "out", ".", "output directory")
	exportCmd.Flags().StringVar(&base, "base", "beam", "file name prefix")
	exportCmd.Flags().StringVar(&format, "format", "png", "image format: png, svg or pdf")
	exportCmd.Flags().IntVar(&samples, "samples", 500, "diagram sample count")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [config.yaml]",
		Short: "write sampled diagrams to stdout as csv",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, b, err := solveDefinition(args)
			if err != nil {
				return err
			}
			s, err := b.Sample(samples)
			if err != nil {
				return err
			}
			return export.CSV(os.Stdout, s)
		},
	}
	exportCSVCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	exportCSVCmd.Flags().IntVar(&samples, "samples", 200, "diagram sample count")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [config.yaml]",
		Short: "write the solved beam to stdout as json",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, b, err := solveDefinition(args)
			if err != nil {
				return err
			}
			return export.JSON(os.Stdout, cfg.Name, b, samples)
		},
	}
	exportJSONCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	exportJSONCmd.Flags().IntVar(&samples, "samples", 200, "diagram sample count")

	reportCmd := &cobra.Command{
		Use:   "report [config.yaml]",
		Short: "write a pdf summary or xlsx workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeReport,
	}
	reportCmd.Flags().StringVar(&preset, "preset", "", "use preset (family/name)")
	reportCmd.Flags().StringVar(&pdfFile, "pdf", "", "pdf output path")
	reportCmd.Flags().StringVar(&xlsxFile, "xlsx", "", "xlsx output path")
	reportCmd.Flags().StringVar(&title, "title", "", "report title")
	reportCmd.Flags().StringVar(&project, "project", "", "project name")
	reportCmd.Flags().StringVar(&author, "author", "", "author name")
	reportCmd.Flags().IntVar(&samples, "samples", 200, "xlsx sample count")

	initCmd := &cobra.Command{
		Use:   "init [config.yaml]",
		Short: "write a starter definition file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			if preset != "" {
				var err error
				if cfg, err = lookupPreset(preset); err != nil {
					return err
				}
			}
			if err := config.Save(args[0], cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from preset (family/name)")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	saveCmd := &cobra.Command{
		Use:   "save [name] [config.yaml]",
		Short: "store a definition in the beam database",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  saveBeam,
	}
	saveCmd.Flags().StringVar(&preset, "preset", "", "store a preset (family/name)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored beams",
		RunE:  listBeams,
	}

	showCmd := &cobra.Command{
		Use:   "show [name]",
		Short: "print a stored beam and its last result",
		Args:  cobra.ExactArgs(1),
		RunE:  showBeam,
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [name]",
		Short: "remove a stored beam",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(dataFile)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the analysis api over http",
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.New().ListenAndServe(addr)
		},
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	tuiCmd := &cobra.Command{
		Use:   "tui [config.yaml]",
		Short: "interactive diagram browser",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && preset == "" {
				return tui.Run(nil)
			}
			cfg, err := loadDefinition(args)
			if err != nil {
				return err
			}
			return tui.Run(cfg)
		},
	}
	tuiCmd.Flags().StringVar(&preset, "preset", "", "open preset (family/name)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("beamsolve %s\n", version)
		},
	}

	rootCmd.AddCommand(analyzeCmd, diagramCmd, exportCmd, exportCSVCmd, exportJSONCmd,
		reportCmd, initCmd, presetsCmd, saveCmd, listCmd, showCmd, deleteCmd, serveCmd,
		tuiCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func lookupPreset(key string) (*config.Config, error) {
	family, name, ok := strings.Cut(key, "/")
	if !ok {
		return nil, fmt.Errorf("preset must be family/name, got %q", key)
	}
	cfg := config.GetPreset(family, name)
	if cfg == nil {
		return nil, fmt.Errorf("unknown preset: %s (families: %v)", key, presetFamilies())
	}
	return cfg, nil
}

func presetFamilies() []string {
	families := make([]string, 0, len(config.Presets))
	for f := range config.Presets {
		families = append(families, f)
	}
	sort.Strings(families)
	return families
}

// loadDefinition resolves the definition for a command: the preset flag wins,
// then a file argument, then the default beam.
func loadDefinition(args []string) (*config.Config, error) {
	if preset != "" {
		return lookupPreset(preset)
	}
	if len(args) > 0 {
		return config.Load(args[0])
	}
	return config.DefaultConfig(), nil
}

func solveDefinition(args []string) (*config.Config, *beam.Beam, error) {
	cfg, err := loadDefinition(args)
	if err != nil {
		return nil, nil, err
	}
	b, err := cfg.Build()
	if err != nil {
		return nil, nil, err
	}
	if err := b.Analyse(); err != nil {
		return nil, nil, err
	}
	return cfg, b, nil
}

func analyzeBeam(cmd *cobra.Command, args []string) error {
	cfg, b, err := solveDefinition(args)
	if err != nil {
		return err
	}

	cls, err := b.Classification()
	if err != nil {
		return err
	}
	name := cfg.Name
	if name == "" {
		name = "beam"
	}
	fmt.Printf("%s: %g m, %d supports, %d loads\n", name, b.Length(), len(b.Supports()), len(b.Loads()))
	if cls.Determinate() {
		fmt.Println("statically determinate")
	} else {
		fmt.Printf("statically indeterminate, degree %d\n", cls.Degree)
	}
	for _, s := range b.Supports() {
		fmt.Printf("  %s (%s)\n", s, s.Describe())
	}
	fmt.Println()

	reactions, err := b.Reactions()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tFX (N)\tFY (N)\tM (N.m)")
	for _, r := range reactions {
		fmt.Fprintf(w, "%g m\t%.4f\t%.4f\t%.4f\n", r.Coord, r.Fx, r.Fy, r.M)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Println()

	w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "QUANTITY\tMIN\tMAX\tUNIT")
	for _, q := range beam.Quantities() {
		min, max, err := b.Extremes(q)
		if err != nil {
			return err
		}
		unit := q.Unit()
		// Deflections read back in the unit the definition was written in.
		if q == beam.Deflection && cfg.Units.Length != "" {
			if min, err = units.FromSI(units.Deflection, cfg.Units.Length, min); err != nil {
				return err
			}
			if max, err = units.FromSI(units.Deflection, cfg.Units.Length, max); err != nil {
				return err
			}
			unit = cfg.Units.Length
		}
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%s\n", q, min, max, unit)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	positions := append(b.QueryPoints(), at...)
	if len(positions) > 0 {
		fmt.Println()
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "X (m)\tN (N)\tV (N)\tM (N.m)\tTHETA (rad)\tDEFL (m)")
		for _, x := range positions {
			var vals [5]float64
			for i, q := range beam.Quantities() {
				vs, err := b.Query(q, x)
				if err != nil {
					return err
				}
				vals[i] = vs[0]
			}
			fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%.4f\t%.8g\t%.8g\n",
				x, vals[0], vals[1], vals[2], vals[3], vals[4])
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}

	if saveAs != "" {
		st, err := store.Open(dataFile)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.SaveBeam(saveAs, cfg); err != nil {
			return err
		}
		sum, err := store.Summarize(b)
		if err != nil {
			return err
		}
		if err := st.SaveResult(saveAs, sum); err != nil {
			return err
		}
		fmt.Printf("\nsaved as %s\n", saveAs)
	}
	return nil
}

func drawDiagrams(cmd *cobra.Command, args []string) error {
	_, b, err := solveDefinition(args)
	if err != nil {
		return err
	}

	fmt.Println(diagram.Schematic(b.Schematic(), width))

	s, err := b.Sample(samples)
	if err != nil {
		return err
	}
	opts := diagram.Options{Width: width, Height: height}
	if quantity == "" {
		fmt.Println(diagram.PlotAll(s, opts))
		return nil
	}
	q, err := parseQuantity(quantity)
	if err != nil {
		return err
	}
	fmt.Println(diagram.Plot(s, q, opts))
	return nil
}

func parseQuantity(name string) (beam.Quantity, error) {
	switch strings.ToLower(name) {
	case "normal", "n":
		return beam.NormalForce, nil
	case "shear", "v":
		return beam.ShearForce, nil
	case "moment", "m":
		return beam.BendingMoment, nil
	case "slope", "theta":
		return beam.Slope, nil
	case "deflection", "defl":
		return beam.Deflection, nil
	}
	return 0, fmt.Errorf("unknown quantity: %s", name)
}

func exportImages(cmd *cobra.Command, args []string) error {
	_, b, err := solveDefinition(args)
	if err != nil {
		return err
	}
	s, err := b.Sample(samples)
	if err != nil {
		return err
	}
	files, err := diagram.ExportAll(s, outDir, base, format)
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Printf("wrote %s\n", f)
	}
	return nil
}

func writeReport(cmd *cobra.Command, args []string) error {
	if pdfFile == "" && xlsxFile == "" {
		return fmt.Errorf("nothing to write: pass --pdf and/or --xlsx")
	}
	cfg, b, err := solveDefinition(args)
	if err != nil {
		return err
	}
	meta := report.Meta{Title: title, Project: project, Author: author}
	if meta.Title == "" {
		meta.Title = cfg.Name
	}

	if pdfFile != "" {
		f, err := os.Create(pdfFile)
		if err != nil {
			return err
		}
		if err := report.PDF(f, b, meta); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", pdfFile)
	}
	if xlsxFile != "" {
		f, err := os.Create(xlsxFile)
		if err != nil {
			return err
		}
		if err := report.XLSX(f, b, meta, samples); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", xlsxFile)
	}
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println("preset families:")
		for _, f := range presetFamilies() {
			fmt.Printf("  %s\n", f)
		}
		return nil
	}
	family := args[0]
	names := config.ListPresets(family)
	if len(names) == 0 {
		return fmt.Errorf("no presets for family: %s", family)
	}
	sort.Strings(names)
	fmt.Printf("presets for %s:\n", family)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s/%s\t%s\n", family, name, config.Presets[family][name].Name)
	}
	return w.Flush()
}

func saveBeam(cmd *cobra.Command, args []string) error {
	name := args[0]
	var cfg *config.Config
	var err error
	switch {
	case preset != "":
		cfg, err = lookupPreset(preset)
	case len(args) == 2:
		cfg, err = config.Load(args[1])
	default:
		return fmt.Errorf("pass a config file or --preset")
	}
	if err != nil {
		return err
	}

	st, err := store.Open(dataFile)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.SaveBeam(name, cfg); err != nil {
		return err
	}
	fmt.Printf("saved %s\n", name)
	return nil
}

func listBeams(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dataFile)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no beams stored")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOLVED")
	for _, e := range entries {
		solved := "-"
		if e.Solved {
			solved = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\n", e.Name, solved)
	}
	return w.Flush()
}

func showBeam(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dataFile)
	if err != nil {
		return err
	}
	defer st.Close()

	cfg, err := st.LoadBeam(args[0])
	if err != nil {
		return err
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))

	sum, err := st.LoadResult(args[0])
	if err != nil {
		// Stored but never analysed.
		return nil
	}
	fmt.Printf("\nlast solved: %s (degree %d)\n", sum.SolvedAt.Format("2006-01-02 15:04:05"), sum.Degree)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "POSITION\tFX (N)\tFY (N)\tM (N.m)")
	for _, r := range sum.Reactions {
		fmt.Fprintf(w, "%g m\t%.4f\t%.4f\t%.4f\n", r.Coord, r.Fx, r.Fy, r.M)
	}
	return w.Flush()
}

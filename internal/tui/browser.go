// Package tui is an interactive terminal browser for solved beams: pick a
// preset or bring a definition, then walk the diagrams.
package tui

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aversten/beamsolve/internal/beam"
	"github.com/aversten/beamsolve/internal/config"
	"github.com/aversten/beamsolve/internal/diagram"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	red    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

type screen int

const (
	screenMenu screen = iota
	screenView
)

type presetEntry struct {
	family string
	name   string
	label  string
}

type model struct {
	screen  screen
	entries []presetEntry
	cursor  int

	cfg      *config.Config
	b        *beam.Beam
	quantity int
	showPlan bool
	errMsg   string

	width  int
	height int
}

// New builds the browser. A nil cfg opens the preset menu instead of going
// straight to the diagrams.
func New(cfg *config.Config) tea.Model {
	m := model{
		cfg:      cfg,
		entries:  presetEntries(),
		showPlan: true,
		width:    80,
		height:   24,
	}
	if cfg != nil {
		m.solve(cfg)
	} else {
		m.screen = screenMenu
	}
	return m
}

// Run blocks until the user quits.
func Run(cfg *config.Config) error {
	_, err := tea.NewProgram(New(cfg), tea.WithAltScreen()).Run()
	return err
}

func presetEntries() []presetEntry {
	var entries []presetEntry
	families := make([]string, 0, len(config.Presets))
	for family := range config.Presets {
		families = append(families, family)
	}
	sort.Strings(families)
	for _, family := range families {
		names := config.ListPresets(family)
		sort.Strings(names)
		for _, name := range names {
			entries = append(entries, presetEntry{
				family: family,
				name:   name,
				label:  config.Presets[family][name].Name,
			})
		}
	}
	return entries
}

func (m *model) solve(cfg *config.Config) {
	m.errMsg = ""
	b, err := cfg.Build()
	if err == nil {
		err = b.Analyse()
	}
	if err != nil {
		m.errMsg = err.Error()
		m.screen = screenMenu
		return
	}
	m.cfg = cfg
	m.b = b
	m.quantity = 2 // bending moment first
	m.screen = screenView
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == screenMenu {
		return m.menuKey(msg)
	}
	return m.viewKey(msg)
}

func (m model) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.entries)-1 {
			m.cursor++
		}
	case "enter", " ":
		e := m.entries[m.cursor]
		m.solve(config.GetPreset(e.family, e.name))
	}
	return m, nil
}

func (m model) viewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(beam.Quantities())
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "escape":
		m.screen = screenMenu
		return m, nil
	case "right", "l", "tab":
		m.quantity = (m.quantity + 1) % n
	case "left", "h", "shift+tab":
		m.quantity = (m.quantity + n - 1) % n
	case "1", "2", "3", "4", "5":
		m.quantity = int(msg.String()[0] - '1')
	case "s":
		m.showPlan = !m.showPlan
	}
	return m, nil
}

func (m model) View() string {
	if m.screen == screenMenu {
		return m.viewMenu()
	}
	return m.viewDiagrams()
}

func (m model) viewMenu() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("          " + cyan.Render("b e a m s o l v e") + "\n")
	b.WriteString(dimmer.Render("    ╺━━━━━━━━━━━━━━━━━━━━━━━━╸") + "\n")
	b.WriteString("\n")

	for i, e := range m.entries {
		key := fmt.Sprintf("%s/%s", e.family, e.name)
		if i == m.cursor {
			b.WriteString("      " + cyan.Render("▸ ") + white.Render(fmt.Sprintf("%-24s", key)) + dim.Render(e.label) + "\n")
		} else {
			b.WriteString("        " + dim.Render(fmt.Sprintf("%-24s", key)) + dimmer.Render(e.label) + "\n")
		}
	}

	if m.errMsg != "" {
		b.WriteString("\n      " + red.Render(m.errMsg) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(dim.Render("      ↑↓ select   enter solve   q quit") + "\n")

	return b.String()
}

func (m model) viewDiagrams() string {
	q := beam.Quantities()[m.quantity]

	plotWidth := m.width - 16
	if plotWidth < 40 {
		plotWidth = 40
	}
	plotHeight := m.height - 16
	if m.showPlan {
		plotHeight -= 6
	}
	if plotHeight < 6 {
		plotHeight = 6
	}

	var b strings.Builder
	name := "beam"
	if m.cfg != nil && m.cfg.Name != "" {
		name = m.cfg.Name
	}
	b.WriteString("\n   " + cyan.Render(name) + "\n\n")

	if m.showPlan {
		plan := diagram.Schematic(m.b.Schematic(), plotWidth)
		for _, line := range strings.Split(strings.TrimRight(plan, "\n"), "\n") {
			b.WriteString("   " + dim.Render(line) + "\n")
		}
		b.WriteString("\n")
	}

	var tabs []string
	for i, qq := range beam.Quantities() {
		label := fmt.Sprintf("%d %s", i+1, qq)
		if i == m.quantity {
			tabs = append(tabs, cyan.Render(label))
		} else {
			tabs = append(tabs, dimmer.Render(label))
		}
	}
	b.WriteString("   " + strings.Join(tabs, dim.Render("  │  ")) + "\n\n")

	samples, err := m.b.Sample(256)
	if err != nil {
		b.WriteString("   " + red.Render(err.Error()) + "\n")
		return b.String()
	}
	plot := diagram.Plot(samples, q, diagram.Options{Width: plotWidth, Height: plotHeight})
	for _, line := range strings.Split(strings.TrimRight(plot, "\n"), "\n") {
		b.WriteString("   " + line + "\n")
	}

	min, max, err := m.b.Extremes(q)
	if err == nil {
		b.WriteString(fmt.Sprintf("\n   %s %s  %s %s\n",
			dim.Render("min"), white.Render(fmt.Sprintf("%.6g %s", min, q.Unit())),
			dim.Render("max"), white.Render(fmt.Sprintf("%.6g %s", max, q.Unit()))))
	}

	b.WriteString("\n" + dim.Render("   ←→ quantity  1-5 jump  s schematic  esc menu  q quit") + "\n")
	return b.String()
}

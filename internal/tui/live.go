// Package tui is the interactive live viewer. It drives the simulation only
// through its public stepping and bookmark API and renders fully-stepped
// snapshots, never a lattice mid-update.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tdslab/tdsim/internal/physics"
	"github.com/tdslab/tdsim/internal/sim"
	"github.com/tdslab/tdsim/internal/viz"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	green   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow  = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")).
		Padding(0, 1)
)

type tickMsg time.Time

type model struct {
	s *sim.Simulation

	paused     bool
	dir        physics.Direction
	energyView bool
	frameEvery time.Duration

	report  physics.StepReport
	stepErr error

	bookmarks int
	width     int
	height    int
}

// Run starts the live viewer over an existing simulation.
func Run(s *sim.Simulation, frameRate int) error {
	if frameRate < 1 {
		frameRate = 12
	}
	m := model{
		s:          s,
		dir:        physics.Forward,
		frameEvery: time.Second / time.Duration(frameRate),
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.frameEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd { return m.tick() }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tickMsg:
		if !m.paused {
			m.report, m.stepErr = m.s.Step(m.dir)
		}
		return m, m.tick()
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case " ":
		m.paused = !m.paused
	case "r":
		m.dir = -m.dir
	case "e":
		m.energyView = !m.energyView
	case "s":
		l := m.s.Lattice()
		center := l.Index(l.Extent(0)/2, l.Extent(1)/2, l.Extent(2)/2)
		m.stepErr = m.s.SeedAnomaly(center, 0.5)
	case "b":
		m.bookmarks++
		m.s.Bookmark(fmt.Sprintf("live-%d", m.bookmarks))
	case "x":
		m.stepErr = m.s.Reset()
	}
	return m, nil
}

func (m model) View() string {
	snap := m.s.Snapshot()

	grid := viz.SpinGrid(snap.Lattice, 0)
	if m.energyView {
		grid = viz.EnergyGrid(snap.Lattice, 0)
	}

	status := green.Render("running")
	if m.paused {
		status = yellow.Render("paused")
	}
	dirLabel := "forward"
	if m.dir == physics.Backward {
		dirLabel = "backward"
	}

	panelData := m.s.Analytics().StatsPanelData()
	var info strings.Builder
	fmt.Fprintf(&info, "%s  step %s  %s\n",
		status, white.Render(fmt.Sprintf("%d", snap.Step)), dim.Render(dirLabel))
	fmt.Fprintf(&info, "E_sym %s  E_asym %s  T_info %s\n",
		cyan.Render(fmt.Sprintf("%.4f", snap.Energies.ESym)),
		cyan.Render(fmt.Sprintf("%.4f", snap.Energies.EAsym)),
		cyan.Render(fmt.Sprintf("%.4f", snap.Tension)))
	fmt.Fprintf(&info, "vacuum %d  broken %d  anomalous %s  coherence %.3f\n",
		snap.Stats.CountVacuum, snap.Stats.CountBroken,
		magenta.Render(fmt.Sprintf("%d", snap.Stats.CountAnomalous)),
		snap.Stats.PhaseCoherence)
	fmt.Fprintf(&info, "rho %.3f  drift max %.2e  A_kx rms %.4f\n",
		panelData.Rho, panelData.DriftMax, panelData.RMSAkx)
	if m.report.Status == physics.StatusCorrected {
		fmt.Fprintf(&info, "%s\n", yellow.Render("conservation corrected"))
	}
	if m.stepErr != nil {
		fmt.Fprintf(&info, "%s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(m.stepErr.Error()))
	}

	help := dim.Render("space pause  r reverse  e energy  s seed  b bookmark  x reset  q quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(strings.TrimRight(grid, "\n")),
		panel.Render(strings.TrimRight(info.String(), "\n")),
		viz.Legend(),
		help,
	)
}

// Package viz renders read-only lattice snapshots as terminal grids. It
// never mutates simulation state.
package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/tdslab/tdsim/internal/lattice"
)

var (
	styleVacuumUp   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	styleVacuumDown = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	styleBroken     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleAnomalous  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
)

// energyRamp maps EAsym/E0 onto density characters.
const energyRamp = " .:-=+*#%@"

// SpinGrid renders one z-layer of the spin field. Spin up is '+', spin down
// is '-'; color encodes the node classification.
func SpinGrid(l *lattice.Lattice, z int) string {
	var b strings.Builder
	ny := l.Extent(1)
	nx := l.Extent(0)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			n := l.Node(l.Index(x, y, z))
			ch := "+"
			if n.Spin < 0 {
				ch = "-"
			}
			switch n.State {
			case lattice.Anomalous:
				b.WriteString(styleAnomalous.Render(ch))
			case lattice.Broken:
				b.WriteString(styleBroken.Render(ch))
			default:
				if n.Spin > 0 {
					b.WriteString(styleVacuumUp.Render(ch))
				} else {
					b.WriteString(styleVacuumDown.Render(ch))
				}
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// EnergyGrid renders one z-layer of the asymmetric energy field as a
// density ramp.
func EnergyGrid(l *lattice.Lattice, z int) string {
	var b strings.Builder
	ny := l.Extent(1)
	nx := l.Extent(0)
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			n := l.Node(l.Index(x, y, z))
			frac := 0.0
			if n.E0 > 0 {
				frac = n.EAsym / n.E0
			}
			idx := int(frac * float64(len(energyRamp)-1))
			if idx < 0 {
				idx = 0
			}
			if idx >= len(energyRamp) {
				idx = len(energyRamp) - 1
			}
			b.WriteByte(energyRamp[idx])
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Legend explains the spin grid encoding.
func Legend() string {
	return fmt.Sprintf("%s vacuum  %s broken  %s anomalous",
		styleVacuumUp.Render("+/-"),
		styleBroken.Render("+/-"),
		styleAnomalous.Render("+/-"))
}

package viz

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tdslab/tdsim/internal/lattice"
)

func testLattice(t *testing.T) *lattice.Lattice {
	t.Helper()
	l, err := lattice.New(lattice.Options{Extents: []int{4, 3}, Boundary: lattice.Open, E0: 1})
	require.NoError(t, err)
	return l
}

func TestSpinGridShape(t *testing.T) {
	l := testLattice(t)
	l.Node(0).Spin = -1

	out := SpinGrid(l, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Contains(t, out, "-")
	require.Contains(t, out, "+")
}

func TestEnergyGridRamp(t *testing.T) {
	l := testLattice(t)
	n := l.Node(5)
	n.EAsym = n.E0
	n.ESym = 0

	out := EnergyGrid(l, 0)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "@", string(lines[1][1])) // node (1,1) saturated
	require.Equal(t, " ", string(lines[0][0])) // rest stays blank
}

func TestLegendMentionsStates(t *testing.T) {
	out := Legend()
	require.Contains(t, out, "anomalous")
}

package dynamics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tdslab/tdsim/internal/lattice"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLattice(t *testing.T, extents []int, bound lattice.Boundary, seed int64) *lattice.Lattice {
	t.Helper()
	l, err := lattice.New(lattice.Options{Extents: extents, Boundary: bound, E0: 1, Seed: seed})
	require.NoError(t, err)
	return l
}

// excite gives every node a random energy split so the dynamics have
// something to move around.
func excite(l *lattice.Lattice, seed int64) {
	rng := rand.New(rand.NewSource(seed))
	nodes := l.Nodes()
	for i := range nodes {
		a := rng.Float64() * nodes[i].E0
		nodes[i].EAsym = a
		nodes[i].ESym = nodes[i].E0 - a
	}
}

func defaultParams() Params {
	return Params{J: 1.0, SwapThreshold: 0.05, Workers: 1}
}

func TestPhasePairsAreDisjoint(t *testing.T) {
	for _, bound := range []lattice.Boundary{lattice.Open, lattice.Periodic} {
		l := testLattice(t, []int{6, 6, 4}, bound, 0)
		d := New(l, defaultParams())

		for pi, p := range ForwardOrder {
			seen := make(map[int32]bool)
			for _, pair := range d.pairs[pi] {
				require.False(t, seen[pair[0]], "%v (%s): node %d paired twice", bound, p, pair[0])
				require.False(t, seen[pair[1]], "%v (%s): node %d paired twice", bound, p, pair[1])
				require.NotEqual(t, pair[0], pair[1])
				seen[pair[0]] = true
				seen[pair[1]] = true
			}
		}
	}
}

func TestStepPreservesPerNodeEnergy(t *testing.T) {
	l := testLattice(t, []int{8, 8}, lattice.Periodic, 11)
	excite(l, 12)
	d := New(l, defaultParams())

	for i := 0; i < 50; i++ {
		require.NoError(t, d.Step(l))
	}
	for id, n := range l.Nodes() {
		require.InDelta(t, n.E0, n.ESym+n.EAsym, 1e-12, "node %d", id)
		require.GreaterOrEqual(t, n.EAsym, 0.0, "node %d", id)
		require.GreaterOrEqual(t, n.ESym, 0.0, "node %d", id)
	}
}

// Exchanges actually fire on an excited random-spin lattice; a step that
// quietly does nothing would make every reversal test below vacuous.
func TestStepMovesEnergy(t *testing.T) {
	l := testLattice(t, []int{12, 12}, lattice.Periodic, 13)
	excite(l, 14)
	origin := l.Clone()

	d := New(l, defaultParams())
	require.NoError(t, d.Step(l))

	moved := 0
	for id := range l.Nodes() {
		if l.Node(id).EAsym != origin.Node(id).EAsym {
			moved++
		}
	}
	require.Greater(t, moved, 0)
}

func TestSingleStepReversesExactly(t *testing.T) {
	for _, tc := range []struct {
		name    string
		extents []int
		bound   lattice.Boundary
	}{
		{"1d open", []int{17}, lattice.Open},
		{"1d periodic", []int{16}, lattice.Periodic},
		{"2d periodic", []int{8, 8}, lattice.Periodic},
		{"3d open", []int{4, 5, 6}, lattice.Open},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l := testLattice(t, tc.extents, tc.bound, 21)
			excite(l, 22)
			origin := l.Clone()

			d := New(l, defaultParams())
			require.NoError(t, d.Step(l))
			require.NoError(t, d.ReverseStep(l))

			for id := range l.Nodes() {
				a, b := origin.Node(id), l.Node(id)
				require.Equal(t, a.Spin, b.Spin, "node %d spin", id)
				require.Equal(t, a.ESym, b.ESym, "node %d ESym", id)
				require.Equal(t, a.EAsym, b.EAsym, "node %d EAsym", id)
			}
		})
	}
}

// The pair transformation is built from involutions, so reversal is
// bit-exact at any depth, not merely within a tolerance.
func TestManyStepReversalIsBitExact(t *testing.T) {
	l := testLattice(t, []int{12, 12}, lattice.Periodic, 31)
	excite(l, 32)
	origin := l.Clone()

	d := New(l, defaultParams())
	const steps = 100
	for i := 0; i < steps; i++ {
		require.NoError(t, d.Step(l))
	}
	for i := 0; i < steps; i++ {
		require.NoError(t, d.ReverseStep(l))
	}

	for id := range l.Nodes() {
		a, b := origin.Node(id), l.Node(id)
		require.Equal(t, a.Spin, b.Spin, "node %d spin", id)
		require.Equal(t, a.ESym, b.ESym, "node %d ESym", id)
		require.Equal(t, a.EAsym, b.EAsym, "node %d EAsym", id)
	}
}

func TestInfiniteThresholdIsIdentity(t *testing.T) {
	l := testLattice(t, []int{8, 8}, lattice.Periodic, 41)
	excite(l, 42)
	origin := l.Clone()

	d := New(l, Params{J: 1.0, SwapThreshold: math.Inf(1), Workers: 1})
	require.NoError(t, d.Step(l))

	for id := range l.Nodes() {
		require.Equal(t, origin.Node(id).EAsym, l.Node(id).EAsym, "node %d", id)
		require.Equal(t, origin.Node(id).Spin, l.Node(id).Spin, "node %d", id)
	}
}

// Aligned spins never satisfy either guard, whatever the energies.
func TestAlignedSpinsAreInert(t *testing.T) {
	l := testLattice(t, []int{8, 8}, lattice.Periodic, 0)
	excite(l, 43)
	origin := l.Clone()

	d := New(l, Params{J: 2.0, SwapThreshold: 0, Workers: 1})
	for i := 0; i < 10; i++ {
		require.NoError(t, d.Step(l))
	}
	for id := range l.Nodes() {
		require.Equal(t, origin.Node(id).EAsym, l.Node(id).EAsym, "node %d", id)
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	serial := testLattice(t, []int{32, 32}, lattice.Periodic, 51)
	excite(serial, 52)
	parallel := serial.Clone()

	ds := New(serial, defaultParams())

	pp := defaultParams()
	pp.Workers = 4
	dp := New(parallel, pp)

	for i := 0; i < 10; i++ {
		require.NoError(t, ds.Step(serial))
		require.NoError(t, dp.Step(parallel))
	}

	for id := range serial.Nodes() {
		require.Equal(t, serial.Node(id).Spin, parallel.Node(id).Spin, "node %d", id)
		require.Equal(t, serial.Node(id).EAsym, parallel.Node(id).EAsym, "node %d", id)
	}
}

func TestStepRejectsForeignLattice(t *testing.T) {
	l := testLattice(t, []int{8, 8}, lattice.Periodic, 0)
	d := New(l, defaultParams())

	other := testLattice(t, []int{4}, lattice.Open, 0)
	require.Error(t, d.Step(other))
	require.Error(t, d.ReverseStep(other))
}

func TestVacuumStaysStill(t *testing.T) {
	l := testLattice(t, []int{8, 8}, lattice.Open, 0)
	d := New(l, defaultParams())

	for i := 0; i < 100; i++ {
		require.NoError(t, d.Step(l))
	}
	e := l.TotalEnergy()
	require.Zero(t, e.EAsym)
	require.Equal(t, e.E0, e.ESym)
}

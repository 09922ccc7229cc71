package validate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/lattice"
)

func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Extents = []int{8, 8}
	cfg.Seed = 17
	return cfg
}

func activeLattice(t *testing.T, cfg *config.Config) *lattice.Lattice {
	t.Helper()
	bound, err := lattice.ParseBoundary(cfg.Boundary)
	require.NoError(t, err)
	l, err := lattice.New(lattice.Options{
		Extents: cfg.Extents, Boundary: bound, E0: cfg.E0, Seed: cfg.Seed,
	})
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(23))
	nodes := l.Nodes()
	for i := range nodes {
		a := rng.Float64() * nodes[i].E0
		nodes[i].EAsym = a
		nodes[i].ESym = nodes[i].E0 - a
	}
	return l
}

func TestCompareIdenticalScoresOne(t *testing.T) {
	cfg := testConfig()
	l := activeLattice(t, cfg)
	v := New(cfg, DefaultWeights, nil)

	rep := v.Compare(l, l.Clone())
	require.Equal(t, 1.0, rep.Score)
	require.Zero(t, rep.EnergyDrift)
	require.Zero(t, rep.StateDeviation)
}

func TestCompareScoresDisagreement(t *testing.T) {
	cfg := testConfig()
	a := activeLattice(t, cfg)
	b := a.Clone()

	// Flip one spin of 64: spin agreement drops by 1/64, states and
	// energies untouched.
	b.Node(0).Spin = -b.Node(0).Spin
	v := New(cfg, Weights{Spin: 1}, nil)
	rep := v.Compare(a, b)
	require.InDelta(t, 63.0/64, rep.Score, 1e-12)

	// Energy-only weights see the moved energy, not the spin.
	b = a.Clone()
	n := b.Node(0)
	n.EAsym, n.ESym = n.ESym, n.EAsym
	ve := New(cfg, Weights{Energy: 1}, nil)
	moved := 2 * (a.Node(0).ESym - a.Node(0).EAsym)
	if moved < 0 {
		moved = -moved
	}
	rep = ve.Compare(a, b)
	require.InDelta(t, 1-moved/64, rep.Score, 1e-12)
}

func TestWeightsAreNormalized(t *testing.T) {
	cfg := testConfig()
	l := activeLattice(t, cfg)

	// Unnormalized weights must not push the score past 1.
	v := New(cfg, Weights{Spin: 4, State: 3, Energy: 3}, nil)
	rep := v.Compare(l, l.Clone())
	require.Equal(t, 1.0, rep.Score)

	// Degenerate weights fall back to the defaults.
	v = New(cfg, Weights{}, nil)
	rep = v.Compare(l, l.Clone())
	require.Equal(t, 1.0, rep.Score)
}

func TestRunRoundTripScoresPerfectly(t *testing.T) {
	cfg := testConfig()
	l := activeLattice(t, cfg)
	before := l.Clone()
	v := New(cfg, Weights{Spin: 0.5, Energy: 0.5}, nil)

	rep, err := v.Run(l, 50)
	require.NoError(t, err)
	require.GreaterOrEqual(t, rep.Score, 0.99)
	require.Less(t, rep.EnergyDrift, cfg.Tolerance)

	// The caller's lattice was never touched.
	for id := range l.Nodes() {
		require.Equal(t, before.Node(id).EAsym, l.Node(id).EAsym, "node %d", id)
		require.Equal(t, before.Node(id).Spin, l.Node(id).Spin, "node %d", id)
	}
}

func TestValidateConservationStaysWithinTolerance(t *testing.T) {
	cfg := testConfig()
	l := activeLattice(t, cfg)
	v := New(cfg, DefaultWeights, nil)

	rep, err := v.ValidateConservation(l, 100)
	require.NoError(t, err)
	require.Equal(t, 100, rep.Steps)
	require.Less(t, rep.MaxDeviation, cfg.Tolerance)
	require.LessOrEqual(t, rep.MeanDeviation, rep.MaxDeviation)
	require.Equal(t, StatusGood, v.ConservationStatus(rep))
}

func TestConservationStatusThresholds(t *testing.T) {
	cfg := testConfig()
	v := New(cfg, DefaultWeights, nil)
	tol := cfg.Tolerance

	require.Equal(t, StatusGood, v.ConservationStatus(ConservationReport{MaxDeviation: tol / 2}))
	require.Equal(t, StatusWarning, v.ConservationStatus(ConservationReport{MaxDeviation: 2 * tol}))
	require.Equal(t, StatusWarning, v.ConservationStatus(ConservationReport{MeanDeviation: tol}))
	require.Equal(t, StatusError, v.ConservationStatus(ConservationReport{MaxDeviation: 20 * tol}))
}

func TestStatusStrings(t *testing.T) {
	require.Equal(t, "good", StatusGood.String())
	require.Equal(t, "warning", StatusWarning.String())
	require.Equal(t, "error", StatusError.String())
}

package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tdslab/tdsim/internal/lattice"
)

func restLattice(t *testing.T, extents []int, e0 float64) *lattice.Lattice {
	t.Helper()
	l, err := lattice.New(lattice.Options{Extents: extents, Boundary: lattice.Open, E0: e0})
	require.NoError(t, err)
	return l
}

func TestEnforceNoOpWithinTolerance(t *testing.T) {
	l := restLattice(t, []int{4, 4}, 1.0/16) // total E0 = 1, absolute tolerance
	c := NewConservationEnforcer(1e-6, 100, 32, nil)

	require.Empty(t, c.Enforce(l, 1))
	require.Empty(t, c.Records())
	require.InDelta(t, 0, c.Deviation(l), 1e-12)
}

func TestEnforceCorrectsDrift(t *testing.T) {
	l := restLattice(t, []int{4, 4}, 1.0/16)
	c := NewConservationEnforcer(1e-6, 1e6, 32, nil)

	// Inject drift without touching E0: the conserved reference stays put.
	l.Node(3).ESym += 1e-4

	recs := c.Enforce(l, 7)
	require.Len(t, recs, 1)
	require.Equal(t, int64(7), recs[0].Step)
	require.InDelta(t, 1e-4, recs[0].Delta, 1e-9)
	require.Equal(t, 0, recs[0].FirstNode)
	require.Equal(t, 15, recs[0].LastNode)
	require.False(t, recs[0].Timestamp.IsZero())

	require.InDelta(t, 0, c.Deviation(l), 1e-12)
	require.Len(t, c.Records(), 1)
}

func TestToleranceIsRelativeForLargeSystems(t *testing.T) {
	l := restLattice(t, []int{10, 10}, 1.0) // total E0 = 100
	c := NewConservationEnforcer(1e-6, 100, 32, nil)

	// Below the relative tolerance of 1e-4: left alone.
	l.Node(0).ESym += 5e-5
	require.Empty(t, c.Enforce(l, 1))

	// Above it: corrected.
	l.Node(0).ESym += 5e-4
	recs := c.Enforce(l, 2)
	require.Len(t, recs, 1)
	require.InDelta(t, 0, c.Deviation(l), 1e-10)
}

func TestHardCeilingScalesWithTolerance(t *testing.T) {
	c := NewConservationEnforcer(1e-6, 100, 32, nil)
	require.InDelta(t, 1e-4, c.HardCeiling(0.5), 1e-18)   // absolute regime
	require.InDelta(t, 1e-2, c.HardCeiling(100), 1e-15)   // relative regime
	c.SetTolerance(1e-3)
	require.InDelta(t, 0.1, c.HardCeiling(0.5), 1e-15)
	require.Equal(t, 1e-3, c.Tolerance())
}

func TestVerifyEnergyRateRelationship(t *testing.T) {
	l := restLattice(t, []int{4, 4}, 1.0/16)
	c := NewConservationEnforcer(1e-6, 1e6, 32, nil)

	// Pure ESym<->EAsym conversion: rates cancel exactly.
	for i := 0; i < 5; i++ {
		n := l.Node(i)
		n.ESym -= 0.01
		n.EAsym += 0.01
		c.Enforce(l, int64(i))
	}
	ok, maxResidual := c.VerifyEnergyRateRelationship(4)
	require.True(t, ok)
	require.Less(t, maxResidual, 1e-12)

	// One-sided growth breaks the identity.
	l.Node(0).EAsym += 1e-3
	c.Enforce(l, 5)
	ok, maxResidual = c.VerifyEnergyRateRelationship(5)
	require.False(t, ok)
	require.InDelta(t, 1e-3, maxResidual, 1e-9)
}

func TestVerifyWithoutHistoryIsTrue(t *testing.T) {
	c := NewConservationEnforcer(1e-6, 100, 32, nil)
	ok, residual := c.VerifyEnergyRateRelationship(10)
	require.True(t, ok)
	require.Zero(t, residual)
	require.False(t, math.IsNaN(residual))
}

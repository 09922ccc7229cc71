package dynamics

import (
	"fmt"
	"math"

	"github.com/tdslab/tdsim/internal/lattice"
)

// Params tunes the pair transformation.
type Params struct {
	// J is the local coupling; it scales both exchange conditions and the
	// informational-tension of the lattice.
	J float64

	// SwapThreshold gates the pair exchanges: energy moves across an
	// anti-aligned pair when J*|u-v| exceeds it, spins swap when J*(u+v)
	// does.
	SwapThreshold float64

	// Workers > 1 runs each phase's blocks on that many goroutines.
	Workers int
}

// minPairsPerWorker keeps tiny lattices on a single goroutine.
const minPairsPerWorker = 256

// SwapDynamics advances a lattice via six invertible block phases. The pair
// partition per phase depends only on geometry, so it is computed once at
// construction.
//
// The pair rule is built from two conditional exchanges whose guard
// conditions read only quantities invariant under both exchanges (the spin
// product, the pair energy sum, and the pair energy difference). Each
// exchange is therefore an involution and the two commute, which makes every
// phase bit-exactly self-inverse: reversal needs no floating-point inverse
// arithmetic at all, only the reversed phase order.
type SwapDynamics struct {
	params Params

	numNodes int
	pairs    [6][][2]int32
}

// New precomputes the phase partitions for l's geometry.
func New(l *lattice.Lattice, params Params) *SwapDynamics {
	d := &SwapDynamics{
		params:   params,
		numNodes: l.NumNodes(),
	}
	for i, p := range ForwardOrder {
		d.pairs[i] = buildPairs(l, p)
	}
	return d
}

// SetCoupling adjusts J between steps.
func (d *SwapDynamics) SetCoupling(j float64) {
	d.params.J = j
}

// SetSwapThreshold adjusts the exchange threshold.
func (d *SwapDynamics) SetSwapThreshold(t float64) {
	d.params.SwapThreshold = t
}

// Params returns the current parameter set.
func (d *SwapDynamics) Params() Params { return d.params }

// buildPairs partitions the lattice into disjoint (lower, upper) id pairs
// along the phase axis at the phase parity. Under open boundaries a node
// without an in-range partner sits out the phase; under periodic boundaries
// the wrap pair is formed only for even extents, where it is disjoint from
// the interior pairs.
func buildPairs(l *lattice.Lattice, p Phase) [][2]int32 {
	axis := p.Axis()
	ext := l.Extent(axis)
	if ext < 2 {
		return nil
	}
	var pairs [][2]int32
	for id := 0; id < l.NumNodes(); id++ {
		x, y, z := l.Coord(id)
		c := [3]int{x, y, z}
		if c[axis]%2 != p.Parity() {
			continue
		}
		nc := c
		nc[axis]++
		if nc[axis] >= ext {
			if l.Boundary() != lattice.Periodic || ext%2 != 0 {
				continue
			}
			nc[axis] = 0
		}
		pairs = append(pairs, [2]int32{int32(id), int32(l.Index(nc[0], nc[1], nc[2]))})
	}
	return pairs
}

// Step applies the six phases in forward order, then advances node phases.
func (d *SwapDynamics) Step(l *lattice.Lattice) error {
	if err := d.check(l); err != nil {
		return err
	}
	for i := range ForwardOrder {
		d.runPhase(l, d.pairs[i])
	}
	advancePhases(l, +1)
	return nil
}

// ReverseStep undoes one forward step: the phase order is reversed and each
// phase, being an involution, inverts itself.
func (d *SwapDynamics) ReverseStep(l *lattice.Lattice) error {
	if err := d.check(l); err != nil {
		return err
	}
	advancePhases(l, -1)
	for i := len(ForwardOrder) - 1; i >= 0; i-- {
		d.runPhase(l, d.pairs[i])
	}
	return nil
}

func (d *SwapDynamics) check(l *lattice.Lattice) error {
	if l.NumNodes() != d.numNodes {
		return fmt.Errorf("dynamics: lattice has %d nodes, partitions built for %d",
			l.NumNodes(), d.numNodes)
	}
	return nil
}

func (d *SwapDynamics) runPhase(l *lattice.Lattice, pairs [][2]int32) {
	nodes := l.Nodes()
	parallelFor(len(pairs), d.params.Workers, minPairsPerWorker, func(start, end int) {
		for i := start; i < end; i++ {
			d.applyPair(&nodes[pairs[i][0]], &nodes[pairs[i][1]])
		}
	})
}

// applyPair is the block bijection. Both guards read only exchange-invariant
// quantities, so applying the same function again restores the pair exactly.
//
// Energy moves down the pair gradient when the spins are anti-aligned and
// the coupled gradient J*|u-v| clears the threshold; per-node conservation
// is restated from E0 after the exchange, so ESym+EAsym never drifts beyond
// one rounding of E0-EAsym. Spins swap when the coupled pair energy J*(u+v)
// clears the same threshold, transporting spin pattern through energetic
// regions.
func (d *SwapDynamics) applyPair(a, b *lattice.Node) {
	if a.Spin == b.Spin {
		return
	}
	u, v := a.EAsym, b.EAsym

	if d.params.J*math.Abs(u-v) > d.params.SwapThreshold {
		a.EAsym, b.EAsym = v, u
		a.ESym = a.E0 - a.EAsym
		b.ESym = b.E0 - b.EAsym
	}
	if d.params.J*(u+v) > d.params.SwapThreshold {
		a.Spin, b.Spin = b.Spin, a.Spin
	}
}

// advancePhases rotates each node's visualization phase by its oscillation
// frequency. Not part of the conservation contract; reversal is exact only
// while Omega is unchanged between the forward and backward step.
func advancePhases(l *lattice.Lattice, dir float64) {
	nodes := l.Nodes()
	for i := range nodes {
		if nodes[i].Omega == 0 {
			continue
		}
		nodes[i].Phase += dir * nodes[i].Omega
		if nodes[i].Phase > 2*math.Pi || nodes[i].Phase < -2*math.Pi {
			nodes[i].Phase = math.Mod(nodes[i].Phase, 2*math.Pi)
		}
	}
}

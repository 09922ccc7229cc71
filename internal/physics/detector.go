package physics

import (
	"math"

	"github.com/tdslab/tdsim/internal/lattice"
)

// DetectorParams tunes anomaly classification.
type DetectorParams struct {
	// HistoryDepth is the per-node rolling window length H.
	HistoryDepth int

	// PersistenceThreshold is the fraction of non-Vacuum observations in the
	// window above which a node is classified Anomalous.
	PersistenceThreshold float64

	// VacuumEps is the EAsym level below which a node counts as at rest.
	VacuumEps float64

	// HBar converts frequency to effective mass (M = HBar*Omega) and is the
	// denominator of the short-history omega fallback.
	HBar float64
}

// AnomalyDetector runs the Vacuum/Broken/Anomalous state machine per node.
//
// History is an arena of preallocated per-node ring buffers: one flat slice
// of H observations per node for classifications and one for EAsym samples,
// all advanced by a single shared cursor since every node is observed every
// step. Persistence counts are maintained incrementally so a step costs O(1)
// per node.
type AnomalyDetector struct {
	params   DetectorParams
	numNodes int

	states  []lattice.NodeState // numNodes * H ring
	easym   []float64           // numNodes * H ring
	nonVac  []int               // per-node count of non-Vacuum entries in window
	head    int                 // shared ring cursor
	fill    int                 // observations in window, <= H

	scratch []float64
}

// NewAnomalyDetector allocates history arenas for numNodes sites.
func NewAnomalyDetector(numNodes int, params DetectorParams) *AnomalyDetector {
	h := params.HistoryDepth
	if h < 1 {
		h = 1
	}
	params.HistoryDepth = h
	return &AnomalyDetector{
		params:   params,
		numNodes: numNodes,
		states:   make([]lattice.NodeState, numNodes*h),
		easym:    make([]float64, numNodes*h),
		nonVac:   make([]int, numNodes),
		scratch:  make([]float64, h),
	}
}

// Params returns the current detector parameters.
func (d *AnomalyDetector) Params() DetectorParams { return d.params }

// SetHistoryDepth reallocates the history arenas for a new window length.
// All accumulated history is discarded.
func (d *AnomalyDetector) SetHistoryDepth(h int) {
	if h < 1 {
		h = 1
	}
	d.params.HistoryDepth = h
	d.states = make([]lattice.NodeState, d.numNodes*h)
	d.easym = make([]float64, d.numNodes*h)
	d.scratch = make([]float64, h)
	for i := range d.nonVac {
		d.nonVac[i] = 0
	}
	d.head = 0
	d.fill = 0
}

// SetPersistenceThreshold adjusts the Anomalous classification threshold
// without touching history.
func (d *AnomalyDetector) SetPersistenceThreshold(t float64) {
	d.params.PersistenceThreshold = t
}

// SetVacuumEps adjusts the rest-state energy level without touching history.
func (d *AnomalyDetector) SetVacuumEps(eps float64) {
	d.params.VacuumEps = eps
}

// SetHBar adjusts the frequency-to-mass constant.
func (d *AnomalyDetector) SetHBar(hbar float64) {
	d.params.HBar = hbar
}

// Reset discards all history and persistence counts.
func (d *AnomalyDetector) Reset() {
	for i := range d.states {
		d.states[i] = lattice.Vacuum
		d.easym[i] = 0
	}
	for i := range d.nonVac {
		d.nonVac[i] = 0
	}
	d.head = 0
	d.fill = 0
}

// instant is the memoryless classification of a node by its current EAsym.
func (d *AnomalyDetector) instant(n *lattice.Node) lattice.NodeState {
	if n.EAsym < d.params.VacuumEps {
		return lattice.Vacuum
	}
	return lattice.Broken
}

// Observe records the lattice's current per-node states into the history
// window and updates every node's classification. It returns the ids of
// nodes that transitioned into Anomalous during this call.
func (d *AnomalyDetector) Observe(l *lattice.Lattice) []int {
	h := d.params.HistoryDepth
	nodes := l.Nodes()
	var newAnomalies []int

	evict := d.fill == h
	for id := range nodes {
		slot := id*h + d.head
		if evict && d.states[slot] != lattice.Vacuum {
			d.nonVac[id]--
		}

		obs := d.instant(&nodes[id])
		d.states[slot] = obs
		d.easym[slot] = nodes[id].EAsym
		if obs != lattice.Vacuum {
			d.nonVac[id]++
		}
	}
	if !evict {
		d.fill++
	}
	d.head = (d.head + 1) % h

	for id := range nodes {
		n := &nodes[id]
		// The denominator is the full window length, not the fill: a node is
		// Anomalous only once it has sustained excitation long enough, never
		// on its first few observations.
		ratio := float64(d.nonVac[id]) / float64(h)
		was := n.State

		if ratio > d.params.PersistenceThreshold && d.instant(n) != lattice.Vacuum {
			n.State = lattice.Anomalous
			n.Omega = d.estimateOmega(id, n.EAsym)
			if was != lattice.Anomalous {
				newAnomalies = append(newAnomalies, id)
			}
			continue
		}

		// Reversion: Anomalous falls back to Broken unless the node is also
		// at rest, in which case it returns to Vacuum.
		n.State = d.instant(n)
		n.Omega = 0
	}
	return newAnomalies
}

// PersistenceRatio reports one node's non-Vacuum fraction of the window.
func (d *AnomalyDetector) PersistenceRatio(id int) float64 {
	return float64(d.nonVac[id]) / float64(d.params.HistoryDepth)
}

// estimateOmega derives the node's oscillation frequency from the period of
// its EAsym history: mean-removed zero crossings mark half-periods. With too
// little structure in the window it falls back to the direct EAsym/hbar
// relation.
func (d *AnomalyDetector) estimateOmega(id int, currentEAsym float64) float64 {
	h := d.params.HistoryDepth
	series := d.scratch[:0]

	// unwind the ring into chronological order
	start := d.head // oldest entry when full; 0 offset otherwise
	if d.fill < h {
		start = 0
	}
	for i := 0; i < d.fill; i++ {
		series = append(series, d.easym[id*h+(start+i)%h])
	}

	if len(series) >= 4 {
		mean := 0.0
		for _, v := range series {
			mean += v
		}
		mean /= float64(len(series))

		crossings := 0
		first, last := -1, -1
		for i := 1; i < len(series); i++ {
			a, b := series[i-1]-mean, series[i]-mean
			if (a < 0 && b >= 0) || (a >= 0 && b < 0) {
				crossings++
				if first < 0 {
					first = i
				}
				last = i
			}
		}
		if crossings >= 2 && last > first {
			halfPeriod := float64(last-first) / float64(crossings-1)
			return math.Pi / halfPeriod // omega = 2*pi / (2*halfPeriod)
		}
	}
	return currentEAsym / d.params.HBar
}

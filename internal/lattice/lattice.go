package lattice

import (
	"fmt"
	"math"
	"math/rand"
)

// Boundary selects how neighbor lookups treat the lattice edge.
type Boundary uint8

const (
	Open Boundary = iota
	Periodic
)

func (b Boundary) String() string {
	if b == Periodic {
		return "periodic"
	}
	return "open"
}

// ParseBoundary maps a config string to a Boundary.
func ParseBoundary(s string) (Boundary, error) {
	switch s {
	case "open", "":
		return Open, nil
	case "periodic":
		return Periodic, nil
	default:
		return Open, fmt.Errorf("lattice: unknown boundary %q", s)
	}
}

// Lattice is a fixed-size arena of nodes with axis-aligned connectivity
// (2 neighbors per axis: 2/4/6-connectivity for 1D/2D/3D). The node count
// and topology never change after construction; only node contents mutate.
type Lattice struct {
	extents [3]int
	ndim    int
	bound   Boundary

	nodes []Node

	// neighbors is a flat table: maxDeg slots per node, -1 for absent
	// neighbors under open boundaries.
	neighbors []int32
	maxDeg    int
}

// Options configures lattice construction.
type Options struct {
	Extents  []int // 1 to 3 positive extents
	Boundary Boundary
	E0       float64 // per-node conserved constant, > 0
	Seed     int64   // spin init seed; 0 means all spins +1
}

// New builds a lattice with every node in the Vacuum rest state
// (EAsym = 0, ESym = E0).
func New(opts Options) (*Lattice, error) {
	if len(opts.Extents) < 1 || len(opts.Extents) > 3 {
		return nil, fmt.Errorf("lattice: need 1-3 extents, got %d", len(opts.Extents))
	}
	if opts.E0 <= 0 {
		return nil, fmt.Errorf("lattice: E0 must be positive, got %g", opts.E0)
	}
	l := &Lattice{
		extents: [3]int{1, 1, 1},
		ndim:    len(opts.Extents),
		bound:   opts.Boundary,
	}
	n := 1
	for i, e := range opts.Extents {
		if e < 1 {
			return nil, fmt.Errorf("lattice: extent[%d] must be >= 1, got %d", i, e)
		}
		l.extents[i] = e
		n *= e
	}
	l.maxDeg = 2 * l.ndim
	l.nodes = make([]Node, n)

	var rng *rand.Rand
	if opts.Seed != 0 {
		rng = rand.New(rand.NewSource(opts.Seed))
	}
	for i := range l.nodes {
		spin := int8(1)
		if rng != nil && rng.Intn(2) == 0 {
			spin = -1
		}
		l.nodes[i] = Node{
			Spin:  spin,
			State: Vacuum,
			ESym:  opts.E0,
			E0:    opts.E0,
		}
	}
	l.buildNeighbors()
	return l, nil
}

func (l *Lattice) buildNeighbors() {
	n := len(l.nodes)
	l.neighbors = make([]int32, n*l.maxDeg)
	for id := 0; id < n; id++ {
		x, y, z := l.Coord(id)
		c := [3]int{x, y, z}
		slot := 0
		for axis := 0; axis < l.ndim; axis++ {
			for _, d := range [2]int{-1, +1} {
				nc := c
				nc[axis] += d
				nid := int32(-1)
				if nc[axis] >= 0 && nc[axis] < l.extents[axis] {
					nid = int32(l.Index(nc[0], nc[1], nc[2]))
				} else if l.bound == Periodic {
					nc[axis] = (nc[axis] + l.extents[axis]) % l.extents[axis]
					nid = int32(l.Index(nc[0], nc[1], nc[2]))
				}
				l.neighbors[id*l.maxDeg+slot] = nid
				slot++
			}
		}
		for ; slot < l.maxDeg; slot++ {
			l.neighbors[id*l.maxDeg+slot] = -1
		}
	}
}

// NumNodes returns the fixed site count.
func (l *Lattice) NumNodes() int { return len(l.nodes) }

// Dims returns the dimensionality (1-3).
func (l *Lattice) Dims() int { return l.ndim }

// Extent returns the size along one axis (1 for unused axes).
func (l *Lattice) Extent(axis int) int { return l.extents[axis] }

// Boundary returns the boundary policy.
func (l *Lattice) Boundary() Boundary { return l.bound }

// Index converts coordinates to a node id. Coordinates must be in range.
func (l *Lattice) Index(x, y, z int) int {
	return x + l.extents[0]*(y+l.extents[1]*z)
}

// Coord converts a node id back to coordinates.
func (l *Lattice) Coord(id int) (x, y, z int) {
	x = id % l.extents[0]
	id /= l.extents[0]
	y = id % l.extents[1]
	z = id / l.extents[1]
	return
}

// Node returns a mutable pointer into the arena.
func (l *Lattice) Node(id int) *Node { return &l.nodes[id] }

// Nodes exposes the backing arena for tight loops. Callers must not resize it.
func (l *Lattice) Nodes() []Node { return l.nodes }

// Neighbors appends the ids of id's neighbors to dst and returns it.
// Under open boundaries out-of-range neighbors are omitted, so the result
// may be shorter than the connectivity degree. On a periodic axis of
// extent 2 the -1 and +1 slots resolve to the same node, so that id
// appears twice; edge-walking callers must count such edges once.
func (l *Lattice) Neighbors(id int, dst []int) []int {
	base := id * l.maxDeg
	for s := 0; s < l.maxDeg; s++ {
		if nid := l.neighbors[base+s]; nid >= 0 {
			dst = append(dst, int(nid))
		}
	}
	return dst
}

// Energies holds the lattice-level energy totals.
type Energies struct {
	ESym  float64
	EAsym float64
	E0    float64
}

// Total returns ESym+EAsym.
func (e Energies) Total() float64 { return e.ESym + e.EAsym }

// TotalEnergy sums the energy components over all nodes. Exact summation,
// no caching.
func (l *Lattice) TotalEnergy() Energies {
	var e Energies
	for i := range l.nodes {
		e.ESym += l.nodes[i].ESym
		e.EAsym += l.nodes[i].EAsym
		e.E0 += l.nodes[i].E0
	}
	return e
}

// InformationalTension computes J * sum over neighbor pairs (counted once)
// of (1 - s_i*s_j). Aligned pairs contribute nothing; each anti-aligned pair
// contributes 2J.
func (l *Lattice) InformationalTension(j float64) float64 {
	sum := 0.0
	// Counting only the +axis neighbor of each node visits every edge once;
	// a periodic wrap edge appears exactly once as the boundary node's +axis
	// neighbor.
	for id := range l.nodes {
		x, y, z := l.Coord(id)
		c := [3]int{x, y, z}
		for axis := 0; axis < l.ndim; axis++ {
			nc := c
			nc[axis]++
			if nc[axis] >= l.extents[axis] {
				if l.bound != Periodic || l.extents[axis] < 3 {
					// extent 2 periodic: the wrap edge duplicates the interior edge
					continue
				}
				nc[axis] = 0
			}
			nid := l.Index(nc[0], nc[1], nc[2])
			sum += 1 - float64(l.nodes[id].Spin)*float64(l.nodes[nid].Spin)
		}
	}
	return j * sum
}

// Stats aggregates per-node classifications and phase coherence.
type Stats struct {
	CountVacuum    int
	CountBroken    int
	CountAnomalous int

	// PhaseCoherence is |mean of e^(i*phase)| over all nodes, in [0,1].
	PhaseCoherence float64
}

// Statistics scans the lattice once and returns aggregate counts.
func (l *Lattice) Statistics() Stats {
	var st Stats
	var sumSin, sumCos float64
	for i := range l.nodes {
		switch l.nodes[i].State {
		case Vacuum:
			st.CountVacuum++
		case Broken:
			st.CountBroken++
		case Anomalous:
			st.CountAnomalous++
		}
		s, c := math.Sincos(l.nodes[i].Phase)
		sumSin += s
		sumCos += c
	}
	n := float64(len(l.nodes))
	st.PhaseCoherence = math.Hypot(sumCos/n, sumSin/n)
	return st
}

// Clone returns a deep, independent copy sharing no memory with l.
func (l *Lattice) Clone() *Lattice {
	c := &Lattice{
		extents: l.extents,
		ndim:    l.ndim,
		bound:   l.bound,
		maxDeg:  l.maxDeg,
		nodes:   make([]Node, len(l.nodes)),
		// topology is immutable after construction, sharing it would be
		// safe, but bookmarks must survive any future structural change
		neighbors: make([]int32, len(l.neighbors)),
	}
	copy(c.nodes, l.nodes)
	copy(c.neighbors, l.neighbors)
	return c
}

// CopyFrom overwrites l's node contents with src's. Both lattices must have
// identical geometry; this is the rollback path, so it never allocates.
func (l *Lattice) CopyFrom(src *Lattice) error {
	if len(l.nodes) != len(src.nodes) || l.extents != src.extents {
		return fmt.Errorf("lattice: geometry mismatch (%v vs %v)", l.extents, src.extents)
	}
	copy(l.nodes, src.nodes)
	return nil
}

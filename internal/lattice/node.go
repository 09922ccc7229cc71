package lattice

// NodeState is the derived classification of a site.
type NodeState uint8

const (
	Vacuum NodeState = iota
	Broken
	Anomalous
)

func (s NodeState) String() string {
	switch s {
	case Vacuum:
		return "vacuum"
	case Broken:
		return "broken"
	case Anomalous:
		return "anomalous"
	default:
		return "unknown"
	}
}

// Node is one lattice site. Spin is always -1 or +1. ESym+EAsym stays within
// tolerance of E0 for the node's whole lifetime; only the physics step and
// explicit perturbation injection mutate the energies.
type Node struct {
	Spin  int8
	State NodeState

	ESym  float64
	EAsym float64
	E0    float64

	// Omega is the internal oscillation frequency, meaningful only while
	// State == Anomalous. Effective mass is hbar*Omega.
	Omega float64

	// Phase is a visualization/mode-analysis angle, not load-bearing for
	// conservation.
	Phase float64
}

// Energy returns ESym+EAsym, the quantity conserved against E0.
func (n *Node) Energy() float64 {
	return n.ESym + n.EAsym
}

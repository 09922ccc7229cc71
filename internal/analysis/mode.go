package analysis

import (
	"math"

	"github.com/tdslab/tdsim/internal/lattice"
)

// ModeAmplitudeTracker computes the discrete Fourier mode amplitude
//
//	A_kx = (1/N) * sum_i spin_i * cos(2*pi*kx*x_i / Nx)
//
// over the spin field, using a cosine table precomputed per x coordinate.
// Amplitudes are kept in a rolling window for RMS reporting. Changing the
// wave number rebuilds the table and clears only the amplitude series.
type ModeAmplitudeTracker struct {
	kx int
	nx int

	table []float64

	window []float64
	head   int
	size   int
}

// NewModeAmplitudeTracker builds a tracker for the lattice's x extent.
func NewModeAmplitudeTracker(nx, kx, window int) *ModeAmplitudeTracker {
	if window < 1 {
		window = 1
	}
	m := &ModeAmplitudeTracker{
		kx:     kx,
		nx:     nx,
		window: make([]float64, window),
	}
	m.rebuildTable()
	return m
}

func (m *ModeAmplitudeTracker) rebuildTable() {
	m.table = make([]float64, m.nx)
	for x := 0; x < m.nx; x++ {
		m.table[x] = math.Cos(2 * math.Pi * float64(m.kx) * float64(x) / float64(m.nx))
	}
}

// WaveNumber returns the tracked kx.
func (m *ModeAmplitudeTracker) WaveNumber() int { return m.kx }

// SetWaveNumber retargets the tracker. The cosine table is rebuilt and the
// accumulated amplitude series discarded; nothing else resets.
func (m *ModeAmplitudeTracker) SetWaveNumber(kx int) {
	if kx == m.kx {
		return
	}
	m.kx = kx
	m.rebuildTable()
	m.head = 0
	m.size = 0
}

// Observe computes the current amplitude from the lattice, records it in the
// rolling window, and returns it.
func (m *ModeAmplitudeTracker) Observe(l *lattice.Lattice) float64 {
	nodes := l.Nodes()
	sum := 0.0
	for id := range nodes {
		x := id % m.nx
		sum += float64(nodes[id].Spin) * m.table[x]
	}
	a := sum / float64(len(nodes))

	m.window[m.head] = a
	m.head = (m.head + 1) % len(m.window)
	if m.size < len(m.window) {
		m.size++
	}
	return a
}

// RMS returns the root-mean-square amplitude over the rolling window.
func (m *ModeAmplitudeTracker) RMS() float64 {
	if m.size == 0 {
		return 0
	}
	sum := 0.0
	for i := 0; i < m.size; i++ {
		sum += m.window[i] * m.window[i]
	}
	return math.Sqrt(sum / float64(m.size))
}

// DirectAmplitude computes A_kx without the lookup table, as a reference for
// validating the tabulated path.
func DirectAmplitude(l *lattice.Lattice, kx int) float64 {
	nx := l.Extent(0)
	nodes := l.Nodes()
	sum := 0.0
	for id := range nodes {
		x := id % nx
		sum += float64(nodes[id].Spin) * math.Cos(2*math.Pi*float64(kx)*float64(x)/float64(nx))
	}
	return sum / float64(len(nodes))
}

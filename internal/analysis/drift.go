package analysis

import "math"

// DriftMonitor tracks |E0 - E0_ref| across steps against a fixed reference
// captured at initialization.
type DriftMonitor struct {
	ref     float64
	n       int64
	sum     float64
	maxSeen float64
}

// NewDriftMonitor captures the reference conserved total.
func NewDriftMonitor(ref float64) *DriftMonitor {
	return &DriftMonitor{ref: ref}
}

// Observe records one conserved-total sample.
func (d *DriftMonitor) Observe(e0 float64) {
	dev := math.Abs(e0 - d.ref)
	d.n++
	d.sum += dev
	if dev > d.maxSeen {
		d.maxSeen = dev
	}
}

// Reference returns the fixed reference value.
func (d *DriftMonitor) Reference() float64 { return d.ref }

// Mean returns the mean absolute drift.
func (d *DriftMonitor) Mean() float64 {
	if d.n == 0 {
		return 0
	}
	return d.sum / float64(d.n)
}

// Max returns the largest absolute drift seen.
func (d *DriftMonitor) Max() float64 { return d.maxSeen }

// Reset rebases the monitor on a new reference.
func (d *DriftMonitor) Reset(ref float64) {
	*d = DriftMonitor{ref: ref}
}

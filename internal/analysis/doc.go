// Package analysis provides the numerical instrumentation consumed by the
// simulation and exposed to external analytics: single-pass online moments
// of the energy components, conserved-total drift monitoring, and discrete
// Fourier mode amplitude tracking over the spin field.
package analysis

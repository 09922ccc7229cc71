// Package physics orchestrates one simulation step of the symmetry-dynamics
// engine: the reversible swap dynamics, per-node anomaly classification, and
// conservation enforcement, with wholesale rollback on a fatal invariant
// breach.
package physics

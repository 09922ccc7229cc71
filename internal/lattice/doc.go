// Package lattice provides the discrete site lattice underlying the
// symmetry-dynamics engine.
//
// A [Lattice] is a contiguous arena of [Node] values addressed by integer
// coordinates in 1, 2, or 3 dimensions, with axis-aligned neighbor
// connectivity and either open or periodic boundaries. The arena layout
// (flat node slice plus an index-based neighbor table) makes [Lattice.Clone]
// a pair of contiguous copies, which the simulation relies on for cheap
// snapshots and bookmarks.
//
// Every node carries a binary spin and two energy components whose sum is
// fixed at construction:
//
//	ESym + EAsym == E0
//
// All read operations (totals, informational tension, statistics) are pure.
package lattice

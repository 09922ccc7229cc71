// Package dynamics implements the reversible six-phase block update that
// advances the lattice one discrete time step.
//
// Each step is the composition of six phases, one per spatial axis and
// parity, applied in the fixed order
//
//	XEven, YOdd, ZEven, XOdd, YEven, ZOdd
//
// A phase partitions the lattice into disjoint neighbor pairs along its axis
// at its parity offset and applies an invertible pair transformation to each
// block. Because the blocks are disjoint and the pair rule is a bijection,
// every phase is invertible, and [SwapDynamics.ReverseStep] recovers the
// previous state by applying inverse phases in reverse order.
//
// Phases never touch a node twice, so blocks within one phase may run on
// worker goroutines; a phase always completes before the next begins.
package dynamics

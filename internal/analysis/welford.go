package analysis

import "math"

// OnlineStatistics maintains incremental mean/variance of the two energy
// components and their running correlation, using Welford's single-pass
// update. O(1) memory, numerically stable over long runs.
type OnlineStatistics struct {
	n int64

	meanSym, meanAsym float64
	m2Sym, m2Asym     float64
	comoment          float64
}

// Push folds one (ESym, EAsym) observation into the running moments.
func (o *OnlineStatistics) Push(esym, easym float64) {
	o.n++
	n := float64(o.n)

	dSym := esym - o.meanSym
	o.meanSym += dSym / n
	dSym2 := esym - o.meanSym
	o.m2Sym += dSym * dSym2

	dAsym := easym - o.meanAsym
	o.meanAsym += dAsym / n
	dAsym2 := easym - o.meanAsym
	o.m2Asym += dAsym * dAsym2

	o.comoment += dSym * dAsym2
}

// Count returns the number of observations.
func (o *OnlineStatistics) Count() int64 { return o.n }

// MeanSym returns the running mean of ESym.
func (o *OnlineStatistics) MeanSym() float64 { return o.meanSym }

// MeanAsym returns the running mean of EAsym.
func (o *OnlineStatistics) MeanAsym() float64 { return o.meanAsym }

// VarianceSym returns the sample variance of ESym.
func (o *OnlineStatistics) VarianceSym() float64 {
	if o.n < 2 {
		return 0
	}
	return o.m2Sym / float64(o.n-1)
}

// VarianceAsym returns the sample variance of EAsym.
func (o *OnlineStatistics) VarianceAsym() float64 {
	if o.n < 2 {
		return 0
	}
	return o.m2Asym / float64(o.n-1)
}

// Correlation returns the running Pearson correlation rho(ESym, EAsym),
// or 0 while either component has zero variance.
func (o *OnlineStatistics) Correlation() float64 {
	if o.n < 2 || o.m2Sym == 0 || o.m2Asym == 0 {
		return 0
	}
	return o.comoment / math.Sqrt(o.m2Sym*o.m2Asym)
}

// Reset discards all accumulated moments.
func (o *OnlineStatistics) Reset() {
	*o = OnlineStatistics{}
}

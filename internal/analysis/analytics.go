package analysis

import (
	"strconv"
	"strings"

	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/lattice"
)

// PanelData is the numeric bundle served to external stats panels.
type PanelData struct {
	Rho       float64 // running correlation of ESym and EAsym
	DriftMean float64
	DriftMax  float64
	Amplitude float64 // latest A_kx
	RMSAkx    float64
}

type statsRow struct {
	step    int64
	esym    float64
	easym   float64
	rho     float64
	drift   float64
	akx     float64
	tension float64
}

// AdvancedAnalytics bundles the instrumentation and accumulates the series
// it serializes for export. It only ever reads lattice snapshots.
type AdvancedAnalytics struct {
	stats *OnlineStatistics
	drift *DriftMonitor
	mode  *ModeAmplitudeTracker

	j    float64
	rows []statsRow
	last float64 // latest amplitude
}

// NewAdvancedAnalytics sizes the instrumentation for the given lattice.
func NewAdvancedAnalytics(cfg *config.Config, l *lattice.Lattice) *AdvancedAnalytics {
	return &AdvancedAnalytics{
		stats: &OnlineStatistics{},
		drift: NewDriftMonitor(l.TotalEnergy().E0),
		mode:  NewModeAmplitudeTracker(l.Extent(0), cfg.KX, cfg.ModeWindow),
		j:     cfg.J,
	}
}

// Stats exposes the online moments.
func (a *AdvancedAnalytics) Stats() *OnlineStatistics { return a.stats }

// Drift exposes the drift monitor.
func (a *AdvancedAnalytics) Drift() *DriftMonitor { return a.drift }

// Mode exposes the mode amplitude tracker.
func (a *AdvancedAnalytics) Mode() *ModeAmplitudeTracker { return a.mode }

// SetCoupling updates the J used for the recorded tension column. Rows
// already recorded keep the J they were observed under.
func (a *AdvancedAnalytics) SetCoupling(j float64) { a.j = j }

// Observe folds one fully-stepped snapshot into every instrument.
func (a *AdvancedAnalytics) Observe(l *lattice.Lattice, step int64) {
	e := l.TotalEnergy()
	a.stats.Push(e.ESym, e.EAsym)
	a.drift.Observe(e.E0)
	a.last = a.mode.Observe(l)

	a.rows = append(a.rows, statsRow{
		step:    step,
		esym:    e.ESym,
		easym:   e.EAsym,
		rho:     a.stats.Correlation(),
		drift:   a.drift.Max(),
		akx:     a.last,
		tension: l.InformationalTension(a.j),
	})
}

// StatsPanelData returns the current panel values.
func (a *AdvancedAnalytics) StatsPanelData() PanelData {
	return PanelData{
		Rho:       a.stats.Correlation(),
		DriftMean: a.drift.Mean(),
		DriftMax:  a.drift.Max(),
		Amplitude: a.last,
		RMSAkx:    a.mode.RMS(),
	}
}

// Series returns the recorded (step, ESym, EAsym, A_kx) history as columns
// for plotting.
func (a *AdvancedAnalytics) Series() (steps []int64, esym, easym, akx []float64) {
	for _, r := range a.rows {
		steps = append(steps, r.step)
		esym = append(esym, r.esym)
		easym = append(easym, r.easym)
		akx = append(akx, r.akx)
	}
	return
}

// ExportStatsToCSV serializes the accumulated series. The header names the
// columns; one row per observed step.
func (a *AdvancedAnalytics) ExportStatsToCSV() string {
	var b strings.Builder
	b.WriteString("step,e_sym,e_asym,rho,drift_max,a_kx,t_info\n")
	for _, r := range a.rows {
		b.WriteString(strconv.FormatInt(r.step, 10))
		for _, v := range [6]float64{r.esym, r.easym, r.rho, r.drift, r.akx, r.tension} {
			b.WriteByte(',')
			b.WriteString(strconv.FormatFloat(v, 'g', 12, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Reset rebuilds every instrument against a fresh lattice.
func (a *AdvancedAnalytics) Reset(l *lattice.Lattice) {
	a.stats.Reset()
	a.drift.Reset(l.TotalEnergy().E0)
	a.mode = NewModeAmplitudeTracker(l.Extent(0), a.mode.WaveNumber(), len(a.mode.window))
	a.rows = nil
	a.last = 0
}

// Package validate scores how faithfully the engine retraces its own
// trajectory and audits conservation without correcting it.
package validate

import (
	"math"

	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/dynamics"
	"github.com/tdslab/tdsim/internal/lattice"
	"github.com/tdslab/tdsim/internal/physics"
)

// Weights combines the three similarity terms of the reversibility score.
// They are normalized before use, so only their ratios matter.
type Weights struct {
	Spin   float64
	State  float64
	Energy float64
}

// DefaultWeights weight spin agreement heaviest, as the spin field is the
// discrete quantity reversal preserves exactly in the uncorrected regime.
var DefaultWeights = Weights{Spin: 0.4, State: 0.3, Energy: 0.3}

// Report is the outcome of one forward/backward cycle.
type Report struct {
	// Score is in [0,1]; 1 means the lattice returned to its origin.
	Score float64

	// EnergyDrift is the relative deviation of the final total energy from
	// the origin's.
	EnergyDrift float64

	// StateDeviation is the fraction of nodes whose classification differs
	// after the cycle.
	StateDeviation float64
}

// Status is the three-level conservation verdict for external consumers.
type Status uint8

const (
	StatusGood Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusGood:
		return "good"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// ReversibilityValidator runs forward/backward cycles on shadow copies.
// The caller's lattice is never mutated.
type ReversibilityValidator struct {
	cfg     *config.Config
	weights Weights
	log     *zap.Logger
}

// New builds a validator for simulations created from cfg. log may be nil.
func New(cfg *config.Config, weights Weights, log *zap.Logger) *ReversibilityValidator {
	if log == nil {
		log = zap.NewNop()
	}
	total := weights.Spin + weights.State + weights.Energy
	if total <= 0 {
		weights = DefaultWeights
		total = 1
	}
	weights.Spin /= total
	weights.State /= total
	weights.Energy /= total
	return &ReversibilityValidator{cfg: cfg, weights: weights, log: log}
}

// shadowEngine builds an independent step pipeline for a lattice clone.
func (v *ReversibilityValidator) shadowEngine(l *lattice.Lattice) *physics.Engine {
	dyn := dynamics.New(l, dynamics.Params{
		J:             v.cfg.J,
		SwapThreshold: v.cfg.SwapThreshold,
		Workers:       v.cfg.Workers,
	})
	enforcer := physics.NewConservationEnforcer(v.cfg.Tolerance, v.cfg.HardFactor, v.cfg.RateWindow, v.log)
	detector := physics.NewAnomalyDetector(l.NumNodes(), physics.DetectorParams{
		HistoryDepth:         v.cfg.HistoryDepth,
		PersistenceThreshold: v.cfg.PersistenceThreshold,
		VacuumEps:            v.cfg.VacuumEps,
		HBar:                 v.cfg.HBar,
	})
	return physics.NewEngine(dyn, enforcer, detector, v.cfg.J, v.log)
}

// Run snapshots l, advances a shadow copy the given number of steps forward
// and then the same number backward, and scores the return against the
// snapshot.
func (v *ReversibilityValidator) Run(l *lattice.Lattice, steps int) (Report, error) {
	origin := l.Clone()
	shadow := l.Clone()
	engine := v.shadowEngine(shadow)

	for i := 0; i < steps; i++ {
		if _, err := engine.Step(shadow, physics.Forward, int64(i+1)); err != nil {
			return Report{}, err
		}
	}
	for i := 0; i < steps; i++ {
		if _, err := engine.Step(shadow, physics.Backward, int64(steps-i-1)); err != nil {
			return Report{}, err
		}
	}

	rep := v.Compare(origin, shadow)
	v.log.Info("reversibility cycle complete",
		zap.Int("steps", steps),
		zap.Float64("score", rep.Score),
	)
	return rep, nil
}

// Compare scores how closely b matches a: weighted spin agreement, state
// agreement, and normalized per-node energy distance.
func (v *ReversibilityValidator) Compare(a, b *lattice.Lattice) Report {
	an, bn := a.Nodes(), b.Nodes()
	n := len(an)

	spinMatch, stateMatch := 0, 0
	energyDist := 0.0
	for i := 0; i < n; i++ {
		if an[i].Spin == bn[i].Spin {
			spinMatch++
		}
		if an[i].State == bn[i].State {
			stateMatch++
		}
		energyDist += math.Abs(an[i].ESym-bn[i].ESym) + math.Abs(an[i].EAsym-bn[i].EAsym)
	}

	e0 := a.TotalEnergy().E0
	normDist := 0.0
	if e0 > 0 {
		normDist = math.Min(1, energyDist/e0)
	}

	fracSpin := float64(spinMatch) / float64(n)
	fracState := float64(stateMatch) / float64(n)

	drift := 0.0
	if e0 > 0 {
		drift = math.Abs(b.TotalEnergy().Total()-a.TotalEnergy().Total()) / e0
	}

	return Report{
		Score:          v.weights.Spin*fracSpin + v.weights.State*fracState + v.weights.Energy*(1-normDist),
		EnergyDrift:    drift,
		StateDeviation: 1 - fracState,
	}
}

// ConservationReport aggregates read-only deviation checks across a run.
type ConservationReport struct {
	MaxDeviation  float64
	MeanDeviation float64
	Steps         int
}

// ValidateConservation steps a shadow copy forward and records the absolute
// conservation deviation at every step without ever correcting it.
func (v *ReversibilityValidator) ValidateConservation(l *lattice.Lattice, steps int) (ConservationReport, error) {
	shadow := l.Clone()
	dyn := dynamics.New(shadow, dynamics.Params{
		J:             v.cfg.J,
		SwapThreshold: v.cfg.SwapThreshold,
		Workers:       v.cfg.Workers,
	})

	var rep ConservationReport
	sum := 0.0
	for i := 0; i < steps; i++ {
		if err := dyn.Step(shadow); err != nil {
			return rep, err
		}
		e := shadow.TotalEnergy()
		dev := math.Abs(e.Total() - e.E0)
		sum += dev
		if dev > rep.MaxDeviation {
			rep.MaxDeviation = dev
		}
		rep.Steps++
	}
	if rep.Steps > 0 {
		rep.MeanDeviation = sum / float64(rep.Steps)
	}
	return rep, nil
}

// ConservationStatus maps a report onto the three-level verdict. The warning
// threshold is the configured tolerance; the error threshold is ten times it.
func (v *ReversibilityValidator) ConservationStatus(rep ConservationReport) Status {
	warn := v.cfg.Tolerance
	if rep.MaxDeviation >= 10*warn {
		return StatusError
	}
	if rep.MaxDeviation >= warn || rep.MeanDeviation >= warn/2 {
		return StatusWarning
	}
	return StatusGood
}

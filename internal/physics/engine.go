package physics

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/dynamics"
	"github.com/tdslab/tdsim/internal/lattice"
)

// Direction selects forward or backward stepping.
type Direction int8

const (
	Forward  Direction = +1
	Backward Direction = -1
)

// StepStatus summarizes how a step concluded.
type StepStatus uint8

const (
	StatusOK StepStatus = iota
	StatusCorrected
	StatusFatal
)

func (s StepStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusCorrected:
		return "corrected"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// StepReport is returned after every step attempt.
type StepReport struct {
	Step         int64
	Direction    Direction
	Energies     lattice.Energies
	Tension      float64
	Violations   []CorrectionRecord
	NewAnomalies []int
	Status       StepStatus
}

// Engine orchestrates one simulation step: swap dynamics, anomaly
// classification, conservation enforcement, and the fatal-breach rollback.
type Engine struct {
	dyn      *dynamics.SwapDynamics
	enforcer *ConservationEnforcer
	detector *AnomalyDetector
	log      *zap.Logger

	j float64

	// pre holds the pre-step snapshot for rollback, reused across steps to
	// avoid per-step allocation.
	pre *lattice.Lattice
}

// NewEngine wires the step pipeline. log may be nil.
func NewEngine(dyn *dynamics.SwapDynamics, enforcer *ConservationEnforcer, detector *AnomalyDetector, j float64, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		dyn:      dyn,
		enforcer: enforcer,
		detector: detector,
		log:      log,
		j:        j,
	}
}

// Detector exposes the anomaly detector for inspection and reset.
func (e *Engine) Detector() *AnomalyDetector { return e.detector }

// Enforcer exposes the conservation enforcer for diagnostics.
func (e *Engine) Enforcer() *ConservationEnforcer { return e.enforcer }

// Dynamics exposes the swap dynamics for parameter updates.
func (e *Engine) Dynamics() *dynamics.SwapDynamics { return e.dyn }

// Coupling returns the informational-tension coupling J.
func (e *Engine) Coupling() float64 { return e.j }

// SetCoupling updates J for both tension reporting and the swap rule.
func (e *Engine) SetCoupling(j float64) {
	e.j = j
	e.dyn.SetCoupling(j)
}

// Step advances (or reverses) the lattice by one step. On a fatal invariant
// breach the lattice is restored to its pre-step state and an error wrapping
// ErrFatalInvariant is returned alongside the report.
func (e *Engine) Step(l *lattice.Lattice, dir Direction, step int64) (StepReport, error) {
	if e.pre == nil || e.pre.NumNodes() != l.NumNodes() {
		e.pre = l.Clone()
	} else if err := e.pre.CopyFrom(l); err != nil {
		return StepReport{Status: StatusFatal}, err
	}

	var err error
	if dir == Backward {
		err = e.dyn.ReverseStep(l)
	} else {
		err = e.dyn.Step(l)
	}
	if err != nil {
		return StepReport{Step: step, Direction: dir, Status: StatusFatal}, err
	}

	// A deviation beyond the hard ceiling is a bug, not float noise. It is
	// checked before enforcement so a correction can never mask it; the step
	// is rejected wholesale.
	dev := e.enforcer.Deviation(l)
	if ceil := e.enforcer.HardCeiling(l.TotalEnergy().E0); dev > ceil || dev < -ceil {
		if rbErr := l.CopyFrom(e.pre); rbErr != nil {
			return StepReport{Step: step, Direction: dir, Status: StatusFatal}, rbErr
		}
		e.log.Error("fatal invariant breach, lattice rolled back",
			zap.Int64("step", step),
			zap.Float64("deviation", dev),
			zap.Float64("ceiling", ceil),
		)
		return StepReport{Step: step, Direction: dir, Status: StatusFatal},
			&StepError{Step: step, Deviation: dev, Wrapped: ErrFatalInvariant}
	}

	newAnomalies := e.detector.Observe(l)
	violations := e.enforcer.Enforce(l, step)

	report := StepReport{
		Step:         step,
		Direction:    dir,
		Energies:     l.TotalEnergy(),
		Tension:      l.InformationalTension(e.j),
		Violations:   violations,
		NewAnomalies: newAnomalies,
		Status:       StatusOK,
	}
	if len(violations) > 0 {
		report.Status = StatusCorrected
	}
	return report, nil
}

// PropagateAnomaly injects asymmetric energy into a node and half as much
// into each neighbor, seeding anomaly formation for scenario setup. The
// injection converts ESym into EAsym in place, so per-node conservation
// holds; it is clamped so EAsym never exceeds E0.
func (e *Engine) PropagateAnomaly(l *lattice.Lattice, nodeID int, field float64) error {
	if nodeID < 0 || nodeID >= l.NumNodes() {
		return fmt.Errorf("%w: %d (lattice has %d nodes)", ErrNodeOutOfRange, nodeID, l.NumNodes())
	}
	if field < 0 {
		return fmt.Errorf("%w: injection field must be >= 0, got %g", ErrInvalidParameter, field)
	}

	inject := func(id int, amount float64) {
		n := l.Node(id)
		room := n.E0 - n.EAsym
		if amount > room {
			amount = room
		}
		if amount <= 0 {
			return
		}
		n.EAsym += amount
		n.ESym -= amount
		if n.State == lattice.Vacuum {
			n.State = lattice.Broken
		}
	}

	inject(nodeID, field)
	var buf [6]int
	for _, nid := range l.Neighbors(nodeID, buf[:0]) {
		inject(nid, field/2)
	}

	e.log.Info("anomaly seed injected",
		zap.Int("node", nodeID),
		zap.Float64("field", field),
	)
	return nil
}

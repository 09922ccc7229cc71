// Package scenario runs the engine's reference scenarios: reproducible
// setups with a known expected outcome, used as executable benchmarks of
// physical correctness.
package scenario

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/lattice"
	"github.com/tdslab/tdsim/internal/physics"
	"github.com/tdslab/tdsim/internal/sim"
	"github.com/tdslab/tdsim/internal/validate"
)

// Result is a scenario verdict.
type Result struct {
	Name    string
	Passed  bool
	Details string

	// Simulation is left in its final state for export and inspection.
	Simulation *sim.Simulation
}

type runner struct {
	description string
	run         func(log *zap.Logger) (Result, error)
}

var registry = map[string]runner{
	"vacuum": {
		description: "8x8 open lattice at rest stays entirely Vacuum over 100 steps",
		run:         runVacuum,
	},
	"seed": {
		description: "single-node perturbation on a 16x16 periodic lattice becomes an anomaly",
		run:         runSeed,
	},
	"photon": {
		description: "cosine EAsym profile retraces 4-tau forward/backward to score >= 0.99",
		run:         runPhoton,
	},
}

// Names lists the registered scenarios.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns a scenario's one-line description.
func Describe(name string) (string, bool) {
	r, ok := registry[name]
	return r.description, ok
}

// Run executes a named scenario.
func Run(name string, log *zap.Logger) (Result, error) {
	r, ok := registry[name]
	if !ok {
		return Result{}, fmt.Errorf("scenario: unknown scenario %q", name)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return r.run(log)
}

func runVacuum(log *zap.Logger) (Result, error) {
	s, err := sim.New(config.Presets["vacuum"], log)
	if err != nil {
		return Result{}, err
	}
	for i := 0; i < 100; i++ {
		if _, err := s.Step(physics.Forward); err != nil {
			return Result{}, err
		}
	}

	snap := s.Snapshot()
	res := Result{Name: "vacuum", Simulation: s}
	if snap.Stats.CountVacuum != snap.Lattice.NumNodes() {
		res.Details = fmt.Sprintf("%d of %d nodes left Vacuum",
			snap.Stats.CountVacuum, snap.Lattice.NumNodes())
		return res, nil
	}
	if snap.Energies.EAsym > s.Config().Tolerance {
		res.Details = fmt.Sprintf("residual EAsym %.3e", snap.Energies.EAsym)
		return res, nil
	}
	res.Passed = true
	res.Details = "lattice remained at rest"
	return res, nil
}

func runSeed(log *zap.Logger) (Result, error) {
	cfg := config.Presets["seed"]
	s, err := sim.New(cfg, log)
	if err != nil {
		return Result{}, err
	}

	l := s.Lattice()
	center := l.Index(l.Extent(0)/2, l.Extent(1)/2, 0)
	if err := s.SeedAnomaly(center, 0.5); err != nil {
		return Result{}, err
	}

	for i := 0; i < cfg.HistoryDepth; i++ {
		if _, err := s.Step(physics.Forward); err != nil {
			return Result{}, err
		}
	}

	res := Result{Name: "seed", Simulation: s}

	// The perturbation diffuses, so accept the anomaly anywhere in the
	// seeded neighborhood.
	var buf [6]int
	ids := append(l.Neighbors(center, buf[:0]), center)
	for _, id := range ids {
		n := s.Lattice().Node(id)
		if n.State == lattice.Anomalous && n.Omega > 0 {
			res.Passed = true
			res.Details = fmt.Sprintf("node %d anomalous, omega %.4f", id, n.Omega)
			return res, nil
		}
	}
	res.Details = "no anomaly formed in the seeded neighborhood"
	return res, nil
}

func runPhoton(log *zap.Logger) (Result, error) {
	const tau = 16

	cfg := config.Presets["photon"]
	s, err := sim.New(cfg, log)
	if err != nil {
		return Result{}, err
	}

	// Standing-wave seed: a cosine EAsym profile of wavelength 2*tau sites,
	// injected through the engine's perturbation path. The wavepacket is
	// laid out in space rather than driven in time; the dynamics have no
	// external drive, so a temporal oscillation can only be seeded as an
	// initial profile and left to evolve.
	l := s.Lattice()
	for x := 0; x < l.Extent(0); x++ {
		field := 0.25 * (1 + math.Cos(2*math.Pi*float64(x)/float64(2*tau)))
		if field <= 0 {
			continue
		}
		if err := s.SeedAnomaly(l.Index(x, 0, 0), field); err != nil {
			return Result{}, err
		}
	}

	origin := s.Snapshot()

	for i := 0; i < 4*tau; i++ {
		if _, err := s.Step(physics.Forward); err != nil {
			return Result{}, err
		}
	}
	for i := 0; i < 4*tau; i++ {
		if _, err := s.Step(physics.Backward); err != nil {
			return Result{}, err
		}
	}

	// Score spin and energy return only: classification is persistence-based
	// and intentionally lags the reversible core by up to H steps.
	v := validate.New(cfg, validate.Weights{Spin: 0.5, Energy: 0.5}, log)
	rep := v.Compare(origin.Lattice, s.Lattice())

	res := Result{Name: "photon", Simulation: s}
	finalEAsym := s.Lattice().TotalEnergy().EAsym
	returned := math.Abs(finalEAsym-origin.Energies.EAsym) <= cfg.Tolerance

	drift := finalEAsym - origin.Energies.EAsym
	if rep.Score >= 0.99 && returned {
		res.Passed = true
		res.Details = fmt.Sprintf("score %.4f, EAsym drift %.3e", rep.Score, drift)
	} else {
		res.Details = fmt.Sprintf("score %.4f (need >= 0.99), EAsym drift %.3e", rep.Score, drift)
	}
	return res, nil
}

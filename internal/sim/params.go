package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/config"
)

// SetParameters applies runtime parameter changes. Every key must be one of
// the recognized option names below; an unknown key rejects the whole call
// and nothing is applied. Values are validated against the configuration
// domain before any live component is touched, so a failed call leaves the
// simulation exactly as it was.
//
// Recognized keys: j, e0, tolerance, swap_threshold, history_depth,
// persistence_threshold, vacuum_eps, hbar, kx.
func (s *Simulation) SetParameters(params map[string]float64) error {
	next := s.cfg.Clone()
	for key, v := range params {
		switch key {
		case "j":
			next.J = v
		case "e0":
			next.E0 = v
		case "tolerance":
			next.Tolerance = v
		case "swap_threshold":
			next.SwapThreshold = v
		case "history_depth":
			next.HistoryDepth = int(v)
		case "persistence_threshold":
			next.PersistenceThreshold = v
		case "vacuum_eps":
			next.VacuumEps = v
		case "hbar":
			next.HBar = v
		case "kx":
			next.KX = int(v)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
		}
	}
	if err := next.Validate(); err != nil {
		return err
	}

	for key := range params {
		s.apply(key, next)
	}
	s.cfg = next
	s.log.Info("parameters updated", zap.Int("count", len(params)))
	return nil
}

// apply commits one validated parameter to the live components.
func (s *Simulation) apply(key string, next *config.Config) {
	switch key {
	case "j":
		s.engine.SetCoupling(next.J)
		s.analytics.SetCoupling(next.J)
	case "e0":
		// Rescale every node so the new conserved constant holds exactly;
		// the energy split is preserved.
		factor := next.E0 / s.cfg.E0
		nodes := s.lat.Nodes()
		for i := range nodes {
			nodes[i].E0 *= factor
			nodes[i].ESym *= factor
			nodes[i].EAsym *= factor
		}
		s.analytics.Drift().Reset(s.lat.TotalEnergy().E0)
	case "tolerance":
		s.engine.Enforcer().SetTolerance(next.Tolerance)
	case "swap_threshold":
		s.engine.Dynamics().SetSwapThreshold(next.SwapThreshold)
	case "history_depth":
		s.engine.Detector().SetHistoryDepth(next.HistoryDepth)
	case "persistence_threshold":
		s.engine.Detector().SetPersistenceThreshold(next.PersistenceThreshold)
	case "vacuum_eps":
		s.engine.Detector().SetVacuumEps(next.VacuumEps)
	case "hbar":
		s.engine.Detector().SetHBar(next.HBar)
	case "kx":
		s.analytics.Mode().SetWaveNumber(next.KX)
	}
}

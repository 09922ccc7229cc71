// Package sim owns the top-level simulation controller: the stepping loop,
// the snapshot history ring, named bookmarks, and runtime parameter changes.
//
// A [Simulation] exclusively owns its lattice. External consumers read
// consistent state through [Simulation.Snapshot] and issue control through
// Step, Reset, Restore, and SetParameters; direct lattice mutation outside
// those calls is outside the contract.
package sim

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tdslab/tdsim/internal/analysis"
	"github.com/tdslab/tdsim/internal/config"
	"github.com/tdslab/tdsim/internal/dynamics"
	"github.com/tdslab/tdsim/internal/lattice"
	"github.com/tdslab/tdsim/internal/physics"
)

var (
	// ErrBookmarkNotFound is returned by Restore for unknown names.
	ErrBookmarkNotFound = errors.New("sim: bookmark not found")

	// ErrUnknownParameter is returned by SetParameters for unrecognized keys.
	ErrUnknownParameter = errors.New("sim: unknown parameter")
)

// Snapshot is a read-only, fully-stepped view of the simulation. The lattice
// inside is an independent copy; holding a snapshot across steps is safe.
type Snapshot struct {
	Step     int64
	Lattice  *lattice.Lattice
	Energies lattice.Energies
	Tension  float64
	Stats    lattice.Stats
}

// Bookmark is a named snapshot plus metadata, independent of the live state.
type Bookmark struct {
	Name      string
	CreatedAt time.Time
	Snapshot  Snapshot
}

// Simulation drives a Physics engine over one lattice.
type Simulation struct {
	cfg *config.Config
	log *zap.Logger

	lat    *lattice.Lattice
	engine *physics.Engine

	step      int64
	history   *History
	bookmarks map[string]*Bookmark
	analytics *analysis.AdvancedAnalytics
}

// New validates cfg and assembles the full step pipeline. log may be nil.
func New(cfg *config.Config, log *zap.Logger) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	cfg = cfg.Clone()

	lat, err := buildLattice(cfg)
	if err != nil {
		return nil, err
	}

	dyn := dynamics.New(lat, dynamics.Params{
		J:             cfg.J,
		SwapThreshold: cfg.SwapThreshold,
		Workers:       cfg.Workers,
	})
	enforcer := physics.NewConservationEnforcer(cfg.Tolerance, cfg.HardFactor, cfg.RateWindow, log)
	detector := physics.NewAnomalyDetector(lat.NumNodes(), physics.DetectorParams{
		HistoryDepth:         cfg.HistoryDepth,
		PersistenceThreshold: cfg.PersistenceThreshold,
		VacuumEps:            cfg.VacuumEps,
		HBar:                 cfg.HBar,
	})

	s := &Simulation{
		cfg:       cfg,
		log:       log,
		lat:       lat,
		engine:    physics.NewEngine(dyn, enforcer, detector, cfg.J, log),
		history:   NewHistory(cfg.SnapshotHistory),
		bookmarks: make(map[string]*Bookmark),
		analytics: analysis.NewAdvancedAnalytics(cfg, lat),
	}
	return s, nil
}

func buildLattice(cfg *config.Config) (*lattice.Lattice, error) {
	bound, err := lattice.ParseBoundary(cfg.Boundary)
	if err != nil {
		return nil, err
	}
	return lattice.New(lattice.Options{
		Extents:  cfg.Extents,
		Boundary: bound,
		E0:       cfg.E0,
		Seed:     cfg.Seed,
	})
}

// Engine exposes the physics engine, e.g. for anomaly seeding.
func (s *Simulation) Engine() *physics.Engine { return s.engine }

// Lattice exposes the live lattice. Mutating it outside Step/Restore breaks
// the ownership contract; prefer Snapshot for reads.
func (s *Simulation) Lattice() *lattice.Lattice { return s.lat }

// Analytics exposes the instrumentation facade.
func (s *Simulation) Analytics() *analysis.AdvancedAnalytics { return s.analytics }

// Config returns the simulation's own config copy.
func (s *Simulation) Config() *config.Config { return s.cfg }

// StepIndex returns the signed step counter.
func (s *Simulation) StepIndex() int64 { return s.step }

// History exposes the snapshot ring.
func (s *Simulation) History() *History { return s.history }

// Step advances the simulation one step in the given direction, feeds the
// instrumentation, and appends a snapshot to the history ring. On a fatal
// invariant breach the lattice keeps its pre-step state and the counter does
// not move.
func (s *Simulation) Step(dir physics.Direction) (physics.StepReport, error) {
	next := s.step + int64(dir)
	report, err := s.engine.Step(s.lat, dir, next)
	if err != nil {
		return report, err
	}
	s.step = next

	snap := s.Snapshot()
	s.analytics.Observe(snap.Lattice, snap.Step)
	s.history.Push(snap)
	return report, nil
}

// Snapshot deep-copies the current state for read-only consumers.
func (s *Simulation) Snapshot() Snapshot {
	return Snapshot{
		Step:     s.step,
		Lattice:  s.lat.Clone(),
		Energies: s.lat.TotalEnergy(),
		Tension:  s.lat.InformationalTension(s.engine.Coupling()),
		Stats:    s.lat.Statistics(),
	}
}

// Reset rebuilds the lattice from config, clears the detector history, the
// snapshot ring, and the step counter. Bookmarks survive a reset.
func (s *Simulation) Reset() error {
	lat, err := buildLattice(s.cfg)
	if err != nil {
		return err
	}
	s.lat = lat
	s.step = 0
	s.engine.Detector().Reset()
	s.history = NewHistory(s.cfg.SnapshotHistory)
	s.analytics.Reset(lat)
	s.log.Info("simulation reset", zap.Ints("extents", s.cfg.Extents))
	return nil
}

// SeedAnomaly injects asymmetric energy at a node and its neighborhood.
func (s *Simulation) SeedAnomaly(nodeID int, field float64) error {
	return s.engine.PropagateAnomaly(s.lat, nodeID, field)
}

// Bookmark stores an independent copy of the current state under name,
// replacing any previous bookmark with that name.
func (s *Simulation) Bookmark(name string) *Bookmark {
	b := &Bookmark{
		Name:      name,
		CreatedAt: time.Now(),
		Snapshot:  s.Snapshot(),
	}
	s.bookmarks[name] = b
	return b
}

// Restore replaces the live lattice with a bookmark's copy. The bookmark is
// not mutated; restoring twice yields the same state both times. Detector
// history is discarded since it no longer describes the restored lattice.
func (s *Simulation) Restore(name string) error {
	b, ok := s.bookmarks[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrBookmarkNotFound, name)
	}
	s.lat = b.Snapshot.Lattice.Clone()
	s.step = b.Snapshot.Step
	s.engine.Detector().Reset()
	return nil
}

// ListBookmarks returns bookmarks sorted by name.
func (s *Simulation) ListBookmarks() []*Bookmark {
	out := make([]*Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// DeleteBookmark removes a bookmark if present.
func (s *Simulation) DeleteBookmark(name string) {
	delete(s.bookmarks, name)
}

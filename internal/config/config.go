package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults for the simulation kernel.
const (
	DefaultJ             = 1.0
	DefaultE0            = 1.0
	DefaultTolerance     = 1e-6
	DefaultHardFactor    = 100.0
	DefaultHistoryDepth  = 50
	DefaultPersistence   = 0.8
	DefaultVacuumEps     = 1e-6
	DefaultSwapThreshold = 0.05
	DefaultHBar          = 1.0
	DefaultSnapshots     = 100
	DefaultModeWindow    = 64
	DefaultRateWindow    = 32
)

// ErrInvalid wraps all configuration validation failures.
var ErrInvalid = errors.New("config: invalid value")

// Config is the process-explicit parameter set threaded through simulation
// construction. Multiple simulations (e.g. a validator's shadow copy) each
// carry their own.
type Config struct {
	// lattice geometry
	Extents  []int  `yaml:"extents"`  // 1-3 positive sizes
	Boundary string `yaml:"boundary"` // "open" or "periodic"
	Seed     int64  `yaml:"seed"`     // 0 = uniform +1 spins

	// physics
	J             float64 `yaml:"j"`
	E0            float64 `yaml:"e0"`
	Tolerance     float64 `yaml:"tolerance"`
	HardFactor    float64 `yaml:"hard_factor"`
	SwapThreshold float64 `yaml:"swap_threshold"`
	HBar          float64 `yaml:"hbar"`

	// anomaly detection
	HistoryDepth         int     `yaml:"history_depth"`
	PersistenceThreshold float64 `yaml:"persistence_threshold"`
	VacuumEps            float64 `yaml:"vacuum_eps"`

	// simulation bookkeeping
	SnapshotHistory int `yaml:"snapshot_history"`
	RateWindow      int `yaml:"rate_window"`
	Workers         int `yaml:"workers"`

	// instrumentation
	KX         int `yaml:"kx"`
	ModeWindow int `yaml:"mode_window"`
}

// DefaultConfig returns the reference configuration: a 16x16 periodic
// lattice at rest.
func DefaultConfig() *Config {
	return &Config{
		Extents:              []int{16, 16},
		Boundary:             "periodic",
		J:                    DefaultJ,
		E0:                   DefaultE0,
		Tolerance:            DefaultTolerance,
		HardFactor:           DefaultHardFactor,
		SwapThreshold:        DefaultSwapThreshold,
		HBar:                 DefaultHBar,
		HistoryDepth:         DefaultHistoryDepth,
		PersistenceThreshold: DefaultPersistence,
		VacuumEps:            DefaultVacuumEps,
		SnapshotHistory:      DefaultSnapshots,
		RateWindow:           DefaultRateWindow,
		Workers:              1,
		KX:                   1,
		ModeWindow:           DefaultModeWindow,
	}
}

// Validate rejects out-of-domain values before they reach the engine.
func (c *Config) Validate() error {
	if len(c.Extents) < 1 || len(c.Extents) > 3 {
		return fmt.Errorf("%w: need 1-3 extents, got %d", ErrInvalid, len(c.Extents))
	}
	for i, e := range c.Extents {
		if e < 1 {
			return fmt.Errorf("%w: extent[%d] = %d", ErrInvalid, i, e)
		}
	}
	if c.Boundary != "open" && c.Boundary != "periodic" && c.Boundary != "" {
		return fmt.Errorf("%w: boundary %q", ErrInvalid, c.Boundary)
	}
	if c.E0 <= 0 {
		return fmt.Errorf("%w: e0 must be > 0, got %g", ErrInvalid, c.E0)
	}
	if c.Tolerance <= 0 {
		return fmt.Errorf("%w: tolerance must be > 0, got %g", ErrInvalid, c.Tolerance)
	}
	if c.HardFactor <= 1 {
		return fmt.Errorf("%w: hard_factor must be > 1, got %g", ErrInvalid, c.HardFactor)
	}
	if math.IsNaN(c.J) || math.IsInf(c.J, 0) || c.J < 0 {
		return fmt.Errorf("%w: j must be finite and >= 0, got %g", ErrInvalid, c.J)
	}
	if c.SwapThreshold < 0 {
		return fmt.Errorf("%w: swap_threshold must be >= 0, got %g", ErrInvalid, c.SwapThreshold)
	}
	if c.HBar <= 0 {
		return fmt.Errorf("%w: hbar must be > 0, got %g", ErrInvalid, c.HBar)
	}
	if c.HistoryDepth < 1 {
		return fmt.Errorf("%w: history_depth must be >= 1, got %d", ErrInvalid, c.HistoryDepth)
	}
	if c.PersistenceThreshold <= 0 || c.PersistenceThreshold >= 1 {
		return fmt.Errorf("%w: persistence_threshold must be in (0,1), got %g", ErrInvalid, c.PersistenceThreshold)
	}
	if c.VacuumEps <= 0 {
		return fmt.Errorf("%w: vacuum_eps must be > 0, got %g", ErrInvalid, c.VacuumEps)
	}
	if c.SnapshotHistory < 1 {
		return fmt.Errorf("%w: snapshot_history must be >= 1, got %d", ErrInvalid, c.SnapshotHistory)
	}
	if c.KX < 0 {
		return fmt.Errorf("%w: kx must be >= 0, got %d", ErrInvalid, c.KX)
	}
	if c.ModeWindow < 1 {
		return fmt.Errorf("%w: mode_window must be >= 1, got %d", ErrInvalid, c.ModeWindow)
	}
	return nil
}

// Load reads a yaml config over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	cp.Extents = append([]int(nil), c.Extents...)
	return &cp
}

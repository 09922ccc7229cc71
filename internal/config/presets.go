package config

// Presets are named reference configurations. The first three mirror the
// engine's benchmark scenarios; the rest are convenient starting points.
var Presets = map[string]*Config{
	"vacuum": {
		Extents: []int{8, 8}, Boundary: "open",
		J: 1.0, E0: 1.0, Tolerance: DefaultTolerance, HardFactor: DefaultHardFactor,
		SwapThreshold: DefaultSwapThreshold, HBar: DefaultHBar,
		HistoryDepth: DefaultHistoryDepth, PersistenceThreshold: DefaultPersistence,
		VacuumEps: DefaultVacuumEps, SnapshotHistory: DefaultSnapshots,
		RateWindow: DefaultRateWindow, Workers: 1, KX: 1, ModeWindow: DefaultModeWindow,
	},
	"seed": {
		Extents: []int{16, 16}, Boundary: "periodic",
		J: 1.0, E0: 1.0, Tolerance: DefaultTolerance, HardFactor: DefaultHardFactor,
		SwapThreshold: DefaultSwapThreshold, HBar: DefaultHBar,
		HistoryDepth: 50, PersistenceThreshold: 0.8,
		VacuumEps: DefaultVacuumEps, SnapshotHistory: DefaultSnapshots,
		RateWindow: DefaultRateWindow, Workers: 1, KX: 1, ModeWindow: DefaultModeWindow,
	},
	"photon": {
		Extents: []int{32}, Boundary: "periodic", Seed: 9,
		J: 1.0, E0: 1.0, Tolerance: DefaultTolerance, HardFactor: DefaultHardFactor,
		SwapThreshold: DefaultSwapThreshold, HBar: DefaultHBar,
		HistoryDepth: DefaultHistoryDepth, PersistenceThreshold: DefaultPersistence,
		VacuumEps: DefaultVacuumEps, SnapshotHistory: 256,
		RateWindow: DefaultRateWindow, Workers: 1, KX: 2, ModeWindow: 128,
	},
	"disorder": {
		Extents: []int{24, 24}, Boundary: "periodic", Seed: 42,
		J: 1.5, E0: 1.0, Tolerance: DefaultTolerance, HardFactor: DefaultHardFactor,
		SwapThreshold: 0.02, HBar: DefaultHBar,
		HistoryDepth: DefaultHistoryDepth, PersistenceThreshold: DefaultPersistence,
		VacuumEps: DefaultVacuumEps, SnapshotHistory: DefaultSnapshots,
		RateWindow: DefaultRateWindow, Workers: 4, KX: 1, ModeWindow: DefaultModeWindow,
	},
	"bulk3d": {
		Extents: []int{12, 12, 12}, Boundary: "periodic", Seed: 7,
		J: 1.0, E0: 1.0, Tolerance: DefaultTolerance, HardFactor: DefaultHardFactor,
		SwapThreshold: DefaultSwapThreshold, HBar: DefaultHBar,
		HistoryDepth: DefaultHistoryDepth, PersistenceThreshold: DefaultPersistence,
		VacuumEps: DefaultVacuumEps, SnapshotHistory: 50,
		RateWindow: DefaultRateWindow, Workers: 4, KX: 1, ModeWindow: DefaultModeWindow,
	},
}

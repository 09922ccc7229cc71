package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) error {
	t.Helper()
	return os.WriteFile(path, []byte(content), 0644)
}

func TestDefaultConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())
}

func TestPresetsAreValid(t *testing.T) {
	for name, cfg := range Presets {
		require.NoError(t, cfg.Validate(), "preset %q", name)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no extents", func(c *Config) { c.Extents = nil }},
		{"too many extents", func(c *Config) { c.Extents = []int{2, 2, 2, 2} }},
		{"zero extent", func(c *Config) { c.Extents = []int{16, 0} }},
		{"bad boundary", func(c *Config) { c.Boundary = "klein-bottle" }},
		{"zero e0", func(c *Config) { c.E0 = 0 }},
		{"negative tolerance", func(c *Config) { c.Tolerance = -1e-6 }},
		{"hard factor at one", func(c *Config) { c.HardFactor = 1 }},
		{"negative j", func(c *Config) { c.J = -1 }},
		{"negative swap threshold", func(c *Config) { c.SwapThreshold = -0.1 }},
		{"zero hbar", func(c *Config) { c.HBar = 0 }},
		{"zero history depth", func(c *Config) { c.HistoryDepth = 0 }},
		{"persistence at one", func(c *Config) { c.PersistenceThreshold = 1 }},
		{"zero vacuum eps", func(c *Config) { c.VacuumEps = 0 }},
		{"zero snapshot history", func(c *Config) { c.SnapshotHistory = 0 }},
		{"negative kx", func(c *Config) { c.KX = -1 }},
		{"zero mode window", func(c *Config) { c.ModeWindow = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			require.ErrorIs(t, cfg.Validate(), ErrInvalid)
		})
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extents = []int{12, 12, 12}
	cfg.Boundary = "open"
	cfg.J = 1.5
	cfg.KX = 3

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}

func TestLoadFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, writeFile(t, path, "extents: [4, 4]\nj: 2.0\n"))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []int{4, 4}, cfg.Extents)
	require.Equal(t, 2.0, cfg.J)
	require.Equal(t, DefaultTolerance, cfg.Tolerance)
	require.Equal(t, DefaultSwapThreshold, cfg.SwapThreshold)
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, writeFile(t, path, "e0: -5\n"))
	_, err := Load(path)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestCloneIsIndependent(t *testing.T) {
	cfg := DefaultConfig()
	cp := cfg.Clone()
	cp.Extents[0] = 99
	cp.J = 7

	require.Equal(t, 16, cfg.Extents[0])
	require.Equal(t, DefaultJ, cfg.J)
}

package scenario

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamesAreSorted(t *testing.T) {
	require.Equal(t, []string{"photon", "seed", "vacuum"}, Names())
}

func TestDescribe(t *testing.T) {
	desc, ok := Describe("vacuum")
	require.True(t, ok)
	require.NotEmpty(t, desc)

	_, ok = Describe("warp-drive")
	require.False(t, ok)
}

func TestRunUnknownScenario(t *testing.T) {
	_, err := Run("warp-drive", nil)
	require.Error(t, err)
}

func TestScenariosPass(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			res, err := Run(name, nil)
			require.NoError(t, err)
			require.True(t, res.Passed, "details: %s", res.Details)
			require.Equal(t, name, res.Name)
			require.NotNil(t, res.Simulation)
		})
	}
}

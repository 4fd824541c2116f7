package pktsim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newLinkModel(t *testing.T, nc *NetCfg) *LinkModel {
	t.Helper()
	topo, err := CreateTopology(nc, nil)
	require.NoError(t, err)
	lm, err := CreateLinkModel(topo, nc.Params.PropDelay, nc.Params.DropProb, rand.NewSource(7))
	require.NoError(t, err)
	return lm
}

func TestTransmissionDelay(t *testing.T) {
	nc := twoHopCfg(0)
	nc.AddLink("R1", "A", 4e6)
	lm := newLinkModel(t, nc)

	assert.Equal(t, 2048.0/1e6, lm.TransmissionDelay("A", "R1", 2048))
	assert.Equal(t, 2048.0/4e6, lm.TransmissionDelay("R1", "A", 2048))
	assert.InDelta(t, 0.003048, lm.HopDelay("A", "R1", 2048), 1e-12)
}

func TestUndeclaredHopUsesDefaultCapacity(t *testing.T) {
	nc := twoHopCfg(0)
	nc.Params.DefaultCapacity = 2e6
	lm := newLinkModel(t, nc)

	assert.Equal(t, 2e6, lm.Capacity("B", "A"))
	assert.InDelta(t, 0.001024+0.001, lm.HopDelay("B", "A", 2048), 1e-12)
}

func TestDropProbabilityExtremes(t *testing.T) {
	never := newLinkModel(t, twoHopCfg(0))
	always := newLinkModel(t, twoHopCfg(1))

	for idx := 0; idx < 1000; idx++ {
		delay, dropped := never.Traverse("A", "R1", 2048)
		assert.False(t, dropped)
		assert.InDelta(t, 0.003048, delay, 1e-12)

		_, dropped = always.Traverse("A", "R1", 2048)
		assert.True(t, dropped)
	}
}

func TestDropFrequency(t *testing.T) {
	lm := newLinkModel(t, twoHopCfg(0.3))

	drops := 0
	trials := 20000
	for idx := 0; idx < trials; idx++ {
		if _, dropped := lm.Traverse("A", "R1", 2048); dropped {
			drops += 1
		}
	}
	assert.InDelta(t, 0.3, float64(drops)/float64(trials), 0.02)
}

func TestCreateLinkModelValidates(t *testing.T) {
	topo, err := CreateTopology(twoHopCfg(0), nil)
	require.NoError(t, err)

	for _, p := range []float64{-0.1, 1.1, math.NaN()} {
		_, err := CreateLinkModel(topo, 0.001, p, rand.NewSource(1))
		var cfgError *ConfigurationError
		require.True(t, errors.As(err, &cfgError), "p=%v", p)
		assert.Equal(t, "params.dropprob", cfgError.Field)
	}

	_, err = CreateLinkModel(topo, -1, 0.5, rand.NewSource(1))
	assert.ErrorContains(t, err, "params.propdelay")
}

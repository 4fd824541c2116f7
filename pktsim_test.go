package pktsim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runExperiment(t *testing.T, nc *NetCfg) *Experiment {
	t.Helper()
	exp, err := BuildExperiment(nc, nil, nil)
	require.NoError(t, err)
	require.NoError(t, exp.Run())
	return exp
}

func TestOnePacketDelay(t *testing.T) {
	exp := runExperiment(t, onePacketCfg(0))

	assert.Equal(t, 1, exp.Emitted())
	delays := exp.Stats.Delays("A", "B")
	require.Len(t, delays, 1)
	assert.InDelta(t, 0.006096, delays[0], 1e-12)
	assert.Equal(t, 0, exp.Stats.Drops("A", "B"))
	assert.Equal(t, 1.5, exp.Engine.Now())
}

func TestOnePacketCertainDrop(t *testing.T) {
	exp := runExperiment(t, onePacketCfg(1))

	assert.Empty(t, exp.Stats.Delays("A", "B"))
	assert.Equal(t, 1, exp.Stats.Drops("A", "B"))
	assert.Equal(t, []int{0}, exp.Stats.QueueSamples("R1", "A"))
}

func TestCertainDropEverywhere(t *testing.T) {
	nc := loadCodecn(t)
	nc.Params.DropProb = 1
	nc.Params.Horizon = 2
	exp := runExperiment(t, nc)

	drops := 0
	for _, fs := range exp.Report().Flows {
		assert.Equal(t, 0, fs.Count, fs.Src+"->"+fs.Dst)
		drops += fs.Drops
	}
	assert.Equal(t, exp.Emitted(), drops)
}

func TestNoDropsWithZeroProbability(t *testing.T) {
	nc := loadCodecn(t)
	nc.Params.DropProb = 0
	nc.Params.Horizon = 5
	exp := runExperiment(t, nc)

	delivered := 0
	for _, fs := range exp.Report().Flows {
		assert.Equal(t, 0, fs.Drops)
		delivered += fs.Count
	}
	assert.Equal(t, exp.Emitted(), delivered)
	assert.Greater(t, delivered, 0)
}

func TestSingleHopDeliveredFraction(t *testing.T) {
	nc := CreateNetCfg("onehop")
	nc.AddEndpoint("A", "B")
	nc.AddLink("A", "B", 1e9)
	nc.AddRoute("A", "B", "B")
	nc.AddFlow("A", "B", 1000)
	nc.Params.DropProb = 0.2
	nc.Params.Horizon = 10
	nc.Params.Seed = 42
	exp := runExperiment(t, nc)

	fs := exp.Stats.FlowStats("A", "B")
	assert.Equal(t, exp.Emitted(), fs.Count+fs.Drops)
	assert.InDelta(t, 0.8, fs.Delivered, 0.02)
}

func TestCodecnRun(t *testing.T) {
	nc := loadCodecn(t)
	nc.Params.Horizon = 10
	exp := runExperiment(t, nc)

	rep := exp.Report()
	assert.Equal(t, "codecn", rep.Name)
	assert.Len(t, rep.Flows, 30)

	sent := 0
	for _, fs := range rep.Flows {
		sent += fs.Count + fs.Drops
		if fs.Count > 0 {
			// every path has two hops of at least 2048/3e6 + 0.001 seconds each
			assert.GreaterOrEqual(t, fs.Mean, 2*(2048/3e6+0.001))
			assert.GreaterOrEqual(t, fs.Variance, 0.0)
		}
	}
	assert.Equal(t, exp.Emitted(), sent)
	assert.NotEmpty(t, rep.Queues)
	for _, qs := range rep.Queues {
		assert.GreaterOrEqual(t, qs.Mean, 0.0)
	}
}

func TestRunsAreReproducible(t *testing.T) {
	build := func(seed uint64) *Experiment {
		nc := loadCodecn(t)
		nc.Params.Horizon = 3
		nc.Params.Seed = seed
		return runExperiment(t, nc)
	}

	first, second := build(7), build(7)
	assert.Equal(t, first.Emitted(), second.Emitted())
	assert.Equal(t, first.Stats.Delays("A", "D"), second.Stats.Delays("A", "D"))
	assert.Equal(t, first.Stats.QueueSamples("R1", "A"), second.Stats.QueueSamples("R1", "A"))

	other := build(8)
	assert.NotEqual(t, first.Stats.Delays("A", "D"), other.Stats.Delays("A", "D"))
}

func TestZeroRateFlowIsSkipped(t *testing.T) {
	nc := twoHopCfg(0)
	nc.AddFlow("A", "B", 0)
	exp := runExperiment(t, nc)

	assert.Empty(t, exp.Sources)
	assert.Equal(t, 0, exp.Emitted())
	assert.Empty(t, exp.Report().Flows)
}

func TestBuildExperimentConfigErrors(t *testing.T) {
	cases := []struct {
		name   string
		modify func(nc *NetCfg)
	}{
		{"negative rate", func(nc *NetCfg) { nc.AddFlow("A", "B", -1) }},
		{"unknown node", func(nc *NetCfg) { nc.AddFlow("A", "Q", 1) }},
		{"router endpoint", func(nc *NetCfg) { nc.AddFlow("A", "R1", 1) }},
		{"self flow", func(nc *NetCfg) { nc.AddFlow("A", "A", 1) }},
		{"repeated flow", func(nc *NetCfg) {
			nc.AddFlow("A", "B", 1)
			nc.AddFlow("A", "B", 2)
		}},
		{"zero capacity", func(nc *NetCfg) { nc.AddLink("B", "R1", 0) }},
		{"zero horizon", func(nc *NetCfg) { nc.Params.Horizon = 0 }},
		{"drop probability", func(nc *NetCfg) { nc.Params.DropProb = 2 }},
		{"engine", func(nc *NetCfg) { nc.Params.Engine = "calendar" }},
		{"rng", func(nc *NetCfg) { nc.Params.Rng = "mt" }},
	}
	for _, c := range cases {
		nc := twoHopCfg(0)
		c.modify(nc)

		_, err := BuildExperiment(nc, nil, nil)
		var cfgError *ConfigurationError
		assert.True(t, errors.As(err, &cfgError), c.name)
	}
}

func TestBuildExperimentReportsAllFlowErrors(t *testing.T) {
	nc := twoHopCfg(0)
	nc.AddFlow("A", "B", -1)
	nc.AddFlow("A", "Q", 1)

	_, err := BuildExperiment(nc, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive rate")
	assert.Contains(t, err.Error(), "unknown node")
}

func TestBuildExperimentUnroutableFlow(t *testing.T) {
	nc := twoHopCfg(0)
	nc.AddFlow("B", "A", 1)

	_, err := BuildExperiment(nc, nil, nil)
	var rtErr *RoutingError
	require.True(t, errors.As(err, &rtErr))
	assert.Equal(t, "B", rtErr.Node)
}

func TestExperimentPath(t *testing.T) {
	exp, err := BuildExperiment(loadCodecn(t), nil, nil)
	require.NoError(t, err)

	route, err := exp.Path("C", "E")
	require.NoError(t, err)
	assert.Equal(t, []string{"C", "R3", "E"}, route)
}

func TestExperimentRunsOnce(t *testing.T) {
	exp := runExperiment(t, onePacketCfg(0))
	assert.Error(t, exp.Run())
}

func TestEvtmEngineExperiment(t *testing.T) {
	nc := loadCodecn(t)
	nc.Params.Engine = EvtmEngine
	nc.Params.DropProb = 0
	nc.Params.Horizon = 2
	exp := runExperiment(t, nc)

	delivered := 0
	for _, fs := range exp.Report().Flows {
		delivered += fs.Count
	}
	assert.Greater(t, delivered, 0)
	assert.Equal(t, exp.Emitted(), delivered)
}

func TestRngStreamExperiment(t *testing.T) {
	build := func(seed uint64) *Experiment {
		nc := loadCodecn(t)
		nc.Params.Rng = RngStreamRng
		nc.Params.Horizon = 3
		nc.Params.Seed = seed
		return runExperiment(t, nc)
	}

	first := build(7)
	sent := 0
	for _, fs := range first.Report().Flows {
		sent += fs.Count + fs.Drops
	}
	assert.Greater(t, sent, 0)
	assert.Equal(t, first.Emitted(), sent)

	second := build(7)
	assert.Equal(t, first.Emitted(), second.Emitted())
	assert.Equal(t, first.Stats.Delays("A", "D"), second.Stats.Delays("A", "D"))
	assert.Equal(t, first.Stats.QueueSamples("R1", "A"), second.Stats.QueueSamples("R1", "A"))

	other := build(8)
	assert.NotEqual(t, first.Stats.Delays("A", "D"), other.Stats.Delays("A", "D"))
}

func TestRngStreamSeedOutOfRange(t *testing.T) {
	nc := twoHopCfg(0)
	nc.Params.Rng = RngStreamRng
	nc.Params.Seed = maxRngStreamSeed

	_, err := BuildExperiment(nc, nil, nil)
	var cfgError *ConfigurationError
	require.True(t, errors.As(err, &cfgError))
	assert.Equal(t, "params.seed", cfgError.Field)
}

func TestSetupLogNamesChosenEngine(t *testing.T) {
	nc := twoHopCfg(0)
	nc.Params.Engine = ""

	var buf bytes.Buffer
	exp, err := BuildExperiment(nc, NewLoggerTo(&buf, LogLevelInfo, ""), nil)
	require.NoError(t, err)
	assert.Equal(t, HeapEngine, exp.Engine.Kind())
	assert.Contains(t, buf.String(), "engine heap")
}

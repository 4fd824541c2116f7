package pktsim

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTraceOfDeliveredPacket(t *testing.T) {
	tm := CreateTraceManager("twohop", true)
	exp, err := BuildExperiment(onePacketCfg(0), nil, tm)
	require.NoError(t, err)
	require.NoError(t, exp.Run())

	assert.Equal(t, map[int]string{1: "A->B"}, tm.FlowNames)
	traces := tm.Traces[1]
	require.Len(t, traces, 3)

	ops := []string{}
	for _, trace := range traces {
		ops = append(ops, trace.Op)
		assert.Equal(t, 1, trace.PcktID)
	}
	assert.Equal(t, []string{HopOp, HopOp, DeliverOp}, ops)
	assert.Equal(t, "R1", traces[0].To)
	assert.InDelta(t, 1.006096, traces[2].Time, 1e-12)
	assert.InDelta(t, 0.006096, traces[2].Delay, 1e-12)
}

func TestTraceOfDroppedPacket(t *testing.T) {
	tm := CreateTraceManager("twohop", true)
	exp, err := BuildExperiment(onePacketCfg(1), nil, tm)
	require.NoError(t, err)
	require.NoError(t, exp.Run())

	require.Equal(t, 1, tm.Len())
	drop := tm.Traces[1][0]
	assert.Equal(t, DropOp, drop.Op)
	assert.Equal(t, "A", drop.From)
	assert.Equal(t, "R1", drop.To)
	assert.Equal(t, 1.0, drop.Time)
}

func TestTraceWriteAndRead(t *testing.T) {
	tm := CreateTraceManager("twohop", true)
	exp, err := BuildExperiment(onePacketCfg(0), nil, tm)
	require.NoError(t, err)
	require.NoError(t, exp.Run())

	for _, name := range []string{"trace.yaml", "trace.json"} {
		filename := filepath.Join(t.TempDir(), name)
		require.NoError(t, tm.WriteToFile(filename))

		loaded, err := ReadTraceFile(filename)
		require.NoError(t, err)
		assert.Equal(t, tm, loaded, name)
	}
}

func TestInactiveTraceManager(t *testing.T) {
	tm := CreateTraceManager("off", false)
	tm.AddFlow(1, "A->B")
	tm.AddTrace(1, PcktTrace{PcktID: 1, Op: HopOp})
	assert.Equal(t, 0, tm.Len())

	filename := filepath.Join(t.TempDir(), "trace.yaml")
	require.NoError(t, tm.WriteToFile(filename))
	_, err := os.Stat(filename)
	assert.True(t, os.IsNotExist(err))

	var none *TraceManager
	assert.False(t, none.Active())
	none.AddTrace(1, PcktTrace{})
	assert.Equal(t, 0, none.Len())
}

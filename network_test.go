package pktsim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
)

func newNetwork(t *testing.T, nc *NetCfg, traceMgr *TraceManager) (*Network, *StatisticsCollector) {
	t.Helper()
	topo, err := CreateTopology(nc, nil)
	require.NoError(t, err)
	table, err := BuildRoutingTable(nc, topo)
	require.NoError(t, err)
	links, err := CreateLinkModel(topo, nc.Params.PropDelay, nc.Params.DropProb, rand.NewSource(5))
	require.NoError(t, err)

	stats := CreateStatisticsCollector()
	return CreateNetwork(CreatePathResolver(topo, table), links, stats, traceMgr, nil), stats
}

func TestSendPacketSamplesOccupancy(t *testing.T) {
	net, stats := newNetwork(t, twoHopCfg(0), nil)

	for idx, emitted := range []float64{0, 0.001, 1.0} {
		pckt := &Packet{PcktID: idx + 1, Src: "A", Dst: "B", Emitted: emitted, SizeBits: 2048}
		require.NoError(t, net.SendPacket(pckt))
	}

	// the second packet finds the first still on each hop; the third finds both gone
	assert.Equal(t, []int{0, 1, 0}, stats.QueueSamples("R1", "A"))
	assert.Equal(t, []int{0, 1, 0}, stats.QueueSamples("B", "R1"))

	delays := stats.Delays("A", "B")
	require.Len(t, delays, 3)
	for _, d := range delays {
		assert.InDelta(t, 0.006096, d, 1e-12)
	}
	assert.Equal(t, 0, stats.Drops("A", "B"))
}

func TestSendPacketDropSamplesDropHop(t *testing.T) {
	net, stats := newNetwork(t, twoHopCfg(1), nil)

	require.NoError(t, net.SendPacket(&Packet{PcktID: 1, Src: "A", Dst: "B", Emitted: 0.5, SizeBits: 2048}))

	assert.Empty(t, stats.Delays("A", "B"))
	assert.Equal(t, 1, stats.Drops("A", "B"))
	assert.Equal(t, []int{0}, stats.QueueSamples("R1", "A"))
	assert.Empty(t, stats.QueueSamples("B", "R1"))
}

func TestSendPacketUnroutable(t *testing.T) {
	nc := twoHopCfg(0)
	nc.AddEndpoint("C")
	net, stats := newNetwork(t, nc, nil)

	err := net.SendPacket(&Packet{PcktID: 1, Src: "A", Dst: "C", Emitted: 0, SizeBits: 2048})
	var rtErr *RoutingError
	require.True(t, errors.As(err, &rtErr))
	assert.Empty(t, stats.AllFlowStats())
}

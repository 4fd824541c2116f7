package pktsim

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// twoHopCfg describes endpoints A and B joined through router R1, both links at 1 Mb/s
func twoHopCfg(dropProb float64) *NetCfg {
	nc := CreateNetCfg("twohop")
	nc.AddEndpoint("A", "B")
	nc.AddRouter("R1")
	nc.AddLink("A", "R1", 1_000_000)
	nc.AddLink("R1", "B", 1_000_000)
	nc.AddRoute("A", "B", "R1")
	nc.AddRoute("R1", "B", "B")
	nc.Params.DropProb = dropProb
	return nc
}

// onePacketCfg adds to twoHopCfg a flow A->B emitting exactly one packet, at time 1
func onePacketCfg(dropProb float64) *NetCfg {
	nc := twoHopCfg(dropProb)
	nc.Traffic = append(nc.Traffic, FlowDesc{Src: "A", Dst: "B", Rate: 1, Model: ConstModel})
	nc.Params.Horizon = 1.5
	return nc
}

func loadCodecn(t *testing.T) *NetCfg {
	t.Helper()
	nc, err := LoadNetCfg(filepath.Join("testdata", "codecn.yaml"))
	require.NoError(t, err)
	return nc
}

// packetLog is a PacketSender that keeps the packets handed to it
type packetLog struct {
	pckts []*Packet
	err   error
}

func (pl *packetLog) SendPacket(pckt *Packet) error {
	pl.pckts = append(pl.pckts, pckt)
	return pl.err
}

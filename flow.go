package pktsim

// flow.go holds the traffic flows and the sources that emit their packets

import (
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// Interarrival models
const (
	ExponModel = "expon"
	ConstModel = "const"
)

// Flow is one (source, destination) pair of the traffic matrix
type Flow struct {
	FlowID int
	Src    string
	Dst    string
	Rate   float64 // packets per second
	Model  string
}

// Name identifies the flow in logs and traces
func (f *Flow) Name() string {
	return fmt.Sprintf("%s->%s", f.Src, f.Dst)
}

// Packet is created by an emission and lives only while its delivery is computed
type Packet struct {
	PcktID   int
	FlowID   int
	Src      string
	Dst      string
	Emitted  float64 // simulation time of emission, seconds
	SizeBits int
}

// PacketSender carries a packet from its source toward its destination
type PacketSender interface {
	SendPacket(pckt *Packet) error
}

// canonicalModel maps the accepted spellings of an interarrival model to its constant
func canonicalModel(model string) (string, bool) {
	switch model {
	case "", "expon", "exp", "exponential":
		return ExponModel, true
	case "const", "constant":
		return ConstModel, true
	}
	return "", false
}

// TrafficSource emits the packets of one flow
type TrafficSource struct {
	flow         Flow
	sizeBits     int
	sender       PacketSender
	interarrival distuv.Exponential
	pcktIDs      *int // shared across the sources of an experiment
	emitted      int
}

// NewTrafficSource is a constructor.  A flow whose rate is not a positive finite number,
// or whose interarrival model is unknown, is a configuration error
func NewTrafficSource(flow Flow, sizeBits int, src rand.Source, sender PacketSender, pcktIDs *int) (*TrafficSource, error) {
	if !(flow.Rate > 0) || math.IsInf(flow.Rate, 1) {
		return nil, cfgErr("traffic", "flow %s has non-positive rate %v", flow.Name(), flow.Rate)
	}
	model, ok := canonicalModel(flow.Model)
	if !ok {
		return nil, cfgErr("traffic", "flow %s has unknown interarrival model %q", flow.Name(), flow.Model)
	}
	if sizeBits <= 0 {
		return nil, cfgErr("params.packetsize", "must be positive, got %d", sizeBits)
	}
	flow.Model = model

	if pcktIDs == nil {
		pcktIDs = new(int)
	}

	ts := new(TrafficSource)
	ts.flow = flow
	ts.sizeBits = sizeBits
	ts.sender = sender
	ts.interarrival = distuv.Exponential{Rate: flow.Rate, Src: src}
	ts.pcktIDs = pcktIDs
	return ts, nil
}

// Flow returns the flow the source emits for
func (ts *TrafficSource) Flow() Flow {
	return ts.flow
}

// Emitted returns the number of packets emitted so far
func (ts *TrafficSource) Emitted() int {
	return ts.emitted
}

// NextInterval draws the time until the next emission
func (ts *TrafficSource) NextInterval() float64 {
	if ts.flow.Model == ConstModel {
		return 1.0 / ts.flow.Rate
	}
	return ts.interarrival.Rand()
}

// Emit creates one packet stamped with time now and sends it
func (ts *TrafficSource) Emit(now float64) error {
	*ts.pcktIDs += 1
	ts.emitted += 1
	pckt := &Packet{
		PcktID:   *ts.pcktIDs,
		FlowID:   ts.flow.FlowID,
		Src:      ts.flow.Src,
		Dst:      ts.flow.Dst,
		Emitted:  now,
		SizeBits: ts.sizeBits,
	}
	if ts.sender == nil {
		return nil
	}
	return ts.sender.SendPacket(pckt)
}

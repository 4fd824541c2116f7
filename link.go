package pktsim

// link.go computes the delay a packet sees crossing one hop and
// samples whether the hop loses it.

import (
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// LinkModel applies per-hop delay and loss
type LinkModel struct {
	topo      *Topology
	propDelay float64          // seconds added to every hop
	dropProb  float64          // probability any one hop loses the packet
	drop      distuv.Bernoulli // one draw per hop
}

// CreateLinkModel is a constructor.  The drop probability must lie in [0,1]
// and the propagation delay must be non-negative
func CreateLinkModel(topo *Topology, propDelay, dropProb float64, src rand.Source) (*LinkModel, error) {
	errs := []error{}
	if math.IsNaN(dropProb) || dropProb < 0 || dropProb > 1 {
		errs = append(errs, cfgErr("params.dropprob", "must lie in [0,1], got %v", dropProb))
	}
	if math.IsNaN(propDelay) || propDelay < 0 || math.IsInf(propDelay, 1) {
		errs = append(errs, cfgErr("params.propdelay", "must be non-negative and finite, got %v", propDelay))
	}
	if err := ReportErrs(errs); err != nil {
		return nil, err
	}

	lm := new(LinkModel)
	lm.topo = topo
	lm.propDelay = propDelay
	lm.dropProb = dropProb
	lm.drop = distuv.Bernoulli{P: dropProb, Src: src}
	return lm, nil
}

// Capacity returns the bits per second of hop from-to, the default capacity if undeclared
func (lm *LinkModel) Capacity(from, to string) float64 {
	return lm.topo.LinkCapacity(from, to)
}

// TransmissionDelay is the time to put sizeBits onto hop from-to
func (lm *LinkModel) TransmissionDelay(from, to string, sizeBits int) float64 {
	return float64(sizeBits) / lm.Capacity(from, to)
}

// HopDelay is the transmission delay plus the propagation delay
func (lm *LinkModel) HopDelay(from, to string, sizeBits int) float64 {
	return lm.TransmissionDelay(from, to, sizeBits) + lm.propDelay
}

// PropDelay returns the per-hop propagation delay
func (lm *LinkModel) PropDelay() float64 {
	return lm.propDelay
}

// DropProb returns the per-hop drop probability
func (lm *LinkModel) DropProb() float64 {
	return lm.dropProb
}

// Traverse returns the delay of hop from-to for a packet of sizeBits, and
// whether the hop drops the packet.  Each call makes one independent drop draw.
func (lm *LinkModel) Traverse(from, to string, sizeBits int) (float64, bool) {
	delay := lm.HopDelay(from, to, sizeBits)
	dropped := lm.drop.Rand() == 1
	return delay, dropped
}

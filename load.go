package pktsim

// load.go estimates, from the traffic matrix and the routes alone, the packet rate
// offered to every hop and what queueing theory expects the hop to see.

import (
	"math"
	"strings"

	"golang.org/x/exp/slices"
)

// LinkLoad is the offered load on one directed hop
type LinkLoad struct {
	From     string
	To       string
	Rate     float64 // packets per second reaching the hop, after upstream drops
	Rho      float64 // utilization, Rate * packet size / capacity
	InFlight float64 // expected packets on the hop, Rate * hop delay

	// M/D/1 mean time in system, +Inf when Rho >= 1
	MD1Latency float64
}

// Saturated is true when the hop is offered at least as many bits as it can carry
func (ll *LinkLoad) Saturated() bool {
	return ll.Rho >= 1.0
}

// EstMD1Latency returns the mean time a packet of sizeBits spends in an M/D/1
// queue served at capacity bits per second with utilization rho: 1/mu + rho/(2 mu (1-rho))
func EstMD1Latency(rho float64, sizeBits int, capacity float64) float64 {
	if rho >= 1.0 {
		return math.Inf(1)
	}
	mu := capacity / float64(sizeBits)
	return 1.0/mu + rho/(2*mu*(1.0-rho))
}

// LinkLoads computes the load on every hop some flow's path crosses, sorted by
// sending node and then receiving node.  A hop's rate counts each flow's packets
// that survive the hops before it
func (exp *Experiment) LinkLoads() ([]LinkLoad, error) {
	sizeBits := exp.Cfg.Params.PacketSize
	survive := 1.0 - exp.Links.DropProb()

	rates := make(map[linkKey]float64)
	for _, src := range exp.Sources {
		flow := src.Flow()
		route, err := exp.Resolver.Resolve(flow.Src, flow.Dst)
		if err != nil {
			return nil, err
		}
		offered := flow.Rate
		for idx := 1; idx < len(route); idx++ {
			rates[linkKey{from: route[idx-1], to: route[idx]}] += offered
			offered *= survive
		}
	}

	loads := make([]LinkLoad, 0, len(rates))
	for key, rate := range rates {
		capacity := exp.Links.Capacity(key.from, key.to)
		rho := rate * float64(sizeBits) / capacity
		loads = append(loads, LinkLoad{
			From:       key.from,
			To:         key.to,
			Rate:       rate,
			Rho:        rho,
			InFlight:   rate * exp.Links.HopDelay(key.from, key.to, sizeBits),
			MD1Latency: EstMD1Latency(rho, sizeBits, capacity),
		})
	}
	slices.SortFunc(loads, func(a, b LinkLoad) int {
		if a.From != b.From {
			return strings.Compare(a.From, b.From)
		}
		return strings.Compare(a.To, b.To)
	})
	return loads, nil
}

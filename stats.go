package pktsim

// stats.go holds the StatisticsCollector, which records delay samples, drop counts
// and queue samples as packets cross the network.  Summary values (means, variances)
// are computed from the stored samples when asked for, never kept as running totals.

import (
	"math"
	"strings"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/stat"
)

// flowKey identifies a flow by its endpoints
type flowKey struct {
	src, dst string
}

// adjKey identifies a directed adjacency by the receiving node and the sending neighbor
type adjKey struct {
	node, from string
}

// StatisticsCollector owns all the aggregate state of a run
type StatisticsCollector struct {
	delays  map[flowKey][]float64
	drops   map[flowKey]int
	queues  map[adjKey][]int
	tracked []flowKey
}

// CreateStatisticsCollector is a constructor
func CreateStatisticsCollector() *StatisticsCollector {
	sc := new(StatisticsCollector)
	sc.delays = make(map[flowKey][]float64)
	sc.drops = make(map[flowKey]int)
	sc.queues = make(map[adjKey][]int)
	sc.tracked = make([]flowKey, 0)
	return sc
}

// TrackFlow makes the flow src-dst appear in reports even if it records nothing
func (sc *StatisticsCollector) TrackFlow(src, dst string) {
	key := flowKey{src: src, dst: dst}
	if slices.Contains(sc.tracked, key) {
		return
	}
	sc.tracked = append(sc.tracked, key)
}

// RecordDelay appends the end-to-end delay of a delivered packet of flow src-dst
func (sc *StatisticsCollector) RecordDelay(src, dst string, delay float64) {
	key := flowKey{src: src, dst: dst}
	sc.delays[key] = append(sc.delays[key], delay)
}

// RecordDrop counts one dropped packet of flow src-dst
func (sc *StatisticsCollector) RecordDrop(src, dst string) {
	sc.drops[flowKey{src: src, dst: dst}] += 1
}

// RecordQueueSample appends a queue sample taken at node for the hop from neighbor
func (sc *StatisticsCollector) RecordQueueSample(node, from string, value int) {
	key := adjKey{node: node, from: from}
	sc.queues[key] = append(sc.queues[key], value)
}

// Delays returns a copy of the delay samples of flow src-dst, in recording order
func (sc *StatisticsCollector) Delays(src, dst string) []float64 {
	return slices.Clone(sc.delays[flowKey{src: src, dst: dst}])
}

// Drops returns the drop count of flow src-dst
func (sc *StatisticsCollector) Drops(src, dst string) int {
	return sc.drops[flowKey{src: src, dst: dst}]
}

// QueueSamples returns a copy of the queue samples at node for the hop from neighbor
func (sc *StatisticsCollector) QueueSamples(node, from string) []int {
	return slices.Clone(sc.queues[adjKey{node: node, from: from}])
}

// FlowStats summarizes one flow
type FlowStats struct {
	Src       string
	Dst       string
	Count     int     // delivered packets
	Mean      float64 // mean delay, seconds
	Variance  float64 // population variance of delay, seconds^2
	Drops     int
	Delivered float64 // fraction of packets delivered, NaN when none were sent
}

// QueueStats summarizes the queue samples of one directed adjacency
type QueueStats struct {
	Node     string
	Neighbor string
	Samples  int
	Mean     float64
}

// FlowStats computes the summary of flow src-dst
func (sc *StatisticsCollector) FlowStats(src, dst string) FlowStats {
	key := flowKey{src: src, dst: dst}
	samples := sc.delays[key]
	fs := FlowStats{Src: src, Dst: dst, Count: len(samples), Drops: sc.drops[key]}

	switch {
	case len(samples) == 1:
		fs.Mean = samples[0]
	case len(samples) > 1:
		fs.Mean, fs.Variance = stat.PopMeanVariance(samples, nil)
	}

	sent := fs.Count + fs.Drops
	if sent > 0 {
		fs.Delivered = float64(fs.Count) / float64(sent)
	} else {
		fs.Delivered = math.NaN()
	}
	return fs
}

// AllFlowStats summarizes every flow that was tracked or recorded anything,
// sorted by source and then destination
func (sc *StatisticsCollector) AllFlowStats() []FlowStats {
	keys := slices.Clone(sc.tracked)
	add := func(key flowKey) {
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	for key := range sc.delays {
		add(key)
	}
	for key := range sc.drops {
		add(key)
	}

	slices.SortFunc(keys, func(a, b flowKey) int {
		if a.src != b.src {
			return strings.Compare(a.src, b.src)
		}
		return strings.Compare(a.dst, b.dst)
	})

	rtn := make([]FlowStats, 0, len(keys))
	for _, key := range keys {
		rtn = append(rtn, sc.FlowStats(key.src, key.dst))
	}
	return rtn
}

// QueueStats summarizes every adjacency with samples, sorted by node and then neighbor
func (sc *StatisticsCollector) QueueStats() []QueueStats {
	keys := make([]adjKey, 0, len(sc.queues))
	for key := range sc.queues {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b adjKey) int {
		if a.node != b.node {
			return strings.Compare(a.node, b.node)
		}
		return strings.Compare(a.from, b.from)
	})

	rtn := make([]QueueStats, 0, len(keys))
	for _, key := range keys {
		samples := sc.queues[key]
		qs := QueueStats{Node: key.node, Neighbor: key.from, Samples: len(samples)}
		if len(samples) > 0 {
			vals := make([]float64, len(samples))
			for idx, v := range samples {
				vals[idx] = float64(v)
			}
			qs.Mean = stat.Mean(vals, nil)
		}
		rtn = append(rtn, qs)
	}
	return rtn
}

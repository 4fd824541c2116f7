package pktsim

// occupancy.go tracks which packets are on each directed link, so that a
// queue sample reports how many packets a new arrival finds ahead of it.

// interval is the span [start, end) a packet occupies a link
type interval struct {
	start, end float64
}

// linkQueue holds the occupancy intervals of one directed link
type linkQueue struct {
	inQ []interval
}

// prune drops the intervals that finished at or before time t
func (lq *linkQueue) prune(t float64) {
	kept := lq.inQ[:0]
	for _, iv := range lq.inQ {
		if iv.end > t {
			kept = append(kept, iv)
		}
	}
	lq.inQ = kept
}

// occupancy counts the intervals containing t
func (lq *linkQueue) occupancy(t float64) int {
	cnt := 0
	for _, iv := range lq.inQ {
		if iv.start <= t && t < iv.end {
			cnt += 1
		}
	}
	return cnt
}

// LinkQueues holds a linkQueue for every hop a packet has crossed
type LinkQueues struct {
	queues map[linkKey]*linkQueue
	clock  float64
}

// CreateLinkQueues is a constructor
func CreateLinkQueues() *LinkQueues {
	return &LinkQueues{queues: make(map[linkKey]*linkQueue)}
}

// Advance tells the tracker that no packet will arrive anywhere before time t,
// letting it forget intervals that have finished.  Time never moves backward.
func (lqs *LinkQueues) Advance(t float64) {
	if t <= lqs.clock {
		return
	}
	lqs.clock = t
	for _, lq := range lqs.queues {
		lq.prune(t)
	}
}

// Arrive records a packet starting to cross hop from-to at time arrival and holding it
// for hold seconds.  It returns the number of other packets on the hop at the arrival.
func (lqs *LinkQueues) Arrive(from, to string, arrival, hold float64) int {
	key := linkKey{from: from, to: to}
	lq, present := lqs.queues[key]
	if !present {
		lq = &linkQueue{inQ: make([]interval, 0)}
		lqs.queues[key] = lq
	}
	depth := lq.occupancy(arrival)
	lq.inQ = append(lq.inQ, interval{start: arrival, end: arrival + hold})
	return depth
}

// InFlight returns the number of packets on hop from-to at time t
func (lqs *LinkQueues) InFlight(from, to string, t float64) int {
	lq, present := lqs.queues[linkKey{from: from, to: to}]
	if !present {
		return 0
	}
	return lq.occupancy(t)
}

package pktsim

// network.go carries one packet from its source to its destination, hop by hop,
// recording what happens to it

// Network ties path resolution, the link model, queue tracking and statistics
// together.  It implements PacketSender
type Network struct {
	resolver *PathResolver
	links    *LinkModel
	queues   *LinkQueues
	stats    *StatisticsCollector
	trace    *TraceManager
	logger   *Logger
}

// CreateNetwork is a constructor.  trace and logger may be nil
func CreateNetwork(resolver *PathResolver, links *LinkModel, stats *StatisticsCollector,
	trace *TraceManager, logger *Logger) *Network {
	return &Network{
		resolver: resolver,
		links:    links,
		queues:   CreateLinkQueues(),
		stats:    stats,
		trace:    trace,
		logger:   logger,
	}
}

// SendPacket resolves the packet's path and applies the link model at each hop,
// accumulating delay.  A queue sample is taken at every hop reached, including the
// hop that drops the packet.  The packet ends either delivered, with its delay recorded,
// or dropped, with one drop recorded.  Only a routing failure returns an error.
func (n *Network) SendPacket(pckt *Packet) error {
	route, err := n.resolver.Resolve(pckt.Src, pckt.Dst)
	if err != nil {
		return err
	}

	// packets are sent in emission order, so nothing arrives anywhere earlier than this
	n.queues.Advance(pckt.Emitted)

	delay := 0.0
	for idx := 1; idx < len(route); idx++ {
		from, to := route[idx-1], route[idx]
		arrival := pckt.Emitted + delay

		hopDelay, dropped := n.links.Traverse(from, to, pckt.SizeBits)
		depth := n.queues.Arrive(from, to, arrival, hopDelay)
		n.stats.RecordQueueSample(to, from, depth)

		if dropped {
			n.stats.RecordDrop(pckt.Src, pckt.Dst)
			n.logger.Debugf("packet %d of %s->%s dropped on %s-%s at %.6f",
				pckt.PcktID, pckt.Src, pckt.Dst, from, to, arrival)
			n.trace.AddTrace(pckt.FlowID, PcktTrace{Time: arrival, PcktID: pckt.PcktID,
				From: from, To: to, Op: DropOp, Depth: depth, Delay: delay})
			return nil
		}

		delay += hopDelay
		n.trace.AddTrace(pckt.FlowID, PcktTrace{Time: pckt.Emitted + delay, PcktID: pckt.PcktID,
			From: from, To: to, Op: HopOp, Depth: depth, Delay: delay})
	}

	n.stats.RecordDelay(pckt.Src, pckt.Dst, delay)
	n.trace.AddTrace(pckt.FlowID, PcktTrace{Time: pckt.Emitted + delay, PcktID: pckt.PcktID,
		To: pckt.Dst, Op: DeliverOp, Delay: delay})
	return nil
}

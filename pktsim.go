package pktsim

// pktsim.go assembles an experiment from a NetCfg: the topology, the routing table,
// the link model, one traffic source per flow of the traffic matrix, and the engine
// that drives them.  Any configuration problem is reported before the simulation starts.

import (
	"fmt"
	"math"
)

// Experiment is a simulation model ready to run once
type Experiment struct {
	Cfg      *NetCfg
	Topo     *Topology
	Routes   *RoutingTable
	Resolver *PathResolver
	Links    *LinkModel
	Stats    *StatisticsCollector
	Net      *Network
	Engine   Engine
	Trace    *TraceManager
	Sources  []*TrafficSource

	logger  *Logger
	pcktIDs int
}

// checkParams reports the scalar parameters no component checks on its own
func checkParams(params *ExpParams) []error {
	errs := []error{}
	if math.IsNaN(params.Horizon) || !(params.Horizon > 0) || math.IsInf(params.Horizon, 1) {
		errs = append(errs, cfgErr("params.horizon", "must be positive and finite, got %v", params.Horizon))
	}
	if params.PacketSize <= 0 {
		errs = append(errs, cfgErr("params.packetsize", "must be positive, got %d", params.PacketSize))
	}
	return errs
}

// BuildExperiment validates nc and builds the experiment it describes.  The
// logger and trace manager may be nil.  Every configuration problem found is
// returned, joined, as a single error
func BuildExperiment(nc *NetCfg, logger *Logger, traceMgr *TraceManager) (*Experiment, error) {
	exp := new(Experiment)
	exp.Cfg = nc
	exp.logger = logger
	exp.Trace = traceMgr
	params := &nc.Params

	if err := ReportErrs(checkParams(params)); err != nil {
		return nil, fmt.Errorf("experiment %s: %w", nc.Name, err)
	}

	var err error
	exp.Topo, err = CreateTopology(nc, logger)
	if err != nil {
		return nil, fmt.Errorf("experiment %s topology: %w", nc.Name, err)
	}

	exp.Routes, err = BuildRoutingTable(nc, exp.Topo)
	if err != nil {
		return nil, fmt.Errorf("experiment %s routes: %w", nc.Name, err)
	}
	exp.Resolver = CreatePathResolver(exp.Topo, exp.Routes)

	srcFactory, err := CreateSourceFactory(params.Rng, params.Seed)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", nc.Name, err)
	}

	exp.Links, err = CreateLinkModel(exp.Topo, params.PropDelay, params.DropProb, srcFactory.Source("links"))
	if err != nil {
		return nil, fmt.Errorf("experiment %s links: %w", nc.Name, err)
	}

	exp.Engine, err = CreateEngine(params.Engine)
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", nc.Name, err)
	}

	exp.Stats = CreateStatisticsCollector()
	exp.Net = CreateNetwork(exp.Resolver, exp.Links, exp.Stats, exp.Trace, logger)

	exp.Sources, err = exp.createSources(srcFactory)
	if err != nil {
		return nil, fmt.Errorf("experiment %s traffic: %w", nc.Name, err)
	}

	for _, src := range exp.Sources {
		flow := src.Flow()
		exp.Stats.TrackFlow(flow.Src, flow.Dst)
		exp.Trace.AddFlow(flow.FlowID, flow.Name())
		exp.Engine.Register(src)
	}

	loads, err := exp.LinkLoads()
	if err != nil {
		return nil, fmt.Errorf("experiment %s: %w", nc.Name, err)
	}
	for _, ll := range loads {
		if ll.Saturated() {
			logger.Warnf("link %s-%s is offered %.3g of its capacity", ll.From, ll.To, ll.Rho)
		}
	}

	logger.Infof("experiment %s: %d nodes, %d links, %d routes, %d flows, horizon %gs, engine %s",
		nc.Name, exp.Topo.NumNodes(), len(exp.Topo.Links()), exp.Routes.Len(), len(exp.Sources),
		params.Horizon, exp.Engine.Kind())
	return exp, nil
}

// createSources makes a TrafficSource for every traffic matrix entry with positive rate,
// after checking that its endpoints exist and its path resolves
func (exp *Experiment) createSources(srcFactory *SourceFactory) ([]*TrafficSource, error) {
	errs := []error{}
	srcs := []*TrafficSource{}
	seen := make(map[flowKey]bool)

	for _, fd := range exp.Cfg.Traffic {
		name := fd.Src + "->" + fd.Dst
		if fd.Rate == 0 {
			continue
		}

		srcNode, spresent := exp.Topo.Node(fd.Src)
		dstNode, dpresent := exp.Topo.Node(fd.Dst)
		if !spresent || !dpresent {
			errs = append(errs, cfgErr("traffic", "flow %s names an unknown node", name))
			continue
		}
		if srcNode.IsRouter() || dstNode.IsRouter() {
			errs = append(errs, cfgErr("traffic", "flow %s must join two endpoints", name))
			continue
		}
		if fd.Src == fd.Dst {
			errs = append(errs, cfgErr("traffic", "flow %s starts and ends at the same node", name))
			continue
		}
		key := flowKey{src: fd.Src, dst: fd.Dst}
		if seen[key] {
			errs = append(errs, cfgErr("traffic", "flow %s declared more than once", name))
			continue
		}
		seen[key] = true

		if _, err := exp.Resolver.Resolve(fd.Src, fd.Dst); err != nil {
			errs = append(errs, err)
			continue
		}

		flow := Flow{FlowID: len(srcs) + 1, Src: fd.Src, Dst: fd.Dst, Rate: fd.Rate, Model: fd.Model}
		src, err := NewTrafficSource(flow, exp.Cfg.Params.PacketSize, srcFactory.Source("flow:"+name),
			exp.Net, &exp.pcktIDs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		srcs = append(srcs, src)
	}

	if err := ReportErrs(errs); err != nil {
		return nil, err
	}
	return srcs, nil
}

// Run simulates from time zero to the horizon
func (exp *Experiment) Run() error {
	if err := exp.Engine.Run(exp.Cfg.Params.Horizon); err != nil {
		return fmt.Errorf("experiment %s run: %w", exp.Cfg.Name, err)
	}
	exp.logger.Infof("experiment %s: %d packets emitted by %gs", exp.Cfg.Name, exp.pcktIDs, exp.Engine.Now())
	return nil
}

// Emitted returns the number of packets emitted so far
func (exp *Experiment) Emitted() int {
	return exp.pcktIDs
}

// Path resolves the path from src to dst.  It depends only on the routing table,
// not on whether the experiment has run
func (exp *Experiment) Path(src, dst string) ([]string, error) {
	return exp.Resolver.Resolve(src, dst)
}

// Report holds the outputs of a run
type Report struct {
	Name    string
	Horizon float64
	Emitted int
	Flows   []FlowStats
	Queues  []QueueStats
}

// Report summarizes the statistics gathered so far
func (exp *Experiment) Report() *Report {
	return &Report{
		Name:    exp.Cfg.Name,
		Horizon: exp.Cfg.Params.Horizon,
		Emitted: exp.pcktIDs,
		Flows:   exp.Stats.AllFlowStats(),
		Queues:  exp.Stats.QueueStats(),
	}
}

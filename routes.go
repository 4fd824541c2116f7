package pktsim

// routes.go holds the static next-hop routing table and the resolution of
// source-to-destination paths by walking it.

import (
	"strings"

	"gonum.org/v1/gonum/graph/path"
)

// RoutingTable maps (current node, final destination) to the next hop
type RoutingTable struct {
	nxt map[string]map[string]string
}

// CreateRoutingTable is a constructor for an empty table
func CreateRoutingTable() *RoutingTable {
	return &RoutingTable{nxt: make(map[string]map[string]string)}
}

// BuildRoutingTable validates the route entries of nc against topo and builds the table.
// When nc.Params.AutoRoute is set, (node, destination) pairs without an explicit
// entry are filled from hop-count shortest paths over the declared links.
func BuildRoutingTable(nc *NetCfg, topo *Topology) (*RoutingTable, error) {
	errs := []error{}
	rt := CreateRoutingTable()

	for _, rd := range nc.Routes {
		if !topo.HasNode(rd.Node) || !topo.HasNode(rd.Dst) || !topo.HasNode(rd.NextHop) {
			errs = append(errs, cfgErr("routes", "route %s to %s via %s names an unknown node",
				rd.Node, rd.Dst, rd.NextHop))
			continue
		}
		if rd.NextHop == rd.Node {
			errs = append(errs, cfgErr("routes", "route %s to %s forwards to itself", rd.Node, rd.Dst))
			continue
		}
		rt.Set(rd.Node, rd.Dst, rd.NextHop)
	}

	if err := ReportErrs(errs); err != nil {
		return nil, err
	}

	if nc.Params.AutoRoute {
		ShortestPathRoutes(topo).fillInto(rt)
	}
	return rt, nil
}

// Set defines the next hop from node toward dst
func (rt *RoutingTable) Set(node, dst, nextHop string) {
	_, present := rt.nxt[node]
	if !present {
		rt.nxt[node] = make(map[string]string)
	}
	rt.nxt[node][dst] = nextHop
}

// NextHop returns the next hop from node toward dst, and false if there is no entry
func (rt *RoutingTable) NextHop(node, dst string) (string, bool) {
	row, present := rt.nxt[node]
	if !present {
		return "", false
	}
	hop, present := row[dst]
	return hop, present
}

// Len returns the number of entries
func (rt *RoutingTable) Len() int {
	n := 0
	for _, row := range rt.nxt {
		n += len(row)
	}
	return n
}

// fillInto copies into dst every entry dst does not already have
func (rt *RoutingTable) fillInto(dst *RoutingTable) {
	for node, row := range rt.nxt {
		for final, hop := range row {
			if _, present := dst.NextHop(node, final); !present {
				dst.Set(node, final, hop)
			}
		}
	}
}

// ShortestPathRoutes computes a next-hop table from the declared links.  For every ordered
// pair of nodes joined by some directed path the next hop is the second node of a
// shortest (fewest hops) path between them.
func ShortestPathRoutes(topo *Topology) *RoutingTable {
	rt := CreateRoutingTable()
	for _, src := range topo.order {
		spTree := path.DijkstraFrom(src, topo.graph)
		for _, dst := range topo.order {
			if dst == src {
				continue
			}
			nodeSeq, _ := spTree.To(dst.ID())
			if len(nodeSeq) < 2 {
				continue
			}
			rt.Set(src.Name, dst.Name, nodeSeq[1].(*Node).Name)
		}
	}
	return rt
}

// rtEndpts is the key of the resolved path cache
type rtEndpts struct {
	src, dst string
}

// PathResolver walks a RoutingTable from a source to a destination
type PathResolver struct {
	topo    *Topology
	table   *RoutingTable
	maxHops int
	cache   map[rtEndpts][]string
}

// CreatePathResolver is a constructor.  The hop bound is one more than the number of nodes,
// enough for any loop-free path.
func CreatePathResolver(topo *Topology, table *RoutingTable) *PathResolver {
	return &PathResolver{
		topo:    topo,
		table:   table,
		maxHops: topo.NumNodes() + 1,
		cache:   make(map[rtEndpts][]string),
	}
}

// MaxHops returns the hop bound beyond which resolution reports a loop
func (pr *PathResolver) MaxHops() int {
	return pr.maxHops
}

// Resolve returns the sequence of nodes a packet from src to dst visits, src first and dst last.
// A missing table entry yields a *RoutingError and exceeding the hop bound a *RoutingLoopError;
// in both cases the returned path is nil.  The returned slice must not be modified.
func (pr *PathResolver) Resolve(src, dst string) ([]string, error) {
	endpoints := rtEndpts{src: src, dst: dst}
	if route, found := pr.cache[endpoints]; found {
		return route, nil
	}

	if !pr.topo.HasNode(src) {
		return nil, &RoutingError{Node: src, Dst: dst}
	}
	if !pr.topo.HasNode(dst) {
		return nil, &RoutingError{Node: src, Dst: dst}
	}

	route := []string{src}
	here := src
	for here != dst {
		if len(route) > pr.maxHops {
			return nil, &RoutingLoopError{Src: src, Dst: dst, MaxHops: pr.maxHops, Path: route}
		}
		nxt, present := pr.table.NextHop(here, dst)
		if !present {
			return nil, &RoutingError{Node: here, Dst: dst}
		}
		route = append(route, nxt)
		here = nxt
	}

	pr.cache[endpoints] = route
	return route, nil
}

// ShowPath renders a path as its node names joined by arrows
func ShowPath(route []string) string {
	return strings.Join(route, " -> ")
}

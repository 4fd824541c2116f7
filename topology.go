package pktsim

// topology.go builds the run-time representation of the nodes and links of
// a NetCfg.  A Topology is never modified once CreateTopology returns it.

import (
	"strconv"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
)

// Node is a run-time node of the internetwork
type Node struct {
	Name string
	Role string
	id   int64 // index in declaration order, used as the graph node id
}

// ID lets Node serve as a graph.Node
func (n *Node) ID() int64 { return n.id }

// DOTID names the node in DOT output
func (n *Node) DOTID() string { return n.Name }

// IsRouter is true for nodes with the router role
func (n *Node) IsRouter() bool { return n.Role == RouterRole }

// Attributes styles routers and endpoints differently in DOT output
func (n *Node) Attributes() []encoding.Attribute {
	if n.IsRouter() {
		return []encoding.Attribute{{Key: "shape", Value: "box"}}
	}
	return []encoding.Attribute{{Key: "shape", Value: "ellipse"}}
}

// linkKey identifies a directed hop
type linkKey struct {
	from, to string
}

// linkEdge is the graph edge for one directed link.  Its weight is one
// so that shortest paths minimize hop count
type linkEdge struct {
	F, T     *Node
	capacity float64
}

func (e linkEdge) From() graph.Node         { return e.F }
func (e linkEdge) To() graph.Node           { return e.T }
func (e linkEdge) ReversedEdge() graph.Edge { return linkEdge{F: e.T, T: e.F, capacity: e.capacity} }
func (e linkEdge) Weight() float64          { return 1.0 }

// Attributes labels the edge with its capacity in DOT output
func (e linkEdge) Attributes() []encoding.Attribute {
	return []encoding.Attribute{{Key: "label", Value: strconv.FormatFloat(e.capacity, 'g', -1, 64)}}
}

// Topology holds the nodes, the link capacities and the default capacity
type Topology struct {
	name            string
	nodes           map[string]*Node
	order           []*Node
	capacity        map[linkKey]float64
	links           []linkKey // declaration order, duplicates removed
	defaultCapacity float64
	graph           *simple.WeightedDirectedGraph
}

// CreateTopology validates the nodes and links of nc and builds a Topology.
// Every problem found is reported, joined into a single error.
func CreateTopology(nc *NetCfg, logger *Logger) (*Topology, error) {
	errs := []error{}

	topo := new(Topology)
	topo.name = nc.Name
	topo.nodes = make(map[string]*Node)
	topo.order = make([]*Node, 0, len(nc.Nodes))
	topo.capacity = make(map[linkKey]float64)
	topo.links = make([]linkKey, 0, len(nc.Links))
	topo.defaultCapacity = nc.Params.DefaultCapacity
	topo.graph = simple.NewWeightedDirectedGraph(0, 0)

	if !(topo.defaultCapacity > 0) {
		errs = append(errs, cfgErr("params.defaultcapacity", "must be positive, got %v", topo.defaultCapacity))
	}

	for idx, nd := range nc.Nodes {
		if nd.Name == "" {
			errs = append(errs, cfgErr("nodes", "node %d has no name", idx))
			continue
		}
		if nd.Role != EndpointRole && nd.Role != RouterRole {
			errs = append(errs, cfgErr("nodes", "node %s has unknown role %q", nd.Name, nd.Role))
			continue
		}
		if _, present := topo.nodes[nd.Name]; present {
			errs = append(errs, cfgErr("nodes", "node %s declared more than once", nd.Name))
			continue
		}
		node := &Node{Name: nd.Name, Role: nd.Role, id: int64(len(topo.order))}
		topo.nodes[nd.Name] = node
		topo.order = append(topo.order, node)
		topo.graph.AddNode(node)
	}

	for _, ld := range nc.Links {
		from, fpresent := topo.nodes[ld.From]
		to, tpresent := topo.nodes[ld.To]
		if !fpresent || !tpresent {
			errs = append(errs, cfgErr("links", "link %s-%s names an unknown node", ld.From, ld.To))
			continue
		}
		if ld.From == ld.To {
			errs = append(errs, cfgErr("links", "link %s-%s connects a node to itself", ld.From, ld.To))
			continue
		}
		if !(ld.Capacity > 0) {
			errs = append(errs, cfgErr("links", "link %s-%s has non-positive capacity %v", ld.From, ld.To, ld.Capacity))
			continue
		}

		key := linkKey{from: ld.From, to: ld.To}
		if old, present := topo.capacity[key]; present {
			logger.Warnf("link %s-%s declared again, capacity %v replaces %v", ld.From, ld.To, ld.Capacity, old)
		} else {
			topo.links = append(topo.links, key)
		}
		topo.capacity[key] = ld.Capacity
		topo.graph.SetWeightedEdge(linkEdge{F: from, T: to, capacity: ld.Capacity})
	}

	if err := ReportErrs(errs); err != nil {
		return nil, err
	}
	return topo, nil
}

// Name returns the name of the model the topology came from
func (topo *Topology) Name() string {
	return topo.name
}

// Node looks up a node by name
func (topo *Topology) Node(name string) (*Node, bool) {
	node, present := topo.nodes[name]
	return node, present
}

// HasNode is true if the named node exists
func (topo *Topology) HasNode(name string) bool {
	_, present := topo.nodes[name]
	return present
}

// NumNodes returns the number of nodes
func (topo *Topology) NumNodes() int {
	return len(topo.order)
}

// Endpoints lists the names of endpoint nodes in declaration order
func (topo *Topology) Endpoints() []string {
	names := []string{}
	for _, node := range topo.order {
		if !node.IsRouter() {
			names = append(names, node.Name)
		}
	}
	return names
}

// Capacity returns the declared capacity of the directed link from-to,
// and false if no such link was declared
func (topo *Topology) Capacity(from, to string) (float64, bool) {
	c, present := topo.capacity[linkKey{from: from, to: to}]
	return c, present
}

// LinkCapacity returns the capacity of hop from-to, falling back to the
// default capacity when the hop has no declared link
func (topo *Topology) LinkCapacity(from, to string) float64 {
	if c, present := topo.Capacity(from, to); present {
		return c
	}
	return topo.defaultCapacity
}

// DefaultCapacity returns the capacity applied to undeclared hops
func (topo *Topology) DefaultCapacity() float64 {
	return topo.defaultCapacity
}

// Links returns the declared links in declaration order
func (topo *Topology) Links() []LinkDesc {
	rtn := make([]LinkDesc, 0, len(topo.links))
	for _, key := range topo.links {
		rtn = append(rtn, LinkDesc{From: key.from, To: key.to, Capacity: topo.capacity[key]})
	}
	return rtn
}

// Neighbors lists the nodes reachable over one declared link from name, sorted
func (topo *Topology) Neighbors(name string) []string {
	node, present := topo.nodes[name]
	if !present {
		return nil
	}
	nbrs := []string{}
	it := topo.graph.From(node.ID())
	for it.Next() {
		nbrs = append(nbrs, it.Node().(*Node).Name)
	}
	slices.Sort(nbrs)
	return nbrs
}

// DOT renders the topology in graphviz form
func (topo *Topology) DOT() ([]byte, error) {
	name := topo.name
	if name == "" {
		name = "topology"
	}
	return dot.Marshal(topo.graph, name, "", "\t")
}

package pktsim

// desc-topo.go holds the serializable description of a simulation model:
// the nodes, the directed links and their capacities, the static routing table,
// the traffic matrix, and the scalar experiment parameters.
// All of it is read once before a run and never modified afterward.

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Node roles
const (
	EndpointRole = "endpoint"
	RouterRole   = "router"
)

// NodeDesc describes one node of the internetwork
type NodeDesc struct {
	Name string `json:"name" yaml:"name"`

	// one of "endpoint", "router"
	Role string `json:"role" yaml:"role"`
}

// LinkDesc describes one directed link.  A bidirectional connection
// is described by two LinkDescs
type LinkDesc struct {
	From     string  `json:"from" yaml:"from"`
	To       string  `json:"to" yaml:"to"`
	Capacity float64 `json:"capacity" yaml:"capacity"` // bits per second
}

// RouteDesc is one routing table entry: a packet at Node bound for Dst
// is next forwarded to NextHop
type RouteDesc struct {
	Node    string `json:"node" yaml:"node"`
	Dst     string `json:"dst" yaml:"dst"`
	NextHop string `json:"nexthop" yaml:"nexthop"`
}

// FlowDesc is one traffic matrix entry
type FlowDesc struct {
	Src  string  `json:"src" yaml:"src"`
	Dst  string  `json:"dst" yaml:"dst"`
	Rate float64 `json:"rate" yaml:"rate"` // packets per second

	// interarrival model, "expon" when empty
	Model string `json:"model,omitempty" yaml:"model,omitempty"`
}

// ExpParams holds the scalar parameters of an experiment
type ExpParams struct {
	Horizon         float64 `json:"horizon" yaml:"horizon"`                 // seconds of simulated time
	PacketSize      int     `json:"packetsize" yaml:"packetsize"`           // bits
	PropDelay       float64 `json:"propdelay" yaml:"propdelay"`             // seconds per hop
	DropProb        float64 `json:"dropprob" yaml:"dropprob"`               // per hop
	DefaultCapacity float64 `json:"defaultcapacity" yaml:"defaultcapacity"` // bits per second, for hops with no link entry
	Seed            uint64  `json:"seed" yaml:"seed"`
	Engine          string  `json:"engine" yaml:"engine"` // "heap" or "evtm"
	Rng             string  `json:"rng" yaml:"rng"`       // "pcg" or "rngstream"
	AutoRoute       bool    `json:"autoroute" yaml:"autoroute"`
}

// DefaultExpParams returns the parameters used for any value a description leaves out
func DefaultExpParams() ExpParams {
	return ExpParams{
		Horizon:         60.0,
		PacketSize:      2048,
		PropDelay:       0.001,
		DropProb:        0.01,
		DefaultCapacity: 1_000_000,
		Seed:            1,
		Engine:          HeapEngine,
		Rng:             PCGRng,
	}
}

// NetCfg is the complete description of a simulation model
type NetCfg struct {
	Name    string      `json:"name" yaml:"name"`
	Nodes   []NodeDesc  `json:"nodes" yaml:"nodes"`
	Links   []LinkDesc  `json:"links" yaml:"links"`
	Routes  []RouteDesc `json:"routes" yaml:"routes"`
	Traffic []FlowDesc  `json:"traffic" yaml:"traffic"`
	Params  ExpParams   `json:"params" yaml:"params"`
}

// CreateNetCfg is a constructor.  The parameters start at their defaults
func CreateNetCfg(name string) *NetCfg {
	nc := new(NetCfg)
	nc.Name = name
	nc.Nodes = make([]NodeDesc, 0)
	nc.Links = make([]LinkDesc, 0)
	nc.Routes = make([]RouteDesc, 0)
	nc.Traffic = make([]FlowDesc, 0)
	nc.Params = DefaultExpParams()
	return nc
}

// AddEndpoint adds endpoint nodes
func (nc *NetCfg) AddEndpoint(names ...string) {
	for _, name := range names {
		nc.Nodes = append(nc.Nodes, NodeDesc{Name: name, Role: EndpointRole})
	}
}

// AddRouter adds router nodes
func (nc *NetCfg) AddRouter(names ...string) {
	for _, name := range names {
		nc.Nodes = append(nc.Nodes, NodeDesc{Name: name, Role: RouterRole})
	}
}

// AddLink adds one directed link
func (nc *NetCfg) AddLink(from, to string, capacity float64) {
	nc.Links = append(nc.Links, LinkDesc{From: from, To: to, Capacity: capacity})
}

// AddDuplexLink adds a link in each direction with the same capacity
func (nc *NetCfg) AddDuplexLink(a, b string, capacity float64) {
	nc.AddLink(a, b, capacity)
	nc.AddLink(b, a, capacity)
}

// AddRoute adds a routing table entry
func (nc *NetCfg) AddRoute(node, dst, nextHop string) {
	nc.Routes = append(nc.Routes, RouteDesc{Node: node, Dst: dst, NextHop: nextHop})
}

// AddFlow adds a traffic matrix entry with the default interarrival model
func (nc *NetCfg) AddFlow(src, dst string, rate float64) {
	nc.Traffic = append(nc.Traffic, FlowDesc{Src: src, Dst: dst, Rate: rate})
}

// WriteToFile stores the NetCfg struct to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
func (nc *NetCfg) WriteToFile(filename string) error {
	var bytes []byte
	var merr error

	if isYAMLFile(filename) {
		bytes, merr = yaml.Marshal(*nc)
	} else if isJSONFile(filename) {
		bytes, merr = json.MarshalIndent(*nc, "", "\t")
	} else {
		return fmt.Errorf("cannot infer format of %s from its extension", filename)
	}

	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0o644)
}

// ReadNetCfg deserializes a byte slice holding a representation of a NetCfg struct.
// If the input argument of dict (those bytes) is empty, the file whose name is given is read
// to acquire them.  Parameters absent from the representation keep their default values.
func ReadNetCfg(filename string, useYAML bool, dict []byte) (*NetCfg, error) {
	var err error

	// if the dict slice of bytes is empty we get them from the file whose name is an argument
	if len(dict) == 0 {
		dict, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	nc := CreateNetCfg("")

	if useYAML {
		err = yaml.Unmarshal(dict, nc)
	} else {
		err = json.Unmarshal(dict, nc)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", filename, err)
	}

	return nc, nil
}

// LoadNetCfg reads a NetCfg from file, choosing yaml or json by the file extension
func LoadNetCfg(filename string) (*NetCfg, error) {
	if _, err := CheckReadableFiles([]string{filename}); err != nil {
		return nil, err
	}
	return ReadNetCfg(filename, !isJSONFile(filename), nil)
}

func isYAMLFile(filename string) bool {
	ext := strings.ToLower(path.Ext(filename))
	return ext == ".yaml" || ext == ".yml"
}

func isJSONFile(filename string) bool {
	return strings.ToLower(path.Ext(filename)) == ".json"
}

// CheckReadableFiles probes the file system to ensure that every
// one of the argument filenames exists and is readable
func CheckReadableFiles(names []string) (bool, error) {
	return CheckFiles(names, true)
}

// CheckOutputFiles probes the file system to ensure that every
// argument filename can be written.
func CheckOutputFiles(names []string) (bool, error) {
	return CheckFiles(names, false)
}

// CheckFiles probes the file system for permitted access to all the
// argument filenames, optionally checking also for the existence
// of those files for the purposes of reading them.
func CheckFiles(names []string, checkExistence bool) (bool, error) {
	errs := make([]error, 0)

	for _, name := range names {
		if len(name) == 0 {
			continue
		}

		// split off the directory portion of the path
		directory, _ := filepath.Split(name)
		if directory == "" {
			continue
		}
		if _, err := os.Stat(directory); err != nil {
			errs = append(errs, err)
		}
	}

	if checkExistence {
		for _, name := range names {
			if len(name) == 0 {
				errs = append(errs, errors.New("empty file name"))
				continue
			}
			if _, err := os.Stat(name); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if rtnerr := ReportErrs(errs); rtnerr != nil {
		return false, rtnerr
	}
	return true, nil
}

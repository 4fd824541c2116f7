package pktsim

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Trace operations
const (
	HopOp     = "hop"
	DropOp    = "drop"
	DeliverOp = "deliver"
)

// PcktTrace saves information about the visit of a packet to some point of its path,
// kept for post-run analysis
type PcktTrace struct {
	Time   float64 `json:"time" yaml:"time"`     // simulation time the packet reaches this point
	PcktID int     `json:"pcktid" yaml:"pcktid"` // packet identifier, unique in a run
	From   string  `json:"from" yaml:"from"`     // hop sender, empty for delivery
	To     string  `json:"to" yaml:"to"`         // hop receiver
	Op     string  `json:"op" yaml:"op"`         // "hop", "drop", "deliver"
	Depth  int     `json:"depth" yaml:"depth"`   // queue sample taken at the hop
	Delay  float64 `json:"delay" yaml:"delay"`   // delay accumulated so far
}

// TraceManager gathers the traces of an experiment.  When it is not
// in use every method returns without doing anything, so calls can be
// left in place everywhere traces might be wanted
type TraceManager struct {
	// experiment uses trace
	InUse bool `json:"inuse" yaml:"inuse"`

	// name of experiment
	ExpName string `json:"expname" yaml:"expname"`

	// flow names, by flow id
	FlowNames map[int]string `json:"flownames" yaml:"flownames"`

	// all trace records for this experiment, by flow id
	Traces map[int][]PcktTrace `json:"traces" yaml:"traces"`
}

// CreateTraceManager is a constructor.  It saves the name of the experiment
// and a flag indicating whether the trace manager is active
func CreateTraceManager(expName string, active bool) *TraceManager {
	tm := new(TraceManager)
	tm.InUse = active
	tm.ExpName = expName
	tm.FlowNames = make(map[int]string)
	tm.Traces = make(map[int][]PcktTrace)
	return tm
}

// Active tells the caller whether the TraceManager is actively being used
func (tm *TraceManager) Active() bool {
	return tm != nil && tm.InUse
}

// AddFlow names a flow id in the trace
func (tm *TraceManager) AddFlow(flowID int, name string) {
	if !tm.Active() {
		return
	}
	tm.FlowNames[flowID] = name
}

// AddTrace stores a trace record of flow flowID
func (tm *TraceManager) AddTrace(flowID int, trace PcktTrace) {
	if !tm.Active() {
		return
	}
	tm.Traces[flowID] = append(tm.Traces[flowID], trace)
}

// Len returns the number of stored trace records
func (tm *TraceManager) Len() int {
	if tm == nil {
		return 0
	}
	n := 0
	for _, traces := range tm.Traces {
		n += len(traces)
	}
	return n
}

// WriteToFile stores the TraceManager to the file whose name is given.
// Serialization to json or to yaml is selected based on the extension of this name.
// Nothing is written when the manager is not in use
func (tm *TraceManager) WriteToFile(filename string) error {
	if !tm.Active() {
		return nil
	}

	var bytes []byte
	var merr error

	if isYAMLFile(filename) {
		bytes, merr = yaml.Marshal(*tm)
	} else if isJSONFile(filename) {
		bytes, merr = json.MarshalIndent(*tm, "", "\t")
	} else {
		return fmt.Errorf("cannot infer trace format of %s from its extension", filename)
	}
	if merr != nil {
		return merr
	}

	return os.WriteFile(filename, bytes, 0o644)
}

// ReadTraceFile loads a trace written by WriteToFile
func ReadTraceFile(filename string) (*TraceManager, error) {
	dict, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	tm := CreateTraceManager("", false)
	if isJSONFile(filename) {
		err = json.Unmarshal(dict, tm)
	} else {
		err = yaml.Unmarshal(dict, tm)
	}
	if err != nil {
		return nil, err
	}
	return tm, nil
}

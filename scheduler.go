package pktsim

// scheduler.go holds the discrete-event engines that advance simulation time
// from one packet emission to the next.
//
// The default engine keeps a min-heap of pending emissions ordered by time, with ties
// going to whichever emission was queued first.  The evtm engine hands the same work
// to the iti/evt event manager.

import (
	"container/heap"
	"errors"
	"math"

	"github.com/iti/evt/evtm"
	"github.com/iti/evt/vrtime"
)

// Engine kinds
const (
	HeapEngine = "heap"
	EvtmEngine = "evtm"
)

var errAlreadyRun = errors.New("engine has already run")

// Engine drives traffic sources in time order up to a horizon
type Engine interface {
	// Register adds a source whose emissions the engine is to drive
	Register(src *TrafficSource)

	// Run processes every emission earlier than horizon, then stops for good
	Run(horizon float64) error

	// Now returns the current simulation time in seconds
	Now() float64

	// Kind names the engine, HeapEngine or EvtmEngine
	Kind() string
}

// CreateEngine returns an engine of the named kind, HeapEngine when kind is empty
func CreateEngine(kind string) (Engine, error) {
	switch kind {
	case "", HeapEngine:
		return CreateScheduler(), nil
	case EvtmEngine:
		return CreateEvtmScheduler(), nil
	}
	return nil, cfgErr("params.engine", "unknown engine %q", kind)
}

func checkHorizon(horizon float64) error {
	if math.IsNaN(horizon) || !(horizon > 0) {
		return cfgErr("params.horizon", "must be positive, got %v", horizon)
	}
	return nil
}

// emission is a pending packet emission of one source
type emission struct {
	time float64
	seq  int // order of queueing, breaks ties
	src  *TrafficSource
}

// emissionHeap and its methods implement a min-priority heap on (time, seq)
type emissionHeap []*emission

func (h emissionHeap) Len() int { return len(h) }

func (h emissionHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h emissionHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *emissionHeap) Push(x any) {
	*h = append(*h, x.(*emission))
}

func (h *emissionHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[0 : n-1]
	return x
}

// Scheduler is the single-threaded heap engine
type Scheduler struct {
	now     float64
	nxtSeq  int
	pending emissionHeap
	ran     bool
}

// CreateScheduler is a constructor
func CreateScheduler() *Scheduler {
	s := new(Scheduler)
	s.pending = []*emission{}
	heap.Init(&s.pending)
	return s
}

func (s *Scheduler) push(t float64, src *TrafficSource) {
	s.nxtSeq += 1
	heap.Push(&s.pending, &emission{time: t, seq: s.nxtSeq, src: src})
}

// Register queues the first emission of src, one drawn interval after time zero
func (s *Scheduler) Register(src *TrafficSource) {
	s.push(s.now+src.NextInterval(), src)
}

// Pending returns the number of queued emissions
func (s *Scheduler) Pending() int {
	return s.pending.Len()
}

// Now returns the scheduler clock
func (s *Scheduler) Now() float64 {
	return s.now
}

// Kind returns HeapEngine
func (s *Scheduler) Kind() string {
	return HeapEngine
}

// Run repeatedly takes the earliest pending emission, advances the clock to it, and
// has its source emit.  A source's next emission is queued only if it falls before
// the horizon; otherwise the source is retired.  When nothing remains the clock
// is set to the horizon.  An error from an emission stops the run and is returned.
func (s *Scheduler) Run(horizon float64) error {
	if s.ran {
		return errAlreadyRun
	}
	if err := checkHorizon(horizon); err != nil {
		return err
	}
	s.ran = true

	for s.pending.Len() > 0 {
		if s.pending[0].time >= horizon {
			break
		}
		nxt := heap.Pop(&s.pending).(*emission)
		s.now = nxt.time

		if err := nxt.src.Emit(s.now); err != nil {
			return err
		}

		t := s.now + nxt.src.NextInterval()
		if t < horizon {
			s.push(t, nxt.src)
		}
	}

	// anything left is at or past the horizon and never runs
	s.pending = s.pending[:0]
	s.now = math.Max(s.now, horizon)
	return nil
}

// EvtmScheduler runs the emissions as events of an evtm.EventManager.
// Each source's event emits and then schedules the source's next event.
type EvtmScheduler struct {
	evtMgr  *evtm.EventManager
	srcs    []*TrafficSource
	horizon float64
	err     error
	ran     bool
}

// CreateEvtmScheduler is a constructor
func CreateEvtmScheduler() *EvtmScheduler {
	es := new(EvtmScheduler)
	es.evtMgr = evtm.New()
	es.srcs = make([]*TrafficSource, 0)
	return es
}

// Register remembers src; its first event is scheduled when Run is called
func (es *EvtmScheduler) Register(src *TrafficSource) {
	es.srcs = append(es.srcs, src)
}

// Now returns the event manager's clock
func (es *EvtmScheduler) Now() float64 {
	return es.evtMgr.CurrentSeconds()
}

// Kind returns EvtmEngine
func (es *EvtmScheduler) Kind() string {
	return EvtmEngine
}

// Run schedules the first emission of every source and runs the event manager to the horizon
func (es *EvtmScheduler) Run(horizon float64) error {
	if es.ran {
		return errAlreadyRun
	}
	if err := checkHorizon(horizon); err != nil {
		return err
	}
	es.ran = true
	es.horizon = horizon

	for _, src := range es.srcs {
		offset := src.NextInterval()
		if offset < horizon {
			es.evtMgr.Schedule(es, src, emitEvt, vrtime.SecondsToTime(offset))
		}
	}
	es.evtMgr.Run(horizon)
	return es.err
}

// emitEvt is the event handler for one emission.  The context is the
// EvtmScheduler and the data is the emitting TrafficSource
func emitEvt(evtMgr *evtm.EventManager, context any, data any) any {
	es := context.(*EvtmScheduler)
	src := data.(*TrafficSource)

	now := evtMgr.CurrentSeconds()
	if es.err != nil || now >= es.horizon {
		return nil
	}
	if err := src.Emit(now); err != nil {
		es.err = err
		return nil
	}

	interarrival := src.NextInterval()
	if now+interarrival < es.horizon {
		evtMgr.Schedule(es, src, emitEvt, vrtime.SecondsToTime(interarrival))
	}
	return nil
}

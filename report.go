package pktsim

import (
	"fmt"
	"io"
	"strings"
)

// WriteReport prints the delays, drops and queue lengths of a report
func WriteReport(w io.Writer, rep *Report) error {
	ew := &errWriter{w: w}

	ew.printf("End-to-End Delays:\n")
	for _, fs := range rep.Flows {
		if fs.Count == 0 {
			continue
		}
		ew.printf("From %s to %s: Avg=%g s, Variance=%g s^2, Count=%d\n",
			fs.Src, fs.Dst, fs.Mean, fs.Variance, fs.Count)
	}

	ew.printf("\nPacket Drops:\n")
	for _, fs := range rep.Flows {
		ew.printf("From %s to %s: %d packets\n", fs.Src, fs.Dst, fs.Drops)
	}

	ew.printf("\nQueue Lengths:\n")
	for _, qs := range rep.Queues {
		ew.printf("%s from %s: Avg Queue Length=%g\n", qs.Node, qs.Neighbor, qs.Mean)
	}
	return ew.err
}

// WritePaths prints the resolved path of every (src, dst) pair drawn from the two lists.
// Pairs naming unknown nodes are skipped; a routing failure is returned
func WritePaths(w io.Writer, exp *Experiment, srcs, dsts []string) error {
	ew := &errWriter{w: w}
	for _, src := range srcs {
		for _, dst := range dsts {
			if !exp.Topo.HasNode(src) || !exp.Topo.HasNode(dst) || src == dst {
				continue
			}
			route, err := exp.Path(src, dst)
			if err != nil {
				return err
			}
			ew.printf("Packet from %s to %s. Path: %s\n", src, dst, ShowPath(route))
		}
	}
	return ew.err
}

// WritePathListing prints a header naming the two lists, then their paths as WritePaths does.
// An empty list stands for every endpoint of the topology
func WritePathListing(w io.Writer, exp *Experiment, srcs, dsts []string) error {
	if len(srcs) == 0 {
		srcs = exp.Topo.Endpoints()
	}
	if len(dsts) == 0 {
		dsts = exp.Topo.Endpoints()
	}
	_, err := fmt.Fprintf(w, "All Possible Paths from %s to %s:\n",
		strings.Join(srcs, ", "), strings.Join(dsts, ", "))
	if err != nil {
		return err
	}
	return WritePaths(w, exp, srcs, dsts)
}

// errWriter keeps the first write error and skips writes after it
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...any) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

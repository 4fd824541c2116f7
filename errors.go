package pktsim

// errors.go holds the error types returned when a model is built from a
// configuration that cannot be simulated.  A dropped packet is never an error.

import (
	"errors"
	"fmt"
	"strings"
)

// RoutingError reports that the routing table has no next hop for
// a (node, destination) pair that a path needed.
type RoutingError struct {
	Node string
	Dst  string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing table entry missing for %s to %s", e.Node, e.Dst)
}

// RoutingLoopError reports that walking the routing table from Src toward Dst
// exceeded the hop bound.  Path holds the hops visited before giving up.
type RoutingLoopError struct {
	Src     string
	Dst     string
	MaxHops int
	Path    []string
}

func (e *RoutingLoopError) Error() string {
	return fmt.Sprintf("routing loop from %s to %s after %d hops: %s",
		e.Src, e.Dst, e.MaxHops, strings.Join(e.Path, " -> "))
}

// ConfigurationError reports a configuration value the simulation cannot use,
// e.g. a flow with non-positive rate or a link with non-positive capacity.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %s", e.Field, e.Reason)
}

func cfgErr(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// ReportErrs gathers the non-nil errors of a list into one error,
// or returns nil if there are none
func ReportErrs(errs []error) error {
	kept := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			kept = append(kept, err)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return errors.Join(kept...)
}

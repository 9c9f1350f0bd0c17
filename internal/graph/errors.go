package graph

import (
	"errors"
	"strings"
)

// ErrCyclicGraph matches any CyclicGraphError via errors.Is.
var ErrCyclicGraph = errors.New("cyclic dependency graph")

// CyclicGraphError reports a cycle found during resolution.
type CyclicGraphError struct {
	// Cycle starts and ends at the repeated node, e.g. [a b a].
	Cycle []string
}

func (e *CyclicGraphError) Error() string {
	return ErrCyclicGraph.Error() + ": " + strings.Join(e.Cycle, " -> ")
}

// Is reports whether target is ErrCyclicGraph.
func (e *CyclicGraphError) Is(target error) bool {
	return target == ErrCyclicGraph
}

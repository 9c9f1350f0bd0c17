package graph

import (
	"fmt"
	"sort"
)

// AdjacencyFunc returns the nodes a node points to (a profile's parents).
type AdjacencyFunc func(node string) ([]string, error)

type mark int

const (
	unvisited mark = iota
	inProgress
	finished
)

// Resolve returns every node reachable from root, most specific first.
func Resolve(root string, adjacent AdjacencyFunc) ([]string, error) {
	return TopoSort([]string{root}, adjacent)
}

// TopoSort returns every node reachable from nodes such that each node
// appears before all of the nodes it points to. Each reachable node
// appears exactly once, at the position fixed by the first time it finishes.
func TopoSort(nodes []string, adjacent AdjacencyFunc) ([]string, error) {
	r := &resolver{
		adjacent: adjacent,
		marks:    make(map[string]mark),
	}

	for _, node := range sorted(nodes) {
		if err := r.visit(node, nil); err != nil {
			return nil, err
		}
	}

	// Reverse finish order.
	order := make([]string, len(r.finished))
	for i, node := range r.finished {
		order[len(r.finished)-1-i] = node
	}
	return order, nil
}

type resolver struct {
	adjacent AdjacencyFunc
	marks    map[string]mark
	finished []string
}

// visit walks node depth-first. path is the active path leading to node;
// each branch gets its own copy so siblings never see each other's entries.
func (r *resolver) visit(node string, path []string) error {
	switch r.marks[node] {
	case finished:
		return nil
	case inProgress:
		return &CyclicGraphError{Cycle: cycleFrom(path, node)}
	}

	r.marks[node] = inProgress
	branch := make([]string, len(path), len(path)+1)
	copy(branch, path)
	branch = append(branch, node)

	next, err := r.adjacent(node)
	if err != nil {
		return fmt.Errorf("failed to resolve parents of %s: %w", node, err)
	}

	for _, adj := range sorted(next) {
		if err := r.visit(adj, branch); err != nil {
			return err
		}
	}

	r.marks[node] = finished
	r.finished = append(r.finished, node)
	return nil
}

// cycleFrom cuts the active path at the first occurrence of node and closes it.
func cycleFrom(path []string, node string) []string {
	start := 0
	for i, n := range path {
		if n == node {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	return append(cycle, node)
}

func sorted(nodes []string) []string {
	out := make([]string, len(nodes))
	copy(out, nodes)
	sort.Strings(out)
	return out
}

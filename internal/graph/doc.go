// Package graph resolves profile inheritance graphs into layering orders.
//
// Edges point from a profile to each of its parents. Resolution is a
// depth-first traversal that classifies every node as unvisited, in progress
// (on the active path) or finished. Re-entering an in-progress node is a
// cycle and aborts resolution with a CyclicGraphError.
//
// The order returned by Resolve places the most specific profile first and
// root ancestors last. Callers apply layers in the reverse of that order so
// that parents are applied before their children.
//
// Every node set and adjacency set is sorted before traversal, so the
// result depends only on names, never on the order a filesystem lists them.
package graph

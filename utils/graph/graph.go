package graph

/*
	This package exposes utilities for working with graph structures.

	Graph structures appear in various places in this project: control-flow
	graphs and their derived views, loop nests and weak topological orders.

	The goal of this package is to provide easy access to graph algorithms on
	data that has a graph representation. The caller only provides a function
	describing the edge relation; edge queries are cached.
*/

type edgesOf[T comparable] func(node T) []T

// Graph is a functional graph representation over comparable node values.
type Graph[T comparable] struct {
	edgesOf     edgesOf[T]
	cachedEdges map[T][]T
}

// Edges returns the (cached) successors of a node.
func (G Graph[T]) Edges(node T) []T {
	if cached, found := G.cachedEdges[node]; found {
		return cached
	}

	es := G.edgesOf(node)
	G.cachedEdges[node] = es
	return es
}

// Of constructs a graph from an edge relation.
func Of[T comparable](edgesOf edgesOf[T]) Graph[T] {
	return Graph[T]{
		edgesOf,
		make(map[T][]T),
	}
}

// Transpose materializes the reversed graph of the subgraph reachable from
// the given start nodes. Predecessor lists preserve the order in which edges
// are discovered during the (deterministic) traversal.
func (G Graph[T]) Transpose(starts ...T) Graph[T] {
	preds := make(map[T][]T)

	G.BFSV(func(node T) bool {
		for _, succ := range G.Edges(node) {
			preds[succ] = append(preds[succ], node)
		}
		return false
	}, starts...)

	return Of(func(node T) []T {
		return preds[node]
	})
}

package graph

import W "github.com/ibex-analyzer/ibex/utils/worklist"

type traversalFunc[T comparable] func(node T) (stop bool)

// BFSV performs a breadth-first search from the provided start nodes, calling
// the provided function (f) for every reachable node, stopping early if f
// returns true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFSV(f traversalFunc[T], starts ...T) bool {
	visited := make(map[T]bool)
	for _, start := range starts {
		visited[start] = true
	}

	done := false
	W.StartV(starts, func(node T, add func(T)) {
		if done || f(node) {
			done = true
			return
		}

		for _, next := range G.Edges(node) {
			if !visited[next] {
				visited[next] = true
				add(next)
			}
		}
	})

	return done
}

// BFS performs a breadth-first search from the provided start node, calling
// the provided function (f) for every reachable node, stopping early if f
// returns true.
// Returns whether the search stopped early (as a result of f returning true).
func (G Graph[T]) BFS(start T, f traversalFunc[T]) bool {
	return G.BFSV(f, start)
}

// PostOrder returns the nodes reachable from start in depth-first postorder.
// Successors are explored in edge order, so the result is deterministic for
// a fixed edge relation.
func (G Graph[T]) PostOrder(start T) []T {
	visited := make(map[T]bool)
	var order []T

	var visit func(T)
	visit = func(node T) {
		visited[node] = true
		for _, next := range G.Edges(node) {
			if !visited[next] {
				visit(next)
			}
		}
		order = append(order, node)
	}

	visit(start)
	return order
}

// ReversePostOrder returns the nodes reachable from start in reverse
// postorder: an order that visits a node before any of its successors along
// forward edges, which propagates dataflow facts efficiently.
func (G Graph[T]) ReversePostOrder(start T) []T {
	order := G.PostOrder(start)
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// RPONumbering assigns each node reachable from start its position in the
// reverse postorder of the graph.
func (G Graph[T]) RPONumbering(start T) map[T]int {
	num := make(map[T]int)
	for i, node := range G.ReversePostOrder(start) {
		num[node] = i
	}
	return num
}

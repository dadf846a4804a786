package graph

import (
	"github.com/spakin/disjoint"
)

// LoopNest is the result of loop recognition on a graph: the set of loop
// headers (targets of back edges) together with the nesting relation between
// them. Computed once per graph; queries never mutate it.
type LoopNest[T comparable] struct {
	headers map[T]bool
	// parent maps a loop header to the header of the immediately enclosing
	// loop, when one exists.
	parent map[T]T
	// enclosing maps every collapsed node to the header of the innermost
	// loop containing it.
	enclosing map[T]T
}

// IsHeader reports whether the node is the target of a back edge.
func (ln LoopNest[T]) IsHeader(node T) bool {
	return ln.headers[node]
}

// EnclosingHeader returns the header of the innermost loop strictly
// containing the node, if any.
func (ln LoopNest[T]) EnclosingHeader(node T) (T, bool) {
	h, ok := ln.enclosing[node]
	return h, ok
}

// Depth returns the loop nesting depth of a node: 0 outside all loops, and
// for a header the number of loops containing its body.
func (ln LoopNest[T]) Depth(node T) (depth int) {
	if ln.headers[node] {
		depth++
	}
	for {
		h, ok := ln.enclosing[node]
		if !ok {
			return
		}
		depth++
		node = h
	}
}

// LoopNest recognizes the loops of the subgraph reachable from start, in the
// style of Havlak's algorithm: headers are processed innermost first and
// loop bodies are collapsed into their header with a disjoint-set forest, so
// outer loops see inner loops as single nodes. Edges entering a cycle
// besides its header (irreducible flow) are skipped rather than collapsed.
func (G Graph[T]) LoopNest(start T) LoopNest[T] {
	pre := make(map[T]int)
	post := make(map[T]int)
	var order []T
	preds := make(map[T][]T)
	time := 0

	var dfs func(T)
	dfs = func(node T) {
		time++
		pre[node] = time
		order = append(order, node)
		for _, succ := range G.Edges(node) {
			preds[succ] = append(preds[succ], node)
			if pre[succ] == 0 {
				dfs(succ)
			}
		}
		time++
		post[node] = time
	}
	dfs(start)

	// a is an ancestor of b in the DFS tree (or a == b).
	isAncestor := func(a, b T) bool {
		return pre[a] <= pre[b] && post[b] <= post[a]
	}

	elem := make(map[T]*disjoint.Element, len(order))
	for _, node := range order {
		e := disjoint.NewElement()
		e.Data = node
		elem[node] = e
	}
	rep := func(node T) T {
		return elem[node].Find().Data.(T)
	}

	ln := LoopNest[T]{
		headers:   make(map[T]bool),
		parent:    make(map[T]T),
		enclosing: make(map[T]T),
	}

	// collapsed lists the original nodes merged under a header, so that the
	// predecessors of a collapsed region can still be enumerated.
	collapsed := make(map[T][]T)

	// Headers in decreasing preorder: inner loops collapse before the loops
	// that contain them.
	for i := len(order) - 1; i >= 0; i-- {
		h := order[i]

		var bodyReps []T
		inBody := make(map[T]bool)
		add := func(x T) {
			if x != h && !inBody[x] {
				inBody[x] = true
				bodyReps = append(bodyReps, x)
			}
		}

		for _, u := range preds[h] {
			if isAncestor(h, u) { // u -> h is a back edge
				ln.headers[h] = true
				add(rep(u))
			}
		}
		if !ln.headers[h] {
			continue
		}

		for wl := append([]T(nil), bodyReps...); len(wl) > 0; {
			x := wl[len(wl)-1]
			wl = wl[:len(wl)-1]

			regionNodes := append(collapsed[x], x)
			for _, n := range regionNodes {
				for _, p := range preds[n] {
					if isAncestor(n, p) {
						continue // skip the back edges of x's own loop
					}
					r := rep(p)
					if r != h && !inBody[r] && isAncestor(h, r) {
						add(r)
						wl = append(wl, r)
					}
				}
			}
		}

		for _, r := range bodyReps {
			if ln.headers[r] {
				ln.parent[r] = h
			}
			ln.enclosing[r] = h
			collapsed[h] = append(collapsed[h], append(collapsed[r], r)...)
			disjoint.Union(elem[h], elem[r])
		}
		// The union order is unspecified, so re-anchor the representative.
		elem[h].Find().Data = h
	}

	return ln
}

package graph

import (
	"fmt"
	"math"
	"strings"
)

// A weak topological order (WTO) is a hierarchical decomposition of a graph
// into a well-parenthesized permutation of its nodes, where every cycle is
// contained in a Component whose Head dominates the back edges into it
// (Bourdoncle, "Efficient chaotic iteration strategies with widenings").
// Fixpoint engines use it to obtain a single well-defined stabilization
// point per loop nest.
type (
	// WTO is an ordered partition of (a reachable subgraph of) a graph.
	WTO[T comparable] []WTOElement[T]

	// WTOElement is either a Vertex or a Component.
	WTOElement[T comparable] interface {
		fmt.Stringer
		wtoElement()
	}

	// Vertex is a node outside of any cycle at this nesting level.
	Vertex[T comparable] struct {
		Node T
	}

	// Component is a cyclic region: a head followed by the weak topological
	// order of the remaining nodes of the cycle.
	Component[T comparable] struct {
		Head T
		Rest WTO[T]
	}
)

func (Vertex[T]) wtoElement()    {}
func (Component[T]) wtoElement() {}

func (v Vertex[T]) String() string {
	return fmt.Sprint(v.Node)
}

func (c Component[T]) String() string {
	parts := make([]string, 0, len(c.Rest)+1)
	parts = append(parts, fmt.Sprint(c.Head))
	for _, el := range c.Rest {
		parts = append(parts, el.String())
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (w WTO[T]) String() string {
	parts := make([]string, 0, len(w))
	for _, el := range w {
		parts = append(parts, el.String())
	}
	return strings.Join(parts, " ")
}

// Flatten returns all nodes of the partition in order, heads first.
func (w WTO[T]) Flatten() (nodes []T) {
	for _, el := range w {
		switch el := el.(type) {
		case Vertex[T]:
			nodes = append(nodes, el.Node)
		case Component[T]:
			nodes = append(nodes, el.Head)
			nodes = append(nodes, el.Rest.Flatten()...)
		}
	}
	return
}

// WeakTopologicalOrder computes the weak topological order of the subgraph
// reachable from start, following Bourdoncle's recursive strategy based on
// Tarjan's SCC algorithm. The result is deterministic for a fixed edge
// relation.
func (G Graph[T]) WeakTopologicalOrder(start T) WTO[T] {
	w := wtoState[T]{
		G:   G,
		num: make(map[T]int),
	}
	var partition WTO[T]
	w.visit(start, &partition)
	return partition
}

type wtoState[T comparable] struct {
	G     Graph[T]
	num   map[T]int // 0 = unvisited, done = fully processed
	stack []T
	time  int
}

const wtoDone = math.MaxInt

func (w *wtoState[T]) push(v T) {
	w.stack = append(w.stack, v)
}

func (w *wtoState[T]) pop() T {
	v := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return v
}

func (w *wtoState[T]) visit(v T, partition *WTO[T]) int {
	w.push(v)
	w.time++
	w.num[v] = w.time
	head := w.num[v]
	loop := false

	for _, s := range w.G.Edges(v) {
		var min int
		if w.num[s] == 0 {
			min = w.visit(s, partition)
		} else {
			min = w.num[s]
		}
		if min <= head {
			head = min
			loop = true
		}
	}

	if head == w.num[v] {
		w.num[v] = wtoDone
		element := w.pop()
		if loop {
			for element != v {
				// Nodes of the component are re-explored by component() to
				// build the nested partition.
				w.num[element] = 0
				element = w.pop()
			}
			*partition = prepend[T](w.component(v), *partition)
		} else {
			*partition = prepend[T](Vertex[T]{v}, *partition)
		}
	}

	return head
}

func (w *wtoState[T]) component(v T) Component[T] {
	var rest WTO[T]
	for _, s := range w.G.Edges(v) {
		if w.num[s] == 0 {
			w.visit(s, &rest)
		}
	}
	return Component[T]{Head: v, Rest: rest}
}

func prepend[T comparable](el WTOElement[T], w WTO[T]) WTO[T] {
	return append(WTO[T]{el}, w...)
}

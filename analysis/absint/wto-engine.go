package absint

import (
	"github.com/ibex-analyzer/ibex/utils/graph"
)

// EmitFunc observes the stable invariant of a node. The WTO scheduler calls
// it exactly once per reached node, only after the node's enclosing loop
// component has stabilized, so consumers that thread a report accumulator
// through the traversal never see transient mid-iteration states.
type EmitFunc[N comparable, S any] func(node N, inv NodeInvariant[S])

// AnalyzeWTO runs the fixpoint following a weak topological order instead
// of a free worklist: each loop component is iterated to a local fixpoint
// (head first, then its body, repeated until nothing changes) before the
// traversal moves past it. emit may be nil.
func (ip *Interpreter[N, S]) AnalyzeWTO(initial S, emit EmitFunc[N, S]) (*InvariantMap[N, S], error) {
	im := newInvariantMap[N, S]()
	wto := graph.Of(ip.graph.Succs).WeakTopologicalOrder(ip.graph.Start())

	for _, el := range wto {
		switch e := el.(type) {
		case graph.Vertex[N]:
			if _, err := ip.step(im, e.Node, initial); err != nil {
				return im, err
			}
			ip.emitNode(im, e.Node, emit)
		case graph.Component[N]:
			if _, err := ip.stabilize(im, e, initial); err != nil {
				return im, err
			}
			ip.emitComponent(im, e, emit)
		}
	}
	return im, nil
}

// stabilize iterates a component until a full pass over head and body
// changes nothing. Reports whether any pass changed an invariant.
func (ip *Interpreter[N, S]) stabilize(im *InvariantMap[N, S], c graph.Component[N], initial S) (bool, error) {
	any := false
	for {
		changed, err := ip.step(im, c.Head, initial)
		if err != nil {
			return any, err
		}
		bodyChanged, err := ip.stepBody(im, c.Rest, initial)
		if err != nil {
			return any, err
		}
		if !changed && !bodyChanged {
			return any, nil
		}
		any = true
	}
}

func (ip *Interpreter[N, S]) stepBody(im *InvariantMap[N, S], body graph.WTO[N], initial S) (bool, error) {
	changed := false
	for _, el := range body {
		switch e := el.(type) {
		case graph.Vertex[N]:
			ch, err := ip.step(im, e.Node, initial)
			if err != nil {
				return changed, err
			}
			changed = changed || ch
		case graph.Component[N]:
			ch, err := ip.stabilize(im, e, initial)
			if err != nil {
				return changed, err
			}
			changed = changed || ch
		}
	}
	return changed, nil
}

func (ip *Interpreter[N, S]) emitNode(im *InvariantMap[N, S], node N, emit EmitFunc[N, S]) {
	if emit == nil {
		return
	}
	if inv, ok := im.Get(node); ok {
		emit(node, inv)
	}
}

// emitComponent emits the stable invariants of a component, head first,
// then the body in order.
func (ip *Interpreter[N, S]) emitComponent(im *InvariantMap[N, S], c graph.Component[N], emit EmitFunc[N, S]) {
	if emit == nil {
		return
	}
	ip.emitNode(im, c.Head, emit)
	for _, el := range c.Rest {
		switch e := el.(type) {
		case graph.Vertex[N]:
			ip.emitNode(im, e.Node, emit)
		case graph.Component[N]:
			ip.emitComponent(im, e, emit)
		}
	}
}

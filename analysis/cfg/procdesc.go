package cfg

import (
	"fmt"
)

// ProcAttributes are the per-procedure attributes persisted alongside the
// graph. Changed is the only field mutated after translation: the diff step
// sets it when the procedure differs from the previously stored capture.
type ProcAttributes struct {
	Name    string
	Loc     Location
	Formals []Formal
	Ret     Typ

	// IsDefined is false for procedures only seen at call sites.
	IsDefined bool
	// IsSynthetic marks compiler-generated procedures.
	IsSynthetic bool
	// IsBridge marks bridge/thunk procedures generated for dispatch.
	IsBridge bool

	Changed bool
}

// Procdesc owns the control-flow nodes of one procedure. Nodes are kept in
// the order the frontend created them; the incremental diff walks this
// order in lockstep across captures.
type Procdesc struct {
	attrs ProcAttributes

	nodes []*Node
	index map[NodeID]*Node

	start, exit       NodeID
	hasStart, hasExit bool
}

func NewProcdesc(attrs ProcAttributes) *Procdesc {
	return &Procdesc{
		attrs: attrs,
		index: make(map[NodeID]*Node),
	}
}

// Attrs exposes the mutable attributes of the procedure.
func (p *Procdesc) Attrs() *ProcAttributes { return &p.attrs }

func (p *Procdesc) Name() string { return p.attrs.Name }

// AddNode creates a node with the given id and appends it to the
// procedure's node list. Panics on a duplicate id or on a second start or
// exit node; those are frontend bugs, not recoverable conditions.
func (p *Procdesc) AddNode(id NodeID, kind NodeKind, loc Location, instrs ...Instr) *Node {
	if _, clash := p.index[id]; clash {
		panic(fmt.Sprintf("internal error: duplicate node id %v in procedure %q", id, p.attrs.Name))
	}
	switch kind {
	case StartNode:
		if p.hasStart {
			panic(fmt.Sprintf("internal error: second start node in procedure %q", p.attrs.Name))
		}
		p.start, p.hasStart = id, true
	case ExitNode:
		if p.hasExit {
			panic(fmt.Sprintf("internal error: second exit node in procedure %q", p.attrs.Name))
		}
		p.exit, p.hasExit = id, true
	}

	n := &Node{id: id, kind: kind, loc: loc, instrs: instrs}
	p.nodes = append(p.nodes, n)
	p.index[id] = n
	return n
}

// Nodes returns the procedure's nodes in creation order. The returned slice
// is shared; callers must not mutate it.
func (p *Procdesc) Nodes() []*Node { return p.nodes }

func (p *Procdesc) NumNodes() int { return len(p.nodes) }

// Node looks up a node by id.
func (p *Procdesc) Node(id NodeID) (*Node, bool) {
	n, ok := p.index[id]
	return n, ok
}

// MustNode looks up a node by id and panics with an internal error when it
// does not exist. Use for ids that are required to be present (edges of a
// well-formed graph); optional lookups go through Node.
func (p *Procdesc) MustNode(id NodeID) *Node {
	n, ok := p.index[id]
	if !ok {
		panic(fmt.Sprintf("internal error: no node %v in procedure %q", id, p.attrs.Name))
	}
	return n
}

// Start returns the id of the distinguished start node.
func (p *Procdesc) Start() NodeID {
	if !p.hasStart {
		panic(fmt.Sprintf("internal error: procedure %q has no start node", p.attrs.Name))
	}
	return p.start
}

// Exit returns the id of the distinguished exit node.
func (p *Procdesc) Exit() NodeID {
	if !p.hasExit {
		panic(fmt.Sprintf("internal error: procedure %q has no exit node", p.attrs.Name))
	}
	return p.exit
}

// AddEdge adds a normal control-flow edge, maintaining both the successor
// and predecessor lists.
func (p *Procdesc) AddEdge(from, to NodeID) {
	f, t := p.MustNode(from), p.MustNode(to)
	f.succs = append(f.succs, to)
	t.preds = append(t.preds, from)
}

// AddExnEdge registers `to` as an exception handler of `from`. Handler
// predecessor lists are materialized by the exceptional CFG view, not
// stored on the node.
func (p *Procdesc) AddExnEdge(from, to NodeID) {
	f := p.MustNode(from)
	p.MustNode(to)
	f.exnSuccs = append(f.exnSuccs, to)
}

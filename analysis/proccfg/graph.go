// Package proccfg provides interchangeable views of one procedure's
// control-flow graph. All views implement the same Graph interface over a
// shared underlying node store (the Procdesc), so the fixpoint engine is
// agnostic to whether it traverses forward or backward, with or without
// exceptional edges, and at block or instruction granularity.
package proccfg

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/utils/graph"
)

// Graph is the capability interface of a CFG view. The node type N is
// view-specific: block-granularity views use cfg.NodeID, the
// instruction-granularity view uses InstrNode.
//
// Succs and Preds are the edges the view propagates abstract states along;
// the Normal*/Exn* variants expose the two edge families separately for
// clients that must treat them differently.
type Graph[N comparable] interface {
	ProcName() string

	Start() N
	Exit() N
	// Nodes returns all nodes of the view in a deterministic order.
	Nodes() []N

	Succs(N) []N
	Preds(N) []N
	NormalSuccs(N) []N
	NormalPreds(N) []N
	ExnSuccs(N) []N
	ExnPreds(N) []N

	Instrs(N) []cfg.Instr
	Kind(N) cfg.NodeKind

	// IsLoopHead reports whether the node is the target of a back edge in
	// this view's orientation. Stable across repeated calls.
	IsLoopHead(N) bool
}

// Normal is the view of the plain Procdesc: normal edges only, exceptional
// edges ignored. Used by analyses that do not model exceptions.
type Normal struct {
	pdesc *cfg.Procdesc
	loops *graph.LoopNest[cfg.NodeID]
}

func NewNormal(pdesc *cfg.Procdesc) *Normal {
	return &Normal{pdesc: pdesc}
}

func (g *Normal) ProcName() string { return g.pdesc.Name() }
func (g *Normal) Start() cfg.NodeID { return g.pdesc.Start() }
func (g *Normal) Exit() cfg.NodeID  { return g.pdesc.Exit() }

func (g *Normal) Nodes() []cfg.NodeID {
	return nodeIDs(g.pdesc)
}

func (g *Normal) Succs(n cfg.NodeID) []cfg.NodeID       { return g.pdesc.MustNode(n).Succs() }
func (g *Normal) Preds(n cfg.NodeID) []cfg.NodeID       { return g.pdesc.MustNode(n).Preds() }
func (g *Normal) NormalSuccs(n cfg.NodeID) []cfg.NodeID { return g.pdesc.MustNode(n).Succs() }
func (g *Normal) NormalPreds(n cfg.NodeID) []cfg.NodeID { return g.pdesc.MustNode(n).Preds() }
func (g *Normal) ExnSuccs(cfg.NodeID) []cfg.NodeID      { return nil }
func (g *Normal) ExnPreds(cfg.NodeID) []cfg.NodeID      { return nil }

func (g *Normal) Instrs(n cfg.NodeID) []cfg.Instr { return g.pdesc.MustNode(n).Instrs() }
func (g *Normal) Kind(n cfg.NodeID) cfg.NodeKind  { return g.pdesc.MustNode(n).Kind() }

func (g *Normal) IsLoopHead(n cfg.NodeID) bool {
	if g.loops == nil {
		g.loops = loopNestOf[cfg.NodeID](g)
	}
	return g.loops.IsHeader(n)
}

var _ Graph[cfg.NodeID] = (*Normal)(nil)

func nodeIDs(pdesc *cfg.Procdesc) []cfg.NodeID {
	ids := make([]cfg.NodeID, 0, pdesc.NumNodes())
	for _, n := range pdesc.Nodes() {
		ids = append(ids, n.ID())
	}
	return ids
}

// loopNestOf computes the loop nest of a view in its own orientation.
func loopNestOf[N comparable](g Graph[N]) *graph.LoopNest[N] {
	ln := graph.Of(func(n N) []N { return g.Succs(n) }).LoopNest(g.Start())
	return &ln
}

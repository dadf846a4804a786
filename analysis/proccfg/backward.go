package proccfg

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/utils/graph"
)

// Backward reverses any view: start and exit swap, successors and
// predecessors swap within each edge family, and the instructions of a node
// are visited in reverse order. Composes with every other view, so backward
// analyses reuse forward transfer machinery unchanged.
type Backward[N comparable] struct {
	fwd   Graph[N]
	loops *graph.LoopNest[N]
}

func NewBackward[N comparable](fwd Graph[N]) *Backward[N] {
	return &Backward[N]{fwd: fwd}
}

func (g *Backward[N]) ProcName() string { return g.fwd.ProcName() }
func (g *Backward[N]) Start() N         { return g.fwd.Exit() }
func (g *Backward[N]) Exit() N          { return g.fwd.Start() }
func (g *Backward[N]) Nodes() []N       { return g.fwd.Nodes() }

func (g *Backward[N]) Succs(n N) []N       { return g.fwd.Preds(n) }
func (g *Backward[N]) Preds(n N) []N       { return g.fwd.Succs(n) }
func (g *Backward[N]) NormalSuccs(n N) []N { return g.fwd.NormalPreds(n) }
func (g *Backward[N]) NormalPreds(n N) []N { return g.fwd.NormalSuccs(n) }
func (g *Backward[N]) ExnSuccs(n N) []N    { return g.fwd.ExnPreds(n) }
func (g *Backward[N]) ExnPreds(n N) []N    { return g.fwd.ExnSuccs(n) }

func (g *Backward[N]) Instrs(n N) []cfg.Instr {
	fwd := g.fwd.Instrs(n)
	if len(fwd) <= 1 {
		return fwd
	}
	rev := make([]cfg.Instr, len(fwd))
	for i, instr := range fwd {
		rev[len(fwd)-1-i] = instr
	}
	return rev
}

func (g *Backward[N]) Kind(n N) cfg.NodeKind { return g.fwd.Kind(n) }

// IsLoopHead is recomputed in the reversed orientation; a forward loop head
// is generally not a backward one.
func (g *Backward[N]) IsLoopHead(n N) bool {
	if g.loops == nil {
		g.loops = loopNestOf[N](g)
	}
	return g.loops.IsHeader(n)
}

var _ Graph[cfg.NodeID] = (*Backward[cfg.NodeID])(nil)

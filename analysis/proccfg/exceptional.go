package proccfg

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/utils/graph"
)

// Exceptional is the view that propagates along both normal and exceptional
// edges, so abstract states flow into exception handlers. The exceptional
// edge relation is transposed once at construction; queries are lookups.
type Exceptional struct {
	pdesc *cfg.Procdesc
	exn   graph.Graph[cfg.NodeID]
	loops *graph.LoopNest[cfg.NodeID]
}

func NewExceptional(pdesc *cfg.Procdesc) *Exceptional {
	// Every node is a traversal root: handler edges alone do not connect
	// the graph.
	exn := graph.Of(func(n cfg.NodeID) []cfg.NodeID {
		return pdesc.MustNode(n).ExnSuccs()
	}).Transpose(nodeIDs(pdesc)...)
	return &Exceptional{pdesc: pdesc, exn: exn}
}

func (g *Exceptional) ProcName() string  { return g.pdesc.Name() }
func (g *Exceptional) Start() cfg.NodeID { return g.pdesc.Start() }
func (g *Exceptional) Exit() cfg.NodeID  { return g.pdesc.Exit() }

func (g *Exceptional) Nodes() []cfg.NodeID {
	return nodeIDs(g.pdesc)
}

// Succs is the union of normal and exceptional successors, normal first,
// duplicates removed.
func (g *Exceptional) Succs(n cfg.NodeID) []cfg.NodeID {
	nd := g.pdesc.MustNode(n)
	return unionEdges(nd.Succs(), nd.ExnSuccs())
}

func (g *Exceptional) Preds(n cfg.NodeID) []cfg.NodeID {
	return unionEdges(g.pdesc.MustNode(n).Preds(), g.exn.Edges(n))
}

func (g *Exceptional) NormalSuccs(n cfg.NodeID) []cfg.NodeID { return g.pdesc.MustNode(n).Succs() }
func (g *Exceptional) NormalPreds(n cfg.NodeID) []cfg.NodeID { return g.pdesc.MustNode(n).Preds() }
func (g *Exceptional) ExnSuccs(n cfg.NodeID) []cfg.NodeID    { return g.pdesc.MustNode(n).ExnSuccs() }
func (g *Exceptional) ExnPreds(n cfg.NodeID) []cfg.NodeID    { return g.exn.Edges(n) }

func (g *Exceptional) Instrs(n cfg.NodeID) []cfg.Instr { return g.pdesc.MustNode(n).Instrs() }
func (g *Exceptional) Kind(n cfg.NodeID) cfg.NodeKind  { return g.pdesc.MustNode(n).Kind() }

func (g *Exceptional) IsLoopHead(n cfg.NodeID) bool {
	if g.loops == nil {
		g.loops = loopNestOf[cfg.NodeID](g)
	}
	return g.loops.IsHeader(n)
}

var _ Graph[cfg.NodeID] = (*Exceptional)(nil)

func unionEdges(normal, exn []cfg.NodeID) []cfg.NodeID {
	if len(exn) == 0 {
		return normal
	}
	out := make([]cfg.NodeID, len(normal), len(normal)+len(exn))
	copy(out, normal)
	seen := make(map[cfg.NodeID]bool, len(normal))
	for _, id := range normal {
		seen[id] = true
	}
	for _, id := range exn {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

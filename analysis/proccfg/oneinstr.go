package proccfg

import (
	"fmt"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// InstrNode identifies one instruction slot of a block: the block plus the
// index of the instruction in it. Blocks without instructions still
// contribute a single node at index 0, so the view never loses edges.
type InstrNode struct {
	Block cfg.NodeID
	Index int
}

func (n InstrNode) String() string {
	return fmt.Sprintf("%v/%d", n.Block, n.Index)
}

// OneInstrPerNode refines a block-granularity view to instruction
// granularity. Instructions of a block form a chain; the edges of the base
// view run from the last slot of the source block to the first slot of each
// target block. Executing the chain of a block is equivalent to executing
// the block's instruction list in the base view.
type OneInstrPerNode struct {
	base Graph[cfg.NodeID]
}

func NewOneInstrPerNode(base Graph[cfg.NodeID]) *OneInstrPerNode {
	return &OneInstrPerNode{base: base}
}

func (g *OneInstrPerNode) ProcName() string { return g.base.ProcName() }

func (g *OneInstrPerNode) Start() InstrNode { return InstrNode{Block: g.base.Start()} }
func (g *OneInstrPerNode) Exit() InstrNode  { return InstrNode{Block: g.base.Exit()} }

func (g *OneInstrPerNode) Nodes() []InstrNode {
	var out []InstrNode
	for _, b := range g.base.Nodes() {
		for i := 0; i < g.slots(b); i++ {
			out = append(out, InstrNode{Block: b, Index: i})
		}
	}
	return out
}

// slots is the number of instruction nodes a block expands to, at least 1.
func (g *OneInstrPerNode) slots(b cfg.NodeID) int {
	if n := len(g.base.Instrs(b)); n > 0 {
		return n
	}
	return 1
}

func (g *OneInstrPerNode) last(b cfg.NodeID) InstrNode {
	return InstrNode{Block: b, Index: g.slots(b) - 1}
}

func (g *OneInstrPerNode) firstOf(blocks []cfg.NodeID) []InstrNode {
	out := make([]InstrNode, len(blocks))
	for i, b := range blocks {
		out[i] = InstrNode{Block: b}
	}
	return out
}

func (g *OneInstrPerNode) lastOf(blocks []cfg.NodeID) []InstrNode {
	out := make([]InstrNode, len(blocks))
	for i, b := range blocks {
		out[i] = g.last(b)
	}
	return out
}

func (g *OneInstrPerNode) Succs(n InstrNode) []InstrNode {
	if n.Index+1 < g.slots(n.Block) {
		return []InstrNode{{Block: n.Block, Index: n.Index + 1}}
	}
	return g.firstOf(g.base.Succs(n.Block))
}

func (g *OneInstrPerNode) Preds(n InstrNode) []InstrNode {
	if n.Index > 0 {
		return []InstrNode{{Block: n.Block, Index: n.Index - 1}}
	}
	return g.lastOf(g.base.Preds(n.Block))
}

func (g *OneInstrPerNode) NormalSuccs(n InstrNode) []InstrNode {
	if n.Index+1 < g.slots(n.Block) {
		return []InstrNode{{Block: n.Block, Index: n.Index + 1}}
	}
	return g.firstOf(g.base.NormalSuccs(n.Block))
}

func (g *OneInstrPerNode) NormalPreds(n InstrNode) []InstrNode {
	if n.Index > 0 {
		return []InstrNode{{Block: n.Block, Index: n.Index - 1}}
	}
	return g.lastOf(g.base.NormalPreds(n.Block))
}

// Exceptional edges stay anchored at the block boundary: the last slot may
// throw to the handlers, the first slot of a handler receives.
func (g *OneInstrPerNode) ExnSuccs(n InstrNode) []InstrNode {
	if n.Index+1 < g.slots(n.Block) {
		return nil
	}
	return g.firstOf(g.base.ExnSuccs(n.Block))
}

func (g *OneInstrPerNode) ExnPreds(n InstrNode) []InstrNode {
	if n.Index > 0 {
		return nil
	}
	return g.lastOf(g.base.ExnPreds(n.Block))
}

func (g *OneInstrPerNode) Instrs(n InstrNode) []cfg.Instr {
	instrs := g.base.Instrs(n.Block)
	if len(instrs) == 0 {
		return nil
	}
	return instrs[n.Index : n.Index+1]
}

func (g *OneInstrPerNode) Kind(n InstrNode) cfg.NodeKind { return g.base.Kind(n.Block) }

// IsLoopHead holds only for the first slot of a base loop head; inner slots
// of a chain cannot be back-edge targets.
func (g *OneInstrPerNode) IsLoopHead(n InstrNode) bool {
	return n.Index == 0 && g.base.IsLoopHead(n.Block)
}

var _ Graph[InstrNode] = (*OneInstrPerNode)(nil)

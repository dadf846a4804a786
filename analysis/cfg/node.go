package cfg

import (
	"fmt"

	"github.com/ibex-analyzer/ibex/utils"
)

// NodeID identifies a control-flow node within its procedure. Edges are
// stored as id lists rather than node pointers, which keeps the graph
// acyclic from the garbage collector's point of view and lets the diff
// machinery rename nodes by id alone.
type NodeID int32

func (id NodeID) String() string { return fmt.Sprintf("#%d", int32(id)) }

// Hash computes a hash usable for id-keyed immutable containers.
func (id NodeID) Hash() uint32 { return utils.HashCombine(uint32(id)) }

// Equal checks id equality.
func (id NodeID) Equal(other NodeID) bool { return id == other }

// Less orders node ids.
func (id NodeID) Less(other NodeID) bool { return id < other }

// NodeKind classifies control-flow nodes.
type NodeKind uint8

const (
	StartNode NodeKind = iota
	ExitNode
	StmtNode
	PruneNode
	SkipNode
	JoinNode
)

func (k NodeKind) String() string {
	switch k {
	case StartNode:
		return "start"
	case ExitNode:
		return "exit"
	case StmtNode:
		return "stmt"
	case PruneNode:
		return "prune"
	case SkipNode:
		return "skip"
	case JoinNode:
		return "join"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Node is a single control-flow node: an instruction sequence plus its
// normal and exceptional out-edges. Nodes are owned by their Procdesc and
// only ever reference each other by id.
type Node struct {
	id     NodeID
	kind   NodeKind
	loc    Location
	instrs []Instr

	succs    []NodeID
	preds    []NodeID
	exnSuccs []NodeID
}

func (n *Node) ID() NodeID     { return n.id }
func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Loc() Location  { return n.loc }

// Instrs returns the ordered instruction sequence of the node. The returned
// slice is shared; callers must not mutate it.
func (n *Node) Instrs() []Instr { return n.instrs }

// Succs returns the normal successor ids in edge order.
func (n *Node) Succs() []NodeID { return n.succs }

// Preds returns the normal predecessor ids in edge order.
func (n *Node) Preds() []NodeID { return n.preds }

// ExnSuccs returns the ids of the exception handlers covering this node.
func (n *Node) ExnSuccs() []NodeID { return n.exnSuccs }

// AppendInstr adds an instruction at the end of the node's sequence.
func (n *Node) AppendInstr(i Instr) {
	n.instrs = append(n.instrs, i)
}

// Hash combines the node id and kind.
func (n *Node) Hash() uint32 {
	return utils.HashCombine(n.id.Hash(), uint32(n.kind))
}

func (n *Node) String() string {
	return fmt.Sprintf("%s[%s]", n.id, n.kind)
}

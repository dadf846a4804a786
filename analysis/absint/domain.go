// Package absint implements the generic fixpoint engine: given a CFG view, an
// abstract domain and per-instruction transfer functions, it computes a map
// from node to pre/post abstract states. The engine is fully opaque to what
// the abstract state represents; concrete analyses plug in behind the Domain
// and TransferFunctions interfaces.
package absint

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// Domain is the lattice of abstract states an analysis computes over.
// Leq must be a partial order and Join its least upper bound for the engine
// to produce a post-fixpoint. Widen must eventually stabilize any ascending
// chain or the fixpoint loop will only terminate by exhausting its budget.
type Domain[S any] interface {
	// Join computes the least upper bound of two states.
	Join(a, b S) S
	// Leq tests the partial order: a is at most b.
	Leq(a, b S) bool
	// Widen extrapolates from the previous pre-state to the candidate joined
	// pre-state; visits is the number of times the node has been visited and
	// may be used to widen progressively.
	Widen(prev, next S, visits int) S
}

// TransferFunctions maps one instruction to its effect on the abstract
// state. Implementations typically capture the view they run over at
// construction time if they need topology or node kinds.
type TransferFunctions[N comparable, S any] interface {
	ExecInstr(state S, node N, instr cfg.Instr) S
}

// TransferFunc adapts a plain function to the TransferFunctions interface.
type TransferFunc[N comparable, S any] func(state S, node N, instr cfg.Instr) S

func (f TransferFunc[N, S]) ExecInstr(state S, node N, instr cfg.Instr) S {
	return f(state, node, instr)
}

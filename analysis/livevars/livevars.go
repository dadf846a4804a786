// Package livevars implements live-variable analysis, the canonical
// backward analysis: an ident is live at a program point when some path to
// the exit reads it before writing it. It doubles as the reference client
// of the fixpoint engine, exercising the backward and per-instruction views
// together with the powerset domain.
package livevars

import (
	"github.com/ibex-analyzer/ibex/analysis/absint"
	"github.com/ibex-analyzer/ibex/analysis/cfg"
	"github.com/ibex-analyzer/ibex/analysis/lattice"
	"github.com/ibex-analyzer/ibex/analysis/proccfg"
)

// State is the set of live idents at a program point.
type State = lattice.Set[cfg.Ident]

// Result maps every instruction slot of the procedure to the idents live
// before (Post, in backward orientation) and after (Pre) it.
type Result = absint.InvariantMap[proccfg.InstrNode, State]

// defUse splits an instruction into the ident it writes and the idents it
// reads.
func defUse(instr cfg.Instr) (def cfg.Ident, use []cfg.Ident) {
	switch i := instr.(type) {
	case cfg.Load:
		return i.Dst, cfg.ExprIdents(i.Src)
	case cfg.Store:
		// A store defines a memory location, not an ident; both operand
		// expressions are reads.
		use = append(cfg.ExprIdents(i.Dst), cfg.ExprIdents(i.Src)...)
		return cfg.Ident{}, use
	case cfg.Call:
		for _, arg := range i.Args {
			use = append(use, cfg.ExprIdents(arg)...)
		}
		return i.Ret, use
	case cfg.Prune:
		return cfg.Ident{}, cfg.ExprIdents(i.Cond)
	default:
		return cfg.Ident{}, nil
	}
}

// transfer is the backward liveness equation live' = (live \ def) ∪ use.
func transfer(live State, _ proccfg.InstrNode, instr cfg.Instr) State {
	def, use := defUse(instr)
	if !def.IsNone() {
		live = live.Remove(def)
	}
	for _, id := range use {
		live = live.Add(id)
	}
	return live
}

// Analyze computes liveness for one procedure. Nothing is live at the
// procedure exit, so the initial state is the empty set. Options configure
// the underlying interpreter (budget, widening threshold).
func Analyze(pdesc *cfg.Procdesc, opts ...absint.Option[proccfg.InstrNode, State]) (*Result, error) {
	view := proccfg.NewBackward[proccfg.InstrNode](
		proccfg.NewOneInstrPerNode(proccfg.NewNormal(pdesc)))
	ip := absint.NewInterpreter[proccfg.InstrNode, State](
		view,
		lattice.SetDomain[cfg.Ident]{},
		absint.TransferFunc[proccfg.InstrNode, State](transfer),
		opts...,
	)
	return ip.Analyze(lattice.EmptySet[cfg.Ident]())
}

// LiveBefore returns the idents live immediately before the instruction
// slot, in forward orientation.
func LiveBefore(res *Result, n proccfg.InstrNode) State {
	live, _ := res.Post(n)
	return live
}

// LiveAfter returns the idents live immediately after the instruction slot.
func LiveAfter(res *Result, n proccfg.InstrNode) State {
	live, _ := res.Pre(n)
	return live
}

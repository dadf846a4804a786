// Package diff decides whether a freshly translated procedure is
// structurally identical to a previously stored capture of it, up to the
// renumbering of frontend-generated idents and node ids. Unchanged
// procedures can skip re-analysis.
//
// Matching walks both node lists in lockstep by list position, not by id,
// and maintains lazily built renaming maps between the two captures. This
// deliberately avoids a graph-isomorphism search; it is sound only because
// both captures come from the same deterministic translator, which emits
// nodes in a stable order for equivalent sources.
package diff

import (
	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// renaming holds the two correspondence maps of one procedure-pair
// comparison: ident to ident and node id to node id. The first time a pair
// is seen it is recorded; later encounters check the record instead of
// physical equality. The maps live only for the duration of one comparison.
type renaming struct {
	idents map[cfg.Ident]cfg.Ident
	nodes  map[cfg.NodeID]cfg.NodeID
}

func newRenaming() *renaming {
	return &renaming{
		idents: make(map[cfg.Ident]cfg.Ident),
		nodes:  make(map[cfg.NodeID]cfg.NodeID),
	}
}

func (r *renaming) identsMatch(a, b cfg.Ident) bool {
	if a.IsNone() || b.IsNone() {
		return a.IsNone() == b.IsNone()
	}
	if mapped, ok := r.idents[a]; ok {
		return mapped == b
	}
	r.idents[a] = b
	return true
}

func (r *renaming) nodesMatch(a, b cfg.NodeID) bool {
	if mapped, ok := r.nodes[a]; ok {
		return mapped == b
	}
	r.nodes[a] = b
	return true
}

func (r *renaming) exprsMatch(a, b cfg.Expr) bool {
	switch ea := a.(type) {
	case cfg.Var:
		eb, ok := b.(cfg.Var)
		return ok && r.identsMatch(ea.ID, eb.ID)
	case cfg.IntLit:
		eb, ok := b.(cfg.IntLit)
		return ok && ea == eb
	case cfg.StrLit:
		eb, ok := b.(cfg.StrLit)
		return ok && ea == eb
	case cfg.UnOp:
		eb, ok := b.(cfg.UnOp)
		return ok && ea.Op == eb.Op && r.exprsMatch(ea.X, eb.X)
	case cfg.BinOp:
		eb, ok := b.(cfg.BinOp)
		return ok && ea.Op == eb.Op && r.exprsMatch(ea.X, eb.X) && r.exprsMatch(ea.Y, eb.Y)
	case cfg.Field:
		eb, ok := b.(cfg.Field)
		return ok && ea.Name == eb.Name && r.exprsMatch(ea.X, eb.X)
	case cfg.Index:
		eb, ok := b.(cfg.Index)
		return ok && r.exprsMatch(ea.X, eb.X) && r.exprsMatch(ea.Idx, eb.Idx)
	default:
		return false
	}
}

// instrsMatch compares two instructions structurally, extending the ident
// renaming. Source locations are deliberately ignored; a pure reformatting
// of the source must not invalidate stored results.
func (r *renaming) instrsMatch(a, b cfg.Instr) bool {
	switch ia := a.(type) {
	case cfg.Load:
		ib, ok := b.(cfg.Load)
		return ok && r.identsMatch(ia.Dst, ib.Dst) && r.exprsMatch(ia.Src, ib.Src) && ia.Typ.Equal(ib.Typ)
	case cfg.Store:
		ib, ok := b.(cfg.Store)
		return ok && r.exprsMatch(ia.Dst, ib.Dst) && r.exprsMatch(ia.Src, ib.Src) && ia.Typ.Equal(ib.Typ)
	case cfg.Call:
		ib, ok := b.(cfg.Call)
		if !ok || ia.Fn != ib.Fn || len(ia.Args) != len(ib.Args) || !r.identsMatch(ia.Ret, ib.Ret) {
			return false
		}
		for i := range ia.Args {
			if !r.exprsMatch(ia.Args[i], ib.Args[i]) {
				return false
			}
		}
		return true
	case cfg.Prune:
		ib, ok := b.(cfg.Prune)
		return ok && ia.TrueBranch == ib.TrueBranch && r.exprsMatch(ia.Cond, ib.Cond)
	case cfg.Skip:
		ib, ok := b.(cfg.Skip)
		return ok && ia.Reason == ib.Reason
	default:
		return false
	}
}

func (r *renaming) edgesMatch(a, b []cfg.NodeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !r.nodesMatch(a[i], b[i]) {
			return false
		}
	}
	return true
}

func (r *renaming) nodesEqual(a, b *cfg.Node) bool {
	if a.Kind() != b.Kind() || !r.nodesMatch(a.ID(), b.ID()) {
		return false
	}
	if !r.edgesMatch(a.Succs(), b.Succs()) ||
		!r.edgesMatch(a.Preds(), b.Preds()) ||
		!r.edgesMatch(a.ExnSuccs(), b.ExnSuccs()) {
		return false
	}
	ia, ib := a.Instrs(), b.Instrs()
	if len(ia) != len(ib) {
		return false
	}
	for i := range ia {
		if !r.instrsMatch(ia[i], ib[i]) {
			return false
		}
	}
	return true
}

// ProcdescsEqual reports whether two captures of a procedure are
// alpha-equivalent: matching node lists position by position, equal return
// type, equal definedness and pairwise-equal formal parameter types.
func ProcdescsEqual(a, b *cfg.Procdesc) bool {
	aat, bat := a.Attrs(), b.Attrs()
	if aat.IsDefined != bat.IsDefined || !aat.Ret.Equal(bat.Ret) {
		return false
	}
	if len(aat.Formals) != len(bat.Formals) {
		return false
	}
	for i := range aat.Formals {
		if !aat.Formals[i].Typ.Equal(bat.Formals[i].Typ) {
			return false
		}
	}

	an, bn := a.Nodes(), b.Nodes()
	if len(an) != len(bn) {
		return false
	}
	r := newRenaming()
	for i := range an {
		if !r.nodesEqual(an[i], bn[i]) {
			return false
		}
	}
	return true
}

// MarkChanged compares every procedure of cur against its counterpart in
// prior and sets the Changed attribute on the procedures that differ (or
// are new). A procedure already marked changed by an earlier incremental
// run keeps the mark; it is never reset without a clean re-check. prior may
// be nil, in which case everything is marked changed. Returns the names of
// the changed procedures in sorted order.
func MarkChanged(cur, prior *cfg.Cfg) (changed []string) {
	cur.ForEach(func(pdesc *cfg.Procdesc) {
		attrs := pdesc.Attrs()
		if !attrs.Changed {
			var old *cfg.Procdesc
			if prior != nil {
				old, _ = prior.Proc(pdesc.Name())
			}
			attrs.Changed = old == nil || !ProcdescsEqual(old, pdesc)
		}
		if attrs.Changed {
			changed = append(changed, pdesc.Name())
		}
	})
	return changed
}

package diff

import (
	"reflect"
	"testing"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// buildProc assembles `r = call f(v); store g <- r` with the given id
// offsets, simulating the renumbering between two captures of one source.
func buildProc(name string, nodeOffset int32, stampOffset int32) *cfg.Procdesc {
	loc := cfg.Location{File: name + ".x", Line: 3}
	v := cfg.NewIdent("v", 1+stampOffset)
	r := cfg.NewIdent("r", 2+stampOffset)

	pdesc := cfg.NewProcdesc(cfg.ProcAttributes{
		Name:      name,
		Loc:       loc,
		Formals:   []cfg.Formal{{Name: "v", Typ: cfg.IntTyp()}},
		Ret:       cfg.IntTyp(),
		IsDefined: true,
	})
	o := cfg.NodeID(nodeOffset)
	pdesc.AddNode(o+0, cfg.StartNode, loc)
	pdesc.AddNode(o+1, cfg.StmtNode, loc,
		cfg.Call{Ret: r, Fn: "f", Args: []cfg.Expr{cfg.Var{ID: v}}, Loc: loc},
		cfg.Store{Dst: cfg.Var{ID: cfg.NewIdent("g", 1)}, Src: cfg.Var{ID: r}, Typ: cfg.IntTyp(), Loc: loc},
	)
	pdesc.AddNode(o+2, cfg.ExitNode, loc)
	pdesc.AddEdge(o+0, o+1)
	pdesc.AddEdge(o+1, o+2)
	return pdesc
}

func TestRenumberedCopyUnchanged(t *testing.T) {
	prior := cfg.New()
	prior.AddProc(buildProc("p", 0, 0))
	prior.AddProc(buildProc("q", 0, 0))

	cur := cfg.New()
	cur.AddProc(buildProc("p", 10, 5))
	cur.AddProc(buildProc("q", 3, 7))

	if changed := MarkChanged(cur, prior); changed != nil {
		t.Fatalf("renumbered copies marked changed: %v", changed)
	}
	cur.ForEach(func(p *cfg.Procdesc) {
		if p.Attrs().Changed {
			t.Errorf("%s marked changed", p.Name())
		}
	})
}

func TestInsertedInstructionChangesOneProc(t *testing.T) {
	prior := cfg.New()
	prior.AddProc(buildProc("p", 0, 0))
	prior.AddProc(buildProc("q", 0, 0))

	cur := cfg.New()
	cur.AddProc(buildProc("p", 4, 2))
	q := buildProc("q", 4, 2)
	// One dead instruction inserted into q.
	q.MustNode(5).AppendInstr(cfg.Skip{Reason: "dead", Loc: cfg.Location{File: "q.x"}})
	cur.AddProc(q)

	if changed := MarkChanged(cur, prior); !reflect.DeepEqual(changed, []string{"q"}) {
		t.Fatalf("changed = %v, want exactly [q]", changed)
	}
	if cur.MustProc("p").Attrs().Changed {
		t.Error("p must stay unchanged")
	}
}

func TestChangedMarkIsMonotonic(t *testing.T) {
	prior := cfg.New()
	prior.AddProc(buildProc("p", 0, 0))

	cur := cfg.New()
	cur.AddProc(buildProc("p", 0, 0))
	// A previous incremental run already marked p changed.
	cur.MustProc("p").Attrs().Changed = true

	if changed := MarkChanged(cur, prior); !reflect.DeepEqual(changed, []string{"p"}) {
		t.Fatalf("changed = %v; an existing mark must never be reset", changed)
	}
}

func TestNewProcedureIsChanged(t *testing.T) {
	cur := cfg.New()
	cur.AddProc(buildProc("fresh", 0, 0))

	if changed := MarkChanged(cur, nil); !reflect.DeepEqual(changed, []string{"fresh"}) {
		t.Fatalf("changed = %v", changed)
	}
}

func TestAttributeMismatches(t *testing.T) {
	base := buildProc("p", 0, 0)

	retDiffers := buildProc("p", 0, 0)
	retDiffers.Attrs().Ret = cfg.BoolTyp()
	if ProcdescsEqual(base, retDiffers) {
		t.Error("return type mismatch not detected")
	}

	undefined := buildProc("p", 0, 0)
	undefined.Attrs().IsDefined = false
	if ProcdescsEqual(base, undefined) {
		t.Error("definedness mismatch not detected")
	}

	formalDiffers := buildProc("p", 0, 0)
	formalDiffers.Attrs().Formals[0].Typ = cfg.StrTyp()
	if ProcdescsEqual(base, formalDiffers) {
		t.Error("formal type mismatch not detected")
	}
}

func TestInconsistentRenamingDetected(t *testing.T) {
	loc := cfg.Location{File: "r.x"}
	mk := func(second cfg.Ident) *cfg.Procdesc {
		x := cfg.NewIdent("x", 1)
		pdesc := cfg.NewProcdesc(cfg.ProcAttributes{Name: "r", Loc: loc, IsDefined: true})
		pdesc.AddNode(0, cfg.StartNode, loc)
		pdesc.AddNode(1, cfg.StmtNode, loc,
			cfg.Load{Dst: x, Src: cfg.IntLit{Value: 1}, Typ: cfg.IntTyp(), Loc: loc},
			// The same ident read twice in one capture must map to the
			// same ident in the other.
			cfg.Store{Dst: cfg.Var{ID: cfg.NewIdent("g", 1)}, Src: cfg.BinOp{Op: "+", X: cfg.Var{ID: x}, Y: cfg.Var{ID: second}}, Typ: cfg.IntTyp(), Loc: loc},
		)
		pdesc.AddNode(2, cfg.ExitNode, loc)
		pdesc.AddEdge(0, 1)
		pdesc.AddEdge(1, 2)
		return pdesc
	}

	same := mk(cfg.NewIdent("x", 1))
	split := mk(cfg.NewIdent("y", 9))
	if ProcdescsEqual(same, split) {
		t.Error("inconsistent ident correspondence not detected")
	}
	if !ProcdescsEqual(same, mk(cfg.NewIdent("x", 1))) {
		t.Error("identical captures must match")
	}
}

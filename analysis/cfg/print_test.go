package cfg

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

func printFixture() *Cfg {
	loc := Location{File: "walk.x", Line: 1}
	n := NewIdent("n", 1)
	x := NewIdent("x", 1)
	g := NewIdent("g", 1)

	walk := NewProcdesc(ProcAttributes{
		Name:      "walk",
		Loc:       loc,
		Formals:   []Formal{{Name: "n", Typ: IntTyp()}},
		Ret:       IntTyp(),
		IsDefined: true,
		Changed:   true,
	})
	walk.AddNode(0, StartNode, loc)
	walk.AddNode(1, JoinNode, loc)
	walk.AddNode(2, StmtNode, loc,
		Load{Dst: x, Src: Var{ID: n}, Typ: IntTyp(), Loc: loc},
		Store{Dst: Var{ID: g}, Src: BinOp{Op: "+", X: Var{ID: x}, Y: IntLit{Value: 1}}, Typ: IntTyp(), Loc: loc},
	)
	walk.AddNode(3, PruneNode, loc,
		Prune{Cond: BinOp{Op: "<", X: Var{ID: n}, Y: IntLit{Value: 10}}, TrueBranch: true, Loc: loc})
	walk.AddNode(4, ExitNode, loc)
	walk.AddEdge(0, 1)
	walk.AddEdge(1, 2)
	walk.AddEdge(1, 3)
	walk.AddEdge(2, 1)
	walk.AddEdge(3, 4)
	walk.AddExnEdge(2, 4)

	mainLoc := Location{File: "main.x", Line: 1}
	main := NewProcdesc(ProcAttributes{Name: "main", Loc: mainLoc, Ret: VoidTyp(), IsDefined: true})
	main.AddNode(0, StartNode, mainLoc)
	main.AddNode(1, StmtNode, mainLoc,
		Call{Ret: Ident{}, Fn: "walk", Args: []Expr{IntLit{Value: 7}}, Loc: mainLoc})
	main.AddNode(2, ExitNode, mainLoc)
	main.AddEdge(0, 1)
	main.AddEdge(1, 2)

	c := New()
	c.AddProc(walk)
	c.AddProc(main)
	return c
}

// The printed form is the byte-exact contract golden tests and the diff
// trace output rely on.
func TestPrintGolden(t *testing.T) {
	g := goldie.New(t)
	g.Assert(t, "cfg_print", []byte(printFixture().String()))
}

func TestPrintDeterministic(t *testing.T) {
	first := printFixture().String()
	for i := 0; i < 3; i++ {
		if again := printFixture().String(); again != first {
			t.Fatalf("rendering differs between runs:\n%s\nvs\n%s", first, again)
		}
	}
}

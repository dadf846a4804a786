package frontend

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/ssa"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// Translate lowers the given functions into a CFG capture. Functions are
// translated in the order given; the generators for idents and node ids are
// owned by the per-procedure translation context and reset between
// procedures, so the emitted node and ident numbering depends only on the
// procedure's own SSA body. The incremental diff relies on this
// determinism.
func Translate(prog *ssa.Program, fns []*ssa.Function) *cfg.Cfg {
	c := cfg.New()
	for _, fn := range fns {
		c.AddProc(translateFn(prog.Fset, fn))
	}
	return c
}

type translator struct {
	fset    *token.FileSet
	pdesc   *cfg.Procdesc
	idents  *cfg.IdentGenerator
	nodeIDs *cfg.NodeIDGenerator
	vals    map[ssa.Value]cfg.Ident
	ret     cfg.Ident
}

func translateFn(fset *token.FileSet, fn *ssa.Function) *cfg.Procdesc {
	t := &translator{
		fset:    fset,
		idents:  cfg.NewIdentGenerator(),
		nodeIDs: cfg.NewNodeIDGenerator(),
		vals:    make(map[ssa.Value]cfg.Ident),
	}

	formals := make([]cfg.Formal, 0, len(fn.Params))
	for _, p := range fn.Params {
		formals = append(formals, cfg.Formal{Name: p.Name(), Typ: typFor(p.Type())})
	}
	t.pdesc = cfg.NewProcdesc(cfg.ProcAttributes{
		Name:        fn.String(),
		Loc:         t.location(fn.Pos()),
		Formals:     formals,
		Ret:         retTypFor(fn.Signature),
		IsDefined:   len(fn.Blocks) > 0,
		IsSynthetic: fn.Synthetic != "",
	})
	t.ret = t.idents.Fresh("ret")

	loc := t.location(fn.Pos())
	start := t.pdesc.AddNode(t.nodeIDs.Next(), cfg.StartNode, loc)

	if len(fn.Blocks) == 0 {
		exit := t.pdesc.AddNode(t.nodeIDs.Next(), cfg.ExitNode, loc)
		t.pdesc.AddEdge(start.ID(), exit.ID())
		return t.pdesc
	}

	// First pass reserves one node per reachable block, so node positions
	// depend only on block order.
	blockNode := make(map[*ssa.BasicBlock]cfg.NodeID)
	for _, b := range fn.Blocks {
		if b != fn.Blocks[0] && len(b.Preds) == 0 {
			continue // dead block
		}
		kind := cfg.StmtNode
		if len(b.Preds) >= 2 {
			kind = cfg.JoinNode
		}
		blockNode[b] = t.pdesc.AddNode(t.nodeIDs.Next(), kind, t.blockLoc(b)).ID()
	}
	exit := t.pdesc.AddNode(t.nodeIDs.Next(), cfg.ExitNode, loc).ID()
	t.pdesc.AddEdge(start.ID(), blockNode[fn.Blocks[0]])

	// Second pass fills instructions and wires edges, emitting prune nodes
	// for conditional branches in block order.
	for _, b := range fn.Blocks {
		id, live := blockNode[b]
		if !live {
			continue
		}
		node := t.pdesc.MustNode(id)
		for _, instr := range b.Instrs {
			t.translateInstr(node, instr)
		}
		t.wireTerminator(b, id, exit, blockNode)
	}
	return t.pdesc
}

func (t *translator) wireTerminator(b *ssa.BasicBlock, id, exit cfg.NodeID, blockNode map[*ssa.BasicBlock]cfg.NodeID) {
	switch term := b.Instrs[len(b.Instrs)-1].(type) {
	case *ssa.If:
		cond := t.exprFor(term.Cond)
		loc := t.location(term.Pos())
		for i, succ := range b.Succs {
			prune := t.pdesc.AddNode(t.nodeIDs.Next(), cfg.PruneNode, loc,
				cfg.Prune{Cond: cond, TrueBranch: i == 0, Loc: loc})
			t.pdesc.AddEdge(id, prune.ID())
			t.pdesc.AddEdge(prune.ID(), blockNode[succ])
		}
	case *ssa.Return, *ssa.Panic:
		t.pdesc.AddEdge(id, exit)
	default:
		if len(b.Succs) == 0 {
			t.pdesc.AddEdge(id, exit)
			return
		}
		for _, succ := range b.Succs {
			t.pdesc.AddEdge(id, blockNode[succ])
		}
	}
}

func (t *translator) translateInstr(node *cfg.Node, instr ssa.Instruction) {
	loc := t.location(instr.Pos())
	switch i := instr.(type) {
	case *ssa.DebugRef, *ssa.If, *ssa.Jump:
		// Branches become edges and prune nodes, not instructions.
	case *ssa.Store:
		node.AppendInstr(cfg.Store{
			Dst: t.exprFor(i.Addr),
			Src: t.exprFor(i.Val),
			Typ: typFor(i.Val.Type()),
			Loc: loc,
		})
	case *ssa.Return:
		if len(i.Results) == 1 {
			node.AppendInstr(cfg.Store{
				Dst: cfg.Var{ID: t.ret},
				Src: t.exprFor(i.Results[0]),
				Typ: typFor(i.Results[0].Type()),
				Loc: loc,
			})
		}
	case *ssa.Call:
		node.AppendInstr(t.translateCall(i, loc))
	case *ssa.BinOp:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.BinOp{Op: i.Op.String(), X: t.exprFor(i.X), Y: t.exprFor(i.Y)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	case *ssa.UnOp:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.UnOp{Op: i.Op.String(), X: t.exprFor(i.X)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	case *ssa.FieldAddr:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.Field{X: t.exprFor(i.X), Name: fieldName(i.X.Type(), i.Field)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	case *ssa.Field:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.Field{X: t.exprFor(i.X), Name: fieldName(i.X.Type(), i.Field)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	case *ssa.IndexAddr:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.Index{X: t.exprFor(i.X), Idx: t.exprFor(i.Index)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	case *ssa.Index:
		node.AppendInstr(cfg.Load{
			Dst: t.identFor(i),
			Src: cfg.Index{X: t.exprFor(i.X), Idx: t.exprFor(i.Index)},
			Typ: typFor(i.Type()),
			Loc: loc,
		})
	default:
		node.AppendInstr(cfg.Skip{Reason: opName(instr), Loc: loc})
	}
}

func (t *translator) translateCall(call *ssa.Call, loc cfg.Location) cfg.Instr {
	common := call.Common()
	var name string
	switch {
	case common.StaticCallee() != nil:
		name = common.StaticCallee().String()
	case common.IsInvoke():
		name = common.Method.FullName()
	default:
		name = common.Value.Name()
	}
	args := make([]cfg.Expr, 0, len(common.Args))
	for _, a := range common.Args {
		args = append(args, t.exprFor(a))
	}
	ret := cfg.Ident{}
	if len(*call.Referrers()) > 0 {
		ret = t.identFor(call)
	}
	return cfg.Call{Ret: ret, Fn: name, Args: args, Loc: loc}
}

func (t *translator) identFor(v ssa.Value) cfg.Ident {
	if id, ok := t.vals[v]; ok {
		return id
	}
	name := v.Name()
	if name == "" {
		name = "tmp"
	}
	id := t.idents.Fresh(name)
	t.vals[v] = id
	return id
}

func (t *translator) exprFor(v ssa.Value) cfg.Expr {
	switch v := v.(type) {
	case *ssa.Const:
		return constExpr(v)
	case *ssa.Global:
		// Globals keep a stable zero-stamp ident derived from their path,
		// identical across captures.
		return cfg.Var{ID: cfg.NewIdent(v.String(), 0)}
	default:
		return cfg.Var{ID: t.identFor(v)}
	}
}

func constExpr(c *ssa.Const) cfg.Expr {
	if c.Value == nil {
		return cfg.IntLit{Value: 0} // nil
	}
	switch c.Value.Kind() {
	case constant.Int:
		if n, ok := constant.Int64Val(c.Value); ok {
			return cfg.IntLit{Value: n}
		}
	case constant.Bool:
		if constant.BoolVal(c.Value) {
			return cfg.IntLit{Value: 1}
		}
		return cfg.IntLit{Value: 0}
	case constant.String:
		return cfg.StrLit{Value: constant.StringVal(c.Value)}
	}
	return cfg.StrLit{Value: c.Value.ExactString()}
}

func (t *translator) location(pos token.Pos) cfg.Location {
	if !pos.IsValid() {
		return cfg.Location{}
	}
	p := t.fset.Position(pos)
	return cfg.Location{File: p.Filename, Line: p.Line, Col: p.Column}
}

func (t *translator) blockLoc(b *ssa.BasicBlock) cfg.Location {
	for _, instr := range b.Instrs {
		if instr.Pos().IsValid() {
			return t.location(instr.Pos())
		}
	}
	return cfg.Location{}
}

func fieldName(recv types.Type, index int) string {
	typ := recv
	if ptr, ok := typ.Underlying().(*types.Pointer); ok {
		typ = ptr.Elem()
	}
	if st, ok := typ.Underlying().(*types.Struct); ok && index < st.NumFields() {
		return st.Field(index).Name()
	}
	return fmt.Sprintf("field%d", index)
}

func retTypFor(sig *types.Signature) cfg.Typ {
	switch sig.Results().Len() {
	case 0:
		return cfg.VoidTyp()
	case 1:
		return typFor(sig.Results().At(0).Type())
	default:
		return cfg.NamedTyp(sig.Results().String())
	}
}

func typFor(t types.Type) cfg.Typ {
	if named, ok := t.(*types.Named); ok {
		return cfg.NamedTyp(named.String())
	}
	switch u := t.Underlying().(type) {
	case *types.Basic:
		info := u.Info()
		switch {
		case info&types.IsBoolean != 0:
			return cfg.BoolTyp()
		case info&types.IsInteger != 0:
			return cfg.IntTyp()
		case info&(types.IsFloat|types.IsComplex) != 0:
			return cfg.FloatTyp()
		case info&types.IsString != 0:
			return cfg.StrTyp()
		default:
			return cfg.VoidTyp()
		}
	case *types.Pointer:
		return cfg.PtrTo(typFor(u.Elem()))
	case *types.Slice:
		return cfg.ArrayOf(typFor(u.Elem()))
	case *types.Array:
		return cfg.ArrayOf(typFor(u.Elem()))
	case *types.Signature:
		return cfg.FunTyp()
	default:
		return cfg.NamedTyp(t.String())
	}
}

func opName(instr ssa.Instruction) string {
	return strings.ToLower(strings.TrimPrefix(fmt.Sprintf("%T", instr), "*ssa."))
}

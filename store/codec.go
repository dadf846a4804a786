package store

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

// The wire form is a plain tree of tagged records: expressions and
// instructions carry a kind byte selecting which fields are meaningful.
// Edges are stored on the source node only; predecessor lists are rebuilt
// by replaying the edges in node order.

type locDTO struct {
	File string
	Line int
	Col  int
}

type typDTO struct {
	Kind uint8
	Elem *typDTO `msgpack:",omitempty"`
	Name string  `msgpack:",omitempty"`
}

type identDTO struct {
	Name  string
	Stamp int32
}

const (
	exprVar uint8 = iota
	exprIntLit
	exprStrLit
	exprUnOp
	exprBinOp
	exprField
	exprIndex
)

type exprDTO struct {
	Kind  uint8
	Ident identDTO `msgpack:",omitempty"`
	Int   int64    `msgpack:",omitempty"`
	Str   string   `msgpack:",omitempty"`
	Op    string   `msgpack:",omitempty"`
	X     *exprDTO `msgpack:",omitempty"`
	Y     *exprDTO `msgpack:",omitempty"`
}

const (
	instrLoad uint8 = iota
	instrStore
	instrCall
	instrPrune
	instrSkip
)

type instrDTO struct {
	Kind       uint8
	Ident      identDTO  `msgpack:",omitempty"`
	Dst        *exprDTO  `msgpack:",omitempty"`
	Src        *exprDTO  `msgpack:",omitempty"`
	Typ        *typDTO   `msgpack:",omitempty"`
	Fn         string    `msgpack:",omitempty"`
	Args       []exprDTO `msgpack:",omitempty"`
	TrueBranch bool      `msgpack:",omitempty"`
	Reason     string    `msgpack:",omitempty"`
	Loc        locDTO
}

type nodeDTO struct {
	ID       int32
	Kind     uint8
	Loc      locDTO
	Instrs   []instrDTO `msgpack:",omitempty"`
	Succs    []int32    `msgpack:",omitempty"`
	ExnSuccs []int32    `msgpack:",omitempty"`
}

type formalDTO struct {
	Name string
	Typ  typDTO
}

type attrsDTO struct {
	Name        string
	Loc         locDTO
	Formals     []formalDTO `msgpack:",omitempty"`
	Ret         typDTO
	IsDefined   bool
	IsSynthetic bool
	IsBridge    bool
	Changed     bool
}

type procDTO struct {
	Attrs attrsDTO
	Nodes []nodeDTO
}

type cfgDTO struct {
	Procs []procDTO
}

func encodeLoc(l cfg.Location) locDTO { return locDTO{File: l.File, Line: l.Line, Col: l.Col} }
func decodeLoc(d locDTO) cfg.Location { return cfg.Location{File: d.File, Line: d.Line, Col: d.Col} }

func encodeTyp(t cfg.Typ) typDTO {
	d := typDTO{Kind: uint8(t.Kind), Name: t.Name}
	if t.Elem != nil {
		elem := encodeTyp(*t.Elem)
		d.Elem = &elem
	}
	return d
}

func decodeTyp(d typDTO) cfg.Typ {
	t := cfg.Typ{Kind: cfg.TypKind(d.Kind), Name: d.Name}
	if d.Elem != nil {
		elem := decodeTyp(*d.Elem)
		t.Elem = &elem
	}
	return t
}

func encodeIdent(id cfg.Ident) identDTO {
	return identDTO{Name: id.Name(), Stamp: id.Stamp()}
}

func decodeIdent(d identDTO) cfg.Ident { return cfg.NewIdent(d.Name, d.Stamp) }

func encodeExpr(e cfg.Expr) *exprDTO {
	switch e := e.(type) {
	case cfg.Var:
		return &exprDTO{Kind: exprVar, Ident: encodeIdent(e.ID)}
	case cfg.IntLit:
		return &exprDTO{Kind: exprIntLit, Int: e.Value}
	case cfg.StrLit:
		return &exprDTO{Kind: exprStrLit, Str: e.Value}
	case cfg.UnOp:
		return &exprDTO{Kind: exprUnOp, Op: e.Op, X: encodeExpr(e.X)}
	case cfg.BinOp:
		return &exprDTO{Kind: exprBinOp, Op: e.Op, X: encodeExpr(e.X), Y: encodeExpr(e.Y)}
	case cfg.Field:
		return &exprDTO{Kind: exprField, Str: e.Name, X: encodeExpr(e.X)}
	case cfg.Index:
		return &exprDTO{Kind: exprIndex, X: encodeExpr(e.X), Y: encodeExpr(e.Idx)}
	default:
		panic(fmt.Sprintf("unencodable expression %T", e))
	}
}

func decodeExpr(d *exprDTO) (cfg.Expr, error) {
	if d == nil {
		return nil, fmt.Errorf("missing expression")
	}
	switch d.Kind {
	case exprVar:
		return cfg.Var{ID: decodeIdent(d.Ident)}, nil
	case exprIntLit:
		return cfg.IntLit{Value: d.Int}, nil
	case exprStrLit:
		return cfg.StrLit{Value: d.Str}, nil
	case exprUnOp:
		x, err := decodeExpr(d.X)
		if err != nil {
			return nil, err
		}
		return cfg.UnOp{Op: d.Op, X: x}, nil
	case exprBinOp:
		x, err := decodeExpr(d.X)
		if err != nil {
			return nil, err
		}
		y, err := decodeExpr(d.Y)
		if err != nil {
			return nil, err
		}
		return cfg.BinOp{Op: d.Op, X: x, Y: y}, nil
	case exprField:
		x, err := decodeExpr(d.X)
		if err != nil {
			return nil, err
		}
		return cfg.Field{X: x, Name: d.Str}, nil
	case exprIndex:
		x, err := decodeExpr(d.X)
		if err != nil {
			return nil, err
		}
		idx, err := decodeExpr(d.Y)
		if err != nil {
			return nil, err
		}
		return cfg.Index{X: x, Idx: idx}, nil
	default:
		return nil, fmt.Errorf("unknown expression kind %d", d.Kind)
	}
}

func encodeInstr(i cfg.Instr) instrDTO {
	switch i := i.(type) {
	case cfg.Load:
		typ := encodeTyp(i.Typ)
		return instrDTO{Kind: instrLoad, Ident: encodeIdent(i.Dst), Src: encodeExpr(i.Src), Typ: &typ, Loc: encodeLoc(i.Loc)}
	case cfg.Store:
		typ := encodeTyp(i.Typ)
		return instrDTO{Kind: instrStore, Dst: encodeExpr(i.Dst), Src: encodeExpr(i.Src), Typ: &typ, Loc: encodeLoc(i.Loc)}
	case cfg.Call:
		args := make([]exprDTO, len(i.Args))
		for j, a := range i.Args {
			args[j] = *encodeExpr(a)
		}
		return instrDTO{Kind: instrCall, Ident: encodeIdent(i.Ret), Fn: i.Fn, Args: args, Loc: encodeLoc(i.Loc)}
	case cfg.Prune:
		return instrDTO{Kind: instrPrune, Src: encodeExpr(i.Cond), TrueBranch: i.TrueBranch, Loc: encodeLoc(i.Loc)}
	case cfg.Skip:
		return instrDTO{Kind: instrSkip, Reason: i.Reason, Loc: encodeLoc(i.Loc)}
	default:
		panic(fmt.Sprintf("unencodable instruction %T", i))
	}
}

func decodeInstr(d instrDTO) (cfg.Instr, error) {
	loc := decodeLoc(d.Loc)
	switch d.Kind {
	case instrLoad:
		src, err := decodeExpr(d.Src)
		if err != nil {
			return nil, err
		}
		if d.Typ == nil {
			return nil, fmt.Errorf("load without type")
		}
		return cfg.Load{Dst: decodeIdent(d.Ident), Src: src, Typ: decodeTyp(*d.Typ), Loc: loc}, nil
	case instrStore:
		dst, err := decodeExpr(d.Dst)
		if err != nil {
			return nil, err
		}
		src, err := decodeExpr(d.Src)
		if err != nil {
			return nil, err
		}
		if d.Typ == nil {
			return nil, fmt.Errorf("store without type")
		}
		return cfg.Store{Dst: dst, Src: src, Typ: decodeTyp(*d.Typ), Loc: loc}, nil
	case instrCall:
		args := make([]cfg.Expr, len(d.Args))
		for j := range d.Args {
			a, err := decodeExpr(&d.Args[j])
			if err != nil {
				return nil, err
			}
			args[j] = a
		}
		return cfg.Call{Ret: decodeIdent(d.Ident), Fn: d.Fn, Args: args, Loc: loc}, nil
	case instrPrune:
		cond, err := decodeExpr(d.Src)
		if err != nil {
			return nil, err
		}
		return cfg.Prune{Cond: cond, TrueBranch: d.TrueBranch, Loc: loc}, nil
	case instrSkip:
		return cfg.Skip{Reason: d.Reason, Loc: loc}, nil
	default:
		return nil, fmt.Errorf("unknown instruction kind %d", d.Kind)
	}
}

func encodeAttrs(a *cfg.ProcAttributes) attrsDTO {
	formals := make([]formalDTO, len(a.Formals))
	for i, f := range a.Formals {
		formals[i] = formalDTO{Name: f.Name, Typ: encodeTyp(f.Typ)}
	}
	return attrsDTO{
		Name:        a.Name,
		Loc:         encodeLoc(a.Loc),
		Formals:     formals,
		Ret:         encodeTyp(a.Ret),
		IsDefined:   a.IsDefined,
		IsSynthetic: a.IsSynthetic,
		IsBridge:    a.IsBridge,
		Changed:     a.Changed,
	}
}

func decodeAttrs(d attrsDTO) cfg.ProcAttributes {
	formals := make([]cfg.Formal, len(d.Formals))
	for i, f := range d.Formals {
		formals[i] = cfg.Formal{Name: f.Name, Typ: decodeTyp(f.Typ)}
	}
	if len(formals) == 0 {
		formals = nil
	}
	return cfg.ProcAttributes{
		Name:        d.Name,
		Loc:         decodeLoc(d.Loc),
		Formals:     formals,
		Ret:         decodeTyp(d.Ret),
		IsDefined:   d.IsDefined,
		IsSynthetic: d.IsSynthetic,
		IsBridge:    d.IsBridge,
		Changed:     d.Changed,
	}
}

func encodeProc(p *cfg.Procdesc) procDTO {
	nodes := make([]nodeDTO, 0, p.NumNodes())
	for _, n := range p.Nodes() {
		nd := nodeDTO{
			ID:       int32(n.ID()),
			Kind:     uint8(n.Kind()),
			Loc:      encodeLoc(n.Loc()),
			Succs:    encodeIDs(n.Succs()),
			ExnSuccs: encodeIDs(n.ExnSuccs()),
		}
		for _, instr := range n.Instrs() {
			nd.Instrs = append(nd.Instrs, encodeInstr(instr))
		}
		nodes = append(nodes, nd)
	}
	return procDTO{Attrs: encodeAttrs(p.Attrs()), Nodes: nodes}
}

func decodeProc(d procDTO) (*cfg.Procdesc, error) {
	pdesc := cfg.NewProcdesc(decodeAttrs(d.Attrs))
	for _, nd := range d.Nodes {
		instrs := make([]cfg.Instr, 0, len(nd.Instrs))
		for _, id := range nd.Instrs {
			instr, err := decodeInstr(id)
			if err != nil {
				return nil, fmt.Errorf("procedure %q: %w", d.Attrs.Name, err)
			}
			instrs = append(instrs, instr)
		}
		pdesc.AddNode(cfg.NodeID(nd.ID), cfg.NodeKind(nd.Kind), decodeLoc(nd.Loc), instrs...)
	}
	// Replaying edges in node order rebuilds the predecessor lists in a
	// deterministic order.
	for _, nd := range d.Nodes {
		for _, succ := range nd.Succs {
			pdesc.AddEdge(cfg.NodeID(nd.ID), cfg.NodeID(succ))
		}
		for _, succ := range nd.ExnSuccs {
			pdesc.AddExnEdge(cfg.NodeID(nd.ID), cfg.NodeID(succ))
		}
	}
	return pdesc, nil
}

func encodeIDs(ids []cfg.NodeID) []int32 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int32, len(ids))
	for i, id := range ids {
		out[i] = int32(id)
	}
	return out
}

func encodeAttrsRecord(a *cfg.ProcAttributes) ([]byte, error) {
	return msgpack.Marshal(encodeAttrs(a))
}

func decodeAttrsRecord(data []byte) (cfg.ProcAttributes, error) {
	var dto attrsDTO
	if err := msgpack.Unmarshal(data, &dto); err != nil {
		return cfg.ProcAttributes{}, fmt.Errorf("decoding attribute record: %w", err)
	}
	return decodeAttrs(dto), nil
}

// EncodeCfg serializes a whole capture, procedures in sorted name order.
func EncodeCfg(c *cfg.Cfg) ([]byte, error) {
	dto := cfgDTO{Procs: make([]procDTO, 0, c.NumProcs())}
	c.ForEach(func(p *cfg.Procdesc) {
		dto.Procs = append(dto.Procs, encodeProc(p))
	})
	return msgpack.Marshal(dto)
}

// DecodeCfg rebuilds a capture from its serialized form.
func DecodeCfg(data []byte) (*cfg.Cfg, error) {
	var dto cfgDTO
	if err := msgpack.Unmarshal(data, &dto); err != nil {
		return nil, fmt.Errorf("decoding capture: %w", err)
	}
	c := cfg.New()
	for _, pd := range dto.Procs {
		pdesc, err := decodeProc(pd)
		if err != nil {
			return nil, err
		}
		c.AddProc(pdesc)
	}
	return c, nil
}

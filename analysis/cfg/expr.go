package cfg

import (
	"fmt"
	"strconv"
)

// Expr is a side-effect free expression appearing as an instruction operand.
// The family is closed: the diff comparator and the printers switch
// exhaustively over it.
type Expr interface {
	fmt.Stringer
	expr()
}

// Var references an intermediate value by ident.
type Var struct {
	ID Ident
}

// IntLit is an integer literal.
type IntLit struct {
	Value int64
}

// StrLit is a string literal.
type StrLit struct {
	Value string
}

// UnOp applies a unary operator to an operand.
type UnOp struct {
	Op string
	X  Expr
}

// BinOp applies a binary operator to two operands.
type BinOp struct {
	Op   string
	X, Y Expr
}

// Field selects a named field of an aggregate.
type Field struct {
	X    Expr
	Name string
}

// Index selects an element of an array or slice.
type Index struct {
	X   Expr
	Idx Expr
}

func (Var) expr()    {}
func (IntLit) expr() {}
func (StrLit) expr() {}
func (UnOp) expr()   {}
func (BinOp) expr()  {}
func (Field) expr()  {}
func (Index) expr()  {}

func (e Var) String() string    { return e.ID.String() }
func (e IntLit) String() string { return strconv.FormatInt(e.Value, 10) }
func (e StrLit) String() string { return strconv.Quote(e.Value) }
func (e UnOp) String() string   { return fmt.Sprintf("%s%s", e.Op, e.X) }
func (e BinOp) String() string  { return fmt.Sprintf("%s %s %s", e.X, e.Op, e.Y) }
func (e Field) String() string  { return fmt.Sprintf("%s.%s", e.X, e.Name) }
func (e Index) String() string  { return fmt.Sprintf("%s[%s]", e.X, e.Idx) }

// ExprIdents collects, in left-to-right order, every ident referenced by the
// expression.
func ExprIdents(e Expr) (ids []Ident) {
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case Var:
			ids = append(ids, e.ID)
		case UnOp:
			walk(e.X)
		case BinOp:
			walk(e.X)
			walk(e.Y)
		case Field:
			walk(e.X)
		case Index:
			walk(e.X)
			walk(e.Idx)
		}
	}
	walk(e)
	return
}

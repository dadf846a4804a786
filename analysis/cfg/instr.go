package cfg

import (
	"fmt"
	"strings"
)

// Instr is a single instruction in a control-flow node. Like Expr, the
// family is closed.
type Instr interface {
	fmt.Stringer
	// Pos returns the source location of the instruction.
	Pos() Location
	instr()
}

// Load evaluates Src and binds the result to the fresh ident Dst.
type Load struct {
	Dst Ident
	Src Expr
	Typ Typ
	Loc Location
}

// Store writes Src to the memory location denoted by Dst.
type Store struct {
	Dst Expr
	Src Expr
	Typ Typ
	Loc Location
}

// Call invokes procedure Fn, binding the result (if any) to Ret.
type Call struct {
	Ret  Ident
	Fn   string
	Args []Expr
	Loc  Location
}

// Prune filters executions: control continues past the instruction only
// when Cond evaluates to TrueBranch. Frontends emit one prune per branch
// direction.
type Prune struct {
	Cond       Expr
	TrueBranch bool
	Loc        Location
}

// Skip is a no-op carrying a reason, used for source constructs the
// frontend does not model.
type Skip struct {
	Reason string
	Loc    Location
}

func (Load) instr()  {}
func (Store) instr() {}
func (Call) instr()  {}
func (Prune) instr() {}
func (Skip) instr()  {}

func (i Load) Pos() Location  { return i.Loc }
func (i Store) Pos() Location { return i.Loc }
func (i Call) Pos() Location  { return i.Loc }
func (i Prune) Pos() Location { return i.Loc }
func (i Skip) Pos() Location  { return i.Loc }

func (i Load) String() string {
	return fmt.Sprintf("%s = load %s", i.Dst, i.Src)
}

func (i Store) String() string {
	return fmt.Sprintf("store %s <- %s", i.Dst, i.Src)
}

func (i Call) String() string {
	args := make([]string, len(i.Args))
	for k, a := range i.Args {
		args[k] = a.String()
	}
	return fmt.Sprintf("%s = call %s(%s)", i.Ret, i.Fn, strings.Join(args, ", "))
}

func (i Prune) String() string {
	return fmt.Sprintf("prune %s [%t]", i.Cond, i.TrueBranch)
}

func (i Skip) String() string {
	return fmt.Sprintf("skip (%s)", i.Reason)
}

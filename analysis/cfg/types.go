package cfg

import "fmt"

// TypKind discriminates the lightweight type descriptions attached to
// formals, return values and memory operations.
type TypKind uint8

const (
	Tvoid TypKind = iota
	Tint
	Tfloat
	Tbool
	Tstr
	Tptr
	Tarray
	Tfun
	Tnamed
)

// Typ is a structural type description. It carries just enough shape for
// the diff step to compare procedure signatures and for abstract domains to
// branch on operand kinds; it is not a full type system.
type Typ struct {
	Kind TypKind
	Elem *Typ   // pointee or element type for Tptr/Tarray
	Name string // declared name for Tnamed
}

func VoidTyp() Typ          { return Typ{Kind: Tvoid} }
func IntTyp() Typ           { return Typ{Kind: Tint} }
func FloatTyp() Typ         { return Typ{Kind: Tfloat} }
func BoolTyp() Typ          { return Typ{Kind: Tbool} }
func StrTyp() Typ           { return Typ{Kind: Tstr} }
func FunTyp() Typ           { return Typ{Kind: Tfun} }
func NamedTyp(n string) Typ { return Typ{Kind: Tnamed, Name: n} }

func PtrTo(t Typ) Typ {
	return Typ{Kind: Tptr, Elem: &t}
}

func ArrayOf(t Typ) Typ {
	return Typ{Kind: Tarray, Elem: &t}
}

// Equal checks structural type equality.
func (t Typ) Equal(o Typ) bool {
	if t.Kind != o.Kind || t.Name != o.Name {
		return false
	}
	switch {
	case t.Elem == nil && o.Elem == nil:
		return true
	case t.Elem == nil || o.Elem == nil:
		return false
	default:
		return t.Elem.Equal(*o.Elem)
	}
}

func (t Typ) String() string {
	switch t.Kind {
	case Tvoid:
		return "void"
	case Tint:
		return "int"
	case Tfloat:
		return "float"
	case Tbool:
		return "bool"
	case Tstr:
		return "string"
	case Tfun:
		return "func"
	case Tptr:
		return fmt.Sprintf("ptr(%s)", t.Elem)
	case Tarray:
		return fmt.Sprintf("array(%s)", t.Elem)
	case Tnamed:
		return t.Name
	default:
		return fmt.Sprintf("typ(%d)", t.Kind)
	}
}

// Formal is a named formal parameter of a procedure.
type Formal struct {
	Name string
	Typ  Typ
}

func (f Formal) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Typ)
}

// Location is a source position. The zero value means "unknown".
type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	if l.File == "" {
		return "<unknown>"
	}
	if l.Col == 0 {
		return fmt.Sprintf("%s:%d", l.File, l.Line)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

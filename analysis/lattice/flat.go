package lattice

import (
	"fmt"
)

type flatKind uint8

const (
	flatBot flatKind = iota
	flatValue
	flatTop
)

// Flat is a member of the flat lift of a value type: ⊥ below all values,
// ⊤ above all, and the values themselves mutually incomparable.
type Flat[V comparable] struct {
	kind  flatKind
	value V
}

func FlatBot[V comparable]() Flat[V] { return Flat[V]{kind: flatBot} }
func FlatTop[V comparable]() Flat[V] { return Flat[V]{kind: flatTop} }

func FlatValue[V comparable](v V) Flat[V] {
	return Flat[V]{kind: flatValue, value: v}
}

func (f Flat[V]) IsBot() bool { return f.kind == flatBot }
func (f Flat[V]) IsTop() bool { return f.kind == flatTop }

// Value returns the carried value; the boolean is false for ⊥ and ⊤.
func (f Flat[V]) Value() (V, bool) {
	return f.value, f.kind == flatValue
}

// Is checks whether the element represents exactly the given value.
func (f Flat[V]) Is(v V) bool {
	return f.kind == flatValue && f.value == v
}

func (f Flat[V]) String() string {
	switch f.kind {
	case flatBot:
		return colorizeElement("⊥")
	case flatTop:
		return colorizeElement("⊤")
	default:
		return fmt.Sprint(f.value)
	}
}

// FlatDomain is the domain of Flat elements. The lattice has height 2, so
// widening is plain join.
type FlatDomain[V comparable] struct{}

func (FlatDomain[V]) Join(a, b Flat[V]) Flat[V] {
	switch {
	case a == b:
		return a
	case a.IsBot():
		return b
	case b.IsBot():
		return a
	default:
		return FlatTop[V]()
	}
}

func (d FlatDomain[V]) Leq(a, b Flat[V]) bool {
	return a.IsBot() || b.IsTop() || a == b
}

func (d FlatDomain[V]) Widen(prev, next Flat[V], visits int) Flat[V] {
	return d.Join(prev, next)
}

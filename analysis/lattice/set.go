package lattice

import (
	"sort"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/ibex-analyzer/ibex/utils"
)

// Set is a persistent finite set over hashable elements. Operations return
// new sets sharing structure with the receiver; a Set value is never
// mutated, so states stored in an invariant map stay valid as iteration
// proceeds.
type Set[T utils.HashableEq[T]] struct {
	m *immutable.Map[T, struct{}]
}

func EmptySet[T utils.HashableEq[T]]() Set[T] {
	return Set[T]{m: utils.NewImmMap[T, struct{}]()}
}

func SetOf[T utils.HashableEq[T]](xs ...T) Set[T] {
	s := EmptySet[T]()
	for _, x := range xs {
		s = s.Add(x)
	}
	return s
}

// The zero Set behaves as the empty set.
func (s Set[T]) Add(x T) Set[T] {
	if s.m == nil {
		s = EmptySet[T]()
	}
	return Set[T]{m: s.m.Set(x, struct{}{})}
}

func (s Set[T]) Remove(x T) Set[T] {
	if s.m == nil {
		return s
	}
	return Set[T]{m: s.m.Delete(x)}
}

func (s Set[T]) Contains(x T) bool {
	if s.m == nil {
		return false
	}
	_, ok := s.m.Get(x)
	return ok
}

func (s Set[T]) Size() int {
	if s.m == nil {
		return 0
	}
	return s.m.Len()
}

func (s Set[T]) ForEach(f func(T)) {
	if s.m == nil {
		return
	}
	itr := s.m.Iterator()
	for !itr.Done() {
		x, _, _ := itr.Next()
		f(x)
	}
}

// Union folds the smaller set into the larger one.
func (s Set[T]) Union(o Set[T]) Set[T] {
	if s.Size() < o.Size() {
		s, o = o, s
	}
	o.ForEach(func(x T) { s = s.Add(x) })
	return s
}

// Subset checks s ⊆ o.
func (s Set[T]) Subset(o Set[T]) bool {
	if s.Size() > o.Size() {
		return false
	}
	sub := true
	s.ForEach(func(x T) {
		sub = sub && o.Contains(x)
	})
	return sub
}

// Entries returns the elements sorted by their string form, so printed
// states are deterministic.
func (s Set[T]) Entries(str func(T) string) []T {
	out := make([]T, 0, s.Size())
	s.ForEach(func(x T) { out = append(out, x) })
	sort.Slice(out, func(i, j int) bool { return str(out[i]) < str(out[j]) })
	return out
}

// StringWith renders the set as { e1, e2, ... } with deterministic order.
func (s Set[T]) StringWith(str func(T) string) string {
	if s.Size() == 0 {
		return colorizeElement("⊥")
	}
	parts := make([]string, 0, s.Size())
	for _, x := range s.Entries(str) {
		parts = append(parts, str(x))
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// SetDomain is the powerset domain ordered by inclusion: join is union and
// bottom is the empty set. Ascending chains are bounded by the universe of
// elements the transfer functions can mention, so widening is plain join.
type SetDomain[T utils.HashableEq[T]] struct{}

func (SetDomain[T]) Join(a, b Set[T]) Set[T] { return a.Union(b) }

func (SetDomain[T]) Leq(a, b Set[T]) bool { return a.Subset(b) }

func (d SetDomain[T]) Widen(prev, next Set[T], visits int) Set[T] {
	return d.Join(prev, next)
}

package lattice

import (
	"testing"

	"github.com/ibex-analyzer/ibex/analysis/cfg"
)

func TestFlatDomain(t *testing.T) {
	d := FlatDomain[int]{}
	b, one, two, top := FlatBot[int](), FlatValue(1), FlatValue(2), FlatTop[int]()

	joins := []struct {
		a, b, want Flat[int]
	}{
		{b, b, b},
		{b, one, one},
		{one, b, one},
		{one, one, one},
		{one, two, top},
		{one, top, top},
		{top, b, top},
	}
	for _, tc := range joins {
		if got := d.Join(tc.a, tc.b); got != tc.want {
			t.Errorf("join(%v, %v) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}

	if !d.Leq(b, one) || !d.Leq(one, top) || d.Leq(one, two) || d.Leq(top, one) {
		t.Error("flat partial order broken")
	}
	if !one.Is(1) || one.Is(2) || top.Is(1) {
		t.Error("Is must hold exactly for the carried value")
	}
}

func TestSetDomain(t *testing.T) {
	d := SetDomain[cfg.Ident]{}
	gen := cfg.NewIdentGenerator()
	x, y, z := gen.Fresh("x"), gen.Fresh("y"), gen.Fresh("z")

	s := SetOf(x, y)
	u := d.Join(s, SetOf(y, z))
	if u.Size() != 3 || !u.Contains(x) || !u.Contains(z) {
		t.Errorf("union = %v", u.StringWith(cfg.Ident.String))
	}

	if !d.Leq(s, u) || d.Leq(u, s) {
		t.Error("subset order broken")
	}

	// Persistence: deriving a new set leaves the original untouched.
	if s.Size() != 2 || s.Contains(z) {
		t.Error("set mutated through a derived copy")
	}
	if r := u.Remove(y); r.Contains(y) || !u.Contains(y) {
		t.Error("removal must not touch the receiver")
	}

	if got := s.StringWith(cfg.Ident.String); got != "{ x$1, y$1 }" {
		t.Errorf("rendering not deterministic: %q", got)
	}
	if got := EmptySet[cfg.Ident]().Size(); got != 0 {
		t.Errorf("empty set has size %d", got)
	}

	var zero Set[cfg.Ident]
	if zero.Contains(x) || zero.Size() != 0 || !zero.Add(x).Contains(x) {
		t.Error("the zero set must behave as the empty set")
	}
}

func TestIntervalDomain(t *testing.T) {
	d := IntervalDomain{}

	a := IntervalFinite(0, 1)
	b := IntervalFinite(2, 5)
	if got := d.Join(a, b); got != IntervalFinite(0, 5) {
		t.Errorf("join = %v", got)
	}
	if !d.Leq(a, IntervalFinite(-1, 3)) || d.Leq(IntervalFinite(-1, 3), a) {
		t.Error("interval order broken")
	}
	if !d.Leq(IntervalBot(), a) || d.Leq(a, IntervalBot()) {
		t.Error("⊥ must be the least element")
	}
	if got := d.Join(IntervalBot(), a); got != a {
		t.Errorf("join with ⊥ = %v", got)
	}

	// An unstable upper bound widens to ∞ and then stays put.
	w := d.Widen(IntervalFinite(0, 1), IntervalFinite(0, 2), 3)
	if w != (Interval{Lo: Finite(0), Hi: PosInf()}) {
		t.Errorf("widen = %v", w)
	}
	if again := d.Widen(w, d.Join(w, IntervalFinite(0, 100)), 4); again != w {
		t.Errorf("widening must be stable: %v", again)
	}

	if !IntervalBot().IsBot() || IntervalBot().IsTop() || !IntervalTop().IsTop() {
		t.Error("⊥/⊤ recognition broken")
	}
}

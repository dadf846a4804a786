package lattice

import (
	"fmt"
)

// Bound is an interval endpoint: a finite integer or one of the two
// infinities.
type Bound struct {
	// inf is -1 for -∞, +1 for +∞ and 0 for a finite bound.
	inf int8
	n   int64
}

func Finite(n int64) Bound { return Bound{n: n} }
func NegInf() Bound        { return Bound{inf: -1} }
func PosInf() Bound        { return Bound{inf: 1} }

func (b Bound) Finite() (int64, bool) { return b.n, b.inf == 0 }

// Leq orders bounds with -∞ below every finite bound and +∞ above.
func (b Bound) Leq(o Bound) bool {
	switch {
	case b.inf != o.inf:
		return b.inf < o.inf
	case b.inf != 0:
		return true
	default:
		return b.n <= o.n
	}
}

func (b Bound) Geq(o Bound) bool { return o.Leq(b) }

func minBound(a, b Bound) Bound {
	if a.Leq(b) {
		return a
	}
	return b
}

func maxBound(a, b Bound) Bound {
	if a.Leq(b) {
		return b
	}
	return a
}

func (b Bound) String() string {
	switch b.inf {
	case -1:
		return "-∞"
	case 1:
		return "∞"
	default:
		return fmt.Sprint(b.n)
	}
}

// Interval is a member of the interval lattice: the set of integers between
// Lo and Hi inclusive. ⊥ is the empty interval [∞, -∞] and ⊤ is [-∞, ∞].
type Interval struct {
	Lo, Hi Bound
}

func IntervalBot() Interval { return Interval{Lo: PosInf(), Hi: NegInf()} }
func IntervalTop() Interval { return Interval{Lo: NegInf(), Hi: PosInf()} }

func IntervalFinite(lo, hi int64) Interval {
	return Interval{Lo: Finite(lo), Hi: Finite(hi)}
}

func (e Interval) IsBot() bool { return !e.Lo.Leq(e.Hi) }
func (e Interval) IsTop() bool { return e == IntervalTop() }

func (e Interval) String() string {
	if e.IsBot() {
		return colorizeElement("⊥")
	}
	return "[" + e.Lo.String() + ", " + e.Hi.String() + "]"
}

// IntervalDomain is the classic interval domain. Widening sends every
// unstable bound to the matching infinity, so any ascending chain
// stabilizes in at most two widening steps.
type IntervalDomain struct{}

func (IntervalDomain) Join(a, b Interval) Interval {
	if a.IsBot() {
		return b
	}
	if b.IsBot() {
		return a
	}
	return Interval{Lo: minBound(a.Lo, b.Lo), Hi: maxBound(a.Hi, b.Hi)}
}

func (IntervalDomain) Leq(a, b Interval) bool {
	if a.IsBot() {
		return true
	}
	if b.IsBot() {
		return false
	}
	return a.Lo.Geq(b.Lo) && a.Hi.Leq(b.Hi)
}

func (IntervalDomain) Widen(prev, next Interval, visits int) Interval {
	if prev.IsBot() {
		return next
	}
	if next.IsBot() {
		return prev
	}
	w := prev
	if !prev.Lo.Leq(next.Lo) {
		w.Lo = NegInf()
	}
	if !next.Hi.Leq(prev.Hi) {
		w.Hi = PosInf()
	}
	return w
}

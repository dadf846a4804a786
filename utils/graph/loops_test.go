package graph

import "testing"

func TestLoopNestHeaders(t *testing.T) {
	ln := nestedLoops().LoopNest(1)

	headers := map[int]bool{2: true, 3: true}
	for n := 1; n <= 6; n++ {
		if got, want := ln.IsHeader(n), headers[n]; got != want {
			t.Errorf("IsHeader(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestLoopNestNesting(t *testing.T) {
	ln := nestedLoops().LoopNest(1)

	if h, ok := ln.EnclosingHeader(4); !ok || h != 3 {
		t.Errorf("node 4 enclosed by %v (%v), want 3", h, ok)
	}
	if h, ok := ln.EnclosingHeader(3); !ok || h != 2 {
		t.Errorf("inner header enclosed by %v (%v), want 2", h, ok)
	}
	if _, ok := ln.EnclosingHeader(2); ok {
		t.Error("outer header must not be enclosed")
	}

	depths := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 1, 6: 0}
	for n, want := range depths {
		if got := ln.Depth(n); got != want {
			t.Errorf("Depth(%d) = %d, want %d", n, got, want)
		}
	}
}

func TestLoopNestAcyclic(t *testing.T) {
	edges := map[int][]int{1: {2, 3}, 2: {4}, 3: {4}}
	ln := Of(func(n int) []int { return edges[n] }).LoopNest(1)

	for n := 1; n <= 4; n++ {
		if ln.IsHeader(n) {
			t.Errorf("node %d is a header of an acyclic graph", n)
		}
		if ln.Depth(n) != 0 {
			t.Errorf("node %d has nonzero depth", n)
		}
	}
}

func TestLoopNestSelfLoop(t *testing.T) {
	g := Of(func(n int) []int {
		if n == 1 {
			return []int{1, 2}
		}
		return nil
	})
	ln := g.LoopNest(1)

	if !ln.IsHeader(1) {
		t.Error("self-loop target is a header")
	}
	if ln.Depth(1) != 1 || ln.Depth(2) != 0 {
		t.Errorf("depths %d, %d; want 1, 0", ln.Depth(1), ln.Depth(2))
	}
}

package graph

import (
	"reflect"
	"testing"
)

func TestSCCDecomposition(t *testing.T) {
	dec := nestedLoops().SCC([]int{1})

	if len(dec.Components) != 3 {
		t.Fatalf("%d components, want 3", len(dec.Components))
	}
	loop := dec.ComponentOf(2)
	for _, n := range []int{3, 4, 5} {
		if dec.ComponentOf(n) != loop {
			t.Errorf("node %d not in the loop component", n)
		}
	}
	if dec.ComponentOf(1) == loop || dec.ComponentOf(6) == loop {
		t.Error("acyclic nodes merged into the loop component")
	}

	// Edges only go from higher component indices to lower ones.
	if !(dec.ComponentOf(1) > loop && loop > dec.ComponentOf(6)) {
		t.Errorf("component order violated: %d, %d, %d",
			dec.ComponentOf(1), loop, dec.ComponentOf(6))
	}

	if dec.ComponentOf(42) != -1 {
		t.Error("unreachable node must map to -1")
	}
}

func TestSCCToGraph(t *testing.T) {
	dec := nestedLoops().SCC([]int{1})
	condensed := dec.ToGraph()

	if got, want := condensed.Edges(dec.ComponentOf(1)), []SCC{dec.ComponentOf(2)}; !reflect.DeepEqual(got, want) {
		t.Errorf("edges of the entry component = %v, want %v", got, want)
	}
	if got, want := condensed.Edges(dec.ComponentOf(2)), []SCC{dec.ComponentOf(6)}; !reflect.DeepEqual(got, want) {
		t.Errorf("edges of the loop component = %v, want %v", got, want)
	}
	if got := condensed.Edges(dec.ComponentOf(6)); len(got) != 0 {
		t.Errorf("exit component has edges %v", got)
	}
}

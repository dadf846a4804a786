package worklist

import (
	"reflect"
	"testing"
)

func TestProcessIsFIFO(t *testing.T) {
	var order []int
	Start(1, func(next int, add func(int)) {
		order = append(order, next)
		if next < 3 {
			add(next + 10)
			add(next + 1)
		}
	})
	if want := []int{1, 11, 2, 12, 3}; !reflect.DeepEqual(order, want) {
		t.Errorf("processed %v, want %v", order, want)
	}
}

func TestGetNextOnEmpty(t *testing.T) {
	w := Empty[string]()
	if !w.IsEmpty() {
		t.Fatal("fresh worklist not empty")
	}
	if got := w.GetNext(); got != "" {
		t.Errorf("GetNext on empty = %q, want the zero value", got)
	}
}

package worklist

// Worklist is a FIFO queue of work items. The fixpoint engine and the graph
// traversals drain it until no more work is generated.
type Worklist[T any] struct {
	list []T
}

// Start worklist execution with provided `start` element and an iteration
// function. The iteration function exposes the next element and a function
// with which to add more elements to the worklist.
func Start[T any](start T, do func(next T, add func(el T))) {
	StartV([]T{start}, do)
}

// StartV starts worklist execution with a preloaded queue and an iteration
// function. The iteration function exposes the next element and a function
// with which to add more elements to the worklist.
func StartV[T any](start []T, do func(next T, add func(el T))) {
	W := Empty[T]()
	for _, e := range start {
		W.Add(e)
	}

	W.Process(do)
}

// Empty creates an empty worklist.
func Empty[T any]() Worklist[T] {
	return Worklist[T]{}
}

// GetNext dequeues the oldest element in the worklist. Returns the zero
// value if the worklist is empty.
func (w *Worklist[T]) GetNext() (ret T) {
	if len(w.list) == 0 {
		return
	}
	next := w.list[0]
	w.list = w.list[1:]
	return next
}

// IsEmpty checks whether the worklist holds any pending elements.
func (w *Worklist[T]) IsEmpty() bool {
	return len(w.list) == 0
}

// Add enqueues an element.
func (w *Worklist[T]) Add(el T) {
	w.list = append(w.list, el)
}

// Process drains the worklist, calling `do` on every element. The callback
// may enqueue further elements through `add`.
func (w *Worklist[T]) Process(
	do func(
		next T,
		add func(element T))) {
	for !w.IsEmpty() {
		do(w.GetNext(), w.Add)
	}
}

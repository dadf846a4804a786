package absint

// NodeInvariant is the per-node result of a fixpoint computation.
type NodeInvariant[S any] struct {
	// Pre is the state on entry to the node (after join/widening).
	Pre S
	// Post is the state after executing the node's instructions.
	Post S
	// Visits counts how many times the engine executed the node.
	Visits int
}

// InvariantMap holds the invariants of one analysis call. It is private,
// per-call state: built fresh by Analyze, read by the caller to extract
// results, then discarded. Absence of a node means the node was never
// reached, which is a normal outcome, not an error.
type InvariantMap[N comparable, S any] struct {
	invs map[N]NodeInvariant[S]
}

func newInvariantMap[N comparable, S any]() *InvariantMap[N, S] {
	return &InvariantMap[N, S]{invs: make(map[N]NodeInvariant[S])}
}

// Get returns the full invariant of a node, if it was reached.
func (im *InvariantMap[N, S]) Get(n N) (NodeInvariant[S], bool) {
	inv, ok := im.invs[n]
	return inv, ok
}

// Pre returns the pre-state of a node, if it was reached.
func (im *InvariantMap[N, S]) Pre(n N) (S, bool) {
	inv, ok := im.invs[n]
	return inv.Pre, ok
}

// Post returns the post-state of a node, if it was reached.
func (im *InvariantMap[N, S]) Post(n N) (S, bool) {
	inv, ok := im.invs[n]
	return inv.Post, ok
}

// Visits returns the visit count of a node, 0 if never reached.
func (im *InvariantMap[N, S]) Visits(n N) int {
	return im.invs[n].Visits
}

// Len returns the number of reached nodes.
func (im *InvariantMap[N, S]) Len() int { return len(im.invs) }

func (im *InvariantMap[N, S]) set(n N, inv NodeInvariant[S]) {
	im.invs[n] = inv
}

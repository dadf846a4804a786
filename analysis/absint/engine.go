package absint

import (
	"github.com/ibex-analyzer/ibex/analysis/proccfg"
	"github.com/ibex-analyzer/ibex/utils/graph"
	"github.com/ibex-analyzer/ibex/utils/pq"
)

// DefaultWideningThreshold is the number of visits after which a node's
// pre-state is widened instead of joined.
const DefaultWideningThreshold = 5

// Interpreter ties a CFG view, a domain and transfer functions together.
// One call to Analyze runs to completion synchronously; the interpreter
// holds no state across calls.
type Interpreter[N comparable, S any] struct {
	graph          proccfg.Graph[N]
	domain         Domain[S]
	transfer       TransferFunctions[N, S]
	widenThreshold int
	budget         *Budget
}

// Option configures an Interpreter.
type Option[N comparable, S any] func(*Interpreter[N, S])

// WithWideningThreshold overrides the visit count beyond which joins become
// widenings.
func WithWideningThreshold[N comparable, S any](threshold int) Option[N, S] {
	return func(ip *Interpreter[N, S]) { ip.widenThreshold = threshold }
}

// WithBudget bounds the run by a symbolic-operation budget, spent one unit
// per node visit. Exceeding it aborts the run with a BudgetExhaustedError.
func WithBudget[N comparable, S any](b *Budget) Option[N, S] {
	return func(ip *Interpreter[N, S]) { ip.budget = b }
}

func NewInterpreter[N comparable, S any](
	g proccfg.Graph[N],
	domain Domain[S],
	transfer TransferFunctions[N, S],
	opts ...Option[N, S],
) *Interpreter[N, S] {
	ip := &Interpreter[N, S]{
		graph:          g,
		domain:         domain,
		transfer:       transfer,
		widenThreshold: DefaultWideningThreshold,
	}
	for _, opt := range opts {
		opt(ip)
	}
	return ip
}

// Analyze runs the worklist fixpoint from the given initial state for the
// view's start node and returns the invariant map. Pending nodes are always
// selected in reverse postorder, so repeated runs over the same inputs
// produce identical maps. On budget exhaustion the map computed so far is
// returned together with the error.
func (ip *Interpreter[N, S]) Analyze(initial S) (*InvariantMap[N, S], error) {
	im := newInvariantMap[N, S]()
	start := ip.graph.Start()
	rpo := graph.Of(ip.graph.Succs).RPONumbering(start)

	if _, err := ip.step(im, start, initial); err != nil {
		return im, err
	}

	worklist := pq.Empty(func(a, b N) bool { return rpo[a] < rpo[b] })
	for _, succ := range ip.graph.Succs(start) {
		worklist.Add(succ)
	}

	for !worklist.IsEmpty() {
		node := worklist.GetNext()
		changed, err := ip.step(im, node, initial)
		if err != nil {
			return im, err
		}
		if changed {
			for _, succ := range ip.graph.Succs(node) {
				worklist.Add(succ)
			}
		}
	}
	return im, nil
}

// ComputePost analyzes the procedure and returns the post-state of the
// view's exit node. The boolean is false when the exit was never reached,
// which callers must treat as "no postcondition", not as an error.
func (ip *Interpreter[N, S]) ComputePost(initial S) (S, bool, error) {
	im, err := ip.Analyze(initial)
	if err != nil {
		var zero S
		return zero, false, err
	}
	post, ok := im.Post(ip.graph.Exit())
	return post, ok, nil
}

// step executes one node visit: compute the pre-state from the visited
// predecessors (widening past the threshold), run the node's instructions,
// and record the invariant if the post-state grew. Reports whether the
// invariant changed. A node none of whose predecessors were visited yet is
// left untouched; it is revisited once an incoming state exists.
func (ip *Interpreter[N, S]) step(im *InvariantMap[N, S], node N, initial S) (bool, error) {
	var joined S
	if node == ip.graph.Start() {
		joined = initial
	} else {
		seeded := false
		for _, pred := range ip.graph.Preds(node) {
			post, ok := im.Post(pred)
			if !ok {
				continue
			}
			if !seeded {
				// The first post is joined with itself, so the pre-state of
				// a single-predecessor node still passes through the domain.
				joined, seeded = ip.domain.Join(post, post), true
			} else {
				joined = ip.domain.Join(joined, post)
			}
		}
		if !seeded {
			return false, nil
		}
	}

	old, visited := im.Get(node)
	visits := old.Visits + 1
	pre := joined
	if visited && old.Visits > ip.widenThreshold {
		pre = ip.domain.Widen(old.Pre, joined, visits)
	}

	if ip.budget != nil && !ip.budget.Spend() {
		return false, &BudgetExhaustedError{Proc: ip.graph.ProcName(), Spent: ip.budget.Spent()}
	}

	post := pre
	for _, instr := range ip.graph.Instrs(node) {
		post = ip.transfer.ExecInstr(post, node, instr)
	}

	if visited && ip.domain.Leq(post, old.Post) {
		return false, nil
	}
	im.set(node, NodeInvariant[S]{Pre: pre, Post: post, Visits: visits})
	return true, nil
}

package cfg

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// CheckError describes a node violating the CFG well-formedness invariants:
// exactly one start node (no predecessors) and one exit node (no
// successors) per procedure, and every other node on a path between them.
// A join node with no predecessors is tolerated when its sole successor is
// the exit node (loop bodies ending in an early return).
type CheckError struct {
	Proc   string
	Node   NodeID
	Kind   NodeKind
	Reason string
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("malformed CFG in procedure %q: node %v (%v): %s",
		e.Proc, e.Node, e.Kind, e.Reason)
}

// ConnectednessError walks all nodes of all procedures and returns an error
// for the first node violating the invariants, or nil. Only defined
// procedures are checked; undefined ones have no body to validate.
func ConnectednessError(c *Cfg) *CheckError {
	var broken *CheckError
	c.ForEach(func(p *Procdesc) {
		if broken != nil || !p.Attrs().IsDefined {
			return
		}
		broken = procConnectednessError(p)
	})
	return broken
}

func procConnectednessError(p *Procdesc) *CheckError {
	violation := func(n *Node, reason string) *CheckError {
		return &CheckError{Proc: p.Name(), Node: n.ID(), Kind: n.Kind(), Reason: reason}
	}

	for _, n := range p.Nodes() {
		switch n.Kind() {
		case StartNode:
			if len(n.Preds()) > 0 {
				return violation(n, "start node has predecessors")
			}
		case ExitNode:
			if len(n.Succs()) > 0 {
				return violation(n, "exit node has successors")
			}
		case JoinNode:
			if len(n.Succs()) == 0 {
				return violation(n, "join node has no successors")
			}
			// A predecessor-less join is allowed only just before exit.
			if len(n.Preds()) == 0 &&
				!(len(n.Succs()) == 1 && n.Succs()[0] == p.Exit()) {
				return violation(n, "join node has no predecessors")
			}
		default:
			if len(n.Succs()) == 0 {
				return violation(n, "node has no successors")
			}
			if len(n.Preds()) == 0 {
				return violation(n, "node has no predecessors")
			}
		}
	}
	return nil
}

// CheckConnectedness validates the whole CFG, terminating the process on
// the first violation. A malformed CFG would silently corrupt every
// downstream fixpoint computation, so failing loudly is the default;
// permissive mode skips the check entirely.
func CheckConnectedness(c *Cfg, permissive bool) {
	if permissive {
		return
	}
	if err := ConnectednessError(c); err != nil {
		log.Fatal().
			Str("procedure", err.Proc).
			Stringer("node", err.Node).
			Msg(err.Error())
	}
}

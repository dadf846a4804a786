package cfg

import (
	"strings"
	"testing"
)

func wellFormed() *Cfg {
	loc := Location{File: "ok.x"}
	p := NewProcdesc(ProcAttributes{Name: "ok", Loc: loc, IsDefined: true})
	p.AddNode(0, StartNode, loc)
	p.AddNode(1, StmtNode, loc, Skip{Reason: "body", Loc: loc})
	p.AddNode(2, ExitNode, loc)
	p.AddEdge(0, 1)
	p.AddEdge(1, 2)

	c := New()
	c.AddProc(p)
	return c
}

func TestWellFormedPasses(t *testing.T) {
	if err := ConnectednessError(wellFormed()); err != nil {
		t.Fatalf("well-formed CFG rejected: %v", err)
	}
}

func TestDanglingStmtRejected(t *testing.T) {
	loc := Location{File: "bad.x"}
	p := NewProcdesc(ProcAttributes{Name: "bad", Loc: loc, IsDefined: true})
	p.AddNode(0, StartNode, loc)
	p.AddNode(1, StmtNode, loc) // never wired
	p.AddNode(2, ExitNode, loc)
	p.AddEdge(0, 2)

	c := New()
	c.AddProc(p)
	err := ConnectednessError(c)
	if err == nil {
		t.Fatal("dangling stmt node accepted")
	}
	if err.Proc != "bad" || err.Node != 1 {
		t.Errorf("violation misattributed: %v", err)
	}
	if !strings.Contains(err.Error(), `"bad"`) {
		t.Errorf("message must name the procedure: %s", err)
	}
}

func TestStartWithPredsRejected(t *testing.T) {
	loc := Location{File: "bad.x"}
	p := NewProcdesc(ProcAttributes{Name: "cyclicstart", Loc: loc, IsDefined: true})
	p.AddNode(0, StartNode, loc)
	p.AddNode(1, StmtNode, loc)
	p.AddNode(2, ExitNode, loc)
	p.AddEdge(0, 1)
	p.AddEdge(1, 0)
	p.AddEdge(1, 2)

	c := New()
	c.AddProc(p)
	if err := ConnectednessError(c); err == nil || err.Kind != StartNode {
		t.Fatalf("start node with predecessors accepted: %v", err)
	}
}

// A predecessor-less join is tolerated exactly when its sole successor is
// the exit node.
func TestJoinExemption(t *testing.T) {
	build := func(joinToExit bool) *Cfg {
		loc := Location{File: "join.x"}
		p := NewProcdesc(ProcAttributes{Name: "j", Loc: loc, IsDefined: true})
		p.AddNode(0, StartNode, loc)
		p.AddNode(1, JoinNode, loc)
		p.AddNode(2, StmtNode, loc)
		p.AddNode(3, ExitNode, loc)
		p.AddEdge(0, 2)
		p.AddEdge(2, 3)
		if joinToExit {
			p.AddEdge(1, 3)
		} else {
			p.AddEdge(1, 2)
		}
		c := New()
		c.AddProc(p)
		return c
	}

	if err := ConnectednessError(build(true)); err != nil {
		t.Errorf("join before exit must be exempt: %v", err)
	}
	if err := ConnectednessError(build(false)); err == nil || err.Kind != JoinNode {
		t.Errorf("predecessor-less join not before exit accepted: %v", err)
	}
}

func TestUndefinedProcSkipped(t *testing.T) {
	loc := Location{File: "ext.x"}
	p := NewProcdesc(ProcAttributes{Name: "external", Loc: loc})
	p.AddNode(0, StartNode, loc)
	p.AddNode(1, ExitNode, loc)
	// No edge at all; still fine, the procedure has no body.
	c := New()
	c.AddProc(p)
	if err := ConnectednessError(c); err != nil {
		t.Errorf("undefined procedure must be skipped: %v", err)
	}
}

func TestPermissiveModeSkipsCheck(t *testing.T) {
	loc := Location{File: "bad.x"}
	p := NewProcdesc(ProcAttributes{Name: "bad", Loc: loc, IsDefined: true})
	p.AddNode(0, StartNode, loc)
	p.AddNode(1, StmtNode, loc)
	p.AddNode(2, ExitNode, loc)
	p.AddEdge(0, 2)
	c := New()
	c.AddProc(p)

	// Must return instead of terminating the process.
	CheckConnectedness(c, true)
}

// Package cfg defines the control-flow graph representation shared by every
// analysis: procedures (Procdesc) owning arenas of instruction nodes wired
// by id-based edges, plus the identifier generators frontends use while
// translating source code into this form.
package cfg

import (
	"fmt"
	"sort"
)

// Cfg maps procedure names to their descriptors. One Cfg corresponds to one
// translation unit (a source file or package).
type Cfg struct {
	procs map[string]*Procdesc
}

func New() *Cfg {
	return &Cfg{procs: make(map[string]*Procdesc)}
}

// AddProc registers a procedure. Panics on duplicate names; the frontend
// must produce unique keys.
func (c *Cfg) AddProc(p *Procdesc) {
	if _, clash := c.procs[p.Name()]; clash {
		panic(fmt.Sprintf("internal error: duplicate procedure %q", p.Name()))
	}
	c.procs[p.Name()] = p
}

// Proc looks up a procedure by name.
func (c *Cfg) Proc(name string) (*Procdesc, bool) {
	p, ok := c.procs[name]
	return p, ok
}

// MustProc looks up a procedure that is required to exist.
func (c *Cfg) MustProc(name string) *Procdesc {
	p, ok := c.procs[name]
	if !ok {
		panic(fmt.Sprintf("internal error: no procedure %q in CFG", name))
	}
	return p
}

func (c *Cfg) NumProcs() int { return len(c.procs) }

// ProcNames returns all procedure names in sorted order.
func (c *Cfg) ProcNames() []string {
	names := make([]string, 0, len(c.procs))
	for name := range c.procs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForEach executes the given procedure for every Procdesc, in sorted name
// order for determinism.
func (c *Cfg) ForEach(do func(*Procdesc)) {
	for _, name := range c.ProcNames() {
		do(c.procs[name])
	}
}

package cfg

import (
	"fmt"
	"io"
	"strings"
)

// WriteTo prints a deterministic plain-text rendering of the procedure:
// attributes, then nodes in creation order with their instructions and
// edges. The format is stable and covered by golden tests.
func (p *Procdesc) WriteTo(w io.Writer) {
	attrs := p.Attrs()

	formals := make([]string, len(attrs.Formals))
	for i, f := range attrs.Formals {
		formals[i] = f.String()
	}

	var flags []string
	if attrs.IsDefined {
		flags = append(flags, "defined")
	}
	if attrs.IsSynthetic {
		flags = append(flags, "synthetic")
	}
	if attrs.IsBridge {
		flags = append(flags, "bridge")
	}
	if attrs.Changed {
		flags = append(flags, "changed")
	}

	fmt.Fprintf(w, "proc %s(%s): %s", attrs.Name, strings.Join(formals, ", "), attrs.Ret)
	if len(flags) > 0 {
		fmt.Fprintf(w, "  [%s]", strings.Join(flags, " "))
	}
	fmt.Fprintln(w)

	for _, n := range p.Nodes() {
		fmt.Fprintf(w, "  %s %s", n.ID(), n.Kind())
		if len(n.Succs()) > 0 {
			fmt.Fprintf(w, " ->%s", idList(n.Succs()))
		}
		if len(n.ExnSuccs()) > 0 {
			fmt.Fprintf(w, " ~>%s", idList(n.ExnSuccs()))
		}
		fmt.Fprintln(w)
		for _, instr := range n.Instrs() {
			fmt.Fprintf(w, "    %s\n", instr)
		}
	}
}

// String renders the procedure via WriteTo.
func (p *Procdesc) String() string {
	var sb strings.Builder
	p.WriteTo(&sb)
	return sb.String()
}

// WriteTo prints all procedures in sorted name order.
func (c *Cfg) WriteTo(w io.Writer) {
	first := true
	c.ForEach(func(p *Procdesc) {
		if !first {
			fmt.Fprintln(w)
		}
		first = false
		p.WriteTo(w)
	})
}

func (c *Cfg) String() string {
	var sb strings.Builder
	c.WriteTo(&sb)
	return sb.String()
}

func idList(ids []NodeID) string {
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(" ")
		sb.WriteString(id.String())
	}
	return sb.String()
}

package cfg

import (
	"fmt"
	"strings"

	"github.com/ibex-analyzer/ibex/utils/dot"
	"github.com/ibex-analyzer/ibex/utils/graph"
)

// Visualize creates a dot graph of the whole CFG, one cluster per
// procedure. Normal edges are solid, exceptional edges dashed.
func (c *Cfg) Visualize() *dot.DotGraph {
	G := &dot.DotGraph{
		Name:  "CFG",
		Title: "control-flow graph",
		Options: map[string]string{
			"rankdir": "TB",
		},
	}

	c.ForEach(func(p *Procdesc) {
		if !p.Attrs().IsDefined {
			return
		}
		cluster, edges := p.visualizeInto()
		G.Clusters = append(G.Clusters, cluster)
		G.Edges = append(G.Edges, edges...)
	})

	return G
}

// Visualize creates a dot graph of a single procedure.
func (p *Procdesc) Visualize() *dot.DotGraph {
	cluster, edges := p.visualizeInto()
	return &dot.DotGraph{
		Name:     "CFG",
		Title:    p.Name(),
		Clusters: []*dot.DotCluster{cluster},
		Edges:    edges,
	}
}

func (p *Procdesc) visualizeInto() (*dot.DotCluster, []*dot.DotEdge) {
	cluster := dot.NewDotCluster(p.Name())
	cluster.Attrs["label"] = p.Name()

	inLoop := cyclicNodes(p)

	nodes := make(map[NodeID]*dot.DotNode, p.NumNodes())
	for _, n := range p.Nodes() {
		dn := &dot.DotNode{
			ID:    fmt.Sprintf("%s%s", p.Name(), n.ID()),
			Attrs: dot.DotAttrs{"label": nodeLabel(n)},
		}
		switch n.Kind() {
		case StartNode, ExitNode:
			dn.Attrs["fillcolor"] = "lightskyblue"
		case PruneNode:
			dn.Attrs["fillcolor"] = "lightyellow"
			dn.Attrs["shape"] = "diamond"
		default:
			if inLoop[n.ID()] {
				dn.Attrs["fillcolor"] = "peachpuff"
			}
		}
		nodes[n.ID()] = dn
		cluster.Nodes = append(cluster.Nodes, dn)
	}

	var edges []*dot.DotEdge
	for _, n := range p.Nodes() {
		for _, succ := range n.Succs() {
			edges = append(edges, &dot.DotEdge{
				From: nodes[n.ID()], To: nodes[succ],
			})
		}
		for _, handler := range n.ExnSuccs() {
			edges = append(edges, &dot.DotEdge{
				From: nodes[n.ID()], To: nodes[handler],
				Attrs: dot.DotAttrs{"style": "dashed", "color": "red"},
			})
		}
	}
	return cluster, edges
}

// cyclicNodes marks the nodes lying on a normal-flow cycle, found as the
// nontrivial strongly connected components of the procedure's edges.
func cyclicNodes(p *Procdesc) map[NodeID]bool {
	roots := make([]NodeID, 0, p.NumNodes())
	for _, n := range p.Nodes() {
		roots = append(roots, n.ID())
	}
	dec := graph.Of(func(id NodeID) []NodeID {
		return p.MustNode(id).Succs()
	}).SCC(roots)

	inLoop := make(map[NodeID]bool)
	for _, comp := range dec.Components {
		if len(comp) > 1 {
			for _, id := range comp {
				inLoop[id] = true
			}
			continue
		}
		// Singleton components are cyclic only on a self edge.
		id := comp[0]
		for _, succ := range p.MustNode(id).Succs() {
			if succ == id {
				inLoop[id] = true
			}
		}
	}
	return inLoop
}

func nodeLabel(n *Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", n.ID(), n.Kind())
	for _, instr := range n.Instrs() {
		sb.WriteString("\n")
		sb.WriteString(instr.String())
	}
	return sb.String()
}

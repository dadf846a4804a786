package graph

// SCCDecomposition is a DAG decomposition of a graph based on strongly
// connected components. The nodes in component i are guaranteed to only have
// edges to nodes in components with index j <= i.
type SCCDecomposition[T comparable] struct {
	Components [][]T
	comp       map[T]int
	Original   Graph[T]
}

// SCC is an alias for the component type (in case representation changes).
type SCC = int

// ComponentOf returns the index of the component the node is a part of, or
// -1 if the node was not reachable during decomposition.
func (scc SCCDecomposition[T]) ComponentOf(node T) SCC {
	if comp, hasComp := scc.comp[node]; hasComp {
		return comp
	}
	return -1
}

// SCC computes the strongly connected components of the subgraph reachable
// from the provided start nodes.
func (G Graph[T]) SCC(startNodes []T) SCCDecomposition[T] {
	// Path-based SCC in the style of KACTL's implementation.
	val, comp := make(map[T]int), make(map[T]int)
	time := 0
	var z, cont []T
	var components [][]T

	var rec func(T) int
	rec = func(node T) int {
		time++
		low := time
		val[node] = low
		stackH := len(z)
		z = append(z, node)

		for _, e := range G.Edges(node) {
			if _, hasComp := comp[e]; !hasComp {
				eLow, visited := val[e]
				if !visited {
					eLow = rec(e)
				}
				if eLow < low {
					low = eLow
				}
			}
		}

		if low == val[node] {
			for len(z) > stackH {
				x := z[len(z)-1]
				z = z[:len(z)-1]
				comp[x] = len(components)
				cont = append(cont, x)
			}

			components = append(components, cont)
			cont = nil
		}

		val[node] = low
		return low
	}

	for _, node := range startNodes {
		if _, hasComp := comp[node]; !hasComp {
			rec(node)
		}
	}

	return SCCDecomposition[T]{
		Components: components,
		comp:       comp,
		Original:   G,
	}
}

// ToGraph returns a graph based on the SCC decomposition.
// Nodes are component indices (int).
func (scc SCCDecomposition[T]) ToGraph() Graph[SCC] {
	return Of(func(compIdx SCC) (ret []SCC) {
		seen := map[int]bool{}
		for _, node := range scc.Components[compIdx] {
			for _, edge := range scc.Original.Edges(node) {
				ncomp := scc.ComponentOf(edge)
				if compIdx != ncomp && !seen[ncomp] {
					seen[ncomp] = true
					ret = append(ret, ncomp)
				}
			}
		}
		return
	})
}

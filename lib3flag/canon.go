package lib3flag

import (
	"github.com/flag3systems/go3flag/go3flag"
)

// MinimalIsomorph returns the canonical representative of g's isomorphism
// class relative to its type prefix: the relabeling of vertices
// {typeOrder+1..n} (the first typeOrder vertices stay fixed) whose sorted
// edge list is lexicographically minimal.
//
// The permutation search runs in lexicographic order, so ties resolve
// deterministically: any two isomorphic graphs (over the same type) yield
// identical output, which is the invariant the generator's hash dedup relies
// on.  Degenerate (repeated-vertex) edges are handled, so this also serves as
// the canonicalizer for blow-up intermediates.
func (g *Graph) MinimalIsomorph() *Graph {
	s := g.typeOrder
	free := g.order - s
	if free <= 1 || len(g.edges) == 0 {
		return g.Copy()
	}

	best := make([]Edge, len(g.edges))
	copy(best, g.edges)

	perm := make([]VtxID, g.order)
	for i := 0; i < s; i++ {
		perm[i] = VtxID(i + 1)
	}
	cand := &Graph{order: g.order, edges: make([]Edge, len(g.edges))}

	go3flag.Permutations(free, func(p []int) bool {
		for j, pj := range p {
			perm[s+j] = VtxID(s + pj + 1)
		}
		for i, e := range g.edges {
			cand.edges[i] = MakeEdge(perm[e[0]-1], perm[e[1]-1], perm[e[2]-1])
		}
		cand.sortEdges()
		if compareEdgeLists(cand.edges, best) < 0 {
			copy(best, cand.edges)
		}
		return true
	})

	return &Graph{order: g.order, typeOrder: s, edges: best}
}

func compareEdgeLists(a, b []Edge) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if c := compareEdges(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

package lib3flag

import (
	"github.com/emirpasic/gods/sets/hashset"

	"github.com/flag3systems/go3flag/go3flag"
)

// Constraints is the immutable filtering configuration threaded through every
// generation call.
//
// EdgeNumbers maps a subset size k to a maximum: no k-subset of vertices may
// span EdgeNumbers[k] or more edges.  Graphs and InducedGraphs are forbidden
// as (not-necessarily-induced resp. induced) subgraph patterns; patterns are
// expected in canonical form.
type Constraints struct {
	EdgeNumbers   map[int]int
	Graphs        []*Graph
	InducedGraphs []*Graph
}

// GenerateFlags returns all non-isomorphic flags of type tg on n vertices that
// satisfy the constraints.  A nil tg means the empty type.
//
// Flags on n vertices are built by extending each (n-1)-vertex flag with every
// subset of the C(n-1,2) possible new edges through vertex n.  Constraint
// checks only re-examine vertex subsets containing the new vertex -- smaller
// subsets were validated one level down.  Isomorph rejection dedups by the
// hash of the canonical form.
func GenerateFlags(n int, tg *Graph, cons Constraints) []*Graph {
	if tg == nil {
		tg = NewGraph(0)
	}
	s := tg.Order()

	if n < s {
		return nil
	}
	if n == s {
		return []*Graph{tg.WithTypeOrder(s)}
	}

	smaller := GenerateFlags(n-1, tg, cons)

	maxNe := (n - 1) * (n - 2) / 2
	pairs := make([][2]VtxID, 0, maxNe)
	go3flag.Combinations(n-1, 2, func(idx []int) bool {
		pairs = append(pairs, [2]VtxID{VtxID(idx[0] + 1), VtxID(idx[1] + 1)})
		return true
	})

	var out []*Graph
	seen := hashset.New()

	for _, sg := range smaller {
		// Any isomorphism class has a representative in which the new vertex
		// has maximal degree among non-type vertices, so lower edge counts
		// need not be enumerated.
		maxd := 0
		for i, d := range sg.Degrees() {
			if i >= s && d > maxd {
				maxd = d
			}
		}

		for ne := maxd; ne <= maxNe; ne++ {
			go3flag.Combinations(len(pairs), ne, func(idx []int) bool {
				ng := &Graph{
					order:     n,
					typeOrder: s,
					edges:     make([]Edge, 0, len(sg.edges)+ne),
				}
				ng.edges = append(ng.edges, sg.edges...)
				for _, pi := range idx {
					ng.edges = append(ng.edges, MakeEdge(pairs[pi][0], pairs[pi][1], VtxID(n)))
				}
				ng.sortEdges()

				if ng.HasForbiddenEdgeNumbers(cons.EdgeNumbers, true) {
					return true
				}
				if ng.HasForbiddenGraphs(cons.Graphs, true, false) {
					return true
				}
				if ng.HasForbiddenGraphs(cons.InducedGraphs, true, true) {
					return true
				}

				cg := ng.MinimalIsomorph()
				key := string(cg.Key())
				if !seen.Contains(key) {
					seen.Add(key)
					out = append(out, cg)
				}
				return true
			})
		}
	}

	return out
}

// GenerateGraphs is GenerateFlags specialized to the empty type: all
// non-isomorphic 3-graphs on n vertices satisfying the constraints.
func GenerateGraphs(n int, cons Constraints) []*Graph {
	return GenerateFlags(n, nil, cons)
}

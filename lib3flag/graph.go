// Package lib3flag implements the combinatorial core of the flag algebra
// engine: 3-graph representation, canonical labeling, flag/graph generation,
// orbit and basis construction, and flag product densities.
package lib3flag

import (
	"math/big"
	"strings"

	"github.com/pkg/errors"

	"github.com/flag3systems/go3flag/go3flag"
)

// VtxID is re-exported for brevity inside this package.
type VtxID = go3flag.VtxID

// Edge is an unordered vertex triple, stored sorted ascending.  Repeated
// vertices are allowed while a degenerate intermediate is being built; proper
// graphs prune them via deleteImproperEdges.
type Edge [3]VtxID

// MakeEdge forms a canonically ordered edge from three vertex labels.
func MakeEdge(a, b, c VtxID) Edge {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b, c = c, b
	}
	if a > b {
		a, b = b, a
	}
	return Edge{a, b, c}
}

// IsProper reports whether the edge has three distinct vertices.
func (e Edge) IsProper() bool {
	return e[0] != e[1] && e[1] != e[2]
}

func compareEdges(a, b Edge) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return 0
}

// Graph is an immutable labeled 3-graph: a vertex count plus a sorted edge
// list.  The first typeOrder vertices are a fixed "type" prefix that
// canonicalization never relabels; typeOrder is 0 for plain graphs.
//
// Identity is content-based: two graphs are equal iff they have the same order
// and edge list.  Isomorphism-class identity goes through MinimalIsomorph.
type Graph struct {
	order     int
	typeOrder int
	edges     []Edge
}

// NewGraph returns an empty graph on n vertices.
func NewGraph(n int) *Graph {
	return &Graph{order: n}
}

func (g *Graph) Order() int     { return g.order }
func (g *Graph) TypeOrder() int { return g.typeOrder }
func (g *Graph) NumEdges() int  { return len(g.edges) }

// Edges returns the sorted edge list.  Callers must treat it as read-only.
func (g *Graph) Edges() []Edge { return g.edges }

// Copy returns a deep copy of g.
func (g *Graph) Copy() *Graph {
	ng := &Graph{
		order:     g.order,
		typeOrder: g.typeOrder,
		edges:     make([]Edge, len(g.edges)),
	}
	copy(ng.edges, g.edges)
	return ng
}

// WithTypeOrder returns a copy of g whose first s vertices form its fixed type
// prefix.
func (g *Graph) WithTypeOrder(s int) *Graph {
	if s < 0 || s > g.order {
		panic("type order out of range")
	}
	ng := g.Copy()
	ng.typeOrder = s
	return ng
}

// AddEdge returns a copy of g with the edge {a,b,c} added.
func (g *Graph) AddEdge(a, b, c VtxID) *Graph {
	ng := g.Copy()
	ng.addEdge(MakeEdge(a, b, c))
	return ng
}

func (g *Graph) addEdge(e Edge) {
	// insertion keeps the edge list sorted
	at := len(g.edges)
	for i, ei := range g.edges {
		if compareEdges(e, ei) < 0 {
			at = i
			break
		}
	}
	g.edges = append(g.edges, Edge{})
	copy(g.edges[at+1:], g.edges[at:len(g.edges)-1])
	g.edges[at] = e
}

func (g *Graph) sortEdges() {
	edges := g.edges
	for i := 1; i < len(edges); i++ {
		e := edges[i]
		j := i - 1
		for j >= 0 && compareEdges(edges[j], e) > 0 {
			edges[j+1] = edges[j]
			j--
		}
		edges[j+1] = e
	}
}

// Equals reports content equality of order and edge list.  The type prefix
// length is contextual and deliberately not compared.
func (g *Graph) Equals(h *Graph) bool {
	if g.order != h.order || len(g.edges) != len(h.edges) {
		return false
	}
	for i := range g.edges {
		if g.edges[i] != h.edges[i] {
			return false
		}
	}
	return true
}

// Key returns a compact binary identity for g, suitable for hashing and LSM
// ordering.  Two graphs have equal keys iff they have equal order, type prefix
// length, and edge lists, so hashing canonical forms dedups isomorphs.
func (g *Graph) Key() []byte {
	key := make([]byte, 0, 3+3*len(g.edges))
	key = append(key, byte(g.order), byte(g.typeOrder), byte(len(g.edges)))
	for _, e := range g.edges {
		key = append(key, byte(e[0]), byte(e[1]), byte(e[2]))
	}
	return key
}

// ParseGraph converts compact notation "<n>:<abc><def>..." into a Graph.
// Vertex labels are single digits 1..9; a missing ':' separator, an order
// outside 0..9, an edge-digit count not divisible by 3, or an out-of-range
// label all fail with ErrBadGraphNotation.
func ParseGraph(s string) (*Graph, error) {
	if len(s) < 2 || s[1] != ':' {
		return nil, errors.Wrapf(go3flag.ErrBadGraphNotation, "%q: missing ':' separator", s)
	}
	if s[0] < '0' || s[0] > '9' {
		return nil, errors.Wrapf(go3flag.ErrBadGraphNotation, "%q: bad order digit", s)
	}
	n := int(s[0] - '0')
	digits := s[2:]
	if len(digits)%3 != 0 {
		return nil, errors.Wrapf(go3flag.ErrBadGraphNotation, "%q: edge digit count not a multiple of 3", s)
	}
	g := NewGraph(n)
	for i := 0; i < len(digits); i += 3 {
		var v [3]VtxID
		for j := 0; j < 3; j++ {
			d := digits[i+j]
			if d < '1' || d > '9' || int(d-'0') > n {
				return nil, errors.Wrapf(go3flag.ErrBadVtxID, "%q: vertex %q out of range", s, d)
			}
			v[j] = VtxID(d - '0')
		}
		g.addEdge(MakeEdge(v[0], v[1], v[2]))
	}
	return g, nil
}

// MustParse is ParseGraph for literals; it panics on malformed notation.
func MustParse(s string) *Graph {
	g, err := ParseGraph(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String renders g in compact notation.  Only well-defined for order <= 9.
func (g *Graph) String() string {
	var b strings.Builder
	b.Grow(2 + 3*len(g.edges))
	b.WriteByte('0' + byte(g.order))
	b.WriteByte(':')
	for _, e := range g.edges {
		for _, v := range e {
			b.WriteByte('0' + byte(v))
		}
	}
	return b.String()
}

// Degrees returns the per-vertex edge counts.  Not intended for degenerate
// graphs.
func (g *Graph) Degrees() []int {
	deg := make([]int, g.order)
	for _, e := range g.edges {
		for x := VtxID(1); x <= VtxID(g.order); x++ {
			if e[0] == x || e[1] == x || e[2] == x {
				deg[x-1]++
			}
		}
	}
	return deg
}

// EdgeDensity returns |E| / C(n,3).
func (g *Graph) EdgeDensity() *big.Rat {
	total := go3flag.Binomial(g.order, 3)
	if total == 0 {
		return new(big.Rat)
	}
	return big.NewRat(int64(len(g.edges)), total)
}

// SubgraphDensity returns the fraction of |h|-subsets of g's vertices whose
// induced subgraph is isomorphic to h (h must be in canonical form).
func (g *Graph) SubgraphDensity(h *Graph) *big.Rat {
	k := h.order
	total := go3flag.Binomial(g.order, k)
	if total == 0 {
		return new(big.Rat)
	}
	found := int64(0)
	sub := make([]VtxID, k)
	go3flag.Combinations(g.order, k, func(idx []int) bool {
		for i, v := range idx {
			sub[i] = VtxID(v + 1)
		}
		if g.InducedSubgraph(sub).MinimalIsomorph().Equals(h) {
			found++
		}
		return true
	})
	return big.NewRat(found, total)
}

// SplitVertex returns a graph of order n+1 in which vertex x has been
// duplicated as vertex n+1, replicating every membership of x in an edge.
// Used to realize repeated-vertex selections as genuine larger graphs.
func (g *Graph) SplitVertex(x VtxID) *Graph {
	nv := VtxID(g.order + 1)
	ng := &Graph{order: g.order + 1, edges: make([]Edge, 0, 2*len(g.edges))}
	ng.edges = append(ng.edges, g.edges...)
	for _, e := range g.edges {
		count := 0
		var rest []VtxID
		for _, v := range e {
			if v == x {
				count++
			} else {
				rest = append(rest, v)
			}
		}
		switch count {
		case 1:
			ng.edges = append(ng.edges, MakeEdge(rest[0], rest[1], nv))
		case 2:
			ng.edges = append(ng.edges, MakeEdge(rest[0], x, nv))
			ng.edges = append(ng.edges, MakeEdge(rest[0], nv, nv))
		case 3:
			ng.edges = append(ng.edges, MakeEdge(x, x, nv))
			ng.edges = append(ng.edges, MakeEdge(x, nv, nv))
			ng.edges = append(ng.edges, MakeEdge(nv, nv, nv))
		}
	}
	ng.sortEdges()
	return ng
}

// InducedSubgraph projects g onto the ordered vertex list S.  Repeated entries
// are realized by vertex splitting first, then any edge that does not end up
// with 3 distinct vertices is deleted.  The result has order len(S) and no
// type prefix.
func (g *Graph) InducedSubgraph(S []VtxID) *Graph {
	src := g
	vertices := make([]VtxID, 0, len(S))
	for _, x := range S {
		dup := false
		for _, prev := range vertices {
			if prev == x {
				dup = true
				break
			}
		}
		if !dup {
			vertices = append(vertices, x)
		} else {
			src = src.SplitVertex(x)
			vertices = append(vertices, VtxID(src.order))
		}
	}

	var inSet uint64
	for _, x := range vertices {
		inSet |= 1 << x
	}
	proj := make([]VtxID, src.order+1)
	for i, x := range vertices {
		proj[x] = VtxID(i + 1)
	}

	ig := &Graph{order: len(S)}
	for _, e := range src.edges {
		if inSet&(1<<e[0]) == 0 || inSet&(1<<e[1]) == 0 || inSet&(1<<e[2]) == 0 {
			continue
		}
		me := MakeEdge(proj[e[0]], proj[e[1]], proj[e[2]])
		if me.IsProper() {
			ig.edges = append(ig.edges, me)
		}
	}
	ig.sortEdges()
	return ig
}

// Relabel applies the permutation perm (perm[i] is the new 1-based label of
// vertex i+1) and returns the relabeled graph with edges renormalized.
func (g *Graph) Relabel(perm []VtxID) *Graph {
	ng := &Graph{order: g.order, typeOrder: g.typeOrder, edges: make([]Edge, len(g.edges))}
	for i, e := range g.edges {
		ng.edges[i] = MakeEdge(perm[e[0]-1], perm[e[1]-1], perm[e[2]-1])
	}
	ng.sortEdges()
	return ng
}

// containsEdges reports whether every edge of h (with multiplicity) occurs in
// g's sorted edge list.
func containsEdges(g, h []Edge) bool {
	gi := 0
	for _, e := range h {
		for gi < len(g) && compareEdges(g[gi], e) < 0 {
			gi++
		}
		if gi == len(g) || g[gi] != e {
			return false
		}
		gi++
	}
	return true
}

// ContainsSubgraph reports whether h occurs in g on some |h|-subset of g's
// vertices, as a not-necessarily-induced subgraph by default, or as an induced
// subgraph when induced is set.  When mustUse > 0 only subsets containing that
// vertex are examined (the generator's incremental pruning).
func (g *Graph) ContainsSubgraph(h *Graph, mustUse VtxID, induced bool) bool {
	k := h.order
	if k > g.order {
		return false
	}
	found := false
	sub := make([]VtxID, k)
	perm := make([]VtxID, k)
	go3flag.Combinations(g.order, k, func(idx []int) bool {
		if mustUse > 0 {
			hit := false
			for _, v := range idx {
				if VtxID(v+1) == mustUse {
					hit = true
					break
				}
			}
			if !hit {
				return true
			}
		}
		for i, v := range idx {
			sub[i] = VtxID(v + 1)
		}
		ig := g.InducedSubgraph(sub)
		if len(ig.edges) < len(h.edges) {
			return true
		}
		if induced && len(ig.edges) != len(h.edges) {
			return true
		}
		go3flag.Permutations(k, func(p []int) bool {
			for i, pi := range p {
				perm[i] = VtxID(pi + 1)
			}
			rg := ig.Relabel(perm)
			if induced {
				found = rg.Equals(h)
			} else {
				found = containsEdges(rg.edges, h.edges)
			}
			return !found
		})
		return !found
	})
	return found
}

// HasForbiddenEdgeNumbers reports whether any k-subset of g's vertices spans
// at least fen[k] edges.  When mustUseLast is set only subsets containing the
// highest vertex are checked; smaller subsets were validated when the graph
// one level down was accepted.
func (g *Graph) HasForbiddenEdgeNumbers(fen map[int]int, mustUseLast bool) bool {
	last := VtxID(g.order)
	for k, v := range fen {
		if k > g.order {
			continue
		}
		violated := false
		go3flag.Combinations(g.order, k, func(idx []int) bool {
			var inSet uint64
			hit := false
			for _, vi := range idx {
				x := VtxID(vi + 1)
				inSet |= 1 << x
				if x == last {
					hit = true
				}
			}
			if mustUseLast && !hit {
				return true
			}
			count := 0
			for _, e := range g.edges {
				if inSet&(1<<e[0]) != 0 && inSet&(1<<e[1]) != 0 && inSet&(1<<e[2]) != 0 {
					count++
				}
			}
			if count >= v {
				violated = true
				return false
			}
			return true
		})
		if violated {
			return true
		}
	}
	return false
}

// HasForbiddenGraphs reports whether any of the given patterns occurs in g,
// induced or not.  mustUseLast restricts the search to vertex subsets
// containing g's highest vertex.
func (g *Graph) HasForbiddenGraphs(patterns []*Graph, mustUseLast bool, induced bool) bool {
	mustUse := VtxID(0)
	if mustUseLast {
		mustUse = VtxID(g.order)
	}
	for _, h := range patterns {
		if g.ContainsSubgraph(h, mustUse, induced) {
			return true
		}
	}
	return false
}

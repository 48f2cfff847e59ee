package problem

import (
	"math/big"
	"sort"

	"github.com/plan-systems/klog"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag"
	"github.com/flag3systems/go3flag/lib3flag/ratmat"
)

// Construction is an extremal candidate.  It names the graphs that appear in
// it with positive density (so they are expected to be sharp) and supplies,
// per type, the flag-density vectors that the optimal SDP matrices must
// annihilate.
type Construction interface {
	// InducedSubgraphs returns the canonical n-vertex graphs that occur in the
	// construction with positive limiting density.
	InducedSubgraphs(n int) []*lib3flag.Graph

	// ZeroEigenvectors returns a full-rank matrix, expressed in the given flag
	// basis, whose rows span the flag-density vectors of the construction for
	// the given type.  A nil basis means the standard basis.
	ZeroEigenvectors(tg *lib3flag.Graph, flags []*lib3flag.Graph, basis *ratmat.Matrix) *ratmat.Matrix

	EdgeDensity() *big.Rat
	SubgraphDensity(h *lib3flag.Graph) *big.Rat
}

// BlowupConstruction is the balanced blowup of a base 3-graph: each base
// vertex becomes an equal-size part, and an edge is present iff its three
// parts (distinct or not) project to an edge of the base.  Densities are the
// exact limits as the parts grow.
type BlowupConstruction struct {
	base *lib3flag.Graph
}

func NewBlowupConstruction(g *lib3flag.Graph) *BlowupConstruction {
	return &BlowupConstruction{base: g}
}

func (c *BlowupConstruction) Base() *lib3flag.Graph { return c.base }

// InducedSubgraphs enumerates all n-multisets of base vertices, weighting each
// by its multinomial count, and collects the distinct canonical forms of the
// induced (degenerate) subgraphs.  Densities are reported via the log.
func (c *BlowupConstruction) InducedSubgraphs(n int) []*lib3flag.Graph {
	cn := c.base.Order()

	var (
		out    []*lib3flag.Graph
		counts = make(map[string]int64)
		total  int64
	)

	S := make([]lib3flag.VtxID, n)
	go3flag.Multisets(cn, n, func(tuple []int) bool {
		factor := go3flag.Factorial(n)
		for v := 0; v < cn; v++ {
			cnt := 0
			for _, t := range tuple {
				if t == v {
					cnt++
				}
			}
			factor /= go3flag.Factorial(cnt)
		}

		for i, t := range tuple {
			S[i] = lib3flag.VtxID(t + 1)
		}
		ig := c.base.InducedSubgraph(S).MinimalIsomorph()

		key := string(ig.Key())
		if _, seen := counts[key]; !seen {
			out = append(out, ig)
		}
		counts[key] += factor
		total += factor
		return true
	})

	sort.Slice(out, func(i, j int) bool { return out[i].NumEdges() < out[j].NumEdges() })

	klog.Infof("The following %d graphs appear in the construction:", len(out))
	for _, ig := range out {
		density := big.NewRat(counts[string(ig.Key())], total)
		klog.Infof("%s has density %s (%g)", ig, density.RatString(), ratToFloat(density))
	}
	return out
}

// ZeroEigenvectors builds the flag-density row for every ordered s-tuple of
// base vertices (repeats allowed) that induces the type, multiplies the
// distinct rows into the given basis, and returns an echelonized full-rank
// matrix of the result.  A zero-rank result is returned as a 0-row matrix so
// callers can treat "no zero eigenvectors" uniformly.
func (c *BlowupConstruction) ZeroEigenvectors(tg *lib3flag.Graph, flags []*lib3flag.Graph, basis *ratmat.Matrix) *ratmat.Matrix {
	if basis == nil {
		basis = ratmat.Identity(len(flags))
	}
	if len(flags) == 0 {
		return ratmat.New(0, basis.Rows())
	}

	cn := c.base.Order()
	s := tg.Order()
	m := flags[0].Order()
	total := int64(1)
	for i := 0; i < m-s; i++ {
		total *= int64(cn)
	}

	flagIndex := make(map[string]int, len(flags))
	for i, fg := range flags {
		flagIndex[string(fg.Key())] = i
	}

	var (
		rows    [][]*big.Rat
		rowSeen = make(map[string]bool)
	)

	tv := make([]lib3flag.VtxID, s)
	sel := make([]lib3flag.VtxID, m)
	go3flag.TuplesWithReplacement(cn, s, func(tt []int) bool {
		for i, t := range tt {
			tv[i] = lib3flag.VtxID(t + 1)
		}
		if !c.base.InducedSubgraph(tv).Equals(tg) {
			return true
		}

		counts := make([]int64, len(flags))
		copy(sel, tv)
		go3flag.TuplesWithReplacement(cn, m-s, func(pt []int) bool {
			for i, t := range pt {
				sel[s+i] = lib3flag.VtxID(t + 1)
			}
			ig := c.base.InducedSubgraph(sel).WithTypeOrder(s).MinimalIsomorph()
			if fi, ok := flagIndex[string(ig.Key())]; ok {
				counts[fi]++
			}
			return true
		})

		row := make([]*big.Rat, len(flags))
		var sig []byte
		for i, cnt := range counts {
			row[i] = big.NewRat(cnt, total)
			sig = append(sig, row[i].RatString()...)
			sig = append(sig, ';')
		}
		if !rowSeen[string(sig)] {
			rowSeen[string(sig)] = true
			rows = append(rows, row)
		}
		return true
	})

	M := ratmat.FromRows(rows, len(flags)).Mul(basis.Transpose())
	rank := M.Rank()
	if rank == 0 {
		return ratmat.New(0, basis.Rows())
	}
	return M.Echelon().RowSlice(0, rank)
}

// EdgeDensity returns the limiting edge density of the blowup.
func (c *BlowupConstruction) EdgeDensity() *big.Rat {
	return c.SubgraphDensity(lib3flag.MustParse("3:123"))
}

// SubgraphDensity returns the limiting density of h (in canonical form) in
// the blowup: the fraction of ordered vertex tuples, repeats allowed, whose
// induced subgraph is isomorphic to h.
func (c *BlowupConstruction) SubgraphDensity(h *lib3flag.Graph) *big.Rat {
	cn := c.base.Order()
	k := h.Order()

	total := int64(1)
	for i := 0; i < k; i++ {
		total *= int64(cn)
	}
	if total == 0 {
		return new(big.Rat)
	}

	count := int64(0)
	S := make([]lib3flag.VtxID, k)
	go3flag.TuplesWithReplacement(cn, k, func(tuple []int) bool {
		for i, t := range tuple {
			S[i] = lib3flag.VtxID(t + 1)
		}
		if c.base.InducedSubgraph(S).MinimalIsomorph().Equals(h) {
			count++
		}
		return true
	})
	return big.NewRat(count, total)
}

func ratToFloat(r *big.Rat) float64 {
	f, _ := r.Float64()
	return f
}

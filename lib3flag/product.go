package lib3flag

import (
	"fmt"
	"math/big"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag/ratmat"
)

// FlagProductDensities computes the symmetric flag-pair density matrix of a
// type tg inside the large graph g: entry (i,j) is the limiting density of
// flag pair (i,j) co-occurring over a random labeled embedding of the type.
//
// Every ordered s-tuple of g's vertices whose induced subgraph equals tg is a
// type embedding; each is extended by two disjoint (m-s)-subsets of the
// remaining vertices, giving flags A and B.  Counts are normalized by
// ff(n,s)·C(n-s,m-s)·C(n-m,m-s), the total number of enumerated triples, so
// the entries are exact rationals.
func FlagProductDensities(g *Graph, tg *Graph, flags []*Graph, m int) *ratmat.Matrix {
	n := g.Order()
	s := tg.Order()
	nf := len(flags)

	D := ratmat.New(nf, nf)
	total := go3flag.FallingFactorial(n, s) *
		go3flag.Binomial(n-s, m-s) *
		go3flag.Binomial(n-m, m-s)
	if total == 0 {
		return D
	}

	flagIndex := make(map[string]int, nf)
	for i, fg := range flags {
		flagIndex[string(fg.Key())] = i
	}
	lookup := func(sub *Graph) int {
		sub.typeOrder = s
		key := string(sub.MinimalIsomorph().Key())
		idx, ok := flagIndex[key]
		if !ok {
			panic(fmt.Sprintf("flag %s not in flag list of type %s", sub, tg))
		}
		return idx
	}

	counts := make([]int64, nf*nf)

	tv := make([]VtxID, s)
	sel := make([]VtxID, m)
	go3flag.OrderedSubsets(n, s, func(tuple []int) bool {
		for i, v := range tuple {
			tv[i] = VtxID(v + 1)
		}
		if !g.InducedSubgraph(tv).Equals(tg) {
			return true
		}

		nonType := make([]VtxID, 0, n-s)
		for v := VtxID(1); v <= VtxID(n); v++ {
			used := false
			for _, t := range tv {
				if t == v {
					used = true
					break
				}
			}
			if !used {
				nonType = append(nonType, v)
			}
		}

		copy(sel, tv)
		go3flag.Combinations(len(nonType), m-s, func(aIdx []int) bool {
			for i, ai := range aIdx {
				sel[s+i] = nonType[ai]
			}
			fa := lookup(g.InducedSubgraph(sel))

			remaining := make([]VtxID, 0, len(nonType)-(m-s))
			ai := 0
			for i, v := range nonType {
				if ai < len(aIdx) && aIdx[ai] == i {
					ai++
					continue
				}
				remaining = append(remaining, v)
			}

			go3flag.Combinations(len(remaining), m-s, func(bIdx []int) bool {
				for i, bi := range bIdx {
					sel[s+i] = remaining[bi]
				}
				fb := lookup(g.InducedSubgraph(sel))
				counts[fa*nf+fb]++
				return true
			})
			return true
		})
		return true
	})

	for i := 0; i < nf; i++ {
		for j := 0; j < nf; j++ {
			if c := counts[i*nf+j]; c != 0 {
				D.Set(i, j, big.NewRat(c, total))
			}
		}
	}
	return D
}

// SlowFlagProducts is the reference enumeration across a whole family of
// types at once, kept for validating the per-graph production path.  The
// result maps (typeIndex, flagA, flagB) to the exact pair density.
func SlowFlagProducts(g *Graph, s, m int, typs []*Graph, flags [][]*Graph) map[[3]int]*big.Rat {
	n := g.Order()
	counts := make(map[[3]int]int64)

	flagIndex := make([]map[string]int, len(typs))
	for ti, fl := range flags {
		flagIndex[ti] = make(map[string]int, len(fl))
		for i, fg := range fl {
			flagIndex[ti][string(fg.Key())] = i
		}
	}

	tv := make([]VtxID, s)
	sel := make([]VtxID, m)
	go3flag.OrderedSubsets(n, s, func(tuple []int) bool {
		for i, v := range tuple {
			tv[i] = VtxID(v + 1)
		}
		ig := g.InducedSubgraph(tv)
		tindex := -1
		for ti, tg := range typs {
			if ig.Equals(tg) {
				tindex = ti
				break
			}
		}
		if tindex < 0 {
			return true
		}

		nonType := make([]VtxID, 0, n-s)
		for v := VtxID(1); v <= VtxID(n); v++ {
			used := false
			for _, t := range tv {
				if t == v {
					used = true
					break
				}
			}
			if !used {
				nonType = append(nonType, v)
			}
		}

		copy(sel, tv)
		go3flag.Combinations(len(nonType), m-s, func(aIdx []int) bool {
			for i, ai := range aIdx {
				sel[s+i] = nonType[ai]
			}
			fag := g.InducedSubgraph(sel)
			fag.typeOrder = s
			fa := flagIndex[tindex][string(fag.MinimalIsomorph().Key())]

			remaining := make([]VtxID, 0, len(nonType)-(m-s))
			ai := 0
			for i, v := range nonType {
				if ai < len(aIdx) && aIdx[ai] == i {
					ai++
					continue
				}
				remaining = append(remaining, v)
			}

			go3flag.Combinations(len(remaining), m-s, func(bIdx []int) bool {
				for i, bi := range bIdx {
					sel[s+i] = remaining[bi]
				}
				fbg := g.InducedSubgraph(sel)
				fbg.typeOrder = s
				fb := flagIndex[tindex][string(fbg.MinimalIsomorph().Key())]
				counts[[3]int{tindex, fa, fb}]++
				return true
			})
			return true
		})
		return true
	})

	total := go3flag.FallingFactorial(n, s) *
		go3flag.Binomial(n-s, m-s) *
		go3flag.Binomial(n-m, m-s)

	out := make(map[[3]int]*big.Rat, len(counts))
	for key, c := range counts {
		out[key] = big.NewRat(c, total)
	}
	return out
}

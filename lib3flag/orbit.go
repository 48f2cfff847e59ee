package lib3flag

import (
	"sort"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/plan-systems/klog"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag/ratmat"
)

// FlagOrbits partitions the index set of flags into orbits under the action of
// relabeling the type's vertices.  Each flag's orbit signature is the minimal
// canonical key over all s! relabelings of the type prefix (composed with
// identity on the rest, then re-canonicalized); flags sharing a signature are
// one orbit.  The result is sorted and every index appears in exactly one
// orbit.
func FlagOrbits(tg *Graph, flags []*Graph) [][]int {
	s := tg.Order()

	bySig := treemap.NewWithStringComparator()

	perm := make([]VtxID, 0, 16)
	for fi, fg := range flags {
		perm = perm[:0]
		for v := 1; v <= fg.Order(); v++ {
			perm = append(perm, VtxID(v))
		}

		var minSig string
		go3flag.Permutations(s, func(p []int) bool {
			for i, pi := range p {
				perm[i] = VtxID(pi + 1)
			}
			sig := string(fg.Relabel(perm).MinimalIsomorph().Key())
			if minSig == "" || sig < minSig {
				minSig = sig
			}
			return true
		})

		if members, found := bySig.Get(minSig); found {
			bySig.Put(minSig, append(members.([]int), fi))
		} else {
			bySig.Put(minSig, []int{fi})
		}
	}

	orbs := make([][]int, 0, bySig.Size())
	bySig.Each(func(key interface{}, value interface{}) {
		orbs = append(orbs, value.([]int))
	})
	sort.Slice(orbs, func(i, j int) bool { return orbs[i][0] < orbs[j][0] })
	return orbs
}

// FlagBasis builds the invariant/anti-invariant basis for a flag list: one
// invariant row per orbit (indicator of the orbit's members), and for each
// orbit of size k, k-1 anti-invariant rows e_first - e_other.  When every
// orbit is a singleton only the invariant block is returned, with no
// subdivision.  Otherwise the anti-invariant rows are (optionally)
// Gram-Schmidt orthogonalized among themselves -- never mixed with the
// invariant block -- and the result is subdivided at the block boundary.
func FlagBasis(tg *Graph, flags []*Graph, orthogonalize bool) *ratmat.Matrix {
	orbs := FlagOrbits(tg, flags)

	inv := ratmat.New(len(orbs), len(flags))
	for row, orb := range orbs {
		for _, j := range orb {
			inv.SetInt64(row, j, 1)
		}
	}

	if len(orbs) == len(flags) {
		return inv
	}

	anti := ratmat.New(len(flags)-len(orbs), len(flags))
	row := 0
	for _, orb := range orbs {
		for _, j := range orb[1:] {
			anti.SetInt64(row, orb[0], 1)
			anti.SetInt64(row, j, -1)
			row++
		}
	}

	klog.Infof("Invariant-AntiInvariant: %d + %d = %d", inv.Rows(), anti.Rows(), len(flags))

	if orthogonalize {
		anti = anti.GramSchmidtRows()
	}

	basis := inv.Stack(anti)
	basis.SubdivideRows(inv.Rows())
	return basis
}

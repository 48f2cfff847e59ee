package lib3flag_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag"
)

func TestFlagOrbitsPartition(t *testing.T) {
	tg := lib3flag.MustParse("2:")
	flags := lib3flag.GenerateFlags(4, tg, lib3flag.Constraints{})
	orbs := lib3flag.FlagOrbits(tg, flags)

	seen := make(map[int]bool)
	for _, orb := range orbs {
		require.NotEmpty(t, orb)
		for _, fi := range orb {
			require.False(t, seen[fi], "index %d appears twice", fi)
			seen[fi] = true
		}
	}
	require.Len(t, seen, len(flags))

	// swapping the two type vertices permutes flags within orbits: at least
	// one pair of order-4 flags on this type differs only by that swap
	multi := 0
	for _, orb := range orbs {
		if len(orb) > 1 {
			multi++
		}
	}
	require.Greater(t, multi, 0)
}

func TestFlagOrbitsSingletonType(t *testing.T) {
	// a one-vertex type has no nontrivial relabelings
	tg := lib3flag.MustParse("1:")
	flags := lib3flag.GenerateFlags(3, tg, lib3flag.Constraints{})
	orbs := lib3flag.FlagOrbits(tg, flags)
	require.Len(t, orbs, len(flags))
	for _, orb := range orbs {
		require.Len(t, orb, 1)
	}
}

func TestFlagBasis(t *testing.T) {
	tg := lib3flag.MustParse("2:")
	flags := lib3flag.GenerateFlags(4, tg, lib3flag.Constraints{})
	orbs := lib3flag.FlagOrbits(tg, flags)

	basis := lib3flag.FlagBasis(tg, flags, true)
	require.Equal(t, len(flags), basis.Rows())
	require.Equal(t, len(flags), basis.Cols())
	require.Equal(t, []int{len(orbs)}, basis.RowDivisions())

	// anti-invariant rows have zero coordinate sum, before and after
	// orthogonalization
	for r := len(orbs); r < basis.Rows(); r++ {
		sum := new(big.Rat)
		for c := 0; c < basis.Cols(); c++ {
			sum.Add(sum, basis.At(r, c))
		}
		require.Zerof(t, sum.Sign(), "row %d", r)
	}

	// all-singleton orbits yield the plain invariant basis with no subdivision
	tg1 := lib3flag.MustParse("1:")
	flags1 := lib3flag.GenerateFlags(3, tg1, lib3flag.Constraints{})
	basis1 := lib3flag.FlagBasis(tg1, flags1, true)
	require.Equal(t, len(flags1), basis1.Rows())
	require.Empty(t, basis1.RowDivisions())
	require.True(t, basis1.Equal(lib3flag.FlagBasis(tg1, flags1, false)))
}

package lib3flag_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag"
)

func TestFlagProductDensitiesEmptyType(t *testing.T) {
	tg := lib3flag.NewGraph(0)
	flags := lib3flag.GenerateFlags(2, tg, lib3flag.Constraints{})
	require.Len(t, flags, 1)

	g := lib3flag.MustParse("4:123124")
	D := lib3flag.FlagProductDensities(g, tg, flags, 2)
	require.Equal(t, 1, D.Rows())
	require.Equal(t, big.NewRat(1, 1), D.At(0, 0))
}

func TestFlagProductDensitiesSumToOne(t *testing.T) {
	// every pair of vertices induces the edgeless type, so the density mass
	// over all flag pairs is exactly 1
	tg := lib3flag.MustParse("2:")
	flags := lib3flag.GenerateFlags(3, tg, lib3flag.Constraints{})

	for _, gs := range []string{"4:", "4:123", "4:123124", "4:123124134234"} {
		g := lib3flag.MustParse(gs)
		D := lib3flag.FlagProductDensities(g, tg, flags, 3)

		sum := new(big.Rat)
		for i := 0; i < D.Rows(); i++ {
			for j := 0; j < D.Cols(); j++ {
				sum.Add(sum, D.At(i, j))
			}
		}
		require.Equalf(t, "1", sum.RatString(), "graph %s", gs)
	}
}

func TestFlagProductDensitiesSymmetric(t *testing.T) {
	tg := lib3flag.MustParse("1:")
	flags := lib3flag.GenerateFlags(3, tg, lib3flag.Constraints{})
	g := lib3flag.MustParse("5:123124345")

	D := lib3flag.FlagProductDensities(g, tg, flags, 3)
	require.True(t, D.Equal(D.Transpose()))
}

func TestSlowFlagProductsAgree(t *testing.T) {
	g := lib3flag.MustParse("5:123124345")
	cons := lib3flag.Constraints{}

	s, m := 1, 3
	typs := lib3flag.GenerateGraphs(s, cons)
	flags := make([][]*lib3flag.Graph, len(typs))
	for ti, tg := range typs {
		flags[ti] = lib3flag.GenerateFlags(m, tg, cons)
	}

	slow := lib3flag.SlowFlagProducts(g, s, m, typs, flags)

	for ti, tg := range typs {
		D := lib3flag.FlagProductDensities(g, tg, flags[ti], m)
		for i := 0; i < D.Rows(); i++ {
			for j := 0; j < D.Cols(); j++ {
				want, ok := slow[[3]int{ti, i, j}]
				if !ok {
					want = new(big.Rat)
				}
				require.Zerof(t, D.At(i, j).Cmp(want), "type %d entry (%d,%d)", ti, i, j)
			}
		}
	}
}

package ratmat_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag/ratmat"
)

func fromInts(rows [][]int64, cols int) *ratmat.Matrix {
	m := ratmat.New(len(rows), cols)
	for i, r := range rows {
		for j, v := range r {
			m.SetInt64(i, j, v)
		}
	}
	return m
}

func TestMulAndTranspose(t *testing.T) {
	a := fromInts([][]int64{{1, 2}, {3, 4}}, 2)
	b := fromInts([][]int64{{0, 1}, {1, 0}}, 2)
	require.True(t, a.Mul(b).Equal(fromInts([][]int64{{2, 1}, {4, 3}}, 2)))
	require.True(t, a.Transpose().Equal(fromInts([][]int64{{1, 3}, {2, 4}}, 2)))
}

func TestEchelonAndRank(t *testing.T) {
	m := fromInts([][]int64{
		{2, 4, 6},
		{1, 2, 3},
		{0, 1, 1},
	}, 3)
	require.Equal(t, 2, m.Rank())

	e := m.Echelon()
	require.True(t, e.Equal(fromInts([][]int64{
		{1, 2, 3},
		{0, 1, 1},
		{0, 0, 0},
	}, 3).Echelon()))

	// pivots are normalized to 1 and their columns cleared
	require.Equal(t, big.NewRat(1, 1), e.At(0, 0))
	require.Equal(t, int64(0), e.At(0, 1).Num().Int64())
}

func TestRightKernel(t *testing.T) {
	m := fromInts([][]int64{
		{1, 2, 3},
		{0, 1, 1},
	}, 3)
	k := m.RightKernel()
	require.Equal(t, 1, k.Rows())

	// every kernel row is annihilated by m
	prod := m.Mul(k.Transpose())
	for i := 0; i < prod.Rows(); i++ {
		for j := 0; j < prod.Cols(); j++ {
			require.Zero(t, prod.At(i, j).Sign())
		}
	}
}

func TestGramSchmidtRows(t *testing.T) {
	m := fromInts([][]int64{
		{1, 1, 0},
		{1, 0, 1},
		{2, 1, 1}, // dependent: drops out
	}, 3)
	gs := m.GramSchmidtRows()
	require.Equal(t, 2, gs.Rows())

	// pairwise orthogonal
	for i := 0; i < gs.Rows(); i++ {
		for j := i + 1; j < gs.Rows(); j++ {
			dot := new(big.Rat)
			tmp := new(big.Rat)
			for c := 0; c < gs.Cols(); c++ {
				tmp.Mul(gs.At(i, c), gs.At(j, c))
				dot.Add(dot, tmp)
			}
			require.Zero(t, dot.Sign())
		}
	}
}

func TestBlockDiagAndRowBlocks(t *testing.T) {
	a := ratmat.Identity(2)
	b := fromInts([][]int64{{5}}, 1)
	m := ratmat.BlockDiag(a, b)

	require.Equal(t, 3, m.Rows())
	require.Equal(t, 3, m.Cols())
	require.Equal(t, []int{2}, m.RowDivisions())
	require.Equal(t, big.NewRat(5, 1), m.At(2, 2))
	require.Zero(t, m.At(2, 0).Sign())

	blocks := m.RowBlocks()
	require.Len(t, blocks, 2)
	require.Equal(t, 2, blocks[0].Rows())
	require.Equal(t, 1, blocks[1].Rows())
}

func TestStackAndRowSlice(t *testing.T) {
	a := fromInts([][]int64{{1, 2}}, 2)
	b := fromInts([][]int64{{3, 4}, {5, 6}}, 2)
	m := a.Stack(b)
	require.Equal(t, 3, m.Rows())
	require.True(t, m.RowSlice(1, 3).Equal(b))
}

func TestCompactRoundTrip(t *testing.T) {
	m := ratmat.New(3, 3)
	m.Set(0, 0, big.NewRat(1, 3))
	m.Set(0, 2, big.NewRat(-2, 7))
	m.Set(2, 0, big.NewRat(-2, 7))
	m.Set(1, 1, big.NewRat(5, 1))
	m.SubdivideRows(2)

	buf, err := ratmat.ToCompact(m).Marshal()
	require.NoError(t, err)

	cs, err := ratmat.UnmarshalCompact(buf)
	require.NoError(t, err)
	back, err := ratmat.FromCompact(cs)
	require.NoError(t, err)

	require.True(t, back.Equal(m))
	require.Equal(t, []int{2}, back.RowDivisions())
}

func TestFromCompactRejectsBadEntries(t *testing.T) {
	_, err := ratmat.FromCompact(&ratmat.CompactSymm{
		N:       2,
		Entries: map[string]string{"5,0": "1"},
	})
	require.Error(t, err)

	_, err = ratmat.FromCompact(&ratmat.CompactSymm{
		N:       2,
		Entries: map[string]string{"0,0": "not-a-rat"},
	})
	require.Error(t, err)
}

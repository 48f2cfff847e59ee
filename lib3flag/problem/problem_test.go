package problem_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/go3flag"
	"github.com/flag3systems/go3flag/lib3flag"
	"github.com/flag3systems/go3flag/lib3flag/catalog"
	"github.com/flag3systems/go3flag/lib3flag/problem"
)

// K4- free on 4 vertices: no 4 vertices spanning 3 or more edges.
func newK4MinusProblem(t *testing.T) *problem.Problem {
	t.Helper()
	p, err := problem.New(4, lib3flag.Constraints{EdgeNumbers: map[int]int{4: 3}})
	require.NoError(t, err)
	return p
}

func TestNewProblem(t *testing.T) {
	p := newK4MinusProblem(t)

	require.ElementsMatch(t, []string{"4:", "4:123", "4:123124"}, graphStrings(p.Graphs()))

	// types: the empty type and the 2-vertex type
	require.Len(t, p.Types(), 2)
	require.Equal(t, 0, p.Types()[0].Order())
	require.Equal(t, 2, p.Types()[1].Order())
	require.Len(t, p.Flags(0), 1)
	require.Len(t, p.Flags(1), 2)

	// objective defaults to edge density
	for i, g := range p.Graphs() {
		require.Zero(t, p.Densities()[i].Cmp(g.EdgeDensity()))
	}

	_, err := problem.New(0, lib3flag.Constraints{})
	require.Error(t, err)
}

func TestSetDensityGraph(t *testing.T) {
	p := newK4MinusProblem(t)
	dg := lib3flag.MustParse("3:123")
	p.SetDensityGraph(dg)
	for i, g := range p.Graphs() {
		require.Zero(t, p.Densities()[i].Cmp(g.SubgraphDensity(dg)))
	}
}

func TestUseInvariantBases(t *testing.T) {
	p := newK4MinusProblem(t)
	p.UseInvariantBases(true)

	// both types have only symmetric flags here, so the bases stay square
	// with no anti-invariant block
	for ti := range p.Types() {
		B := p.Basis(ti)
		require.Equal(t, len(p.Flags(ti)), B.Rows())
		require.Empty(t, B.RowDivisions())
	}
}

func TestSetConstructionAndReduceBases(t *testing.T) {
	p := newK4MinusProblem(t)
	p.UseInvariantBases(true)

	require.Error(t, p.ReduceBases(), "requires a construction")

	c := problem.NewBlowupConstruction(lib3flag.MustParse("3:123"))
	p.SetConstruction(c)

	sharps := p.SharpGraphs()
	require.Len(t, sharps, 2)
	var sharpStrs []string
	for _, gi := range sharps {
		sharpStrs = append(sharpStrs, p.Graphs()[gi].String())
	}
	require.ElementsMatch(t, []string{"4:", "4:123124"}, sharpStrs)

	// the blowup determines both blocks completely, so the reduced bases
	// are empty
	require.NoError(t, p.ReduceBases())
	require.Equal(t, 0, p.Basis(0).Rows())
	require.Equal(t, 0, p.Basis(1).Rows())
}

func TestCalculateProductDensities(t *testing.T) {
	p := newK4MinusProblem(t)
	p.UseInvariantBases(true)

	require.NoError(t, p.CalculateProductDensities(context.Background(), nil))

	var buf bytes.Buffer
	require.NoError(t, p.WriteSDPInput(&buf))
	lines := strings.Split(buf.String(), "\n")

	require.Equal(t, "4", lines[0])
	require.Equal(t, "7", lines[1])
	require.Equal(t, "1 1 1 2 1 -3 -1", lines[2])
	require.Equal(t, "0.0 0.0 0.0 1.0", lines[3])
	require.Equal(t, "0 1 1 1 -1.0", lines[4])
	require.Contains(t, lines, "4 7 1 1 1.0")
	require.Contains(t, lines, "1 6 1 1 1.0")
	require.Contains(t, lines, "3 6 3 3 1.0")
}

func TestProductDensityCatalogCache(t *testing.T) {
	cat, err := catalog.Open(go3flag.CatalogOpts{})
	require.NoError(t, err)
	defer cat.Close()

	p1 := newK4MinusProblem(t)
	p1.UseInvariantBases(true)
	require.NoError(t, p1.CalculateProductDensities(context.Background(), cat))

	// second run hits the cache; results must match a cold computation
	p2 := newK4MinusProblem(t)
	p2.UseInvariantBases(true)
	require.NoError(t, p2.CalculateProductDensities(context.Background(), cat))

	var a, b bytes.Buffer
	require.NoError(t, p1.WriteSDPInput(&a))
	require.NoError(t, p2.WriteSDPInput(&b))
	require.Equal(t, a.String(), b.String())
}

func TestReadSolution(t *testing.T) {
	p := newK4MinusProblem(t)
	p.UseInvariantBases(true)

	// with no subdivisions every anti block is a dummy, so odd type blocks
	// are dropped on the way in
	solution := strings.Join([]string{
		"1 1 1 1 0.0",
		"2 2 1 1 0.5",
		"2 3 1 1 0.25",
		"2 4 1 1 0.125",
		"2 4 2 1 0.0625",
		"2 5 1 1 9.9",
		"2 6 1 1 7.7",
	}, "\n")

	require.NoError(t, p.ReadSolution(strings.NewReader(solution)))

	require.Equal(t, 0.5, p.QMatrix(0)[0][0])
	require.Equal(t, 0.125, p.QMatrix(1)[0][0])
	require.Equal(t, 0.0625, p.QMatrix(1)[1][0])
	require.Equal(t, 0.0625, p.QMatrix(1)[0][1])
}

func TestFindSharps(t *testing.T) {
	p := newK4MinusProblem(t)
	p.UseInvariantBases(true)
	require.NoError(t, p.CalculateProductDensities(context.Background(), nil))

	// an all-zero solution leaves the raw densities as the bounds
	require.NoError(t, p.ReadSolution(strings.NewReader("")))

	sharps, bound := p.FindSharps(0.00001)
	require.Equal(t, 0.5, bound)
	require.Len(t, sharps, 1)
	require.Equal(t, "4:123124", p.Graphs()[sharps[0]].String())
}

package problem_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag"
	"github.com/flag3systems/go3flag/lib3flag/problem"
)

func graphStrings(graphs []*lib3flag.Graph) []string {
	out := make([]string, len(graphs))
	for i, g := range graphs {
		out[i] = g.String()
	}
	return out
}

func TestBlowupDensities(t *testing.T) {
	c := problem.NewBlowupConstruction(lib3flag.MustParse("3:123"))

	// 6 of the 27 ordered triples of parts hit the single edge
	require.Equal(t, "2/9", c.EdgeDensity().RatString())
	require.Equal(t, "7/9", c.SubgraphDensity(lib3flag.MustParse("3:")).RatString())
}

func TestBlowupInducedSubgraphs(t *testing.T) {
	c := problem.NewBlowupConstruction(lib3flag.MustParse("3:123"))

	require.ElementsMatch(t, []string{"3:", "3:123"}, graphStrings(c.InducedSubgraphs(3)))

	// no 4-multiset of the three parts induces exactly one edge
	require.ElementsMatch(t, []string{"4:", "4:123124"}, graphStrings(c.InducedSubgraphs(4)))
}

func TestBlowupZeroEigenvectors(t *testing.T) {
	c := problem.NewBlowupConstruction(lib3flag.MustParse("3:123"))
	cons := lib3flag.Constraints{}

	tg0 := lib3flag.NewGraph(0)
	flags0 := lib3flag.GenerateFlags(2, tg0, cons)
	z := c.ZeroEigenvectors(tg0, flags0, nil)
	require.Equal(t, 1, z.Rows())
	require.Equal(t, 1, z.Cols())
	require.Equal(t, "1", z.At(0, 0).RatString())

	tg2 := lib3flag.MustParse("2:")
	flags2 := lib3flag.GenerateFlags(3, tg2, cons)
	z = c.ZeroEigenvectors(tg2, flags2, nil)
	require.Equal(t, 2, z.Rows())
	require.Equal(t, 2, z.Cols())
}

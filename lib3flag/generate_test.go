package lib3flag_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag"
)

func graphStrings(graphs []*lib3flag.Graph) []string {
	out := make([]string, len(graphs))
	for i, g := range graphs {
		out[i] = g.String()
	}
	sort.Strings(out)
	return out
}

func TestGenerateGraphsUnrestricted(t *testing.T) {
	// unlabeled 3-graph counts, OEIS A000665 offset by the empty orders
	wantCounts := []int{1, 1, 1, 2, 5, 34}
	for n, want := range wantCounts {
		graphs := lib3flag.GenerateGraphs(n, lib3flag.Constraints{})
		require.Equalf(t, want, len(graphs), "order %d", n)
	}

	if testing.Short() {
		t.Skip("skipping order 6 enumeration")
	}
	graphs := lib3flag.GenerateGraphs(6, lib3flag.Constraints{})
	require.Equal(t, 2136, len(graphs))
}

func TestGenerateGraphsK4MinusFree(t *testing.T) {
	cons := lib3flag.Constraints{EdgeNumbers: map[int]int{4: 3}}
	graphs := lib3flag.GenerateGraphs(4, cons)
	require.Equal(t, []string{"4:", "4:123", "4:123124"}, graphStrings(graphs))
}

func TestGenerateGraphsForbiddenSubgraph(t *testing.T) {
	cons := lib3flag.Constraints{Graphs: []*lib3flag.Graph{lib3flag.MustParse("3:123")}}
	graphs := lib3flag.GenerateGraphs(4, cons)
	require.Equal(t, []string{"4:"}, graphStrings(graphs))

	cons = lib3flag.Constraints{InducedGraphs: []*lib3flag.Graph{lib3flag.MustParse("3:123")}}
	graphs = lib3flag.GenerateGraphs(3, cons)
	require.Equal(t, []string{"3:"}, graphStrings(graphs))
}

func TestGenerateFlags(t *testing.T) {
	tg := lib3flag.MustParse("2:")
	flags := lib3flag.GenerateFlags(3, tg, lib3flag.Constraints{})
	require.Equal(t, []string{"3:", "3:123"}, graphStrings(flags))
	for _, fg := range flags {
		require.Equal(t, 2, fg.TypeOrder())
	}

	// n == s returns the type itself as its only flag
	flags = lib3flag.GenerateFlags(2, tg, lib3flag.Constraints{})
	require.Len(t, flags, 1)
	require.Equal(t, 2, flags[0].TypeOrder())

	// n < s is empty
	require.Empty(t, lib3flag.GenerateFlags(1, tg, lib3flag.Constraints{}))
}

func TestGeneratedFlagsAreCanonical(t *testing.T) {
	tg := lib3flag.MustParse("1:")
	for _, fg := range lib3flag.GenerateFlags(4, tg, lib3flag.Constraints{}) {
		require.True(t, fg.MinimalIsomorph().Equals(fg))
	}
}

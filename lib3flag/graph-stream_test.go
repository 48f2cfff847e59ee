package lib3flag_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flag3systems/go3flag/lib3flag"
)

type memAdder struct {
	seen map[string]bool
}

func (a *memAdder) TryAddGraph(X *lib3flag.Graph) bool {
	key := string(X.Key())
	if a.seen[key] {
		return false
	}
	a.seen[key] = true
	return true
}

func (a *memAdder) Close() error { return nil }

func TestGraphStreamPipeline(t *testing.T) {
	graphs := []*lib3flag.Graph{
		lib3flag.MustParse("3:123"),
		lib3flag.MustParse("4:123"),
		lib3flag.MustParse("3:123"), // dup
		lib3flag.MustParse("4:123124"),
	}

	adder := &memAdder{seen: make(map[string]bool)}
	out := strings.Builder{}

	all := lib3flag.StreamGraphs(graphs).
		AddTo(adder, true).
		SelectOrder(4, 4).
		Print(&out, lib3flag.PrintOpts{Label: "gen", Density: true}).
		PullAll()

	require.Len(t, all, 2)
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.Equal(t, "gen,000001,4:123,1/4", lines[0])
	require.Equal(t, "gen,000002,4:123124,1/2", lines[1])
}

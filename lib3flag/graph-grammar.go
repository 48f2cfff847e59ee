package lib3flag

import (
	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"

	"github.com/flag3systems/go3flag/go3flag"
)

// GraphExpr is the human-friendly edge-run notation, e.g. "4: 1-2-3, 1-2-4".
// It parses to the same graphs as the compact notation but reads better in
// config files and on the command line.
type GraphExpr struct {
	Order int        `parser:"@Int \":\""`
	Edges []*EdgeRun `parser:"(@@ (\",\" @@)*)?"`
}

type EdgeRun struct {
	A int `parser:"@Int \"-\""`
	B int `parser:"@Int \"-\""`
	C int `parser:"@Int"`
}

var parseGraphExpr = participle.MustBuild[GraphExpr]()

// ParseGraphExpr converts edge-run notation into a Graph.
func ParseGraphExpr(expr string) (*Graph, error) {
	ast, err := parseGraphExpr.ParseString("", expr)
	if err != nil {
		return nil, errors.Wrap(go3flag.ErrBadGraphNotation, err.Error())
	}
	if ast.Order < 0 || ast.Order > go3flag.MaxVtxID {
		return nil, errors.Wrapf(go3flag.ErrBadVtxID, "order %d out of range", ast.Order)
	}
	g := NewGraph(ast.Order)
	for _, e := range ast.Edges {
		for _, v := range []int{e.A, e.B, e.C} {
			if v < 1 || v > ast.Order {
				return nil, errors.Wrapf(go3flag.ErrBadVtxID, "vertex %d out of range [1,%d]", v, ast.Order)
			}
		}
		g.addEdge(MakeEdge(VtxID(e.A), VtxID(e.B), VtxID(e.C)))
	}
	return g, nil
}

// ParseAny accepts either compact notation ("4:123124") or edge-run notation
// ("4: 1-2-3, 1-2-4").
func ParseAny(s string) (*Graph, error) {
	if g, err := ParseGraph(s); err == nil {
		return g, nil
	}
	return ParseGraphExpr(s)
}

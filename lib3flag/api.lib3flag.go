package lib3flag

import (
	"github.com/pkg/errors"

	"github.com/flag3systems/go3flag/go3flag"
)

// Catalog wraps a persistent store of canonical graph encodings plus cached
// product-density matrices, so expensive enumerations and density
// computations can be restored without recomputation.
type Catalog interface {
	GraphAdder

	// Select streams every stored graph matching the selector into onHit,
	// then closes it.
	Select(sel go3flag.GraphSelector, onHit chan<- *Graph)

	// NumGraphs returns the number of stored graphs of the given order.
	NumGraphs(order int) int64

	// StoreDensity / LoadDensity persist compact density matrices keyed by
	// (graph index, type index).
	StoreDensity(graphIdx, typeIdx int, buf []byte) error
	LoadDensity(graphIdx, typeIdx int) ([]byte, bool, error)

	IsReadOnly() bool
}

// GraphFromKey decodes the binary form produced by Graph.Key.
func GraphFromKey(buf []byte) (*Graph, error) {
	if len(buf) < 3 {
		return nil, errors.Wrap(go3flag.ErrUnmarshal, "graph key too short")
	}
	order := int(buf[0])
	typeOrder := int(buf[1])
	ne := int(buf[2])
	if typeOrder > order || len(buf) != 3+3*ne {
		return nil, errors.Wrap(go3flag.ErrUnmarshal, "bad graph key")
	}
	g := &Graph{order: order, typeOrder: typeOrder, edges: make([]Edge, ne)}
	for i := 0; i < ne; i++ {
		a, b, c := buf[3+3*i], buf[4+3*i], buf[5+3*i]
		if a < 1 || int(c) > order {
			return nil, errors.Wrap(go3flag.ErrBadVtxID, "graph key vertex out of range")
		}
		g.edges[i] = Edge{VtxID(a), VtxID(b), VtxID(c)}
	}
	g.sortEdges()
	return g, nil
}

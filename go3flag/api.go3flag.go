// Package go3flag holds the public limits, errors, and combinatorial support
// shared across the flag algebra engine for 3-uniform hypergraphs ("3-graphs").
//
// The heavy lifting lives in lib3flag (graphs, canonicalization, generation,
// flag products) and lib3flag/problem (SDP assembly).  This package stays
// dependency-light so that every other package can import it.
package go3flag

const (

	// MaxVtxID is the max possible value of a VtxID (a one-based index).
	//
	// The compact string notation only reaches 9 (single-digit labels), but
	// vertex splitting during degenerate induced-subgraph computation can
	// temporarily push a graph past that.
	MaxVtxID = 31

	// MaxNotationOrder is the largest graph order expressible in the compact
	// "<n>:<abc>..." notation.
	MaxNotationOrder = 9
)

// VtxID is a one-based vertex label.
type VtxID byte

// GraphSelector bounds a catalog selection by vertex count.
type GraphSelector struct {
	MinVtxCount int
	MaxVtxCount int
}

// CatalogOpts specifies params for opening a graph catalog.
type CatalogOpts struct {
	DbPathName string // empty means in-memory
	ReadOnly   bool
}

package go3flag

import "errors"

// Errors
var (
	ErrBadGraphNotation = errors.New("bad graph notation")
	ErrBadVtxID         = errors.New("bad graph vertex ID")
	ErrBadEdge          = errors.New("bad graph edge")
	ErrBadCatalogParam  = errors.New("bad catalog param")
	ErrCatalogReadOnly  = errors.New("catalog is read-only")
	ErrUnmarshal        = errors.New("unmarshal failed")
	ErrNilGraph         = errors.New("nil graph")
	ErrSolverFailed     = errors.New("SDP solver did not produce an objective value")
)

package ratmat

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// CompactSymm is the persistable form of a sparse symmetric rational matrix:
// the dimension, the row-subdivision boundaries, and the nonzero
// upper-triangle entries as exact rational text keyed by "row,col".
type CompactSymm struct {
	N       int               `msgpack:"n"`
	Blocks  []int             `msgpack:"blocks"`
	Entries map[string]string `msgpack:"entries"`
}

// ToCompact captures a symmetric matrix's upper triangle plus subdivision
// metadata.  Symmetry is the caller's responsibility; the lower triangle is
// simply not recorded.
func ToCompact(m *Matrix) *CompactSymm {
	cs := &CompactSymm{
		N:       m.Rows(),
		Blocks:  append([]int(nil), m.RowDivisions()...),
		Entries: make(map[string]string),
	}
	for i := 0; i < m.Rows(); i++ {
		for j := i; j < m.Cols(); j++ {
			if v := m.At(i, j); v.Sign() != 0 {
				cs.Entries[fmt.Sprintf("%d,%d", i, j)] = v.RatString()
			}
		}
	}
	return cs
}

// FromCompact rebuilds the full symmetric matrix, subdivision included.
func FromCompact(cs *CompactSymm) (*Matrix, error) {
	m := New(cs.N, cs.N)
	for key, text := range cs.Entries {
		rs, cstr, ok := strings.Cut(key, ",")
		if !ok {
			return nil, errors.Errorf("compact matrix: bad entry key %q", key)
		}
		r, err := strconv.Atoi(rs)
		if err != nil {
			return nil, errors.Wrapf(err, "compact matrix: bad entry key %q", key)
		}
		c, err := strconv.Atoi(cstr)
		if err != nil {
			return nil, errors.Wrapf(err, "compact matrix: bad entry key %q", key)
		}
		if r < 0 || c < 0 || r >= cs.N || c >= cs.N {
			return nil, errors.Errorf("compact matrix: entry (%d,%d) out of range", r, c)
		}
		v, ok := new(big.Rat).SetString(text)
		if !ok {
			return nil, errors.Errorf("compact matrix: bad rational %q", text)
		}
		m.Set(r, c, v)
		m.Set(c, r, v)
	}
	m.SubdivideRows(cs.Blocks...)
	return m, nil
}

// Marshal encodes the compact form with msgpack (the catalog's value format).
func (cs *CompactSymm) Marshal() ([]byte, error) {
	return msgpack.Marshal(cs)
}

// UnmarshalCompact decodes a msgpack-encoded compact matrix.
func UnmarshalCompact(buf []byte) (*CompactSymm, error) {
	cs := &CompactSymm{}
	if err := msgpack.Unmarshal(buf, cs); err != nil {
		return nil, errors.Wrap(err, "compact matrix")
	}
	return cs, nil
}

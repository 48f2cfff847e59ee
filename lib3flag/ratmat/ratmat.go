// Package ratmat provides the exact rational linear algebra used by the flag
// algebra pipeline: dense matrices of *big.Rat with row-subdivision metadata,
// reduced row echelon form, kernel bases, and Gram-Schmidt orthogonalization.
//
// Exact arithmetic is kept through canonicalization, generation, and basis
// construction; floating point appears only at the SDP solver boundary.
package ratmat

import "math/big"

// Matrix is a dense rows x cols rational matrix.  An optional ascending list
// of row-subdivision boundaries records block structure (e.g. the
// invariant/anti-invariant split of a flag basis).
type Matrix struct {
	rows, cols int
	a          []*big.Rat
	rowDiv     []int
}

// New returns a zero matrix of the given shape.
func New(rows, cols int) *Matrix {
	m := &Matrix{rows: rows, cols: cols, a: make([]*big.Rat, rows*cols)}
	for i := range m.a {
		m.a[i] = new(big.Rat)
	}
	return m
}

// Identity returns the n x n identity.
func Identity(n int) *Matrix {
	m := New(n, n)
	for i := 0; i < n; i++ {
		m.a[i*n+i].SetInt64(1)
	}
	return m
}

// FromRows builds a matrix from row vectors (which are copied).
func FromRows(rows [][]*big.Rat, cols int) *Matrix {
	m := New(len(rows), cols)
	for i, r := range rows {
		for j, v := range r {
			m.a[i*cols+j].Set(v)
		}
	}
	return m
}

func (m *Matrix) Rows() int { return m.rows }
func (m *Matrix) Cols() int { return m.cols }

// At returns the entry at (i, j).  Callers must not mutate the result.
func (m *Matrix) At(i, j int) *big.Rat { return m.a[i*m.cols+j] }

// Set assigns the entry at (i, j) by value.
func (m *Matrix) Set(i, j int, v *big.Rat) { m.a[i*m.cols+j].Set(v) }

// SetInt64 assigns an integer entry at (i, j).
func (m *Matrix) SetInt64(i, j int, v int64) { m.a[i*m.cols+j].SetInt64(v) }

// Copy returns a deep copy, subdivisions included.
func (m *Matrix) Copy() *Matrix {
	c := New(m.rows, m.cols)
	for i, v := range m.a {
		c.a[i].Set(v)
	}
	c.rowDiv = append([]int(nil), m.rowDiv...)
	return c
}

// Equal reports entry-wise equality (subdivisions are not compared).
func (m *Matrix) Equal(o *Matrix) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := range m.a {
		if m.a[i].Cmp(o.a[i]) != 0 {
			return false
		}
	}
	return true
}

// SubdivideRows records row block boundaries (ascending, strictly inside
// (0, rows)).
func (m *Matrix) SubdivideRows(points ...int) {
	m.rowDiv = append([]int(nil), points...)
}

// RowDivisions returns the recorded row-subdivision boundaries.
func (m *Matrix) RowDivisions() []int { return m.rowDiv }

// RowBlocks splits the matrix into its subdivision row blocks.  A matrix with
// no subdivision yields a single block.
func (m *Matrix) RowBlocks() []*Matrix {
	bounds := append(append([]int{0}, m.rowDiv...), m.rows)
	blocks := make([]*Matrix, 0, len(bounds)-1)
	for i := 0; i+1 < len(bounds); i++ {
		lo, hi := bounds[i], bounds[i+1]
		b := New(hi-lo, m.cols)
		for r := lo; r < hi; r++ {
			for c := 0; c < m.cols; c++ {
				b.a[(r-lo)*m.cols+c].Set(m.At(r, c))
			}
		}
		blocks = append(blocks, b)
	}
	return blocks
}

// Mul returns m * o.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	if m.cols != o.rows {
		panic("ratmat: dimension mismatch in Mul")
	}
	out := New(m.rows, o.cols)
	t := new(big.Rat)
	for i := 0; i < m.rows; i++ {
		for k := 0; k < m.cols; k++ {
			mik := m.At(i, k)
			if mik.Sign() == 0 {
				continue
			}
			for j := 0; j < o.cols; j++ {
				okj := o.At(k, j)
				if okj.Sign() == 0 {
					continue
				}
				t.Mul(mik, okj)
				out.a[i*o.cols+j].Add(out.a[i*o.cols+j], t)
			}
		}
	}
	return out
}

// Transpose returns the transpose of m.
func (m *Matrix) Transpose() *Matrix {
	out := New(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.a[j*m.rows+i].Set(m.At(i, j))
		}
	}
	return out
}

// Stack vertically concatenates m over o.  Subdivisions are not carried over;
// callers record the split themselves.
func (m *Matrix) Stack(o *Matrix) *Matrix {
	if m.cols != o.cols {
		panic("ratmat: dimension mismatch in Stack")
	}
	out := New(m.rows+o.rows, m.cols)
	for i, v := range m.a {
		out.a[i].Set(v)
	}
	for i, v := range o.a {
		out.a[len(m.a)+i].Set(v)
	}
	return out
}

// BlockDiag assembles a block-diagonal matrix, recording row subdivisions at
// the block boundaries.
func BlockDiag(blocks ...*Matrix) *Matrix {
	rows, cols := 0, 0
	for _, b := range blocks {
		rows += b.rows
		cols += b.cols
	}
	out := New(rows, cols)
	r0, c0 := 0, 0
	var div []int
	for _, b := range blocks {
		for i := 0; i < b.rows; i++ {
			for j := 0; j < b.cols; j++ {
				out.a[(r0+i)*cols+c0+j].Set(b.At(i, j))
			}
		}
		r0 += b.rows
		c0 += b.cols
		if r0 < rows {
			div = append(div, r0)
		}
	}
	out.rowDiv = div
	return out
}

// RowSlice returns rows [lo, hi) as a new matrix.
func (m *Matrix) RowSlice(lo, hi int) *Matrix {
	out := New(hi-lo, m.cols)
	for i := lo; i < hi; i++ {
		for j := 0; j < m.cols; j++ {
			out.a[(i-lo)*m.cols+j].Set(m.At(i, j))
		}
	}
	return out
}

func (m *Matrix) swapRows(i, j int) {
	for c := 0; c < m.cols; c++ {
		m.a[i*m.cols+c], m.a[j*m.cols+c] = m.a[j*m.cols+c], m.a[i*m.cols+c]
	}
}

// Echelon returns the reduced row echelon form of m.
func (m *Matrix) Echelon() *Matrix {
	r := m.Copy()
	r.rowDiv = nil
	row := 0
	for lead := 0; lead < r.cols && row < r.rows; lead++ {
		piv := -1
		for i := row; i < r.rows; i++ {
			if r.At(i, lead).Sign() != 0 {
				piv = i
				break
			}
		}
		if piv < 0 {
			continue
		}
		r.swapRows(row, piv)

		inv := new(big.Rat).Inv(r.At(row, lead))
		for j := lead; j < r.cols; j++ {
			r.a[row*r.cols+j].Mul(r.At(row, j), inv)
		}
		f := new(big.Rat)
		t := new(big.Rat)
		for i := 0; i < r.rows; i++ {
			if i == row || r.At(i, lead).Sign() == 0 {
				continue
			}
			f.Set(r.At(i, lead))
			for j := lead; j < r.cols; j++ {
				t.Mul(f, r.At(row, j))
				r.a[i*r.cols+j].Sub(r.At(i, j), t)
			}
		}
		row++
	}
	return r
}

// Rank returns the rank of m.
func (m *Matrix) Rank() int {
	r := m.Echelon()
	rank := 0
	for i := 0; i < r.rows; i++ {
		zero := true
		for j := 0; j < r.cols; j++ {
			if r.At(i, j).Sign() != 0 {
				zero = false
				break
			}
		}
		if !zero {
			rank++
		}
	}
	return rank
}

// RightKernel returns a basis of {x : m·x = 0} as the rows of a
// (cols-rank) x cols matrix.
func (m *Matrix) RightKernel() *Matrix {
	r := m.Echelon()

	pivotCol := make([]int, 0, r.rows)
	isPivot := make([]bool, r.cols)
	for i := 0; i < r.rows; i++ {
		for j := 0; j < r.cols; j++ {
			if r.At(i, j).Sign() != 0 {
				pivotCol = append(pivotCol, j)
				isPivot[j] = true
				break
			}
		}
	}

	free := make([]int, 0, r.cols-len(pivotCol))
	for j := 0; j < r.cols; j++ {
		if !isPivot[j] {
			free = append(free, j)
		}
	}

	out := New(len(free), m.cols)
	for bi, f := range free {
		out.a[bi*m.cols+f].SetInt64(1)
		for i, p := range pivotCol {
			out.a[bi*m.cols+p].Neg(r.At(i, f))
		}
	}
	return out
}

// GramSchmidtRows orthogonalizes the rows of m in order (exact, not
// normalized).  Rows that project to zero are dropped; for linearly
// independent input the row count is preserved.
func (m *Matrix) GramSchmidtRows() *Matrix {
	var basis [][]*big.Rat
	coef := new(big.Rat)
	t := new(big.Rat)

	for i := 0; i < m.rows; i++ {
		v := make([]*big.Rat, m.cols)
		for j := 0; j < m.cols; j++ {
			v[j] = new(big.Rat).Set(m.At(i, j))
		}
		for _, u := range basis {
			num := dot(v, u)
			if num.Sign() == 0 {
				continue
			}
			coef.Quo(num, dot(u, u))
			for j := range v {
				t.Mul(coef, u[j])
				v[j].Sub(v[j], t)
			}
		}
		if !isZeroVec(v) {
			basis = append(basis, v)
		}
	}
	return FromRows(basis, m.cols)
}

func dot(a, b []*big.Rat) *big.Rat {
	sum := new(big.Rat)
	t := new(big.Rat)
	for i := range a {
		if a[i].Sign() == 0 || b[i].Sign() == 0 {
			continue
		}
		t.Mul(a[i], b[i])
		sum.Add(sum, t)
	}
	return sum
}

func isZeroVec(v []*big.Rat) bool {
	for _, x := range v {
		if x.Sign() != 0 {
			return false
		}
	}
	return true
}

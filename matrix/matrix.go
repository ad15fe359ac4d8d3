// Package matrix implements bounded fixed-point matrices.
//
// Every matrix shares one compile-time capacity Cap and tracks its active
// dimensions at runtime, so no operation ever allocates. Matrices are
// value types; assignment copies the backing storage. Shape violations
// and out-of-range element accesses are caller contract errors and panic
// with a typed sentinel error; a singular matrix during inversion is a
// modeling condition and is returned as an error instead.
package matrix

import (
	"errors"
	"fmt"

	"github.com/go-estimation/fixkalman/fix"
)

// Cap is the compile-time capacity shared by every matrix. It must be at
// least as large as the biggest state, input or measurement count used by
// any filter in the process.
const Cap = 8

var (
	// ErrShape is panicked when operand dimensions are incompatible.
	ErrShape = errors.New("matrix: dimension mismatch")
	// ErrRowAccess is panicked on an out-of-range row index.
	ErrRowAccess = errors.New("matrix: row index out of range")
	// ErrColAccess is panicked on an out-of-range column index.
	ErrColAccess = errors.New("matrix: column index out of range")
	// ErrSingular is returned by Invert when the matrix is singular or
	// not positive definite.
	ErrSingular = errors.New("matrix: matrix is singular")
)

// Matrix is a rows x cols fixed-point matrix with capacity Cap.
type Matrix struct {
	rows, cols int
	data       [Cap][Cap]fix.Q16
}

// New creates a zeroed rows x cols matrix.
// It returns error if either dimension is non-positive or exceeds Cap.
func New(rows, cols int) (*Matrix, error) {
	if rows <= 0 || cols <= 0 || rows > Cap || cols > Cap {
		return nil, fmt.Errorf("invalid matrix dimensions: [%d x %d]", rows, cols)
	}

	return &Matrix{rows: rows, cols: cols}, nil
}

// Eye creates an n x n identity matrix.
// It returns error if n is non-positive or exceeds Cap.
func Eye(n int) (*Matrix, error) {
	m, err := New(n, n)
	if err != nil {
		return nil, err
	}

	for i := 0; i < n; i++ {
		m.data[i][i] = fix.One
	}

	return m, nil
}

// Dims returns the active dimensions of m.
func (m *Matrix) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// Zero sets every element of m to zero, keeping its dimensions.
func (m *Matrix) Zero() {
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			m.data[i][j] = 0
		}
	}
}

func (m *Matrix) checkIndex(r, c int) {
	if r < 0 || r >= m.rows {
		panic(ErrRowAccess)
	}
	if c < 0 || c >= m.cols {
		panic(ErrColAccess)
	}
}

// At returns the element at row r, column c.
func (m *Matrix) At(r, c int) fix.Q16 {
	m.checkIndex(r, c)
	return m.data[r][c]
}

// Set sets the element at row r, column c to v.
func (m *Matrix) Set(r, c int, v fix.Q16) {
	m.checkIndex(r, c)
	m.data[r][c] = v
}

// SetSym sets both (r,c) and (c,r) to v so that symmetric matrices stay
// symmetric by construction.
func (m *Matrix) SetSym(r, c int, v fix.Q16) {
	if m.rows != m.cols {
		panic(ErrShape)
	}
	m.checkIndex(r, c)
	m.data[r][c] = v
	m.data[c][r] = v
}

// Copy makes m a copy of a.
func (m *Matrix) Copy(a *Matrix) {
	*m = *a
}

// Mul calculates the product a*b and stores the result in m.
// It panics with ErrShape unless a.cols == b.rows.
func (m *Matrix) Mul(a, b *Matrix) {
	if a.cols != b.rows {
		panic(ErrShape)
	}

	var out Matrix
	out.rows, out.cols = a.rows, b.cols
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.cols; j++ {
			var sum fix.Q16
			for k := 0; k < a.cols; k++ {
				sum = sum.Add(a.data[i][k].Mul(b.data[k][j]))
			}
			out.data[i][j] = sum
		}
	}
	*m = out
}

// MulTrans calculates the product a*b' and stores the result in m.
// It panics with ErrShape unless a.cols == b.cols.
func (m *Matrix) MulTrans(a, b *Matrix) {
	if a.cols != b.cols {
		panic(ErrShape)
	}

	var out Matrix
	out.rows, out.cols = a.rows, b.rows
	for i := 0; i < a.rows; i++ {
		for j := 0; j < b.rows; j++ {
			var sum fix.Q16
			for k := 0; k < a.cols; k++ {
				sum = sum.Add(a.data[i][k].Mul(b.data[j][k]))
			}
			out.data[i][j] = sum
		}
	}
	*m = out
}

// Add calculates the sum a+b and stores the result in m.
// It panics with ErrShape unless a and b have the same dimensions.
func (m *Matrix) Add(a, b *Matrix) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(ErrShape)
	}

	var out Matrix
	out.rows, out.cols = a.rows, a.cols
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[i][j] = a.data[i][j].Add(b.data[i][j])
		}
	}
	*m = out
}

// Sub calculates the difference a-b and stores the result in m.
// It panics with ErrShape unless a and b have the same dimensions.
func (m *Matrix) Sub(a, b *Matrix) {
	if a.rows != b.rows || a.cols != b.cols {
		panic(ErrShape)
	}

	var out Matrix
	out.rows, out.cols = a.rows, a.cols
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[i][j] = a.data[i][j].Sub(b.data[i][j])
		}
	}
	*m = out
}

// Scale calculates c*a and stores the result in m.
func (m *Matrix) Scale(c fix.Q16, a *Matrix) {
	var out Matrix
	out.rows, out.cols = a.rows, a.cols
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[i][j] = a.data[i][j].Mul(c)
		}
	}
	*m = out
}

// Transpose stores the transpose of a in m.
func (m *Matrix) Transpose(a *Matrix) {
	var out Matrix
	out.rows, out.cols = a.cols, a.rows
	for i := 0; i < a.rows; i++ {
		for j := 0; j < a.cols; j++ {
			out.data[j][i] = a.data[i][j]
		}
	}
	*m = out
}

// MirrorUpper copies the upper triangle of m into its lower triangle,
// making m exactly symmetric. Covariance updates compute the upper
// triangle authoritatively and mirror it, since per-element rounding
// would otherwise let the two triangles drift apart.
// It panics with ErrShape if m is not square.
func (m *Matrix) MirrorUpper() {
	if m.rows != m.cols {
		panic(ErrShape)
	}

	for i := 0; i < m.rows; i++ {
		for j := i + 1; j < m.cols; j++ {
			m.data[j][i] = m.data[i][j]
		}
	}
}

// Invert calculates the inverse of the symmetric positive definite
// matrix a and stores it in m. It factorizes a = L*L' and inverts the
// Cholesky factor, so the result is symmetric by construction.
// It panics with ErrShape if a is not square and returns ErrSingular if
// a pivot is not positive, i.e. a is singular or not positive definite
// within fixed-point resolution.
func (m *Matrix) Invert(a *Matrix) error {
	if a.rows != a.cols {
		panic(ErrShape)
	}

	n := a.rows

	// a = L*L'
	var l [Cap][Cap]fix.Q16
	for j := 0; j < n; j++ {
		d := a.data[j][j]
		for t := 0; t < j; t++ {
			d = d.Sub(l[j][t].Mul(l[j][t]))
		}
		if d <= 0 {
			return ErrSingular
		}
		l[j][j] = d.Sqrt()

		for i := j + 1; i < n; i++ {
			v := a.data[i][j]
			for t := 0; t < j; t++ {
				v = v.Sub(l[i][t].Mul(l[j][t]))
			}
			l[i][j] = v.Div(l[j][j])
		}
	}

	// li = inv(L) by forward substitution
	var li [Cap][Cap]fix.Q16
	for j := 0; j < n; j++ {
		li[j][j] = fix.One.Div(l[j][j])
		for i := j + 1; i < n; i++ {
			var sum fix.Q16
			for t := j; t < i; t++ {
				sum = sum.Add(l[i][t].Mul(li[t][j]))
			}
			li[i][j] = sum.Div(l[i][i]).Neg()
		}
	}

	// inv(a) = li'*li, symmetric by construction
	var out Matrix
	out.rows, out.cols = n, n
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			var sum fix.Q16
			for t := j; t < n; t++ {
				sum = sum.Add(li[t][i].Mul(li[t][j]))
			}
			out.data[i][j] = sum
			out.data[j][i] = sum
		}
	}
	*m = out

	return nil
}

// String implements the Stringer interface.
func (m *Matrix) String() string {
	s := ""
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			if j > 0 {
				s += " "
			}
			s += m.data[i][j].String()
		}
		s += "\n"
	}
	return s
}

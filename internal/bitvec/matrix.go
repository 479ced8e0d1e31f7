package bitvec

import "fmt"

// Matrix is a square bit relation (rows × rows). The conflict computation
// keeps it symmetric by inserting both (a,b) and (b,a); the type itself
// does not enforce symmetry.
type Matrix struct {
	rows []Set
}

func NewMatrix(n int) *Matrix {
	m := &Matrix{rows: make([]Set, n)}
	for i := range m.rows {
		m.rows[i] = New(n)
	}
	return m
}

func (m *Matrix) Size() int { return len(m.rows) }

func (m *Matrix) Contains(a, b int) bool {
	return m.row(a).Contains(b)
}

// Insert sets (a,b) and reports whether it was newly added.
func (m *Matrix) Insert(a, b int) bool {
	return m.row(a).Insert(b)
}

// UnionRowWith ors src into row a and reports whether the row changed.
func (m *Matrix) UnionRowWith(src Set, a int) bool {
	return m.row(a).UnionWith(src)
}

// Row exposes a row for read-only iteration.
func (m *Matrix) Row(a int) Set { return m.row(a) }

// InsertAll fills row a entirely; used when a relates to everything.
func (m *Matrix) InsertAll(a int) {
	row := m.row(a)
	for b := range m.rows {
		row.Insert(b)
	}
}

func (m *Matrix) row(a int) Set {
	if a < 0 || a >= len(m.rows) {
		panic(fmt.Sprintf("bitvec: row %d out of range [0,%d)", a, len(m.rows)))
	}
	return m.rows[a]
}

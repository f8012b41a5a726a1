package tournament

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Preference is what is known about one ordered pair of candidates.
type Preference uint8

const (
	Unknown      Preference = iota
	Preferred               // row candidate beats column candidate
	NotPreferred            // column candidate beats row candidate
)

func (p Preference) String() string {
	switch p {
	case Unknown:
		return "unknown"
	case Preferred:
		return "preferred"
	case NotPreferred:
		return "not_preferred"
	default:
		return fmt.Sprintf("Preference(%d)", uint8(p))
	}
}

// Matrix is the N×N preference table. Cell (i, j) is Preferred exactly when
// cell (j, i) is NotPreferred, and a known cell never changes again.
type Matrix struct {
	n     int
	cells []Preference
}

// NewMatrix returns an all-unknown n×n matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, cells: make([]Preference, n*n)}
}

// Size returns n.
func (m *Matrix) Size() int { return m.n }

// Get returns what is known about row i versus column j.
func (m *Matrix) Get(i, j int) Preference {
	return m.cells[i*m.n+j]
}

// Known reports whether the order of i and j has been established.
func (m *Matrix) Known(i, j int) bool {
	return m.Get(i, j) != Unknown
}

// Set records that winner beats loser in both mirrored cells. It returns false
// and changes nothing when the pair is already known or winner == loser.
func (m *Matrix) Set(winner, loser int) bool {
	if winner == loser || m.Known(winner, loser) {
		return false
	}
	m.cells[winner*m.n+loser] = Preferred
	m.cells[loser*m.n+winner] = NotPreferred
	return true
}

// Count returns the number of unordered pairs whose order is known.
func (m *Matrix) Count() int {
	known := 0
	for _, c := range m.cells {
		if c == Preferred {
			known++
		}
	}
	return known
}

// Clone returns an independent copy.
func (m *Matrix) Clone() *Matrix {
	out := &Matrix{n: m.n, cells: make([]Preference, len(m.cells))}
	copy(out.cells, m.cells)
	return out
}

// Matrix rows are persisted as strings, one byte per cell.
const (
	cellUnknown      = '.'
	cellPreferred    = '+'
	cellNotPreferred = '-'
)

// MarshalJSON encodes the matrix as a list of row strings such as ".+-".
func (m *Matrix) MarshalJSON() ([]byte, error) {
	rows := make([]string, m.n)
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		b.Reset()
		for j := 0; j < m.n; j++ {
			switch m.Get(i, j) {
			case Preferred:
				b.WriteByte(cellPreferred)
			case NotPreferred:
				b.WriteByte(cellNotPreferred)
			default:
				b.WriteByte(cellUnknown)
			}
		}
		rows[i] = b.String()
	}
	return json.Marshal(rows)
}

// UnmarshalJSON decodes rows written by MarshalJSON and checks that the
// matrix is square and mirrored.
func (m *Matrix) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}

	n := len(rows)
	out := NewMatrix(n)
	for i, row := range rows {
		if len(row) != n {
			return fmt.Errorf("matrix row %d has %d cells, want %d", i, len(row), n)
		}
		for j := 0; j < n; j++ {
			switch row[j] {
			case cellUnknown:
			case cellPreferred:
				out.cells[i*n+j] = Preferred
			case cellNotPreferred:
				out.cells[i*n+j] = NotPreferred
			default:
				return fmt.Errorf("matrix cell (%d,%d) has unknown value %q", i, j, row[j])
			}
		}
	}

	for i := 0; i < n; i++ {
		if out.Get(i, i) != Unknown {
			return fmt.Errorf("matrix diagonal cell %d is set", i)
		}
		for j := i + 1; j < n; j++ {
			a, b := out.Get(i, j), out.Get(j, i)
			ok := (a == Unknown && b == Unknown) ||
				(a == Preferred && b == NotPreferred) ||
				(a == NotPreferred && b == Preferred)
			if !ok {
				return fmt.Errorf("matrix cells (%d,%d) and (%d,%d) disagree", i, j, j, i)
			}
		}
	}

	*m = *out
	return nil
}

package types

import "fmt"

// =============================================================================
// DUELS
// =============================================================================

// Duel is one pairwise question between two candidates. The pair is unordered:
// Duel{x, y} and Duel{y, x} ask the same question, only the side labels differ.
type Duel[T comparable] struct {
	A T `json:"a"`
	B T `json:"b"`
}

// NewDuel builds a duel with a on side A and b on side B.
func NewDuel[T comparable](a, b T) Duel[T] {
	return Duel[T]{A: a, B: b}
}

// Equal reports whether both duels ask about the same pair, regardless of side.
func (d Duel[T]) Equal(other Duel[T]) bool {
	return (d.A == other.A && d.B == other.B) || (d.A == other.B && d.B == other.A)
}

// Contains reports whether v takes part in the duel.
func (d Duel[T]) Contains(v T) bool {
	return d.A == v || d.B == v
}

// Resolve returns the winning and losing candidates for the declared side.
func (d Duel[T]) Resolve(w Winner) (winner, loser T) {
	if w == WinnerA {
		return d.A, d.B
	}
	return d.B, d.A
}

// Swap returns the same duel with the sides exchanged.
func (d Duel[T]) Swap() Duel[T] {
	return Duel[T]{A: d.B, B: d.A}
}

func (d Duel[T]) String() string {
	return fmt.Sprintf("%v vs %v", d.A, d.B)
}

// Winner names the side of a duel that won, relative to the duel's A/B order.
type Winner uint8

const (
	WinnerA Winner = iota
	WinnerB
)

// Flip returns the opposite side.
func (w Winner) Flip() Winner {
	if w == WinnerA {
		return WinnerB
	}
	return WinnerA
}

// Valid reports whether w is one of the two declared sides.
func (w Winner) Valid() bool {
	return w == WinnerA || w == WinnerB
}

func (w Winner) String() string {
	switch w {
	case WinnerA:
		return "A"
	case WinnerB:
		return "B"
	default:
		return fmt.Sprintf("Winner(%d)", uint8(w))
	}
}

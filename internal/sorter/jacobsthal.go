package sorter

// ReverseJacobsthal returns the Ford-Johnson insertion order for count slots.
//
// Block boundaries are the Jacobsthal numbers 1, 3, 5, 11, 21, 43, ... reduced
// by one for zero-based indexing (0, 2, 4, 10, 20, 42, ...). Slot 0 comes
// first, then every block is emitted from its upper boundary (clamped to
// count-1) down to, but excluding, the previous boundary:
//
//	ReverseJacobsthal(6) = [0 2 1 4 3 5]
//
// Inserting in this order keeps every binary search inside a range of at most
// 2^k-1 elements, which is where the near-optimal comparison count comes from.
// The result is always a permutation of [0, count).
func ReverseJacobsthal(count int) []int {
	if count <= 0 {
		return nil
	}

	seq := make([]int, 0, count)
	seq = append(seq, 0)

	// prev and next are consecutive unreduced boundaries.
	prev, next := 1, 3
	for len(seq) < count {
		hi := min(next-1, count-1)
		for j := hi; j > prev-1; j-- {
			seq = append(seq, j)
		}
		prev, next = next, next+2*prev
	}
	return seq
}

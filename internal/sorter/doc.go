// Package sorter implements an online Ford-Johnson (merge-insertion) sort that
// is driven one comparison at a time.
//
// The classical algorithm is recursive: pair the elements, sort the winners
// recursively, then binary-insert the losers in Jacobsthal order. Sorter keeps
// that recursion on an explicit layer stack instead of the call stack, so the
// caller can ask for the next comparison, answer it whenever it likes, and
// snapshot the whole sort between any two answers.
//
// Phases run strictly forward:
//
//	SPLITTING -> MERGING -> COMPLETED
//
// SPLITTING pairs the current layer, sends each duel winner down to the next
// (smaller) layer and sets the loser aside. When a layer shrinks to a single
// element, MERGING starts: every set-aside element is binary-inserted into the
// growing sorted sequence, one layer at a time, popping frames in LIFO order.
//
// Example with seven elements g b e f a c d (best first once sorted):
//
//	layer 0  pairs g-b e-f a-c, d unpaired    winners b e a   set aside g f c d
//	layer 1  pairs b-e, a unpaired            winner  b       set aside e a
//	merge 1  sorted b -> b e -> a b e
//	merge 0  insert d c g f around their partners -> a b c d e f g
//
// The sorted sequence is ordered best first: the winner of a duel always sits
// to the left of the loser.
package sorter

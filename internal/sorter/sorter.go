package sorter

import (
	"fmt"
	"slices"

	"ranker/internal/logging"
	"ranker/internal/types"
)

// Phase is the coarse state of a Sorter. Phases only move forward.
type Phase uint8

const (
	PhaseSplitting Phase = iota
	PhaseMerging
	PhaseCompleted
)

func (p Phase) String() string {
	switch p {
	case PhaseSplitting:
		return "splitting"
	case PhaseMerging:
		return "merging"
	case PhaseCompleted:
		return "completed"
	default:
		return fmt.Sprintf("Phase(%d)", uint8(p))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	switch p {
	case PhaseSplitting, PhaseMerging, PhaseCompleted:
		return []byte(p.String()), nil
	}
	return nil, fmt.Errorf("unknown phase %d", uint8(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	switch string(text) {
	case "splitting":
		*p = PhaseSplitting
	case "merging":
		*p = PhaseMerging
	case "completed":
		*p = PhaseCompleted
	default:
		return fmt.Errorf("unknown phase %q", text)
	}
	return nil
}

// Frame is one entry of the layer stack: the elements set aside while
// splitting a layer and the pairing that produced them.
type Frame struct {
	SetAside []int   `json:"set_aside"`
	Pairing  Pairing `json:"pairing"`
}

func (f Frame) clone() Frame {
	return Frame{SetAside: slices.Clone(f.SetAside), Pairing: f.Pairing.Clone()}
}

// Cursor is the binary-search window for the element being inserted.
// Lower and Upper are inclusive; Middle is the position currently asked about.
type Cursor struct {
	Lower  int `json:"lower"`
	Upper  int `json:"upper"`
	Middle int `json:"middle"`
}

// Sorter is an online merge-insertion sort over the indices 0..n-1.
// It is not safe for concurrent use.
type Sorter struct {
	phase Phase
	src   Source

	// sorted is the best-first sequence being built. While splitting it
	// collects the winners of the current layer.
	sorted   []int
	setAside []int
	layers   []Frame
	pairing  Pairing
	duels    []types.Duel[int]

	queue  []int
	target int
	cursor Cursor

	current     types.Duel[int]
	final       []int
	comparisons int
}

// New creates a sorter over n elements and prepares its first comparison.
func New(n int, opts ...Option) (*Sorter, error) {
	if n < 1 {
		return nil, fmt.Errorf("sorter needs at least one element, got %d: %w", n, types.ErrInvalidArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.resolve()

	s := &Sorter{phase: PhaseSplitting, src: o.source, target: Unpaired}
	if n == 1 {
		s.sorted = []int{0}
		s.complete()
		return s, nil
	}

	layer := make([]int, n)
	for i := range layer {
		layer[i] = i
	}
	s.startLayer(layer)
	s.current = s.popDuel()

	logging.SorterDebug("new sorter: n=%d first layer has %d duels", n, len(s.duels)+1)
	return s, nil
}

// Phase returns the current phase.
func (s *Sorter) Phase() Phase { return s.phase }

// IsComplete reports whether the final sorting is known.
func (s *Sorter) IsComplete() bool { return s.phase == PhaseCompleted }

// Comparisons returns how many duels have been answered.
func (s *Sorter) Comparisons() int { return s.comparisons }

// Depth returns the number of frames on the layer stack.
func (s *Sorter) Depth() int { return len(s.layers) }

// CurrentComparison returns the duel awaiting an answer.
func (s *Sorter) CurrentComparison() (types.Duel[int], error) {
	if s.phase == PhaseCompleted {
		return types.Duel[int]{}, fmt.Errorf("no comparison pending, sorting is complete: %w", types.ErrIllegalState)
	}
	return s.current, nil
}

// FinalSorting returns a copy of the best-first order.
func (s *Sorter) FinalSorting() ([]int, error) {
	if s.phase != PhaseCompleted {
		return nil, fmt.Errorf("final sorting requested during %s: %w", s.phase, types.ErrIllegalState)
	}
	return slices.Clone(s.final), nil
}

// DeclareWinner answers the current comparison. w is relative to the sides of
// the duel returned by CurrentComparison.
func (s *Sorter) DeclareWinner(w types.Winner) error {
	if !w.Valid() {
		return fmt.Errorf("unknown winner %v: %w", w, types.ErrInvalidArgument)
	}

	switch s.phase {
	case PhaseSplitting:
		s.comparisons++
		s.split(w)
	case PhaseMerging:
		s.comparisons++
		s.merge(w)
	default:
		return fmt.Errorf("winner declared after sorting completed: %w", types.ErrIllegalState)
	}
	return nil
}

// =============================================================================
// SPLITTING
// =============================================================================

func (s *Sorter) startLayer(layer []int) {
	s.pairing, s.duels = GeneratePairing(layer, s.src)
	s.sorted = make([]int, 0, len(layer)/2+1)
	s.setAside = make([]int, 0, len(layer)/2+1)
	if v, ok := s.pairing.Leftover(); ok {
		s.setAside = append(s.setAside, v)
	}
}

func (s *Sorter) popDuel() types.Duel[int] {
	d := s.duels[0]
	s.duels = s.duels[1:]
	return d
}

func (s *Sorter) split(w types.Winner) {
	winner, loser := s.current.Resolve(w)
	s.sorted = append(s.sorted, winner)
	s.setAside = append(s.setAside, loser)

	if len(s.duels) > 0 {
		s.current = s.popDuel()
		return
	}

	if len(s.sorted) <= 1 {
		logging.SorterDebug("splitting done at depth %d, merging", len(s.layers))
		s.phase = PhaseMerging
		s.refillQueue()
		s.advance()
		return
	}

	s.layers = append(s.layers, Frame{SetAside: s.setAside, Pairing: s.pairing})
	s.startLayer(s.sorted)
	s.current = s.popDuel()
	logging.SorterDebug("descended to depth %d: %d duels", len(s.layers), len(s.duels)+1)
}

// =============================================================================
// MERGING
// =============================================================================

// refillQueue orders the set-aside elements of the current layer for
// insertion. Jacobsthal positions count from the tail of the sorted sequence;
// the unpaired element, if any, takes the slot just past the last pair.
//
// That slot m is what keeps the worst case at the merge-insertion bound.
// Inserting the unpaired element after every pair instead widens its search
// window past a power of two: five elements then cost up to 8 comparisons
// against a bound of 7.
func (s *Sorter) refillQueue() {
	m := len(s.sorted)
	leftover, hasLeftover := s.pairing.Leftover()
	count := m
	if hasLeftover {
		count++
	}

	s.queue = s.queue[:0]
	for _, q := range ReverseJacobsthal(count) {
		if q == m {
			s.queue = append(s.queue, leftover)
			continue
		}
		partner, ok := s.pairing.Partner(s.sorted[m-1-q])
		if !ok || partner == Unpaired {
			continue
		}
		s.queue = append(s.queue, partner)
	}
}

// advance moves to the next insertion that needs a duel, inserting for free
// wherever the search window is already empty, and completes the sort when
// the layer stack runs out.
func (s *Sorter) advance() {
	for {
		if len(s.queue) == 0 {
			if len(s.layers) == 0 {
				s.complete()
				return
			}
			top := s.layers[len(s.layers)-1]
			s.layers = s.layers[:len(s.layers)-1]
			s.setAside, s.pairing = top.SetAside, top.Pairing
			s.refillQueue()
			logging.SorterDebug("popped frame, %d left, inserting %d elements", len(s.layers), len(s.queue))
			continue
		}

		s.target = s.queue[0]
		s.queue = s.queue[1:]
		s.seedCursor()
		if s.cursor.Lower > s.cursor.Upper {
			s.insert(s.cursor.Lower)
			continue
		}
		s.current = types.NewDuel(s.target, s.sorted[s.cursor.Middle])
		return
	}
}

func (s *Sorter) seedCursor() {
	lower := 0
	if partner, ok := s.pairing.Partner(s.target); ok && partner != Unpaired {
		if i := slices.Index(s.sorted, partner); i >= 0 {
			lower = i + 1
		}
	}
	upper := len(s.sorted) - 1
	s.cursor = Cursor{Lower: lower, Upper: upper, Middle: midpoint(lower, upper)}
}

// midpoint rounds up so that a two-element window asks about its upper end.
func midpoint(lower, upper int) int {
	return lower + (upper-lower+1)/2
}

func (s *Sorter) merge(w types.Winner) {
	if w == types.WinnerA {
		s.cursor.Upper = s.cursor.Middle - 1
	} else {
		s.cursor.Lower = s.cursor.Middle + 1
	}

	if s.cursor.Lower <= s.cursor.Upper {
		s.cursor.Middle = midpoint(s.cursor.Lower, s.cursor.Upper)
		s.current = types.NewDuel(s.target, s.sorted[s.cursor.Middle])
		return
	}

	s.insert(s.cursor.Lower)
	s.advance()
}

func (s *Sorter) insert(pos int) {
	s.sorted = slices.Insert(s.sorted, pos, s.target)
	s.target = Unpaired
}

func (s *Sorter) complete() {
	s.phase = PhaseCompleted
	s.final = slices.Clone(s.sorted)
	s.current = types.Duel[int]{}
	s.cursor = Cursor{}
	s.queue = nil
	s.duels = nil
	s.setAside = nil
	s.pairing = nil
	s.target = Unpaired
	logging.Sorter("sorting complete after %d comparisons", s.comparisons)
}

package sorter

import (
	"encoding"
	"fmt"
	"slices"

	"ranker/internal/types"
)

// State is the complete, serializable state of a Sorter. A sorter restored
// from a State continues exactly where the original left off, including its
// future pairings when the source can be marshalled.
type State struct {
	Phase       Phase             `json:"phase"`
	Sorted      []int             `json:"sorted"`
	SetAside    []int             `json:"set_aside"`
	Layers      []Frame           `json:"layers"`
	Pairing     Pairing           `json:"pairing"`
	Duels       []types.Duel[int] `json:"duel_queue"`
	Queue       []int             `json:"insertion_queue"`
	Target      int               `json:"insertion_target"`
	Cursor      Cursor            `json:"cursor"`
	Current     *types.Duel[int]  `json:"current,omitempty"`
	Final       []int             `json:"final,omitempty"`
	Comparisons int               `json:"comparisons"`
	RNG         []byte            `json:"rng,omitempty"`
}

// Snapshot captures the sorter. The returned State shares no memory with s.
func (s *Sorter) Snapshot() State {
	st := State{
		Phase:       s.phase,
		Sorted:      slices.Clone(s.sorted),
		SetAside:    slices.Clone(s.setAside),
		Pairing:     s.pairing.Clone(),
		Duels:       slices.Clone(s.duels),
		Queue:       slices.Clone(s.queue),
		Target:      s.target,
		Cursor:      s.cursor,
		Final:       slices.Clone(s.final),
		Comparisons: s.comparisons,
	}
	for _, f := range s.layers {
		st.Layers = append(st.Layers, f.clone())
	}
	if s.phase != PhaseCompleted {
		cur := s.current
		st.Current = &cur
	}
	if m, ok := s.src.(encoding.BinaryMarshaler); ok {
		if b, err := m.MarshalBinary(); err == nil {
			st.RNG = b
		}
	}
	return st
}

// Restore rebuilds a sorter over n elements from st. st must describe a
// reachable state of such a sorter: every index in range, each one held in
// exactly one place, and every pairing symmetric over its layer. When st
// carries generator state and the configured source can unmarshal it, the
// source resumes from that state.
func Restore(st State, n int, opts ...Option) (*Sorter, error) {
	if err := st.validate(n); err != nil {
		return nil, fmt.Errorf("restore sorter: %v: %w", err, types.ErrInvalidArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	o.resolve()

	if len(st.RNG) > 0 {
		if u, ok := o.source.(encoding.BinaryUnmarshaler); ok {
			if err := u.UnmarshalBinary(st.RNG); err != nil {
				return nil, fmt.Errorf("restore sorter rng: %v: %w", err, types.ErrInvalidArgument)
			}
		}
	}

	s := &Sorter{
		phase:       st.Phase,
		src:         o.source,
		sorted:      slices.Clone(st.Sorted),
		setAside:    slices.Clone(st.SetAside),
		pairing:     st.Pairing.Clone(),
		duels:       slices.Clone(st.Duels),
		queue:       slices.Clone(st.Queue),
		target:      st.Target,
		cursor:      st.Cursor,
		final:       slices.Clone(st.Final),
		comparisons: st.Comparisons,
	}
	for _, f := range st.Layers {
		s.layers = append(s.layers, f.clone())
	}
	if st.Current != nil {
		s.current = *st.Current
	}
	return s, nil
}

// cover tracks which of the indices 0..n-1 a state has accounted for.
type cover []bool

func (c cover) add(where string, vs ...int) error {
	for _, v := range vs {
		if v < 0 || v >= len(c) {
			return fmt.Errorf("%s holds index %d, want 0..%d", where, v, len(c)-1)
		}
		if c[v] {
			return fmt.Errorf("%s holds index %d twice", where, v)
		}
		c[v] = true
	}
	return nil
}

func (c cover) complete() error {
	for v, ok := range c {
		if !ok {
			return fmt.Errorf("index %d is missing", v)
		}
	}
	return nil
}

// checkPairing verifies that p is a symmetric pairing of exactly layer.
func checkPairing(p Pairing, layer map[int]bool) error {
	if p == nil {
		return fmt.Errorf("missing pairing")
	}
	for k, v := range p {
		switch {
		case k == Unpaired:
			if !layer[v] || p[v] != Unpaired {
				return fmt.Errorf("leftover %d is not unpaired in the layer", v)
			}
		case !layer[k]:
			return fmt.Errorf("pairing holds %d outside its layer", k)
		case v == Unpaired:
			if left, ok := p[Unpaired]; !ok || left != k {
				return fmt.Errorf("%d is unpaired but not the leftover", k)
			}
		case v == k || !layer[v] || p[v] != k:
			return fmt.Errorf("pairing %d-%d is not symmetric", k, v)
		}
	}
	for v := range layer {
		if _, ok := p[v]; !ok {
			return fmt.Errorf("pairing misses %d", v)
		}
	}
	return nil
}

func (st State) validate(n int) error {
	if n < 1 {
		return fmt.Errorf("%d elements", n)
	}
	if st.Comparisons < 0 {
		return fmt.Errorf("negative comparison count %d", st.Comparisons)
	}

	if st.Phase == PhaseCompleted {
		if len(st.Final) != n {
			return fmt.Errorf("final sorting has %d elements, want %d", len(st.Final), n)
		}
		if len(st.Layers) > 0 {
			return fmt.Errorf("completed state with %d frames", len(st.Layers))
		}
		return cover(make([]bool, n)).add("final sorting", st.Final...)
	}
	if st.Phase != PhaseSplitting && st.Phase != PhaseMerging {
		return fmt.Errorf("unknown phase %d", uint8(st.Phase))
	}
	if n == 1 {
		return fmt.Errorf("a single element is sorted from the start, got %s", st.Phase)
	}
	if st.Current == nil {
		return fmt.Errorf("%s state without a pending duel", st.Phase)
	}

	// Peel the frames off [0, n) to find the layer the state is working on.
	layer := make(map[int]bool, n)
	for v := range n {
		layer[v] = true
	}
	c := cover(make([]bool, n))
	for i, f := range st.Layers {
		if err := checkPairing(f.Pairing, layer); err != nil {
			return fmt.Errorf("frame %d: %v", i, err)
		}
		if err := c.add(fmt.Sprintf("frame %d", i), f.SetAside...); err != nil {
			return err
		}
		aside := make(map[int]bool, len(f.SetAside))
		for _, v := range f.SetAside {
			if !layer[v] {
				return fmt.Errorf("frame %d sets aside %d outside its layer", i, v)
			}
			aside[v] = true
		}
		for v := range layer {
			if p := f.Pairing[v]; p == Unpaired && !aside[v] || p != Unpaired && aside[v] == aside[p] {
				return fmt.Errorf("frame %d: pair of %d is not split by the set-aside", i, v)
			}
		}
		for v := range aside {
			delete(layer, v)
		}
	}
	if err := checkPairing(st.Pairing, layer); err != nil {
		return fmt.Errorf("current layer of %d: %v", len(layer), err)
	}

	if st.Phase == PhaseSplitting {
		return st.validateSplitting(c)
	}
	return st.validateMerging(c, layer)
}

func (st State) validateSplitting(c cover) error {
	if len(st.Queue) > 0 || st.Target != Unpaired {
		return fmt.Errorf("splitting state with an insertion queue")
	}
	if err := c.add("sorted", st.Sorted...); err != nil {
		return err
	}
	if err := c.add("set-aside", st.SetAside...); err != nil {
		return err
	}
	for _, d := range append([]types.Duel[int]{*st.Current}, st.Duels...) {
		if err := c.add("duel", d.A, d.B); err != nil {
			return err
		}
		if st.Pairing[d.A] != d.B {
			return fmt.Errorf("duel %v is not a pair", d)
		}
	}
	if err := c.complete(); err != nil {
		return err
	}
	for _, v := range st.Sorted {
		if !slices.Contains(st.SetAside, st.Pairing[v]) {
			return fmt.Errorf("winner %d lost its partner", v)
		}
	}
	for _, v := range st.SetAside {
		if p := st.Pairing[v]; p != Unpaired && !slices.Contains(st.Sorted, p) {
			return fmt.Errorf("set-aside %d lost its partner", v)
		}
	}
	return nil
}

func (st State) validateMerging(c cover, layer map[int]bool) error {
	if len(st.Duels) > 0 {
		return fmt.Errorf("merging state with %d split duels", len(st.Duels))
	}
	if len(st.Sorted) == 0 {
		return fmt.Errorf("merging state without a sorted sequence")
	}
	if err := c.add("sorted", st.Sorted...); err != nil {
		return err
	}
	if err := c.add("insertion queue", st.Queue...); err != nil {
		return err
	}
	if err := c.add("insertion target", st.Target); err != nil {
		return err
	}
	if err := c.complete(); err != nil {
		return err
	}
	for _, v := range st.SetAside {
		if !layer[v] {
			return fmt.Errorf("set-aside %d outside the current layer", v)
		}
	}
	for _, v := range append([]int{st.Target}, st.Queue...) {
		if !layer[v] {
			return fmt.Errorf("insertion of %d outside the current layer", v)
		}
		if p := st.Pairing[v]; p != Unpaired && !slices.Contains(st.Sorted, p) {
			return fmt.Errorf("insertion of %d before its partner %d", v, p)
		}
	}

	cur := st.Cursor
	if cur.Lower < 0 || cur.Lower > cur.Upper || cur.Middle < cur.Lower || cur.Middle > cur.Upper || cur.Upper >= len(st.Sorted) {
		return fmt.Errorf("cursor %+v out of range for %d sorted elements", cur, len(st.Sorted))
	}
	if st.Current.A != st.Target || st.Current.B != st.Sorted[cur.Middle] {
		return fmt.Errorf("pending duel %v does not match the cursor", *st.Current)
	}
	return nil
}

package tournament

import (
	"fmt"
	"slices"
	"time"

	"ranker/internal/sorter"
	"ranker/internal/types"
)

// StateVersion is bumped whenever State changes incompatibly.
const StateVersion = 1

// State is the persisted form of a Tournament.
type State struct {
	Version   int          `json:"version"`
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Outputs   []string     `json:"outputs,omitempty"`
	Round     int          `json:"round"`
	Size      int          `json:"size"`
	Knowledge int          `json:"knowledge"`
	Names     []string     `json:"names"`
	Matrix    *Matrix      `json:"matrix"`
	Sorter    sorter.State `json:"sorter"`
}

// Complete reports whether the saved tournament had finished.
func (s *State) Complete() bool {
	return s.Sorter.Phase == sorter.PhaseCompleted
}

// Progress mirrors Tournament.Progress for a saved state.
func (s *State) Progress() float64 {
	total := s.Size * (s.Size - 1) / 2
	if total == 0 {
		return 1
	}
	return float64(s.Knowledge) / float64(total)
}

// Snapshot captures the tournament for persistence. It is only allowed
// between duels: a duel handed out by NextQuery must be answered first.
func (t *Tournament) Snapshot() (*State, error) {
	if t.active != nil {
		return nil, fmt.Errorf("cannot snapshot while duel %v is active: %w", t.roster.Duel(*t.active), types.ErrIllegalState)
	}
	return &State{
		Version:   StateVersion,
		ID:        t.id,
		CreatedAt: t.created,
		UpdatedAt: t.updated,
		Outputs:   slices.Clone(t.outputs),
		Round:     t.round,
		Size:      t.roster.Len(),
		Knowledge: t.knowledge,
		Names:     t.roster.Names(),
		Matrix:    t.matrix.Clone(),
		Sorter:    t.sorter.Snapshot(),
	}, nil
}

// FromState resumes a tournament saved with Snapshot. A state that could not
// have been saved by Snapshot is rejected with an error matching both
// types.ErrInvalidArgument and types.ErrIO.
func FromState(st *State, opts ...Option) (*Tournament, error) {
	t, err := fromState(st, opts...)
	if err != nil {
		return nil, fmt.Errorf("corrupt saved tournament: %w: %w", err, types.ErrIO)
	}
	return t, nil
}

func fromState(st *State, opts ...Option) (*Tournament, error) {
	if st == nil {
		return nil, fmt.Errorf("nil tournament state: %w", types.ErrInvalidArgument)
	}
	if st.Version != StateVersion {
		return nil, fmt.Errorf("state version %d, want %d: %w", st.Version, StateVersion, types.ErrInvalidArgument)
	}

	roster, err := NewRoster(st.Names)
	if err != nil {
		return nil, err
	}
	n := roster.Len()
	switch {
	case st.Size != n:
		return nil, fmt.Errorf("state size %d but %d names: %w", st.Size, n, types.ErrInvalidArgument)
	case st.Matrix == nil || st.Matrix.Size() != n:
		return nil, fmt.Errorf("state matrix does not match %d names: %w", n, types.ErrInvalidArgument)
	case st.Matrix.Count() != st.Knowledge:
		return nil, fmt.Errorf("state knowledge %d but matrix holds %d: %w", st.Knowledge, st.Matrix.Count(), types.ErrInvalidArgument)
	case st.Round < 1:
		return nil, fmt.Errorf("state round %d: %w", st.Round, types.ErrInvalidArgument)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s, err := sorter.Restore(st.Sorter, n, o.sorterOpts...)
	if err != nil {
		return nil, err
	}
	if err := checkOrder(st, st.Matrix); err != nil {
		return nil, err
	}

	t := &Tournament{
		id:        st.ID,
		created:   st.CreatedAt,
		updated:   st.UpdatedAt,
		outputs:   slices.Clone(st.Outputs),
		now:       o.now,
		roster:    roster,
		matrix:    st.Matrix.Clone(),
		sorter:    s,
		round:     st.Round,
		knowledge: st.Knowledge,
	}
	if len(o.outputs) > 0 {
		t.outputs = slices.Clone(o.outputs)
	}
	if err := t.settle(); err != nil {
		return nil, err
	}
	return t, nil
}

// checkOrder rejects a ranked sequence that puts a candidate above one the
// matrix says it loses to. While splitting the sequence only collects winners
// and claims no order.
func checkOrder(st *State, m *Matrix) error {
	var order []int
	switch st.Sorter.Phase {
	case sorter.PhaseMerging:
		order = st.Sorter.Sorted
	case sorter.PhaseCompleted:
		order = st.Sorter.Final
	}
	for i, better := range order {
		for _, worse := range order[i+1:] {
			if m.Get(worse, better) == Preferred {
				return fmt.Errorf("state ranks %q above %q against the recorded preference: %w",
					st.Names[better], st.Names[worse], types.ErrInvalidArgument)
			}
		}
	}
	return nil
}

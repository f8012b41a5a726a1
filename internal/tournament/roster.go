package tournament

import (
	"fmt"
	"slices"
	"strings"

	"ranker/internal/types"
)

// Roster is the fixed, bidirectional mapping between candidate names and the
// indices the sorter works with. It never changes after construction.
type Roster struct {
	names []string
	index map[string]int
}

// NewRoster validates names and assigns each its position as index.
func NewRoster(names []string) (*Roster, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("no candidates: %w", types.ErrInvalidArgument)
	}

	r := &Roster{
		names: slices.Clone(names),
		index: make(map[string]int, len(names)),
	}
	for i, name := range names {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("candidate %d has an empty name: %w", i+1, types.ErrInvalidArgument)
		}
		if prev, dup := r.index[name]; dup {
			return nil, fmt.Errorf("candidate %q listed twice (entries %d and %d): %w", name, prev+1, i+1, types.ErrInvalidArgument)
		}
		r.index[name] = i
	}
	return r, nil
}

// Len returns the number of candidates.
func (r *Roster) Len() int { return len(r.names) }

// Name returns the candidate at index i.
func (r *Roster) Name(i int) string { return r.names[i] }

// Index returns the index of name.
func (r *Roster) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Names returns every candidate in index order.
func (r *Roster) Names() []string { return slices.Clone(r.names) }

// Duel translates an index duel into names, keeping the sides.
func (r *Roster) Duel(d types.Duel[int]) types.Duel[string] {
	return types.NewDuel(r.names[d.A], r.names[d.B])
}

// Resolve maps indices to names in order.
func (r *Roster) Resolve(indices []int) []string {
	out := make([]string, len(indices))
	for i, idx := range indices {
		out[i] = r.names[idx]
	}
	return out
}

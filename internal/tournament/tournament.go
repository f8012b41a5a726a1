// Package tournament ranks named candidates with as few pairwise questions as
// possible.
//
// A Tournament wraps the merge-insertion sorter with a transitively closed
// preference matrix. Every answer is propagated to all pairs it implies, and
// any comparison the sorter asks for that the matrix already settles is
// answered internally without reaching the user.
package tournament

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"ranker/internal/logging"
	"ranker/internal/sorter"
	"ranker/internal/types"
)

// Tournament is one ranking session. It is not safe for concurrent use; the
// caller drives it in lockstep: NextQuery, then DeclareWinner.
type Tournament struct {
	id      string
	created time.Time
	updated time.Time
	outputs []string
	now     func() time.Time

	roster *Roster
	matrix *Matrix
	sorter *sorter.Sorter

	active    *types.Duel[int]
	round     int
	knowledge int
	inferred  []types.Duel[string]
}

// New starts a tournament over names. Names must be non-empty and unique.
func New(names []string, opts ...Option) (*Tournament, error) {
	roster, err := NewRoster(names)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s, err := sorter.New(roster.Len(), o.sorterOpts...)
	if err != nil {
		return nil, err
	}

	now := o.now()
	t := &Tournament{
		id:      uuid.NewString(),
		created: now,
		updated: now,
		outputs: slices.Clone(o.outputs),
		now:     o.now,
		roster:  roster,
		matrix:  NewMatrix(roster.Len()),
		sorter:  s,
		round:   1,
	}
	if err := t.settle(); err != nil {
		return nil, err
	}

	logging.Tournament("tournament %s started with %d candidates", t.id, roster.Len())
	return t, nil
}

// NextQuery returns the next duel the user has to answer and marks it active.
func (t *Tournament) NextQuery() (types.Duel[string], error) {
	if t.active != nil {
		return types.Duel[string]{}, fmt.Errorf("duel %v is still awaiting an answer: %w", t.roster.Duel(*t.active), types.ErrIllegalState)
	}
	if err := t.settle(); err != nil {
		return types.Duel[string]{}, err
	}
	if t.sorter.IsComplete() {
		return types.Duel[string]{}, fmt.Errorf("tournament is complete: %w", types.ErrIllegalState)
	}

	d, err := t.sorter.CurrentComparison()
	if err != nil {
		return types.Duel[string]{}, err
	}
	t.active = &d
	return t.roster.Duel(d), nil
}

// DeclareWinner answers the active duel. w is relative to the sides returned
// by NextQuery.
func (t *Tournament) DeclareWinner(w types.Winner) error {
	if t.active == nil {
		return fmt.Errorf("no active duel: %w", types.ErrIllegalState)
	}
	if !w.Valid() {
		return fmt.Errorf("unknown winner %v: %w", w, types.ErrInvalidArgument)
	}

	duel := *t.active
	winner, loser := duel.Resolve(w)
	t.inferred = t.propagate(winner, loser)

	if err := t.sorter.DeclareWinner(w); err != nil {
		return err
	}
	t.active = nil
	t.round++
	t.updated = t.now()

	logging.TournamentDebug("round %d: %s beats %s, %d inferred, knowledge %d/%d",
		t.round-1, t.roster.Name(winner), t.roster.Name(loser), len(t.inferred), t.knowledge, t.TotalKnowledge())
	for _, d := range t.inferred {
		logging.TournamentDebug("inferring %s beats %s", d.A, d.B)
	}

	if err := t.settle(); err != nil {
		return err
	}
	if t.sorter.IsComplete() {
		logging.Tournament("tournament %s complete after %d rounds", t.id, t.round-1)
	}
	return nil
}

// propagate records winner > loser and every preference it implies. Everything
// already known to beat the winner, and the winner itself, now beats the loser
// and everything the loser is known to beat. It returns the newly implied
// pairs other than the declared one, as (winner, loser) duels.
func (t *Tournament) propagate(winner, loser int) []types.Duel[string] {
	n := t.matrix.Size()
	above := []int{winner}
	below := []int{loser}
	for k := 0; k < n; k++ {
		if t.matrix.Get(k, winner) == Preferred {
			above = append(above, k)
		}
		if t.matrix.Get(loser, k) == Preferred {
			below = append(below, k)
		}
	}

	var inferred []types.Duel[string]
	for _, a := range above {
		for _, b := range below {
			if !t.matrix.Set(a, b) {
				continue
			}
			t.knowledge++
			if a != winner || b != loser {
				inferred = append(inferred, types.NewDuel(t.roster.Name(a), t.roster.Name(b)))
			}
		}
	}
	return inferred
}

// settle answers every pending sorter comparison the matrix already decides.
func (t *Tournament) settle() error {
	for !t.sorter.IsComplete() {
		d, err := t.sorter.CurrentComparison()
		if err != nil {
			return err
		}

		var w types.Winner
		switch t.matrix.Get(d.A, d.B) {
		case Preferred:
			w = types.WinnerA
		case NotPreferred:
			w = types.WinnerB
		default:
			return nil
		}
		logging.TournamentDebug("skipping implied duel %v", t.roster.Duel(d))
		if err := t.sorter.DeclareWinner(w); err != nil {
			return err
		}
	}
	return nil
}

// Release withdraws the active duel without answering it, so the tournament
// can be snapshotted. The next NextQuery returns the same duel again.
// It reports whether a duel was active.
func (t *Tournament) Release() bool {
	if t.active == nil {
		return false
	}
	logging.TournamentDebug("released unanswered duel %v", t.roster.Duel(*t.active))
	t.active = nil
	return true
}

// ActiveDuel returns the duel handed out by NextQuery and not yet answered.
func (t *Tournament) ActiveDuel() (types.Duel[string], bool) {
	if t.active == nil {
		return types.Duel[string]{}, false
	}
	return t.roster.Duel(*t.active), true
}

// Round is the number of answered duels plus one.
func (t *Tournament) Round() int { return t.round }

// Knowledge is the number of candidate pairs whose order is known.
func (t *Tournament) Knowledge() int { return t.knowledge }

// TotalKnowledge is N(N-1)/2, the knowledge of a finished ranking.
func (t *Tournament) TotalKnowledge() int {
	n := t.roster.Len()
	return n * (n - 1) / 2
}

// Progress is Knowledge over TotalKnowledge, in [0, 1].
func (t *Tournament) Progress() float64 {
	total := t.TotalKnowledge()
	if total == 0 {
		return 1
	}
	return float64(t.knowledge) / float64(total)
}

// IsComplete reports whether the ranking is final.
func (t *Tournament) IsComplete() bool { return t.sorter.IsComplete() }

// Ranking returns the candidates best first.
func (t *Tournament) Ranking() ([]string, error) {
	order, err := t.sorter.FinalSorting()
	if err != nil {
		return nil, fmt.Errorf("ranking not available: %w", err)
	}
	return t.roster.Resolve(order), nil
}

// Size returns the number of candidates.
func (t *Tournament) Size() int { return t.roster.Len() }

// Candidates returns the names in their original order.
func (t *Tournament) Candidates() []string { return t.roster.Names() }

// ID identifies the tournament in a store.
func (t *Tournament) ID() string { return t.id }

// CreatedAt returns when the tournament started.
func (t *Tournament) CreatedAt() time.Time { return t.created }

// UpdatedAt returns when the last duel was answered.
func (t *Tournament) UpdatedAt() time.Time { return t.updated }

// OutputPaths returns the export targets recorded at creation.
func (t *Tournament) OutputPaths() []string { return slices.Clone(t.outputs) }

// Inferred returns the preferences implied, beyond the answer itself, by the
// most recent DeclareWinner. Each duel reads A beats B.
func (t *Tournament) Inferred() []types.Duel[string] { return slices.Clone(t.inferred) }

// Preference returns what is known about candidate a versus candidate b.
func (t *Tournament) Preference(a, b string) (Preference, error) {
	i, ok := t.roster.Index(a)
	if !ok {
		return Unknown, fmt.Errorf("unknown candidate %q: %w", a, types.ErrInvalidArgument)
	}
	j, ok := t.roster.Index(b)
	if !ok {
		return Unknown, fmt.Errorf("unknown candidate %q: %w", b, types.ErrInvalidArgument)
	}
	return t.matrix.Get(i, j), nil
}

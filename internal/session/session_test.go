package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"ranker/internal/store"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- scriptedView ---

// scriptedView answers from a hidden order, after first replaying any
// queued actions.
type scriptedView struct {
	rank    map[string]int
	queued  []types.Action
	prompts []Prompt
	helps   int
	err     error
}

func newView(order ...string) *scriptedView {
	v := &scriptedView{rank: make(map[string]int)}
	for i, name := range order {
		v.rank[name] = i
	}
	return v
}

func (v *scriptedView) ChooseOption(ctx context.Context, p Prompt) (types.Action, error) {
	v.prompts = append(v.prompts, p)
	if v.err != nil {
		return 0, v.err
	}
	if len(v.queued) > 0 {
		a := v.queued[0]
		v.queued = v.queued[1:]
		return a, nil
	}
	if v.rank[p.A] < v.rank[p.B] {
		return types.ChoseA, nil
	}
	return types.ChoseB, nil
}

func (v *scriptedView) ShowHelp(ctx context.Context) error {
	v.helps++
	return nil
}

// --- failingStore ---

type failingStore struct {
	store.Store
	fail bool
}

func (f *failingStore) Save(ctx context.Context, st *tournament.State) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Store.Save(ctx, st)
}

type fixedSource struct{}

func (fixedSource) Skip() int { return 1 }
func (fixedSource) Shuffle(int, func(i, j int)) {}

func newFileStore(t *testing.T) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return s
}

var stamp = time.Date(2021, 8, 15, 9, 5, 0, 0, time.UTC)

// =============================================================================
// TESTS
// =============================================================================

func TestRun_CompletesAndExports(t *testing.T) {
	out := filepath.Join(t.TempDir(), "ranking.txt")
	tour, err := tournament.New([]string{"X", "Y", "Z"},
		tournament.WithSource(fixedSource{}), tournament.WithOutputs(out))
	require.NoError(t, err)

	s := newFileStore(t)
	view := newView("X", "Y", "Z")
	r := &Runner{Tournament: tour, View: view, Store: s, Now: func() time.Time { return stamp }}

	outcome, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Len(t, view.prompts, 2)
	assert.Equal(t, 1, view.prompts[0].Round)
	assert.Equal(t, 2, view.prompts[1].Round)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Top 3 Rankings (Completed on Aug 15, 2021 @ 09:05):\n1. X\n2. Y\n3. Z\n", string(data))

	saved, err := s.Load(context.Background(), tour.ID())
	require.NoError(t, err)
	assert.True(t, saved.Complete())
}

func TestRun_HelpAsksSameDuelAgain(t *testing.T) {
	tour, err := tournament.New([]string{"a", "b"}, tournament.WithSource(fixedSource{}))
	require.NoError(t, err)

	view := newView("b", "a")
	view.queued = []types.Action{types.RequestHelp, types.RequestHelp}
	r := &Runner{Tournament: tour, View: view}

	outcome, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Equal(t, 2, view.helps)
	require.Len(t, view.prompts, 3)
	assert.Equal(t, view.prompts[0], view.prompts[2])

	ranking, err := tour.Ranking()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, ranking)
}

func TestRun_SaveAndResume(t *testing.T) {
	names := []string{"v", "w", "x", "y", "z"}
	order := []string{"y", "w", "z", "v", "x"}
	s := newFileStore(t)
	ctx := context.Background()

	tour, err := tournament.New(names, tournament.WithSeed(4, 1))
	require.NoError(t, err)

	r := &Runner{Tournament: tour, View: &stopView{inner: newView(order...), after: 1}, Store: s}
	outcome, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuspended, outcome)
	_, active := tour.ActiveDuel()
	assert.False(t, active)
	assert.Equal(t, 2, tour.Round())

	saved, err := s.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, tour.ID(), saved.ID)
	assert.Equal(t, 2, saved.Round)

	resumed, err := tournament.FromState(saved)
	require.NoError(t, err)
	r2 := &Runner{Tournament: resumed, View: newView(order...), Store: s}
	outcome, err = r2.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)

	ranking, err := resumed.Ranking()
	require.NoError(t, err)
	assert.Equal(t, order, ranking)
}

// stopView answers `after` duels through inner, then saves and exits.
type stopView struct {
	inner *scriptedView
	after int
	seen  int
}

func (v *stopView) ChooseOption(ctx context.Context, p Prompt) (types.Action, error) {
	if v.seen >= v.after {
		return types.SaveAndExit, nil
	}
	v.seen++
	return v.inner.ChooseOption(ctx, p)
}

func (v *stopView) ShowHelp(ctx context.Context) error { return v.inner.ShowHelp(ctx) }

func TestRun_SaveFailureIsRecoverable(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{Store: newFileStore(t), fail: true}

	tour, err := tournament.New([]string{"a", "b", "c", "d"}, tournament.WithSeed(2, 1))
	require.NoError(t, err)

	r := &Runner{Tournament: tour, View: &stopView{inner: newView("a", "b", "c", "d"), after: 1}, Store: fs}
	_, err = r.Run(ctx)
	require.Error(t, err)
	assert.Equal(t, 2, tour.Round())
	_, active := tour.ActiveDuel()
	assert.False(t, active)

	fs.fail = false
	r.View = &stopView{inner: newView("a", "b", "c", "d"), after: 0}
	outcome, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, OutcomeSuspended, outcome)

	saved, err := fs.Load(ctx, tour.ID())
	require.NoError(t, err)
	assert.Equal(t, 2, saved.Round)
}

func TestRun_ViewErrorReleasesDuel(t *testing.T) {
	tour, err := tournament.New([]string{"a", "b", "c"}, tournament.WithSeed(1, 1))
	require.NoError(t, err)

	view := newView("a", "b", "c")
	view.err = errors.New("terminal closed")
	_, err = (&Runner{Tournament: tour, View: view}).Run(context.Background())
	require.ErrorIs(t, err, view.err)

	_, active := tour.ActiveDuel()
	assert.False(t, active)
	_, err = tour.Snapshot()
	assert.NoError(t, err)
}

func TestRun_CanceledContext(t *testing.T) {
	tour, err := tournament.New([]string{"a", "b", "c"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = (&Runner{Tournament: tour, View: newView()}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tour.Round())
}

func TestRun_SingleCandidateCompletesWithoutQuestions(t *testing.T) {
	tour, err := tournament.New([]string{"solo"})
	require.NoError(t, err)

	view := newView()
	outcome, err := (&Runner{Tournament: tour, View: view}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, OutcomeCompleted, outcome)
	assert.Empty(t, view.prompts)
}

func TestRun_RequiresCollaborators(t *testing.T) {
	_, err := (&Runner{}).Run(context.Background())
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "completed", OutcomeCompleted.String())
	assert.Equal(t, "suspended", OutcomeSuspended.String())
	assert.Equal(t, "Outcome(9)", Outcome(9).String())
}

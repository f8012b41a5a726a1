package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ranker/internal/config"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

// =============================================================================
// HELPERS
// =============================================================================

type backend struct {
	name string
	open func(t *testing.T) Store
}

func backends() []backend {
	return []backend{
		{"file", func(t *testing.T) Store {
			s, err := NewFileStore(filepath.Join(t.TempDir(), "tournaments"))
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "ranker.db"), time.Second)
			require.NoError(t, err)
			t.Cleanup(func() { s.Close() })
			return s
		}},
	}
}

// newState plays rounds duels of a fresh tournament and snapshots it.
func newState(t *testing.T, names []string, rounds int, at time.Time) *tournament.State {
	t.Helper()
	tour, err := tournament.New(names,
		tournament.WithSeed(5, 1),
		tournament.WithClock(func() time.Time { return at }),
		tournament.WithOutputs("ranking.txt"),
	)
	require.NoError(t, err)
	for i := 0; i < rounds && !tour.IsComplete(); i++ {
		_, err := tour.NextQuery()
		require.NoError(t, err)
		require.NoError(t, tour.DeclareWinner(types.WinnerA))
	}
	st, err := tour.Snapshot()
	require.NoError(t, err)
	return st
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

var (
	t0     = time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	sample = []string{"alpha", "beta", "gamma", "delta", "epsilon"}
)

// =============================================================================
// CONTRACT TESTS (both backends)
// =============================================================================

func TestStore_SaveLoad(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			st := newState(t, sample, 3, t0)

			require.NoError(t, s.Save(ctx, st))
			loaded, err := s.Load(ctx, st.ID)
			require.NoError(t, err)
			assert.JSONEq(t, mustJSON(t, st), mustJSON(t, loaded))

			resumed, err := tournament.FromState(loaded)
			require.NoError(t, err)
			assert.Equal(t, 4, resumed.Round())
		})
	}
}

func TestStore_SaveReplaces(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			st := newState(t, sample, 1, t0)
			require.NoError(t, s.Save(ctx, st))

			st.Round = 2
			st.UpdatedAt = t0.Add(time.Minute)
			require.NoError(t, s.Save(ctx, st))

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 1)
			assert.Equal(t, 2, list[0].Round)
		})
	}
}

func TestStore_LatestAndList(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			older := newState(t, sample, 1, t0)
			newer := newState(t, sample[:3], 100, t0.Add(time.Hour))
			require.NoError(t, s.Save(ctx, newer))
			require.NoError(t, s.Save(ctx, older))

			latest, err := s.Latest(ctx)
			require.NoError(t, err)
			assert.Equal(t, newer.ID, latest.ID)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)

			assert.Equal(t, newer.ID, list[0].ID)
			assert.True(t, list[0].Complete)
			assert.Equal(t, 3, list[0].Candidates)
			assert.Equal(t, 1.0, list[0].Progress)
			assert.Equal(t, []string{"ranking.txt"}, list[0].Outputs)
			assert.True(t, list[0].UpdatedAt.Equal(t0.Add(time.Hour)))

			assert.Equal(t, older.ID, list[1].ID)
			assert.False(t, list[1].Complete)
			assert.Equal(t, 2, list[1].Round)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			id := "8a4c5b1e-3f2d-4c6b-9a7e-1d2c3b4a5f60"

			_, err := s.Load(ctx, id)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = s.Latest(ctx)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, id), ErrNotFound)

			list, err := s.List(ctx)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()
			st := newState(t, sample, 0, t0)
			require.NoError(t, s.Save(ctx, st))

			require.NoError(t, s.Delete(ctx, st.ID))
			_, err := s.Load(ctx, st.ID)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RejectsBadInput(t *testing.T) {
	for _, b := range backends() {
		t.Run(b.name, func(t *testing.T) {
			s := b.open(t)
			ctx := context.Background()

			assert.ErrorIs(t, s.Save(ctx, nil), types.ErrInvalidArgument)
			assert.ErrorIs(t, s.Save(ctx, &tournament.State{ID: "../escape"}), types.ErrInvalidArgument)
			_, err := s.Load(ctx, "../../etc/passwd")
			assert.ErrorIs(t, err, types.ErrInvalidArgument)
			assert.ErrorIs(t, s.Delete(ctx, ""), types.ErrInvalidArgument)
		})
	}
}

// =============================================================================
// FILE STORE
// =============================================================================

func TestFileStore_CorruptSave(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	good := newState(t, sample, 1, t0)
	require.NoError(t, s.Save(ctx, good))

	badID := "0b9d2f7c-1111-4222-8333-944455556666"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), badID+".json"), []byte("{not json"), 0644))

	_, err = s.Load(ctx, badID)
	assert.ErrorIs(t, err, types.ErrIO)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, good.ID, list[0].ID)
}

func TestFileStore_LeavesNoTempFiles(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, s.Save(context.Background(), newState(t, sample, 2, t0)))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ".json", filepath.Ext(entries[0].Name()))
}

func TestFileStore_CanceledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, s.Save(ctx, newState(t, sample, 0, t0)), context.Canceled)
}

// =============================================================================
// SQLITE STORE
// =============================================================================

func TestSQLiteStore_MigratesOldSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE tournaments (
		id TEXT PRIMARY KEY,
		candidates INTEGER NOT NULL,
		round INTEGER NOT NULL,
		progress REAL NOT NULL,
		complete INTEGER NOT NULL DEFAULT 0,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`)
	require.NoError(t, err)
	require.False(t, columnExists(db, "tournaments", "outputs_json"))
	require.NoError(t, db.Close())

	s, err := NewSQLiteStore(path, time.Second)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, columnExists(s.db, "tournaments", "outputs_json"))
	assert.Equal(t, path, s.Path())
	require.NoError(t, s.Save(context.Background(), newState(t, sample, 1, t0)))
}

// =============================================================================
// OPEN
// =============================================================================

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(config.StoreConfig{Backend: config.BackendFile, Dir: filepath.Join(dir, "files")})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open(config.StoreConfig{Backend: config.BackendSQLite, Database: filepath.Join(dir, "r.db"), BusyTimeout: "1s"})
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(config.StoreConfig{Backend: "redis"})
	assert.ErrorIs(t, err, types.ErrInvalidArgument)
}

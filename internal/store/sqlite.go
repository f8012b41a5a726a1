package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ranker/internal/logging"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

// SQLiteStore keeps every tournament as one row of a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore creates or opens the database at dbPath.
func NewSQLiteStore(dbPath string, busyTimeout time.Duration) (*SQLiteStore, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("sqlite store needs a database path: %w", types.ErrInvalidArgument)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %v: %w", err, types.ErrIO)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", dbPath, busyTimeout.Milliseconds())
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v: %w", err, types.ErrIO)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %v: %w", err, types.ErrIO)
	}
	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %v: %w", err, types.ErrIO)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// initSchema creates the database schema.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tournaments (
		id TEXT PRIMARY KEY,
		candidates INTEGER NOT NULL,
		round INTEGER NOT NULL,
		progress REAL NOT NULL,
		complete INTEGER NOT NULL DEFAULT 0,
		state_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tournaments_updated ON tournaments(updated_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TOURNAMENT OPERATIONS
// =============================================================================

// Save stores or replaces the tournament snapshot.
func (s *SQLiteStore) Save(ctx context.Context, st *tournament.State) error {
	if err := checkState(st); err != nil {
		return err
	}

	timer := logging.StartTimer(logging.CategoryStore, "SQLiteStore.Save")
	defer timer.Stop()

	stateJSON, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("failed to encode tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}
	outputsJSON, err := json.Marshal(st.Outputs)
	if err != nil {
		return fmt.Errorf("failed to encode outputs of %s: %v: %w", st.ID, err, types.ErrIO)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, candidates, round, progress, complete,
			state_json, outputs_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			candidates = excluded.candidates,
			round = excluded.round,
			progress = excluded.progress,
			complete = excluded.complete,
			state_json = excluded.state_json,
			outputs_json = excluded.outputs_json,
			updated_at = excluded.updated_at
	`, st.ID, st.Size, st.Round, st.Progress(), boolToInt(st.Complete()),
		string(stateJSON), string(outputsJSON), st.CreatedAt.UnixNano(), st.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save tournament %s: %v: %w", st.ID, err, types.ErrIO)
	}

	logging.Store("saved tournament %s (round %d) to %s", st.ID, st.Round, s.dbPath)
	return nil
}

// Load retrieves the snapshot with the given ID.
func (s *SQLiteStore) Load(ctx context.Context, id string) (*tournament.State, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM tournaments WHERE id = ?`, id)
	return scanState(row, id)
}

// Latest retrieves the most recently updated snapshot.
func (s *SQLiteStore) Latest(ctx context.Context) (*tournament.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `SELECT state_json FROM tournaments ORDER BY updated_at DESC LIMIT 1`)
	return scanState(row, "latest")
}

func scanState(row *sql.Row, what string) (*tournament.State, error) {
	var stateJSON string
	err := row.Scan(&stateJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %v: %w", what, err, types.ErrIO)
	}

	var st tournament.State
	if err := json.Unmarshal([]byte(stateJSON), &st); err != nil {
		return nil, fmt.Errorf("corrupt save %s: %v: %w", what, err, types.ErrIO)
	}
	return &st, nil
}

// List summarizes every snapshot from the summary columns, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, candidates, round, progress, complete, outputs_json, created_at, updated_at
		FROM tournaments ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %v: %w", err, types.ErrIO)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var complete int
		var outputsJSON string
		var created, updated int64
		if err := rows.Scan(&sum.ID, &sum.Candidates, &sum.Round, &sum.Progress, &complete, &outputsJSON, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan tournament: %v: %w", err, types.ErrIO)
		}
		sum.Complete = complete != 0
		if err := json.Unmarshal([]byte(outputsJSON), &sum.Outputs); err != nil {
			logging.StoreError("tournament %s has unreadable outputs: %v", sum.ID, err)
		}
		sum.CreatedAt = time.Unix(0, created)
		sum.UpdatedAt = time.Unix(0, updated)
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %v: %w", err, types.ErrIO)
	}
	return out, nil
}

// Delete removes the snapshot with the given ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tournaments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %v: %w", id, err, types.ErrIO)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	logging.Store("deleted tournament %s", id)
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Package store persists tournament snapshots so a ranking can be suspended
// and resumed later.
//
// Two backends are provided: FileStore keeps one pretty-printed JSON file per
// tournament, SQLiteStore keeps one row per tournament in a SQLite database.
// Both satisfy Store and are safe for concurrent use.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"ranker/internal/config"
	"ranker/internal/tournament"
	"ranker/internal/types"
)

// ErrNotFound is returned when no saved tournament matches.
var ErrNotFound = errors.New("tournament not found")

// Store saves and loads tournament snapshots.
type Store interface {
	// Save writes st, replacing any earlier snapshot with the same ID.
	Save(ctx context.Context, st *tournament.State) error
	// Load returns the snapshot with the given ID.
	Load(ctx context.Context, id string) (*tournament.State, error)
	// Latest returns the most recently updated snapshot.
	Latest(ctx context.Context) (*tournament.State, error)
	// List summarizes every snapshot, most recently updated first.
	List(ctx context.Context) ([]Summary, error)
	// Delete removes a snapshot.
	Delete(ctx context.Context, id string) error
	// Close releases the backend.
	Close() error
}

// Summary describes a saved tournament without decoding its full state.
type Summary struct {
	ID         string    `json:"id"`
	Candidates int       `json:"candidates"`
	Round      int       `json:"round"`
	Progress   float64   `json:"progress"`
	Complete   bool      `json:"complete"`
	Outputs    []string  `json:"outputs,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Summarize builds the Summary of st.
func Summarize(st *tournament.State) Summary {
	return Summary{
		ID:         st.ID,
		Candidates: st.Size,
		Round:      st.Round,
		Progress:   st.Progress(),
		Complete:   st.Complete(),
		Outputs:    slices.Clone(st.Outputs),
		CreatedAt:  st.CreatedAt,
		UpdatedAt:  st.UpdatedAt,
	}
}

// Open returns the backend selected by cfg. Paths in cfg are used as given.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFileStore(cfg.Dir)
	case config.BackendSQLite:
		return NewSQLiteStore(cfg.Database, cfg.GetBusyTimeout())
	default:
		return nil, fmt.Errorf("unknown store backend %q: %w", cfg.Backend, types.ErrInvalidArgument)
	}
}

// checkID rejects IDs that are not UUIDs, which also keeps them safe to use
// as file names.
func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid tournament id %q: %w", id, types.ErrInvalidArgument)
	}
	return nil
}

func checkState(st *tournament.State) error {
	if st == nil {
		return fmt.Errorf("nil tournament state: %w", types.ErrInvalidArgument)
	}
	return checkID(st.ID)
}

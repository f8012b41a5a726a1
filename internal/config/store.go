package config

import "time"

// Store backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// StoreConfig configures where tournaments are saved.
type StoreConfig struct {
	Backend string `yaml:"backend"` // file, sqlite

	// Dir holds one JSON file per tournament (file backend).
	Dir string `yaml:"dir"`

	// Database is the SQLite database path (sqlite backend).
	Database string `yaml:"database"`

	// BusyTimeout bounds how long SQLite waits on a locked database.
	BusyTimeout string `yaml:"busy_timeout"`
}

// DefaultStoreConfig returns the file backend under the state directory.
func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Backend:     BackendFile,
		Dir:         "tournaments",
		Database:    "ranker.db",
		BusyTimeout: "5s",
	}
}

// GetBusyTimeout returns the busy timeout as a duration.
func (c StoreConfig) GetBusyTimeout() time.Duration {
	d, err := time.ParseDuration(c.BusyTimeout)
	if err != nil || d < 0 {
		return 5 * time.Second
	}
	return d
}

// Package store implements the preference store: a persistent string→string
// map with upsert semantics. Two backends are available, SQLite (default) and
// LevelDB; both keep an updated_at audit timestamp per key that is never
// returned to callers.
package store

import (
	"fmt"
	"time"

	"github.com/haricheung/bizflow/internal/config"
	"github.com/haricheung/bizflow/internal/types"
)

// Store is the preference store contract.
type Store interface {
	// Get returns the value for key and whether it exists.
	Get(key string) (string, bool, error)
	// Set inserts or overwrites key, refreshing its updated_at timestamp.
	Set(key, value string) error
	// List returns every preference in the backend's storage order.
	List() ([]types.Preference, error)
	Close() error
}

// Open opens the backend named in cfg.
func Open(cfg config.StoreConfig) (Store, error) {
	switch cfg.Backend {
	case "", "sqlite":
		return OpenSQLite(cfg.Path)
	case "leveldb":
		return OpenLevelDB(cfg.Path)
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

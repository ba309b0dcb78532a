package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/haricheung/bizflow/internal/types"
)

// LevelDB key prefix scheme. "|" is the separator so keys may contain colons.
//
//	p|<key>   → prefRecord JSON
const prefixPref = "p|"

type prefRecord struct {
	Value     string `json:"value"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// LevelDB is the LevelDB-backed preference store. List order is key order.
type LevelDB struct {
	db *leveldb.DB
}

// OpenLevelDB opens (or creates) a LevelDB database directory at path.
func OpenLevelDB(path string) (*LevelDB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("store: create leveldb dir: %w", err)
	}
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		// LevelDB is single-writer; a second process holding the lock lands here.
		return nil, fmt.Errorf("store: open leveldb at %s: %w", path, err)
	}
	slog.Info("[MEMORY] leveldb preference store ready", "path", path)
	return &LevelDB{db: db}, nil
}

// Get returns the value stored under key.
func (l *LevelDB) Get(key string) (string, bool, error) {
	rec, err := l.fetch(key)
	if errors.Is(err, leveldb.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("store: get %q: %w", key, err)
	}
	return rec.Value, true, nil
}

// Set upserts key, preserving created_at on overwrite.
func (l *LevelDB) Set(key, value string) error {
	now := nowUTC()
	rec := prefRecord{Value: value, CreatedAt: now, UpdatedAt: now}
	if prev, err := l.fetch(key); err == nil {
		rec.CreatedAt = prev.CreatedAt
	} else if !errors.Is(err, leveldb.ErrNotFound) {
		return fmt.Errorf("store: set %q: %w", key, err)
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("store: marshal %q: %w", key, err)
	}
	if err := l.db.Put([]byte(prefixPref+key), data, nil); err != nil {
		return fmt.Errorf("store: set %q: %w", key, err)
	}
	slog.Info("[MEMORY] preference saved", "key", key)
	return nil
}

// List returns all preferences sorted by key.
func (l *LevelDB) List() ([]types.Preference, error) {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(prefixPref)), nil)
	defer iter.Release()

	var out []types.Preference
	for iter.Next() {
		var rec prefRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			slog.Warn("[MEMORY] skipping corrupt preference", "key", string(iter.Key()), "error", err)
			continue
		}
		out = append(out, types.Preference{
			Key:   strings.TrimPrefix(string(iter.Key()), prefixPref),
			Value: rec.Value,
		})
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

// Close closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

func (l *LevelDB) fetch(key string) (prefRecord, error) {
	data, err := l.db.Get([]byte(prefixPref+key), nil)
	if err != nil {
		return prefRecord{}, err
	}
	var rec prefRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return prefRecord{}, err
	}
	return rec, nil
}

// Package localkv is a buntdb-backed key-value store used to persist
// named form presets between sessions.
package localkv

import (
	"fmt"
	"os"
	"path"

	"github.com/tidwall/buntdb"

	"github.com/ezquant/backlab/backlab/tools/log"
)

// LocalKV holds the db client.
type LocalKV struct {
	db     *buntdb.DB
	dbPath string
}

// New opens the store under the given directory, or in memory when
// databasePath is nil.
func New(databasePath *string) (*LocalKV, error) {
	var dbPath string

	if databasePath == nil {
		dbPath = ":memory:"
	} else {
		if err := os.MkdirAll(*databasePath, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		dbPath = path.Join(*databasePath, "kv.db")
	}

	db, err := buntdb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Preset writes are rare and tiny; skip fsync and auto-shrink.
	if err := db.SetConfig(buntdb.Config{
		SyncPolicy:         buntdb.Never,
		AutoShrinkDisabled: true,
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure database: %w", err)
	}

	return &LocalKV{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the db.
func (l *LocalKV) Close() error {
	return l.db.Close()
}

// Get gets a value from the db.
func (l *LocalKV) Get(key string) (string, error) {
	var val string

	err := l.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(key)
		if err != nil {
			return err
		}

		val = v
		return nil
	})

	return val, err
}

// Set sets a value in the db.
func (l *LocalKV) Set(key, value string) error {
	return l.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(key, value, nil)

		return err
	})
}

// Keys returns all keys matching the pattern, e.g. "preset:*".
func (l *LocalKV) Keys(pattern string) ([]string, error) {
	var keys []string

	err := l.db.View(func(tx *buntdb.Tx) error {
		return tx.AscendKeys(pattern, func(key, _ string) bool {
			keys = append(keys, key)
			return true
		})
	})

	return keys, err
}

// RemoveDB removes the db file.
func (l *LocalKV) RemoveDB() error {
	if l.db != nil {
		l.db.Close()
	}

	if l.dbPath != ":memory:" && l.dbPath != "" {
		if err := os.Remove(l.dbPath); err != nil {
			if !os.IsNotExist(err) {
				log.Warnf("remove database file: %v", err)
			}
		}
	}
	return nil
}

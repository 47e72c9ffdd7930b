// Package store is the persistent storage of the editor, keeping the command
// and directory histories in a bbolt database.
package store

import (
	"fmt"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"

	"src.shline.sh/pkg/logutil"
	. "src.shline.sh/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Names of the buckets.
const (
	bucketCmd = "cmd"
	bucketDir = "dir"
)

// Functions run in one transaction when a database is opened, keyed by a
// description.
var initDB = map[string]func(*bolt.Tx) error{}

// DBStore is the permanent storage backend for the editor.
type DBStore interface {
	Store
	Close() error
}

type dbStore struct {
	db        *bolt.DB
	closeOnce sync.Once
}

// NewStore creates a new Store from the given file. It waits at most one
// second for another process holding the database to release it.
func NewStore(dbname string) (DBStore, error) {
	db, err := bolt.Open(dbname, 0644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open history database %s: %w", dbname, err)
	}
	return newStoreFromDB(db)
}

func newStoreFromDB(db *bolt.DB) (DBStore, error) {
	st := &dbStore{db: db}
	err := db.Update(func(tx *bolt.Tx) error {
		for name, fn := range initDB {
			if err := fn(tx); err != nil {
				return fmt.Errorf("failed to %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("opened database", "path", db.Path())
	return st, nil
}

// Close closes the database. Calls after the first one are no-ops.
func (s *dbStore) Close() error {
	var err error
	s.closeOnce.Do(func() { err = s.db.Close() })
	return err
}

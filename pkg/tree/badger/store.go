// Package badger implements tree.Store using BadgerDB for persistence.
package badger

import (
	"context"
	"errors"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/canopyfs/canopy/pkg/tree"
)

// BadgerStore implements tree.Store backed by BadgerDB, a fast embedded
// key-value store.
//
// This implementation is suitable for:
//   - Production deployments requiring persistence across restarts
//   - Systems where node metadata and quota counters must survive crashes
//
// Storage Model:
// The store uses namespaced key prefixes to organize nodes, users, share
// grants, and their secondary indexes (see keys.go for the full schema).
// Values are JSON-encoded (see serialization.go).
//
// Transaction Model:
// View and Update map directly onto Badger's managed transactions, which
// provide snapshot isolation with conflict detection on commit. A
// conflicting Update is retried a bounded number of times, giving the
// optimistic-retry serialization the tree.Store contract requires for
// racing quota updates.
//
// Thread Safety:
// BadgerDB transactions are safe for concurrent use; no additional
// locking is needed here.
type BadgerStore struct {
	db *badger.DB
}

// BadgerStoreConfig contains configuration for the Badger store.
type BadgerStoreConfig struct {
	// Path is the directory for the Badger database files.
	// Ignored when InMemory is true.
	Path string `mapstructure:"path"`

	// InMemory runs Badger without touching disk. Useful for tests.
	InMemory bool `mapstructure:"in_memory"`
}

// maxCommitRetries bounds retries of Update transactions that fail with
// a commit conflict.
const maxCommitRetries = 3

// NewBadgerStore opens (or creates) a Badger-backed tree store.
func NewBadgerStore(ctx context.Context, cfg BadgerStoreConfig) (*BadgerStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithInMemory(cfg.InMemory).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, tree.WrapDependency("failed to open badger database", err)
	}

	return &BadgerStore{db: db}, nil
}

// View runs fn in a read-only Badger transaction.
func (s *BadgerStore) View(ctx context.Context, fn func(tx tree.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.View(func(txn *badger.Txn) error {
		return fn(&badgerTx{txn: txn, writable: false})
	})
	return wrapStoreErr(err)
}

// Update runs fn in a read-write Badger transaction, retrying on commit
// conflicts.
func (s *BadgerStore) Update(ctx context.Context, fn func(tx tree.Tx) error) error {
	var err error
	for attempt := 0; attempt <= maxCommitRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(func(txn *badger.Txn) error {
			return fn(&badgerTx{txn: txn, writable: true})
		})
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	return wrapStoreErr(err)
}

// Healthcheck verifies the database can serve a transaction.
func (s *BadgerStore) Healthcheck(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.db.IsClosed() {
		return &tree.TreeError{
			Code:    tree.ErrDependencyFailure,
			Message: "badger database is closed",
		}
	}
	return nil
}

// Close flushes and closes the underlying database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return tree.WrapDependency("failed to close badger database", err)
	}
	return nil
}

// wrapStoreErr passes domain errors and context errors through unchanged
// and wraps everything else as a dependency failure, so storage-engine
// errors never leak raw to callers.
func wrapStoreErr(err error) error {
	if err == nil {
		return nil
	}

	var te *tree.TreeError
	if errors.As(err, &te) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return tree.WrapDependency("badger transaction failed", err)
}

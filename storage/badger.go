package storage

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/kvindex/docdb/logging"
)

// BadgerStore is the concrete OrderedGetter/Batcher/Engine adapter over
// github.com/dgraph-io/badger/v4, an embedded ordered LSM-tree
// key-value store. It is the default (and only shipped) implementation
// of the storage.Store contract; callers needing a different engine
// only need to satisfy that interface.
type BadgerStore struct {
	db   *badger.DB
	path string
}

// BadgerOption customizes the badger.Options used to open a BadgerStore.
type BadgerOption func(*badger.Options)

// WithInMemory configures an in-memory (non-persistent) store, useful
// for tests.
func WithInMemory() BadgerOption {
	return func(o *badger.Options) {
		*o = o.WithInMemory(true)
	}
}

// WithBadgerLogger routes badger's internal log lines through the
// package-level structured logger. OpenBadger installs the same logger
// by default, so this option only restates that default.
func WithBadgerLogger() BadgerOption {
	return func(o *badger.Options) {
		*o = o.WithLogger(badgerLogAdapter{})
	}
}

// OpenBadger opens (creating if necessary) a Badger-backed Store at path.
func OpenBadger(path string, opts ...BadgerOption) (*BadgerStore, error) {
	bopts := badger.DefaultOptions(path)
	bopts.Logger = badgerLogAdapter{}
	for _, opt := range opts {
		opt(&bopts)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("storage: opening badger store at %q: %w", path, err)
	}
	return &BadgerStore{db: db, path: path}, nil
}

func (s *BadgerStore) String() string { return fmt.Sprintf("badger(%s)", s.path) }

// Close closes the underlying Badger database.
func (s *BadgerStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("storage: closing badger store: %w", err)
	}
	return nil
}

// Get implements Getter.
func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("storage: get: %w", err)
	}
	return val, nil
}

// Range implements OrderedGetter. It scans the half-open range
// [start, end) in ascending key order within a single read snapshot, so
// the scan is consistent even if concurrent writers commit mid-scan.
func (s *BadgerStore) Range(start, end []byte, fn RangeFunc) error {
	err := s.db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(start); it.Valid(); it.Next() {
			item := it.Item()
			key := item.KeyCopy(nil)
			if bytes.Compare(key, end) >= 0 {
				break
			}
			value, err := item.ValueCopy(nil)
			if err != nil {
				return fmt.Errorf("reading value for key %x: %w", key, err)
			}
			if err := fn(KeyValue{Key: key, Value: value}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: range scan: %w", err)
	}
	return nil
}

// NewBatch implements Batcher.
func (s *BadgerStore) NewBatch() Batch {
	return &badgerBatch{db: s.db}
}

type batchOp struct {
	del   bool
	key   []byte
	value []byte
}

// badgerBatch collects writes and applies them as a single Badger
// transaction on Commit, giving the "all derived writes commit or none
// do" guarantee DocStore's set/delete need (I1).
type badgerBatch struct {
	db  *badger.DB
	ops []batchOp
}

func (b *badgerBatch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: key, value: value})
}

func (b *badgerBatch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{del: true, key: key})
}

func (b *badgerBatch) Commit() error {
	if len(b.ops) == 0 {
		return nil
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		for _, op := range b.ops {
			if op.del {
				if err := txn.Delete(op.key); err != nil {
					return err
				}
				continue
			}
			if err := txn.Set(op.key, op.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("storage: committing batch of %d ops: %w", len(b.ops), err)
	}
	return nil
}

// badgerLogAdapter bridges badger's own Logger interface to the
// package-level structured logger so operational messages end up in
// one place.
type badgerLogAdapter struct{}

func (badgerLogAdapter) Errorf(f string, args ...interface{})   { logging.Errorf(f, args...) }
func (badgerLogAdapter) Warningf(f string, args ...interface{}) { logging.Warnf(f, args...) }
func (badgerLogAdapter) Infof(f string, args ...interface{})    { logging.Infof(f, args...) }
func (badgerLogAdapter) Debugf(f string, args ...interface{})   { logging.Debugf(f, args...) }

// Package storage provides a unified interface to the ordered
// key-value store the document store is built on. DocStore and the
// query executor only ever see the interfaces declared here, never a
// concrete backend, so a different ordered key-value engine can be
// substituted without touching either (this is the "external
// collaborator" boundary from spec.md §6).
//
// Keys and values are arbitrary byte strings. Range scans are
// half-open: [start, end). Implementations must provide the same
// lexicographic byte ordering on range iteration that bytes.Compare
// gives in memory.
package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("storage: key not found")

// KeyValue is a single key-value pair yielded by a range scan.
type KeyValue struct {
	Key   []byte
	Value []byte
}

// Engine is the lifecycle contract every storage backend satisfies.
type Engine interface {
	fmt.Stringer

	// Close releases any resources held by the engine. After Close,
	// no other method may be called.
	Close() error
}

// Getter reads single keys.
type Getter interface {
	// Get returns the value stored at key, or ErrNotFound if absent.
	Get(key []byte) ([]byte, error)
}

// RangeFunc is invoked for each key-value pair yielded by Range. If it
// returns an error, the scan stops and Range returns that error.
type RangeFunc func(kv KeyValue) error

// OrderedGetter adds ordered range iteration to Getter.
type OrderedGetter interface {
	Getter

	// Range calls fn for every key k with start <= k < end, in
	// ascending key order.
	Range(start, end []byte, fn RangeFunc) error
}

// Batch accumulates a set of writes to be applied atomically. Put and
// Delete never fail; only Commit can.
type Batch interface {
	Put(key, value []byte)
	Delete(key []byte)

	// Commit applies every accumulated write as a single atomic
	// transaction: either all of them are visible afterward, or none
	// are.
	Commit() error
}

// Batcher creates new Batches.
type Batcher interface {
	NewBatch() Batch
}

// Store is the full contract DocStore depends on: an ordered,
// batch-capable, closeable key-value engine.
type Store interface {
	Engine
	OrderedGetter
	Batcher
}

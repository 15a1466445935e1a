// Package docstore implements the DocStore: the component that ties
// the PathFlattener, OrderedEncoder and storage.Store together into
// atomic document writes, per spec.md §4.4. Set and Delete each commit
// a single storage.Batch, so a document's body and its derived index
// entries never disagree (invariant I1).
package docstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kvindex/docdb/changelog"
	"github.com/kvindex/docdb/encoding"
	"github.com/kvindex/docdb/pathvalue"
	"github.com/kvindex/docdb/query"
	"github.com/kvindex/docdb/storage"
)

// ErrNotFound is returned by Get and Delete when docid names no
// document.
var ErrNotFound = errors.New("docstore: document not found")

// DocStore is a handle on one open document store.
type DocStore struct {
	store     storage.Store
	publisher changelog.Publisher
}

// Option configures a DocStore at construction time.
type Option func(*DocStore)

// WithPublisher installs a changelog.Publisher notified of every
// committed Set/Delete. The default is changelog.Noop.
func WithPublisher(p changelog.Publisher) Option {
	return func(d *DocStore) { d.publisher = p }
}

// New wraps store as a DocStore.
func New(store storage.Store, opts ...Option) *DocStore {
	d := &DocStore{store: store, publisher: changelog.Noop}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Set stores body under docid, replacing any existing document with
// that id. body must be the same shape encoding/json.Unmarshal
// produces into `any`: nil, bool, float64, string, map[string]any, or
// []any (or a Go value composed of those, for in-process callers).
//
// Set is atomic (I1): the prior document's index entries (if any), the
// new body, and the new document's index entries are all applied in a
// single storage.Batch commit.
func (d *DocStore) Set(docid string, body any) error {
	newLeaves, err := pathvalue.Flatten(body)
	if err != nil {
		return fmt.Errorf("docstore: Set %q: %w", docid, err)
	}

	docKey, err := encoding.DocumentKey(docid)
	if err != nil {
		return fmt.Errorf("docstore: Set %q: %w", docid, err)
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("docstore: Set %q: encoding body: %w", docid, err)
	}

	batch := d.store.NewBatch()

	if err := d.removeExistingIndexEntries(batch, docid); err != nil {
		return fmt.Errorf("docstore: Set %q: %w", docid, err)
	}

	batch.Put(docKey, encoded)
	for _, leaf := range newLeaves {
		idxKey, err := encoding.IndexKey(leaf.Path, leaf.Value, docid)
		if err != nil {
			return fmt.Errorf("docstore: Set %q: %w", docid, err)
		}
		batch.Put(idxKey, nil)
	}

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("docstore: Set %q: %w", docid, err)
	}

	d.publisher.Publish(changelog.Event{DocID: docid, Op: changelog.OpSet, Body: body})
	return nil
}

// Get returns the decoded body stored under docid, or ErrNotFound if
// no such document exists.
func (d *DocStore) Get(docid string) (any, error) {
	docKey, err := encoding.DocumentKey(docid)
	if err != nil {
		return nil, fmt.Errorf("docstore: Get %q: %w", docid, err)
	}
	raw, err := d.store.Get(docKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("docstore: Get %q: %w", docid, err)
	}
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("docstore: Get %q: decoding stored body: %w", docid, err)
	}
	return body, nil
}

// Delete removes the document stored under docid along with every
// index entry derived from it, atomically. It returns ErrNotFound if
// no such document exists.
func (d *DocStore) Delete(docid string) error {
	docKey, err := encoding.DocumentKey(docid)
	if err != nil {
		return fmt.Errorf("docstore: Delete %q: %w", docid, err)
	}
	if _, err := d.store.Get(docKey); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("docstore: Delete %q: %w", docid, err)
	}

	batch := d.store.NewBatch()
	if err := d.removeExistingIndexEntries(batch, docid); err != nil {
		return fmt.Errorf("docstore: Delete %q: %w", docid, err)
	}
	batch.Delete(docKey)

	if err := batch.Commit(); err != nil {
		return fmt.Errorf("docstore: Delete %q: %w", docid, err)
	}

	d.publisher.Publish(changelog.Event{DocID: docid, Op: changelog.OpDelete})
	return nil
}

// Search runs preds as a conjunction against the index and returns the
// sorted, deduplicated ids of every document matching all of them.
func (d *DocStore) Search(preds ...query.Predicate) (query.Result, error) {
	scans, err := query.Plan(preds)
	if err != nil {
		return query.Result{}, fmt.Errorf("docstore: Search: %w", err)
	}
	result, err := query.Execute(d.store, scans)
	if err != nil {
		return query.Result{}, fmt.Errorf("docstore: Search: %w", err)
	}
	return result, nil
}

// removeExistingIndexEntries reads docid's current body (if any),
// reflattens it, and queues deletes for every index entry it implies.
// It is a no-op if docid has no existing document.
func (d *DocStore) removeExistingIndexEntries(batch storage.Batch, docid string) error {
	docKey, err := encoding.DocumentKey(docid)
	if err != nil {
		return err
	}
	raw, err := d.store.Get(docKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	var prior any
	if err := json.Unmarshal(raw, &prior); err != nil {
		return fmt.Errorf("decoding existing body for %q: %w", docid, err)
	}
	priorLeaves, err := pathvalue.Flatten(prior)
	if err != nil {
		return fmt.Errorf("reflattening existing body for %q: %w", docid, err)
	}
	for _, leaf := range priorLeaves {
		idxKey, err := encoding.IndexKey(leaf.Path, leaf.Value, docid)
		if err != nil {
			return err
		}
		batch.Delete(idxKey)
	}
	return nil
}

// Package docdb is a schemaless, embedded document store: documents
// are arbitrary JSON-shaped values keyed by a caller-supplied id, and
// every scalar leaf reachable in a document is automatically indexed
// so Search can answer range and equality conjunctions without a
// separate schema or index-declaration step (§1).
//
// A Store is opened once per process against a directory on disk (or
// in memory, for tests) and is safe for concurrent use by multiple
// goroutines.
package docdb

import (
	"errors"
	"fmt"

	"github.com/kvindex/docdb/changelog"
	"github.com/kvindex/docdb/docstore"
	"github.com/kvindex/docdb/query"
	"github.com/kvindex/docdb/storage"
	"github.com/kvindex/docdb/tagged"
)

// Predicate, Path and Value are re-exported from the query/tagged
// packages so ordinary callers never need to import either directly.
type (
	Predicate = query.Predicate
	Path      = query.Path
	Value     = tagged.Value
)

var (
	E      = query.E
	GT     = query.GT
	GTE    = query.GTE
	LT     = query.LT
	LTE    = query.LTE
	PathOf = query.PathOf

	Null       = tagged.Null
	Bool       = tagged.Bool
	Number     = tagged.Number
	MustNumber = tagged.MustNumber
	String     = tagged.String
	MustString = tagged.MustString
)

// SearchResult is the outcome of a Search call: the sorted,
// deduplicated ids of every document matching every given predicate,
// plus statistics about how the search was executed.
type SearchResult struct {
	IDs   []string
	Stats Stats
}

// Stats reports metadata about how a Search was executed.
type Stats struct {
	// Scans is the number of range scans actually run against the
	// storage engine (§4.6). It is lower than the number of planned
	// scans when an empty scan ends the search early.
	Scans int
}

// Store is a single open document store.
type Store struct {
	engine storage.Store
	docs   *docstore.DocStore
	pub    closer
}

// closer is satisfied by a changelog.Publisher that also owns
// resources needing an orderly shutdown, e.g. changelog.KafkaPublisher.
type closer interface {
	Close() error
}

// Option configures a Store at Open time.
type Option func(*openConfig)

type openConfig struct {
	badgerOpts []storage.BadgerOption
	publisher  changelog.Publisher
	closer     closer
}

// WithInMemory opens an ephemeral, non-persistent store. Intended for
// tests.
func WithInMemory() Option {
	return func(c *openConfig) {
		c.badgerOpts = append(c.badgerOpts, storage.WithInMemory())
	}
}

// WithBadgerLogging routes the storage engine's internal log lines
// through this module's structured logger. storage.OpenBadger already
// does this by default, so the option changes nothing on its own.
func WithBadgerLogging() Option {
	return func(c *openConfig) {
		c.badgerOpts = append(c.badgerOpts, storage.WithBadgerLogger())
	}
}

// WithChangelog installs a changelog.Publisher notified of every
// committed Set/Delete. If p also implements io.Closer, Close on the
// Store closes it too.
func WithChangelog(p changelog.Publisher) Option {
	return func(c *openConfig) {
		c.publisher = p
		if cl, ok := p.(closer); ok {
			c.closer = cl
		}
	}
}

// WithKafkaChangelog connects a changelog.KafkaPublisher from cfg and
// installs it, returning an error if the producer cannot be created.
func WithKafkaChangelog(cfg changelog.KafkaConfig) (Option, error) {
	kp, err := changelog.NewKafkaPublisher(cfg)
	if err != nil {
		return nil, fmt.Errorf("docdb: %w", err)
	}
	return WithChangelog(kp), nil
}

// Open opens (creating if necessary) the document store rooted at
// path.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := &openConfig{publisher: changelog.Noop}
	for _, opt := range opts {
		opt(cfg)
	}

	engine, err := storage.OpenBadger(path, cfg.badgerOpts...)
	if err != nil {
		return nil, newError("Open", KindStorage, err)
	}

	docs := docstore.New(engine, docstore.WithPublisher(cfg.publisher))
	return &Store{engine: engine, docs: docs, pub: cfg.closer}, nil
}

// Set stores body under docid, replacing any existing document with
// that id (§4.3, §4.4). body must be composed of the same shapes
// encoding/json.Unmarshal produces into `any`: nil, bool, float64,
// string, map[string]any, []any, or a value convertible to one of
// those (any Go integer/float/string/bool type).
func (s *Store) Set(docid string, body any) error {
	if err := s.docs.Set(docid, body); err != nil {
		return newError("Set", classify(err), err)
	}
	return nil
}

// Get returns the decoded body stored under docid. The second return
// value is false if no document with that id exists.
func (s *Store) Get(docid string) (any, bool, error) {
	body, err := s.docs.Get(docid)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, newError("Get", classify(err), err)
	}
	return body, true, nil
}

// Delete removes the document stored under docid and every index
// entry derived from it (§4.4). It is a no-op, not an error, if docid
// does not exist.
func (s *Store) Delete(docid string) error {
	if err := s.docs.Delete(docid); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return newError("Delete", classify(err), err)
	}
	return nil
}

// Search returns every document id matching the conjunction of preds
// (§4.5, §4.6). An empty preds list returns an empty result: this
// store has no "match everything" scan. A conjunction that provably
// matches nothing (e.g. collapsed ranges that no longer overlap) is
// reported as an InvalidQuery error, not a successful empty result
// (§4.5 step 3, §4.7).
func (s *Store) Search(preds ...Predicate) (SearchResult, error) {
	result, err := s.docs.Search(preds...)
	if err != nil {
		kind := classify(err)
		if kind == KindInvalidQuery {
			err = fmt.Errorf("%w: %w", ErrInvalidQuery, err)
		}
		return SearchResult{}, newError("Search", kind, err)
	}
	return SearchResult{IDs: result.IDs, Stats: Stats{Scans: result.Stats.Scans}}, nil
}

// Close releases the store's resources, including any configured
// changelog publisher.
func (s *Store) Close() error {
	if s.pub != nil {
		if err := s.pub.Close(); err != nil {
			return newError("Close", KindStorage, err)
		}
	}
	if err := s.engine.Close(); err != nil {
		return newError("Close", KindStorage, err)
	}
	return nil
}

// classify maps an internal error into the Kind taxonomy exposed on Error.
func classify(err error) Kind {
	switch {
	case errors.Is(err, query.ErrUnsatisfiable):
		return KindInvalidQuery
	case errors.Is(err, storage.ErrNotFound):
		return KindStorage
	default:
		return KindEncode
	}
}

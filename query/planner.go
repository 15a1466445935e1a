package query

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	"github.com/kvindex/docdb/encoding"
)

// ErrUnsatisfiable is wrapped into the error Plan returns when a
// conjunction provably matches nothing (§4.5 step 3). Callers can test
// for it with errors.Is.
var ErrUnsatisfiable = errors.New("query: unsatisfiable predicate conjunction")

// Scan is a single half-open byte-key range [SKey, EKey) to intersect
// with the results of every other Scan in a plan.
type Scan struct {
	SKey []byte
	EKey []byte
}

// Plan turns a conjunction of predicates into a minimal, deduplicated,
// deterministically ordered set of Scans (§4.5). Predicates sharing a
// path are collapsed into a single scan by intersecting their ranges;
// if the intersection is empty for any path, the whole conjunction is
// unsatisfiable and Plan returns ErrUnsatisfiable without touching the
// storage layer.
func Plan(preds []Predicate) ([]Scan, error) {
	type group struct {
		skey, ekey []byte
	}
	groups := make(map[string]*group, len(preds))
	order := make([]string, 0, len(preds))

	for _, p := range preds {
		skey, ekey, err := boundsFor(p)
		if err != nil {
			return nil, err
		}
		key := string(encoding.EncodePath(p.Path))
		g, ok := groups[key]
		if !ok {
			groups[key] = &group{skey: skey, ekey: ekey}
			order = append(order, key)
			continue
		}
		if bytes.Compare(skey, g.skey) > 0 {
			g.skey = skey
		}
		if bytes.Compare(ekey, g.ekey) < 0 {
			g.ekey = ekey
		}
	}

	sort.Strings(order)
	scans := make([]Scan, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if bytes.Compare(g.skey, g.ekey) > 0 {
			return nil, fmt.Errorf("%w: path %q has empty range after collapsing", ErrUnsatisfiable, key)
		}
		scans = append(scans, Scan{SKey: g.skey, EKey: g.ekey})
	}
	return scans, nil
}

// boundsFor derives (skey, ekey) for a single predicate, per the table
// in spec.md §4.2.
func boundsFor(p Predicate) (skey, ekey []byte, err error) {
	switch p.Op {
	case OpEQ:
		return encoding.PVLower(p.Path, p.Value), encoding.PVUpper(p.Path, p.Value), nil
	case OpGTE:
		return encoding.PVLower(p.Path, p.Value), encoding.PUpper(p.Path), nil
	case OpGT:
		return encoding.PVUpper(p.Path, p.Value), encoding.PUpper(p.Path), nil
	case OpLTE:
		return encoding.PLower(p.Path), encoding.PVUpper(p.Path, p.Value), nil
	case OpLT:
		return encoding.PLower(p.Path), encoding.PVLower(p.Path, p.Value), nil
	default:
		return nil, nil, fmt.Errorf("query: unknown predicate operator %v", p.Op)
	}
}

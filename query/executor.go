package query

import (
	"fmt"
	"sort"

	"github.com/kvindex/docdb/encoding"
	"github.com/kvindex/docdb/logging"
	"github.com/kvindex/docdb/storage"
)

// Stats reports metadata about how a Search was executed.
type Stats struct {
	Scans int
}

// Result is the outcome of executing a query plan.
type Result struct {
	IDs   []string
	Stats Stats
}

// Execute runs scans against store, intersecting the doc ids each scan
// yields, per §4.6. It short-circuits as soon as any scan yields no
// ids, since an AND with an empty set is always empty.
func Execute(store storage.OrderedGetter, scans []Scan) (Result, error) {
	n := len(scans)
	counts := make(map[string]int)
	stats := Stats{}
	first := true

	for i, s := range scans {
		var ids []string
		err := store.Range(s.SKey, s.EKey, func(kv storage.KeyValue) error {
			id, err := encoding.DecodeIndexDocID(kv.Key)
			if err != nil {
				logging.Debugf("query: skipping undecodable index key %x: %v", kv.Key, err)
				return nil
			}
			ids = append(ids, id)
			return nil
		})
		stats.Scans++
		if err != nil {
			return Result{}, fmt.Errorf("query: scan %d of %d: %w", i+1, n, err)
		}

		if len(ids) == 0 {
			return Result{IDs: nil, Stats: stats}, nil
		}

		if first {
			for _, id := range ids {
				counts[id] = 1
			}
			first = false
		} else {
			for _, id := range ids {
				if _, ok := counts[id]; ok {
					counts[id]++
				}
			}
		}
	}

	results := make([]string, 0, len(counts))
	for id, c := range counts {
		if c == n {
			results = append(results, id)
		}
	}
	sort.Strings(results)
	return Result{IDs: results, Stats: stats}, nil
}

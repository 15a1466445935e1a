// Package pathvalue implements the PathFlattener: walking a decoded
// JSON-like document to produce (path, leaf-value) pairs, where path
// elements are object keys (strings) or array indices (numbers).
package pathvalue

import (
	"fmt"

	"github.com/kvindex/docdb/encoding"
	"github.com/kvindex/docdb/tagged"
)

// Leaf is one (path, scalar) pair yielded by Flatten.
type Leaf struct {
	Path  encoding.Path
	Value tagged.Value
}

// Flatten walks v (as produced by encoding/json.Unmarshal into `any`:
// nil, bool, float64, string, map[string]any, or []any) and returns
// every scalar leaf with its path. Emission order is unspecified.
//
// Per OQ-2, a bare scalar document (v is not a map or slice) yields a
// single leaf at the empty path.
func Flatten(v any) ([]Leaf, error) {
	var leaves []Leaf
	if err := walk(encoding.Path{}, v, &leaves); err != nil {
		return nil, err
	}
	return leaves, nil
}

func walk(path encoding.Path, v any, out *[]Leaf) error {
	switch x := v.(type) {
	case map[string]any:
		for k, child := range x {
			key, err := tagged.String(k)
			if err != nil {
				return fmt.Errorf("pathvalue: object key %q: %w", k, err)
			}
			if err := walk(appendComponent(path, key), child, out); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for i, child := range x {
			idx, err := tagged.Number(float64(i))
			if err != nil {
				return fmt.Errorf("pathvalue: array index %d: %w", i, err)
			}
			if err := walk(appendComponent(path, idx), child, out); err != nil {
				return err
			}
		}
		return nil
	default:
		val, err := tagged.FromAny(v)
		if err != nil {
			return fmt.Errorf("pathvalue: leaf at %v: %w", path, err)
		}
		*out = append(*out, Leaf{Path: path, Value: val})
		return nil
	}
}

// appendComponent returns a new path with c appended, without mutating
// the slice backing any previously yielded path (each recursive branch
// of an object/array gets its own independent path slice).
func appendComponent(path encoding.Path, c tagged.Value) encoding.Path {
	next := make(encoding.Path, len(path), len(path)+1)
	copy(next, path)
	return append(next, c)
}

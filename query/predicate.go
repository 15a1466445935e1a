// Package query implements the QueryPlanner and QueryExecutor: turning
// a conjunction of predicates into a minimal set of range scans, and
// running those scans against a storage.Store to produce an
// intersected, ordered set of doc ids.
package query

import (
	"github.com/kvindex/docdb/encoding"
	"github.com/kvindex/docdb/tagged"
)

// Path is a field path, re-exported from the encoding package so
// callers of this package never need to import it directly.
type Path = encoding.Path

// PathOf builds a Path from a mixed list of strings and integers, e.g.
// PathOf("arrs", 0, "animals", 0).
func PathOf(parts ...any) (Path, error) {
	return encoding.PathOf(parts...)
}

// Op identifies which comparison a Predicate performs.
type Op uint8

const (
	OpEQ Op = iota
	OpGT
	OpGTE
	OpLT
	OpLTE
)

func (op Op) String() string {
	switch op {
	case OpEQ:
		return "="
	case OpGT:
		return ">"
	case OpGTE:
		return ">="
	case OpLT:
		return "<"
	case OpLTE:
		return "<="
	default:
		return "?"
	}
}

// Predicate is one member of the conjunction a Search call evaluates.
type Predicate struct {
	Op    Op
	Path  Path
	Value tagged.Value
}

// E builds an equality predicate: path == v.
func E(p Path, v tagged.Value) Predicate { return Predicate{Op: OpEQ, Path: p, Value: v} }

// GT builds a strictly-greater-than predicate: path > v.
func GT(p Path, v tagged.Value) Predicate { return Predicate{Op: OpGT, Path: p, Value: v} }

// GTE builds a greater-than-or-equal predicate: path >= v.
func GTE(p Path, v tagged.Value) Predicate { return Predicate{Op: OpGTE, Path: p, Value: v} }

// LT builds a strictly-less-than predicate: path < v.
func LT(p Path, v tagged.Value) Predicate { return Predicate{Op: OpLT, Path: p, Value: v} }

// LTE builds a less-than-or-equal predicate: path <= v.
func LTE(p Path, v tagged.Value) Predicate { return Predicate{Op: OpLTE, Path: p, Value: v} }

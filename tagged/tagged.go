// Package tagged implements the closed sum type of scalar kinds the
// document store indexes: null, bool, number and string. Every Value
// has a total order, including across kinds, which OrderedEncoder
// relies on to produce lexicographically sortable keys.
package tagged

import (
	"fmt"
	"math"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single tagged scalar. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
}

// Null returns the Null value.
func Null() Value { return Value{kind: KindNull} }

// Bool returns a Bool value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a Number value, or an error if f is NaN. Infinities are
// accepted: they still have a well-defined position in IEEE-754 order.
func Number(f float64) (Value, error) {
	if math.IsNaN(f) {
		return Value{}, fmt.Errorf("tagged: NaN is not a storable number")
	}
	return Value{kind: KindNumber, n: f}, nil
}

// MustNumber is like Number but panics on NaN. Intended for literals in
// tests and call sites that already know the float is not NaN.
func MustNumber(f float64) Value {
	v, err := Number(f)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns a String value, or an error if s contains either of the
// two key-composition separator bytes (0x00, 0x01). See OrderedEncoder for
// why those bytes are reserved.
func String(s string) (Value, error) {
	if strings.IndexByte(s, 0x00) >= 0 || strings.IndexByte(s, 0x01) >= 0 {
		return Value{}, fmt.Errorf("tagged: string contains a reserved separator byte")
	}
	return Value{kind: KindString, s: s}, nil
}

// MustString is like String but panics on invalid input.
func MustString(s string) Value {
	v, err := String(s)
	if err != nil {
		panic(err)
	}
	return v
}

// FromAny converts a Go scalar (nil, bool, any integer type, float32/64, or
// string) into a Value. It is the entry point used when flattening a
// decoded JSON document, whose leaves arrive as interface{}.
func FromAny(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(x), nil
	case string:
		return String(x)
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	default:
		return Value{}, fmt.Errorf("tagged: unsupported scalar type %T", v)
	}
}

// Kind reports which variant this Value holds.
func (v Value) Kind() Kind { return v.kind }

// Bool returns the boolean payload; only meaningful when Kind() == KindBool.
func (v Value) Bool() bool { return v.b }

// Float64 returns the numeric payload; only meaningful when Kind() == KindNumber.
func (v Value) Float64() float64 { return v.n }

// Str returns the string payload; only meaningful when Kind() == KindString.
func (v Value) Str() string { return v.s }

// Any converts v back into a plain Go value (nil, bool, float64, or string).
func (v Value) Any() any {
	switch v.kind {
	case KindNull:
		return nil
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%v", v.b)
	case KindNumber:
		return fmt.Sprintf("%v", v.n)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	default:
		return "<invalid>"
	}
}

// Equal reports whether two Values hold the same kind and payload.
func Equal(a, b Value) bool {
	return Compare(a, b) == 0
}

// Compare implements the engine's total order: Null < Bool(false) <
// Bool(true) < Number (numerically ascending) < String (byte-wise
// ascending). It returns -1, 0 or 1.
func Compare(a, b Value) int {
	if a.kind != b.kind {
		if a.kind < b.kind {
			return -1
		}
		return 1
	}
	switch a.kind {
	case KindNull:
		return 0
	case KindBool:
		if a.b == b.b {
			return 0
		}
		if !a.b {
			return -1
		}
		return 1
	case KindNumber:
		switch {
		case a.n < b.n:
			return -1
		case a.n > b.n:
			return 1
		default:
			return 0
		}
	case KindString:
		return strings.Compare(a.s, b.s)
	default:
		return 0
	}
}

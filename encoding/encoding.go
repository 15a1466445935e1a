// Package encoding is the OrderedEncoder: it turns TaggedValues, Paths
// and composed (path, value, docid) tuples into byte strings whose
// lexicographic order matches the engine's semantic order (§4.2).
//
// Key layout, fixed once and for all (changing any of these bytes is a
// breaking on-disk format change):
//
//	tag bytes:  Null=0x28 False=0x29 True=0x2A Number=0x2B String=0x2C
//	separators: COMP_SEP=0x00  PATH_SEP=0x01
//	namespaces: DOCUMENT_TAG=0x44  INDEX_TAG=0x49
package encoding

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/kvindex/docdb/tagged"
)

// Tag bytes for each TaggedValue variant, chosen so that raw byte
// comparison reproduces Null < False < True < Number < String.
const (
	NullTag   byte = 0x28
	FalseTag  byte = 0x29
	TrueTag   byte = 0x2A
	NumberTag byte = 0x2B
	StringTag byte = 0x2C
)

// Structural separators. Never equal to a tag byte above.
const (
	CompSep byte = 0x00 // between path/value/docid components of a key
	PathSep byte = 0x01 // between successive path components
)

// Key-namespace prefixes. DocumentTag < IndexTag so document-body keys
// sort before all index keys; both are greater than every tag/separator
// byte so no key namespace ever collides with another (I4).
const (
	DocumentTag byte = 0x44
	IndexTag    byte = 0x49
)

// Path is an ordered sequence of path components (object field names or
// array indices, the latter represented as Number values).
type Path []tagged.Value

// PathOf builds a Path from a mixed list of strings and any Go integer
// type, the constructor described in spec.md §6 ("a path-literal helper
// that accepts a mixed list of strings and integers").
func PathOf(parts ...any) (Path, error) {
	p := make(Path, 0, len(parts))
	for i, part := range parts {
		switch x := part.(type) {
		case string:
			v, err := tagged.String(x)
			if err != nil {
				return nil, fmt.Errorf("path component %d: %w", i, err)
			}
			p = append(p, v)
		case Path:
			return nil, fmt.Errorf("path component %d: nested Path not allowed", i)
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			v, err := tagged.FromAny(x)
			if err != nil {
				return nil, fmt.Errorf("path component %d: %w", i, err)
			}
			p = append(p, v)
		default:
			return nil, fmt.Errorf("path component %d: must be a string or integer, got %T", i, part)
		}
	}
	return p, nil
}

// EncodeTagged encodes a single TaggedValue per §4.2.
func EncodeTagged(v tagged.Value) []byte {
	switch v.Kind() {
	case tagged.KindNull:
		return []byte{NullTag}
	case tagged.KindBool:
		if v.Bool() {
			return []byte{TrueTag}
		}
		return []byte{FalseTag}
	case tagged.KindNumber:
		f := v.Float64()
		if f == 0 {
			f = 0 // fold -0 into +0, which Compare treats as equal
		}
		bits := math.Float64bits(f)
		if f >= 0 {
			bits ^= 0x8000000000000000
		} else {
			bits ^= 0xFFFFFFFFFFFFFFFF
		}
		buf := make([]byte, 9)
		buf[0] = NumberTag
		binary.BigEndian.PutUint64(buf[1:], bits)
		return buf
	case tagged.KindString:
		s := v.Str()
		buf := make([]byte, 1+len(s))
		buf[0] = StringTag
		copy(buf[1:], s)
		return buf
	default:
		return []byte{NullTag}
	}
}

// decodeTaggedAt decodes one TaggedValue starting at b[0], returning the
// value and the number of bytes it consumed. String payloads run until
// the next separator byte (or the end of b), relying on the invariant
// that string payloads never contain COMP_SEP or PATH_SEP.
func decodeTaggedAt(b []byte) (tagged.Value, int, error) {
	if len(b) == 0 {
		return tagged.Value{}, 0, fmt.Errorf("encoding: empty buffer has no tagged value")
	}
	switch b[0] {
	case NullTag:
		return tagged.Null(), 1, nil
	case FalseTag:
		return tagged.Bool(false), 1, nil
	case TrueTag:
		return tagged.Bool(true), 1, nil
	case NumberTag:
		if len(b) < 9 {
			return tagged.Value{}, 0, fmt.Errorf("encoding: truncated number (need 9 bytes, got %d)", len(b))
		}
		enc := binary.BigEndian.Uint64(b[1:9])
		var bits uint64
		if enc&0x8000000000000000 != 0 {
			bits = enc ^ 0x8000000000000000
		} else {
			bits = enc ^ 0xFFFFFFFFFFFFFFFF
		}
		f := math.Float64frombits(bits)
		v, err := tagged.Number(f)
		if err != nil {
			return tagged.Value{}, 0, err
		}
		return v, 9, nil
	case StringTag:
		payload := b[1:]
		end := len(payload)
		for i, c := range payload {
			if c == CompSep || c == PathSep {
				end = i
				break
			}
		}
		v, err := tagged.String(string(payload[:end]))
		if err != nil {
			return tagged.Value{}, 0, err
		}
		return v, 1 + end, nil
	default:
		return tagged.Value{}, 0, fmt.Errorf("encoding: unknown tag byte 0x%02x", b[0])
	}
}

// EncodePath concatenates the tagged encoding of every component of p,
// separated by PATH_SEP, with no leading or trailing separator.
func EncodePath(p Path) []byte {
	parts := make([][]byte, len(p))
	for i, c := range p {
		parts[i] = EncodeTagged(c)
	}
	return bytes.Join(parts, []byte{PathSep})
}

// DocumentKey returns the document-body key for docid.
func DocumentKey(docid string) ([]byte, error) {
	v, err := tagged.String(docid)
	if err != nil {
		return nil, fmt.Errorf("encoding: bad docid: %w", err)
	}
	key := make([]byte, 0, 2+len(docid)+1)
	key = append(key, DocumentTag, CompSep)
	key = append(key, EncodeTagged(v)...)
	return key, nil
}

// IndexKey returns the index-entry key for (docid, path, value).
func IndexKey(p Path, v tagged.Value, docid string) ([]byte, error) {
	docv, err := tagged.String(docid)
	if err != nil {
		return nil, fmt.Errorf("encoding: bad docid: %w", err)
	}
	key := make([]byte, 0, 64)
	key = append(key, IndexTag, CompSep)
	key = append(key, EncodePath(p)...)
	key = append(key, CompSep)
	key = append(key, EncodeTagged(v)...)
	key = append(key, CompSep)
	key = append(key, EncodeTagged(docv)...)
	return key, nil
}

// PVLower returns the inclusive lower bound of all docid-suffixes for (p, v).
func PVLower(p Path, v tagged.Value) []byte {
	key := make([]byte, 0, 48)
	key = append(key, IndexTag, CompSep)
	key = append(key, EncodePath(p)...)
	key = append(key, CompSep)
	key = append(key, EncodeTagged(v)...)
	key = append(key, CompSep)
	return key
}

// PVUpper returns the exclusive upper bound of all docid-suffixes for (p, v).
func PVUpper(p Path, v tagged.Value) []byte {
	key := PVLower(p, v)
	key[len(key)-1] = 0x02
	return key
}

// PLower returns the inclusive lower bound of all (p, *) index entries.
func PLower(p Path) []byte {
	key := make([]byte, 0, 32)
	key = append(key, IndexTag, CompSep)
	key = append(key, EncodePath(p)...)
	key = append(key, CompSep)
	return key
}

// PUpper returns the exclusive upper bound of all (p, *) index entries.
func PUpper(p Path) []byte {
	key := PLower(p)
	key[len(key)-1] = 0x02
	return key
}

// IndexPrefix is the shared prefix of every index key in the store.
func IndexPrefix() []byte {
	return []byte{IndexTag, CompSep}
}

// DecodeIndexDocID extracts and decodes the doc id from the tail of an
// index key, per §4.2 ("Doc-id decode"). It returns an error if the
// final component is missing or is not tagged as a String.
func DecodeIndexDocID(key []byte) (string, error) {
	idx := bytes.LastIndexByte(key, CompSep)
	if idx < 0 || idx == len(key)-1 {
		return "", fmt.Errorf("encoding: key has no trailing docid component")
	}
	suffix := key[idx+1:]
	v, n, err := decodeTaggedAt(suffix)
	if err != nil {
		return "", fmt.Errorf("encoding: decoding docid: %w", err)
	}
	if n != len(suffix) {
		return "", fmt.Errorf("encoding: trailing garbage after docid component")
	}
	if v.Kind() != tagged.KindString {
		return "", fmt.Errorf("encoding: docid component is not a string (tag kind %s)", v.Kind())
	}
	return v.Str(), nil
}

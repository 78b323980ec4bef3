package ast

import (
	"encoding/binary"
	"fmt"
	"slices"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// NestedKind discriminates NestedValue.
type NestedKind uint8

const (
	NestedScalar NestedKind = iota
	NestedReference
	NestedObject
	NestedArray
)

func (k NestedKind) String() string {
	switch k {
	case NestedScalar:
		return "Value"
	case NestedReference:
		return "Reference"
	case NestedObject:
		return "Object"
	case NestedArray:
		return "Array"
	default:
		return fmt.Sprintf("NestedKind(%d)", uint8(k))
	}
}

// NestedValue is arbitrary overlay or capture content: a reference, a
// string scalar, an ordered object, or an array. Values are built bottom-up
// by the constructors below and never change afterwards, so a tree cannot
// contain itself. The zero value is the empty string scalar.
type NestedValue struct {
	kind NestedKind
	ref  RefValue
	str  string
	obj  Fields[NestedValue]
	arr  []NestedValue
}

// NewReference builds a reference leaf.
func NewReference(r RefValue) NestedValue {
	return NestedValue{kind: NestedReference, ref: r}
}

// NewValue builds a string leaf.
func NewValue(s string) NestedValue {
	return NestedValue{kind: NestedScalar, str: s}
}

// NewObject builds an object from entries in the given order.
func NewObject(entries ...Entry[NestedValue]) NestedValue {
	return NestedValue{kind: NestedObject, obj: newFields(entries...)}
}

// NewArray builds an array from items in the given order.
func NewArray(items ...NestedValue) NestedValue {
	return NestedValue{kind: NestedArray, arr: slices.Clone(items)}
}

// Field is shorthand for an object entry.
func Field(name string, v NestedValue) Entry[NestedValue] {
	return Entry[NestedValue]{Name: name, Value: v}
}

func (v NestedValue) Kind() NestedKind { return v.kind }

// Ref returns the reference of a Reference leaf.
func (v NestedValue) Ref() (RefValue, bool) {
	return v.ref, v.kind == NestedReference
}

// Str returns the string of a Value leaf.
func (v NestedValue) Str() (string, bool) {
	return v.str, v.kind == NestedScalar
}

// Object returns the entries of an Object node.
func (v NestedValue) Object() (Fields[NestedValue], bool) {
	return v.obj, v.kind == NestedObject
}

// Items returns a copy of the items of an Array node.
func (v NestedValue) Items() ([]NestedValue, bool) {
	if v.kind != NestedArray {
		return nil, false
	}
	return slices.Clone(v.arr), true
}

// Len returns the number of children of an Object or Array, 0 for leaves.
func (v NestedValue) Len() int {
	switch v.kind {
	case NestedObject:
		return v.obj.Len()
	case NestedArray:
		return len(v.arr)
	default:
		return 0
	}
}

// Equal reports structural equality. Arrays compare in order; objects
// compare by key, regardless of insertion order.
func (v NestedValue) Equal(o NestedValue) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case NestedReference:
		return v.ref == o.ref
	case NestedScalar:
		return v.str == o.str
	case NestedObject:
		return fieldsEqual(v.obj, o.obj, NestedValue.Equal)
	case NestedArray:
		return slices.EqualFunc(v.arr, o.arr, NestedValue.Equal)
	default:
		return false
	}
}

// Hash returns a stable 64-bit digest of the tree. Unlike Equal it is
// sensitive to object key order; hash Canonical() for an order-independent
// identity.
func (v NestedValue) Hash() uint64 {
	d := xxhash.New()
	v.writeHash(d)
	return d.Sum64()
}

func (v NestedValue) writeHash(d *xxhash.Digest) {
	writeHashString(d, v.kind.String())
	switch v.kind {
	case NestedReference:
		writeHashString(d, v.ref.String())
	case NestedScalar:
		writeHashString(d, v.str)
	case NestedObject:
		for k, child := range v.obj.All() {
			writeHashString(d, k)
			writeHashUint(d, child.Hash())
		}
	case NestedArray:
		for _, child := range v.arr {
			writeHashUint(d, child.Hash())
		}
	}
}

// Canonical returns a copy of the tree with object keys sorted at every
// level.
func (v NestedValue) Canonical() NestedValue {
	switch v.kind {
	case NestedObject:
		keys := v.obj.Keys()
		sort.Strings(keys)
		entries := make([]Entry[NestedValue], 0, len(keys))
		for _, k := range keys {
			child, _ := v.obj.Get(k)
			entries = append(entries, Field(k, child.Canonical()))
		}
		return NewObject(entries...)
	case NestedArray:
		items := make([]NestedValue, len(v.arr))
		for i, child := range v.arr {
			items[i] = child.Canonical()
		}
		return NestedValue{kind: NestedArray, arr: items}
	default:
		return v
	}
}

func (v NestedValue) String() string {
	switch v.kind {
	case NestedReference:
		return v.ref.String()
	case NestedScalar:
		return fmt.Sprintf("%q", v.str)
	case NestedObject:
		return fmt.Sprintf("Object(%d)", v.obj.Len())
	case NestedArray:
		return fmt.Sprintf("Array(%d)", len(v.arr))
	default:
		return v.kind.String()
	}
}

// writeHashString writes a length-prefixed string so adjacent strings
// cannot collide.
func writeHashString(d *xxhash.Digest, s string) {
	var buf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(buf[:], uint64(len(s)))
	_, _ = d.Write(buf[:n])
	_, _ = d.WriteString(s)
}

func writeHashUint(d *xxhash.Digest, u uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	_, _ = d.Write(buf[:])
}

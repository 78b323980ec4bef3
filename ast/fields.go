package ast

import (
	"iter"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Fields is a read-only, insertion-ordered view of named entries. The zero
// value is empty. Fields values are built by this package and never
// modified afterwards, so they can be shared freely.
type Fields[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

// Entry is one named item used to build ordered structures.
type Entry[V any] struct {
	Name  string
	Value V
}

// newFields copies entries into a fresh ordered map. A repeated name keeps
// its first position and its last value.
func newFields[V any](entries ...Entry[V]) Fields[V] {
	if len(entries) == 0 {
		return Fields[V]{}
	}
	m := orderedmap.New[string, V](len(entries))
	for _, e := range entries {
		m.Set(e.Name, e.Value)
	}
	return Fields[V]{m: m}
}

// Len returns the number of entries.
func (f Fields[V]) Len() int {
	return f.m.Len()
}

// Get returns the value stored under name.
func (f Fields[V]) Get(name string) (V, bool) {
	if f.m == nil {
		var zero V
		return zero, false
	}
	return f.m.Get(name)
}

// Keys returns the names in insertion order.
func (f Fields[V]) Keys() []string {
	keys := make([]string, 0, f.Len())
	for p := f.m.Oldest(); p != nil; p = p.Next() {
		keys = append(keys, p.Key)
	}
	return keys
}

// All iterates the entries in insertion order.
func (f Fields[V]) All() iter.Seq2[string, V] {
	return func(yield func(string, V) bool) {
		for p := f.m.Oldest(); p != nil; p = p.Next() {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Entries returns a copy of the entries in insertion order.
func (f Fields[V]) Entries() []Entry[V] {
	out := make([]Entry[V], 0, f.Len())
	for k, v := range f.All() {
		out = append(out, Entry[V]{Name: k, Value: v})
	}
	return out
}

// fieldsEqual compares two Fields by content, ignoring insertion order.
func fieldsEqual[V any](a, b Fields[V], eq func(V, V) bool) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, av := range a.All() {
		bv, ok := b.Get(k)
		if !ok || !eq(av, bv) {
			return false
		}
	}
	return true
}

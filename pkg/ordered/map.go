// Package ordered provides a map that remembers insertion order.
//
// Go maps iterate in random order. Form layouts need the opposite: the
// order in which tabs and fields were declared is part of the output,
// so every level of a layout is backed by a Map.
package ordered

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Map is a map whose iteration order is the order keys were first set.
// Setting an existing key replaces its value in place; it never moves.
//
// The zero value is ready to use. A Map is not safe for concurrent use.
type Map[K comparable, V any] struct {
	keys  []K
	index map[K]V
}

// New returns an empty map with room for n keys.
func New[K comparable, V any](n int) *Map[K, V] {
	return &Map[K, V]{
		keys:  make([]K, 0, n),
		index: make(map[K]V, n),
	}
}

// Set stores v under k. New keys are appended to the order.
func (m *Map[K, V]) Set(k K, v V) {
	if m.index == nil {
		m.index = make(map[K]V)
	}
	if _, ok := m.index[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.index[k] = v
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.index[k]
	return v, ok
}

// Has reports whether k is present.
func (m *Map[K, V]) Has(k K) bool {
	_, ok := m.Get(k)
	return ok
}

// Delete removes k and reports whether it was present.
func (m *Map[K, V]) Delete(k K) bool {
	if m == nil {
		return false
	}
	if _, ok := m.index[k]; !ok {
		return false
	}
	delete(m.index, k)
	if i := slices.Index(m.keys, k); i >= 0 {
		m.keys = slices.Delete(m.keys, i, i+1)
	}
	return true
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in order.
func (m *Map[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// Values returns the values in key order.
func (m *Map[K, V]) Values() []V {
	if m == nil {
		return nil
	}
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.index[k])
	}
	return out
}

// All returns an iterator over the pairs in order.
//
// The sequence is restartable: each range over it walks the map as it is
// at that moment. Mutating the map while ranging is not supported.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if m == nil {
			return
		}
		for _, k := range m.keys {
			if !yield(k, m.index[k]) {
				return
			}
		}
	}
}

// Clone returns a shallow copy of m.
func (m *Map[K, V]) Clone() *Map[K, V] {
	if m == nil {
		return nil
	}
	c := New[K, V](len(m.keys))
	for _, k := range m.keys {
		c.Set(k, m.index[k])
	}
	return c
}

// MarshalJSON encodes m as a JSON object whose members keep insertion order.
// Keys are formatted with fmt unless they are strings.
func (m *Map[K, V]) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		var name string
		switch kk := any(k).(type) {
		case string:
			name = kk
		default:
			name = fmt.Sprint(kk)
		}
		kb, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(m.index[k])
		if err != nil {
			return nil, fmt.Errorf("ordered: key %q: %w", name, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

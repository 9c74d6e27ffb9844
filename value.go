package json11

import (
	"iter"
	"math"
)

type undefined struct{}

func (undefined) String() string { return "undefined" }

// Undefined marks the absence of a value. A Reviver returns it to delete an
// object entry or blank an array slot, arrays produced by Parse hold it in
// blanked slots, and Stringify omits it (or writes null in an array).
var Undefined any = undefined{}

// Object is an ordered collection of key/value entries. Keys keep the order
// of their first insertion; every key, including "__proto__", is plain data.
// The zero value is an empty object ready to use.
type Object struct {
	keys   []string
	values []any
	index  map[string]int
}

// NewObject returns an empty Object with room for n entries.
func NewObject(n int) *Object {
	return &Object{
		keys:   make([]string, 0, n),
		values: make([]any, 0, n),
		index:  make(map[string]int, n),
	}
}

// Set assigns v to key. An existing key keeps its position.
func (o *Object) Set(key string, v any) {
	if i, ok := o.index[key]; ok {
		o.values[i] = v
		return
	}
	if o.index == nil {
		o.index = make(map[string]int)
	}
	o.index[key] = len(o.keys)
	o.keys = append(o.keys, key)
	o.values = append(o.values, v)
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	i, ok := o.index[key]
	if !ok {
		return nil, false
	}
	return o.values[i], true
}

// Has reports whether key is present.
func (o *Object) Has(key string) bool {
	_, ok := o.index[key]
	return ok
}

// Delete removes key, reporting whether it was present.
func (o *Object) Delete(key string) bool {
	i, ok := o.index[key]
	if !ok {
		return false
	}
	delete(o.index, key)
	o.keys = append(o.keys[:i], o.keys[i+1:]...)
	o.values = append(o.values[:i], o.values[i+1:]...)
	for j := i; j < len(o.keys); j++ {
		o.index[o.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (o *Object) Len() int {
	return len(o.keys)
}

// Keys returns a copy of the keys in order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.keys...)
}

// All iterates over the entries in order.
func (o *Object) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for i, k := range o.keys {
			if !yield(k, o.values[i]) {
				return
			}
		}
	}
}

func negZero() float64 {
	return math.Copysign(0, -1)
}

func keywordValue(word string) float64 {
	if word == "Infinity" {
		return math.Inf(1)
	}
	return math.NaN()
}

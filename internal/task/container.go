// SPDX-License-Identifier: MPL-2.0

package task

import (
	"cmp"
	"encoding/json"
	"slices"
)

type (
	// List is an ordered list without duplicates. Merging appends unseen
	// items from the source, keeping first-seen order.
	List[T comparable] []T

	// Set is an unordered collection encoded as a sorted JSON array.
	Set[T cmp.Ordered] map[T]struct{}

	// Dict is a keyed record. Merging copies source entries over target
	// entries key by key.
	Dict[V any] map[string]V
)

// NewList builds a List from items, dropping duplicates.
func NewList[T comparable](items ...T) List[T] {
	return List[T](nil).Merge(items)
}

// Merge returns the ordered union of l and other. Neither input is modified.
func (l List[T]) Merge(other List[T]) List[T] {
	if l == nil && other == nil {
		return nil
	}
	out := make(List[T], 0, len(l)+len(other))
	seen := make(map[T]struct{}, len(l)+len(other))
	for _, src := range [2]List[T]{l, other} {
		for _, item := range src {
			if _, ok := seen[item]; ok {
				continue
			}
			seen[item] = struct{}{}
			out = append(out, item)
		}
	}
	return out
}

// Contains reports whether item is in l.
func (l List[T]) Contains(item T) bool {
	return slices.Contains(l, item)
}

// NewSet builds a Set from items.
func NewSet[T cmp.Ordered](items ...T) Set[T] {
	s := make(Set[T], len(items))
	for _, item := range items {
		s[item] = struct{}{}
	}
	return s
}

// Merge returns the union of s and other. Neither input is modified.
func (s Set[T]) Merge(other Set[T]) Set[T] {
	if s == nil && other == nil {
		return nil
	}
	out := make(Set[T], len(s)+len(other))
	for item := range s {
		out[item] = struct{}{}
	}
	for item := range other {
		out[item] = struct{}{}
	}
	return out
}

// Has reports whether item is in s.
func (s Set[T]) Has(item T) bool {
	_, ok := s[item]
	return ok
}

// Sorted returns the members of s in ascending order.
func (s Set[T]) Sorted() []T {
	out := make([]T, 0, len(s))
	for item := range s {
		out = append(out, item)
	}
	slices.Sort(out)
	return out
}

func (s Set[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *Set[T]) UnmarshalJSON(data []byte) error {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*s = NewSet(items...)
	return nil
}

// Merge returns a copy of d with every entry of other applied on top.
func (d Dict[V]) Merge(other Dict[V]) Dict[V] {
	if d == nil && other == nil {
		return nil
	}
	out := make(Dict[V], len(d)+len(other))
	for k, v := range d {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Keys returns the keys of d in ascending order.
func (d Dict[V]) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

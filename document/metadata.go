//
// Tencent is pleased to support the open source community by making trpc-docpipe-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-docpipe-go is licensed under the Apache License Version 2.0.
//
//

package document

import "sort"

// Metadata maps a field name to an ordered sequence of string values.
// Keys are unique and never empty; a field may hold several values.
// Metadata is not safe for concurrent use: like the document owning it,
// it is confined to the goroutine processing the document.
type Metadata map[string][]string

// Add appends values to the field, creating it if needed.
// Empty field names are ignored.
func (m Metadata) Add(field string, values ...string) {
	if field == "" || len(values) == 0 {
		return
	}
	m[field] = append(m[field], values...)
}

// Set replaces all values of the field. Empty field names are ignored.
func (m Metadata) Set(field string, values ...string) {
	if field == "" {
		return
	}
	m[field] = append([]string(nil), values...)
}

// Get returns the values of the field in insertion order, or nil.
func (m Metadata) Get(field string) []string {
	return m[field]
}

// First returns the first value of the field, or "" when absent.
func (m Metadata) First(field string) string {
	if vs := m[field]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Last returns the last value of the field, or "" when absent.
func (m Metadata) Last(field string) string {
	if vs := m[field]; len(vs) > 0 {
		return vs[len(vs)-1]
	}
	return ""
}

// Has reports whether the field holds at least one value.
func (m Metadata) Has(field string) bool {
	return len(m[field]) > 0
}

// Keys returns the field names sorted lexicographically, so iteration
// over metadata is deterministic.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Remove deletes the field and returns whether it existed.
func (m Metadata) Remove(field string) bool {
	if _, ok := m[field]; !ok {
		return false
	}
	delete(m, field)
	return true
}

// Clear removes all fields.
func (m Metadata) Clear() {
	for k := range m {
		delete(m, k)
	}
}

// Clone returns a deep copy of the metadata.
func (m Metadata) Clone() Metadata {
	c := make(Metadata, len(m))
	for k, vs := range m {
		c[k] = append([]string(nil), vs...)
	}
	return c
}

// Equal reports whether both metadata maps hold the same fields with the
// same values in the same order.
func (m Metadata) Equal(other Metadata) bool {
	if len(m) != len(other) {
		return false
	}
	for k, vs := range m {
		ovs, ok := other[k]
		if !ok || len(vs) != len(ovs) {
			return false
		}
		for i := range vs {
			if vs[i] != ovs[i] {
				return false
			}
		}
	}
	return true
}

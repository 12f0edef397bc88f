// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the matex catalog client:
// catalog records, crystal structures, and stage configuration.
package types

import (
	"fmt"
	"sort"
)

// IDProperty is the property key that identifies a catalog record. The
// catalog includes it in every response regardless of the requested
// property list.
const IDProperty = "material_id"

// Record is an immutable snapshot of a catalog entry at query time. It maps
// property names to values (numbers, strings, or nested mappings) and carries
// only the properties that were requested, plus the identifier.
type Record map[string]any

// ID returns the record's material identifier, or "" when absent.
func (r Record) ID() string {
	s, _ := r[IDProperty].(string)
	return s
}

// Has reports whether the record carries the named property. A property
// returned by the catalog with a null value still counts as carried.
func (r Record) Has(property string) bool {
	_, ok := r[property]
	return ok
}

// Float returns the named property as a float64. JSON numbers decode as
// float64; integer-typed values are accepted too.
func (r Record) Float(property string) (float64, error) {
	v, ok := r[property]
	if !ok {
		return 0, fmt.Errorf("record %s: property %q not present", r.ID(), property)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("record %s: property %q is %T, not numeric", r.ID(), property, v)
	}
}

// String returns the named property as a string.
func (r Record) String(property string) (string, error) {
	v, ok := r[property]
	if !ok {
		return "", fmt.Errorf("record %s: property %q not present", r.ID(), property)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("record %s: property %q is %T, not a string", r.ID(), property, v)
	}
	return s, nil
}

// PropertyNames returns the record's property keys in sorted order.
func (r Record) PropertyNames() []string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Equal reports whether two records carry the same properties with the same
// values. Nested mappings and lists are compared structurally.
func (r Record) Equal(other Record) bool {
	if len(r) != len(other) {
		return false
	}
	for k, v := range r {
		ov, ok := other[k]
		if !ok || !valueEqual(v, ov) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !valueEqual(v, w) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

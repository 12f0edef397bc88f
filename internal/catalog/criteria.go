// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"fmt"
)

// Criteria is a conjunctive set of filter predicates evaluated server-side.
// Predicates on different fields are combined with AND; comparison
// predicates on the same field merge into one range (Gte+Lte gives a
// closed interval). Marshals to the catalog's JSON filter document, e.g.
//
//	{"elements":{"$in":["Si","O"]},"nelements":2,"band_gap":{"$gte":1}}
//
// The zero value matches every record.
type Criteria struct {
	clauses []clause
}

type clause struct {
	field string
	op    string // "" means plain equality
	value any
}

// operator names understood by the catalog's filter syntax.
const (
	opIn  = "$in"
	opAll = "$all"
	opGt  = "$gt"
	opGte = "$gte"
	opLt  = "$lt"
	opLte = "$lte"
)

// NewCriteria returns an empty criteria set.
func NewCriteria() *Criteria { return &Criteria{} }

// Eq adds an equality predicate on field.
func (c *Criteria) Eq(field string, value any) *Criteria {
	return c.add(field, "", value)
}

// In adds a set-membership predicate: field's value must be one of values,
// or for list-valued fields, overlap values.
func (c *Criteria) In(field string, values ...any) *Criteria {
	return c.add(field, opIn, values)
}

// All adds a containment predicate: a list-valued field must contain every
// one of values.
func (c *Criteria) All(field string, values ...any) *Criteria {
	return c.add(field, opAll, values)
}

// Gt adds a strict lower bound on a numeric field.
func (c *Criteria) Gt(field string, value float64) *Criteria {
	return c.add(field, opGt, value)
}

// Gte adds an inclusive lower bound on a numeric field.
func (c *Criteria) Gte(field string, value float64) *Criteria {
	return c.add(field, opGte, value)
}

// Lt adds a strict upper bound on a numeric field.
func (c *Criteria) Lt(field string, value float64) *Criteria {
	return c.add(field, opLt, value)
}

// Lte adds an inclusive upper bound on a numeric field.
func (c *Criteria) Lte(field string, value float64) *Criteria {
	return c.add(field, opLte, value)
}

func (c *Criteria) add(field, op string, value any) *Criteria {
	c.clauses = append(c.clauses, clause{field: field, op: op, value: value})
	return c
}

// IsEmpty reports whether the criteria set has no predicates.
func (c *Criteria) IsEmpty() bool { return c == nil || len(c.clauses) == 0 }

// Document builds the JSON filter document. Operator predicates on the same
// field merge into one operator object. Equality and operator predicates on
// one field do not combine: whichever kind comes later replaces what the
// earlier kind built, so Eq then Gte on a field keeps only the Gte bound.
func (c *Criteria) Document() (map[string]any, error) {
	doc := make(map[string]any)
	if c == nil {
		return doc, nil
	}
	for _, cl := range c.clauses {
		if cl.field == "" {
			return nil, fmt.Errorf("criteria: empty field name")
		}
		if cl.op == "" {
			doc[cl.field] = cl.value
			continue
		}
		ops, ok := doc[cl.field].(map[string]any)
		if !ok {
			ops = make(map[string]any)
			doc[cl.field] = ops
		}
		ops[cl.op] = cl.value
	}
	return doc, nil
}

// MarshalJSON emits the filter document. encoding/json sorts map keys, so
// the output is deterministic for a given criteria set.
func (c *Criteria) MarshalJSON() ([]byte, error) {
	doc, err := c.Document()
	if err != nil {
		return nil, err
	}
	return json.Marshal(doc)
}

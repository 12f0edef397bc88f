// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"encoding/json"
	"testing"
)

func TestCriteriaDocument(t *testing.T) {
	tests := []struct {
		name     string
		criteria *Criteria
		wantJSON string
	}{
		{
			name:     "empty criteria matches everything",
			criteria: NewCriteria(),
			wantJSON: `{}`,
		},
		{
			name:     "equality",
			criteria: NewCriteria().Eq("nelements", 2),
			wantJSON: `{"nelements":2}`,
		},
		{
			name:     "set membership",
			criteria: NewCriteria().In("elements", "Si", "O"),
			wantJSON: `{"elements":{"$in":["Si","O"]}}`,
		},
		{
			name:     "containment",
			criteria: NewCriteria().All("elements", "Si", "O"),
			wantJSON: `{"elements":{"$all":["Si","O"]}}`,
		},
		{
			name:     "range bounds merge on one field",
			criteria: NewCriteria().Gte("band_gap", 1).Lte("band_gap", 3),
			wantJSON: `{"band_gap":{"$gte":1,"$lte":3}}`,
		},
		{
			name:     "strict bounds",
			criteria: NewCriteria().Gt("density", 2.5).Lt("density", 5),
			wantJSON: `{"density":{"$gt":2.5,"$lt":5}}`,
		},
		{
			name: "conjunction across fields",
			criteria: NewCriteria().
				All("elements", "Li").
				Eq("spacegroup.crystal_system", "cubic").
				Gte("band_gap", 0.5),
			wantJSON: `{"band_gap":{"$gte":0.5},"elements":{"$all":["Li"]},"spacegroup.crystal_system":"cubic"}`,
		},
		{
			name:     "later equality replaces earlier operator",
			criteria: NewCriteria().Gte("nelements", 1).Eq("nelements", 3),
			wantJSON: `{"nelements":3}`,
		},
		{
			name:     "later operator replaces earlier equality",
			criteria: NewCriteria().Eq("nelements", 3).Gte("nelements", 1),
			wantJSON: `{"nelements":{"$gte":1}}`,
		},
		{
			name: "operators after equality merge with each other",
			criteria: NewCriteria().
				Eq("band_gap", 2).
				Gte("band_gap", 0.5).
				Lte("band_gap", 1.5),
			wantJSON: `{"band_gap":{"$gte":0.5,"$lte":1.5}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := json.Marshal(tt.criteria)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(got) != tt.wantJSON {
				t.Errorf("Marshal() = %s, want %s", got, tt.wantJSON)
			}
		})
	}
}

func TestCriteriaMarshalDeterministic(t *testing.T) {
	criteria := NewCriteria().
		All("elements", "Si", "O").
		Eq("nelements", 2).
		Gte("band_gap", 1).
		Lte("band_gap", 3)

	first, err := json.Marshal(criteria)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := json.Marshal(criteria)
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatalf("marshal %d = %s, want %s", i, again, first)
		}
	}
}

func TestCriteriaEmptyFieldName(t *testing.T) {
	_, err := NewCriteria().Eq("", 1).Document()
	if err == nil {
		t.Fatal("Document() should reject an empty field name")
	}
}

func TestCriteriaIsEmpty(t *testing.T) {
	tests := []struct {
		name     string
		criteria *Criteria
		want     bool
	}{
		{"nil", nil, true},
		{"fresh", NewCriteria(), true},
		{"with predicate", NewCriteria().Eq("nelements", 2), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.criteria.IsEmpty(); got != tt.want {
				t.Errorf("IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

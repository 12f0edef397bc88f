// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"testing"
)

func cubicLattice(a float64) Lattice {
	return Lattice{Matrix: [3][3]float64{
		{a, 0, 0},
		{0, a, 0},
		{0, 0, a},
	}}
}

func TestLatticeMetrics(t *testing.T) {
	l := cubicLattice(5.43)

	for i, length := range l.Lengths() {
		if math.Abs(length-5.43) > 1e-9 {
			t.Errorf("length[%d] = %f, want 5.43", i, length)
		}
	}
	for i, angle := range l.Angles() {
		if math.Abs(angle-90) > 1e-9 {
			t.Errorf("angle[%d] = %f, want 90", i, angle)
		}
	}
	if v := l.Volume(); math.Abs(v-5.43*5.43*5.43) > 1e-6 {
		t.Errorf("Volume() = %f", v)
	}
}

func TestLatticeHexagonalAngles(t *testing.T) {
	// Hexagonal cell: gamma (between a and b) is 120 degrees.
	l := Lattice{Matrix: [3][3]float64{
		{3.0, 0, 0},
		{-1.5, 3.0 * math.Sqrt(3) / 2, 0},
		{0, 0, 5.0},
	}}

	angles := l.Angles()
	if math.Abs(angles[0]-90) > 1e-9 || math.Abs(angles[1]-90) > 1e-9 {
		t.Errorf("alpha, beta = %f, %f, want 90, 90", angles[0], angles[1])
	}
	if math.Abs(angles[2]-120) > 1e-9 {
		t.Errorf("gamma = %f, want 120", angles[2])
	}
}

func TestLatticeScale(t *testing.T) {
	l := cubicLattice(2).Scale(1.5)
	if math.Abs(l.Lengths()[0]-3) > 1e-9 {
		t.Errorf("scaled length = %f, want 3", l.Lengths()[0])
	}
	if math.Abs(l.Volume()-27) > 1e-9 {
		t.Errorf("scaled volume = %f, want 27", l.Volume())
	}
}

func TestStructureComposition(t *testing.T) {
	s := Structure{
		MaterialID: "mat-1234",
		Lattice:    cubicLattice(5),
		Sites: []Site{
			{Species: "Si", Frac: [3]float64{0, 0, 0}},
			{Species: "Si", Frac: [3]float64{0.5, 0.5, 0}},
			{Species: "O", Frac: [3]float64{0.25, 0.25, 0.25}},
			{Species: "O", Frac: [3]float64{0.75, 0.75, 0.25}},
			{Species: "O", Frac: [3]float64{0.25, 0.75, 0.75}},
			{Species: "O", Frac: [3]float64{0.75, 0.25, 0.75}},
		},
	}

	comp := s.Composition()
	if comp["Si"] != 2 || comp["O"] != 4 {
		t.Errorf("Composition() = %v", comp)
	}

	reduced := s.ReducedComposition()
	if reduced["Si"] != 1 || reduced["O"] != 2 {
		t.Errorf("ReducedComposition() = %v", reduced)
	}

	if got := s.CompositionString(); got != "O2 Si1" {
		t.Errorf("CompositionString() = %q, want %q", got, "O2 Si1")
	}
}

func TestStructureValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       Structure
		wantErr bool
	}{
		{
			name: "valid",
			s: Structure{
				MaterialID: "ok",
				Lattice:    cubicLattice(5),
				Sites:      []Site{{Species: "Si"}},
			},
		},
		{
			name:    "no sites",
			s:       Structure{MaterialID: "empty", Lattice: cubicLattice(5)},
			wantErr: true,
		},
		{
			name: "degenerate lattice",
			s: Structure{
				MaterialID: "flat",
				Sites:      []Site{{Species: "Si"}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Lattice is a crystal lattice described by three row vectors in Angstroms.
type Lattice struct {
	// Matrix holds the lattice vectors as rows: Matrix[0] is vector a.
	Matrix [3][3]float64 `json:"matrix" yaml:"matrix"`
}

// Lengths returns the lengths of the three lattice vectors.
func (l Lattice) Lengths() [3]float64 {
	var out [3]float64
	for i, v := range l.Matrix {
		out[i] = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	return out
}

// Angles returns the cell angles alpha, beta, gamma in degrees. Alpha is the
// angle between vectors b and c, beta between a and c, gamma between a and b.
func (l Lattice) Angles() [3]float64 {
	lengths := l.Lengths()
	var out [3]float64
	pairs := [3][2]int{{1, 2}, {0, 2}, {0, 1}}
	for i, p := range pairs {
		dot := 0.0
		for k := 0; k < 3; k++ {
			dot += l.Matrix[p[0]][k] * l.Matrix[p[1]][k]
		}
		cos := dot / (lengths[p[0]] * lengths[p[1]])
		// Clamp against rounding before acos.
		cos = math.Max(-1, math.Min(1, cos))
		out[i] = math.Acos(cos) * 180 / math.Pi
	}
	return out
}

// Volume returns the cell volume (scalar triple product, always positive).
func (l Lattice) Volume() float64 {
	a, b, c := l.Matrix[0], l.Matrix[1], l.Matrix[2]
	cross := [3]float64{
		b[1]*c[2] - b[2]*c[1],
		b[2]*c[0] - b[0]*c[2],
		b[0]*c[1] - b[1]*c[0],
	}
	return math.Abs(a[0]*cross[0] + a[1]*cross[1] + a[2]*cross[2])
}

// Scale returns a copy of the lattice with every vector multiplied by factor.
func (l Lattice) Scale(factor float64) Lattice {
	var out Lattice
	for i := range l.Matrix {
		for j := range l.Matrix[i] {
			out.Matrix[i][j] = l.Matrix[i][j] * factor
		}
	}
	return out
}

// Site is one atomic site in a structure.
type Site struct {
	// Species is the element or species label occupying the site (e.g. "Si").
	Species string `json:"species" yaml:"species"`

	// Frac holds the site position in fractional lattice coordinates.
	Frac [3]float64 `json:"frac" yaml:"frac"`
}

// Structure is a full crystal structure record fetched from the catalog.
type Structure struct {
	// MaterialID is the catalog identifier this structure belongs to.
	MaterialID string `json:"material_id" yaml:"material_id"`

	// Formula is the reduced chemical formula as reported by the catalog.
	Formula string `json:"formula,omitempty" yaml:"formula,omitempty"`

	Lattice Lattice `json:"lattice" yaml:"lattice"`
	Sites   []Site  `json:"sites" yaml:"sites"`
}

// NumSites returns the number of atomic sites.
func (s Structure) NumSites() int { return len(s.Sites) }

// Composition returns a map of species label to site count.
func (s Structure) Composition() map[string]int {
	comp := make(map[string]int)
	for _, site := range s.Sites {
		comp[site.Species]++
	}
	return comp
}

// ReducedComposition returns the composition divided by the greatest common
// divisor of its counts, so Si2O4 and Si4O8 both reduce to Si1O2.
func (s Structure) ReducedComposition() map[string]int {
	comp := s.Composition()
	g := 0
	for _, n := range comp {
		g = gcd(g, n)
	}
	if g <= 1 {
		return comp
	}
	for k, n := range comp {
		comp[k] = n / g
	}
	return comp
}

// CompositionString returns the composition in a canonical sorted form,
// e.g. "O2 Si1".
func (s Structure) CompositionString() string {
	comp := s.ReducedComposition()
	species := make([]string, 0, len(comp))
	for sp := range comp {
		species = append(species, sp)
	}
	sort.Strings(species)
	parts := make([]string, len(species))
	for i, sp := range species {
		parts[i] = fmt.Sprintf("%s%d", sp, comp[sp])
	}
	return strings.Join(parts, " ")
}

// Validate checks that the structure has a non-degenerate lattice and at
// least one site.
func (s Structure) Validate() error {
	if len(s.Sites) == 0 {
		return fmt.Errorf("structure %s has no sites", s.MaterialID)
	}
	if s.Lattice.Volume() <= 0 {
		return fmt.Errorf("structure %s has a degenerate lattice", s.MaterialID)
	}
	return nil
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

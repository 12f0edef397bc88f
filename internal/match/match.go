// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package match judges geometric equivalence between two crystal structures
// under configurable tolerances. The judgment is deterministic for fixed
// inputs: every candidate ordering is derived from sorted site lists, never
// from map iteration.
package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/mattersci/matex/pkg/types"
)

// Default tolerances, chosen loose enough to absorb typical relaxation
// noise between independently computed structures.
const (
	DefaultLengthTol = 0.2
	DefaultSiteTol   = 0.3
	DefaultAngleTol  = 5.0
)

// fracEps is the coordinate tolerance used during primitive-cell reduction.
const fracEps = 1e-3

// Matcher holds the tolerances and flags for structure comparison.
type Matcher struct {
	// LengthTol is the relative tolerance on lattice vector lengths.
	LengthTol float64

	// SiteTol is the site displacement tolerance, expressed as a fraction
	// of the mean free length per atom.
	SiteTol float64

	// AngleTol is the absolute tolerance on cell angles in degrees.
	AngleTol float64

	// PrimitiveCell reduces both structures to primitive cells first.
	PrimitiveCell bool

	// ScaleVolume normalizes both lattices to unit volume per atom.
	ScaleVolume bool

	// AttemptSupercell allows matching cells whose site counts differ by an
	// integer factor.
	AttemptSupercell bool

	// IgnoreSpecies compares geometry only, regardless of which species
	// occupies each site.
	IgnoreSpecies bool
}

// New builds a Matcher from cfg, substituting defaults for zero tolerances.
func New(cfg types.MatcherConfig) *Matcher {
	m := &Matcher{
		LengthTol:        cfg.LengthTol,
		SiteTol:          cfg.SiteTol,
		AngleTol:         cfg.AngleTol,
		PrimitiveCell:    cfg.PrimitiveCell,
		ScaleVolume:      cfg.ScaleVolume,
		AttemptSupercell: cfg.AttemptSupercell,
		IgnoreSpecies:    cfg.IgnoreSpecies,
	}
	if m.LengthTol <= 0 {
		m.LengthTol = DefaultLengthTol
	}
	if m.SiteTol <= 0 {
		m.SiteTol = DefaultSiteTol
	}
	if m.AngleTol <= 0 {
		m.AngleTol = DefaultAngleTol
	}
	return m
}

// Fit reports whether structures a and b are equivalent under the matcher's
// tolerances. It returns an error only when an input structure is invalid;
// a well-formed non-match is (false, nil).
func (m *Matcher) Fit(a, b types.Structure) (bool, error) {
	if err := a.Validate(); err != nil {
		return false, fmt.Errorf("match: %w", err)
	}
	if err := b.Validate(); err != nil {
		return false, fmt.Errorf("match: %w", err)
	}

	if m.PrimitiveCell {
		a = reduceToPrimitive(a)
		b = reduceToPrimitive(b)
	}

	if !m.IgnoreSpecies && !compositionsEqual(a.ReducedComposition(), b.ReducedComposition()) {
		return false, nil
	}

	if a.NumSites() != b.NumSites() {
		if !m.AttemptSupercell {
			return false, nil
		}
		return m.fitSupercell(a, b), nil
	}

	if m.ScaleVolume {
		a = normalizeVolume(a)
		b = normalizeVolume(b)
	}

	if !m.latticesFit(a.Lattice, b.Lattice) {
		return false, nil
	}
	return m.sitesFit(a, b), nil
}

// fitSupercell handles cells whose site counts differ by an integer factor.
// Both cells are first folded to primitive; when that equalizes the site
// counts the full per-atom-scaled lattice and site comparison applies.
// Cells that stay unequal after folding are compared by their per-atom-
// scaled lattice parameters, which rejects geometrically unrelated cells
// that merely share a volume per atom.
func (m *Matcher) fitSupercell(a, b types.Structure) bool {
	na, nb := a.NumSites(), b.NumSites()
	if na < nb {
		na, nb = nb, na
	}
	if nb == 0 || na%nb != 0 {
		return false
	}

	ra, rb := reduceToPrimitive(a), reduceToPrimitive(b)
	if ra.NumSites() == rb.NumSites() {
		ra = normalizeVolume(ra)
		rb = normalizeVolume(rb)
		if !m.latticesFit(ra.Lattice, rb.Lattice) {
			return false
		}
		return m.sitesFit(ra, rb)
	}

	a = normalizeVolume(a)
	b = normalizeVolume(b)
	return m.latticesFit(a.Lattice, b.Lattice)
}

// latticesFit compares sorted lattice vector lengths within the relative
// length tolerance and sorted cell angles within the angle tolerance.
func (m *Matcher) latticesFit(a, b types.Lattice) bool {
	la, lb := a.Lengths(), b.Lengths()
	sort.Float64s(la[:])
	sort.Float64s(lb[:])
	for i := 0; i < 3; i++ {
		if math.Abs(la[i]-lb[i]) > m.LengthTol*math.Max(la[i], lb[i]) {
			return false
		}
	}

	aa, ab := a.Angles(), b.Angles()
	sort.Float64s(aa[:])
	sort.Float64s(ab[:])
	for i := 0; i < 3; i++ {
		if math.Abs(aa[i]-ab[i]) > m.AngleTol {
			return false
		}
	}
	return true
}

// sitesFit attempts to map every site of a onto a distinct site of b under
// periodic boundary conditions. Candidate origin shifts are derived from an
// anchor species so the mapping is translation-invariant.
func (m *Matcher) sitesFit(a, b types.Structure) bool {
	asites := sortedSites(a.Sites)
	bsites := sortedSites(b.Sites)

	// Displacement cutoff in Angstroms: SiteTol times the mean free length
	// per atom of the reference cell.
	cutoff := m.SiteTol * math.Cbrt(a.Lattice.Volume()/float64(len(asites)))

	anchor := m.anchorSite(asites)
	for _, cand := range bsites {
		if !m.speciesCompatible(anchor.Species, cand.Species) {
			continue
		}
		var shift [3]float64
		for k := 0; k < 3; k++ {
			shift[k] = anchor.Frac[k] - cand.Frac[k]
		}
		if m.assign(asites, shiftSites(bsites, shift), a.Lattice, cutoff) {
			return true
		}
	}
	return false
}

// anchorSite picks the first sorted site of the rarest species, breaking
// count ties alphabetically.
func (m *Matcher) anchorSite(sites []types.Site) types.Site {
	if m.IgnoreSpecies {
		return sites[0]
	}
	counts := make(map[string]int)
	for _, s := range sites {
		counts[s.Species]++
	}
	best := sites[0]
	for _, s := range sites {
		if counts[s.Species] < counts[best.Species] ||
			(counts[s.Species] == counts[best.Species] && s.Species < best.Species) {
			best = s
		}
	}
	return best
}

// assign greedily pairs each a-site with its nearest unused compatible
// b-site. Sites are visited in sorted order, so the assignment is
// deterministic.
func (m *Matcher) assign(asites, bsites []types.Site, lattice types.Lattice, cutoff float64) bool {
	used := make([]bool, len(bsites))
	for _, sa := range asites {
		bestIdx := -1
		bestDist := math.Inf(1)
		for j, sb := range bsites {
			if used[j] || !m.speciesCompatible(sa.Species, sb.Species) {
				continue
			}
			d := periodicDistance(sa.Frac, sb.Frac, lattice)
			if d < bestDist {
				bestDist = d
				bestIdx = j
			}
		}
		if bestIdx < 0 || bestDist > cutoff {
			return false
		}
		used[bestIdx] = true
	}
	return true
}

func (m *Matcher) speciesCompatible(a, b string) bool {
	return m.IgnoreSpecies || a == b
}

// periodicDistance returns the Cartesian distance between two fractional
// positions under the minimum-image convention.
func periodicDistance(fa, fb [3]float64, lattice types.Lattice) float64 {
	var delta [3]float64
	for k := 0; k < 3; k++ {
		d := fa[k] - fb[k]
		d -= math.Round(d)
		delta[k] = d
	}
	var cart [3]float64
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			cart[j] += delta[k] * lattice.Matrix[k][j]
		}
	}
	return math.Sqrt(cart[0]*cart[0] + cart[1]*cart[1] + cart[2]*cart[2])
}

// normalizeVolume rescales the lattice to unit volume per atom.
func normalizeVolume(s types.Structure) types.Structure {
	perAtom := s.Lattice.Volume() / float64(s.NumSites())
	s.Lattice = s.Lattice.Scale(1 / math.Cbrt(perAtom))
	return s
}

// reduceToPrimitive collapses translational repetition along each lattice
// axis: when a translation of 1/k along an axis maps the site set onto
// itself, the cell is folded by that factor. This removes simple supercell
// repetition; it does not perform a full Niggli reduction.
func reduceToPrimitive(s types.Structure) types.Structure {
	for axis := 0; axis < 3; axis++ {
		for k := s.NumSites(); k >= 2; k-- {
			if s.NumSites()%k != 0 {
				continue
			}
			if invariantUnderTranslation(s, axis, k) {
				s = foldCell(s, axis, k)
				// Re-check the same axis at smaller factors.
				axis--
				break
			}
		}
	}
	return s
}

// invariantUnderTranslation reports whether shifting every site by 1/k
// along the axis reproduces the site set.
func invariantUnderTranslation(s types.Structure, axis, k int) bool {
	for _, site := range s.Sites {
		shifted := site
		shifted.Frac[axis] = wrap(site.Frac[axis] + 1/float64(k))
		if !containsSite(s.Sites, shifted) {
			return false
		}
	}
	return true
}

func containsSite(sites []types.Site, want types.Site) bool {
	for _, s := range sites {
		if s.Species != want.Species {
			continue
		}
		ok := true
		for i := 0; i < 3; i++ {
			d := s.Frac[i] - want.Frac[i]
			d -= math.Round(d)
			if math.Abs(d) > fracEps {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// foldCell shrinks the lattice vector along axis by 1/k and keeps the sites
// falling inside the reduced cell, rescaling their fractional coordinates.
func foldCell(s types.Structure, axis, k int) types.Structure {
	out := s
	for j := 0; j < 3; j++ {
		out.Lattice.Matrix[axis][j] = s.Lattice.Matrix[axis][j] / float64(k)
	}

	var kept []types.Site
	for _, site := range s.Sites {
		if site.Frac[axis] >= 1/float64(k)-fracEps {
			continue
		}
		folded := site
		folded.Frac[axis] = wrap(site.Frac[axis] * float64(k))
		kept = append(kept, folded)
	}
	out.Sites = kept
	return out
}

func wrap(f float64) float64 {
	f = math.Mod(f, 1)
	if f < 0 {
		f++
	}
	// Collapse positions within fracEps of 1 back to 0.
	if f > 1-fracEps {
		f = 0
	}
	return f
}

// shiftSites returns a copy of sites with shift added to every fractional
// coordinate, wrapped back into the unit cell.
func shiftSites(sites []types.Site, shift [3]float64) []types.Site {
	out := make([]types.Site, len(sites))
	for i, s := range sites {
		out[i] = s
		for k := 0; k < 3; k++ {
			out[i].Frac[k] = wrap(s.Frac[k] + shift[k])
		}
	}
	return out
}

// sortedSites returns a copy of sites in canonical order: by species, then
// by fractional coordinates.
func sortedSites(sites []types.Site) []types.Site {
	out := make([]types.Site, len(sites))
	copy(out, sites)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		for k := 0; k < 3; k++ {
			if out[i].Frac[k] != out[j].Frac[k] {
				return out[i].Frac[k] < out[j].Frac[k]
			}
		}
		return false
	})
	return out
}

func compositionsEqual(a, b map[string]int) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}

package bloom

import (
	"sort"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// CascadeDepth is the fixed cascading-debloom depth.
const CascadeDepth = 4

// Cascade is the cascading critical-false-positive structure built over
// the Bloom-positive, non-solid neighbours of the solid set. Cascading
// is the default debloom variant; a flat single-level variant is not
// implemented.
//
// levels[0..CascadeDepth-2] are Bloom filters (cfp_0..cfp_2 on disk);
// the final level is a sorted exact array (cfp_3), queried by binary
// search.
type Cascade struct {
	levels []*Bloom
	exact  []kmer.Code
}

// codeKey is a comparable map key for a k-mer code.
func codeKey(c kmer.Code) [4]uint64 { return c.W }

// BuildCascade enumerates the non-solid neighbours of solid (N(S) \ S)
// via neighboursOf, and builds the cascading Bloom/exact-set structure
// of critical false positives.
func BuildCascade(base *Bloom, solid []kmer.Code, neighboursOf func(kmer.Code) []kmer.Code, fpr float64) *Cascade {
	solidSet := make(map[[4]uint64]struct{}, len(solid))
	for _, c := range solid {
		solidSet[codeKey(c)] = struct{}{}
	}

	neighbourSet := make(map[[4]uint64]kmer.Code)
	for _, c := range solid {
		for _, nb := range neighboursOf(c) {
			canon, _ := nb.Canonical()
			k := codeKey(canon)
			if _, isSolid := solidSet[k]; isSolid {
				continue
			}
			neighbourSet[k] = canon
		}
	}
	candidates := make([]kmer.Code, 0, len(neighbourSet))
	for _, c := range neighbourSet {
		candidates = append(candidates, c)
	}

	cas := &Cascade{levels: make([]*Bloom, 0, CascadeDepth-1)}

	// pass accumulates the conjunction of all prior level memberships;
	// initially every candidate with Bloom(x)=true is eligible (T1).
	pass := func(x kmer.Code) bool { return base.Contains(x) }

	for level := 0; level < CascadeDepth; level++ {
		t := make([]kmer.Code, 0, len(candidates))
		for _, x := range candidates {
			if pass(x) {
				t = append(t, x)
			}
		}
		if level == CascadeDepth-1 {
			sort.Slice(t, func(i, j int) bool { return t[i].Cmp(t[j]) < 0 })
			cas.exact = t
			return cas
		}
		bl := New(KindBasic, uint64(len(t)), fpr)
		for _, x := range t {
			bl.Insert(x)
		}
		cas.levels = append(cas.levels, bl)
		prevPass := pass
		prevLevel := bl
		pass = func(x kmer.Code) bool { return prevPass(x) && prevLevel.Contains(x) }
	}
	return cas
}

func (c *Cascade) exactContains(x kmer.Code) bool {
	i := sort.Search(len(c.exact), func(i int) bool { return c.exact[i].Cmp(x) >= 0 })
	return i < len(c.exact) && c.exact[i].Equal(x)
}

// Contains implements the alternating containment formula:
//
//	node(x) iff Bloom0(x) and not(Bloom1(x) and not(Bloom2(x) and not(Bloom3(x) and exact4(x))))
func (c *Cascade) Contains(base *Bloom, x kmer.Code) bool {
	if !base.Contains(x) {
		return false
	}
	return !c.debloom(x, 0)
}

// debloom evaluates the nested "Bloom_i(x) and not(...)" term starting
// at level i (0-indexed into c.levels, with the final term being the
// exact set).
func (c *Cascade) debloom(x kmer.Code, i int) bool {
	if i == len(c.levels) {
		return c.exactContains(x)
	}
	if !c.levels[i].Contains(x) {
		return false
	}
	return !c.debloom(x, i+1)
}

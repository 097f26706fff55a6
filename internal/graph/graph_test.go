package graph

import (
	"testing"

	"github.com/shenwei356/dbgbuild/internal/bloom"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/mphf"
)

func mustCode(t *testing.T, s string) kmer.Code {
	t.Helper()
	c, err := kmer.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

// allNeighbours enumerates both forward and backward one-base extensions
// of c in canonical form, used only to seed the test fixture's cFP set.
func allNeighbours(c kmer.Code) []kmer.Code {
	out := make([]kmer.Code, 0, 8)
	for nt := int8(0); nt < 4; nt++ {
		canon, _ := c.Next(nt).Canonical()
		out = append(out, canon)
		canon, _ = c.Prev(nt).Canonical()
		out = append(out, canon)
	}
	return out
}

func buildGraph(t *testing.T, k int, solidSeqs []string) (*Graph, []kmer.Code) {
	t.Helper()
	model, err := kmer.NewModel(k, 3, kmer.NewLexOrder(3))
	if err != nil {
		t.Fatalf("NewModel: %v", err)
	}
	solid := make([]kmer.Code, 0, len(solidSeqs))
	for _, s := range solidSeqs {
		c, _ := mustCode(t, s).Canonical()
		solid = append(solid, c)
	}
	abund := make([]uint64, len(solid))
	for i := range abund {
		abund[i] = 1
	}

	b := bloom.New(bloom.KindBasic, uint64(len(solid)), bloom.DefaultFalsePositiveRate)
	for _, c := range solid {
		b.Insert(c)
	}
	cascade := bloom.BuildCascade(b, solid, allNeighbours, bloom.DefaultFalsePositiveRate)

	annot, err := mphf.Build(13, solid, abund)
	if err != nil {
		t.Fatalf("mphf.Build: %v", err)
	}

	return &Graph{Model: model, Bloom: b, Cascade: cascade, Annot: annot}, solid
}

func TestScenario1SimpleChain(t *testing.T) {
	// scenario 1: reads ["AATGC"], k=4 -> solid={AATG,ATGC}.
	g, solid := buildGraph(t, 4, []string{"AATG", "ATGC"})

	aatg := Node{Kmer: solid[0]}
	succ := g.Successors(aatg)
	if len(succ) != 1 {
		t.Fatalf("successors(AATG) has %d edges, want 1", len(succ))
	}
	wantATGC, _ := mustCode(t, "ATGC").Canonical()
	if !succ[0].To.Kmer.Equal(wantATGC) {
		t.Fatalf("successors(AATG) = %s, want ATGC", succ[0].To.Kmer)
	}

	atgc := Node{Kmer: solid[1]}
	pred := g.Predecessors(atgc)
	if len(pred) != 1 {
		t.Fatalf("predecessors(ATGC) has %d edges, want 1", len(pred))
	}
	wantAATG, _ := mustCode(t, "AATG").Canonical()
	if !pred[0].To.Kmer.Equal(wantAATG) {
		t.Fatalf("predecessors(ATGC) = %s, want AATG", pred[0].To.Kmer)
	}

	// AATG starts the chain: in-degree 0, so it counts as branching.
	if !g.IsBranching(aatg) {
		t.Fatalf("AATG has in-degree 0 and should count as branching")
	}
}

func TestDeleteHidesNode(t *testing.T) {
	g, solid := buildGraph(t, 4, []string{"AATG", "ATGC"})
	atgc := Node{Kmer: solid[1]}
	if !g.Contains(solid[1]) {
		t.Fatalf("ATGC should be a live node before deletion")
	}
	g.Delete(atgc)
	if g.Contains(solid[1]) {
		t.Fatalf("ATGC should be hidden after deletion")
	}
	g.Undelete(atgc)
	if !g.Contains(solid[1]) {
		t.Fatalf("ATGC should be visible again after undelete")
	}
}

package unitig

import (
	"testing"

	"github.com/shenwei356/dbgbuild/internal/bloom"
	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/mphf"
	"github.com/shenwei356/dbgbuild/internal/partition"
)

func mustCode(t *testing.T, s string) kmer.Code {
	t.Helper()
	c, err := kmer.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

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

func buildGraph(t *testing.T, k, m int, solidSeqs []string) (*graph.Graph, []kmer.Code) {
	t.Helper()
	model, err := kmer.NewModel(k, m, kmer.NewLexOrder(m))
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

	return &graph.Graph{Model: model, Bloom: b, Cascade: cascade, Annot: annot}, solid
}

// checkCoversExactly asserts units' internal k-mers are exactly solid,
// each appearing once.
func checkCoversExactly(t *testing.T, units []*Unitig, k int, solid []kmer.Code) {
	t.Helper()
	want := make(map[[4]uint64]bool, len(solid))
	for _, c := range solid {
		want[codeKey(c)] = true
	}
	got := make(map[[4]uint64]bool)
	for _, u := range units {
		for pos := 0; pos+k <= len(u.Seq); pos++ {
			c, err := kmer.Parse(u.Seq[pos : pos+k])
			if err != nil {
				t.Fatalf("unitig sequence contains invalid k-mer: %v", err)
			}
			canon, _ := c.Canonical()
			key := codeKey(canon)
			if got[key] {
				t.Fatalf("k-mer %s appears in more than one unitig position", canon)
			}
			got[key] = true
		}
	}
	if len(got) != len(want) {
		t.Fatalf("covered %d distinct k-mers, want %d", len(got), len(want))
	}
	for key := range want {
		if !got[key] {
			t.Fatalf("solid k-mer %v missing from unitig output", key)
		}
	}
}

func TestBuildSimpleChainSingleBucket(t *testing.T) {
	g, solid := buildGraph(t, 4, 2, []string{"AATG", "ATGC"})
	table := partition.NewLexTable(2, 1)
	input := NewInput(g, table, solid)
	units := Build(input, 1, nil)
	if len(units) != 1 {
		t.Fatalf("got %d unitigs, want 1", len(units))
	}
	if len(units[0].Seq) != 5 {
		t.Fatalf("unitig length = %d, want 5", len(units[0].Seq))
	}
	checkCoversExactly(t, units, 4, solid)
}

func TestBuildSimpleChainMultiBucket(t *testing.T) {
	g, solid := buildGraph(t, 4, 2, []string{"AATG", "ATGC"})
	table := partition.NewLexTable(2, 4)
	input := NewInput(g, table, solid)
	units := Build(input, 2, nil)
	checkCoversExactly(t, units, 4, solid)
}

func TestBuildLongerChainIsOneUnitig(t *testing.T) {
	// scenario 4: a single 24-base read, k=11 -> one unitig equal
	// to the whole read, 14 internal k-mers, no branching.
	read := "AGGCGCTAGGGTAGAGGATGATGA"
	k := 11
	model, err := kmer.NewModel(k, 3, kmer.NewLexOrder(3))
	if err != nil {
		t.Fatal(err)
	}
	var solid []kmer.Code
	model.Iterate([]byte(read), func(e kmer.Event) {
		solid = append(solid, e.Canonical)
	})
	g, solid := buildGraph(t, k, 3, codesToStrings(solid))
	table := partition.NewLexTable(3, 2)
	input := NewInput(g, table, solid)
	units := Build(input, 2, nil)
	if len(units) != 1 {
		t.Fatalf("got %d unitigs, want 1", len(units))
	}
	if len(units[0].Seq) != len(read) {
		t.Fatalf("unitig length = %d, want %d", len(units[0].Seq), len(read))
	}
	checkCoversExactly(t, units, k, solid)
}

func codesToStrings(codes []kmer.Code) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = c.String()
	}
	return out
}

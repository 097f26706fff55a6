package cmd

import (
	"testing"

	"github.com/shenwei356/dbgbuild/internal/unitig"
)

func TestSummarizeEmptyGraph(t *testing.T) {
	s := summarize(nil, nil, 4)
	if s != (graphStats{}) {
		t.Fatalf("got %+v, want zero value", s)
	}
}

// TestSummarizeLinearChain mirrors scenario 4: a single long
// unitig glued from a 14-k-mer chain has no branch, so both the dead
// ends at its own boundaries (the chain is isolated, not attached to
// anything else) must report zero branching.
func TestSummarizeLinearChain(t *testing.T) {
	k := 4
	units := []*unitig.Unitig{{ID: 0, Seq: make([]byte, k+13)}}
	linkCounts := []int{0}

	s := summarize(units, linkCounts, k)
	if s.NbNodes != 14 {
		t.Fatalf("NbNodes = %d, want 14", s.NbNodes)
	}
	if s.NbBranching != 0 {
		t.Fatalf("NbBranching = %d, want 0", s.NbBranching)
	}
	if s.NbIsolated != 1 {
		t.Fatalf("NbIsolated = %d, want 1", s.NbIsolated)
	}
}

// TestSummarizeBranchPoint mirrors scenario 5: a branch unitig
// linked to three leaves reports as branching, the leaves as tips.
func TestSummarizeBranchPoint(t *testing.T) {
	k := 4
	units := []*unitig.Unitig{
		{ID: 0, Seq: make([]byte, k)},
		{ID: 1, Seq: make([]byte, k)},
		{ID: 2, Seq: make([]byte, k)},
		{ID: 3, Seq: make([]byte, k)},
	}
	linkCounts := []int{3, 1, 1, 1}

	s := summarize(units, linkCounts, k)
	if s.NbBranching != 1 {
		t.Fatalf("NbBranching = %d, want 1", s.NbBranching)
	}
	if s.NbTips != 3 {
		t.Fatalf("NbTips = %d, want 3", s.NbTips)
	}
	if s.NbIsolated != 0 {
		t.Fatalf("NbIsolated = %d, want 0", s.NbIsolated)
	}
}

func TestSummarizeShortUnitigContributesNoNodes(t *testing.T) {
	k := 10
	units := []*unitig.Unitig{{ID: 0, Seq: make([]byte, 3)}}
	s := summarize(units, []int{0}, k)
	if s.NbNodes != 0 {
		t.Fatalf("NbNodes = %d, want 0 for a unitig shorter than k", s.NbNodes)
	}
}

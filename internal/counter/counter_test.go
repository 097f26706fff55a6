package counter

import (
	"testing"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

func mustCode(t *testing.T, s string) kmer.Code {
	t.Helper()
	c, err := kmer.Parse([]byte(s))
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return c
}

func TestHashStrategyCountsAndSorts(t *testing.T) {
	s := NewHashStrategy(8, 1)
	atg := mustCode(t, "AATG")
	gca := mustCode(t, "TGCA")
	s.Add(atg, 0)
	s.Add(atg, 0)
	s.Add(gca, 0)

	recs := s.Finalize()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].Kmer.Cmp(recs[1].Kmer) >= 0 {
		t.Fatalf("records not sorted ascending")
	}
	for _, r := range recs {
		if r.Kmer.Equal(atg) && r.Counts[0] != 2 {
			t.Fatalf("AATG count = %d, want 2", r.Counts[0])
		}
	}
}

func TestRadixStrategyCollapsesRuns(t *testing.T) {
	s := NewRadixStrategy(2)
	atg := mustCode(t, "AATG")
	gca := mustCode(t, "TGCA")
	s.Add(atg, 0)
	s.Add(atg, 1)
	s.Add(gca, 0)
	s.Add(atg, 0)

	recs := s.Finalize()
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	for _, r := range recs {
		if r.Kmer.Equal(atg) {
			if r.Counts[0] != 2 || r.Counts[1] != 1 {
				t.Fatalf("AATG counts = %v, want [2 1]", r.Counts)
			}
		}
	}
}

func TestHashStrategyReportsOverfull(t *testing.T) {
	// capacity is nextPow2(2*4) = 8; the 3/4 load-factor trip point is 6
	// distinct codes, so feed more than that many distinct k-mers.
	s := NewHashStrategy(4, 1)
	codes := []string{"AAAA", "AAAC", "AAAT", "AAAG", "AACA", "AACC", "AACT"}
	for _, seq := range codes {
		s.Add(mustCode(t, seq), 0)
	}
	if !s.Overfull() {
		t.Fatalf("expected HashStrategy to report overfull after %d distinct keys", len(codes))
	}
}

func TestChooseStrategy(t *testing.T) {
	if _, ok := Choose(10, 1, 1<<30).(*HashStrategy); !ok {
		t.Fatalf("expected hash strategy for small cardinality with ample budget")
	}
	if _, ok := Choose(1<<40, 1, 1<<20).(*RadixStrategy); !ok {
		t.Fatalf("expected radix strategy when hash table would exceed budget")
	}
}

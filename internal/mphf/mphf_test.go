package mphf

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

func TestMPHFIsBijective(t *testing.T) {
	codes := []kmer.Code{
		mustCode(t, "AATG"), mustCode(t, "ATGC"), mustCode(t, "TGCA"),
		mustCode(t, "GCAT"), mustCode(t, "CATG"), mustCode(t, "GGCC"),
	}
	abund := make([]uint64, len(codes))
	for i := range abund {
		abund[i] = uint64(i + 1)
	}
	s, err := Build(42, codes, abund)
	if err != nil {
		t.Fatal(err)
	}
	seen := make(map[uint64]bool)
	for i, c := range codes {
		idx := s.Index(c)
		if idx >= uint64(s.Domain()) {
			t.Fatalf("index %d out of domain %d", idx, s.Domain())
		}
		if seen[idx] {
			t.Fatalf("index %d assigned to two different keys (not injective)", idx)
		}
		seen[idx] = true
		if s.Abundance(idx) != uint8(i+1) {
			t.Fatalf("abundance[%d] = %d, want %d", idx, s.Abundance(idx), i+1)
		}
	}
}

func TestMPHFDomainIsMinimal(t *testing.T) {
	codes := []kmer.Code{
		mustCode(t, "AATG"), mustCode(t, "ATGC"), mustCode(t, "TGCA"),
	}
	abund := make([]uint64, len(codes))
	for i := range abund {
		abund[i] = 1
	}
	s, err := Build(11, codes, abund)
	if err != nil {
		t.Fatal(err)
	}
	if s.Domain() != len(codes) {
		t.Fatalf("Domain() = %d, want exactly %d (minimal codomain)", s.Domain(), len(codes))
	}
	seen := make(map[uint64]bool)
	for _, c := range codes {
		idx := s.Index(c)
		if idx >= uint64(len(codes)) {
			t.Fatalf("index %d not in [0,%d): MPHF is not minimal", idx, len(codes))
		}
		seen[idx] = true
	}
	if len(seen) != len(codes) {
		t.Fatalf("got %d distinct indices, want %d: not a bijection onto [0,N)", len(seen), len(codes))
	}
}

func TestDeleteUndelete(t *testing.T) {
	codes := []kmer.Code{mustCode(t, "AATG"), mustCode(t, "ATGC")}
	s, err := Build(7, codes, []uint64{1, 1})
	if err != nil {
		t.Fatal(err)
	}
	idx := s.Index(codes[0])
	if s.IsDeleted(idx) {
		t.Fatalf("fresh store should not report deleted")
	}
	s.Delete(idx)
	if !s.IsDeleted(idx) {
		t.Fatalf("Delete did not set the bit")
	}
	s.Undelete(idx)
	if s.IsDeleted(idx) {
		t.Fatalf("Undelete did not clear the bit")
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	codes := []kmer.Code{mustCode(t, "AATG"), mustCode(t, "ATGC"), mustCode(t, "TGCA")}
	s, err := Build(99, codes, []uint64{5, 6, 7})
	if err != nil {
		t.Fatal(err)
	}
	idx := s.Index(codes[0])
	s.Delete(idx)

	data := s.Encode()
	s2, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if s2.Domain() != s.Domain() {
		t.Fatalf("domain mismatch after round trip")
	}
	for _, c := range codes {
		i1, i2 := s.Index(c), s2.Index(c)
		if i1 != i2 {
			t.Fatalf("index mismatch after round trip")
		}
		if s.Abundance(i1) != s2.Abundance(i2) {
			t.Fatalf("abundance mismatch after round trip")
		}
	}
	if !s2.IsDeleted(idx) {
		t.Fatalf("deleted bit lost in round trip")
	}
}

package bloom

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

func TestBloomNoFalseNegatives(t *testing.T) {
	codes := []kmer.Code{mustCode(t, "AATG"), mustCode(t, "TGCA"), mustCode(t, "GGCC")}
	for _, kind := range []Kind{KindBasic, KindCache} {
		b := New(kind, uint64(len(codes)), DefaultFalsePositiveRate)
		for _, c := range codes {
			b.Insert(c)
		}
		for _, c := range codes {
			if !b.Contains(c) {
				t.Fatalf("%s: inserted k-mer reported absent (false negative)", kind)
			}
		}
	}
}

func TestBloomEncodeDecodeRoundTrip(t *testing.T) {
	b := New(KindBasic, 100, DefaultFalsePositiveRate)
	c := mustCode(t, "AATG")
	b.Insert(c)

	data := b.Encode()
	b2, err := Decode(KindBasic, data)
	if err != nil {
		t.Fatal(err)
	}
	if b2.SizeBits() != b.SizeBits() || b2.NbHash() != b.NbHash() {
		t.Fatalf("round trip header mismatch")
	}
	if !b2.Contains(c) {
		t.Fatalf("decoded filter lost membership")
	}
}

func TestCascadeExcludesSolidFromCFP(t *testing.T) {
	solid := []kmer.Code{mustCode(t, "AATG"), mustCode(t, "ATGC")}
	base := New(KindBasic, uint64(len(solid)), DefaultFalsePositiveRate)
	for _, c := range solid {
		base.Insert(c)
	}
	neighboursOf := func(c kmer.Code) []kmer.Code {
		return kmer.Neighbours(c, c.K)[:]
	}
	cas := BuildCascade(base, solid, neighboursOf, DefaultFalsePositiveRate)
	for _, c := range solid {
		// a solid k-mer must never appear in the cFP structure itself,
		// and since graph.Contains consults the cascade for every query,
		// the cascade must also report every solid k-mer as present.
		if cas.exactContains(c) {
			t.Fatalf("solid k-mer %s found in the exact cFP set", c)
		}
		if !cas.Contains(base, c) {
			t.Fatalf("solid k-mer %s rejected by the cascade", c)
		}
	}
}

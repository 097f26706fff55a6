package kmer

import "testing"

func TestParseAndBytesRoundTrip(t *testing.T) {
	cases := []string{"A", "AC", "AATGC", "AGGCGCTAGGGTAGAGGATGATGA"}
	for _, s := range cases {
		c, err := Parse([]byte(s))
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if got := string(c.Bytes()); got != s {
			t.Fatalf("Parse(%q).Bytes() = %q, want %q", s, got, s)
		}
	}
}

func TestRevCompKnownValues(t *testing.T) {
	cases := map[string]string{
		"A":    "T",
		"AATG": "CATT",
		"ATGC": "GCAT",
	}
	for in, want := range cases {
		c, err := Parse([]byte(in))
		if err != nil {
			t.Fatal(err)
		}
		rc := c.RevComp()
		if got := string(rc.Bytes()); got != want {
			t.Fatalf("RevComp(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	for _, s := range []string{"AATG", "ATGC", "GGGG", "ACGT"} {
		c, err := Parse([]byte(s))
		if err != nil {
			t.Fatal(err)
		}
		canon1, _ := c.Canonical()
		canon2, _ := canon1.Canonical()
		if !canon1.Equal(canon2) {
			t.Fatalf("canonical(canonical(%q)) != canonical(%q)", s, s)
		}
	}
}

func TestNextMatchesParse(t *testing.T) {
	seq := "AGGCGCTAGGG"
	k := 4
	c := Zero(k)
	for i := 0; i < k; i++ {
		c = c.Next(Encode(seq[i]))
	}
	want, err := Parse([]byte(seq[:k]))
	if err != nil {
		t.Fatal(err)
	}
	if !c.Equal(want) {
		t.Fatalf("rolling Next built %q, want %q", c.Bytes(), want.Bytes())
	}
	// roll forward one base
	c = c.Next(Encode(seq[k]))
	want2, _ := Parse([]byte(seq[1 : k+1]))
	if !c.Equal(want2) {
		t.Fatalf("rolled Next built %q, want %q", c.Bytes(), want2.Bytes())
	}
}

func TestIterateSkipsN(t *testing.T) {
	seq := "AATGCNNATGCA"
	k := 4
	var kmers []string
	var firsts []bool
	model, err := NewModel(k, 2, NewLexOrder(2))
	if err != nil {
		t.Fatal(err)
	}
	model.Iterate([]byte(seq), func(e Event) {
		kmers = append(kmers, string(e.Code.Bytes()))
		firsts = append(firsts, e.IsFirst)
	})
	want := []string{"AATG", "ATGC", "ATGC", "TGCA"}
	if len(kmers) != len(want) {
		t.Fatalf("got %v, want %v", kmers, want)
	}
	for i := range want {
		if kmers[i] != want[i] {
			t.Fatalf("kmer %d = %q, want %q", i, kmers[i], want[i])
		}
	}
	if !firsts[0] || firsts[1] || !firsts[2] || firsts[3] {
		t.Fatalf("isFirst flags = %v, want [true false true false]", firsts)
	}
}

func TestIterateShorterThanKYieldsNothing(t *testing.T) {
	model, err := NewModel(10, 3, NewLexOrder(3))
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	model.Iterate([]byte("ACGT"), func(Event) { count++ })
	if count != 0 {
		t.Fatalf("expected zero k-mers for a read shorter than k, got %d", count)
	}
}

func TestSelectPrecisionBuckets(t *testing.T) {
	cases := map[int]Precision{1: P32, 32: P32, 33: P64, 64: P64, 65: P96, 96: P96, 97: P128, 128: P128}
	for k, want := range cases {
		got, err := SelectPrecision(k)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Fatalf("SelectPrecision(%d) = %v, want %v", k, got, want)
		}
	}
	if _, err := SelectPrecision(129); err == nil {
		t.Fatal("expected error for k > 128")
	}
}

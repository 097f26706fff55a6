package pipeline

import (
	"testing"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

func TestSolidityGateSum(t *testing.T) {
	g := NewSolidityGate()
	g.Begin(Config{Mode: ModeSum, AbundanceMin: 2, AbundanceMax: 10})

	var code kmer.Code
	keep, err := g.Process(0, code, []uint16{1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if keep {
		t.Fatalf("sum=1 below min=2 should be dropped")
	}
	keep, err = g.Process(0, code, []uint16{2}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !keep {
		t.Fatalf("sum=2 at min=2 should be kept")
	}
}

func TestHistogramFirstLocalMinimum(t *testing.T) {
	h := NewHistogram()
	h.Begin(Config{})
	var code kmer.Code
	// simulate an error-spike at abundance 1, a trough at 3, then the
	// real signal climbing again.
	freqs := map[uint64]int{1: 100, 2: 20, 3: 5, 4: 30, 5: 40}
	for sum, n := range freqs {
		for i := 0; i < n; i++ {
			h.Process(0, code, nil, sum)
		}
	}
	got := FirstLocalMinimum(h.Counts())
	if got != 3 {
		t.Fatalf("FirstLocalMinimum = %d, want 3", got)
	}
}

func TestChainShortCircuits(t *testing.T) {
	g := NewSolidityGate()
	g.Begin(Config{Mode: ModeSum, AbundanceMin: 5})
	h := NewHistogram()
	h.Begin(Config{})
	chain := &Chain{Processors: []Processor{g, h}}

	var code kmer.Code
	keep, err := chain.Process(0, code, []uint16{1}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if keep {
		t.Fatalf("chain should drop a below-threshold record before reaching the histogram")
	}
	if h.Counts()[1] != 0 {
		t.Fatalf("histogram should not have observed a record the gate dropped")
	}
}

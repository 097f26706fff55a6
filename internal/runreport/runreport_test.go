package runreport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shenwei356/dbgbuild/internal/config"
)

func TestNewTrimsEmptyHistogramBuckets(t *testing.T) {
	opt := config.Default()
	plan := &config.Plan{Passes: 1, Partitions: 4}

	var hist [256]uint64
	hist[1] = 10
	hist[5] = 3

	r := New(opt, plan, 13, 2, hist, 1, 250*time.Millisecond)
	if len(r.HistogramSummary) != 2 {
		t.Fatalf("got %d histogram bins, want 2", len(r.HistogramSummary))
	}
	if r.HistogramSummary[0] != (HistogramBin{Abundance: 1, Count: 10}) {
		t.Fatalf("bin 0 = %+v", r.HistogramSummary[0])
	}
	if r.HistogramSummary[1] != (HistogramBin{Abundance: 5, Count: 3}) {
		t.Fatalf("bin 1 = %+v", r.HistogramSummary[1])
	}
	if r.NbSolidKmers != 13 || r.AbundanceCutoff != 2 || r.NbUnitigs != 1 {
		t.Fatalf("unexpected counts: %+v", r)
	}
	if r.Passes != 1 || r.Partitions != 4 {
		t.Fatalf("plan fields not copied: %+v", r)
	}
}

func TestWriteToProducesReadableYAML(t *testing.T) {
	opt := config.Default()
	plan := &config.Plan{Passes: 2, Partitions: 8}
	var hist [256]uint64
	hist[3] = 7

	r := New(opt, plan, 42, 3, hist, 5, time.Second)
	path := filepath.Join(t.TempDir(), "out.report.yaml")
	if err := r.WriteTo(path); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "nb_solid_kmers: 42") {
		t.Fatalf("report missing nb_solid_kmers:\n%s", data)
	}
	if !strings.Contains(string(data), "kmer_size: 31") {
		t.Fatalf("report missing kmer_size:\n%s", data)
	}
}

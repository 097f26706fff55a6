package pipeline

import "github.com/shenwei356/dbgbuild/internal/kmer"

// histogramBuckets matches the metadata contract for the persisted
// histogram: a binary blob of u64[256].
const histogramBuckets = 256

// Histogram increments a bounded abundance histogram, used to
// auto-select the abundance threshold via the first-local-minimum
// heuristic.
type Histogram struct {
	counts [histogramBuckets]uint64
}

// NewHistogram creates an empty histogram processor.
func NewHistogram() *Histogram { return &Histogram{} }

func (h *Histogram) Begin(cfg Config) error                                    { return nil }
func (h *Histogram) BeginPart(pass, part int, cacheRecords int, name string) error { return nil }

func (h *Histogram) Process(partID int, code kmer.Code, counts []uint16, sum uint64) (bool, error) {
	bucket := sum
	if bucket >= histogramBuckets {
		bucket = histogramBuckets - 1
	}
	h.counts[bucket]++
	return true, nil
}

func (h *Histogram) EndPart(partID int) error { return nil }
func (h *Histogram) End() error               { return nil }

// Counts returns the accumulated histogram.
func (h *Histogram) Counts() [histogramBuckets]uint64 { return h.counts }

// Merge folds another histogram's counts into this one, e.g. a worker
// clone's counts into its parent; End() does not call it.
func (h *Histogram) Merge(other *Histogram) {
	for i := range h.counts {
		h.counts[i] += other.counts[i]
	}
}

// Clone returns a fresh histogram for a concurrent partition worker; the
// caller is responsible for Merge-ing it back into the parent.
func (h *Histogram) Clone() Processor {
	return &Histogram{}
}

// FirstLocalMinimum implements the canonical auto-threshold rule: the
// first abundance value (starting at 2, since 1 is the noise spike) at
// which the histogram stops decreasing. Returns 1 if no local minimum is
// found before the table ends (all k-mers considered solid).
func FirstLocalMinimum(counts [histogramBuckets]uint64) int {
	for i := 2; i < histogramBuckets-1; i++ {
		if counts[i] <= counts[i-1] && counts[i] <= counts[i+1] {
			return i
		}
	}
	return 1
}

// CutoffComputer scans a histogram on End() and publishes the chosen
// threshold.
type CutoffComputer struct {
	hist      *Histogram
	Threshold int
}

// NewCutoffComputer wraps hist; Threshold is populated by End().
func NewCutoffComputer(hist *Histogram) *CutoffComputer {
	return &CutoffComputer{hist: hist}
}

func (c *CutoffComputer) Begin(cfg Config) error                                    { return nil }
func (c *CutoffComputer) BeginPart(pass, part int, cacheRecords int, name string) error { return nil }

func (c *CutoffComputer) Process(partID int, code kmer.Code, counts []uint16, sum uint64) (bool, error) {
	return true, nil
}

func (c *CutoffComputer) EndPart(partID int) error { return nil }

func (c *CutoffComputer) End() error {
	c.Threshold = FirstLocalMinimum(c.hist.Counts())
	return nil
}

// Clone returns itself: the cutoff computer only runs once, on the
// aggregated parent histogram, never per worker.
func (c *CutoffComputer) Clone() Processor { return c }

// Package runreport writes the human-readable yaml sidecar placed next
// to a build's output container: run parameters, timings, the chosen
// abundance threshold, and a histogram summary.
package runreport

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/shenwei356/dbgbuild/internal/config"
)

// Report is the sidecar document.
type Report struct {
	KmerSize         int           `yaml:"kmer_size"`
	MinimizerSize    int           `yaml:"minimizer_size"`
	BloomKind        string        `yaml:"bloom_kind"`
	DebloomKind      string        `yaml:"debloom_kind"`
	ContainerKind    string        `yaml:"container_kind"`
	Passes           int           `yaml:"passes"`
	Partitions       int           `yaml:"partitions"`
	NbSolidKmers     int           `yaml:"nb_solid_kmers"`
	AbundanceCutoff  int           `yaml:"abundance_cutoff"`
	NbUnitigs        int           `yaml:"nb_unitigs"`
	Elapsed          string        `yaml:"elapsed"`
	HistogramSummary []HistogramBin `yaml:"histogram_summary"`
}

// HistogramBin is one non-empty bucket of the abundance histogram,
// trimmed to a readable summary rather than dumping all 256 counters.
type HistogramBin struct {
	Abundance int    `yaml:"abundance"`
	Count     uint64 `yaml:"count"`
}

// New builds the report; hist is the raw 256-bucket abundance histogram
// from pipeline.Histogram.Counts().
func New(opt *config.Options, plan *config.Plan, nbSolid, cutoff int, hist [256]uint64, nbUnitigs int, elapsed time.Duration) *Report {
	var bins []HistogramBin
	for i, c := range hist {
		if c == 0 {
			continue
		}
		bins = append(bins, HistogramBin{Abundance: i, Count: c})
	}
	return &Report{
		KmerSize:         opt.KmerSize,
		MinimizerSize:    opt.MinimizerSize,
		BloomKind:        opt.BloomKind,
		DebloomKind:      opt.DebloomKind,
		ContainerKind:    opt.ContainerKind,
		Passes:           plan.Passes,
		Partitions:       plan.Partitions,
		NbSolidKmers:     nbSolid,
		AbundanceCutoff:  cutoff,
		NbUnitigs:        nbUnitigs,
		Elapsed:          elapsed.String(),
		HistogramSummary: bins,
	}
}

// WriteTo marshals the report as yaml to path.
func (r *Report) WriteTo(path string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "runreport: marshalling")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "runreport: writing %s", path)
	}
	return nil
}

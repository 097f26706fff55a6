package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/pkg/errors"
	"github.com/pkg/profile"
	"github.com/shenwei356/util/pathutil"
	"github.com/spf13/cobra"

	"github.com/shenwei356/dbgbuild/internal/bank/fastx"
	"github.com/shenwei356/dbgbuild/internal/bloom"
	"github.com/shenwei356/dbgbuild/internal/config"
	"github.com/shenwei356/dbgbuild/internal/counter"
	"github.com/shenwei356/dbgbuild/internal/graph"
	"github.com/shenwei356/dbgbuild/internal/kmer"
	"github.com/shenwei356/dbgbuild/internal/linker"
	"github.com/shenwei356/dbgbuild/internal/mphf"
	"github.com/shenwei356/dbgbuild/internal/partition"
	"github.com/shenwei356/dbgbuild/internal/pipeline"
	"github.com/shenwei356/dbgbuild/internal/progressbar"
	"github.com/shenwei356/dbgbuild/internal/runreport"
	"github.com/shenwei356/dbgbuild/internal/store"
	"github.com/shenwei356/dbgbuild/internal/unitig"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Count k-mers and build a compacted de Bruijn graph",
	Long: `build counts canonical k-mers from the input reads through a
partitioned, multi-pass pipeline (C1-C5), derives a Bloom+cFP membership
structure and an MPHF annotation store over the solid k-mer set (C6-C7),
then compacts the resulting de Bruijn graph into unitigs and links them
(C8-C10).

Attentions:
  1. Use --dry-run to inspect the chosen (passes, partitions) plan and
     the memory/disk budget split before committing to a full run.
  2. --abundance-min auto resolves the threshold from the count
     histogram's first local minimum (see the run report sidecar).
`,
	Run: func(cmd *cobra.Command, args []string) {
		opt := optionsFromFlags(cmd)

		if opt.CPUProfile != "" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(opt.CPUProfile)).Stop()
		}
		if opt.MemProfile != "" {
			defer profile.Start(profile.MemProfile, profile.ProfilePath(opt.MemProfile)).Stop()
		}

		runtime.GOMAXPROCS(opt.NbCores)

		timeStart := time.Now()
		defer func() {
			if opt.Verbose >= 1 {
				log.Infof("elapsed time: %s", time.Since(timeStart))
			}
		}()

		if err := runBuild(opt); err != nil {
			log.Error(err)
			exitWithCode(err)
		}
	},
}

func init() {
	RootCmd.AddCommand(buildCmd)

	pflags := buildCmd.Flags()
	pflags.StringP("in", "i", "", "input FASTA/FASTQ file(s), comma separated")
	pflags.StringP("out", "o", "", "output container path (directory for file-tree, file for hdf5-like)")
	pflags.IntP("kmer-size", "k", 31, "k-mer size")
	pflags.String("abundance-min", "auto", `minimum abundance threshold, or "auto"`)
	pflags.Int("abundance-max", 1<<31-1, "maximum abundance threshold")
	pflags.String("max-memory", "2000M", "memory budget")
	pflags.String("max-disk", "20000M", "disk budget")
	pflags.IntP("nb-cores", "j", 0, "number of cores, 0 = all available")
	pflags.Int("minimizer-size", 10, "minimizer size")
	pflags.String("minimizer-type", "lex", "minimizer order: lex|freq")
	pflags.String("bloom", "cache", "Bloom filter kind: none|basic|cache")
	pflags.String("debloom", "cascading", "critical-false-positive strategy: none|original|cascading")
	pflags.String("container", "file-tree", "output container kind: file-tree|hdf5-like")
	pflags.String("abundance-mode", "sum", "multi-bank abundance predicate: sum|min|max|all|one")
	pflags.IntP("verbose", "v", 1, "verbosity: 0=warnings, 1=info, 2=info+context")
	pflags.Bool("dry-run", false, "print the chosen plan and exit without running")
	pflags.String("tmp-dir", "", "scratch directory, defaults to --out")
	pflags.String("cpu-profile", "", "write CPU profile to this directory")
	pflags.String("mem-profile", "", "write memory profile to this directory")
}

func optionsFromFlags(cmd *cobra.Command) *config.Options {
	opt := config.Default()
	opt.InPath = getFlagPath(cmd, "in")
	opt.OutPath = getFlagPath(cmd, "out")
	opt.KmerSize = getFlagPositiveInt(cmd, "kmer-size")
	opt.MinimizerSize = getFlagPositiveInt(cmd, "minimizer-size")
	switch getFlagString(cmd, "minimizer-type") {
	case "freq":
		opt.MinimizerOrder = kmer.OrderFrequency
	default:
		opt.MinimizerOrder = kmer.OrderLexForbidden
	}

	abMin := getFlagString(cmd, "abundance-min")
	if abMin == "auto" || abMin == "" {
		opt.AbundanceMin = -1
	} else {
		var n int
		if _, err := fmt.Sscanf(abMin, "%d", &n); err != nil {
			checkError(errors.Wrapf(err, "parsing --abundance-min %q", abMin))
		}
		opt.AbundanceMin = n
	}
	opt.AbundanceMax = getFlagInt(cmd, "abundance-max")
	opt.MaxMemoryMB = getFlagSizeMB(cmd, "max-memory")
	opt.MaxDiskMB = getFlagSizeMB(cmd, "max-disk")
	opt.NbCores = getFlagNbCores(cmd, "nb-cores")
	opt.BloomKind = getFlagString(cmd, "bloom")
	opt.DebloomKind = getFlagString(cmd, "debloom")
	opt.ContainerKind = getFlagString(cmd, "container")
	opt.Verbose = getFlagInt(cmd, "verbose")
	opt.DryRun = getFlagBool(cmd, "dry-run")
	opt.TmpDir = getFlagPath(cmd, "tmp-dir")
	if opt.TmpDir == "" {
		opt.TmpDir = opt.OutPath
	}
	opt.CPUProfile = getFlagPath(cmd, "cpu-profile")
	opt.MemProfile = getFlagPath(cmd, "mem-profile")

	switch getFlagString(cmd, "abundance-mode") {
	case "min":
		opt.AbundanceMode = config.ModeMin
	case "max":
		opt.AbundanceMode = config.ModeMax
	case "all":
		opt.AbundanceMode = config.ModeAll
	case "one":
		opt.AbundanceMode = config.ModeOne
	default:
		opt.AbundanceMode = config.ModeSum
	}

	if opt.InPath == "" {
		checkError(errors.New("flag -i/--in is required"))
	}
	if opt.OutPath == "" {
		checkError(errors.New("flag -o/--out is required"))
	}
	return opt
}

func exitWithCode(err error) {
	switch errors.Cause(err) {
	case store.ErrStorageFull, config.ErrResourceLimit:
		os.Exit(2)
	default:
		os.Exit(1)
	}
}

// runBuild orchestrates C1 through C10 over a single bank.
func runBuild(opt *config.Options) error {
	paths, err := splitExistingPaths(opt.InPath)
	if err != nil {
		return err
	}
	b := fastx.New(paths...)

	nbReads, err := b.EstimateNumSequences()
	if err != nil {
		return errors.Wrap(err, "estimating input size")
	}
	// one superk-mer's worth of distinct k-mers per read is a rough
	// but serviceable planning estimate.
	estimatedKmers := nbReads * 200

	plan, err := opt.Plan(estimatedKmers)
	if err != nil {
		return err
	}
	if opt.Verbose >= 1 || opt.DryRun {
		log.Infof("plan: passes=%d partitions=%d cores/partition=%d per-partition budget=%dMB",
			plan.Passes, plan.Partitions, plan.NbCoresPerPartition, plan.PerPartitionBudgetMB)
	}
	if opt.DryRun {
		return nil
	}

	order, err := buildOrder(opt, b)
	if err != nil {
		return err
	}
	model, err := kmer.NewModel(opt.KmerSize, opt.MinimizerSize, order)
	if err != nil {
		return errors.Wrap(err, "building k-mer model")
	}

	kind := store.KindFileTree
	if opt.ContainerKind == "hdf5-like" {
		kind = store.KindHDF5Like
	}
	container, err := store.Create(kind, opt.OutPath)
	if err != nil {
		return err
	}
	defer container.Close()

	progress := progressbar.New(opt.Verbose >= 1)

	table := partition.NewLexTable(opt.MinimizerSize, plan.Partitions)
	sched := partition.NewScheduler(plan.Passes, plan.Partitions)

	dskGroup := container.Group("dsk")
	raw, err := dskGroup.CreatePartitioned("raw", plan.Partitions, 0)
	if err != nil {
		return err
	}

	ctx := context.Background()
	partitioner := partition.New(model, table, sched, opt.NbCores)
	bar := progress.Begin("partitioning", nbReads)
	partitioner.Progress = bar
	if err := partitioner.Run(ctx, b, raw); err != nil {
		return errors.Wrap(err, "partitioning reads")
	}
	bar.Close()
	if err := raw.SealAll(); err != nil {
		return err
	}

	solid, err := dskGroup.CreatePartitioned("solid", plan.Partitions, (2*opt.KmerSize+7)/8+2*opt.NbBanks)
	if err != nil {
		return err
	}

	hist := pipeline.NewHistogram()
	cutoff := pipeline.NewCutoffComputer(hist)
	gate := pipeline.NewSolidityGate()
	dump := pipeline.NewDump(solid)
	chain := &pipeline.Chain{Processors: []pipeline.Processor{hist, cutoff, gate, dump}}

	cfg := pipeline.Config{
		KmerSize: opt.KmerSize,
		NbBanks:  opt.NbBanks,
		Mode:     pipeline.AbundanceMode(opt.AbundanceMode),
	}
	if opt.AbundanceMin >= 0 {
		cfg.AbundanceMin = uint64(opt.AbundanceMin)
	}
	cfg.AbundanceMax = uint64(opt.AbundanceMax)
	if err := chain.Begin(cfg); err != nil {
		return err
	}

	readers, err := dskGroup.OpenPartitioned("raw", plan.Partitions)
	if err != nil {
		return err
	}
	var solidCodes []kmer.Code
	var solidAbund []uint64
	for part, r := range readers {
		strat := counter.Choose(estimatedKmers/int64(plan.Partitions), opt.NbBanks, int64(plan.PerPartitionBudgetMB)<<20)
		err := counter.CountPartition(r, model, 0, strat)
		if err == counter.ErrOverfull {
			if opt.Verbose >= 1 {
				log.Infof("partition %d: hash table overfull, retrying with vector-sort strategy", part)
			}
			r, err = dskGroup.OpenPartition("raw", part)
			if err != nil {
				return errors.Wrapf(err, "reopening partition %d after overfull", part)
			}
			strat = counter.NewRadixStrategy(opt.NbBanks)
			err = counter.CountPartition(r, model, 0, strat)
		}
		if err != nil {
			return errors.Wrapf(err, "counting partition %d", part)
		}
		records := strat.Finalize()
		if err := chain.BeginPart(0, part, len(records), fmt.Sprintf("partition-%d", part)); err != nil {
			return err
		}
		for _, rec := range records {
			keep, err := chain.Process(part, rec.Kmer, rec.Counts, rec.Sum())
			if err != nil {
				return err
			}
			if keep {
				solidCodes = append(solidCodes, rec.Kmer)
				solidAbund = append(solidAbund, rec.Sum())
			}
		}
		if err := chain.EndPart(part); err != nil {
			return err
		}
	}
	if err := chain.End(); err != nil {
		return err
	}

	if opt.Verbose >= 1 {
		log.Infof("solid k-mers: %d, auto threshold: %d", len(solidCodes), cutoff.Threshold)
	}

	fpr := bloom.DefaultFalsePositiveRate
	bk := bloom.KindCache
	if opt.BloomKind == "basic" {
		bk = bloom.KindBasic
	}
	bl := bloom.New(bk, uint64(len(solidCodes)), fpr)
	for _, c := range solidCodes {
		bl.Insert(c)
	}
	neighboursOf := func(c kmer.Code) []kmer.Code {
		arr := kmer.Neighbours(c, opt.KmerSize)
		out := arr[:]
		for nt := int8(0); nt < 4; nt++ {
			out = append(out, c.Prev(nt))
		}
		return out
	}
	var cascade *bloom.Cascade
	if opt.DebloomKind == "cascading" {
		cascade = bloom.BuildCascade(bl, solidCodes, neighboursOf, fpr)
	} else {
		cascade = bloom.BuildCascade(bl, nil, neighboursOf, fpr)
	}

	annot, err := mphf.Build(0x5a5a5a5a, solidCodes, solidAbund)
	if err != nil {
		return errors.Wrap(err, "building mphf")
	}
	if err := mphf.SealTo(container.Group("mphf"), "annotations", annot); err != nil {
		return err
	}

	g := &graph.Graph{Model: model, Bloom: bl, Cascade: cascade, Annot: annot}

	input := unitig.NewInput(g, table, solidCodes)
	bar2 := progress.Begin("compacting", int64(input.Assignment.NumBuckets()))
	units := unitig.Build(input, opt.NbCores, bar2)
	bar2.Close()
	progress.Wait()

	idx := linker.BuildIndex(opt.KmerSize, units)
	links := idx.Links(g, units)

	unitigGroup := container.Group("bcalm")
	if err := writeUnitigs(unitigGroup, units, links); err != nil {
		return err
	}

	report := runreport.New(opt, plan, len(solidCodes), cutoff.Threshold, hist.Counts(), len(units), time.Since(timeStart))
	if err := report.WriteTo(opt.OutPath + ".report.yaml"); err != nil {
		return errors.Wrap(err, "writing run report")
	}

	log.Infof("done: %d unitigs written to %s", len(units), opt.OutPath)
	return nil
}

func buildOrder(opt *config.Options, b interface {
	EstimateNumSequences() (int64, error)
}) (*kmer.Order, error) {
	if opt.MinimizerOrder != kmer.OrderFrequency {
		return kmer.NewLexOrder(opt.MinimizerSize), nil
	}
	// sampled frequency order: a from-scratch m-mer pass would require
	// re-opening the bank; deferred to a future iteration, fall back to
	// the lexicographic order.
	log.Warningf("minimizer-type freq not yet wired to a sampling pass, falling back to lex order")
	return kmer.NewLexOrder(opt.MinimizerSize), nil
}

func splitExistingPaths(in string) ([]string, error) {
	paths := splitComma(in)
	for _, p := range paths {
		ok, err := pathutil.Exists(p)
		if err != nil {
			return nil, errors.Wrapf(err, "checking %s", p)
		}
		if !ok {
			return nil, errors.Errorf("input file does not exist: %s", p)
		}
	}
	return paths, nil
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == ',' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// writeUnitigs persists the compacted unitig set and its adjacency lists
// into the "bcalm" group.
func writeUnitigs(g *store.Group, units []*unitig.Unitig, links map[uint64][]linker.Link) error {
	unitigColl, err := g.CreateCollection("unitigs", 0)
	if err != nil {
		return err
	}
	linkColl, err := g.CreateCollection("links", 0)
	if err != nil {
		return err
	}
	for _, u := range units {
		if err := unitigColl.Append(unitig.EncodeUnitigRecord(u)); err != nil {
			return err
		}
		if err := linkColl.Append(linker.EncodeLinks(links[u.ID])); err != nil {
			return err
		}
	}
	if err := unitigColl.Seal(); err != nil {
		return err
	}
	return linkColl.Seal()
}

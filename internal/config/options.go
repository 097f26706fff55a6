// Package config holds the run-wide options parsed from the dbgh5 CLI
// surface and the memory/disk budget planning logic.
package config

import (
	"runtime"

	"github.com/shenwei356/dbgbuild/internal/kmer"
)

// AbundanceMode selects how a multi-bank abundance vector collapses to a
// single solidity decision.
type AbundanceMode int

const (
	ModeSum AbundanceMode = iota
	ModeMin
	ModeMax
	ModeAll
	ModeOne
)

// Options collects every flag named in
type Options struct {
	InPath          string
	OutPath         string
	KmerSize        int
	MinimizerSize   int
	MinimizerOrder  kmer.OrderKind
	AbundanceMin    int // -1 means "auto"
	AbundanceMax    int
	MaxMemoryMB     int
	MaxDiskMB       int
	NbCores         int
	BloomKind       string // none | basic | cache
	DebloomKind     string // none | original | cascading
	Verbose         int
	DryRun          bool
	AbundanceMode   AbundanceMode
	NbBanks         int
	ContainerKind   string // file-tree | hdf5-like
	TmpDir          string
	CPUProfile      string
	MemProfile      string
}

// Default returns the documented CLI defaults.
func Default() *Options {
	return &Options{
		KmerSize:       31,
		MinimizerSize:  10,
		MinimizerOrder: kmer.OrderLexForbidden,
		AbundanceMin:   -1, // auto
		AbundanceMax:   1<<31 - 1,
		MaxMemoryMB:    2000,
		MaxDiskMB:      20000,
		NbCores:        runtime.NumCPU(),
		BloomKind:      "cache",
		DebloomKind:    "cascading",
		NbBanks:        1,
		ContainerKind:  "file-tree",
	}
}

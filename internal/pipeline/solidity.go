package pipeline

import "github.com/shenwei356/dbgbuild/internal/kmer"

// SolidityGate keeps a record iff its per-bank abundance satisfies the
// configured predicate: min <= sum <= max by default, or the
// all/one/sum variants operating on the per-bank vector.
type SolidityGate struct {
	mode     AbundanceMode
	min, max uint64
}

// NewSolidityGate builds a gate; max of 0 means unbounded.
func NewSolidityGate() *SolidityGate { return &SolidityGate{} }

func (g *SolidityGate) Begin(cfg Config) error {
	g.mode = cfg.Mode
	g.min = cfg.AbundanceMin
	g.max = cfg.AbundanceMax
	return nil
}

func (g *SolidityGate) BeginPart(pass, part int, cacheRecords int, name string) error { return nil }

func (g *SolidityGate) Process(partID int, code kmer.Code, counts []uint16, sum uint64) (bool, error) {
	switch g.mode {
	case ModeAll:
		for _, c := range counts {
			if uint64(c) < g.min || (g.max > 0 && uint64(c) > g.max) {
				return false, nil
			}
		}
		return true, nil
	case ModeOne:
		for _, c := range counts {
			if uint64(c) >= g.min && (g.max == 0 || uint64(c) <= g.max) {
				return true, nil
			}
		}
		return false, nil
	case ModeMin:
		var m uint64 = ^uint64(0)
		for _, c := range counts {
			if uint64(c) < m {
				m = uint64(c)
			}
		}
		return m >= g.min && (g.max == 0 || m <= g.max), nil
	case ModeMax:
		var m uint64
		for _, c := range counts {
			if uint64(c) > m {
				m = uint64(c)
			}
		}
		return m >= g.min && (g.max == 0 || m <= g.max), nil
	default: // ModeSum
		return sum >= g.min && (g.max == 0 || sum <= g.max), nil
	}
}

func (g *SolidityGate) EndPart(partID int) error { return nil }
func (g *SolidityGate) End() error               { return nil }

func (g *SolidityGate) Clone() Processor {
	clone := *g
	return &clone
}
